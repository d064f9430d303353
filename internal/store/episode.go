package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/recollectdb/recollect/internal/model"
)

// CreateEpisode groups existing memories into an episode. Start and end times
// derive from the members' timestamps, importance is the max over members,
// emotion follows the most important member. With autoSummarize, the summary
// joins the first 50 runes of each member in chronological order.
func (s *MemoryStore) CreateEpisode(ctx context.Context, title string, memoryIDs, participants []string, autoSummarize bool) (*model.Episode, error) {
	if len(memoryIDs) == 0 {
		return nil, errors.New("memory ids cannot be empty")
	}
	memories, err := s.GetByIDs(ctx, memoryIDs)
	if err != nil {
		return nil, err
	}
	if len(memories) == 0 {
		return nil, fmt.Errorf("episode members: %w", ErrNotFound)
	}
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].Timestamp.Before(memories[j].Timestamp)
	})

	summary := ""
	if autoSummarize {
		parts := make([]string, 0, len(memories))
		for _, m := range memories {
			parts = append(parts, snippet(m.Content, 50))
		}
		summary = strings.Join(parts, " → ")
	}

	mostImportant := memories[0]
	maxImportance := 0
	for _, m := range memories {
		if m.Importance > mostImportant.Importance {
			mostImportant = m
		}
		if m.Importance > maxImportance {
			maxImportance = m.Importance
		}
	}

	ep := &model.Episode{
		ID:           s.newID(),
		Title:        title,
		StartTime:    memories[0].Timestamp,
		MemoryIDs:    make([]string, 0, len(memories)),
		Participants: participants,
		Summary:      summary,
		Emotion:      mostImportant.Emotion,
		Importance:   maxImportance,
	}
	if len(memories) > 1 {
		end := memories[len(memories)-1].Timestamp
		ep.EndTime = &end
	}
	for _, m := range memories {
		ep.MemoryIDs = append(ep.MemoryIDs, m.ID)
	}

	if err := s.insertEpisode(ctx, ep); err != nil {
		return nil, err
	}
	for _, m := range memories {
		if err := s.UpdateEpisodeID(ctx, m.ID, ep.ID); err != nil {
			return nil, err
		}
	}
	return ep, nil
}

func (s *MemoryStore) insertEpisode(ctx context.Context, ep *model.Episode) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	var endTime interface{}
	if ep.EndTime != nil {
		endTime = ep.EndTime.Format(timeFmt)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO episodes (id, title, start_time, end_time, memory_ids, participants, summary, emotion, importance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.ID, ep.Title, ep.StartTime.Format(timeFmt), endTime,
		joinIDList(ep.MemoryIDs), joinIDList(ep.Participants),
		ep.Summary, ep.Emotion, ep.Importance)
	if err != nil {
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

func scanEpisode(row scanner) (model.Episode, error) {
	var ep model.Episode
	var startTime string
	var endTime sql.NullString
	var memoryIDs, participants string

	err := row.Scan(&ep.ID, &ep.Title, &startTime, &endTime,
		&memoryIDs, &participants, &ep.Summary, &ep.Emotion, &ep.Importance)
	if err != nil {
		return ep, err
	}
	ep.StartTime, _ = time.Parse(timeFmt, startTime)
	if endTime.Valid && endTime.String != "" {
		if t, err := time.Parse(timeFmt, endTime.String); err == nil {
			ep.EndTime = &t
		}
	}
	ep.MemoryIDs = parseIDList(memoryIDs)
	ep.Participants = parseIDList(participants)
	return ep, nil
}

const episodeColumns = `id, title, start_time, end_time, memory_ids, participants, summary, emotion, importance`

// GetEpisode fetches an episode by id. Returns ErrNotFound when absent.
func (s *MemoryStore) GetEpisode(ctx context.Context, episodeID string) (*model.Episode, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, episodeID)
	ep, err := scanEpisode(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("episode %s: %w", episodeID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

// GetEpisodeMemories returns an episode's memories in chronological order.
func (s *MemoryStore) GetEpisodeMemories(ctx context.Context, episodeID string) ([]model.Memory, error) {
	ep, err := s.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	memories, err := s.GetByIDs(ctx, ep.MemoryIDs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].Timestamp.Before(memories[j].Timestamp)
	})
	return memories, nil
}

// SearchEpisodes matches episode titles and summaries by substring. A LIKE
// scan is enough for the handful of episodes a store holds.
func (s *MemoryStore) SearchEpisodes(ctx context.Context, query string, nResults int) ([]model.Episode, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if nResults <= 0 {
		nResults = 5
	}
	pattern := "%" + query + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes
		 WHERE title LIKE ? OR summary LIKE ?
		 ORDER BY start_time DESC LIMIT ?`, pattern, pattern, nResults)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var episodes []model.Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

// ListEpisodes returns all episodes, newest first.
func (s *MemoryStore) ListEpisodes(ctx context.Context) ([]model.Episode, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes ORDER BY start_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var episodes []model.Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

// DeleteEpisode removes an episode and clears its members' episode_id
// back-references. The memories themselves are not deleted.
func (s *MemoryStore) DeleteEpisode(ctx context.Context, episodeID string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	ep, err := s.GetEpisode(ctx, episodeID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if ep != nil {
		for _, memoryID := range ep.MemoryIDs {
			if err := s.UpdateEpisodeID(ctx, memoryID, ""); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}
	}

	_, err = db.ExecContext(ctx, `DELETE FROM episodes WHERE id = ?`, episodeID)
	return err
}

func snippet(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
