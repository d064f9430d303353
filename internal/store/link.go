package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/recollectdb/recollect/internal/model"
)

// FieldUpdates names mutable per-memory fields; nil pointers are left alone.
type FieldUpdates struct {
	AccessCount     *int
	LastAccessed    *time.Time
	LinkedIDs       []string
	EpisodeID       *string
	Tags            []string
	Links           []model.Link
	NoveltyScore    *float64
	PredictionError *float64
	ActivationCount *int
	LastActivated   *time.Time
	Reading         *string
}

// UpdateMemoryFields updates the given fields on one memory row. Returns
// false when the id does not exist.
func (s *MemoryStore) UpdateMemoryFields(ctx context.Context, memoryID string, u FieldUpdates) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}

	var sets []string
	var args []interface{}
	add := func(col string, val interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if u.AccessCount != nil {
		add("access_count", *u.AccessCount)
	}
	if u.LastAccessed != nil {
		add("last_accessed", u.LastAccessed.Format(timeFmt))
	}
	if u.LinkedIDs != nil {
		add("linked_ids", joinIDList(u.LinkedIDs))
	}
	if u.EpisodeID != nil {
		if *u.EpisodeID == "" {
			add("episode_id", nil)
		} else {
			add("episode_id", *u.EpisodeID)
		}
	}
	if u.Tags != nil {
		encoded, err := encodeStringList(u.Tags)
		if err != nil {
			return false, err
		}
		add("tags", encoded)
	}
	if u.Links != nil {
		encoded, err := encodeLinks(u.Links)
		if err != nil {
			return false, err
		}
		add("links", encoded)
	}
	if u.NoveltyScore != nil {
		add("novelty_score", *u.NoveltyScore)
	}
	if u.PredictionError != nil {
		add("prediction_error", clamp01(*u.PredictionError))
	}
	if u.ActivationCount != nil {
		add("activation_count", *u.ActivationCount)
	}
	if u.LastActivated != nil {
		add("last_activated", u.LastActivated.Format(timeFmt))
	}
	if u.Reading != nil {
		add("reading", *u.Reading)
	}
	if len(sets) == 0 {
		return true, nil
	}

	args = append(args, memoryID)
	res, err := db.ExecContext(ctx,
		`UPDATE memories SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpdateAccess bumps access tracking for one memory.
func (s *MemoryStore) UpdateAccess(ctx context.Context, memoryID string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`UPDATE memories SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`,
		time.Now().Format(timeFmt), memoryID)
	return err
}

// UpdateEpisodeID sets (or clears, with "") the episode back-reference.
// Returns ErrNotFound when the memory does not exist.
func (s *MemoryStore) UpdateEpisodeID(ctx context.Context, memoryID, episodeID string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	var val interface{}
	if episodeID != "" {
		val = episodeID
	}
	res, err := db.ExecContext(ctx, `UPDATE memories SET episode_id = ? WHERE id = ?`, val, memoryID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("memory %s: %w", memoryID, ErrNotFound)
	}
	return nil
}

// RecordActivation increments the activation counter and optionally refreshes
// the stored prediction error. Returns false for a missing id.
func (s *MemoryStore) RecordActivation(ctx context.Context, memoryID string, predictionError *float64) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	now := time.Now().Format(timeFmt)

	var res sql.Result
	if predictionError != nil {
		res, err = db.ExecContext(ctx,
			`UPDATE memories
			 SET activation_count = activation_count + 1, last_activated = ?, prediction_error = ?
			 WHERE id = ?`,
			now, clamp01(*predictionError), memoryID)
	} else {
		res, err = db.ExecContext(ctx,
			`UPDATE memories SET activation_count = activation_count + 1, last_activated = ? WHERE id = ?`,
			now, memoryID)
	}
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// BumpCoactivation raises the coactivation weight between two memories by
// delta, symmetrically: both directed rows end at the same clamped weight.
// A missing id returns false and writes nothing.
func (s *MemoryStore) BumpCoactivation(ctx context.Context, sourceID, targetID string, delta float64) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}

	var count int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE id IN (?, ?)`, sourceID, targetID).Scan(&count)
	if err != nil {
		return false, err
	}
	if count != 2 {
		return false, nil
	}

	delta = clamp01(delta)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for _, pair := range [][2]string{{sourceID, targetID}, {targetID, sourceID}} {
		var current float64
		err := tx.QueryRowContext(ctx,
			`SELECT weight FROM coactivation WHERE source_id = ? AND target_id = ?`,
			pair[0], pair[1]).Scan(&current)
		if err != nil && err != sql.ErrNoRows {
			return false, err
		}
		weight := clamp01(current + delta)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO coactivation (source_id, target_id, weight) VALUES (?, ?, ?)
			 ON CONFLICT(source_id, target_id) DO UPDATE SET weight = excluded.weight`,
			pair[0], pair[1], weight); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// MaybeAddRelatedLink promotes a coactivation weight at or above threshold
// into a persistent "related" link. Returns true when a link was ensured.
func (s *MemoryStore) MaybeAddRelatedLink(ctx context.Context, sourceID, targetID string, threshold float64) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	var weight float64
	err = db.QueryRowContext(ctx,
		`SELECT weight FROM coactivation WHERE source_id = ? AND target_id = ?`,
		sourceID, targetID).Scan(&weight)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if weight < threshold {
		return false, nil
	}
	if err := s.AddCausalLink(ctx, sourceID, targetID, model.LinkRelated, "auto-linked by consolidation replay"); err != nil {
		return false, err
	}
	return true, nil
}

// AddCausalLink appends a typed directed link from source to target.
// Adding an identical (source, target, type) edge again is a no-op.
// Returns ErrNotFound if either endpoint is missing.
func (s *MemoryStore) AddCausalLink(ctx context.Context, sourceID, targetID, linkType, note string) error {
	source, err := s.GetByID(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if _, err := s.GetByID(ctx, targetID); err != nil {
		return fmt.Errorf("target: %w", err)
	}

	for _, link := range source.Links {
		if link.TargetID == targetID && link.LinkType == linkType {
			return nil
		}
	}

	links := append(source.Links, model.Link{
		TargetID:  targetID,
		LinkType:  linkType,
		CreatedAt: time.Now(),
		Note:      note,
	})
	_, err = s.UpdateMemoryFields(ctx, sourceID, FieldUpdates{Links: links})
	return err
}

// GetCausalChain walks typed causal links from a memory: "backward" follows
// caused_by edges, "forward" follows leads_to edges. The walk is depth-bounded
// and cycle-safe; dangling targets are skipped.
func (s *MemoryStore) GetCausalChain(ctx context.Context, memoryID, direction string, maxDepth int) ([]model.CausalHop, error) {
	var wantType string
	switch direction {
	case "backward":
		wantType = model.LinkCausedBy
	case "forward":
		wantType = model.LinkLeadsTo
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	if maxDepth > 5 {
		maxDepth = 5
	}

	visited := make(map[string]bool)
	var chain []model.CausalHop
	currentIDs := []string{memoryID}

	for depth := 0; depth < maxDepth && len(currentIDs) > 0; depth++ {
		var nextIDs []string
		for _, id := range currentIDs {
			if visited[id] {
				continue
			}
			visited[id] = true
			mem, err := s.GetByID(ctx, id)
			if err != nil {
				continue
			}
			for _, link := range mem.Links {
				if link.LinkType != wantType || visited[link.TargetID] {
					continue
				}
				target, err := s.GetByID(ctx, link.TargetID)
				if err != nil {
					continue
				}
				chain = append(chain, model.CausalHop{Memory: *target, LinkType: link.LinkType})
				nextIDs = append(nextIDs, link.TargetID)
			}
		}
		currentIDs = nextIDs
	}
	return chain, nil
}

// GetLinkedMemories walks legacy undirected links breadth-first up to depth,
// excluding the root. Cycle-safe; dangling ids are skipped.
func (s *MemoryStore) GetLinkedMemories(ctx context.Context, memoryID string, depth int) ([]model.Memory, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > 5 {
		depth = 5
	}

	visited := make(map[string]bool)
	var result []model.Memory
	currentIDs := []string{memoryID}

	for level := 0; level <= depth && len(currentIDs) > 0; level++ {
		var nextIDs []string
		for _, id := range currentIDs {
			if visited[id] {
				continue
			}
			visited[id] = true
			mem, err := s.GetByID(ctx, id)
			if err != nil {
				continue
			}
			if id != memoryID {
				result = append(result, *mem)
			}
			if level < depth {
				for _, linkedID := range mem.LinkedIDs {
					if !visited[linkedID] {
						nextIDs = append(nextIDs, linkedID)
					}
				}
			}
		}
		currentIDs = nextIDs
	}
	return result, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
