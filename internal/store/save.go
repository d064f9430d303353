package store

import (
	"context"
	"fmt"
	"time"

	"github.com/recollectdb/recollect/internal/embedding"
	"github.com/recollectdb/recollect/internal/model"
	"github.com/recollectdb/recollect/internal/normalize"
)

// SaveParams holds parameters for saving a memory.
type SaveParams struct {
	Content    string
	Emotion    string   // default "neutral"
	Importance int      // clamped to [1, 5]; zero clamps to 1
	Category   string   // default "daily"
	EpisodeID  string
	Tags       []string
}

func (p *SaveParams) fill() {
	if p.Emotion == "" {
		p.Emotion = "neutral"
	}
	if p.Category == "" {
		p.Category = "daily"
	}
	p.Importance = model.ClampImportance(p.Importance)
}

func (s *MemoryStore) encodeDocument(ctx context.Context, text string) (embedding.Vector, error) {
	if err := s.embedSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.embedSem.Release(1)
	return s.opts.Embedder.EncodeDocument(ctx, text)
}

func (s *MemoryStore) encodeQuery(ctx context.Context, text string) (embedding.Vector, error) {
	if err := s.embedSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.embedSem.Release(1)
	return s.opts.Embedder.EncodeQuery(ctx, text)
}

// Save persists a new memory and its embedding in one transaction.
// An embedding failure aborts the save; a memory is never stored without its
// vector. No linking happens here.
func (s *MemoryStore) Save(ctx context.Context, p SaveParams) (*model.Memory, error) {
	return s.save(ctx, p, nil)
}

// SaveWithAutoLink saves a memory and bidirectionally links it to existing
// memories whose semantic distance to the new content is at most
// linkThreshold, keeping at most maxLinks of them.
func (s *MemoryStore) SaveWithAutoLink(ctx context.Context, p SaveParams, linkThreshold float64, maxLinks int) (*model.Memory, error) {
	if maxLinks <= 0 {
		maxLinks = 5
	}
	similar, err := s.Search(ctx, SearchParams{Query: p.Content, NResults: maxLinks})
	if err != nil {
		return nil, fmt.Errorf("auto-link search: %w", err)
	}
	var linkedIDs []string
	for _, r := range similar {
		if r.Distance <= linkThreshold {
			linkedIDs = append(linkedIDs, r.Memory.ID)
		}
	}

	mem, err := s.save(ctx, p, linkedIDs)
	if err != nil {
		return nil, err
	}
	for _, targetID := range linkedIDs {
		if err := s.addBidirectionalLink(ctx, mem.ID, targetID); err != nil {
			return nil, fmt.Errorf("auto-link %s: %w", targetID, err)
		}
	}
	return mem, nil
}

func (s *MemoryStore) save(ctx context.Context, p SaveParams, linkedIDs []string) (*model.Memory, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	p.fill()

	now := time.Now()
	mem := &model.Memory{
		ID:         s.newID(),
		Content:    p.Content,
		Timestamp:  now,
		Emotion:    p.Emotion,
		Importance: p.Importance,
		Category:   p.Category,
		EpisodeID:  p.EpisodeID,
		Tags:       p.Tags,
		LinkedIDs:  linkedIDs,
	}
	mem.NormalizedContent = normalize.Text(p.Content)
	if reading, ok := s.opts.Reading(p.Content); ok {
		mem.Reading = reading
	}

	vec, err := s.encodeDocument(ctx, mem.NormalizedContent)
	if err != nil {
		return nil, fmt.Errorf("embed document: %w", err)
	}

	tagsJSON, err := encodeStringList(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var episodeID interface{}
	if mem.EpisodeID != "" {
		episodeID = mem.EpisodeID
	}
	var reading interface{}
	if mem.Reading != "" {
		reading = mem.Reading
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memories (
			id, content, normalized_content, timestamp, emotion, importance, category,
			access_count, last_accessed, linked_ids, episode_id, tags, links,
			novelty_score, prediction_error, activation_count, last_activated, reading
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?, ?, '', 0, 0, 0, NULL, ?)`,
		mem.ID, mem.Content, mem.NormalizedContent, now.Format(timeFmt),
		mem.Emotion, mem.Importance, mem.Category,
		joinIDList(linkedIDs), episodeID, tagsJSON, reading)
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO embeddings (memory_id, vector) VALUES (?, ?)`,
		mem.ID, embedding.EncodeVector(vec))
	if err != nil {
		return nil, fmt.Errorf("insert embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.lexical.MarkDirty()
	s.working.Add(*mem)
	return mem, nil
}

// addBidirectionalLink adds each id to the other's linked_ids, duplicate-safe.
func (s *MemoryStore) addBidirectionalLink(ctx context.Context, sourceID, targetID string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, pair := range [][2]string{{sourceID, targetID}, {targetID, sourceID}} {
		memID, otherID := pair[0], pair[1]
		var current string
		err := tx.QueryRowContext(ctx, `SELECT linked_ids FROM memories WHERE id = ?`, memID).Scan(&current)
		if err != nil {
			continue
		}
		ids := parseIDList(current)
		exists := false
		for _, id := range ids {
			if id == otherID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		ids = append(ids, otherID)
		if _, err := tx.ExecContext(ctx,
			`UPDATE memories SET linked_ids = ? WHERE id = ?`, joinIDList(ids), memID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
