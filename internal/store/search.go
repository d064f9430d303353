package store

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/recollectdb/recollect/internal/embedding"
	"github.com/recollectdb/recollect/internal/lexical"
	"github.com/recollectdb/recollect/internal/model"
	"github.com/recollectdb/recollect/internal/normalize"
)

// SearchParams holds the query and conjunction filters for semantic search.
type SearchParams struct {
	Query          string
	NResults       int
	EmotionFilter  string
	CategoryFilter string
	DateFrom       time.Time
	DateTo         time.Time
}

// ScoringParams extends SearchParams with scoring controls.
type ScoringParams struct {
	SearchParams
	UseTimeDecay      bool
	UseEmotionBoost   bool
	DecayHalfLifeDays float64
}

// DefaultScoring enables decay and emotion boosts with the store's half-life.
func (s *MemoryStore) DefaultScoring(p SearchParams) ScoringParams {
	return ScoringParams{
		SearchParams:      p,
		UseTimeDecay:      true,
		UseEmotionBoost:   true,
		DecayHalfLifeDays: s.opts.DecayHalfLifeDays,
	}
}

type distancePair struct {
	memory   model.Memory
	distance float64
}

// vectorSearch is the brute-force scan: filter rows, cosine against every
// stored embedding, sort ascending by distance = 1 - similarity.
func (s *MemoryStore) vectorSearch(ctx context.Context, p SearchParams) ([]distancePair, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	queryVec, err := s.encodeQuery(ctx, normalize.Text(p.Query))
	if err != nil {
		return nil, err
	}
	queryVec = embedding.Normalize(queryVec)

	where := ""
	var conditions []string
	var args []interface{}
	if p.EmotionFilter != "" {
		conditions = append(conditions, "m.emotion = ?")
		args = append(args, p.EmotionFilter)
	}
	if p.CategoryFilter != "" {
		conditions = append(conditions, "m.category = ?")
		args = append(args, p.CategoryFilter)
	}
	if !p.DateFrom.IsZero() {
		conditions = append(conditions, "m.timestamp >= ?")
		args = append(args, p.DateFrom.Format(timeFmt))
	}
	if !p.DateTo.IsZero() {
		conditions = append(conditions, "m.timestamp <= ?")
		args = append(args, p.DateTo.Format(timeFmt))
	}
	for i, c := range conditions {
		if i == 0 {
			where = " WHERE " + c
		} else {
			where += " AND " + c
		}
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+memoryColumnsPrefixed+`, e.vector
		 FROM memories m JOIN embeddings e ON m.id = e.memory_id`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []distancePair
	for rows.Next() {
		m, vec, err := scanMemoryWithVector(rows)
		if err != nil {
			return nil, err
		}
		sim := embedding.CosineSimilarity(queryVec, embedding.Normalize(vec))
		pairs = append(pairs, distancePair{memory: m, distance: 1.0 - sim})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].distance < pairs[j].distance })
	if p.NResults > 0 && len(pairs) > p.NResults {
		pairs = pairs[:p.NResults]
	}

	// Coactivation edges only for the surviving top-n.
	ids := make([]string, len(pairs))
	for i := range pairs {
		ids[i] = pairs[i].memory.ID
	}
	coact, err := s.loadCoactivations(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range pairs {
		pairs[i].memory.Coactivations = coact[pairs[i].memory.ID]
	}
	return pairs, nil
}

// Search finds memories by semantic similarity, sorted ascending by distance.
func (s *MemoryStore) Search(ctx context.Context, p SearchParams) ([]model.SearchResult, error) {
	if p.NResults <= 0 {
		p.NResults = 5
	}
	pairs, err := s.vectorSearch(ctx, p)
	if err != nil {
		return nil, err
	}
	results := make([]model.SearchResult, 0, len(pairs))
	for _, pair := range pairs {
		results = append(results, model.SearchResult{
			Memory:   pair.memory,
			Distance: pair.distance,
			Tier:     model.TierPrimary,
		})
	}
	return results, nil
}

// SearchWithScoring over-fetches three times the requested count (capped at
// 50), blends distance with recency decay, emotion, and importance boosts,
// optionally adds a lexical-overlap boost and an exact-reading-match bonus,
// then returns the lowest-scored n results.
func (s *MemoryStore) SearchWithScoring(ctx context.Context, p ScoringParams) ([]model.ScoredMemory, error) {
	if p.NResults <= 0 {
		p.NResults = 5
	}
	halfLife := p.DecayHalfLifeDays
	if halfLife <= 0 {
		halfLife = s.opts.DecayHalfLifeDays
	}

	fetch := p.SearchParams
	fetch.NResults = p.NResults * 3
	if fetch.NResults > 50 {
		fetch.NResults = 50
	}
	pairs, err := s.vectorSearch(ctx, fetch)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	scored := make([]model.ScoredMemory, 0, len(pairs))
	for _, pair := range pairs {
		decay := 1.0
		if p.UseTimeDecay {
			decay = timeDecay(pair.memory.Timestamp, now, halfLife)
		}
		emotion := 0.0
		if p.UseEmotionBoost {
			emotion = emotionBoost(pair.memory.Emotion)
		}
		importance := importanceBoost(pair.memory.Importance)
		scored = append(scored, model.ScoredMemory{
			Memory:           pair.memory,
			SemanticDistance: pair.distance,
			TimeDecayFactor:  decay,
			EmotionBoost:     emotion,
			ImportanceBoost:  importance,
			FinalScore:       finalScore(pair.distance, decay, emotion, importance),
		})
	}

	if s.opts.EnableLexical && len(scored) > 0 {
		if err := s.applyLexicalBoost(ctx, p.Query, scored); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].FinalScore < scored[j].FinalScore })
	if len(scored) > p.NResults {
		scored = scored[:p.NResults]
	}
	return scored, nil
}

// applyLexicalBoost subtracts a BM25 boost and an exact-reading-match bonus
// from the final scores. The boost applies after the base-score floor, so a
// strong lexical match can push its final negative. The index rebuilds lazily
// when a write marked it stale.
func (s *MemoryStore) applyLexicalBoost(ctx context.Context, query string, scored []model.ScoredMemory) error {
	if s.lexical.IsDirty() {
		all, err := s.GetAll(ctx)
		if err != nil {
			return err
		}
		docs := make([]lexical.Document, 0, len(all))
		for _, m := range all {
			docs = append(docs, lexical.Document{ID: m.ID, Content: m.NormalizedContent})
		}
		s.lexical.Build(docs)
	}

	ids := make([]string, len(scored))
	for i := range scored {
		ids[i] = scored[i].Memory.ID
	}
	bm25 := s.lexical.Scores(normalize.Text(query), ids)

	queryReading, hasReading := s.opts.Reading(query)
	for i := range scored {
		boost := bm25[scored[i].Memory.ID] * lexicalWeight
		if hasReading && scored[i].Memory.Reading != "" && scored[i].Memory.Reading == queryReading {
			boost += readingWeight
		}
		scored[i].FinalScore -= boost
	}
	return nil
}

// ListRecent lists memories sorted by timestamp descending.
func (s *MemoryStore) ListRecent(ctx context.Context, limit int, categoryFilter string) ([]model.Memory, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT ` + memoryColumns + ` FROM memories ORDER BY timestamp DESC LIMIT ?`
	args := []interface{}{limit}
	if categoryFilter != "" {
		query = `SELECT ` + memoryColumns + ` FROM memories WHERE category = ? ORDER BY timestamp DESC LIMIT ?`
		args = []interface{}{categoryFilter, limit}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.attachCoactivations(ctx, db, memories)
}

// SearchImportant returns frequently accessed, high-importance memories
// ordered by last access.
func (s *MemoryStore) SearchImportant(ctx context.Context, minImportance, minAccessCount int, since time.Time, nResults int) ([]model.Memory, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if nResults <= 0 {
		nResults = 10
	}

	query := `SELECT ` + memoryColumns + ` FROM memories WHERE importance >= ? AND access_count >= ?`
	args := []interface{}{minImportance, minAccessCount}
	if !since.IsZero() {
		query += ` AND last_accessed >= ?`
		args = append(args, since.Format(timeFmt))
	}
	query += ` ORDER BY last_accessed DESC LIMIT ?`
	args = append(args, nResults)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.attachCoactivations(ctx, db, memories)
}

// GetStats summarizes stored memories by category and emotion.
func (s *MemoryStore) GetStats(ctx context.Context) (*model.Stats, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	stats := &model.Stats{
		ByCategory: make(map[string]int),
		ByEmotion:  make(map[string]int),
	}

	rows, err := db.QueryContext(ctx, `SELECT emotion, category FROM memories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var emotion, category string
		if err := rows.Scan(&emotion, &category); err != nil {
			return nil, err
		}
		if emotion == "" {
			emotion = "neutral"
		}
		if category == "" {
			category = "daily"
		}
		stats.ByEmotion[emotion]++
		stats.ByCategory[category]++
		stats.TotalCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var oldest, newest sql.NullString
	if err := db.QueryRowContext(ctx,
		`SELECT MIN(timestamp), MAX(timestamp) FROM memories`).Scan(&oldest, &newest); err == nil {
		stats.OldestTimestamp = oldest.String
		stats.NewestTimestamp = newest.String
	}
	return stats, nil
}
