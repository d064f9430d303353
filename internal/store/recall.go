package store

import (
	"context"
	"log/slog"
	"sort"

	"github.com/recollectdb/recollect/internal/embedding"
	"github.com/recollectdb/recollect/internal/hopfield"
	"github.com/recollectdb/recollect/internal/model"
	"github.com/recollectdb/recollect/internal/normalize"
)

// hopfieldWeight scales the pattern-completion boost blended into recall.
const hopfieldWeight = 0.15

// Recall blends scored semantic search with Hopfield pattern completion over
// the same candidate pool. Hopfield unavailability degrades to zero boost.
func (s *MemoryStore) Recall(ctx context.Context, context_ string, nResults int) ([]model.SearchResult, error) {
	if nResults <= 0 {
		nResults = 3
	}
	poolSize := nResults * 3
	if poolSize > 20 {
		poolSize = 20
	}

	scored, err := s.SearchWithScoring(ctx, s.DefaultScoring(SearchParams{Query: context_, NResults: poolSize}))
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}

	hopfieldScores := make(map[string]float64)
	hits, err := s.HopfieldRecall(ctx, context_, poolSize, 0, true)
	if err != nil {
		slog.Warn("hopfield recall degraded to zero boost", "error", err)
	} else {
		for _, h := range hits {
			hopfieldScores[h.MemoryID] = h.Score
		}
	}

	type blended struct {
		sm    model.ScoredMemory
		score float64
	}
	out := make([]blended, 0, len(scored))
	for _, sm := range scored {
		boost := hopfieldScores[sm.Memory.ID]
		if boost < 0 {
			boost = 0
		}
		out = append(out, blended{sm: sm, score: sm.FinalScore - boost*hopfieldWeight})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score < out[j].score })
	if len(out) > nResults {
		out = out[:nResults]
	}

	results := make([]model.SearchResult, 0, len(out))
	for _, b := range out {
		results = append(results, model.SearchResult{
			Memory:   b.sm.Memory,
			Distance: b.score,
			Tier:     model.TierPrimary,
		})
	}
	return results, nil
}

// RecallWithChain runs Recall, then appends each hit's linked memories up to
// chainDepth as a separate associative tier. Associative results carry
// TierAssociative and no meaningful distance; callers must not compare the
// two tiers numerically.
func (s *MemoryStore) RecallWithChain(ctx context.Context, context_ string, nResults, chainDepth int) ([]model.SearchResult, error) {
	primary, err := s.Recall(ctx, context_, nResults)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(primary))
	for _, r := range primary {
		seen[r.Memory.ID] = true
	}

	results := primary
	for _, r := range primary {
		linked, err := s.GetLinkedMemories(ctx, r.Memory.ID, chainDepth)
		if err != nil {
			return nil, err
		}
		for _, mem := range linked {
			if seen[mem.ID] {
				continue
			}
			seen[mem.ID] = true
			results = append(results, model.SearchResult{
				Memory: mem,
				Tier:   model.TierAssociative,
			})
		}
	}
	return results, nil
}

// HopfieldLoad snapshots all stored embeddings into the Hopfield network.
// The snapshot is cached until the next explicit load. Returns the number of
// patterns loaded.
func (s *MemoryStore) HopfieldLoad(ctx context.Context) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT e.memory_id, e.vector, m.normalized_content
		 FROM embeddings e JOIN memories m ON m.id = e.memory_id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var ids, contents []string
	var vectors []embedding.Vector
	for rows.Next() {
		var id, content string
		var blob []byte
		if err := rows.Scan(&id, &blob, &content); err != nil {
			return 0, err
		}
		vec, err := embedding.DecodeVector(blob)
		if err != nil {
			slog.Warn("skipping corrupt embedding", "memory_id", id, "error", err)
			continue
		}
		ids = append(ids, id)
		contents = append(contents, content)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	s.hopfield.Store(vectors, ids, contents)
	return s.hopfield.Len(), nil
}

// HopfieldRecall retrieves pattern-completion matches for a query. betaOverride
// <= 0 keeps the configured beta. With autoLoad, an unloaded network is
// snapshotted first; an unloaded network otherwise yields no results.
func (s *MemoryStore) HopfieldRecall(ctx context.Context, query string, nResults int, betaOverride float64, autoLoad bool) ([]hopfield.RecallResult, error) {
	if autoLoad && !s.hopfield.IsLoaded() {
		if _, err := s.HopfieldLoad(ctx); err != nil {
			return nil, err
		}
	}
	if !s.hopfield.IsLoaded() {
		return nil, nil
	}

	queryVec, err := s.encodeQuery(ctx, normalize.Text(query))
	if err != nil {
		return nil, err
	}
	sims := s.hopfield.Retrieve(queryVec, betaOverride)
	return s.hopfield.RecallResults(sims, nResults), nil
}
