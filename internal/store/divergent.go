package store

import (
	"context"

	"github.com/recollectdb/recollect/internal/consolidate"
	"github.com/recollectdb/recollect/internal/model"
	"github.com/recollectdb/recollect/internal/predictive"
	"github.com/recollectdb/recollect/internal/workspace"
)

// DivergentParams configures divergent recall.
type DivergentParams struct {
	Context            string
	NResults           int     // clamped [1, 20]
	MaxBranches        int     // requested; adapted by query ambiguity
	MaxDepth           int     // requested; adapted by query ambiguity
	Temperature        float64 // workspace competition temperature
	IncludeDiagnostics bool
	RecordActivation   bool
}

// DivergentDiagnostics describes one divergent recall run.
type DivergentDiagnostics struct {
	Context             string  `json:"context"`
	BranchesUsed        int     `json:"branches_used"`
	DepthUsed           int     `json:"depth_used"`
	AdaptiveBranchLimit int     `json:"adaptive_branch_limit"`
	AdaptiveDepthLimit  int     `json:"adaptive_depth_limit"`
	TraversedEdges      int     `json:"traversed_edges"`
	ExpandedNodes       int     `json:"expanded_nodes"`
	AvgBranchingFactor  float64 `json:"avg_branching_factor"`
	SelectedCount       int     `json:"selected_count"`
	DiversityScore      float64 `json:"diversity_score"`
	AvgPredictionError  float64 `json:"avg_prediction_error"`
	AvgNovelty          float64 `json:"avg_novelty"`
}

// RecallDivergent retrieves beyond nearest neighbors: scored seeds spread
// through the link graph, candidates get predictive features, and the
// workspace competition picks a diverse winning set. Winning utilities become
// pseudo-distances max(0, 1-utility).
func (s *MemoryStore) RecallDivergent(ctx context.Context, p DivergentParams) ([]model.SearchResult, *DivergentDiagnostics, error) {
	nResults := p.NResults
	if nResults < 1 {
		nResults = 1
	}
	if nResults > 20 {
		nResults = 20
	}
	if p.MaxBranches <= 0 {
		p.MaxBranches = 3
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 3
	}
	if p.Temperature == 0 {
		p.Temperature = 0.7
	}

	seedSize := nResults * 3
	if seedSize < 3 {
		seedSize = 3
	}
	if seedSize > 25 {
		seedSize = 25
	}
	seeds, err := s.SearchWithScoring(ctx, s.DefaultScoring(SearchParams{Query: p.Context, NResults: seedSize}))
	if err != nil {
		return nil, nil, err
	}
	if len(seeds) == 0 {
		if p.IncludeDiagnostics {
			return nil, &DivergentDiagnostics{Context: p.Context}, nil
		}
		return nil, nil, nil
	}

	branchLimit, depthLimit := predictive.AdaptiveSearchParams(p.Context, p.MaxBranches, p.MaxDepth, len(seeds))

	seedMemories := make([]model.Memory, 0, len(seeds))
	distanceBySeed := make(map[string]float64, len(seeds))
	for _, sm := range seeds {
		seedMemories = append(seedMemories, sm.Memory)
		distanceBySeed[sm.Memory.ID] = sm.SemanticDistance
	}

	expanded, assocDiag, err := s.assoc.Spread(ctx, seedMemories, s.GetByIDs, branchLimit, depthLimit)
	if err != nil {
		return nil, nil, err
	}

	// Seeds win over expanded duplicates; order is seeds first.
	var pool []model.Memory
	inPool := make(map[string]bool)
	for _, m := range append(seedMemories, expanded...) {
		if inPool[m.ID] {
			continue
		}
		inPool[m.ID] = true
		pool = append(pool, m)
	}

	candidates := make([]workspace.Candidate, 0, len(pool))
	var sumPredictionError, sumNovelty float64
	for i := range pool {
		m := pool[i]

		var relevance float64
		if distance, isSeed := distanceBySeed[m.ID]; isSeed {
			if distance < 0 {
				distance = 0
			}
			relevance = 1.0 / (1.0 + distance)
		} else {
			relevance = predictive.ContextRelevance(p.Context, &m)
		}

		predictionError := predictive.PredictionError(p.Context, &m)
		novelty := predictive.NoveltyScore(&m, predictionError)
		normalizedEmotion := clamp01(emotionBoost(m.Emotion) / 0.4)

		sumPredictionError += predictionError
		sumNovelty += novelty
		candidates = append(candidates, workspace.Candidate{
			Memory:          m,
			Relevance:       relevance,
			Novelty:         novelty,
			PredictionError: predictionError,
			EmotionBoost:    normalizedEmotion,
		})
	}

	selected := workspace.Select(candidates, nResults, p.Temperature)

	results := make([]model.SearchResult, 0, len(selected))
	selectedMemories := make([]model.Memory, 0, len(selected))
	for _, win := range selected {
		mem := win.Candidate.Memory
		selectedMemories = append(selectedMemories, mem)

		if p.RecordActivation {
			pe := win.Candidate.PredictionError
			if _, err := s.RecordActivation(ctx, mem.ID, &pe); err != nil {
				return nil, nil, err
			}
			novelty := win.Candidate.Novelty
			if _, err := s.UpdateMemoryFields(ctx, mem.ID, FieldUpdates{
				NoveltyScore:    &novelty,
				PredictionError: &pe,
			}); err != nil {
				return nil, nil, err
			}
		}

		distance := 1.0 - win.Utility
		if distance < 0 {
			distance = 0
		}
		results = append(results, model.SearchResult{
			Memory:   mem,
			Distance: distance,
			Tier:     model.TierPrimary,
		})
	}

	if !p.IncludeDiagnostics {
		return results, nil, nil
	}

	diag := &DivergentDiagnostics{
		Context:             p.Context,
		BranchesUsed:        assocDiag.BranchesUsed,
		DepthUsed:           assocDiag.DepthUsed,
		AdaptiveBranchLimit: branchLimit,
		AdaptiveDepthLimit:  depthLimit,
		TraversedEdges:      assocDiag.TraversedEdges,
		ExpandedNodes:       assocDiag.ExpandedNodes,
		AvgBranchingFactor:  assocDiag.AvgBranchingFactor,
		SelectedCount:       len(selectedMemories),
		DiversityScore:      workspace.DiversityScore(selectedMemories),
	}
	if len(candidates) > 0 {
		diag.AvgPredictionError = sumPredictionError / float64(len(candidates))
		diag.AvgNovelty = sumNovelty / float64(len(candidates))
	}
	return results, diag, nil
}

// AssociationDiagnostics runs a diagnostics-only divergent recall probe
// without recording activations.
func (s *MemoryStore) AssociationDiagnostics(ctx context.Context, context_ string, sampleSize int) (*DivergentDiagnostics, error) {
	if sampleSize < 3 {
		sampleSize = 3
	}
	if sampleSize > 20 {
		sampleSize = 20
	}
	_, diag, err := s.RecallDivergent(ctx, DivergentParams{
		Context:            context_,
		NResults:           sampleSize,
		MaxBranches:        4,
		MaxDepth:           3,
		IncludeDiagnostics: true,
		RecordActivation:   false,
	})
	if err != nil {
		return nil, err
	}
	if diag == nil {
		diag = &DivergentDiagnostics{Context: context_}
	}
	return diag, nil
}

// Consolidate runs a replay pass over recently saved memories.
func (s *MemoryStore) Consolidate(ctx context.Context, windowHours, maxReplayEvents int, linkUpdateStrength float64) (consolidate.Stats, error) {
	if maxReplayEvents <= 0 {
		maxReplayEvents = 200
	}
	return s.consolidate.Run(ctx, s, windowHours, maxReplayEvents, linkUpdateStrength)
}
