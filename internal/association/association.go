// Package association expands an associative neighborhood over explicit and
// implicit memory links.
package association

import (
	"context"
	"sort"

	"github.com/recollectdb/recollect/internal/model"
)

// BatchFetchFunc loads memories for a batch of ids. Missing ids are simply
// absent from the result; the traversal skips them.
type BatchFetchFunc func(ctx context.Context, ids []string) ([]model.Memory, error)

// Diagnostics describes one spread traversal.
type Diagnostics struct {
	BranchesUsed       int     `json:"branches_used"`
	DepthUsed          int     `json:"depth_used"`
	TraversedEdges     int     `json:"traversed_edges"`
	ExpandedNodes      int     `json:"expanded_nodes"`
	AvgBranchingFactor float64 `json:"avg_branching_factor"`
}

// Engine walks the link graph breadth-first.
type Engine struct{}

// NewEngine creates an association engine.
func NewEngine() *Engine { return &Engine{} }

// Spread expands from the seed memories through legacy links, typed links, and
// coactivation edges. The walk is breadth-first by depth layer and issues
// exactly one batched fetch per level for every neighbor id needed at that
// level; nodes shared by multiple seeds are fetched once. Seeds and already
// expanded nodes are never re-expanded.
func (e *Engine) Spread(ctx context.Context, seeds []model.Memory, fetch BatchFetchFunc, maxBranches, maxDepth int) ([]model.Memory, Diagnostics, error) {
	diag := Diagnostics{BranchesUsed: maxBranches, DepthUsed: maxDepth}
	if len(seeds) == 0 {
		return nil, diag, nil
	}

	visited := make(map[string]bool, len(seeds))
	for _, m := range seeds {
		visited[m.ID] = true
	}

	frontier := seeds
	var expanded []model.Memory
	var branchingCounts []int

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		// Collect the id batch for this whole level before touching storage.
		var levelIDs []string
		queued := make(map[string]bool)
		for i := range frontier {
			neighbors := neighborCandidates(&frontier[i], maxBranches)
			branchingCounts = append(branchingCounts, len(neighbors))
			for _, id := range neighbors {
				diag.TraversedEdges++
				if visited[id] || queued[id] {
					continue
				}
				queued[id] = true
				levelIDs = append(levelIDs, id)
			}
		}
		if len(levelIDs) == 0 {
			break
		}

		fetched, err := fetch(ctx, levelIDs)
		if err != nil {
			return nil, diag, err
		}
		// Dangling link targets stay in visited so they are not re-fetched.
		for _, id := range levelIDs {
			visited[id] = true
		}

		expanded = append(expanded, fetched...)
		frontier = fetched
	}

	diag.ExpandedNodes = len(expanded)
	if len(branchingCounts) > 0 {
		sum := 0
		for _, c := range branchingCounts {
			sum += c
		}
		diag.AvgBranchingFactor = float64(sum) / float64(len(branchingCounts))
	}
	return expanded, diag, nil
}

// neighborCandidates collects neighbor ids ordered by edge confidence:
// legacy links at 1.0, typed links by type, coactivation by stored weight.
// Duplicates keep the strongest weight.
func neighborCandidates(m *model.Memory, maxBranches int) []string {
	weights := make(map[string]float64)
	bump := func(id string, w float64) {
		if cur, ok := weights[id]; !ok || cur < w {
			weights[id] = w
		}
	}

	for _, id := range m.LinkedIDs {
		bump(id, 1.0)
	}
	for _, link := range m.Links {
		base := 0.8
		switch link.LinkType {
		case model.LinkSimilar:
			base = 1.0
		case model.LinkRelated, model.LinkCausedBy, model.LinkLeadsTo:
			base = 0.85
		}
		bump(link.TargetID, base)
	}
	for _, edge := range m.Coactivations {
		w := edge.Weight
		if w < 0 {
			w = 0
		}
		if w > 1 {
			w = 1
		}
		bump(edge.TargetID, w)
	}

	ordered := make([]string, 0, len(weights))
	for id := range weights {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if weights[ordered[i]] != weights[ordered[j]] {
			return weights[ordered[i]] > weights[ordered[j]]
		}
		return ordered[i] < ordered[j]
	})
	if len(ordered) > maxBranches {
		ordered = ordered[:maxBranches]
	}
	return ordered
}
