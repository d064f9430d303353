package association

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recollectdb/recollect/internal/model"
)

// fetchRecorder serves memories from a map and counts batch calls.
type fetchRecorder struct {
	memories map[string]model.Memory
	calls    [][]string
}

func (f *fetchRecorder) fetch(_ context.Context, ids []string) ([]model.Memory, error) {
	f.calls = append(f.calls, ids)
	var out []model.Memory
	for _, id := range ids {
		if m, ok := f.memories[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func mem(id string, linked ...string) model.Memory {
	return model.Memory{ID: id, LinkedIDs: linked}
}

func TestSpreadOneFetchPerLevel(t *testing.T) {
	// Two seeds share neighbor c: one level, one batch, c fetched once.
	f := &fetchRecorder{memories: map[string]model.Memory{
		"c": mem("c"),
	}}
	seeds := []model.Memory{mem("a", "c"), mem("b", "c")}

	expanded, diag, err := NewEngine().Spread(context.Background(), seeds, f.fetch, 3, 2)
	require.NoError(t, err)

	require.Len(t, f.calls, 1, "shared neighbor must be fetched in one batch")
	assert.Equal(t, []string{"c"}, f.calls[0])
	require.Len(t, expanded, 1)
	assert.Equal(t, "c", expanded[0].ID)
	assert.Equal(t, 2, diag.TraversedEdges, "each seed contributes its edge")
	assert.Equal(t, 1, diag.ExpandedNodes)
}

func TestSpreadDepthLayers(t *testing.T) {
	// a -> b -> c: depth 1 stops at b, depth 2 reaches c.
	f := &fetchRecorder{memories: map[string]model.Memory{
		"b": mem("b", "c"),
		"c": mem("c"),
	}}

	expanded, _, err := NewEngine().Spread(context.Background(), []model.Memory{mem("a", "b")}, f.fetch, 3, 1)
	require.NoError(t, err)
	require.Len(t, expanded, 1)
	assert.Equal(t, "b", expanded[0].ID)

	f.calls = nil
	expanded, diag, err := NewEngine().Spread(context.Background(), []model.Memory{mem("a", "b")}, f.fetch, 3, 2)
	require.NoError(t, err)
	require.Len(t, expanded, 2)
	assert.Len(t, f.calls, 2, "one batch per depth level")
	assert.Equal(t, 2, diag.ExpandedNodes)
}

func TestSpreadSkipsVisitedAndDangling(t *testing.T) {
	// b links back to seed a and to a dangling id; neither is re-fetched.
	f := &fetchRecorder{memories: map[string]model.Memory{
		"b": mem("b", "a", "ghost"),
	}}

	expanded, _, err := NewEngine().Spread(context.Background(), []model.Memory{mem("a", "b")}, f.fetch, 3, 3)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	for _, call := range f.calls {
		assert.NotContains(t, call, "a", "seeds are never re-fetched")
	}
	// The dangling id was requested once, then remembered as visited.
	danglingRequests := 0
	for _, call := range f.calls {
		for _, id := range call {
			if id == "ghost" {
				danglingRequests++
			}
		}
	}
	assert.Equal(t, 1, danglingRequests)
}

func TestSpreadBranchTruncationByWeight(t *testing.T) {
	seed := model.Memory{
		ID:        "seed",
		LinkedIDs: []string{"strong"},
		Links:     []model.Link{{TargetID: "typed", LinkType: model.LinkRelated}},
		Coactivations: []model.CoactivationEdge{
			{TargetID: "weak", Weight: 0.1},
		},
	}
	f := &fetchRecorder{memories: map[string]model.Memory{
		"strong": mem("strong"),
		"typed":  mem("typed"),
		"weak":   mem("weak"),
	}}

	_, _, err := NewEngine().Spread(context.Background(), []model.Memory{seed}, f.fetch, 2, 1)
	require.NoError(t, err)
	require.Len(t, f.calls, 1)
	// Legacy link (1.0) and typed related link (0.85) outrank the weak
	// coactivation edge (0.1) under a branch limit of 2.
	assert.ElementsMatch(t, []string{"strong", "typed"}, f.calls[0])
}

func TestSpreadEmptySeeds(t *testing.T) {
	f := &fetchRecorder{}
	expanded, diag, err := NewEngine().Spread(context.Background(), nil, f.fetch, 3, 3)
	require.NoError(t, err)
	assert.Empty(t, expanded)
	assert.Empty(t, f.calls)
	assert.Equal(t, 0, diag.ExpandedNodes)
}
