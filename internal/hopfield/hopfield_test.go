package hopfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recollectdb/recollect/internal/embedding"
)

func storedNetwork() *Network {
	n := NewNetwork(4.0, 3)
	n.Store(
		[]embedding.Vector{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
		[]string{"x", "y", "z"},
		[]string{"pattern x", "pattern y", "pattern z"},
	)
	return n
}

func TestRetrieveSettlesOnNearestAttractor(t *testing.T) {
	n := storedNetwork()

	// A query near the first pattern should settle on it.
	sims := n.Retrieve(embedding.Vector{0.9, 0.1, 0}, 0)
	require.Len(t, sims, 3)
	assert.Greater(t, sims[0], sims[1])
	assert.Greater(t, sims[0], sims[2])
	assert.InDelta(t, 1.0, sims[0], 0.05, "iteration should pull the state into the attractor")
}

func TestRetrieveBetaOverride(t *testing.T) {
	n := storedNetwork()
	query := embedding.Vector{0.7, 0.3, 0}

	sharp := n.Retrieve(query, 50.0)
	soft := n.Retrieve(query, 0.01)

	// High beta snaps to the winner; low beta blends the patterns.
	assert.Greater(t, sharp[0], soft[0])
	assert.Less(t, sharp[1], soft[1])
}

func TestRecallResultsTopK(t *testing.T) {
	n := storedNetwork()
	sims := n.Retrieve(embedding.Vector{0, 0.9, 0.2}, 0)

	results := n.RecallResults(sims, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "y", results[0].MemoryID)
	assert.Equal(t, "pattern y", results[0].Content)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	// k beyond the pattern count is capped.
	assert.Len(t, n.RecallResults(sims, 10), 3)
	assert.Nil(t, n.RecallResults(nil, 2))
}

func TestEmptyNetwork(t *testing.T) {
	n := NewNetwork(0, 0) // defaults apply
	assert.False(t, n.IsLoaded())
	assert.Nil(t, n.Retrieve(embedding.Vector{1, 0}, 0))

	n.Store(nil, nil, nil)
	assert.True(t, n.IsLoaded(), "an explicit empty snapshot still counts as loaded")
	assert.Equal(t, 0, n.Len())
}
