// Package hopfield implements a modern (dense) associative memory over stored
// embeddings. Retrieval is iterative pattern completion: every stored vector
// acts as an attractor and the query settles toward the nearest ones.
package hopfield

import (
	"math"
	"sort"
	"sync"

	"github.com/recollectdb/recollect/internal/embedding"
)

// RecallResult is one pattern-completion hit.
type RecallResult struct {
	MemoryID string  `json:"memory_id"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// Network is a one-shot modern Hopfield network. Store replaces the whole
// pattern matrix; there is no training.
type Network struct {
	mu       sync.RWMutex
	beta     float64
	nIters   int
	patterns []embedding.Vector // unit-normalized
	ids      []string
	contents []string
	loaded   bool
}

// NewNetwork creates a network with inverse-temperature beta and the given
// number of update iterations.
func NewNetwork(beta float64, nIters int) *Network {
	if beta <= 0 {
		beta = 4.0
	}
	if nIters <= 0 {
		nIters = 3
	}
	return &Network{beta: beta, nIters: nIters}
}

// Store loads the pattern matrix. Vectors are normalized on the way in.
// Passing empty slices clears the network but still counts as loaded.
func (n *Network) Store(vectors []embedding.Vector, ids, contents []string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.patterns = make([]embedding.Vector, len(vectors))
	for i, v := range vectors {
		n.patterns[i] = embedding.Normalize(v)
	}
	n.ids = ids
	n.contents = contents
	n.loaded = true
}

// IsLoaded reports whether Store has run.
func (n *Network) IsLoaded() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.loaded
}

// Len is the number of stored patterns.
func (n *Network) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.patterns)
}

// Retrieve runs the modern Hopfield update
//
//	ξ ← X^T softmax(β X ξ)
//
// for the configured number of iterations and returns the final per-pattern
// similarities. A beta override <= 0 uses the configured beta.
func (n *Network) Retrieve(query embedding.Vector, betaOverride float64) []float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if len(n.patterns) == 0 {
		return nil
	}
	beta := n.beta
	if betaOverride > 0 {
		beta = betaOverride
	}

	state := embedding.Normalize(query)
	sims := make([]float64, len(n.patterns))

	for iter := 0; iter < n.nIters; iter++ {
		for i, p := range n.patterns {
			sims[i] = dot(state, p)
		}
		weights := softmax(sims, beta)

		next := make(embedding.Vector, len(state))
		for i, p := range n.patterns {
			w := float32(weights[i])
			for d := range p {
				next[d] += w * p[d]
			}
		}
		state = embedding.Normalize(next)
	}

	for i, p := range n.patterns {
		sims[i] = dot(state, p)
	}
	return sims
}

// RecallResults converts similarities into a top-k ranked view.
func (n *Network) RecallResults(sims []float64, k int) []RecallResult {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if len(sims) == 0 || len(sims) != len(n.ids) {
		return nil
	}
	idx := make([]int, len(sims))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return sims[idx[a]] > sims[idx[b]] })

	if k > len(idx) {
		k = len(idx)
	}
	results := make([]RecallResult, 0, k)
	for _, i := range idx[:k] {
		results = append(results, RecallResult{
			MemoryID: n.ids[i],
			Content:  n.contents[i],
			Score:    sims[i],
		})
	}
	return results
}

func dot(a, b embedding.Vector) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func softmax(scores []float64, beta float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		if beta*s > maxScore {
			maxScore = beta * s
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(beta*s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
