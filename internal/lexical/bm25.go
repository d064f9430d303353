package lexical

import (
	"math"
	"sync"
)

// BM25+ parameters, matching the usual defaults.
const (
	k1    = 1.5
	b     = 0.75
	delta = 1.0
)

// Document is one indexed memory.
type Document struct {
	ID      string
	Content string
}

// Index is an in-memory BM25+ index over all memories. A dirty flag marks the
// index stale after writes; callers rebuild lazily on the next search instead
// of maintaining it incrementally.
type Index struct {
	mu        sync.RWMutex
	dirty     bool
	docIDs    []string
	docTokens [][]string
	docLens   []int
	avgLen    float64
	termDocs  map[string]int // term -> number of docs containing it
}

// NewIndex creates an empty index, marked dirty so the first search builds it.
func NewIndex() *Index {
	return &Index{dirty: true}
}

// MarkDirty flags the index stale after a memory write.
func (ix *Index) MarkDirty() {
	ix.mu.Lock()
	ix.dirty = true
	ix.mu.Unlock()
}

// IsDirty reports whether the index needs a rebuild.
func (ix *Index) IsDirty() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dirty
}

// Build replaces the index contents with the given documents.
func (ix *Index) Build(docs []Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.docIDs = make([]string, 0, len(docs))
	ix.docTokens = make([][]string, 0, len(docs))
	ix.docLens = make([]int, 0, len(docs))
	ix.termDocs = make(map[string]int)
	total := 0

	for _, doc := range docs {
		tokens := Tokenize(doc.Content)
		ix.docIDs = append(ix.docIDs, doc.ID)
		ix.docTokens = append(ix.docTokens, tokens)
		ix.docLens = append(ix.docLens, len(tokens))
		total += len(tokens)

		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				ix.termDocs[t]++
			}
		}
	}

	ix.avgLen = 0
	if len(docs) > 0 {
		ix.avgLen = float64(total) / float64(len(docs))
	}
	ix.dirty = false
}

// Scores returns BM25+ scores for the requested doc ids, normalized to [0, 1]
// by the corpus-wide maximum. Documents with no score map to 0.
func (ix *Index) Scores(query string, docIDs []string) map[string]float64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make(map[string]float64, len(docIDs))
	if len(ix.docIDs) == 0 {
		return out
	}
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		for _, id := range docIDs {
			out[id] = 0
		}
		return out
	}

	n := float64(len(ix.docIDs))
	all := make([]float64, len(ix.docIDs))
	maxScore := 0.0
	for i := range ix.docIDs {
		freq := make(map[string]int, len(ix.docTokens[i]))
		for _, t := range ix.docTokens[i] {
			freq[t]++
		}
		dl := float64(ix.docLens[i])
		var score float64
		for _, qt := range queryTokens {
			df := ix.termDocs[qt]
			if df == 0 {
				continue
			}
			idf := math.Log((n + 1) / float64(df))
			f := float64(freq[qt])
			norm := k1*(1-b+b*dl/math.Max(ix.avgLen, 1)) + f
			score += idf * (delta + f*(k1+1)/norm)
		}
		all[i] = score
		if score > maxScore {
			maxScore = score
		}
	}

	if maxScore <= 0 {
		for _, id := range docIDs {
			out[id] = 0
		}
		return out
	}

	byID := make(map[string]float64, len(ix.docIDs))
	for i, id := range ix.docIDs {
		byID[id] = all[i] / maxScore
	}
	for _, id := range docIDs {
		out[id] = byID[id]
	}
	return out
}
