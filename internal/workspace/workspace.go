// Package workspace implements global-workspace inspired candidate selection:
// competitive top-k picking that trades relevance against redundancy.
package workspace

import (
	"github.com/recollectdb/recollect/internal/model"
	"github.com/recollectdb/recollect/internal/predictive"
)

// Candidate is one memory competing for workspace entry.
type Candidate struct {
	Memory          model.Memory
	Relevance       float64
	Novelty         float64
	PredictionError float64
	EmotionBoost    float64
}

// Selected is a winning candidate with its utility at selection time.
type Selected struct {
	Candidate Candidate
	Utility   float64
}

func utility(c *Candidate, redundancy, temperature float64) float64 {
	temp := temperature
	if temp < 0.1 {
		temp = 0.1
	}
	if temp > 2.0 {
		temp = 2.0
	}
	u := 0.45*c.Relevance +
		0.2*c.Novelty +
		0.2*c.PredictionError +
		0.15*c.EmotionBoost -
		0.25*redundancy
	return u / temp
}

// redundancyPenalty is the max token overlap against already selected memories.
func redundancyPenalty(m *model.Memory, selected []model.Memory) float64 {
	if len(selected) == 0 {
		return 0
	}
	target := predictive.MemoryTokens(m)
	if len(target) == 0 {
		return 0
	}
	maxOverlap := 0.0
	for i := range selected {
		overlap := predictive.Jaccard(target, predictive.MemoryTokens(&selected[i]))
		if overlap > maxOverlap {
			maxOverlap = overlap
		}
	}
	return maxOverlap
}

// Select runs iterative winner-take-all competition: each round re-scores all
// remaining candidates against the current selection and picks the argmax,
// until maxResults are chosen or the pool is exhausted.
func Select(candidates []Candidate, maxResults int, temperature float64) []Selected {
	if maxResults <= 0 || len(candidates) == 0 {
		return nil
	}

	var selected []Selected
	var chosen []model.Memory
	remaining := make([]Candidate, len(candidates))
	copy(remaining, candidates)

	for len(remaining) > 0 && len(selected) < maxResults {
		bestIdx := 0
		bestScore := 0.0
		for i := range remaining {
			penalty := redundancyPenalty(&remaining[i].Memory, chosen)
			score := utility(&remaining[i], penalty, temperature)
			if i == 0 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}
		selected = append(selected, Selected{Candidate: remaining[bestIdx], Utility: bestScore})
		chosen = append(chosen, remaining[bestIdx].Memory)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

// DiversityScore is the mean pairwise token diversity of the selection, in
// [0, 1]. Fewer than two memories score 0.
func DiversityScore(memories []model.Memory) float64 {
	if len(memories) <= 1 {
		return 0
	}
	var sum float64
	var n int
	for i := range memories {
		left := predictive.MemoryTokens(&memories[i])
		for j := i + 1; j < len(memories); j++ {
			right := predictive.MemoryTokens(&memories[j])
			if len(left) == 0 && len(right) == 0 {
				n++
				continue
			}
			sum += 1.0 - predictive.Jaccard(left, right)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
