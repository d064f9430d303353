// Package predictive implements predictive-coding inspired feature scoring.
// All functions are stateless and side-effect free.
package predictive

import (
	"regexp"
	"strings"

	"github.com/recollectdb/recollect/internal/model"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize splits text into a lowercase token set.
func Tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, t := range tokenPattern.FindAllString(text, -1) {
		tokens[strings.ToLower(t)] = true
	}
	return tokens
}

// MemoryTokens aggregates searchable tokens from content, category, and tags.
func MemoryTokens(m *model.Memory) map[string]bool {
	tokens := Tokenize(m.Content)
	for t := range Tokenize(m.Category) {
		tokens[t] = true
	}
	for _, tag := range m.Tags {
		for t := range Tokenize(tag) {
			tokens[t] = true
		}
	}
	return tokens
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when either set is empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	overlap := 0
	for t := range a {
		if b[t] {
			overlap++
		}
	}
	union := len(a) + len(b) - overlap
	if union == 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}

// ContextRelevance is the lexical relevance of a memory to a context, in [0, 1].
func ContextRelevance(context string, m *model.Memory) float64 {
	return Jaccard(Tokenize(context), MemoryTokens(m))
}

// PredictionError is the predictive-coding style mismatch score in [0, 1].
func PredictionError(context string, m *model.Memory) float64 {
	return 1.0 - ContextRelevance(context, m)
}

// NoveltyScore estimates novelty from activation history and prediction error.
// It decays with repeated recall and rises with surprise.
func NoveltyScore(m *model.Memory, predictionError float64) float64 {
	count := m.ActivationCount
	if count < 0 {
		count = 0
	}
	activationNovelty := 1.0 / (1.0 + float64(count))
	novelty := 0.6*activationNovelty + 0.4*clamp01(predictionError)
	return clamp01(novelty)
}

// QueryAmbiguity estimates how ambiguous a query is, in [0, 1]. Short queries
// and repetitive queries are ambiguous.
func QueryAmbiguity(context string) float64 {
	tokens := tokenPattern.FindAllString(context, -1)
	if len(tokens) == 0 {
		return 1.0
	}

	unique := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		unique[strings.ToLower(t)] = true
	}

	tokenCount := len(tokens)
	uniqueRatio := float64(len(unique)) / float64(tokenCount)

	brevity := 1.0
	if tokenCount > 2 {
		brevity = 1.0 - float64(tokenCount)/10.0
		if brevity < 0 {
			brevity = 0
		}
	}
	repetition := 1.0 - uniqueRatio

	return clamp01(0.6*brevity + 0.4*repetition)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
