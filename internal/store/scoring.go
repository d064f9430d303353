package store

import (
	"math"
	"time"

	"github.com/recollectdb/recollect/internal/model"
)

// Score weights for search_with_scoring. Distance is the base; decay adds a
// penalty, emotion and importance subtract boosts. Lower final score ranks
// higher.
const (
	semanticWeight   = 1.0
	decayWeight      = 0.3
	emotionWeight    = 0.2
	importanceWeight = 0.2
	lexicalWeight    = 0.2
	readingWeight    = 0.15
)

var emotionBoostMap = map[string]float64{
	"excited":   0.4,
	"surprised": 0.35,
	"moved":     0.3,
	"sad":       0.25,
	"happy":     0.2,
	"nostalgic": 0.15,
	"curious":   0.1,
	"neutral":   0.0,
}

// timeDecay returns 2^(-ageDays / halfLife), clamped to [0, 1]. Future
// timestamps decay to 1.
func timeDecay(timestamp, now time.Time, halfLifeDays float64) float64 {
	age := now.Sub(timestamp)
	if age < 0 {
		return 1.0
	}
	ageDays := age.Hours() / 24.0
	decay := math.Pow(2, -ageDays/halfLifeDays)
	return math.Max(0.0, math.Min(1.0, decay))
}

func emotionBoost(emotion string) float64 {
	return emotionBoostMap[emotion]
}

func importanceBoost(importance int) float64 {
	return float64(model.ClampImportance(importance)-1) / 10.0
}

func finalScore(semanticDistance, decay, emotion, importance float64) float64 {
	decayPenalty := (1.0 - decay) * decayWeight
	totalBoost := emotion*emotionWeight + importance*importanceWeight
	final := semanticDistance*semanticWeight + decayPenalty - totalBoost
	return math.Max(0.0, final)
}
