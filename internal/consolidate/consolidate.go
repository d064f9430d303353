// Package consolidate implements sleep-like replay over recent memories:
// consecutive pairs are co-activated, prediction errors decay, and strong
// coactivations are promoted into persistent links.
package consolidate

import (
	"context"
	"time"

	"github.com/recollectdb/recollect/internal/model"
)

// Store is the subset of memory-store operations replay needs.
type Store interface {
	ListRecent(ctx context.Context, limit int, categoryFilter string) ([]model.Memory, error)
	BumpCoactivation(ctx context.Context, sourceID, targetID string, delta float64) (bool, error)
	RecordActivation(ctx context.Context, memoryID string, predictionError *float64) (bool, error)
	MaybeAddRelatedLink(ctx context.Context, sourceID, targetID string, threshold float64) (bool, error)
}

// Stats summarizes one replay execution.
type Stats struct {
	ReplayEvents        int `json:"replay_events"`
	CoactivationUpdates int `json:"coactivation_updates"`
	LinkUpdates         int `json:"link_updates"`
	RefreshedMemories   int `json:"refreshed_memories"`
}

// relatedLinkThreshold is the coactivation weight at which a derived
// "related" link is persisted.
const relatedLinkThreshold = 0.6

// Engine replays memories and updates association strengths.
type Engine struct{}

// NewEngine creates a consolidation engine.
func NewEngine() *Engine { return &Engine{} }

// Run replays memories saved within the recent window. For each consecutive
// pair (up to maxReplayEvents) it bumps coactivation by the clamped link
// strength, decays both prediction errors by 10%, records activations, and
// promotes coactivation weights at or above the threshold into "related"
// links. Fewer than two eligible memories is a no-op.
func (e *Engine) Run(ctx context.Context, store Store, windowHours, maxReplayEvents int, linkUpdateStrength float64) (Stats, error) {
	if windowHours < 1 {
		windowHours = 1
	}
	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)

	fetchLimit := maxReplayEvents * 2
	if fetchLimit < 50 {
		fetchLimit = 50
	}
	recent, err := store.ListRecent(ctx, fetchLimit, "")
	if err != nil {
		return Stats{}, err
	}

	eligible := recent[:0]
	for _, m := range recent {
		if !m.Timestamp.Before(cutoff) {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) < 2 {
		return Stats{RefreshedMemories: len(eligible)}, nil
	}

	delta := linkUpdateStrength
	if delta < 0.05 {
		delta = 0.05
	}
	if delta > 1.0 {
		delta = 1.0
	}

	var stats Stats
	refreshed := make(map[string]bool)

	for i := 0; i+1 < len(eligible) && stats.ReplayEvents < maxReplayEvents; i++ {
		left := eligible[i]
		right := eligible[i+1]

		if _, err := store.BumpCoactivation(ctx, left.ID, right.ID, delta); err != nil {
			return stats, err
		}
		stats.CoactivationUpdates += 2

		leftErr := decayError(left.PredictionError)
		rightErr := decayError(right.PredictionError)
		if _, err := store.RecordActivation(ctx, left.ID, &leftErr); err != nil {
			return stats, err
		}
		if _, err := store.RecordActivation(ctx, right.ID, &rightErr); err != nil {
			return stats, err
		}
		refreshed[left.ID] = true
		refreshed[right.ID] = true

		linked, err := store.MaybeAddRelatedLink(ctx, left.ID, right.ID, relatedLinkThreshold)
		if err != nil {
			return stats, err
		}
		if linked {
			stats.LinkUpdates++
		}

		stats.ReplayEvents++
	}

	stats.RefreshedMemories = len(refreshed)
	return stats, nil
}

func decayError(v float64) float64 {
	v *= 0.9
	if v < 0 {
		return 0
	}
	return v
}
