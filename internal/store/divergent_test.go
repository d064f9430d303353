package store

import (
	"context"
	"testing"
	"time"

	"github.com/recollectdb/recollect/internal/model"
)

func TestRecallDivergentUnmatchedContext(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Save(ctx, SaveParams{Content: "watched a documentary about octopuses"})
	s.Save(ctx, SaveParams{Content: "fixed the leaking kitchen tap"})
	s.Save(ctx, SaveParams{Content: "learned three new chords"})

	// A context sharing no tokens with any memory must still surface results.
	results, diag, err := s.RecallDivergent(ctx, DivergentParams{
		Context:            "zzz qqq xxx",
		NResults:           2,
		IncludeDiagnostics: true,
	})
	if err != nil {
		t.Fatalf("divergent: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("unmatched context should still return candidates")
	}
	if diag == nil {
		t.Fatal("expected diagnostics")
	}
	if diag.SelectedCount != len(results) {
		t.Errorf("selected count %d != results %d", diag.SelectedCount, len(results))
	}
	for _, r := range results {
		if r.Tier != model.TierPrimary {
			t.Errorf("divergent results are primary tier, got %v", r.Tier)
		}
		if r.Distance < 0 {
			t.Errorf("pseudo-distance must be non-negative, got %f", r.Distance)
		}
	}
}

func TestRecallDivergentSpreadsThroughLinks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seed, _ := s.Save(ctx, SaveParams{Content: "piano practice session"})
	neighbor, _ := s.Save(ctx, SaveParams{Content: "entirely different topic about cooking"})
	s.addBidirectionalLink(ctx, seed.ID, neighbor.ID)

	results, diag, err := s.RecallDivergent(ctx, DivergentParams{
		Context:            "piano practice session",
		NResults:           5,
		MaxBranches:        4,
		MaxDepth:           2,
		IncludeDiagnostics: true,
	})
	if err != nil {
		t.Fatalf("divergent: %v", err)
	}
	if diag.TraversedEdges == 0 {
		t.Error("expected link traversal")
	}

	found := false
	for _, r := range results {
		if r.Memory.ID == neighbor.ID {
			found = true
		}
	}
	if !found {
		t.Error("linked neighbor should be reachable through the spread")
	}
}

func TestRecallDivergentRecordsActivation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, _ := s.Save(ctx, SaveParams{Content: "single candidate"})

	results, _, err := s.RecallDivergent(ctx, DivergentParams{
		Context:          "single candidate",
		NResults:         1,
		RecordActivation: true,
	})
	if err != nil {
		t.Fatalf("divergent: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got, _ := s.GetByID(ctx, mem.ID)
	if got.ActivationCount != 1 {
		t.Errorf("activation should be recorded, count = %d", got.ActivationCount)
	}
}

func TestAssociationDiagnosticsProbe(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, _ := s.Save(ctx, SaveParams{Content: "probe target"})

	diag, err := s.AssociationDiagnostics(ctx, "probe target", 5)
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if diag == nil {
		t.Fatal("expected diagnostics")
	}

	// The probe is read-only: no activations recorded.
	got, _ := s.GetByID(ctx, mem.ID)
	if got.ActivationCount != 0 {
		t.Errorf("probe must not record activations, count = %d", got.ActivationCount)
	}
}

func TestConsolidateReplay(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "morning standup notes"})
	time.Sleep(2 * time.Millisecond)
	b, _ := s.Save(ctx, SaveParams{Content: "afternoon retro notes"})

	stats, err := s.Consolidate(ctx, 24, 10, 0.3)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if stats.ReplayEvents != 1 {
		t.Errorf("two memories make one pair, got %d replay events", stats.ReplayEvents)
	}
	if stats.CoactivationUpdates != 2 {
		t.Errorf("expected 2 coactivation updates, got %d", stats.CoactivationUpdates)
	}
	if stats.RefreshedMemories != 2 {
		t.Errorf("expected 2 refreshed memories, got %d", stats.RefreshedMemories)
	}

	gotA, _ := s.GetByID(ctx, a.ID)
	if w := coactWeight(gotA, b.ID); w < 0.29 || w > 0.31 {
		t.Errorf("expected coactivation ~0.3, got %f", w)
	}
	if gotA.ActivationCount != 1 {
		t.Errorf("replay should activate members, count = %d", gotA.ActivationCount)
	}
}

func TestConsolidateSingleMemoryNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Save(ctx, SaveParams{Content: "alone"})

	stats, err := s.Consolidate(ctx, 24, 10, 0.3)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if stats.ReplayEvents != 0 || stats.CoactivationUpdates != 0 {
		t.Errorf("single memory must be a no-op, got %+v", stats)
	}
	if stats.RefreshedMemories != 1 {
		t.Errorf("refreshed should report the eligible count, got %d", stats.RefreshedMemories)
	}
}
