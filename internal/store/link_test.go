package store

import (
	"context"
	"errors"
	"testing"

	"github.com/recollectdb/recollect/internal/model"
)

func TestBumpCoactivationSymmetry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "first memory"})
	b, _ := s.Save(ctx, SaveParams{Content: "second memory"})

	ok, err := s.BumpCoactivation(ctx, a.ID, b.ID, 0.3)
	if err != nil {
		t.Fatalf("bump: %v", err)
	}
	if !ok {
		t.Fatal("expected bump to apply")
	}

	gotA, _ := s.GetByID(ctx, a.ID)
	gotB, _ := s.GetByID(ctx, b.ID)
	wa := coactWeight(gotA, b.ID)
	wb := coactWeight(gotB, a.ID)
	if wa != wb {
		t.Errorf("weights must be symmetric: %f vs %f", wa, wb)
	}
	if wa < 0.29 || wa > 0.31 {
		t.Errorf("expected weight ~0.3, got %f", wa)
	}

	// Second bump accumulates and stays clamped.
	s.BumpCoactivation(ctx, a.ID, b.ID, 0.9)
	gotA, _ = s.GetByID(ctx, a.ID)
	if w := coactWeight(gotA, b.ID); w > 1.0 {
		t.Errorf("weight must clamp to 1, got %f", w)
	}
}

func TestBumpCoactivationMissingID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "lonely"})
	ok, err := s.BumpCoactivation(ctx, a.ID, "missing", 0.3)
	if err != nil {
		t.Fatalf("bump: %v", err)
	}
	if ok {
		t.Error("bump against a missing id must be a no-op")
	}
	got, _ := s.GetByID(ctx, a.ID)
	if len(got.Coactivations) != 0 {
		t.Errorf("no edge should be written, got %v", got.Coactivations)
	}
}

func coactWeight(m *model.Memory, targetID string) float64 {
	for _, e := range m.Coactivations {
		if e.TargetID == targetID {
			return e.Weight
		}
	}
	return -1
}

func TestAddCausalLinkIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "cause"})
	b, _ := s.Save(ctx, SaveParams{Content: "effect"})

	if err := s.AddCausalLink(ctx, b.ID, a.ID, model.LinkCausedBy, "why it happened"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := s.AddCausalLink(ctx, b.ID, a.ID, model.LinkCausedBy, "again"); err != nil {
		t.Fatalf("relink: %v", err)
	}

	got, _ := s.GetByID(ctx, b.ID)
	if len(got.Links) != 1 {
		t.Fatalf("duplicate link must not accumulate, got %d", len(got.Links))
	}
	if got.Links[0].Note != "why it happened" {
		t.Errorf("original note should survive, got %q", got.Links[0].Note)
	}
}

func TestAddCausalLinkMissingEndpoint(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "present"})
	if err := s.AddCausalLink(ctx, a.ID, "missing", model.LinkLeadsTo, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetCausalChainCycleTerminates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "event a"})
	b, _ := s.Save(ctx, SaveParams{Content: "event b"})
	c, _ := s.Save(ctx, SaveParams{Content: "event c"})

	// a <- b <- c <- a: a cycle through caused_by edges.
	s.AddCausalLink(ctx, a.ID, b.ID, model.LinkCausedBy, "")
	s.AddCausalLink(ctx, b.ID, c.ID, model.LinkCausedBy, "")
	s.AddCausalLink(ctx, c.ID, a.ID, model.LinkCausedBy, "")

	chain, err := s.GetCausalChain(ctx, a.ID, "backward", 5)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("cycle walk from a should visit b then c once, got %d hops", len(chain))
	}
	if chain[0].Memory.ID != b.ID || chain[1].Memory.ID != c.ID {
		t.Errorf("chain order wrong: %s, %s", chain[0].Memory.ID, chain[1].Memory.ID)
	}
}

func TestGetCausalChainInvalidDirection(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "whatever"})
	_, err := s.GetCausalChain(ctx, a.ID, "sideways", 3)
	if !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestGetLinkedMemoriesDepth(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "node a"})
	b, _ := s.Save(ctx, SaveParams{Content: "node b"})
	c, _ := s.Save(ctx, SaveParams{Content: "node c"})

	s.addBidirectionalLink(ctx, a.ID, b.ID)
	s.addBidirectionalLink(ctx, b.ID, c.ID)

	direct, err := s.GetLinkedMemories(ctx, a.ID, 1)
	if err != nil {
		t.Fatalf("linked depth 1: %v", err)
	}
	if len(direct) != 1 || direct[0].ID != b.ID {
		t.Errorf("depth 1 should return only direct neighbors, got %v", ids(direct))
	}

	two, err := s.GetLinkedMemories(ctx, a.ID, 2)
	if err != nil {
		t.Fatalf("linked depth 2: %v", err)
	}
	if len(two) != 2 {
		t.Errorf("depth 2 should reach c, got %v", ids(two))
	}
}

func TestUpdateEpisodeIDNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.UpdateEpisodeID(ctx, "missing", "ep"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordActivation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "activate me"})
	pe := 0.7
	ok, err := s.RecordActivation(ctx, a.ID, &pe)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !ok {
		t.Fatal("expected activation to apply")
	}

	got, _ := s.GetByID(ctx, a.ID)
	if got.ActivationCount != 1 {
		t.Errorf("activation count = %d", got.ActivationCount)
	}
	if got.PredictionError != 0.7 {
		t.Errorf("prediction error = %f", got.PredictionError)
	}
	if got.LastActivated == nil {
		t.Error("last activated should be set")
	}

	ok, _ = s.RecordActivation(ctx, "missing", nil)
	if ok {
		t.Error("missing id must return false")
	}
}

func TestSaveWithAutoLink(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	existing, _ := s.Save(ctx, SaveParams{Content: "trip to the mountains"})

	// Threshold 2.0 accepts any cosine distance, so the one existing memory links.
	mem, err := s.SaveWithAutoLink(ctx, SaveParams{Content: "trip to the mountains again"}, 2.0, 5)
	if err != nil {
		t.Fatalf("save with auto link: %v", err)
	}
	if len(mem.LinkedIDs) != 1 || mem.LinkedIDs[0] != existing.ID {
		t.Fatalf("expected link to %s, got %v", existing.ID, mem.LinkedIDs)
	}

	back, _ := s.GetByID(ctx, existing.ID)
	if len(back.LinkedIDs) != 1 || back.LinkedIDs[0] != mem.ID {
		t.Errorf("auto-link must be bidirectional, got %v", back.LinkedIDs)
	}
}

func ids(memories []model.Memory) []string {
	out := make([]string, len(memories))
	for i, m := range memories {
		out[i] = m.ID
	}
	return out
}
