package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/recollectdb/recollect/internal/embedding"
	"github.com/recollectdb/recollect/internal/model"
)

func memWithContent(content string) model.Memory {
	return model.Memory{ID: content, Content: content}
}

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "test.db"), Options{
		Embedder:      embedding.NewHashEmbedder(64),
		EnableLexical: true,
	})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, err := s.Save(ctx, SaveParams{
		Content:    "went hiking at the lake",
		Emotion:    "happy",
		Importance: 4,
		Category:   "observation",
		Tags:       []string{"outdoors", "lake"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if mem.ID == "" {
		t.Error("expected non-empty ID")
	}
	if mem.NormalizedContent == "" {
		t.Error("expected normalized content")
	}

	got, err := s.GetByID(ctx, mem.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != "went hiking at the lake" {
		t.Errorf("content = %q", got.Content)
	}
	if got.Emotion != "happy" || got.Importance != 4 || got.Category != "observation" {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if len(got.Tags) != 2 {
		t.Errorf("expected 2 tags, got %v", got.Tags)
	}
}

func TestSaveDuplicateContentDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Save(ctx, SaveParams{Content: "same words"})
	if err != nil {
		t.Fatalf("save a: %v", err)
	}
	b, err := s.Save(ctx, SaveParams{Content: "same words"})
	if err != nil {
		t.Fatalf("save b: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("duplicate content must get distinct ids, both %s", a.ID)
	}
}

func TestSaveImportanceClamping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	over, _ := s.Save(ctx, SaveParams{Content: "over", Importance: 10})
	if over.Importance != 5 {
		t.Errorf("importance 10 should clamp to 5, got %d", over.Importance)
	}
	under, _ := s.Save(ctx, SaveParams{Content: "under", Importance: -2})
	if under.Importance != 1 {
		t.Errorf("importance -2 should clamp to 1, got %d", under.Importance)
	}
	zero, _ := s.Save(ctx, SaveParams{Content: "zero", Importance: 0})
	if zero.Importance != 1 {
		t.Errorf("importance 0 should clamp to 1, got %d", zero.Importance)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetByID(ctx, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByIDsSkipsMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, _ := s.Save(ctx, SaveParams{Content: "only one"})
	got, err := s.GetByIDs(ctx, []string{mem.ID, "missing-id"})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(got) != 1 || got[0].ID != mem.ID {
		t.Errorf("expected just %s, got %v", mem.ID, got)
	}
}

func TestClosedStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Close()

	_, err := s.Save(ctx, SaveParams{Content: "after close"})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestWorkingMemoryTracksSaves(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Save(ctx, SaveParams{Content: "first"})
	s.Save(ctx, SaveParams{Content: "second"})

	items := s.WorkingMemory().Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 buffered memories, got %d", len(items))
	}
	if items[0].Content != "first" || items[1].Content != "second" {
		t.Errorf("buffer order wrong: %q, %q", items[0].Content, items[1].Content)
	}
}

func TestWorkingMemoryEviction(t *testing.T) {
	w := NewWorkingMemory(3)
	for _, c := range []string{"a", "b", "c", "d"} {
		w.Add(memWithContent(c))
	}
	items := w.Items()
	if len(items) != 3 {
		t.Fatalf("expected capacity 3, got %d", len(items))
	}
	if items[0].Content != "b" || items[2].Content != "d" {
		t.Errorf("oldest entry should be evicted, got %q..%q", items[0].Content, items[2].Content)
	}
}
