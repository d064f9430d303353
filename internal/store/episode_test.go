package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEpisodeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, _ := s.Save(ctx, SaveParams{Content: "arrived at the venue", Importance: 2})
	time.Sleep(2 * time.Millisecond)
	second, _ := s.Save(ctx, SaveParams{Content: "the band played the encore twice", Emotion: "excited", Importance: 5})

	ep, err := s.CreateEpisode(ctx, "concert night", []string{second.ID, first.ID}, []string{"mika"}, true)
	if err != nil {
		t.Fatalf("create episode: %v", err)
	}

	if ep.Title != "concert night" {
		t.Errorf("title = %q", ep.Title)
	}
	if len(ep.MemoryIDs) != 2 || ep.MemoryIDs[0] != first.ID {
		t.Errorf("member order should be chronological, got %v", ep.MemoryIDs)
	}
	if ep.Importance != 5 {
		t.Errorf("importance should be the member max, got %d", ep.Importance)
	}
	if ep.Emotion != "excited" {
		t.Errorf("emotion should follow the most important member, got %q", ep.Emotion)
	}
	if !strings.Contains(ep.Summary, " → ") {
		t.Errorf("auto summary should join snippets, got %q", ep.Summary)
	}
	if ep.EndTime == nil || !ep.EndTime.After(ep.StartTime) {
		t.Error("end time should come from the last member")
	}

	// Members get back-references.
	got, _ := s.GetByID(ctx, first.ID)
	if got.EpisodeID != ep.ID {
		t.Errorf("member episode_id = %q", got.EpisodeID)
	}

	memories, err := s.GetEpisodeMemories(ctx, ep.ID)
	if err != nil {
		t.Fatalf("episode memories: %v", err)
	}
	if len(memories) != 2 || memories[0].ID != first.ID {
		t.Errorf("episode memories should be chronological, got %v", ids(memories))
	}

	// Delete keeps the memories and clears the back-references.
	if err := s.DeleteEpisode(ctx, ep.ID); err != nil {
		t.Fatalf("delete episode: %v", err)
	}
	if _, err := s.GetEpisode(ctx, ep.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	got, _ = s.GetByID(ctx, first.ID)
	if got.EpisodeID != "" {
		t.Errorf("episode_id should be cleared, got %q", got.EpisodeID)
	}
}

func TestCreateEpisodeAllMembersMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateEpisode(ctx, "ghost", []string{"missing-1", "missing-2"}, nil, false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchEpisodes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, SaveParams{Content: "first day of the pottery class"})
	b, _ := s.Save(ctx, SaveParams{Content: "weekly grocery run"})

	s.CreateEpisode(ctx, "pottery course", []string{a.ID}, nil, false)
	s.CreateEpisode(ctx, "errands", []string{b.ID}, nil, false)

	hits, err := s.SearchEpisodes(ctx, "pottery", 5)
	if err != nil {
		t.Fatalf("search episodes: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "pottery course" {
		t.Errorf("expected the pottery episode, got %v", hits)
	}

	all, err := s.ListEpisodes(ctx)
	if err != nil {
		t.Fatalf("list episodes: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 episodes, got %d", len(all))
	}
}
