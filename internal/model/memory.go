// Package model defines the core memory data types.
package model

import "time"

// Memory represents a stored memory entry.
type Memory struct {
	ID                string             `json:"id"`
	Content           string             `json:"content"`
	NormalizedContent string             `json:"normalized_content,omitempty"`
	Timestamp         time.Time          `json:"timestamp"`
	Emotion           string             `json:"emotion"`
	Importance        int                `json:"importance"`
	Category          string             `json:"category"`
	AccessCount       int                `json:"access_count"`
	LastAccessed      *time.Time         `json:"last_accessed,omitempty"`
	LinkedIDs         []string           `json:"linked_ids,omitempty"`
	EpisodeID         string             `json:"episode_id,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	Links             []Link             `json:"links,omitempty"`
	NoveltyScore      float64            `json:"novelty_score"`
	PredictionError   float64            `json:"prediction_error"`
	ActivationCount   int                `json:"activation_count"`
	LastActivated     *time.Time         `json:"last_activated,omitempty"`
	Reading           string             `json:"reading,omitempty"`
	Coactivations     []CoactivationEdge `json:"coactivations,omitempty"`
}

// Link is a typed, directed edge from one memory to another.
type Link struct {
	TargetID  string    `json:"target_id"`
	LinkType  string    `json:"link_type"`
	CreatedAt time.Time `json:"created_at"`
	Note      string    `json:"note,omitempty"`
}

// CoactivationEdge is one directed row of the symmetric coactivation relation.
type CoactivationEdge struct {
	TargetID string  `json:"target_id"`
	Weight   float64 `json:"weight"`
}

// Episode groups a sequence of memories into one experience.
type Episode struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	MemoryIDs    []string   `json:"memory_ids"`
	Participants []string   `json:"participants,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	Emotion      string     `json:"emotion"`
	Importance   int        `json:"importance"`
}

// ValidEmotions are the allowed emotion tags.
var ValidEmotions = map[string]bool{
	"happy":     true,
	"sad":       true,
	"surprised": true,
	"moved":     true,
	"excited":   true,
	"nostalgic": true,
	"curious":   true,
	"neutral":   true,
}

// ValidCategories are the allowed memory categories.
var ValidCategories = map[string]bool{
	"daily":         true,
	"philosophical": true,
	"technical":     true,
	"memory":        true,
	"observation":   true,
	"feeling":       true,
	"conversation":  true,
}

// Link types understood by graph traversal. Other values are accepted
// and treated as weak associations.
const (
	LinkSimilar  = "similar"
	LinkRelated  = "related"
	LinkCausedBy = "caused_by"
	LinkLeadsTo  = "leads_to"
)

// ClampImportance clamps importance into the [1, 5] range.
// Out-of-range values are corrected, never rejected.
func ClampImportance(importance int) int {
	if importance < 1 {
		return 1
	}
	if importance > 5 {
		return 5
	}
	return importance
}
