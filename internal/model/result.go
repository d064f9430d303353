package model

// ResultTier distinguishes ranked search hits from associative expansion.
// Distances from different tiers are not comparable.
type ResultTier string

const (
	// TierPrimary marks a hit ranked by the retrieval pipeline; Distance is meaningful.
	TierPrimary ResultTier = "primary"
	// TierAssociative marks a hit reached through the link graph; Distance is zero
	// and carries no ordering.
	TierAssociative ResultTier = "associative"
)

// SearchResult is a memory with its retrieval distance (smaller is closer).
type SearchResult struct {
	Memory   Memory     `json:"memory"`
	Distance float64    `json:"distance"`
	Tier     ResultTier `json:"tier"`
}

// ScoredMemory is a search hit with its full score breakdown.
type ScoredMemory struct {
	Memory           Memory  `json:"memory"`
	SemanticDistance float64 `json:"semantic_distance"`
	TimeDecayFactor  float64 `json:"time_decay_factor"`
	EmotionBoost     float64 `json:"emotion_boost"`
	ImportanceBoost  float64 `json:"importance_boost"`
	FinalScore       float64 `json:"final_score"`
}

// CausalHop is one step of a causal chain traversal.
type CausalHop struct {
	Memory   Memory `json:"memory"`
	LinkType string `json:"link_type"`
}

// Stats summarizes the stored memories.
type Stats struct {
	TotalCount      int            `json:"total_count"`
	ByCategory      map[string]int `json:"by_category"`
	ByEmotion       map[string]int `json:"by_emotion"`
	OldestTimestamp string         `json:"oldest_timestamp,omitempty"`
	NewestTimestamp string         `json:"newest_timestamp,omitempty"`
}
