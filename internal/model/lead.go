package model

import "time"

// Lead is a candidate account tracked by the scoring pipeline.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Velocity  float64   `json:"velocity"`
	Authority float64   `json:"authority"`
	Impact    float64   `json:"impact"`
	Score     float64   `json:"score"`
	Notes     string    `json:"notes,omitempty"`
	ScoredAt  time.Time `json:"scored_at"`
}

// Summary is the structured output of a page summarization.
type Summary struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}
