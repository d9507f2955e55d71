package model

import "time"

// Page represents a single fetched page.
type Page struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Markdown   string `json:"markdown"`
	HTML       string `json:"html,omitempty"`
	StatusCode int    `json:"status_code"`
}

// Snapshot is a stored copy of a page used for change detection.
type Snapshot struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	ContentHash string    `json:"content_hash"`
	Body        string    `json:"body"`
	Title       string    `json:"title"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// ChangeVerdict is the outcome of comparing a page against its last snapshot.
type ChangeVerdict struct {
	URL        string `json:"url"`
	Changed    bool   `json:"changed"`
	Meaningful bool   `json:"meaningful"`
	Summary    string `json:"summary,omitempty"`
	Diff       string `json:"diff,omitempty"`
	FirstSeen  bool   `json:"first_seen"`
}
