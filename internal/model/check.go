package model

import "time"

// CheckStatus categorizes the outcome of an uptime probe.
type CheckStatus string

const (
	CheckStatusUp       CheckStatus = "up"
	CheckStatusDown     CheckStatus = "down"
	CheckStatusDegraded CheckStatus = "degraded"
)

// Check is the result of a single uptime probe.
type Check struct {
	ID         string      `json:"id"`
	URL        string      `json:"url"`
	Status     CheckStatus `json:"status"`
	StatusCode int         `json:"status_code"`
	LatencyMS  int64       `json:"latency_ms"`
	Error      string      `json:"error,omitempty"`
	CheckedAt  time.Time   `json:"checked_at"`
}

// Healthy reports whether the check found the target serving normally.
func (c Check) Healthy() bool {
	return c.Status == CheckStatusUp
}
