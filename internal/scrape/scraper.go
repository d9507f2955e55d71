// Package scrape provides the chained page-fetching layer shared by every
// command: hosted reader first, hosted browser scrape as fallback, plain
// HTTP as the free local option.
package scrape

import (
	"context"

	"github.com/sitescout/sitescout/internal/model"
)

// Result holds a fetched page with its source.
type Result struct {
	Page   model.Page
	Source string // "jina", "firecrawl", "local"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}
