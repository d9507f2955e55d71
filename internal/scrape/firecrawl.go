package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/pkg/firecrawl"
)

// FirecrawlAdapter wraps a Firecrawl client as a Scraper for single pages.
type FirecrawlAdapter struct {
	client  firecrawl.Client
	formats []string
}

// NewFirecrawlAdapter creates a FirecrawlAdapter from a Firecrawl client.
func NewFirecrawlAdapter(client firecrawl.Client) *FirecrawlAdapter {
	return &FirecrawlAdapter{client: client, formats: []string{"markdown"}}
}

// WithHTML requests the raw HTML format in addition to markdown. The SEO
// audit needs the real document, not the markdown rendering.
func (f *FirecrawlAdapter) WithHTML() *FirecrawlAdapter {
	f.formats = []string{"markdown", "html"}
	return f
}

func (f *FirecrawlAdapter) Name() string { return "firecrawl" }

// Supports returns true; Firecrawl can attempt any URL as a fallback.
func (f *FirecrawlAdapter) Supports(_ string) bool { return true }

// Scrape fetches a single URL via Firecrawl's scrape API.
func (f *FirecrawlAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     targetURL,
		Formats: f.formats,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, eris.New("firecrawl: scrape not successful")
	}

	title := resp.Data.Title
	if title == "" {
		title = resp.Data.Metadata.Title
	}
	status := resp.Data.StatusCode
	if status == 0 {
		status = resp.Data.Metadata.StatusCode
	}

	return &Result{
		Page: model.Page{
			URL:        targetURL,
			Title:      title,
			Markdown:   resp.Data.Markdown,
			HTML:       resp.Data.HTML,
			StatusCode: status,
		},
		Source: "firecrawl",
	}, nil
}
