package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/rotisserie/eris"

	"github.com/sitescout/sitescout/internal/model"
)

// maxLocalBody caps how much of a response the local scraper will read.
const maxLocalBody = 10 * 1024 * 1024

// LocalScraper fetches HTML via net/http and converts it to markdown.
// Free, no API calls. Falls through to the hosted scrapers when blocked.
type LocalScraper struct {
	client *http.Client
}

// NewLocalScraper creates a LocalScraper with sensible defaults.
func NewLocalScraper() *LocalScraper {
	return &LocalScraper{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (l *LocalScraper) Name() string           { return "local" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL and converts the HTML body to markdown. Challenge
// pages and JS-wall responses return an error so the chain falls through.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; sitescout/1.0)")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local: fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("local: status %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLocalBody))
	if err != nil {
		return nil, eris.Wrap(err, "local: read body")
	}

	html := string(body)
	lower := strings.ToLower(html)
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) && len(html) < 20000 {
			return nil, eris.Errorf("local: blocked page for %s", targetURL)
		}
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return nil, eris.Wrap(err, "local: convert html")
	}
	if len(strings.TrimSpace(markdown)) < 100 {
		return nil, eris.Errorf("local: page too thin for %s", targetURL)
	}

	return &Result{
		Page: model.Page{
			URL:        targetURL,
			Title:      extractTitle(html),
			Markdown:   markdown,
			HTML:       html,
			StatusCode: resp.StatusCode,
		},
		Source: "local",
	}, nil
}

// extractTitle pulls the <title> text without a full parse.
func extractTitle(html string) string {
	lower := strings.ToLower(html)
	start := strings.Index(lower, "<title")
	if start < 0 {
		return ""
	}
	open := strings.Index(lower[start:], ">")
	if open < 0 {
		return ""
	}
	rest := html[start+open+1:]
	end := strings.Index(strings.ToLower(rest), "</title>")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
