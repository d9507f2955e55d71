// Package links implements a same-domain dead-link check: walk the site's
// own pages, collect every outgoing link, and probe each one once.
package links

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sitescout/sitescout/internal/config"
)

// DeadLink is a link that failed its probe.
type DeadLink struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"reason"`
}

// PageReport lists the dead links found on one page.
type PageReport struct {
	URL       string     `json:"url"`
	DeadLinks []DeadLink `json:"dead_links"`
}

// Report is the outcome of a dead-link run.
type Report struct {
	StartURL     string       `json:"start_url"`
	PagesCrawled int          `json:"pages_crawled"`
	LinksChecked int          `json:"links_checked"`
	Pages        []PageReport `json:"pages"`
}

// TotalDead returns the number of dead links across all pages.
func (r *Report) TotalDead() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.DeadLinks)
	}
	return n
}

// Hunter walks same-domain pages and probes their links.
type Hunter struct {
	cfg    config.LinksConfig
	client *http.Client

	mu      sync.Mutex
	visited map[string]bool
	status  map[string]DeadLink // probe results; zero Reason means alive
	probed  map[string]bool
}

// NewHunter creates a Hunter.
func NewHunter(cfg config.LinksConfig) *Hunter {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Hunter{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		visited: make(map[string]bool),
		status:  make(map[string]DeadLink),
		probed:  make(map[string]bool),
	}
}

// Run crawls from startURL and returns the dead-link report.
func (h *Hunter) Run(ctx context.Context, startURL string) (*Report, error) {
	base, err := url.Parse(startURL)
	if err != nil || base.Host == "" {
		return nil, eris.Errorf("links: invalid start url: %s", startURL)
	}

	report := &Report{StartURL: startURL}
	queue := []string{startURL}

	maxPages := h.cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 50
	}

	for len(queue) > 0 && report.PagesCrawled < maxPages {
		pageURL := queue[0]
		queue = queue[1:]

		if h.visited[pageURL] {
			continue
		}
		h.visited[pageURL] = true

		links, err := h.collectLinks(ctx, pageURL)
		if err != nil {
			zap.L().Debug("links: skipping page", zap.String("url", pageURL), zap.Error(err))
			continue
		}
		report.PagesCrawled++

		dead := h.probeAll(ctx, links)
		if len(dead) > 0 {
			report.Pages = append(report.Pages, PageReport{URL: pageURL, DeadLinks: dead})
		}

		// Same-domain pages feed the crawl frontier.
		for _, l := range links {
			if u, err := url.Parse(l); err == nil && u.Host == base.Host && !h.visited[l] {
				queue = append(queue, l)
			}
		}
	}

	h.mu.Lock()
	report.LinksChecked = len(h.probed)
	h.mu.Unlock()

	return report, nil
}

// collectLinks fetches a page and returns its absolute http(s) links.
func (h *Hunter) collectLinks(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "links: create request")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "links: fetch %s", pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("links: status %d for %s", resp.StatusCode, pageURL)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return nil, eris.Errorf("links: not html: %s", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "links: parse html")
	}

	base, _ := url.Parse(pageURL)
	seen := make(map[string]bool)
	var out []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		u, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		u.Fragment = ""
		abs := u.String()
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	})

	return out, nil
}

// probeAll checks the given links with bounded concurrency and returns the
// dead ones. Each distinct URL is probed at most once per run.
func (h *Hunter) probeAll(ctx context.Context, links []string) []DeadLink {
	maxConcurrent := h.cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, l := range links {
		h.mu.Lock()
		already := h.probed[l]
		h.probed[l] = true
		h.mu.Unlock()
		if already {
			continue
		}

		g.Go(func() error {
			if dl, dead := h.probe(gCtx, l); dead {
				h.mu.Lock()
				h.status[l] = dl
				h.mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	var dead []DeadLink
	h.mu.Lock()
	for _, l := range links {
		if dl, ok := h.status[l]; ok {
			dead = append(dead, dl)
		}
	}
	h.mu.Unlock()
	return dead
}

// probe issues a HEAD request, falling back to GET when HEAD is rejected.
func (h *Hunter) probe(ctx context.Context, link string) (DeadLink, bool) {
	status, err := h.request(ctx, http.MethodHead, link)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = h.request(ctx, http.MethodGet, link)
	}
	if err != nil {
		return DeadLink{URL: link, Reason: err.Error()}, true
	}
	if status >= 400 {
		return DeadLink{URL: link, StatusCode: status, Reason: http.StatusText(status)}, true
	}
	return DeadLink{}, false
}

func (h *Hunter) request(ctx context.Context, method, link string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return 0, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
