package firecrawl

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultPollInitial = 2 * time.Second
	defaultPollCap     = 15 * time.Second
	defaultPollTimeout = 5 * time.Minute
)

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	initial time.Duration
	cap     time.Duration
	timeout time.Duration
}

// WithPollInterval overrides the initial poll interval.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) { c.initial = d }
}

// WithPollCap overrides the maximum poll interval.
func WithPollCap(d time.Duration) PollOption {
	return func(c *pollConfig) { c.cap = d }
}

// WithPollTimeout overrides the default timeout. Applied only when the
// parent context has no deadline.
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) { c.timeout = d }
}

// PollCrawl polls GetCrawlStatus until the crawl completes, fails, or the
// context expires. Backoff doubles from the initial interval up to the cap.
func PollCrawl(ctx context.Context, client Client, id string, opts ...PollOption) (*JobStatusResponse, error) {
	return poll(ctx, "crawl", id, client.GetCrawlStatus, opts)
}

// PollBatchScrape polls GetBatchScrapeStatus until the batch completes,
// fails, or the context expires.
func PollBatchScrape(ctx context.Context, client Client, id string, opts ...PollOption) (*JobStatusResponse, error) {
	return poll(ctx, "batch scrape", id, client.GetBatchScrapeStatus, opts)
}

func poll(ctx context.Context, kind, id string, status func(context.Context, string) (*JobStatusResponse, error), opts []PollOption) (*JobStatusResponse, error) {
	cfg := pollConfig{
		initial: defaultPollInitial,
		cap:     defaultPollCap,
		timeout: defaultPollTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	interval := cfg.initial
	for {
		resp, err := status(ctx, id)
		if err != nil {
			return nil, eris.Wrapf(err, "firecrawl: poll %s %s", kind, id)
		}

		switch resp.Status {
		case "completed":
			return resp, nil
		case "failed":
			return nil, eris.Errorf("firecrawl: %s %s failed", kind, id)
		}

		select {
		case <-ctx.Done():
			return nil, eris.Wrapf(ctx.Err(), "firecrawl: poll %s %s timed out", kind, id)
		case <-time.After(interval):
		}

		interval *= 2
		if interval > cfg.cap {
			interval = cfg.cap
		}
	}
}
