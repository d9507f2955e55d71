package firecrawl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitescout/sitescout/internal/resilience"
)

func fastRetryConfig(attempts int) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}
}

func TestScrape_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scrape", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ScrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://acme.com", req.URL)
		assert.Equal(t, []string{"markdown"}, req.Formats)

		json.NewEncoder(w).Encode(ScrapeResponse{
			Success: true,
			Data: PageData{
				URL:        "https://acme.com",
				Markdown:   "# Acme",
				Title:      "Acme Corp",
				StatusCode: 200,
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Scrape(context.Background(), ScrapeRequest{URL: "https://acme.com", Formats: []string{"markdown"}})

	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, "# Acme", got.Data.Markdown)
	assert.Equal(t, "Acme Corp", got.Data.Title)
}

func TestScrape_APIError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"insufficient credits"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetryConfig(3)))
	_, err := client.Scrape(context.Background(), ScrapeRequest{URL: "https://acme.com"})

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "insufficient credits")
	assert.EqualValues(t, 1, calls.Load(), "client errors are not retried")
}

func TestScrape_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		var req ScrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://acme.com", req.URL, "request body is replayed on retry")

		json.NewEncoder(w).Encode(ScrapeResponse{
			Success: true,
			Data:    PageData{URL: "https://acme.com", Markdown: "# Acme"},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetryConfig(3)))
	got, err := client.Scrape(context.Background(), ScrapeRequest{URL: "https://acme.com"})

	require.NoError(t, err)
	assert.Equal(t, "# Acme", got.Data.Markdown)
	assert.EqualValues(t, 2, calls.Load())
}

func TestScrape_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetryConfig(2)))
	_, err := client.Scrape(context.Background(), ScrapeRequest{URL: "https://acme.com"})

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCrawl_StartAndStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/crawl":
			json.NewEncoder(w).Encode(CrawlResponse{Success: true, ID: "crawl-42"})
		case r.Method == http.MethodGet && r.URL.Path == "/crawl/crawl-42":
			json.NewEncoder(w).Encode(JobStatusResponse{
				Status: "completed",
				Total:  2,
				Data: []PageData{
					{URL: "https://acme.com/", Title: "Home"},
					{URL: "https://acme.com/docs", Title: "Docs"},
				},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	ctx := context.Background()

	start, err := client.Crawl(ctx, CrawlRequest{URL: "https://acme.com", MaxDepth: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "crawl-42", start.ID)

	status, err := client.GetCrawlStatus(ctx, start.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", status.Status)
	assert.Len(t, status.Data, 2)
}

func TestBatchScrape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/batch/scrape", r.URL.Path)

		var req BatchScrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.URLs, 2)

		json.NewEncoder(w).Encode(BatchScrapeResponse{Success: true, ID: "batch-7"})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.BatchScrape(context.Background(), BatchScrapeRequest{
		URLs:    []string{"https://a.com", "https://b.com"},
		Formats: []string{"markdown"},
	})

	require.NoError(t, err)
	assert.Equal(t, "batch-7", got.ID)
}
