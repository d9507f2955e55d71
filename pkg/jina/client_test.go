package jina

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "markdown", r.Header.Get("X-Return-Format"))
		assert.Equal(t, "/https://example.com", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"data":{"title":"Example","url":"https://example.com","content":"# Hello"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	got, err := client.Read(context.Background(), "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, 200, got.Code)
	assert.Equal(t, "Example", got.Data.Title)
	assert.Equal(t, "# Hello", got.Data.Content)
}

func TestRead_RetriesOnRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"code":200,"data":{"content":"ok"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	got, err := client.Read(context.Background(), "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, "ok", got.Data.Content)
	assert.EqualValues(t, 2, calls.Load())
}

func TestRead_NonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("denied"))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.Read(context.Background(), "https://example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bitcoin+news", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"code":200,"data":[{"title":"BTC","url":"https://coindesk.com/a","content":"up"}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithSearchBaseURL(server.URL))

	got, err := client.Search(context.Background(), "bitcoin news")

	require.NoError(t, err)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "BTC", got.Data[0].Title)
}

func TestSearch_SiteFilter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "coindesk.com", r.URL.Query().Get("site"))
		_, _ = w.Write([]byte(`{"code":200,"data":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithSearchBaseURL(server.URL))

	_, err := client.Search(context.Background(), "bitcoin", WithSiteFilter("coindesk.com"))
	require.NoError(t, err)
}

func TestSearch_NoResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-key", WithSearchBaseURL(server.URL))

	got, err := client.Search(context.Background(), "gibberish query with no hits")

	require.NoError(t, err)
	assert.Equal(t, 422, got.Code)
	assert.Empty(t, got.Data)
}
