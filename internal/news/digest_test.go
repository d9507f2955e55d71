package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitescout/sitescout/internal/config"
	"github.com/sitescout/sitescout/internal/llm"
	"github.com/sitescout/sitescout/internal/scrape"
	"github.com/sitescout/sitescout/pkg/anthropic"
	"github.com/sitescout/sitescout/pkg/jina"
)

type mockAnthropicClient struct {
	reply   string
	err     error
	lastReq anthropic.MessageRequest
	calls   atomic.Int32
}

func (m *mockAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.calls.Add(1)
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &anthropic.MessageResponse{Text: m.reply}, nil
}

type mockSearch struct {
	resp *jina.SearchResponse
	err  error
}

func (m *mockSearch) Read(context.Context, string) (*jina.ReadResponse, error) {
	return nil, eris.New("not implemented")
}

func (m *mockSearch) Search(context.Context, string, ...jina.SearchOption) (*jina.SearchResponse, error) {
	return m.resp, m.err
}

func articleServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBuild_AssemblesDigest(t *testing.T) {
	t.Parallel()

	a1 := articleServer(t, `<html><head><title>BTC rallies</title></head><body><p>Bitcoin climbed today.</p></body></html>`)
	a2 := articleServer(t, `<html><head><title>ETH upgrade</title></head><body><p>Ethereum shipped an upgrade.</p></body></html>`)

	search := &mockSearch{resp: &jina.SearchResponse{
		Code: 200,
		Data: []jina.SearchResult{
			{Title: "BTC rallies", URL: a1.URL},
			{Title: "ETH upgrade", URL: a2.URL},
		},
	}}

	model := &mockAnthropicClient{reply: `{"overview":"Crypto had a strong day.","articles":[{"title":"BTC rallies","url":"` + a1.URL + `","summary":"Bitcoin climbed."}]}`}
	engine := llm.NewEngine(model, config.AnthropicConfig{Model: "claude-sonnet-4-5", MaxTokens: 1024})

	builder := NewBuilder(config.NewsConfig{MaxArticles: 5}, search,
		scrape.NewChain(scrape.NewLocalScraper()), engine)

	digest, err := builder.Build(context.Background(), "crypto")

	require.NoError(t, err)
	assert.Equal(t, "crypto", digest.Topic)
	assert.Equal(t, "Crypto had a strong day.", digest.Overview)
	require.Len(t, digest.Articles, 1)
	assert.Equal(t, "BTC rallies", digest.Articles[0].Title)
	assert.False(t, digest.GeneratedAt.IsZero())
	assert.EqualValues(t, 1, model.calls.Load())
	assert.Contains(t, model.lastReq.Messages[0].Content, "Bitcoin climbed today")
}

func TestBuild_LimitsArticles(t *testing.T) {
	t.Parallel()

	a1 := articleServer(t, `<html><body><p>one</p></body></html>`)
	a2 := articleServer(t, `<html><body><p>two</p></body></html>`)
	a3 := articleServer(t, `<html><body><p>three</p></body></html>`)

	search := &mockSearch{resp: &jina.SearchResponse{
		Code: 200,
		Data: []jina.SearchResult{
			{Title: "one", URL: a1.URL},
			{Title: "two", URL: a2.URL},
			{Title: "three", URL: a3.URL},
		},
	}}

	model := &mockAnthropicClient{reply: `{"overview":"ok","articles":[]}`}
	engine := llm.NewEngine(model, config.AnthropicConfig{Model: "claude-sonnet-4-5", MaxTokens: 1024})

	builder := NewBuilder(config.NewsConfig{MaxArticles: 2}, search,
		scrape.NewChain(scrape.NewLocalScraper()), engine)

	_, err := builder.Build(context.Background(), "crypto")

	require.NoError(t, err)
	prompt := model.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "Article 2")
	assert.NotContains(t, prompt, "Article 3")
}

func TestBuild_NoResults(t *testing.T) {
	t.Parallel()

	search := &mockSearch{resp: &jina.SearchResponse{Code: 422}}
	model := &mockAnthropicClient{}
	engine := llm.NewEngine(model, config.AnthropicConfig{})

	builder := NewBuilder(config.NewsConfig{}, search,
		scrape.NewChain(scrape.NewLocalScraper()), engine)

	_, err := builder.Build(context.Background(), "nonexistent topic")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no results")
	assert.EqualValues(t, 0, model.calls.Load())
}

func TestBuild_SearchError(t *testing.T) {
	t.Parallel()

	search := &mockSearch{err: eris.New("rate limited")}
	engine := llm.NewEngine(&mockAnthropicClient{}, config.AnthropicConfig{})

	builder := NewBuilder(config.NewsConfig{}, search,
		scrape.NewChain(scrape.NewLocalScraper()), engine)

	_, err := builder.Build(context.Background(), "crypto")
	require.Error(t, err)
}

func TestBuild_AllScrapesFailed(t *testing.T) {
	t.Parallel()

	search := &mockSearch{resp: &jina.SearchResponse{
		Code: 200,
		Data: []jina.SearchResult{{Title: "gone", URL: "http://127.0.0.1:1/article"}},
	}}
	engine := llm.NewEngine(&mockAnthropicClient{}, config.AnthropicConfig{})

	builder := NewBuilder(config.NewsConfig{}, search,
		scrape.NewChain(scrape.NewLocalScraper()), engine)

	_, err := builder.Build(context.Background(), "crypto")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrapes failed")
}

func TestSlackText(t *testing.T) {
	t.Parallel()

	d := &Digest{
		Topic:    "crypto",
		Overview: "A quiet day.",
		Articles: []Article{
			{Title: "BTC flat", URL: "https://news.example/btc", Summary: "Nothing moved."},
		},
	}

	text := d.SlackText()

	assert.Contains(t, text, "*crypto")
	assert.Contains(t, text, "A quiet day.")
	assert.Contains(t, text, "<https://news.example/btc|BTC flat>")
	assert.Contains(t, text, "Nothing moved.")
}
