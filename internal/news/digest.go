// Package news builds a topic digest: hosted search for headlines, a
// concurrent scrape of the top articles, and one model call for the digest.
package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/config"
	"github.com/sitescout/sitescout/internal/llm"
	"github.com/sitescout/sitescout/internal/scrape"
	"github.com/sitescout/sitescout/pkg/jina"
)

// Article is one digested article.
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// Digest is the assembled topic digest.
type Digest struct {
	Topic       string    `json:"topic"`
	Overview    string    `json:"overview"`
	Articles    []Article `json:"articles"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Builder assembles digests.
type Builder struct {
	cfg    config.NewsConfig
	search jina.Client
	chain  *scrape.Chain
	engine *llm.Engine
}

// NewBuilder creates a Builder.
func NewBuilder(cfg config.NewsConfig, search jina.Client, chain *scrape.Chain, engine *llm.Engine) *Builder {
	return &Builder{cfg: cfg, search: search, chain: chain, engine: engine}
}

const digestSystemPrompt = `You write news digests. Given several scraped articles on a topic, respond with a valid JSON object: {"overview": "<two-sentence overview of the day's developments>", "articles": [{"title": "...", "url": "...", "summary": "<one sentence>"}]}. Include only articles actually relevant to the topic. No prose outside the JSON.`

// Build searches for the topic, scrapes the top articles, and returns the
// digest. Articles that fail to scrape are skipped.
func (b *Builder) Build(ctx context.Context, topic string) (*Digest, error) {
	resp, err := b.search.Search(ctx, topic+" latest news")
	if err != nil {
		return nil, eris.Wrapf(err, "news: search %q", topic)
	}
	if len(resp.Data) == 0 {
		return nil, eris.Errorf("news: no results for %q", topic)
	}

	maxArticles := b.cfg.MaxArticles
	if maxArticles <= 0 {
		maxArticles = 5
	}

	var urls []string
	titleByURL := make(map[string]string)
	for _, r := range resp.Data {
		if r.URL == "" {
			continue
		}
		urls = append(urls, r.URL)
		titleByURL[r.URL] = r.Title
		if len(urls) >= maxArticles {
			break
		}
	}

	pages := b.chain.ScrapeAll(ctx, urls, 3)
	if len(pages) == 0 {
		return nil, eris.Errorf("news: all %d article scrapes failed for %q", len(urls), topic)
	}
	zap.L().Info("news: articles scraped",
		zap.String("topic", topic),
		zap.Int("requested", len(urls)),
		zap.Int("scraped", len(pages)),
	)

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Topic: %s\n", topic)
	for i, p := range pages {
		title := p.Title
		if title == "" {
			title = titleByURL[p.URL]
		}
		fmt.Fprintf(&prompt, "\n--- Article %d ---\nTitle: %s\nURL: %s\nContent:\n%s\n",
			i+1, title, p.URL, truncate(p.Markdown, 4000))
	}

	text, err := b.engine.Prompt(ctx, digestSystemPrompt, prompt.String(), "news_digest")
	if err != nil {
		return nil, eris.Wrap(err, "news: digest")
	}

	var digest Digest
	if err := llm.UnmarshalLenient(text, &digest); err != nil {
		return nil, eris.Wrap(err, "news: parse digest")
	}
	digest.Topic = topic
	digest.GeneratedAt = time.Now().UTC()
	return &digest, nil
}

// SlackText renders the digest as Slack mrkdwn.
func (d *Digest) SlackText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s news digest*\n%s\n", d.Topic, d.Overview)
	for _, a := range d.Articles {
		fmt.Fprintf(&b, "\n• <%s|%s>\n  %s", a.URL, a.Title, a.Summary)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
