package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sitescout/sitescout/internal/links"
	"github.com/sitescout/sitescout/internal/llm"
	"github.com/sitescout/sitescout/internal/notify"
	"github.com/sitescout/sitescout/internal/scrape"
	"github.com/sitescout/sitescout/internal/store"
	anthropicpkg "github.com/sitescout/sitescout/pkg/anthropic"
	"github.com/sitescout/sitescout/pkg/firecrawl"
	"github.com/sitescout/sitescout/pkg/jina"
	"github.com/sitescout/sitescout/pkg/slack"
)

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func newFirecrawl() firecrawl.Client {
	return firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
}

func newJina() jina.Client {
	return jina.NewClient(cfg.Jina.Key,
		jina.WithBaseURL(cfg.Jina.BaseURL),
		jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL),
	)
}

// newChain builds the scrape fallback chain: Jina reader first, Firecrawl
// second, and the plain HTTP fetcher last when enabled. withHTML makes the
// Firecrawl adapter request raw HTML alongside markdown.
func newChain(withHTML bool) *scrape.Chain {
	fc := newFirecrawl()

	fcAdapter := scrape.NewFirecrawlAdapter(fc)
	if withHTML {
		fcAdapter = fcAdapter.WithHTML()
	}

	scrapers := []scrape.Scraper{
		scrape.NewJinaAdapter(newJina()),
		fcAdapter,
	}
	if cfg.Scrape.LocalFallback && !withHTML {
		scrapers = append(scrapers, scrape.NewLocalScraper())
	}

	return scrape.NewChain(scrapers...).WithFirecrawlClient(fc)
}

func newEngine() *llm.Engine {
	return llm.NewEngine(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
}

func newLinksHunter() *links.Hunter {
	return links.NewHunter(cfg.Links)
}

func newNotifier() *notify.Notifier {
	return notify.New(slack.NewClient(cfg.Slack.WebhookURL), cfg.Email)
}
