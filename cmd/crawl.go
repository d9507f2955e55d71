package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/internal/sitegraph"
	"github.com/sitescout/sitescout/pkg/firecrawl"
)

var (
	crawlDepth int
	crawlLimit int
	crawlJSON  bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Crawl a site and print its URL tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		startURL := args[0]

		parsed, err := url.Parse(startURL)
		if err != nil || parsed.Host == "" {
			return eris.Errorf("invalid url %q", startURL)
		}

		fc := newFirecrawl()

		depth := crawlDepth
		if depth == 0 {
			depth = cfg.Crawl.MaxDepth
		}
		limit := crawlLimit
		if limit == 0 {
			limit = cfg.Crawl.Limit
		}

		resp, err := fc.Crawl(ctx, firecrawl.CrawlRequest{
			URL:      startURL,
			MaxDepth: depth,
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrapf(err, "start crawl %s", startURL)
		}
		zap.L().Info("crawl started", zap.String("id", resp.ID), zap.String("url", startURL))

		status, err := firecrawl.PollCrawl(ctx, fc, resp.ID,
			firecrawl.WithPollTimeout(time.Duration(cfg.Crawl.TimeoutSecs)*time.Second),
		)
		if err != nil {
			return eris.Wrapf(err, "crawl %s", resp.ID)
		}

		pages := make([]model.Page, 0, len(status.Data))
		for _, d := range status.Data {
			pageURL := d.URL
			if pageURL == "" {
				pageURL = d.Metadata.SourceURL
			}
			if pageURL == "" {
				continue
			}
			pages = append(pages, model.Page{URL: pageURL, Title: d.Title})
		}

		zap.L().Info("crawl complete",
			zap.String("url", startURL),
			zap.Int("pages", len(pages)),
		)

		if crawlJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pages)
		}

		tree := sitegraph.Build(parsed.Host, pages)
		fmt.Print(sitegraph.Render(tree))
		fmt.Printf("\n%d pages\n", len(pages))
		return nil
	},
}

func init() {
	crawlCmd.Flags().IntVar(&crawlDepth, "depth", 0, "max crawl depth (default from config)")
	crawlCmd.Flags().IntVar(&crawlLimit, "limit", 0, "max pages (default from config)")
	crawlCmd.Flags().BoolVar(&crawlJSON, "json", false, "output page list as JSON instead of a tree")
	rootCmd.AddCommand(crawlCmd)
}
