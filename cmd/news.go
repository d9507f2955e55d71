package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sitescout/sitescout/internal/news"
)

var (
	newsSlack bool
	newsJSON  bool
)

var newsCmd = &cobra.Command{
	Use:   "news <topic>",
	Short: "Build a news digest for a topic",
	Long:  "Searches the web for recent coverage of a topic, scrapes the top articles, and has Claude assemble a digest. With --slack the digest is also posted to the configured webhook.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		builder := news.NewBuilder(cfg.News, newJina(), newChain(false), newEngine())
		digest, err := builder.Build(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "build digest for %q", args[0])
		}

		if newsSlack {
			if err := newNotifier().Slack(ctx, digest.SlackText()); err != nil {
				return err
			}
		}

		if newsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(digest)
		}

		fmt.Printf("%s\n\n%s\n\n", digest.Topic, digest.Overview)
		for i, a := range digest.Articles {
			fmt.Printf("%d. %s\n   %s\n   %s\n", i+1, a.Title, a.Summary, a.URL)
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().BoolVar(&newsSlack, "slack", false, "post the digest to Slack")
	newsCmd.Flags().BoolVar(&newsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(newsCmd)
}
