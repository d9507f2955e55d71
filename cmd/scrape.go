package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scrapeOut  string
	scrapeJSON bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape a single page to markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		chain := newChain(false)

		result, err := chain.Scrape(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "scrape %s", args[0])
		}

		zap.L().Info("page scraped",
			zap.String("url", result.Page.URL),
			zap.String("source", result.Source),
			zap.Int("chars", len(result.Page.Markdown)),
		)

		var out []byte
		if scrapeJSON {
			out, err = json.MarshalIndent(result.Page, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal page")
			}
			out = append(out, '\n')
		} else {
			out = []byte(result.Page.Markdown)
		}

		if scrapeOut != "" {
			if err := os.WriteFile(scrapeOut, out, 0o644); err != nil {
				return eris.Wrapf(err, "write %s", scrapeOut)
			}
			fmt.Printf("wrote %d bytes to %s\n", len(out), scrapeOut)
			return nil
		}

		fmt.Print(string(out))
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOut, "out", "o", "", "write output to file instead of stdout")
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "output the full page record as JSON")
	rootCmd.AddCommand(scrapeCmd)
}
