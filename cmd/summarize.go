package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var summarizeJSON bool

var summarizeCmd = &cobra.Command{
	Use:   "summarize <url>",
	Short: "Scrape a page and summarize it with Claude",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		result, err := newChain(false).Scrape(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "scrape %s", args[0])
		}

		summary, err := newEngine().Summarize(ctx, result.Page)
		if err != nil {
			return eris.Wrapf(err, "summarize %s", args[0])
		}

		if summarizeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		fmt.Printf("%s\n%s\n\n%s\n", summary.Title, summary.URL, summary.Summary)
		if len(summary.KeyPoints) > 0 {
			fmt.Println()
			for _, p := range summary.KeyPoints {
				fmt.Printf("  - %s\n", p)
			}
		}
		return nil
	},
}

func init() {
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(summarizeCmd)
}
