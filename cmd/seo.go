package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sitescout/sitescout/internal/seo"
)

var (
	seoAdvise bool
	seoJSON   bool
)

var seoCmd = &cobra.Command{
	Use:   "seo <url>",
	Short: "Audit a page's on-page SEO",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		result, err := newChain(true).Scrape(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "scrape %s", args[0])
		}

		audit, err := seo.Analyze(result.Page)
		if err != nil {
			return eris.Wrapf(err, "audit %s", args[0])
		}

		if seoAdvise {
			if err := seo.Advise(ctx, newEngine(), audit); err != nil {
				return eris.Wrap(err, "advise")
			}
		}

		if seoJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(audit)
		}

		fmt.Printf("SEO audit: %s\n", audit.URL)
		fmt.Printf("Score: %d/100\n\n", audit.Score)
		for _, f := range audit.Findings {
			fmt.Printf("  [%s] %s: %s\n", f.Severity, f.Check, f.Message)
		}
		if len(audit.Findings) == 0 {
			fmt.Println("  no findings")
		}
		if audit.Recommendations != "" {
			fmt.Printf("\n%s\n", audit.Recommendations)
		}
		return nil
	},
}

func init() {
	seoCmd.Flags().BoolVar(&seoAdvise, "advise", false, "ask Claude for prioritized fixes")
	seoCmd.Flags().BoolVar(&seoJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(seoCmd)
}
