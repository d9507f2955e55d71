package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sitescout/sitescout/internal/pii"
)

var piiJSON bool

var piiCmd = &cobra.Command{
	Use:   "pii <url>",
	Short: "Scan a page for exposed personal data and trackers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		result, err := newChain(false).Scrape(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "scrape %s", args[0])
		}

		rep := pii.Classify(result.Page.URL, result.Page.Markdown)

		if piiJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
		} else {
			fmt.Printf("PII scan: %s\n", rep.URL)
			if len(rep.Signals) == 0 {
				fmt.Println("  no signals")
			}
			for _, s := range rep.Signals {
				line := fmt.Sprintf("  [%s] %s x%d", s.Category, s.Kind, s.Count)
				if s.Sample != "" {
					line += "  e.g. " + s.Sample
				}
				fmt.Println(line)
			}
		}

		if rep.HasPII() {
			setExit(1)
		}
		return nil
	},
}

func init() {
	piiCmd.Flags().BoolVar(&piiJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(piiCmd)
}
