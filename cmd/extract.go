package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var extractFields []string

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract structured fields from a page with Claude",
	Long:  `Scrapes a page and asks Claude to extract the named fields as JSON. Each --field is "name=description", e.g. --field "pricing=monthly price of the cheapest plan".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		fields := make(map[string]string, len(extractFields))
		for _, f := range extractFields {
			name, desc, ok := strings.Cut(f, "=")
			if !ok || name == "" {
				return eris.Errorf("invalid --field %q, want name=description", f)
			}
			fields[strings.TrimSpace(name)] = strings.TrimSpace(desc)
		}

		result, err := newChain(false).Scrape(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "scrape %s", args[0])
		}

		values, err := newEngine().Extract(ctx, result.Page, fields)
		if err != nil {
			return eris.Wrapf(err, "extract from %s", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	},
}

func init() {
	extractCmd.Flags().StringArrayVar(&extractFields, "field", nil, `field to extract as "name=description" (repeatable, required)`)
	_ = extractCmd.MarkFlagRequired("field")
	rootCmd.AddCommand(extractCmd)
}
