package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sitescout/sitescout/internal/report"
)

var linksJSON bool

var linksCmd = &cobra.Command{
	Use:   "links <url>",
	Short: "Crawl a site and report dead links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		hunter := newLinksHunter()
		rep, err := hunter.Run(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "hunt links on %s", args[0])
		}

		if linksJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
		} else {
			report.DeadLinksTable(os.Stdout, rep)
		}

		if rep.TotalDead() > 0 {
			setExit(1)
		}
		return nil
	},
}

func init() {
	linksCmd.Flags().BoolVar(&linksJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(linksCmd)
}
