package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sitescout/sitescout/internal/scrape"
)

var compareCmd = &cobra.Command{
	Use:   "compare <url-a> <url-b>",
	Short: "Compare two pages with Claude",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		chain := newChain(false)

		var a, b *scrape.Result
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			a, err = chain.Scrape(gctx, args[0])
			return err
		})
		g.Go(func() (err error) {
			b, err = chain.Scrape(gctx, args[1])
			return err
		})
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "scrape pages")
		}

		comparison, err := newEngine().Compare(ctx, a.Page, b.Page)
		if err != nil {
			return eris.Wrap(err, "compare pages")
		}

		fmt.Println(comparison)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
