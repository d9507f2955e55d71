package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitescout/sitescout/internal/report"
)

var (
	digestTo         []string
	digestLeadsLimit int
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Email a digest of stored activity: watched pages, incidents, top leads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.ListSnapshots(ctx, 20)
		if err != nil {
			return err
		}
		checks, err := st.ListChecks(ctx, "", 100)
		if err != nil {
			return err
		}
		leads, err := st.ListLeads(ctx, digestLeadsLimit)
		if err != nil {
			return err
		}

		body := report.ActivityEmailBody(snaps, checks, leads)

		// The body is plain text; wrap it so HTML clients keep the layout.
		html := "<pre>" + htmlEscape(body) + "</pre>"
		if err := newNotifier().Email(digestTo, "Site activity digest", html); err != nil {
			return err
		}

		fmt.Printf("digest sent to %s\n", strings.Join(digestTo, ", "))
		return nil
	},
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func init() {
	digestCmd.Flags().StringSliceVar(&digestTo, "to", nil, "recipient email addresses (required)")
	digestCmd.Flags().IntVar(&digestLeadsLimit, "leads", 10, "number of top leads to include")
	_ = digestCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(digestCmd)
}
