package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/report"
	"github.com/sitescout/sitescout/internal/uptime"
)

var (
	uptimeSmart bool
	uptimeJSON  bool
	uptimeSlack bool
)

var uptimeCmd = &cobra.Command{
	Use:   "uptime <url>...",
	Short: "Probe sites and report their status",
	Long:  "Probes each URL and classifies it as up, degraded, or down. With --smart, ambiguous 200 responses are shown to Claude to catch outage pages served with a healthy status code. Results are persisted for the history endpoint.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		checker := uptime.NewChecker(cfg.Uptime, newEngine())
		checks := checker.CheckAll(ctx, args, uptimeSmart)

		down := 0
		for _, c := range checks {
			if err := st.SaveCheck(ctx, c); err != nil {
				zap.L().Warn("save check failed", zap.String("url", c.URL), zap.Error(err))
			}
			if !c.Healthy() {
				down++
			}
		}

		if uptimeSlack && down > 0 {
			text := "Uptime alert:\n"
			for _, c := range checks {
				if !c.Healthy() {
					text += "  " + string(c.Status) + "  " + c.URL + "\n"
				}
			}
			if err := newNotifier().Slack(ctx, text); err != nil {
				return err
			}
		}

		if uptimeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(checks); err != nil {
				return err
			}
		} else {
			report.ChecksTable(os.Stdout, checks)
		}

		if down > 0 {
			setExit(1)
		}
		return nil
	},
}

func init() {
	uptimeCmd.Flags().BoolVar(&uptimeSmart, "smart", false, "use Claude to detect outage pages behind 200 responses")
	uptimeCmd.Flags().BoolVar(&uptimeJSON, "json", false, "output as JSON")
	uptimeCmd.Flags().BoolVar(&uptimeSlack, "slack", false, "post an alert to Slack when sites are unhealthy")
	rootCmd.AddCommand(uptimeCmd)
}
