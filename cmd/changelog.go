package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/changelog"
	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/internal/report"
)

var (
	changelogSlack bool
	changelogJSON  bool
	changelogDiff  bool
)

var changelogCmd = &cobra.Command{
	Use:   "changelog <url>...",
	Short: "Detect meaningful changes on watched pages",
	Long:  "Fetches each page, compares it against the stored snapshot, and asks Claude whether the change is meaningful. The new snapshot replaces the old one. Exit code is 0 whether or not changes were found; per-page fetch failures are logged and skipped.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		detector := changelog.NewDetector(newChain(false), st, newEngine())

		var verdicts []model.ChangeVerdict
		for _, url := range args {
			v, err := detector.Check(ctx, url)
			if err != nil {
				zap.L().Error("change check failed", zap.String("url", url), zap.Error(err))
				continue
			}
			verdicts = append(verdicts, *v)
		}

		if changelogSlack {
			body := report.ChangesEmailBody(verdicts)
			if err := newNotifier().Slack(ctx, body); err != nil {
				return err
			}
		}

		if changelogJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(verdicts)
		}

		for _, v := range verdicts {
			switch {
			case v.FirstSeen:
				fmt.Printf("[new]       %s\n", v.URL)
			case !v.Changed:
				fmt.Printf("[unchanged] %s\n", v.URL)
			case v.Meaningful:
				fmt.Printf("[changed]   %s\n            %s\n", v.URL, v.Summary)
				if changelogDiff && v.Diff != "" {
					fmt.Println(v.Diff)
				}
			default:
				fmt.Printf("[cosmetic]  %s\n", v.URL)
			}
		}
		return nil
	},
}

func init() {
	changelogCmd.Flags().BoolVar(&changelogSlack, "slack", false, "post changes to Slack")
	changelogCmd.Flags().BoolVar(&changelogJSON, "json", false, "output as JSON")
	changelogCmd.Flags().BoolVar(&changelogDiff, "diff", false, "print line diffs for changed pages")
	rootCmd.AddCommand(changelogCmd)
}
