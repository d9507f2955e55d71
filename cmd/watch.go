package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/changelog"
	"github.com/sitescout/sitescout/internal/news"
	"github.com/sitescout/sitescout/internal/schedule"
	"github.com/sitescout/sitescout/internal/uptime"
)

var watchJobsFile string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scheduled jobs from a YAML file",
	Long:  "Loads cron-scheduled jobs from a YAML file and runs them until interrupted. Supported kinds: uptime, changelog, news. Unhealthy checks, meaningful changes, and digests are posted to the configured Slack webhook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		jf, err := schedule.LoadJobs(watchJobsFile)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		engine := newEngine()
		chain := newChain(false)
		notifier := newNotifier()
		checker := uptime.NewChecker(cfg.Uptime, engine)
		detector := changelog.NewDetector(chain, st, engine)
		builder := news.NewBuilder(cfg.News, newJina(), chain, engine)

		runner := schedule.NewRunner()

		runner.Register("uptime", func(ctx context.Context, job schedule.Job) error {
			checks := checker.CheckAll(ctx, job.URLs, job.Smart)
			var down []string
			for _, c := range checks {
				if err := st.SaveCheck(ctx, c); err != nil {
					zap.L().Warn("save check failed", zap.String("url", c.URL), zap.Error(err))
				}
				if !c.Healthy() {
					down = append(down, string(c.Status)+"  "+c.URL)
				}
			}
			if len(down) == 0 {
				return nil
			}
			return notifier.Slack(ctx, "Uptime alert:\n"+strings.Join(down, "\n"))
		})

		runner.Register("changelog", func(ctx context.Context, job schedule.Job) error {
			var changed int
			body := "Watched page changes\n\n"
			for _, url := range job.URLs {
				v, err := detector.Check(ctx, url)
				if err != nil {
					zap.L().Error("change check failed", zap.String("url", url), zap.Error(err))
					continue
				}
				if v.Changed && v.Meaningful {
					changed++
					body += v.URL + "\n  " + v.Summary + "\n\n"
				}
			}
			if changed == 0 {
				return nil
			}
			return notifier.Slack(ctx, body)
		})

		runner.Register("news", func(ctx context.Context, job schedule.Job) error {
			digest, err := builder.Build(ctx, job.Topic)
			if err != nil {
				return err
			}
			return notifier.Slack(ctx, digest.SlackText())
		})

		return runner.Run(ctx, jf.Jobs)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchJobsFile, "jobs", "watch.yaml", "jobs file")
	rootCmd.AddCommand(watchCmd)
}
