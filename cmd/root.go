package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sitescout",
	Short: "Website monitoring and research toolbox",
	Long:  "Scrapes and crawls websites through hosted browser APIs, summarizes and classifies content with Claude, tracks page changes, probes uptime, hunts dead links, and scores leads.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// exitCode is set by commands that report failures (down sites, dead links,
// PII found) without aborting; main exits with it after deferred cleanup and
// the log sync have run.
var exitCode int

func setExit(code int) { exitCode = code }

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}
