package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sitescout/sitescout/internal/report"
)

var (
	snapshotsLimit    int
	snapshotsOlderHrs int
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Manage stored page snapshots",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.ListSnapshots(ctx, snapshotsLimit)
		if err != nil {
			return eris.Wrap(err, "list snapshots")
		}

		report.SnapshotsTable(os.Stdout, snaps)
		return nil
	},
}

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete snapshots older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		hours := snapshotsOlderHrs
		if hours == 0 {
			hours = cfg.Store.SnapshotTTLHours
		}

		n, err := st.PruneSnapshots(ctx, time.Duration(hours)*time.Hour)
		if err != nil {
			return eris.Wrap(err, "prune snapshots")
		}

		fmt.Printf("pruned %d snapshots older than %dh\n", n, hours)
		return nil
	},
}

func init() {
	snapshotsListCmd.Flags().IntVar(&snapshotsLimit, "limit", 50, "max snapshots to show")
	snapshotsPruneCmd.Flags().IntVar(&snapshotsOlderHrs, "older-than", 0, "age threshold in hours (default from config)")

	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsPruneCmd)
	rootCmd.AddCommand(snapshotsCmd)
}
