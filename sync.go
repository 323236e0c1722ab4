package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation cycle and exit",
		Long: `Fetch the current list state, notify about changes since the last run,
and commit the new state to the cache.

On the very first run the current state is committed as a baseline without
sending notifications.`,
		RunE: runSync,
	}
}

// syncResult is the JSON shape for sync --json output.
type syncResult struct {
	Seeded           bool   `json:"seeded"`
	Events           int    `json:"events"`
	Added            int    `json:"added"`
	Removed          int    `json:"removed"`
	Checked          int    `json:"checked"`
	Unchecked        int    `json:"unchecked"`
	Modified         int    `json:"modified"`
	Delivered        int    `json:"delivered"`
	DeliveryFailures int    `json:"delivery_failures"`
	Duration         string `json:"duration"`
}

func runSync(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	p, err := newPipeline(ctx, resolvedCfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	seeded, err := p.ensureSeeded(ctx)
	if err != nil {
		return err
	}

	if seeded {
		return printSyncResult(syncResult{Seeded: true})
	}

	report, err := p.coordinator.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation cycle: %w", err)
	}

	return printSyncResult(syncResult{
		Events:           report.Events(),
		Added:            report.Added,
		Removed:          report.Removed,
		Checked:          report.Checked,
		Unchecked:        report.Unchecked,
		Modified:         report.Modified,
		Delivered:        report.Delivered,
		DeliveryFailures: report.DeliveryFailures,
		Duration:         report.Duration.Round(time.Millisecond).String(),
	})
}

func printSyncResult(res syncResult) error {
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(res)
	}

	if res.Seeded {
		fmt.Println("Cache seeded with current list state; no notifications sent.")
		return nil
	}

	if res.Events == 0 {
		fmt.Println("No changes.")
		return nil
	}

	fmt.Printf("%d change(s): %d added, %d removed, %d checked, %d unchecked, %d modified\n",
		res.Events, res.Added, res.Removed, res.Checked, res.Unchecked, res.Modified)
	fmt.Printf("Notifications delivered: %d", res.Delivered)

	if res.DeliveryFailures > 0 {
		fmt.Printf(" (%d failed)", res.DeliveryFailures)
	}

	fmt.Println()

	return nil
}
