package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/anylist-notify/internal/reconcile"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cache state and last reconciliation time",
		Long: `Display the snapshot cache location, whether a baseline has been
committed, how many lists and items it holds, and when the last
reconciliation cycle committed.`,
		RunE: runStatus,
	}
}

// cacheStatus is the JSON shape for status --json output.
type cacheStatus struct {
	CachePath     string `json:"cache_path"`
	Initialized   bool   `json:"initialized"`
	Lists         int    `json:"lists"`
	Items         int    `json:"items"`
	LastCommitted string `json:"last_committed,omitempty"`
	DaemonPID     int    `json:"daemon_pid,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	store, err := reconcile.NewStore(resolvedCfg.Cache.Path, logger)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer store.Close()

	initialized, err := store.Initialized(ctx)
	if err != nil {
		return err
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	status := cacheStatus{
		CachePath:   resolvedCfg.Cache.Path,
		Initialized: initialized,
		Lists:       stats.Lists,
		Items:       stats.Items,
	}

	if stats.LastCommitted != nil {
		status.LastCommitted = stats.LastCommitted.UTC().Format(time.RFC3339)
	}

	if pid, running := daemonPID(resolvedCfg); running {
		status.DaemonPID = pid
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(status)
	}

	printStatusText(status)

	return nil
}

func printStatusText(status cacheStatus) {
	fmt.Printf("Cache:          %s\n", status.CachePath)

	if !status.Initialized {
		fmt.Println("State:          empty (first run will seed a baseline without notifying)")
	} else {
		fmt.Printf("State:          %d list(s), %d item(s)\n", status.Lists, status.Items)
	}

	if status.LastCommitted != "" {
		fmt.Printf("Last committed: %s\n", status.LastCommitted)
	}

	if status.DaemonPID != 0 {
		fmt.Printf("Daemon:         running (PID %d)\n", status.DaemonPID)
	} else {
		fmt.Println("Daemon:         not running")
	}
}
