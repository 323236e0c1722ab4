package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/anylist-notify/internal/anylist"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch lists continuously and notify on changes",
		Long: `Run the notifier daemon: subscribe to the AnyList realtime websocket and
reconcile on every change signal, with a periodic poll as a fallback for
signals the websocket missed.

On the very first run the current list state is committed as a baseline
without sending notifications. Stop with Ctrl-C; a second Ctrl-C forces exit.`,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	cleanup, err := writePIDFile(pidFilePath(resolvedCfg))
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := newPipeline(ctx, resolvedCfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	seeded, err := p.ensureSeeded(ctx)
	if err != nil {
		return err
	}

	if !seeded {
		// Catch up on changes that happened while the daemon was down.
		p.coordinator.Trigger()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.coordinator.Run(gctx)
	})

	realtime := anylist.NewRealtime(p.client, resolvedCfg.AnyList.WebsocketURL,
		p.coordinator.Trigger, logger)
	g.Go(func() error {
		return realtime.Run(gctx)
	})

	if interval := resolvedCfg.PollInterval(); interval > 0 {
		g.Go(func() error {
			return pollLoop(gctx, interval, p.coordinator.Trigger, logger)
		})
	}

	g.Go(func() error {
		return watchConfigFile(gctx, effectiveConfigPath(), logger)
	})

	return g.Wait()
}

// pollLoop triggers a reconciliation cycle at a fixed interval. This is the
// safety net for realtime signals lost while the websocket was reconnecting.
func pollLoop(ctx context.Context, interval time.Duration, trigger func(), logger *slog.Logger) error {
	logger.Debug("poll loop started", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			logger.Debug("poll interval elapsed, triggering reconciliation")
			trigger()
		}
	}
}

// watchConfigFile warns when the config file changes while the daemon is
// running. Configuration is read once at startup, so edits silently take no
// effect until restart; the warning makes that visible.
func watchConfigFile(ctx context.Context, path string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("config file watcher unavailable", slog.String("error", err.Error()))
		return nil
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		// Missing config file is normal when running on env vars alone.
		logger.Debug("not watching config file", slog.String("path", path),
			slog.String("error", err.Error()))
		<-ctx.Done()

		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Warn("config file changed; restart to apply",
					slog.String("path", path))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("config file watcher error", slog.String("error", err.Error()))
		}
	}
}
