package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tonimelisma/anylist-notify/internal/anylist"
	"github.com/tonimelisma/anylist-notify/internal/config"
	"github.com/tonimelisma/anylist-notify/internal/notify"
	"github.com/tonimelisma/anylist-notify/internal/reconcile"
)

// pipeline wires the full reconciliation stack: cache store, authenticated
// AnyList client, ntfy sink (optionally wrapped with the own-change filter),
// and the coordinator driving them. Shared by the watch and sync commands.
type pipeline struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *reconcile.SQLiteStore
	client      *anylist.Client
	coordinator *reconcile.Coordinator
}

// newPipeline opens the cache, logs in to AnyList, and assembles the
// coordinator. The caller owns Close.
func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	store, err := reconcile.NewStore(cfg.Cache.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	client := anylist.NewClient(cfg.AnyList.BaseURL, defaultHTTPClient(), logger)

	if err := client.Login(ctx, cfg.AnyList.Email, cfg.AnyList.Password); err != nil {
		store.Close()

		return nil, fmt.Errorf("logging in to AnyList: %w", err)
	}

	var sink reconcile.EventSink = notify.NewClient(notify.Options{
		BaseURL:     cfg.Ntfy.BaseURL,
		Topic:       cfg.Ntfy.Topic,
		AccessToken: cfg.Ntfy.AccessToken,
		Priorities:  kindSettings(cfg.Ntfy.Priorities),
		Tags:        kindSettings(cfg.Ntfy.Tags),
	}, defaultHTTPClient(), logger)

	if cfg.Notifications.FilterOwnChanges {
		sink = notify.FilterOwnChanges(sink, client.UserID(), logger)
	}

	return &pipeline{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		client:      client,
		coordinator: reconcile.NewCoordinator(client, store, sink, logger),
	}, nil
}

// ensureSeeded commits a baseline snapshot without dispatching notifications
// if the cache has never been committed to. Returns whether it seeded.
// Without this, the very first cycle would notify once per existing item.
func (p *pipeline) ensureSeeded(ctx context.Context) (bool, error) {
	initialized, err := p.store.Initialized(ctx)
	if err != nil {
		return false, err
	}

	if initialized {
		return false, nil
	}

	p.logger.Info("empty cache detected, seeding baseline snapshot")

	if err := p.coordinator.Seed(ctx); err != nil {
		return false, fmt.Errorf("seeding cache: %w", err)
	}

	return true, nil
}

func (p *pipeline) Close() error {
	return p.store.Close()
}

// kindSettings converts the per-kind config section into notify settings.
func kindSettings(k config.KindConfig) notify.KindSettings {
	return notify.KindSettings{
		Added:     k.ItemAdded,
		Removed:   k.ItemRemoved,
		Checked:   k.ItemChecked,
		Unchecked: k.ItemUnchecked,
		Modified:  k.ItemModified,
	}
}
