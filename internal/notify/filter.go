package notify

import (
	"context"
	"log/slog"

	"github.com/tonimelisma/anylist-notify/internal/reconcile"
)

// ownChangeFilter suppresses notifications for changes made by the
// authenticated user: when that user adds an item from their own phone,
// pushing them a notification about it is noise.
type ownChangeFilter struct {
	sink   reconcile.EventSink
	userID string
	logger *slog.Logger
}

// FilterOwnChanges wraps sink so events attributed to userID are dropped
// before delivery. Events without user attribution always pass through —
// better a redundant notification than a silently missed change.
func FilterOwnChanges(sink reconcile.EventSink, userID string, logger *slog.Logger) reconcile.EventSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &ownChangeFilter{sink: sink, userID: userID, logger: logger}
}

func (f *ownChangeFilter) Deliver(ctx context.Context, ev reconcile.ChangeEvent) error {
	if f.userID != "" && ev.Item.UserID != nil && *ev.Item.UserID == f.userID {
		f.logger.Debug("suppressing own change",
			slog.String("kind", string(ev.Kind)),
			slog.String("item_id", ev.Item.ID),
		)

		return nil
	}

	return f.sink.Deliver(ctx, ev)
}
