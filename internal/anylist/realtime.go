package anylist

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Reconnect backoff for the realtime websocket.
const (
	initialDialBackoff = 5 * time.Second
	maxDialBackoff     = 5 * time.Minute
)

// Realtime subscribes to the AnyList realtime websocket and invokes notify
// once per "shopping lists changed" signal. It owns the transport entirely:
// dialing, reading, and reconnecting with capped exponential backoff. The
// consumer sees only notify calls; a dropped connection never propagates
// past a warn log.
type Realtime struct {
	client *Client
	wsURL  string
	notify func()
	logger *slog.Logger

	// sleepFunc is called between reconnect attempts. Tests override it.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewRealtime creates a realtime subscriber. The client supplies the bearer
// token, so Login must have succeeded first. notify is invoked from the
// read loop and must not block for long.
func NewRealtime(client *Client, wsURL string, notify func(), logger *slog.Logger) *Realtime {
	if logger == nil {
		logger = slog.Default()
	}

	return &Realtime{
		client:    client,
		wsURL:     wsURL,
		notify:    notify,
		logger:    logger,
		sleepFunc: timeSleep,
	}
}

// Run connects and consumes realtime frames until ctx is canceled, then
// returns nil. Dial and read failures reconnect with exponential backoff,
// reset after every successfully processed frame.
func (r *Realtime) Run(ctx context.Context) error {
	backoff := initialDialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		err := r.consume(ctx, &backoff)
		if ctx.Err() != nil {
			return nil
		}

		r.logger.Warn("realtime connection lost, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("backoff", backoff),
		)

		if sleepErr := r.sleepFunc(ctx, backoff); sleepErr != nil {
			return nil
		}

		backoff = min(backoff*2, maxDialBackoff)
	}
}

// consume dials the websocket and processes frames until the connection
// drops or ctx is canceled. Resets *backoff after the first processed frame.
func (r *Realtime) consume(ctx context.Context, backoff *time.Duration) error {
	header := http.Header{}
	if tok := r.client.token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}

	header.Set("User-Agent", userAgent)

	conn, _, err := websocket.Dial(ctx, r.wsURL, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	r.logger.Info("realtime websocket connected", slog.String("url", r.wsURL))

	for {
		var frame realtimeFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return err
		}

		*backoff = initialDialBackoff

		switch frame.Event {
		case eventListsChanged:
			r.logger.Debug("realtime change signal received")
			r.notify()
		case eventHeartbeat:
			r.logger.Debug("heartbeat received")
		default:
			r.logger.Debug("ignoring realtime event", slog.String("event", frame.Event))
		}
	}
}
