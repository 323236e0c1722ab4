package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tonimelisma/anylist-notify/internal/reconcile"
)

// KindSettings holds one per-event-kind string setting (a priority name or
// a comma-separated tag list).
type KindSettings struct {
	Added     string
	Removed   string
	Checked   string
	Unchecked string
	Modified  string
}

// For returns the setting for the given change kind.
func (s KindSettings) For(kind reconcile.ChangeKind) string {
	switch kind {
	case reconcile.ChangeItemAdded:
		return s.Added
	case reconcile.ChangeItemRemoved:
		return s.Removed
	case reconcile.ChangeItemChecked:
		return s.Checked
	case reconcile.ChangeItemUnchecked:
		return s.Unchecked
	case reconcile.ChangeItemModified:
		return s.Modified
	default:
		return ""
	}
}

// Options configures the ntfy client.
type Options struct {
	BaseURL     string // e.g. https://ntfy.sh
	Topic       string
	AccessToken string // optional bearer token for protected topics
	Priorities  KindSettings
	Tags        KindSettings
}

// Client posts change-event notifications to an ntfy topic, one HTTP POST
// per event. It implements reconcile.EventSink.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an ntfy client.
func NewClient(opts Options, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		opts:       opts,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Deliver formats the event and posts it to the configured topic. The
// notification text rides in the body; title, priority, and tags ride in
// ntfy's request headers.
func (c *Client) Deliver(ctx context.Context, ev reconcile.ChangeEvent) error {
	title, message := formatEvent(ev)
	url := strings.TrimRight(c.opts.BaseURL, "/") + "/" + c.opts.Topic

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("notify: creating request: %w", err)
	}

	req.Header.Set("Title", title)

	if priority := c.opts.Priorities.For(ev.Kind); priority != "" {
		req.Header.Set("Priority", priority)
	}

	if tags := parseTags(c.opts.Tags.For(ev.Kind)); len(tags) > 0 {
		req.Header.Set("Tags", strings.Join(tags, ","))
	}

	if c.opts.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: posting to ntfy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			body = []byte("(failed to read response body)")
		}

		return fmt.Errorf("notify: ntfy returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Info("notification sent",
		slog.String("kind", string(ev.Kind)),
		slog.String("title", title),
	)

	return nil
}

// parseTags splits a comma-separated tag list, trimming whitespace and
// dropping empty entries.
func parseTags(tags string) []string {
	var out []string

	for _, tag := range strings.Split(tags, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
