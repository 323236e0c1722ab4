package config

import (
	"fmt"
	"io"
)

const redacted = "<redacted>"

// Redacted returns a copy of the config with secret fields replaced by a
// placeholder, safe to serialize for display.
func (c *Config) Redacted() *Config {
	out := *c

	if out.AnyList.Password != "" {
		out.AnyList.Password = redacted
	}

	if out.Ntfy.AccessToken != "" {
		out.Ntfy.AccessToken = redacted
	}

	return &out
}

// RenderEffective writes the resolved configuration as a human-readable
// annotated summary to w. This powers the "config show" command, giving
// users visibility into the effective values after all override layers
// (defaults -> file -> env) have been applied. Secrets are redacted.
func RenderEffective(cfg *Config, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration\n\n")

	renderAnyListSection(ew, &cfg.AnyList)
	renderCacheSection(ew, &cfg.Cache)
	renderNtfySection(ew, &cfg.Ntfy)
	renderNotificationsSection(ew, &cfg.Notifications)
	renderSyncSection(ew, &cfg.Sync)
	renderLoggingSection(ew, &cfg.Logging)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain
// printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func renderAnyListSection(ew *errWriter, a *AnyListConfig) {
	ew.printf("[anylist]\n")
	ew.printf("  email         = %q\n", a.Email)

	if a.Password != "" {
		ew.printf("  password      = %q\n", redacted)
	}

	ew.printf("  base_url      = %q\n", a.BaseURL)
	ew.printf("  websocket_url = %q\n", a.WebsocketURL)
	ew.printf("\n")
}

func renderCacheSection(ew *errWriter, c *CacheConfig) {
	ew.printf("[cache]\n")

	path := c.Path
	if path == "" {
		path = DefaultCachePath()
	}

	ew.printf("  path = %q\n", path)
	ew.printf("\n")
}

func renderNtfySection(ew *errWriter, n *NtfyConfig) {
	ew.printf("[ntfy]\n")
	ew.printf("  base_url     = %q\n", n.BaseURL)
	ew.printf("  topic        = %q\n", n.Topic)

	if n.AccessToken != "" {
		ew.printf("  access_token = %q\n", redacted)
	}

	ew.printf("\n")

	ew.printf("[ntfy.priorities]\n")
	renderKindConfig(ew, &n.Priorities)
	ew.printf("\n")

	ew.printf("[ntfy.tags]\n")
	renderKindConfig(ew, &n.Tags)
	ew.printf("\n")
}

func renderKindConfig(ew *errWriter, k *KindConfig) {
	ew.printf("  item_added     = %q\n", k.ItemAdded)
	ew.printf("  item_removed   = %q\n", k.ItemRemoved)
	ew.printf("  item_checked   = %q\n", k.ItemChecked)
	ew.printf("  item_unchecked = %q\n", k.ItemUnchecked)
	ew.printf("  item_modified  = %q\n", k.ItemModified)
}

func renderNotificationsSection(ew *errWriter, n *NotificationsConfig) {
	ew.printf("[notifications]\n")
	ew.printf("  filter_own_changes = %t\n", n.FilterOwnChanges)
	ew.printf("\n")
}

func renderSyncSection(ew *errWriter, s *SyncConfig) {
	ew.printf("[sync]\n")
	ew.printf("  poll_interval = %q\n", s.PollInterval)
	ew.printf("\n")
}

func renderLoggingSection(ew *errWriter, l *LoggingConfig) {
	ew.printf("[logging]\n")
	ew.printf("  level  = %q\n", l.Level)
	ew.printf("  format = %q\n", l.Format)
}
