package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// minPollInterval is the floor for the periodic reconciliation interval.
// Zero disables polling entirely (realtime triggers only).
const minPollInterval = 10 * time.Second

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateAnyList(&cfg.AnyList)...)
	errs = append(errs, validateNtfy(&cfg.Ntfy)...)
	errs = append(errs, validateSync(&cfg.Sync)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

func validateAnyList(a *AnyListConfig) []error {
	var errs []error

	if a.Email == "" {
		errs = append(errs, fmt.Errorf("anylist.email: must be set (or %s)", EnvEmail))
	}

	if a.Password == "" {
		errs = append(errs, fmt.Errorf("anylist.password: must be set (or %s)", EnvPassword))
	}

	errs = append(errs, validateURL("anylist.base_url", a.BaseURL, "http", "https")...)
	errs = append(errs, validateURL("anylist.websocket_url", a.WebsocketURL, "ws", "wss")...)

	return errs
}

func validateNtfy(n *NtfyConfig) []error {
	var errs []error

	if n.Topic == "" {
		errs = append(errs, fmt.Errorf("ntfy.topic: must be set (or %s)", EnvNtfyTopic))
	}

	errs = append(errs, validateURL("ntfy.base_url", n.BaseURL, "http", "https")...)

	for field, priority := range map[string]string{
		"ntfy.priorities.item_added":     n.Priorities.ItemAdded,
		"ntfy.priorities.item_removed":   n.Priorities.ItemRemoved,
		"ntfy.priorities.item_checked":   n.Priorities.ItemChecked,
		"ntfy.priorities.item_unchecked": n.Priorities.ItemUnchecked,
		"ntfy.priorities.item_modified":  n.Priorities.ItemModified,
	} {
		if !validNtfyPriorities[priority] {
			errs = append(errs, fmt.Errorf("%s: must be one of min, low, default, high, max; got %q",
				field, priority))
		}
	}

	return errs
}

// validNtfyPriorities are the priority names ntfy accepts in the
// X-Priority header.
var validNtfyPriorities = map[string]bool{
	"min":     true,
	"low":     true,
	"default": true,
	"high":    true,
	"max":     true,
}

func validateSync(s *SyncConfig) []error {
	if s.PollInterval == "0" {
		return nil
	}

	d, err := time.ParseDuration(s.PollInterval)
	if err != nil {
		return []error{fmt.Errorf("sync.poll_interval: invalid duration %q: %w", s.PollInterval, err)}
	}

	if d < minPollInterval {
		return []error{fmt.Errorf("sync.poll_interval: must be 0 (disabled) or >= %s, got %s",
			minPollInterval, d)}
	}

	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("logging.level: must be one of debug, info, warn, error; got %q", l.Level))
	}

	if !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("logging.format: must be one of auto, text, json; got %q", l.Format))
	}

	return errs
}

func validateURL(field, value string, schemes ...string) []error {
	if value == "" {
		return []error{fmt.Errorf("%s: must not be empty", field)}
	}

	u, err := url.Parse(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid URL %q: %w", field, value, err)}
	}

	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}

	return []error{fmt.Errorf("%s: scheme must be %s; got %q",
		field, strings.Join(schemes, " or "), value)}
}

// PollInterval returns the parsed poll interval, or zero if polling is
// disabled. Call only after Validate has accepted the config.
func (c *Config) PollInterval() time.Duration {
	if c.Sync.PollInterval == "0" {
		return 0
	}

	d, err := time.ParseDuration(c.Sync.PollInterval)
	if err != nil {
		return 0
	}

	return d
}
