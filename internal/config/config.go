// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for anylist-notify. It supports a
// three-layer override chain (defaults -> config file -> environment
// variables) producing one immutable resolved Config before anything else
// runs; no other package reads configuration sources directly.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	AnyList       AnyListConfig       `toml:"anylist" json:"anylist"`
	Cache         CacheConfig         `toml:"cache" json:"cache"`
	Ntfy          NtfyConfig          `toml:"ntfy" json:"ntfy"`
	Notifications NotificationsConfig `toml:"notifications" json:"notifications"`
	Sync          SyncConfig          `toml:"sync" json:"sync"`
	Logging       LoggingConfig       `toml:"logging" json:"logging"`
}

// AnyListConfig holds the remote account credentials and endpoints.
type AnyListConfig struct {
	Email        string `toml:"email" json:"email"`
	Password     string `toml:"password" json:"password"`
	BaseURL      string `toml:"base_url" json:"base_url"`
	WebsocketURL string `toml:"websocket_url" json:"websocket_url"`
}

// CacheConfig locates the snapshot cache database.
type CacheConfig struct {
	Path string `toml:"path" json:"path"`
}

// NtfyConfig controls notification delivery: the ntfy server, topic, and
// per-event-kind priorities and tags.
type NtfyConfig struct {
	BaseURL     string     `toml:"base_url" json:"base_url"`
	Topic       string     `toml:"topic" json:"topic"`
	AccessToken string     `toml:"access_token" json:"access_token"`
	Priorities  KindConfig `toml:"priorities" json:"priorities"`
	Tags        KindConfig `toml:"tags" json:"tags"`
}

// KindConfig holds one string value per change-event kind. Used for both
// ntfy priorities and ntfy tag lists.
type KindConfig struct {
	ItemAdded     string `toml:"item_added" json:"item_added"`
	ItemRemoved   string `toml:"item_removed" json:"item_removed"`
	ItemChecked   string `toml:"item_checked" json:"item_checked"`
	ItemUnchecked string `toml:"item_unchecked" json:"item_unchecked"`
	ItemModified  string `toml:"item_modified" json:"item_modified"`
}

// NotificationsConfig controls which detected changes notify at all.
type NotificationsConfig struct {
	// FilterOwnChanges suppresses notifications for changes made by the
	// authenticated account itself.
	FilterOwnChanges bool `toml:"filter_own_changes" json:"filter_own_changes"`
}

// SyncConfig controls reconciliation timing. The websocket is the primary
// trigger source; poll_interval is a fallback full poll for changes the
// websocket missed ("0" disables it).
type SyncConfig struct {
	PollInterval string `toml:"poll_interval" json:"poll_interval"`
}

// LoggingConfig controls log output: level and format. Format "auto" picks
// text on a terminal and JSON otherwise.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings.
type CLIOverrides struct {
	ConfigPath string // --config flag (empty = use default)
}
