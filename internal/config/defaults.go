package config

// Default values for configuration options. These are "layer 0" of the
// override chain and match the notification behavior the original users of
// the service expect: checked-off items notify quietly, everything else at
// normal priority.
const (
	defaultAnyListBaseURL   = "https://api.anylist.com"
	defaultAnyListWSURL     = "wss://api.anylist.com/v1/sync"
	defaultNtfyBaseURL      = "https://ntfy.sh"
	defaultPollInterval     = "5m"
	defaultLogLevel         = "info"
	defaultLogFormat        = "auto"
	defaultPriority         = "default"
	defaultCheckedPriority  = "low"
	defaultAddedTags        = "heavy_plus_sign,shopping_cart"
	defaultRemovedTags      = "x,shopping_cart"
	defaultCheckedTags      = "white_check_mark"
	defaultUncheckedTags    = "arrow_backward"
	defaultModifiedTags     = "pencil2"
	defaultFilterOwnChanges = true
)

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		AnyList: AnyListConfig{
			BaseURL:      defaultAnyListBaseURL,
			WebsocketURL: defaultAnyListWSURL,
		},
		Cache: CacheConfig{
			Path: DefaultCachePath(),
		},
		Ntfy: NtfyConfig{
			BaseURL: defaultNtfyBaseURL,
			Priorities: KindConfig{
				ItemAdded:     defaultPriority,
				ItemRemoved:   defaultPriority,
				ItemChecked:   defaultCheckedPriority,
				ItemUnchecked: defaultPriority,
				ItemModified:  defaultPriority,
			},
			Tags: KindConfig{
				ItemAdded:     defaultAddedTags,
				ItemRemoved:   defaultRemovedTags,
				ItemChecked:   defaultCheckedTags,
				ItemUnchecked: defaultUncheckedTags,
				ItemModified:  defaultModifiedTags,
			},
		},
		Notifications: NotificationsConfig{
			FilterOwnChanges: defaultFilterOwnChanges,
		},
		Sync: SyncConfig{
			PollInterval: defaultPollInterval,
		},
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
