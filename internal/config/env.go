package config

import "os"

// Environment variable names for overrides. Credentials are the main use
// case: keeping them out of the config file for container deployments.
const (
	EnvConfig    = "ANYLIST_NOTIFY_CONFIG"
	EnvEmail     = "ANYLIST_EMAIL"
	EnvPassword  = "ANYLIST_PASSWORD"
	EnvNtfyURL   = "NTFY_URL"
	EnvNtfyTopic = "NTFY_TOPIC"
	EnvNtfyToken = "NTFY_TOKEN"
	EnvCachePath = "ANYLIST_NOTIFY_DB"
	EnvLogLevel  = "ANYLIST_NOTIFY_LOG_LEVEL"
)

// EnvOverrides holds values derived from environment variables.
// These are read once by ReadEnvOverrides and applied field-by-field on top
// of the config file during Resolve.
type EnvOverrides struct {
	ConfigPath string
	Email      string
	Password   string
	NtfyURL    string
	NtfyTopic  string
	NtfyToken  string
	CachePath  string
	LogLevel   string
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify any Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		Email:      os.Getenv(EnvEmail),
		Password:   os.Getenv(EnvPassword),
		NtfyURL:    os.Getenv(EnvNtfyURL),
		NtfyTopic:  os.Getenv(EnvNtfyTopic),
		NtfyToken:  os.Getenv(EnvNtfyToken),
		CachePath:  os.Getenv(EnvCachePath),
		LogLevel:   os.Getenv(EnvLogLevel),
	}
}
