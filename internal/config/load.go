package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file and returns the resulting
// Config. Unknown keys are treated as fatal errors with "did you mean?"
// suggestions — this strictness is deliberate because silently ignoring a
// typo in a config file leads to hard-to-debug behavior.
//
// Validation happens in Resolve, after env overrides are applied, so a
// config file that omits credentials in favor of ANYLIST_EMAIL still loads.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values. This supports configuring
// entirely through environment variables without creating a config file.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
// It returns a fully resolved and validated Config ready for use.
// The precedence order ensures CLI flags always win, matching user
// expectations for one-off overrides without editing the config file.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Config, error) {
	cfg, err := ResolveLenient(env, cli)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// ResolveLenient is Resolve without the final validation step. Commands
// that only display configuration or cache state use it so they keep
// working while required fields (credentials, topic) are still unset.
func ResolveLenient(env EnvOverrides, cli CLIOverrides) (*Config, error) {
	cfg, err := LoadOrDefault(ConfigPath(env, cli))
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg, env)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config, env EnvOverrides) {
	if env.Email != "" {
		cfg.AnyList.Email = env.Email
	}

	if env.Password != "" {
		cfg.AnyList.Password = env.Password
	}

	if env.NtfyURL != "" {
		cfg.Ntfy.BaseURL = env.NtfyURL
	}

	if env.NtfyTopic != "" {
		cfg.Ntfy.Topic = env.NtfyTopic
	}

	if env.NtfyToken != "" {
		cfg.Ntfy.AccessToken = env.NtfyToken
	}

	if env.CachePath != "" {
		cfg.Cache.Path = env.CachePath
	}

	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
}

// ConfigPath returns the config file path that Resolve would use for the
// given overrides. Used by the config show command to report provenance.
func ConfigPath(env EnvOverrides, cli CLIOverrides) string {
	if cli.ConfigPath != "" {
		return cli.ConfigPath
	}

	if env.ConfigPath != "" {
		return env.ConfigPath
	}

	return DefaultConfigPath()
}
