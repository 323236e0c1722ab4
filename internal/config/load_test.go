package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	return path
}

func TestLoad_ValidFullConfig(t *testing.T) {
	tomlContent := `
[anylist]
email = "user@example.com"
password = "hunter2"
base_url = "https://api.example.com"
websocket_url = "wss://api.example.com/v1/sync"

[cache]
path = "/var/lib/anylist-notify/cache.db"

[ntfy]
base_url = "https://ntfy.example.com"
topic = "groceries"
access_token = "tk_secret"

[ntfy.priorities]
item_added = "high"
item_checked = "min"

[ntfy.tags]
item_added = "tada"

[notifications]
filter_own_changes = false

[sync]
poll_interval = "30s"

[logging]
level = "debug"
format = "json"
`

	path := writeTestConfig(t, tomlContent)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", cfg.AnyList.Email)
	assert.Equal(t, "hunter2", cfg.AnyList.Password)
	assert.Equal(t, "https://api.example.com", cfg.AnyList.BaseURL)
	assert.Equal(t, "wss://api.example.com/v1/sync", cfg.AnyList.WebsocketURL)

	assert.Equal(t, "/var/lib/anylist-notify/cache.db", cfg.Cache.Path)

	assert.Equal(t, "https://ntfy.example.com", cfg.Ntfy.BaseURL)
	assert.Equal(t, "groceries", cfg.Ntfy.Topic)
	assert.Equal(t, "tk_secret", cfg.Ntfy.AccessToken)
	assert.Equal(t, "high", cfg.Ntfy.Priorities.ItemAdded)
	assert.Equal(t, "min", cfg.Ntfy.Priorities.ItemChecked)
	assert.Equal(t, "tada", cfg.Ntfy.Tags.ItemAdded)

	// Unset keys keep their defaults.
	assert.Equal(t, defaultPriority, cfg.Ntfy.Priorities.ItemRemoved)
	assert.Equal(t, defaultRemovedTags, cfg.Ntfy.Tags.ItemRemoved)

	assert.False(t, cfg.Notifications.FilterOwnChanges)
	assert.Equal(t, "30s", cfg.Sync.PollInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_UnknownKeySuggestion(t *testing.T) {
	path := writeTestConfig(t, `
[ntfy]
topik = "groceries"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "ntfy.topik"`)
	assert.Contains(t, err.Error(), `did you mean "ntfy.topic"?`)
}

func TestLoad_UnknownKeyNoSuggestion(t *testing.T) {
	path := writeTestConfig(t, `
completely_unrelated_setting = true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "completely_unrelated_setting"`)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeTestConfig(t, `[anylist`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestResolve_EnvOverridesBeatFile(t *testing.T) {
	path := writeTestConfig(t, `
[anylist]
email = "file@example.com"
password = "filepass"

[ntfy]
topic = "file-topic"
`)

	env := EnvOverrides{
		ConfigPath: path,
		Email:      "env@example.com",
		NtfyTopic:  "env-topic",
		CachePath:  "/tmp/override.db",
		LogLevel:   "warn",
	}

	cfg, err := Resolve(env, CLIOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "env@example.com", cfg.AnyList.Email)
	assert.Equal(t, "filepass", cfg.AnyList.Password)
	assert.Equal(t, "env-topic", cfg.Ntfy.Topic)
	assert.Equal(t, "/tmp/override.db", cfg.Cache.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestResolve_CLIConfigPathBeatsEnv(t *testing.T) {
	cliPath := writeTestConfig(t, `
[anylist]
email = "cli@example.com"
password = "clipass"

[ntfy]
topic = "cli-topic"
`)
	envPath := writeTestConfig(t, `
[anylist]
email = "env@example.com"
password = "envpass"

[ntfy]
topic = "env-topic"
`)

	cfg, err := Resolve(EnvOverrides{ConfigPath: envPath}, CLIOverrides{ConfigPath: cliPath})
	require.NoError(t, err)
	assert.Equal(t, "cli@example.com", cfg.AnyList.Email)
}

func TestResolve_MissingCredentialsFails(t *testing.T) {
	path := writeTestConfig(t, `
[ntfy]
topic = "groceries"
`)

	_, err := Resolve(EnvOverrides{ConfigPath: path}, CLIOverrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anylist.email")
	assert.Contains(t, err.Error(), "anylist.password")
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnyList.Email = "user@example.com"
	cfg.AnyList.Password = "hunter2"
	cfg.Ntfy.Topic = "groceries"
	cfg.Ntfy.Priorities.ItemAdded = "urgent"
	cfg.Sync.PollInterval = "5x"
	cfg.Logging.Level = "trace"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ntfy.priorities.item_added")
	assert.Contains(t, err.Error(), "sync.poll_interval")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidate_PollIntervalFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnyList.Email = "user@example.com"
	cfg.AnyList.Password = "hunter2"
	cfg.Ntfy.Topic = "groceries"
	cfg.Sync.PollInterval = "1s"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync.poll_interval")

	cfg.Sync.PollInterval = "0"
	require.NoError(t, Validate(cfg))
}

func TestValidate_URLSchemes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnyList.Email = "user@example.com"
	cfg.AnyList.Password = "hunter2"
	cfg.Ntfy.Topic = "groceries"
	cfg.AnyList.WebsocketURL = "https://not-a-websocket.example.com"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anylist.websocket_url")
	assert.Contains(t, err.Error(), "ws or wss")
}

func TestPollInterval(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5*time.Minute, cfg.PollInterval())

	cfg.Sync.PollInterval = "0"
	assert.Equal(t, time.Duration(0), cfg.PollInterval())
}

func TestDefaultConfigValidatesWithCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnyList.Email = "user@example.com"
	cfg.AnyList.Password = "hunter2"
	cfg.Ntfy.Topic = "groceries"

	require.NoError(t, Validate(cfg))
}

func TestRenderEffective_RedactsSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnyList.Email = "user@example.com"
	cfg.AnyList.Password = "hunter2"
	cfg.Ntfy.Topic = "groceries"
	cfg.Ntfy.AccessToken = "tk_secret"

	var sb strings.Builder
	require.NoError(t, RenderEffective(cfg, &sb))

	out := sb.String()
	assert.Contains(t, out, `email         = "user@example.com"`)
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "tk_secret")
}

func TestClosestMatch(t *testing.T) {
	assert.Equal(t, "sync.poll_interval", closestMatch("sync.pol_interval", knownKeysList))
	assert.Empty(t, closestMatch("zzzzzzzzzzzz", knownKeysList))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("topic", "topic"))
	assert.Equal(t, 1, levenshtein("topik", "topic"))
	assert.Equal(t, 5, levenshtein("", "topic"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}
