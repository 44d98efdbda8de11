package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"LAWCHAT_CONFIG",
	"LAWCHAT_API_URL",
	"LAWCHAT_API_TOKEN",
	"LAWCHAT_API_TIMEOUT",
	"LAWCHAT_BACKEND",
	"LAWCHAT_DATA_DIR",
	"LAWCHAT_LOG_LEVEL",
	"LAWCHAT_USER",
	"LAWCHAT_ROLE",
}

// isolateConfigEnv clears lawchat variables and points the data dir at an empty temp dir
func isolateConfigEnv(t *testing.T) string {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.APITimeout())
	assert.Equal(t, DefaultWelcomeMessage, cfg.Chat.WelcomeMessage)
	assert.Equal(t, 10, cfg.Chat.RecentLimit)
	assert.True(t, cfg.BoundIdentity().IsGuest())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_NoFile(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ExplicitMissingFile(t *testing.T) {
	isolateConfigEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_YAML(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), "lawchat.yaml")
	content := `
storage:
  backend: file
  path: /tmp/lawchat-data
api:
  base_url: https://law.example.ma
  timeout_seconds: 15
chat:
  recent_limit: 5
identity:
  user: amina
  role: admin
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/lawchat-data", cfg.Storage.Path)
	assert.Equal(t, "https://law.example.ma", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout())
	assert.Equal(t, 5, cfg.Chat.RecentLimit)
	// unset keys keep their defaults
	assert.Equal(t, DefaultWelcomeMessage, cfg.Chat.WelcomeMessage)
	assert.Equal(t, Identity{ID: "amina", Role: AccountAdmin}, cfg.BoundIdentity())
}

func TestLoadConfig_TOML(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), "lawchat.toml")
	content := `
[storage]
backend = "memory"

[api]
base_url = "http://10.0.0.5:8000"
token = "secret"

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_DefaultLocation(t *testing.T) {
	isolateConfigEnv(t)
	dataDir, err := DetectDataDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(PathsForDir(dataDir).ConfigPath, []byte("chat:\n  recent_limit: 3\n"), 0644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Chat.RecentLimit)
}

func TestLoadConfig_Malformed(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [oops"), 0644))

	_, err := LoadConfig(path)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), "lawchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://from-file\n"), 0644))

	t.Setenv("LAWCHAT_API_URL", "http://from-env")
	t.Setenv("LAWCHAT_API_TIMEOUT", "5")
	t.Setenv("LAWCHAT_BACKEND", "memory")
	t.Setenv("LAWCHAT_USER", "youssef")
	t.Setenv("LAWCHAT_ROLE", "ADMIN")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout())
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, Identity{ID: "youssef", Role: AccountAdmin}, cfg.BoundIdentity())
}

func TestLoadConfig_InvalidTimeoutEnvIgnored(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("LAWCHAT_API_TIMEOUT", "soon")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.APITimeout())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty backend", func(c *Config) { c.Storage.Backend = "" }, false},
		{"file backend", func(c *Config) { c.Storage.Backend = "file" }, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"negative timeout", func(c *Config) { c.API.TimeoutSeconds = -1 }, true},
		{"negative limit", func(c *Config) { c.Chat.RecentLimit = -2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_BoundIdentity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Identity.User = "  "
	cfg.Identity.Role = "superuser"

	id := cfg.BoundIdentity()
	assert.True(t, id.IsGuest())
	assert.False(t, id.IsAdmin())
	assert.Equal(t, GuestToken, id.StorageKey())
}
