package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the question-answering backend used when nothing is configured
const DefaultAPIURL = "http://localhost:8000"

// Config is lawchat's configuration
type Config struct {
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
	API      APIConfig      `yaml:"api" toml:"api"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Chat     ChatConfig     `yaml:"chat" toml:"chat"`
	Identity IdentityConfig `yaml:"identity" toml:"identity"`
}

// StorageConfig selects the persistence medium
type StorageConfig struct {
	Backend string `yaml:"backend" toml:"backend"` // sqlite, file or memory
	Path    string `yaml:"path" toml:"path"`       // data dir or .db file
}

// APIConfig points at the remote question-answering and document service
type APIConfig struct {
	BaseURL        string `yaml:"base_url" toml:"base_url"`
	Token          string `yaml:"token" toml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// LoggingConfig controls log verbosity
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// ChatConfig tunes the session store
type ChatConfig struct {
	WelcomeMessage string `yaml:"welcome_message" toml:"welcome_message"`
	RecentLimit    int    `yaml:"recent_limit" toml:"recent_limit"`
}

// IdentityConfig is the identity bound when no flag overrides it
type IdentityConfig struct {
	User string `yaml:"user" toml:"user"`
	Role string `yaml:"role" toml:"role"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{Backend: BackendSQLite},
		API: APIConfig{
			BaseURL:        DefaultAPIURL,
			TimeoutSeconds: 60,
		},
		Logging: LoggingConfig{Level: "info"},
		Chat: ChatConfig{
			WelcomeMessage: DefaultWelcomeMessage,
			RecentLimit:    DefaultRecentLimit,
		},
		Identity: IdentityConfig{Role: string(AccountUser)},
	}
}

// LoadConfig builds the configuration from defaults, the config file at path (YAML or
// TOML by extension), a .env file in the working directory and LAWCHAT_* environment
// variables, in that order. A missing file at an explicit path is an error; a missing
// default file is not.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		LogDebug("Ignoring .env: %v", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv("LAWCHAT_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		if dataDir, err := DetectDataDir(); err == nil {
			path = PathsForDir(dataDir).ConfigPath
		}
	}

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		} else {
			LogDebug("Loaded config from %s", path)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return &ParseError{Source: "config", Key: path, Err: err}
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return &ParseError{Source: "config", Key: path, Err: err}
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LAWCHAT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("LAWCHAT_API_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("LAWCHAT_API_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSeconds = secs
		} else {
			LogWarn("Ignoring LAWCHAT_API_TIMEOUT=%q: %v", v, err)
		}
	}
	if v := os.Getenv("LAWCHAT_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("LAWCHAT_DATA_DIR"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("LAWCHAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LAWCHAT_USER"); v != "" {
		c.Identity.User = v
	}
	if v := os.Getenv("LAWCHAT_ROLE"); v != "" {
		c.Identity.Role = v
	}
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "", BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unsupported backend: %s (supported: sqlite, file, memory)", c.Storage.Backend)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api timeout must not be negative, got %d", c.API.TimeoutSeconds)
	}
	if c.Chat.RecentLimit < 0 {
		return fmt.Errorf("recent limit must not be negative, got %d", c.Chat.RecentLimit)
	}
	return nil
}

// APITimeout returns the request timeout for the remote API
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// BoundIdentity returns the identity described by the configuration
func (c *Config) BoundIdentity() Identity {
	return Identity{
		ID:   strings.TrimSpace(c.Identity.User),
		Role: ParseAccountRole(c.Identity.Role),
	}
}

// StoreOptions returns the session store options described by the configuration
func (c *Config) StoreOptions() StoreOptions {
	return StoreOptions{WelcomeMessage: c.Chat.WelcomeMessage}
}
