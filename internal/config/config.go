// Package config handles configuration loading and management for centcom.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Backend names for the work queue store.
const (
	BackendSQLite   = "sqlite"
	BackendAirtable = "airtable"
)

// Config holds all configuration for centcom.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Airtable  AirtableConfig  `mapstructure:"airtable"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Poller    PollerConfig    `mapstructure:"poller"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// StoreConfig selects and configures the work queue backend.
type StoreConfig struct {
	// Backend is either "sqlite" or "airtable".
	Backend string `mapstructure:"backend"`
	// Path is the SQLite database file. Empty means the XDG default.
	Path string `mapstructure:"path"`
}

// AirtableConfig holds Airtable API settings for the airtable backend.
type AirtableConfig struct {
	Token  string `mapstructure:"token"`
	BaseID string `mapstructure:"base_id"`
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings for the executor.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// UseAWSBedrock routes API calls through AWS Bedrock instead of the
	// Anthropic API directly.
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// PollerConfig holds poll loop timing settings.
type PollerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	ItemDelay    time.Duration `mapstructure:"item_delay"`
}

// TimeoutsConfig holds per-operation timeout settings.
type TimeoutsConfig struct {
	// Executor bounds a single agent execution. Zero disables the bound.
	Executor time.Duration `mapstructure:"executor"`
}

// LoggingConfig holds debug log settings.
type LoggingConfig struct {
	// DebugFile is the debug log path. Empty disables debug logging.
	DebugFile string `mapstructure:"debug_file"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (AIRTABLE_TOKEN, AIRTABLE_BASE_ID, ANTHROPIC_API_KEY)
// 2. Project config (.centcom.yaml in current directory or parent)
// 3. User config (~/.config/centcom/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("")

	v.BindEnv("airtable.token", "AIRTABLE_TOKEN")
	v.BindEnv("airtable.base_id", "AIRTABLE_BASE_ID")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references in secrets.
	cfg.Airtable.Token = expandEnv(cfg.Airtable.Token)
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Airtable.Token = expandEnv(cfg.Airtable.Token)
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside the run loop.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendAirtable:
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store.Backend, BackendSQLite, BackendAirtable)
	}
	if c.Store.Backend == BackendAirtable {
		if c.Airtable.Token == "" {
			return fmt.Errorf("airtable backend requires airtable.token (or AIRTABLE_TOKEN)")
		}
		if c.Airtable.BaseID == "" {
			return fmt.Errorf("airtable backend requires airtable.base_id (or AIRTABLE_BASE_ID)")
		}
	}
	return nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("store.backend", cfg.Store.Backend)
	v.Set("store.path", cfg.Store.Path)
	v.Set("airtable.token", cfg.Airtable.Token)
	v.Set("airtable.base_id", cfg.Airtable.BaseID)
	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("poller.poll_interval", cfg.Poller.PollInterval.String())
	v.Set("poller.item_delay", cfg.Poller.ItemDelay.String())
	v.Set("timeouts.executor", cfg.Timeouts.Executor.String())
	v.Set("logging.debug_file", cfg.Logging.DebugFile)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.path", "")

	v.SetDefault("airtable.token", "")
	v.SetDefault("airtable.base_id", "")
	v.SetDefault("airtable.base_url", "")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("poller.poll_interval", "30s")
	v.SetDefault("poller.item_delay", "1s")

	v.SetDefault("timeouts.executor", "10m")

	v.SetDefault("logging.debug_file", "")
}

// getUserConfigDir returns the XDG config directory for centcom.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "centcom")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "centcom")
	}
	return filepath.Join(home, ".config", "centcom")
}

// findProjectConfig searches for .centcom.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".centcom.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendSQLite,
		},
		Poller: PollerConfig{
			PollInterval: 30 * time.Second,
			ItemDelay:    time.Second,
		},
		Timeouts: TimeoutsConfig{
			Executor: 10 * time.Minute,
		},
	}
}
