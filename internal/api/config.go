package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds client-wide settings. Precedence: defaults < config
// file (~/.semestra/config.yaml) < SEMESTRA_* environment variables.
type Config struct {
	Endpoint   string `mapstructure:"endpoint"`
	TimeoutMs  int    `mapstructure:"timeout_ms"`
	MaxRetries int    `mapstructure:"max_retries"`

	LogLevel string `mapstructure:"log_level"`

	// DataDir holds the token file, the local state database and the
	// TUI log file.
	DataDir string `mapstructure:"data_dir"`
}

// DefaultConfig returns a Config with working defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "http://localhost:8080",
		TimeoutMs:  30000,
		MaxRetries: 1,
		LogLevel:   "info",
	}
}

// LoadConfig reads configuration via viper. A missing config file is
// fine; a present-but-broken one is an error.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	cfg.DataDir = filepath.Join(home, ".semestra")

	v := viper.New()
	v.SetDefault("endpoint", cfg.Endpoint)
	v.SetDefault("timeout_ms", cfg.TimeoutMs)
	v.SetDefault("max_retries", cfg.MaxRetries)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("data_dir", cfg.DataDir)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(cfg.DataDir)

	v.SetEnvPrefix("SEMESTRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Read keys individually: viper's Unmarshal does not consult
	// AutomaticEnv values, Get does.
	cfg.Endpoint = v.GetString("endpoint")
	cfg.TimeoutMs = v.GetInt("timeout_ms")
	cfg.MaxRetries = v.GetInt("max_retries")
	cfg.LogLevel = v.GetString("log_level")
	cfg.DataDir = v.GetString("data_dir")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded values for obvious misconfiguration.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", c.TimeoutMs)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}
