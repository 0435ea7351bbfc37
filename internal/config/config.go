// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr           string        `mapstructure:"HTTP_ADDR"`
	DBURL              string        `mapstructure:"DB_URL"`
	GithubToken        string        `mapstructure:"GITHUB_TOKEN"`
	RefreshInterval    time.Duration `mapstructure:"REFRESH_INTERVAL"`
	RefreshConcurrency int           `mapstructure:"REFRESH_CONCURRENCY"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("REFRESH_INTERVAL", "1h")
	viper.SetDefault("REFRESH_CONCURRENCY", 5)

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields. GITHUB_TOKEN stays optional: the commits
	// endpoint works unauthenticated for public repositories, just with a
	// tighter rate limit.
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.RefreshInterval <= 0 {
		return nil, errors.New("REFRESH_INTERVAL must be a positive duration")
	}
	if cfg.RefreshConcurrency <= 0 {
		return nil, errors.New("REFRESH_CONCURRENCY must be a positive integer")
	}

	return &cfg, nil
}
