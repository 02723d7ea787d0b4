package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration, sourced from environment
// variables (optionally via a .env file loaded by the caller).
type Config struct {
	Host string `mapstructure:"HOST"`
	Port int    `mapstructure:"PORT"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// ScriptDir holds extra script yaml files merged over the builtin set.
	// Empty means builtin only.
	ScriptDir string `mapstructure:"SCRIPT_DIR"`

	// DatabaseURL enables the game-record archive. Empty disables it.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RateLimit      float64 `mapstructure:"RATE_LIMIT"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SCRIPT_DIR", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("RATE_LIMIT", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)

	// Optional config file; environment variables win over it.
	v.SetConfigFile("server.yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "json", "console":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (json or console)", cfg.LogFormat)
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
