package config

import (
	"fmt"
	"strings"
	"time"

	"subcycle/internal/i18n"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	DatabasePath    string        `mapstructure:"DATABASE_PATH"`
	Port            string        `mapstructure:"PORT"`
	Environment     string        `mapstructure:"GIN_MODE"`
	RenewalSchedule string        `mapstructure:"RENEWAL_SCHEDULE"`
	RenewalWorkers  int           `mapstructure:"RENEWAL_WORKERS"`
	RenewalTimeout  time.Duration `mapstructure:"RENEWAL_TIMEOUT"`
	NotifyURLs      string        `mapstructure:"NOTIFY_URLS"`
	NotifyLanguage  string        `mapstructure:"NOTIFY_LANGUAGE"`
	APIRateLimit    float64       `mapstructure:"API_RATE_LIMIT"`
	APIRateBurst    int           `mapstructure:"API_RATE_BURST"`
}

var keys = []string{
	"DATABASE_PATH", "PORT", "GIN_MODE",
	"RENEWAL_SCHEDULE", "RENEWAL_WORKERS", "RENEWAL_TIMEOUT",
	"NOTIFY_URLS", "NOTIFY_LANGUAGE",
	"API_RATE_LIMIT", "API_RATE_BURST",
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	viper.SetDefault("DATABASE_PATH", "./data/subcycle.db")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("RENEWAL_SCHEDULE", "0 2 * * *") // daily at 02:00
	viper.SetDefault("RENEWAL_WORKERS", 4)
	viper.SetDefault("RENEWAL_TIMEOUT", "5m")
	viper.SetDefault("NOTIFY_URLS", "")
	viper.SetDefault("NOTIFY_LANGUAGE", "en")
	viper.SetDefault("API_RATE_LIMIT", 10)
	viper.SetDefault("API_RATE_BURST", 20)
	viper.AutomaticEnv()

	for _, key := range keys {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.RenewalWorkers < 1 {
		return nil, fmt.Errorf("RENEWAL_WORKERS must be at least 1, got %d", cfg.RenewalWorkers)
	}
	if _, err := cron.ParseStandard(cfg.RenewalSchedule); err != nil {
		return nil, fmt.Errorf("invalid RENEWAL_SCHEDULE %q: %w", cfg.RenewalSchedule, err)
	}
	lang, err := i18n.NormalizeLanguage(cfg.NotifyLanguage)
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_LANGUAGE: %w", err)
	}
	cfg.NotifyLanguage = lang

	return &cfg, nil
}

// NotificationURLs splits NOTIFY_URLS on commas, dropping blanks.
func (c *Config) NotificationURLs() []string {
	var urls []string
	for _, u := range strings.Split(c.NotifyURLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (c *Config) IsProduction() bool {
	return c.Environment == "release" || c.Environment == "production"
}
