package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data/subcycle.db", cfg.DatabasePath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "0 2 * * *", cfg.RenewalSchedule)
	assert.Equal(t, 4, cfg.RenewalWorkers)
	assert.Equal(t, 5*time.Minute, cfg.RenewalTimeout)
	assert.Equal(t, "en", cfg.NotifyLanguage)
	assert.Empty(t, cfg.NotificationURLs())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("RENEWAL_SCHEDULE", "*/15 * * * *")
	t.Setenv("RENEWAL_WORKERS", "8")
	t.Setenv("RENEWAL_TIMEOUT", "90s")
	t.Setenv("NOTIFY_URLS", "logger://, ,generic://example.com/hook")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, "*/15 * * * *", cfg.RenewalSchedule)
	assert.Equal(t, 8, cfg.RenewalWorkers)
	assert.Equal(t, 90*time.Second, cfg.RenewalTimeout)
	assert.Equal(t, []string{"logger://", "generic://example.com/hook"}, cfg.NotificationURLs())
	assert.True(t, cfg.IsProduction())
}

func TestLoad_RejectsInvalidSchedule(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("RENEWAL_SCHEDULE", "every day")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RENEWAL_SCHEDULE")
}

func TestLoad_RejectsZeroWorkers(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("RENEWAL_WORKERS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RENEWAL_WORKERS")
}

func TestLoad_NotifyLanguage(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("NOTIFY_LANGUAGE", "de-AT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.NotifyLanguage)
}

func TestLoad_RejectsUnsupportedLanguage(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("NOTIFY_LANGUAGE", "fr")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFY_LANGUAGE")
}
