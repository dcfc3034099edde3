package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "APP_ENV", "ENVIRONMENT", "GO_ENV",
		"SAYIM_API_URL", "SAYIM_CATEGORY", "SAYIM_CATEGORY_SELECTABLE",
		"STATS_REFRESH_INTERVAL", "BRANDS_REFRESH_INTERVAL", "NOT_FOUND_AFTER_SAVE",
		"ALLOWED_ORIGINS", "UPSTREAM_TIMEOUT", "SESSION_IDLE_TIMEOUT", "SESSION_SWEEP_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4300", cfg.Port)
	assert.Equal(t, defaultEnvironment, cfg.Environment)
	assert.Equal(t, models.CategoryFrame, cfg.Category)
	assert.False(t, cfg.CategorySelectable)
	assert.Equal(t, 30*time.Second, cfg.StatsRefreshInterval)
	assert.Equal(t, 10*time.Minute, cfg.BrandsRefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "reset", cfg.NotFoundAfterSave)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
	assert.Equal(t, 5*time.Minute, cfg.SessionSweepInterval)
	assert.False(t, cfg.JournalEnabled())
	assert.Equal(t, []models.Category{models.CategoryFrame}, cfg.RefreshCategories())
}

func TestLoadParsesStationSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("SAYIM_API_URL", "https://sayim.example.com")
	t.Setenv("SAYIM_CATEGORY", "gn")
	t.Setenv("SAYIM_CATEGORY_SELECTABLE", "yes")
	t.Setenv("STATS_REFRESH_INTERVAL", "1m")
	t.Setenv("NOT_FOUND_AFTER_SAVE", "KEEP")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://sayim.konyali.local ,")
	t.Setenv("DATABASE_URL", "postgres://localhost/sayim")
	t.Setenv("SESSION_IDLE_TIMEOUT", "45m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, cfg.SessionIdleTimeout)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, models.CategorySunglasses, cfg.Category)
	assert.True(t, cfg.CategorySelectable)
	assert.Equal(t, time.Minute, cfg.StatsRefreshInterval)
	assert.Equal(t, "keep", cfg.NotFoundAfterSave)
	assert.Equal(t, []string{"http://localhost:5173", "https://sayim.konyali.local"}, cfg.AllowedOrigins)
	assert.True(t, cfg.JournalEnabled())
	assert.Equal(t, models.Categories(), cfg.RefreshCategories())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"category":   {"SAYIM_CATEGORY": "XX"},
		"selectable": {"SAYIM_CATEGORY_SELECTABLE": "maybe"},
		"duration":   {"STATS_REFRESH_INTERVAL": "often"},
		"negative":   {"UPSTREAM_TIMEOUT": "-5s"},
		"policy":     {"NOT_FOUND_AFTER_SAVE": "forget"},
		"production": {"APP_ENV": "production"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestProductionRequiresUpstreamURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SAYIM_API_URL", "https://sayim.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}
