package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
)

const (
	defaultPort                  = "4300"
	defaultEnvironment           = "development"
	defaultStatsRefreshInterval  = 30 * time.Second
	defaultBrandsRefreshInterval = 10 * time.Minute
	defaultUpstreamTimeout       = 30 * time.Second
	defaultSessionIdleTimeout    = 2 * time.Hour
	defaultSessionSweepInterval  = 5 * time.Minute
	defaultAllowedOrigins        = "*"
	defaultNotFoundAfterSave     = "reset"
)

type Config struct {
	Port        string
	DatabaseURL string
	Environment string

	SayimAPIURL        string
	Category           models.Category
	CategorySelectable bool
	UpstreamTimeout    time.Duration

	StatsRefreshInterval  time.Duration
	BrandsRefreshInterval time.Duration
	NotFoundAfterSave     string
	AllowedOrigins        []string

	// Sessions untouched for SessionIdleTimeout are dropped on the next sweep.
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration
}

// Load reads the station configuration from the environment. A .env file in
// the working directory fills in variables that are not already set.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), defaultPort),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Environment:       resolveEnvironment(),
		SayimAPIURL:       strings.TrimSpace(os.Getenv("SAYIM_API_URL")),
		NotFoundAfterSave: strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("NOT_FOUND_AFTER_SAVE")), defaultNotFoundAfterSave)),
		AllowedOrigins:    parseList(firstNonEmpty(os.Getenv("ALLOWED_ORIGINS"), defaultAllowedOrigins)),
	}

	category, err := models.ParseCategory(firstNonEmpty(strings.TrimSpace(os.Getenv("SAYIM_CATEGORY")), string(models.DefaultCategory)))
	if err != nil {
		return Config{}, fmt.Errorf("SAYIM_CATEGORY: %w", err)
	}
	cfg.Category = category

	selectable, err := parseBool("SAYIM_CATEGORY_SELECTABLE", false)
	if err != nil {
		return Config{}, err
	}
	cfg.CategorySelectable = selectable

	if cfg.UpstreamTimeout, err = parseDuration("UPSTREAM_TIMEOUT", defaultUpstreamTimeout); err != nil {
		return Config{}, err
	}
	if cfg.StatsRefreshInterval, err = parseDuration("STATS_REFRESH_INTERVAL", defaultStatsRefreshInterval); err != nil {
		return Config{}, err
	}
	if cfg.BrandsRefreshInterval, err = parseDuration("BRANDS_REFRESH_INTERVAL", defaultBrandsRefreshInterval); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdleTimeout, err = parseDuration("SESSION_IDLE_TIMEOUT", defaultSessionIdleTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SessionSweepInterval, err = parseDuration("SESSION_SWEEP_INTERVAL", defaultSessionSweepInterval); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.NotFoundAfterSave {
	case "reset", "keep":
	default:
		return fmt.Errorf("NOT_FOUND_AFTER_SAVE must be reset or keep")
	}
	if !c.Category.Valid() {
		return fmt.Errorf("SAYIM_CATEGORY must be one of OF, GN, LN")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS must not be empty")
	}
	if !isNonDevelopment(c.Environment) {
		return nil
	}
	if c.SayimAPIURL == "" {
		return fmt.Errorf("SAYIM_API_URL is required in non-development environments")
	}
	return nil
}

// JournalEnabled reports whether counts are mirrored to Postgres.
func (c Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

// RefreshCategories lists the workspaces the background refresher keeps warm.
func (c Config) RefreshCategories() []models.Category {
	if c.CategorySelectable {
		return models.Categories()
	}
	return []models.Category{c.Category}
}

func resolveEnvironment() string {
	return strings.ToLower(firstNonEmpty(
		strings.TrimSpace(os.Getenv("APP_ENV")),
		strings.TrimSpace(os.Getenv("ENVIRONMENT")),
		strings.TrimSpace(os.Getenv("GO_ENV")),
		defaultEnvironment,
	))
}

func isNonDevelopment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "dev", "development", "local", "test":
		return false
	default:
		return true
	}
}

func parseBool(name string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return defaultValue, nil
	}

	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be a boolean value", name)
	}
}

func parseDuration(name string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", name, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero", name)
	}

	return parsed, nil
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
