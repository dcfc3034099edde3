package sayimcli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
)

const (
	defaultAPIBaseURL = "http://localhost:5000"
)

// Config is the operator's local CLI configuration. Operator and Category
// survive restarts.
type Config struct {
	APIBaseURL string          `json:"apiBaseUrl"`
	Category   models.Category `json:"category,omitempty"`
	Operator   string          `json:"operator,omitempty"`
}

func ConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sayim", "config.json"), nil
}

func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{APIBaseURL: defaultAPIBaseURL, Category: models.DefaultCategory}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if !cfg.Category.Valid() {
		cfg.Category = models.DefaultCategory
	}
	return cfg, nil
}

func SaveConfig(cfg Config) error {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}
