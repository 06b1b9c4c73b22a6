package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	APIBaseURL     string `yaml:"apiBaseURL"`
	LogLevel       string `yaml:"logLevel"`
	StatePath      string `yaml:"statePath"`
	CachePath      string `yaml:"cachePath"`
	RequestTimeout string `yaml:"requestTimeout"`
	MaxAttempts    int    `yaml:"maxAttempts"`
	EmulatorPort   string `yaml:"emulatorPort"`
}

// Load reads config from path (defaults to config.yaml). A missing file is
// not an error; defaults and environment variables still apply.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to env + defaults
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv("GSTDESK_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("GSTDESK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GSTDESK_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("GSTDESK_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("GSTDESK_REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = v
	}
	if v := os.Getenv("GSTDESK_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("GSTDESK_EMULATOR_PORT"); v != "" {
		cfg.EmulatorPort = v
	}

	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.StatePath == "" {
		cfg.StatePath = defaultDataFile("state.db")
	}
	if cfg.CachePath == "" {
		cfg.CachePath = defaultDataFile("cache.db")
	}
	if cfg.EmulatorPort == "" {
		cfg.EmulatorPort = "8787"
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.APIBaseURL == "" {
		return errors.New("config: apiBaseURL is required (set in config.yaml or GSTDESK_API_URL)")
	}
	if cfg.MaxAttempts < 0 {
		return errors.New("config: maxAttempts must be >= 0")
	}
	if _, err := ParseRequestTimeout(cfg.RequestTimeout); err != nil {
		return err
	}
	return nil
}

// ParseRequestTimeout parses the optional request timeout duration string.
func ParseRequestTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid requestTimeout duration: %w", err)
	}
	return d, nil
}

func defaultDataFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gstdesk", name)
	}
	return filepath.Join(home, ".gstdesk", name)
}
