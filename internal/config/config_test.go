package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileWithEnvOverrides(t *testing.T) {
	t.Setenv("GSTDESK_LOG_LEVEL", "debug")
	t.Setenv("GSTDESK_MAX_ATTEMPTS", "5")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
apiBaseURL: "http://localhost:8000"
logLevel: "info"
statePath: "/tmp/gstdesk/state.db"
cachePath: "/tmp/gstdesk/cache.db"
requestTimeout: "20s"
maxAttempts: 2
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Fatalf("apiBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("logLevel = %q, want env override debug", cfg.LogLevel)
	}
	if cfg.MaxAttempts != 5 {
		t.Fatalf("maxAttempts = %d, want 5", cfg.MaxAttempts)
	}
	if d, err := ParseRequestTimeout(cfg.RequestTimeout); err != nil || d.Seconds() != 20 {
		t.Fatalf("requestTimeout = %v err = %v", d, err)
	}
}

func TestLoadMissingFileUsesEnvAndDefaults(t *testing.T) {
	t.Setenv("GSTDESK_API_URL", "http://localhost:9999")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:9999" {
		t.Fatalf("apiBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.StatePath == "" || cfg.CachePath == "" {
		t.Fatalf("expected default state/cache paths, got %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("logLevel default = %q", cfg.LogLevel)
	}
}

func TestLoadRequiresAPIBaseURL(t *testing.T) {
	t.Setenv("GSTDESK_API_URL", "")
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected missing apiBaseURL to fail validation")
	}
}

func TestParseRequestTimeoutRejectsGarbage(t *testing.T) {
	if _, err := ParseRequestTimeout("soon"); err == nil {
		t.Fatalf("expected invalid duration to fail")
	}
}
