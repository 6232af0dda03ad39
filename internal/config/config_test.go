package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.SleepMax != 120*time.Second {
		t.Errorf("expected default sleep_max 120s, got %v", cfg.SleepMax)
	}
	if cfg.DownloadTimeout != 60*time.Second {
		t.Errorf("expected default download_timeout 60s, got %v", cfg.DownloadTimeout)
	}
	if cfg.Retry.Attempts != 5 {
		t.Errorf("expected default retry attempts 5, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != time.Second {
		t.Errorf("expected default retry backoff 1s, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 30*time.Second {
		t.Errorf("expected default retry max backoff 30s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
url: https://api.example/retrieve
catalogue_url: https://api.example/catalogue
key: 00112233-4455
sleep_max: 90s
download_timeout: 5m
progress: true
retry:
  attempts: 10
  backoff: 2s
  max_backoff: 60s
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.URL != "https://api.example/retrieve" {
		t.Errorf("unexpected url: %s", cfg.URL)
	}
	if cfg.CatalogueURL != "https://api.example/catalogue" {
		t.Errorf("unexpected catalogue_url: %s", cfg.CatalogueURL)
	}
	if cfg.Key != "00112233-4455" {
		t.Errorf("unexpected key: %s", cfg.Key)
	}
	if cfg.SleepMax != 90*time.Second {
		t.Errorf("expected sleep_max 90s, got %v", cfg.SleepMax)
	}
	if cfg.DownloadTimeout != 5*time.Minute {
		t.Errorf("expected download_timeout 5m, got %v", cfg.DownloadTimeout)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Retry.Attempts != 10 {
		t.Errorf("expected retry attempts 10, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 2*time.Second {
		t.Errorf("expected retry backoff 2s, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 60*time.Second {
		t.Errorf("expected retry max backoff 60s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromYAMLInvalidDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("sleep_max: soon\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CADS_URL", "https://api.example/retrieve")
	t.Setenv("CADS_KEY", "env-key")
	t.Setenv("CADS_SLEEP_MAX", "45s")
	t.Setenv("CADS_PROGRESS", "1")
	t.Setenv("CADS_RETRY_ATTEMPTS", "3")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.URL != "https://api.example/retrieve" {
		t.Errorf("unexpected url: %s", cfg.URL)
	}
	if cfg.Key != "env-key" {
		t.Errorf("unexpected key: %s", cfg.Key)
	}
	if cfg.SleepMax != 45*time.Second {
		t.Errorf("expected sleep_max 45s, got %v", cfg.SleepMax)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("expected retry attempts 3, got %d", cfg.Retry.Attempts)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing URL")
	}

	cfg.URL = "https://api.example/retrieve"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cfg.SleepMax = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero sleep_max")
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.URL = "https://api.example/retrieve"
	base.Key = "base-key"

	merged := base.Merge(Config{
		Key:      "override-key",
		SleepMax: 10 * time.Second,
	})

	if merged.URL != "https://api.example/retrieve" {
		t.Errorf("expected base URL preserved, got %s", merged.URL)
	}
	if merged.Key != "override-key" {
		t.Errorf("expected key overridden, got %s", merged.Key)
	}
	if merged.SleepMax != 10*time.Second {
		t.Errorf("expected sleep_max 10s, got %v", merged.SleepMax)
	}
	if merged.DownloadTimeout != 60*time.Second {
		t.Errorf("expected default download_timeout preserved, got %v", merged.DownloadTimeout)
	}
}
