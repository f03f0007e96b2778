package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Report.ItemsPerSlide != 2 {
		t.Errorf("expected 2 items per slide by default, got %d", cfg.Report.ItemsPerSlide)
	}
	if len(cfg.LLM.ProviderOrder) == 0 || cfg.LLM.ProviderOrder[0] != "gemini" {
		t.Errorf("expected gemini first in provider order, got %v", cfg.LLM.ProviderOrder)
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nuntium.toml")
	content := `
environment = "production"

[server]
port = 9000

[report]
items_per_slide = 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("expected production environment, got %s", cfg.Environment)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Report.ItemsPerSlide != 3 {
		t.Errorf("expected 3 items per slide, got %d", cfg.Report.ItemsPerSlide)
	}
	// Untouched sections keep defaults.
	if cfg.Feeds.MaxItems != 6 {
		t.Errorf("expected default max items 6, got %d", cfg.Feeds.MaxItems)
	}
}

func TestLoadFromFilesSkipsMissing(t *testing.T) {
	cfg, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should be skipped, got %v", err)
	}
	if cfg.Server.Port != 8085 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestEnvKeyPrependedOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Gemini.APIKeys = []string{"file-key"}
	t.Setenv("GEMINI_API_KEY", "env-key")

	applyEnvOverrides(cfg)
	if len(cfg.LLM.Gemini.APIKeys) != 2 || cfg.LLM.Gemini.APIKeys[0] != "env-key" {
		t.Fatalf("expected env key first, got %v", cfg.LLM.Gemini.APIKeys)
	}

	// Applying twice must not duplicate the key.
	applyEnvOverrides(cfg)
	if len(cfg.LLM.Gemini.APIKeys) != 2 {
		t.Errorf("env key duplicated: %v", cfg.LLM.Gemini.APIKeys)
	}
}

func TestValidateRejectsBadDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Report.CacheTTL = "five minutes"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for malformed duration")
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback time.Duration
		want     time.Duration
	}{
		{"valid", "30s", time.Minute, 30 * time.Second},
		{"empty", "", time.Minute, time.Minute},
		{"malformed", "soon", time.Minute, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration(tt.value, tt.fallback); got != tt.want {
				t.Errorf("Duration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
