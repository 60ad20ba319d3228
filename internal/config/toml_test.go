package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Run.InputDir != nil || cfg.Run.Confidence != nil {
		t.Fatalf("expected empty config, got %+v", cfg.Run)
	}
}

func TestLoadConfigRunSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `[run]
input = "data/in"
confidence = 0.9
single-sample = "error"
dpi = 300.0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Run.InputDir == nil || *cfg.Run.InputDir != "data/in" {
		t.Fatalf("unexpected input dir: %v", cfg.Run.InputDir)
	}
	if cfg.Run.Confidence == nil || *cfg.Run.Confidence != 0.9 {
		t.Fatalf("unexpected confidence: %v", cfg.Run.Confidence)
	}
	if cfg.Run.SingleSample == nil || *cfg.Run.SingleSample != "error" {
		t.Fatalf("unexpected single-sample: %v", cfg.Run.SingleSample)
	}
	if cfg.Run.OutputDir != nil {
		t.Fatalf("expected output dir unset")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[run]\ninptu = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultConfigPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/xdg", "specklerr", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
}
