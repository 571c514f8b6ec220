package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvLogLevel, EnvWorkers, EnvDefaultWidth, EnvDefaultHeight,
		EnvGeminiAPIKey, EnvGeminiModel, EnvOCREnabled, EnvOCRLanguage,
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Debug() {
		t.Error("debug should be off by default")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
log_level: debug
workers: 4
default_image_width: 2400
default_image_height: 1800
gemini_model: gemini-2.5-pro
ocr_enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := &Config{
		LogLevel:           "debug",
		Workers:            4,
		DefaultImageWidth:  2400,
		DefaultImageHeight: 1800,
		GeminiModel:        "gemini-2.5-pro",
		OCREnabled:         true,
		OCRLanguage:        "eng",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Debug() {
		t.Error("Debug() should be true")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
workers: 4
default_image_width: 2400
gemini_api_key: from-file
ocr_enabled: true
`)
	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvDefaultWidth, "800")
	t.Setenv(EnvGeminiAPIKey, "from-env")
	t.Setenv(EnvOCREnabled, "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 2 || cfg.DefaultImageWidth != 800 {
		t.Errorf("numeric overrides: got workers=%d width=%d", cfg.Workers, cfg.DefaultImageWidth)
	}
	if cfg.DefaultImageHeight != 1000 {
		t.Errorf("height should keep its default, got %d", cfg.DefaultImageHeight)
	}
	if cfg.GeminiAPIKey != "from-env" {
		t.Errorf("GeminiAPIKey: got %q, want from-env", cfg.GeminiAPIKey)
	}
	if cfg.OCREnabled {
		t.Error("OCREnabled should be overridden to false")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{"bad yaml", "workers: [1, 2", nil},
		{"negative workers", "workers: -1", nil},
		{"zero width", "default_image_width: 0", nil},
		{"unknown log level", "log_level: verbose", nil},
		{"non-numeric env", "", map[string]string{EnvWorkers: "many"}},
		{"non-bool env", "", map[string]string{EnvOCREnabled: "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
