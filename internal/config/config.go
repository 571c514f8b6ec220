// Package config loads server settings from an optional YAML file and the
// environment. Environment variables win over the file; the file wins over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvConfigPath    = "BLUEPRINT_MCP_CONFIG"
	EnvLogLevel      = "BLUEPRINT_MCP_LOG_LEVEL"
	EnvWorkers       = "BLUEPRINT_MCP_WORKERS"
	EnvDefaultWidth  = "BLUEPRINT_MCP_DEFAULT_WIDTH"
	EnvDefaultHeight = "BLUEPRINT_MCP_DEFAULT_HEIGHT"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvGeminiModel   = "GEMINI_MODEL"
	EnvOCREnabled    = "BLUEPRINT_MCP_OCR_ENABLED"
	EnvOCRLanguage   = "BLUEPRINT_MCP_OCR_LANGUAGE"
)

// Config holds all server settings.
type Config struct {
	LogLevel string `yaml:"log_level"`

	// Workers bounds concurrent candidate refinement. 0 means one per CPU.
	Workers int `yaml:"workers"`

	// DefaultImageWidth and DefaultImageHeight are used when neither the
	// caller nor the decoder can supply pixel dimensions.
	DefaultImageWidth  int `yaml:"default_image_width"`
	DefaultImageHeight int `yaml:"default_image_height"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	OCREnabled  bool   `yaml:"ocr_enabled"`
	OCRLanguage string `yaml:"ocr_language"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:           "info",
		DefaultImageWidth:  1000,
		DefaultImageHeight: 1000,
		GeminiModel:        "gemini-2.5-flash",
		OCRLanguage:        "eng",
	}
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Load builds a Config from defaults, then the YAML file at path (if path is
// not empty), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.GeminiAPIKey = getEnv(EnvGeminiAPIKey, c.GeminiAPIKey)
	c.GeminiModel = getEnv(EnvGeminiModel, c.GeminiModel)
	c.OCRLanguage = getEnv(EnvOCRLanguage, c.OCRLanguage)

	var err error
	if c.Workers, err = getEnvInt(EnvWorkers, c.Workers); err != nil {
		return err
	}
	if c.DefaultImageWidth, err = getEnvInt(EnvDefaultWidth, c.DefaultImageWidth); err != nil {
		return err
	}
	if c.DefaultImageHeight, err = getEnvInt(EnvDefaultHeight, c.DefaultImageHeight); err != nil {
		return err
	}
	if v := os.Getenv(EnvOCREnabled); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvOCREnabled, v, err)
		}
		c.OCREnabled = b
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.DefaultImageWidth <= 0 || c.DefaultImageHeight <= 0 {
		errs = append(errs, fmt.Errorf("default image size must be positive, got %dx%d",
			c.DefaultImageWidth, c.DefaultImageHeight))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", k, v, err)
	}
	return n, nil
}
