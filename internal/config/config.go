// Package config assembles the service configuration from defaults, an
// optional YAML file and the environment.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"github.com/lehigh-university-libraries/ocrweb/internal/utils"
	"github.com/lehigh-university-libraries/ocrweb/pkg/engine"
	"github.com/lehigh-university-libraries/ocrweb/pkg/imageproc"
	"github.com/lehigh-university-libraries/ocrweb/pkg/ocr"
)

const DefaultMaxUploadBytes int64 = 16 << 20

// Config is the full service configuration.
type Config struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	TesseractPath   string        `yaml:"tesseract_path"`
	SearchPaths     []string      `yaml:"search_paths"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	MaxImagePixels  int64         `yaml:"max_image_pixels"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Recognition     ocr.Config    `yaml:"recognition"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            "8080",
		SearchPaths:     engine.DefaultSearchPaths(),
		ProbeTimeout:    engine.DefaultProbeTimeout,
		MaxUploadBytes:  DefaultMaxUploadBytes,
		MaxImagePixels:  imageproc.DefaultMaxPixels,
		ShutdownTimeout: 15 * time.Second,
		Recognition:     ocr.DefaultConfig(),
	}
}

// Load returns defaults overlaid with the YAML file at path (when non-empty)
// and then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields whose environment variable is set.
func (c *Config) ApplyEnv() {
	c.Host = utils.GetEnv("HOST", c.Host)
	c.Port = utils.GetEnv("PORT", c.Port)
	c.TesseractPath = utils.GetEnv("TESSERACT_CMD", c.TesseractPath)
	if paths := os.Getenv("TESSERACT_SEARCH_PATHS"); paths != "" {
		c.SearchPaths = utils.SplitList(paths)
	}
	c.ProbeTimeout = utils.GetDurationEnv("PROBE_TIMEOUT", c.ProbeTimeout)
	c.MaxUploadBytes = utils.GetInt64Env("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.MaxImagePixels = utils.GetInt64Env("MAX_IMAGE_PIXELS", c.MaxImagePixels)
	c.ShutdownTimeout = utils.GetDurationEnv("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	r := &c.Recognition
	r.Engine = utils.GetEnv("OCR_ENGINE", r.Engine)
	r.Language = utils.GetEnv("OCR_LANGUAGE", r.Language)
	r.OEM = utils.GetIntEnv("OCR_OEM", r.OEM)
	r.PSM = utils.GetIntEnv("OCR_PSM", r.PSM)
	r.FallbackPSM = utils.GetIntEnv("OCR_FALLBACK_PSM", r.FallbackPSM)
	r.Timeout = utils.GetDurationEnv("OCR_TIMEOUT", r.Timeout)
	if wl, ok := os.LookupEnv("OCR_WHITELIST"); ok {
		r.Whitelist = wl
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("max image pixels must be positive, got %d", c.MaxImagePixels)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.ProbeTimeout)
	}
	if err := c.Recognition.Validate(); err != nil {
		return fmt.Errorf("invalid recognition config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
