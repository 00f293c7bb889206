package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lehigh-university-libraries/ocrweb/internal/config"
	"github.com/lehigh-university-libraries/ocrweb/pkg/engine"
	"github.com/lehigh-university-libraries/ocrweb/pkg/ocr"
)

func addEngineFlags(flags *pflag.FlagSet) {
	flags.String("config", os.Getenv("OCRWEB_CONFIG"), "Path to a YAML config file")
	flags.String("tesseract-path", "", "Explicit path to the tesseract executable")
	flags.StringSlice("search-paths", nil, "Locations checked for tesseract after PATH")
	flags.Duration("probe-timeout", 0, "Timeout for the tesseract --version probe")
}

func addServeFlags(flags *pflag.FlagSet) {
	flags.String("host", "", "Host to bind the web server to (default 0.0.0.0)")
	flags.String("port", "", "Port to run the web server on (default 8080)")
	flags.String("engine", "", "Recognizer to use: cli, gosseract")
	flags.String("language", "", "Tesseract language (-l)")
	flags.Int("oem", ocr.DefaultOEM, "Tesseract OCR engine mode")
	flags.Int("psm", ocr.DefaultPSM, "Tesseract page segmentation mode")
	flags.Int("fallback-psm", ocr.DefaultFallbackPSM, "Page segmentation mode for the retry attempt")
	flags.String("whitelist", "", "Characters tesseract may emit on the first attempt")
	flags.Duration("timeout", ocr.DefaultTimeout, "Timeout for each recognition attempt")
	flags.Int64("max-upload-bytes", 0, "Largest accepted upload in bytes (default 16 MiB)")
	flags.Int64("max-image-pixels", 0, "Largest accepted image area in pixels (default 50 million)")
}

// loadConfig reads the config file and environment, then applies any flag
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := applyFlags(cmd.Flags(), &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	str := func(name string, dst *string) {
		if err == nil && flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if err == nil && flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, err = flags.GetInt(name)
		}
	}

	str("host", &cfg.Host)
	str("port", &cfg.Port)
	str("tesseract-path", &cfg.TesseractPath)
	str("engine", &cfg.Recognition.Engine)
	str("language", &cfg.Recognition.Language)
	str("whitelist", &cfg.Recognition.Whitelist)
	num("oem", &cfg.Recognition.OEM)
	num("psm", &cfg.Recognition.PSM)
	num("fallback-psm", &cfg.Recognition.FallbackPSM)
	if err != nil {
		return err
	}

	if flags.Changed("search-paths") {
		if cfg.SearchPaths, err = flags.GetStringSlice("search-paths"); err != nil {
			return err
		}
	}
	if flags.Changed("probe-timeout") {
		if cfg.ProbeTimeout, err = flags.GetDuration("probe-timeout"); err != nil {
			return err
		}
	}
	if flags.Lookup("timeout") != nil && flags.Changed("timeout") {
		if cfg.Recognition.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Lookup("max-upload-bytes") != nil && flags.Changed("max-upload-bytes") {
		if cfg.MaxUploadBytes, err = flags.GetInt64("max-upload-bytes"); err != nil {
			return err
		}
	}
	if flags.Lookup("max-image-pixels") != nil && flags.Changed("max-image-pixels") {
		if cfg.MaxImagePixels, err = flags.GetInt64("max-image-pixels"); err != nil {
			return err
		}
	}
	return nil
}

func newMonitor(cfg config.Config) *engine.Monitor {
	locator := engine.NewLocator(engine.DefaultName, cfg.TesseractPath, cfg.SearchPaths)
	return engine.NewMonitor(locator, engine.NewProber(cfg.ProbeTimeout))
}
