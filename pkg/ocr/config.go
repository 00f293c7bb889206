package ocr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultOEM         = 3
	DefaultPSM         = 6
	DefaultFallbackPSM = 3
	DefaultLanguage    = "eng"
	DefaultTimeout     = 10 * time.Second
)

// Config is the recognition configuration handed to an engine. It is set
// once at start-up and never mutated while requests are in flight.
type Config struct {
	// Engine names the Recognizer to use from the registry.
	Engine string `yaml:"engine" json:"engine"`
	// Language is the tesseract language code, e.g. "eng" or "eng+deu".
	Language string `yaml:"language" json:"language"`
	// OEM is the OCR engine mode (0-3).
	OEM int `yaml:"oem" json:"oem"`
	// PSM is the page segmentation mode (0-13).
	PSM int `yaml:"psm" json:"psm"`
	// Whitelist restricts recognized glyphs. Empty means unrestricted.
	Whitelist string `yaml:"whitelist" json:"whitelist,omitempty"`
	// FallbackPSM is used for the single retry after an engine failure.
	FallbackPSM int `yaml:"fallback_psm" json:"fallback_psm"`
	// Timeout bounds each engine invocation.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns `--oem 3 --psm 6` for English with no whitelist.
func DefaultConfig() Config {
	return Config{
		Engine:      "cli",
		Language:    DefaultLanguage,
		OEM:         DefaultOEM,
		PSM:         DefaultPSM,
		FallbackPSM: DefaultFallbackPSM,
		Timeout:     DefaultTimeout,
	}
}

// Validate checks the ranges tesseract accepts.
func (c Config) Validate() error {
	if c.OEM < 0 || c.OEM > 3 {
		return fmt.Errorf("oem must be between 0 and 3, got %d", c.OEM)
	}
	if c.PSM < 0 || c.PSM > 13 {
		return fmt.Errorf("psm must be between 0 and 13, got %d", c.PSM)
	}
	if c.FallbackPSM < 0 || c.FallbackPSM > 13 {
		return fmt.Errorf("fallback psm must be between 0 and 13, got %d", c.FallbackPSM)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if strings.ContainsAny(c.Whitelist, " \t\r\n") {
		return fmt.Errorf("whitelist must not contain whitespace")
	}
	return nil
}

// Args renders the engine flags in command-line order.
func (c Config) Args() []string {
	args := []string{"--oem", strconv.Itoa(c.OEM), "--psm", strconv.Itoa(c.PSM)}
	if c.Language != "" {
		args = append(args, "-l", c.Language)
	}
	if c.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+c.Whitelist)
	}
	return args
}

// String is the flag string, e.g. "--oem 3 --psm 6 -l eng".
func (c Config) String() string {
	return strings.Join(c.Args(), " ")
}

// Fallback is the more permissive configuration tried once after an engine
// failure: same engine mode and language, automatic segmentation and no
// character whitelist.
func (c Config) Fallback() Config {
	fb := c
	fb.PSM = c.FallbackPSM
	fb.Whitelist = ""
	return fb
}
