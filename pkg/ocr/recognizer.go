// Package ocr defines the recognition contract shared by the tesseract
// engines, along with the configuration and retry policy around it.
package ocr

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrRecognition is an engine-level failure: crash, non-zero exit or an
	// image the engine could not read.
	ErrRecognition = errors.New("recognition failed")
	// ErrRecognitionTimeout means the engine did not finish within Config.Timeout.
	ErrRecognitionTimeout = errors.New("recognition timed out")
)

// Result is the outcome of one upload. Text is trimmed; empty is valid.
type Result struct {
	Text     string        `json:"text"`
	Fallback bool          `json:"-"`
	Duration time.Duration `json:"-"`
}

// Recognizer interface that all OCR engines must implement
type Recognizer interface {
	// Recognize returns the raw text the engine produced for img.
	Recognize(ctx context.Context, img image.Image, config Config) (string, error)
	// Name returns the engine's registry name
	Name() string
}

// Checker is implemented by recognizers that can tell up front whether they
// are able to run at all, independent of any single image.
type Checker interface {
	Available() error
}

// Versioner is implemented by recognizers that know their engine version.
type Versioner interface {
	Version() string
}

// Available reports why r cannot run, or nil. Recognizers that do not
// implement Checker are assumed to be available.
func Available(r Recognizer) error {
	if c, ok := r.(Checker); ok {
		return c.Available()
	}
	return nil
}

// Version returns the engine version r reports, or "".
func Version(r Recognizer) string {
	if v, ok := r.(Versioner); ok {
		return v.Version()
	}
	return ""
}

// RecognizeWithFallback runs r with config and, on ErrRecognition only,
// retries once with config.Fallback(). Timeouts and cancellation are
// returned as-is.
func RecognizeWithFallback(ctx context.Context, r Recognizer, img image.Image, config Config) (Result, error) {
	start := time.Now()

	text, err := r.Recognize(ctx, img, config)
	if err == nil {
		return Result{Text: strings.TrimSpace(text), Duration: time.Since(start)}, nil
	}
	if !errors.Is(err, ErrRecognition) || ctx.Err() != nil {
		return Result{}, err
	}

	fallback := config.Fallback()
	slog.Warn("Recognition failed, retrying with fallback configuration",
		"engine", r.Name(),
		"config", config.String(),
		"fallback", fallback.String(),
		"error", err)

	text, fbErr := r.Recognize(ctx, img, fallback)
	if fbErr != nil {
		return Result{}, fbErr
	}
	return Result{Text: strings.TrimSpace(text), Fallback: true, Duration: time.Since(start)}, nil
}
