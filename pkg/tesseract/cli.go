// Package tesseract implements ocr.Recognizer on top of the Tesseract engine,
// either by spawning its executable or through the gosseract binding.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os/exec"
	"time"

	"github.com/lehigh-university-libraries/ocrweb/internal/utils"
	"github.com/lehigh-university-libraries/ocrweb/pkg/imageproc"
	"github.com/lehigh-university-libraries/ocrweb/pkg/ocr"
)

// CLI runs a fresh tesseract process per call, streaming the image as PNG on
// stdin and reading text from stdout.
type CLI struct {
	// Path is the executable. It is resolved by the engine monitor.
	Path func() string
}

// NewCLI creates a CLI recognizer. path is consulted on every call so a
// re-probe that moves the executable takes effect immediately.
func NewCLI(path func() string) *CLI {
	return &CLI{Path: path}
}

// Name returns the recognizer name
func (c *CLI) Name() string {
	return "cli"
}

// Recognize extracts text from img. Each call has its own deadline of
// config.Timeout.
func (c *CLI) Recognize(ctx context.Context, img image.Image, config ocr.Config) (string, error) {
	path := ""
	if c.Path != nil {
		path = c.Path()
	}
	if path == "" {
		return "", fmt.Errorf("%w: no tesseract executable configured", ocr.ErrRecognition)
	}

	data, err := imageproc.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ocr.ErrRecognition, err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = ocr.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{"stdin", "stdout"}, config.Args()...)
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	slog.Debug("Executing tesseract", "path", path, "args", args, "image_bytes", len(data))
	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s", ocr.ErrRecognitionTimeout, timeout)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		msg := err.Error()
		if out := utils.Truncate(stderr.String(), 300); out != "" {
			msg = fmt.Sprintf("%s - %s", msg, out)
		}
		return "", fmt.Errorf("%w: %s", ocr.ErrRecognition, msg)
	}

	return stdout.String(), nil
}
