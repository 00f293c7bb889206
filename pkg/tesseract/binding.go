//go:build gosseract

package tesseract

import (
	"context"
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"

	"github.com/lehigh-university-libraries/ocrweb/pkg/imageproc"
	"github.com/lehigh-university-libraries/ocrweb/pkg/ocr"
)

// BindingCompiled reports whether the gosseract binding is built in.
const BindingCompiled = true

// Binding recognizes text in-process through libtesseract. A new client is
// created for every call.
type Binding struct{}

// NewBinding creates a gosseract-backed recognizer.
func NewBinding() *Binding {
	return &Binding{}
}

// Name returns the recognizer name
func (b *Binding) Name() string {
	return "gosseract"
}

// Version returns the linked libtesseract version.
func (b *Binding) Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// Available reports nil; the binding is linked in.
func (b *Binding) Available() error {
	return nil
}

// Recognize runs OCR on img. The binding cannot be interrupted once started,
// so the deadline is enforced by abandoning the call.
func (b *Binding) Recognize(ctx context.Context, img image.Image, config ocr.Config) (string, error) {
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

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := b.run(data, config)
		done <- outcome{text, err}
	}()

	select {
	case out := <-done:
		return out.text, out.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w after %s", ocr.ErrRecognitionTimeout, timeout)
		}
		return "", ctx.Err()
	}
}

// The engine mode is fixed when libtesseract initialises, so config.OEM is
// not applied here.
func (b *Binding) run(data []byte, config ocr.Config) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if config.Language != "" {
		if err := client.SetLanguage(config.Language); err != nil {
			return "", fmt.Errorf("%w: set language: %v", ocr.ErrRecognition, err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(config.PSM)); err != nil {
		return "", fmt.Errorf("%w: set page segmentation mode: %v", ocr.ErrRecognition, err)
	}
	if config.Whitelist != "" {
		if err := client.SetWhitelist(config.Whitelist); err != nil {
			return "", fmt.Errorf("%w: set whitelist: %v", ocr.ErrRecognition, err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("%w: set image: %v", ocr.ErrRecognition, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ocr.ErrRecognition, err)
	}
	return text, nil
}
