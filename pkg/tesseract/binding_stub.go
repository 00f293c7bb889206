//go:build !gosseract

package tesseract

import (
	"context"
	"errors"
	"image"

	"github.com/lehigh-university-libraries/ocrweb/pkg/ocr"
)

// BindingCompiled reports whether the gosseract binding is built in.
const BindingCompiled = false

// ErrBindingNotCompiled is returned when the gosseract recognizer is selected
// but the binary was built without it. Rebuild with -tags gosseract.
var ErrBindingNotCompiled = errors.New("gosseract binding not compiled in; rebuild with -tags gosseract")

// Binding is the placeholder used when the gosseract build tag is unset.
type Binding struct{}

func NewBinding() *Binding {
	return &Binding{}
}

func (b *Binding) Name() string {
	return "gosseract"
}

func (b *Binding) Version() string {
	return ""
}

// Available always fails: the binding was not built in.
func (b *Binding) Available() error {
	return ErrBindingNotCompiled
}

func (b *Binding) Recognize(ctx context.Context, img image.Image, config ocr.Config) (string, error) {
	return "", ErrBindingNotCompiled
}
