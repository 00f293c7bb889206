//go:build !gosseract

package tesseract

import (
	"context"
	"errors"
	"testing"

	"github.com/lehigh-university-libraries/ocrweb/pkg/ocr"
)

func TestBindingStub(t *testing.T) {
	b := NewBinding()
	if b.Name() != "gosseract" {
		t.Errorf("unexpected name %q", b.Name())
	}
	if BindingCompiled {
		t.Error("stub must report the binding as not compiled")
	}
	if err := ocr.Available(b); !errors.Is(err, ErrBindingNotCompiled) {
		t.Errorf("Available() = %v, want ErrBindingNotCompiled", err)
	}
	_, err := b.Recognize(context.Background(), blank(), ocr.DefaultConfig())
	if !errors.Is(err, ErrBindingNotCompiled) {
		t.Errorf("error = %v, want ErrBindingNotCompiled", err)
	}
}
