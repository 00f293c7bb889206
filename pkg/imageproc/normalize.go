// Package imageproc turns uploaded bytes into an image the OCR engine handles
// reliably: decoded, upright, opaque 8-bit RGB.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

var (
	// ErrEmptyImage is returned for a zero-length buffer.
	ErrEmptyImage = errors.New("image data is empty")
	// ErrDecode is returned when the bytes are not a supported image format.
	ErrDecode = errors.New("cannot decode image")
	// ErrImageTooLarge is returned before decoding when the declared
	// dimensions exceed the pixel limit.
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// DefaultMaxPixels caps the decoded size at about 50 megapixels.
const DefaultMaxPixels int64 = 50_000_000

// ImageInfo describes a decoded upload before normalization.
type ImageInfo struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Format     string `json:"format"`
	ColorModel string `json:"color_model"`
}

// Normalize decodes data and converts it to opaque RGB. Transparent areas are
// composited over white so text drawn on a transparent canvas stays legible.
// Images whose header declares more than maxPixels pixels are rejected
// without being decoded; a non-positive maxPixels means DefaultMaxPixels.
func Normalize(data []byte, maxPixels int64) (*image.NRGBA, ImageInfo, error) {
	if len(data) == 0 {
		return nil, ImageInfo{}, ErrEmptyImage
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ImageInfo{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	declared := ImageInfo{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Format:     format,
		ColorModel: ColorModelName(cfg.ColorModel),
	}
	if err := checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, declared, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ImageInfo{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := img.Bounds()
	info := ImageInfo{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Format:     format,
		ColorModel: ColorModelName(img.ColorModel()),
	}
	if b.Empty() {
		return nil, info, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}

	return ToRGB(img), info, nil
}

// checkPixels works in int64 so width*height cannot wrap on 32-bit platforms.
func checkPixels(width, height int, maxPixels int64) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrDecode, width, height)
	}
	w, h := int64(width), int64(height)
	if h != 0 && w > maxPixels/h {
		return fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrImageTooLarge, width, height, maxPixels)
	}
	return nil
}

// ToRGB flattens any colour model onto a white background and returns an
// NRGBA image whose alpha channel is fully opaque.
func ToRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if rgb, ok := img.(*image.NRGBA); ok && isOpaque(rgb) {
		return imaging.Clone(rgb)
	}
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// EncodePNG encodes img in the lossless format piped to the engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// ColorModelName names the colour model for logs and diagnostics.
func ColorModelName(m color.Model) string {
	switch m {
	case color.RGBAModel:
		return "rgba"
	case color.RGBA64Model:
		return "rgba64"
	case color.NRGBAModel:
		return "nrgba"
	case color.NRGBA64Model:
		return "nrgba64"
	case color.AlphaModel:
		return "alpha"
	case color.Alpha16Model:
		return "alpha16"
	case color.GrayModel:
		return "gray"
	case color.Gray16Model:
		return "gray16"
	case color.CMYKModel:
		return "cmyk"
	case color.YCbCrModel:
		return "ycbcr"
	case color.NYCbCrAModel:
		return "nycbcra"
	}
	if _, ok := m.(color.Palette); ok {
		return "paletted"
	}
	return "unknown"
}

func isOpaque(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[i+3] != 0xff {
				return false
			}
			i += 4
		}
	}
	return true
}
