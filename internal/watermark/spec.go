// Package watermark stamps a text or image watermark onto every page of a
// PDF document.
//
// The compositor is a single-pass transform: for each page it reads that
// page's dimensions, builds a one-page overlay from the spec, and merges the
// overlay on top of the existing content. The overlay is a distinct visual
// layer, so text underneath stays extractable. Output is all-or-nothing per
// document: the result is staged in a scratch file and renamed into place
// only after every page succeeded.
package watermark

import (
	"fmt"
	"image"
	"os"
	"regexp"
	"strings"

	// Raster formats accepted for watermark assets.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Position anchors the overlay on a page. Corner positions are inset from
// the page edges by the spec margin; Center ignores the margin.
type Position string

const (
	Center      Position = "center"
	TopLeft     Position = "top-left"
	TopRight    Position = "top-right"
	BottomLeft  Position = "bottom-left"
	BottomRight Position = "bottom-right"
)

// Variant is the watermark payload: exactly TextWatermark or ImageWatermark.
type Variant interface {
	variant()
}

// TextWatermark renders a line of text rotated about its anchor.
type TextWatermark struct {
	Text     string
	FontSize int
	Rotation float64 // degrees, counterclockwise
	Color    string  // #RRGGBB
}

func (TextWatermark) variant() {}

// ImageWatermark renders a raster image scaled so its width equals
// Scale times the page width, preserving aspect ratio.
type ImageWatermark struct {
	Path  string
	Scale float64 // fraction of page width, (0, 1]
}

func (ImageWatermark) variant() {}

// Spec is the user-supplied watermark configuration, constant for a run.
type Spec struct {
	Variant  Variant
	Position Position
	Opacity  float64 // (0, 1]
	Margin   float64 // points inset from page edges, [0, 100]
}

var colorRE = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks the spec and, for image watermarks, that the asset decodes
// to a known raster format. It runs before any page is touched.
func (s Spec) Validate() error {
	if s.Variant == nil {
		return &InvalidWatermarkError{Reason: "a text or image watermark is required"}
	}
	if !(s.Opacity > 0 && s.Opacity <= 1) {
		return &InvalidWatermarkError{Reason: fmt.Sprintf("opacity %.2f outside (0, 1]", s.Opacity)}
	}
	if s.Margin < 0 || s.Margin > 100 {
		return &InvalidWatermarkError{Reason: fmt.Sprintf("margin %.0f outside [0, 100]", s.Margin)}
	}
	switch s.Position {
	case Center, TopLeft, TopRight, BottomLeft, BottomRight:
	default:
		return &InvalidWatermarkError{Reason: fmt.Sprintf("unknown position %q", s.Position)}
	}

	switch v := s.Variant.(type) {
	case TextWatermark:
		if strings.TrimSpace(v.Text) == "" {
			return &InvalidWatermarkError{Reason: "watermark text is empty"}
		}
		if v.FontSize <= 0 {
			return &InvalidWatermarkError{Reason: fmt.Sprintf("font size %d must be positive", v.FontSize)}
		}
		if !colorRE.MatchString(v.Color) {
			return &InvalidWatermarkError{Reason: fmt.Sprintf("color %q is not #RRGGBB", v.Color)}
		}
	case ImageWatermark:
		if !(v.Scale > 0 && v.Scale <= 1) {
			return &InvalidWatermarkError{Reason: fmt.Sprintf("scale %.2f outside (0, 1]", v.Scale)}
		}
		if _, err := rasterWidth(v.Path); err != nil {
			return err
		}
	default:
		return &InvalidWatermarkError{Reason: fmt.Sprintf("unsupported watermark variant %T", v)}
	}
	return nil
}

// rasterWidth decodes just the image header and returns the pixel width.
func rasterWidth(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &InvalidWatermarkError{Reason: "watermark image not readable", Err: err}
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, &InvalidWatermarkError{Reason: "unsupported watermark image format", Err: err}
	}
	if cfg.Width <= 0 {
		return 0, &InvalidWatermarkError{Reason: "watermark image has zero width"}
	}
	return float64(cfg.Width), nil
}
