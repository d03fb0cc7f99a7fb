package watermark

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ProgressFunc is invoked once per completed page.
type ProgressFunc func(page, total int)

// Apply stamps every page of inFile with the watermark described by spec and
// writes the result to outFile. Page N of the output is page N of the source
// with the overlay composited on top; no page is skipped, reordered, or
// duplicated. On any error nothing is written to outFile.
func Apply(inFile, outFile string, spec Spec, progress ProgressFunc) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	// The asset header is decoded once up front; each page reuses the width.
	var imgWidth float64
	if img, ok := spec.Variant.(ImageWatermark); ok {
		w, err := rasterWidth(img.Path)
		if err != nil {
			return err
		}
		imgWidth = w
	}

	ctx, err := pdfapi.ReadContextFile(inFile)
	if err != nil {
		return &DocumentReadError{Path: inFile, Err: err}
	}
	if ctx.PageCount == 0 {
		return &DocumentReadError{Path: inFile, Err: errors.New("document has no pages")}
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return &DocumentReadError{Path: inFile, Err: err}
	}

	for i, dim := range dims {
		page := i + 1
		wm, err := overlayFor(spec, dim, imgWidth)
		if err != nil {
			return &PageRenderError{Page: page, Err: err}
		}
		if err := pdfcpu.AddWatermarks(ctx, types.IntSet{page: true}, wm); err != nil {
			return &PageRenderError{Page: page, Err: err}
		}
		if progress != nil {
			progress(page, len(dims))
		}
	}

	return writeAtomic(ctx, outFile)
}

// Batch applies the same spec to a sequence of documents. Cancellation is
// honored between documents only; a document in flight runs to completion so
// its output stays all-or-nothing.
func Batch(ctx context.Context, jobs []Job, spec Spec, progress ProgressFunc) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := Apply(j.InFile, j.OutFile, spec, progress); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(j.InFile), err)
		}
	}
	return nil
}

// Job names one source document and its destination.
type Job struct {
	InFile  string
	OutFile string
}

// overlayFor builds the single-page overlay descriptor for a page of the
// given dimensions. The overlay is consumed by the merge and never shared
// across pages, since each page may have different dimensions.
func overlayFor(spec Spec, dim types.Dim, imgWidth float64) (*model.Watermark, error) {
	anchor, dx, dy := anchorFor(spec.Position, spec.Margin)

	switch v := spec.Variant.(type) {
	case TextWatermark:
		desc := fmt.Sprintf("font:%s, points:%d, scale:1 abs, rot:%.1f, op:%.2f, fillc:%s",
			ResolveFont(), v.FontSize, normalizeRotation(v.Rotation), spec.Opacity, v.Color)
		wm, err := pdfcpu.ParseTextWatermarkDetails(v.Text, desc, true, types.POINTS)
		if err != nil {
			return nil, err
		}
		wm.Pos = anchor
		wm.Dx = dx
		wm.Dy = dy
		return wm, nil

	case ImageWatermark:
		desc := fmt.Sprintf("scale:1 abs, rot:0, op:%.2f", spec.Opacity)
		wm, err := pdfcpu.ParseImageWatermarkDetails(v.Path, desc, true, types.POINTS)
		if err != nil {
			return nil, err
		}
		// Target width is a fraction of this page's width; images render at
		// one point per pixel, so the factor is relative to pixel width.
		wm.Scale = v.Scale * dim.Width / imgWidth
		wm.ScaleAbs = true
		wm.Pos = anchor
		wm.Dx = dx
		wm.Dy = dy
		return wm, nil

	default:
		return nil, fmt.Errorf("unsupported watermark variant %T", v)
	}
}

// anchorFor maps a position to the overlay anchor plus the inward offset
// that realizes the margin. Center ignores the margin.
func anchorFor(pos Position, margin float64) (types.Anchor, float64, float64) {
	switch pos {
	case TopLeft:
		return types.TopLeft, margin, -margin
	case TopRight:
		return types.TopRight, -margin, -margin
	case BottomLeft:
		return types.BottomLeft, margin, margin
	case BottomRight:
		return types.BottomRight, -margin, margin
	default:
		return types.Center, 0, 0
	}
}

func normalizeRotation(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// writeAtomic stages the document in a uniquely named scratch file next to
// the destination and renames it into place. The scratch file is removed on
// every exit path.
func writeAtomic(ctx *model.Context, outFile string) error {
	scratch := filepath.Join(filepath.Dir(outFile),
		fmt.Sprintf(".%s.%s.tmp", filepath.Base(outFile), uuid.New().String()))
	defer os.Remove(scratch)

	if err := pdfapi.WriteContextFile(ctx, scratch); err != nil {
		return &ResourceError{Op: "write scratch file", Err: err}
	}
	if err := os.Rename(scratch, outFile); err != nil {
		return &ResourceError{Op: "finalize output", Err: err}
	}
	return nil
}
