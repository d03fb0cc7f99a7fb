// Package convert turns non-PDF uploads into PDF documents so the merge and
// watermark pipelines only ever see PDFs.
//
// Word documents go through a headless LibreOffice subprocess; images are
// imported directly, one page per image.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultOfficeTimeout bounds a single LibreOffice conversion.
const DefaultOfficeTimeout = 60 * time.Second

// ErrNoConverter is returned when no LibreOffice binary is on PATH.
var ErrNoConverter = errors.New("no office converter found (install libreoffice)")

var officeBinaries = []string{"soffice", "libreoffice"}

// OfficeToPDF converts a Word document to PDF in outDir and returns the
// produced file path. LibreOffice names the output after the input basename.
func OfficeToPDF(ctx context.Context, inputPath, outDir string) (string, error) {
	bin := ""
	for _, candidate := range officeBinaries {
		if _, err := exec.LookPath(candidate); err == nil {
			bin = candidate
			break
		}
	}
	if bin == "" {
		return "", ErrNoConverter
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultOfficeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, inputPath)
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("office conversion timed out after %v", DefaultOfficeTimeout)
	}
	if err != nil {
		return "", fmt.Errorf("office conversion failed: %v: %s", err, strings.TrimSpace(string(output)))
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("office conversion produced no output: %w", err)
	}
	return outPath, nil
}

// ImagesToPDF imports raster images into a new PDF, one page per image.
func ImagesToPDF(imagePaths []string, outputPath string) error {
	if len(imagePaths) == 0 {
		return errors.New("no images to import")
	}
	config := model.NewDefaultConfiguration()
	return pdfapi.ImportImagesFile(imagePaths, outputPath, nil, config)
}
