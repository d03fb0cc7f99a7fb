// Package pdf provides the document assembly utilities around the watermark
// compositor: merging, bookmark cleanup, page numbering, and basic document
// info.
//
// Functions:
//   - MergePDFs: Merges multiple PDF files into a single output file.
//   - RemoveBookmarks: Removes bookmarks from a PDF file in-place.
//   - AddPageNumbers: Stamps a bottom-centered page number on every page.
//   - Info: Returns page count and size for a PDF file.
//
// These functions are used by the API handlers to process user-uploaded files.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func MergePDFs(files []string, outputPath string) error {
	config := model.NewDefaultConfiguration()
	return pdfapi.MergeCreateFile(files, outputPath, false, config)
}

func RemoveBookmarks(pdfPath string) error {
	config := model.NewDefaultConfiguration()
	return pdfapi.RemoveBookmarksFile(pdfPath, pdfPath, config)
}

// AddPageNumbers stamps each page with its ordinal, counting from startAt,
// bottom-centered 30 points above the page edge. The numbered document is
// staged in a scratch file and renamed into place only after every page
// succeeded.
func AddPageNumbers(inputPath, outputPath string, startAt int) error {
	ctx, err := pdfapi.ReadContextFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}

	for page := 1; page <= ctx.PageCount; page++ {
		number := strconv.Itoa(startAt + page - 1)
		desc := "font:Helvetica, points:10, scale:1 abs, rot:0, op:1, pos:bc, off:0 30"
		wm, err := pdfcpu.ParseTextWatermarkDetails(number, desc, true, types.POINTS)
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		if err := pdfcpu.AddWatermarks(ctx, types.IntSet{page: true}, wm); err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
	}

	scratch := filepath.Join(filepath.Dir(outputPath),
		fmt.Sprintf(".%s.%s.tmp", filepath.Base(outputPath), uuid.New().String()))
	defer os.Remove(scratch)

	if err := pdfapi.WriteContextFile(ctx, scratch); err != nil {
		return fmt.Errorf("write %s: %w", scratch, err)
	}
	return os.Rename(scratch, outputPath)
}

// DocumentInfo summarizes a PDF file. Pages is zero when the document is
// encrypted and cannot be opened without a password.
type DocumentInfo struct {
	Pages     int   `json:"pages"`
	SizeBytes int64 `json:"sizeBytes"`
	Encrypted bool  `json:"encrypted"`
}

func Info(pdfPath string) (DocumentInfo, error) {
	fi, err := os.Stat(pdfPath)
	if err != nil {
		return DocumentInfo{}, err
	}
	info := DocumentInfo{SizeBytes: fi.Size()}

	pages, err := pdfapi.PageCountFile(pdfPath)
	if err != nil {
		// A password-protected document is still reportable; only a
		// genuinely unreadable one is an error.
		if enc, encErr := hasEncryptDict(pdfPath); encErr == nil && enc {
			info.Encrypted = true
			return info, nil
		}
		return DocumentInfo{}, fmt.Errorf("read %s: %w", pdfPath, err)
	}
	info.Pages = pages
	if enc, encErr := hasEncryptDict(pdfPath); encErr == nil && enc {
		info.Encrypted = true
	}
	return info, nil
}

// hasEncryptDict reports whether the file trailer references an encryption
// dictionary. It works on the raw bytes so it does not need the password.
func hasEncryptDict(pdfPath string) (bool, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return false, err
	}
	return bytes.Contains(data, []byte("/Encrypt")), nil
}
