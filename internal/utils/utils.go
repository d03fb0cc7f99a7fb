// Package utils provides utility functions for filename sanitization, UUID
// generation, and upload classification.
//
// Functions:
//   - SanitizeFilename: Returns a safe filename for storage.
//     Input: string (filename)
//     Output: string (sanitized filename)
//   - GenerateUUID: Returns a new UUID string.
//     Output: string (UUID)
//   - ClassifyUpload: Returns the file category for an uploaded filename.
//
// Used throughout the backend for safe file handling and unique IDs.
package utils

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	re := regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	safe := re.ReplaceAllString(base, "_")
	if len(safe) > 100 {
		safe = safe[:100]
	}
	return safe
}

func GenerateUUID() string {
	return uuid.New().String()
}

// Upload categories by extension.
const (
	FilePDF     = "pdf"
	FileWord    = "word"
	FileImage   = "image"
	FileUnknown = "unknown"
)

var (
	wordExtensions  = map[string]bool{".doc": true, ".docx": true}
	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
		".gif": true, ".webp": true, ".tiff": true,
	}
)

// ClassifyUpload returns the file category for a filename: pdf, word, image,
// or unknown.
func ClassifyUpload(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".pdf":
		return FilePDF
	case wordExtensions[ext]:
		return FileWord
	case imageExtensions[ext]:
		return FileImage
	default:
		return FileUnknown
	}
}
