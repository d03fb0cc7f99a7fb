// Package handlers provides HTTP handlers for the PDF stamping API.
//
// This package contains the main HTTP endpoints for session management,
// document upload, conversion, ordering, merging, watermarking, and download.
//
// Example usage:
//
//	h := handlers.NewAPIHandler(sessionManager, uploadDir, outputDir)
//	r := chi.NewRouter()
//	r.Post("/api/sessions/", h.CreateSession)
//
// All handlers are designed to be used with the chi router.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go-stamppdf/internal/convert"
	"go-stamppdf/internal/pdf"
	"go-stamppdf/internal/session"
	"go-stamppdf/internal/utils"
	"go-stamppdf/internal/watermark"

	"github.com/go-chi/chi/v5"
)

type APIHandler struct {
	SessionManager *session.SessionManager
	UploadDir      string
	OutputDir      string
}

func NewAPIHandler(sm *session.SessionManager, uploadDir, outputDir string) *APIHandler {
	return &APIHandler{SessionManager: sm, UploadDir: uploadDir, OutputDir: outputDir}
}

// CreateSession godoc
// @Summary      Create a new session
// @Description  Creates a new stamping session and returns a session ID
// @Tags         sessions
// @Produce      json
// @Success      200  {object}  map[string]string  "{ sessionId: string }"
// @Router       /api/sessions/ [post]
func (h *APIHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.SessionManager.CreateSession()
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"sessionId": "%s"}`, session.ID)
}

// UploadDocument godoc
// @Summary      Upload a document
// @Description  Uploads a PDF, Word, or image document to the session
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Param        document   formData  file    true  "Document file"
// @Success      200  {object}  map[string]interface{}  "{ filename: string, size: int }"
// @Failure      400  {string}  string  "Bad request"
// @Failure      404  {string}  string  "Session not found"
// @Router       /api/sessions/{sessionID}/files [post]
func (h *APIHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, exists := h.SessionManager.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	const maxUploadSize = 25 * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("document")
	if err != nil {
		http.Error(w, "Error retrieving file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sanitized := utils.SanitizeFilename(handler.Filename)
	kind := utils.ClassifyUpload(handler.Filename)
	if kind == utils.FileUnknown {
		http.Error(w, "Only PDF, Word, and image documents are allowed", http.StatusBadRequest)
		return
	}

	if kind == utils.FilePDF {
		header := make([]byte, 5)
		if _, err := file.Read(header); err != nil {
			http.Error(w, "Failed to read file", http.StatusBadRequest)
			return
		}
		if string(header) != "%PDF-" {
			http.Error(w, "Uploaded file is not a valid PDF", http.StatusBadRequest)
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			http.Error(w, "Failed to process file", http.StatusInternalServerError)
			return
		}
	}

	filename := fmt.Sprintf("%s-%s", utils.GenerateUUID(), sanitized)
	dstPath := filepath.Join(h.UploadDir, filename)
	dst, err := os.Create(dstPath)
	if err != nil {
		http.Error(w, "Failed to create file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	session.AddDocument(dstPath)
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"filename": "%s", "size": %d}`, filename, handler.Size)
}

// UploadWatermarkImage godoc
// @Summary      Upload a watermark image
// @Description  Uploads a watermark image (PNG/JPEG) to the session
// @Tags         watermark
// @Accept       multipart/form-data
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Param        image      formData  file    true  "Watermark image file (PNG/JPEG)"
// @Success      200  {object}  map[string]interface{}  "{ filename: string, size: int }"
// @Failure      400  {string}  string  "Bad request - invalid image format"
// @Failure      404  {string}  string  "Session not found"
// @Router       /api/sessions/{sessionID}/watermark-image [post]
func (h *APIHandler) UploadWatermarkImage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, exists := h.SessionManager.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	const maxUploadSize = 5 * 1024 * 1024 // 5MB max for watermark images
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Error retrieving file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		http.Error(w, "Only PNG and JPEG images are allowed", http.StatusBadRequest)
		return
	}

	header := make([]byte, 512)
	if _, err := file.Read(header); err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		http.Error(w, "Failed to process file", http.StatusInternalServerError)
		return
	}

	contentType := http.DetectContentType(header)
	validExtensions := map[string][]string{
		"image/jpeg": {".jpg", ".jpeg"},
		"image/png":  {".png"},
	}
	extensions, ok := validExtensions[contentType]
	if !ok {
		http.Error(w, "Invalid image format. Only PNG and JPEG images are allowed", http.StatusBadRequest)
		return
	}
	isValidExt := false
	for _, e := range extensions {
		if e == ext {
			isValidExt = true
		}
	}
	if !isValidExt {
		http.Error(w, "File extension doesn't match content type", http.StatusBadRequest)
		return
	}

	sanitized := utils.SanitizeFilename(handler.Filename)
	filename := fmt.Sprintf("wm-%s-%s", utils.GenerateUUID(), sanitized)
	dstPath := filepath.Join(h.UploadDir, filename)

	dst, err := os.Create(dstPath)
	if err != nil {
		http.Error(w, "Failed to create file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	session.AddAsset(dstPath)

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"filename": "%s", "size": %d}`, filename, handler.Size)
}

// UpdateOrder godoc
// @Summary      Set document order
// @Description  Sets the order of uploaded documents for merging
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Param        files      body      object  true  "{ files: [string] }"
// @Success      200  {object}  map[string]bool  "{ success: true }"
// @Failure      400  {string}  string  "Bad request"
// @Failure      404  {string}  string  "Session not found"
// @Router       /api/sessions/{sessionID}/order [put]
func (h *APIHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, exists := h.SessionManager.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	var fileOrder struct {
		Files []string `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&fileOrder); err != nil {
		http.Error(w, "Invalid file order data", http.StatusBadRequest)
		return
	}
	fileMap := make(map[string]bool)
	for _, file := range session.GetDocuments() {
		fileMap[file] = true
	}
	// Clients submit the filenames the upload response returned; resolve
	// them against the upload directory before checking ownership.
	ordered := make([]string, 0, len(fileOrder.Files))
	for _, name := range fileOrder.Files {
		docPath := filepath.Join(h.UploadDir, filepath.Base(name))
		if !fileMap[docPath] {
			http.Error(w, "Invalid file in order list", http.StatusBadRequest)
			return
		}
		ordered = append(ordered, docPath)
	}
	if len(ordered) > 0 {
		session.SetDocuments(ordered)
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"success": true}`)
}

// DocumentInfo godoc
// @Summary      Inspect an uploaded document
// @Description  Returns page count and size for an uploaded PDF
// @Tags         files
// @Produce      json
// @Param        sessionID  path  string  true  "Session ID"
// @Param        filename   path  string  true  "Uploaded document filename"
// @Success      200  {object}  pdf.DocumentInfo
// @Failure      404  {string}  string  "Session or document not found"
// @Failure      422  {string}  string  "Document not readable"
// @Router       /api/sessions/{sessionID}/documents/{filename}/info [get]
func (h *APIHandler) DocumentInfo(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	filename := chi.URLParam(r, "filename")
	session, exists := h.SessionManager.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	docPath := filepath.Join(h.UploadDir, filename)
	if !session.HasDocument(docPath) {
		http.Error(w, "Document not found in session", http.StatusNotFound)
		return
	}
	info, err := pdf.Info(docPath)
	if err != nil {
		http.Error(w, "Document not readable", http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// ConvertDocuments godoc
// @Summary      Convert non-PDF documents
// @Description  Converts Word and image documents in the session to PDF in place
// @Tags         files
// @Produce      json
// @Param        sessionID  path  string  true  "Session ID"
// @Success      200  {object}  map[string]int  "{ converted: int }"
// @Failure      404  {string}  string  "Session not found"
// @Failure      500  {string}  string  "Conversion failed"
// @Router       /api/sessions/{sessionID}/actions/convert [post]
func (h *APIHandler) ConvertDocuments(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, exists := h.SessionManager.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	converted := 0
	for _, doc := range session.GetDocuments() {
		var pdfPath string
		var err error
		switch utils.ClassifyUpload(doc) {
		case utils.FileWord:
			pdfPath, err = convert.OfficeToPDF(r.Context(), doc, h.UploadDir)
		case utils.FileImage:
			pdfPath = strings.TrimSuffix(doc, filepath.Ext(doc)) + ".pdf"
			err = convert.ImagesToPDF([]string{doc}, pdfPath)
		default:
			continue
		}
		if err != nil {
			log.Printf("Error converting %s: %v", doc, err)
			http.Error(w, fmt.Sprintf("Failed to convert %s", filepath.Base(doc)), http.StatusInternalServerError)
			return
		}
		session.ReplaceDocument(doc, pdfPath)
		os.Remove(doc)
		converted++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"converted": converted})
}

// MergeFiles godoc
// @Summary      Merge uploaded documents
// @Description  Merges all documents in the session and returns a download URL
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string  true  "Session ID"
// @Param        options    body  object  false "{ pageNumbers: bool, startAt: int }"
// @Success      200  {object}  map[string]string  "{ downloadUrl: string }"
// @Failure      400  {string}  string  "No files to merge"
// @Failure      404  {string}  string  "Session not found"
// @Failure      409  {string}  string  "Merge already in progress or done"
// @Router       /api/sessions/{sessionID}/actions/merge [post]
func (h *APIHandler) MergeFiles(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, exists := h.SessionManager.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var opts struct {
		PageNumbers bool `json:"pageNumbers"`
		StartAt     int  `json:"startAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && err != io.EOF {
		http.Error(w, "Invalid merge options", http.StatusBadRequest)
		return
	}
	if opts.StartAt < 1 {
		opts.StartAt = 1
	}

	sess.Mutex.Lock()
	if sess.Status == session.StatusWorking {
		sess.Mutex.Unlock()
		http.Error(w, "Merge already in progress", http.StatusConflict)
		return
	}
	if sess.Status == session.StatusDone {
		sess.Mutex.Unlock()
		http.Error(w, "Files already merged", http.StatusConflict)
		return
	}
	sess.Status = session.StatusWorking
	sess.Mutex.Unlock()

	setIdle := func() {
		sess.Mutex.Lock()
		sess.Status = session.StatusIdle
		sess.Mutex.Unlock()
	}

	files := sess.GetDocuments()
	if len(files) == 0 {
		setIdle()
		http.Error(w, "No files to merge", http.StatusBadRequest)
		return
	}

	outputFilename := fmt.Sprintf("merged-%s.pdf", utils.GenerateUUID())
	outputPath := filepath.Join(h.OutputDir, outputFilename)
	if err := pdf.MergePDFs(files, outputPath); err != nil {
		setIdle()
		log.Printf("Error merging PDFs: %v", err)
		http.Error(w, "Failed to merge PDFs", http.StatusInternalServerError)
		return
	}
	if err := pdf.RemoveBookmarks(outputPath); err != nil {
		setIdle()
		log.Printf("Error removing bookmarks: %v", err)
		http.Error(w, "Failed to process merged PDF", http.StatusInternalServerError)
		return
	}
	if opts.PageNumbers {
		if err := pdf.AddPageNumbers(outputPath, outputPath, opts.StartAt); err != nil {
			setIdle()
			log.Printf("Error numbering pages: %v", err)
			http.Error(w, "Failed to number pages", http.StatusInternalServerError)
			return
		}
	}

	sess.Mutex.Lock()
	sess.Outputs = append(sess.Outputs, outputPath)
	sess.Status = session.StatusDone
	sess.Mutex.Unlock()

	downloadURL := fmt.Sprintf("/api/sessions/%s/files/%s", sessionID, outputFilename)
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"downloadUrl": "%s"}`, downloadURL)
}

type watermarkRequest struct {
	Sources   []string          `json:"sources"`
	Watermark watermarkSpecJSON `json:"watermark"`
}

type watermarkSpecJSON struct {
	Type     string  `json:"type"` // "text" or "image"
	Text     string  `json:"text"`
	FontSize int     `json:"fontSize"`
	Rotation float64 `json:"rotation"`
	Color    string  `json:"color"`
	Image    string  `json:"image"` // previously uploaded watermark asset
	Scale    float64 `json:"scale"`
	Position string  `json:"position"`
	Opacity  float64 `json:"opacity"`
	Margin   float64 `json:"margin"`
}

// buildSpec translates the wire form into a compositor spec, filling in the
// defaults the desktop tool shipped with.
func (h *APIHandler) buildSpec(sess *session.Session, j watermarkSpecJSON) (watermark.Spec, error) {
	spec := watermark.Spec{
		Position: watermark.Center,
		Opacity:  0.3,
		Margin:   10,
	}
	if j.Position != "" {
		spec.Position = watermark.Position(j.Position)
	}
	if j.Opacity != 0 {
		spec.Opacity = j.Opacity
	}
	if j.Margin != 0 {
		spec.Margin = j.Margin
	}

	switch j.Type {
	case "text":
		text := watermark.TextWatermark{
			Text:     j.Text,
			FontSize: 40,
			Rotation: 45,
			Color:    "#808080",
		}
		if j.FontSize != 0 {
			text.FontSize = j.FontSize
		}
		if j.Rotation != 0 {
			text.Rotation = j.Rotation
		}
		if j.Color != "" {
			text.Color = j.Color
		}
		spec.Variant = text
	case "image":
		assetPath := filepath.Join(h.UploadDir, j.Image)
		if j.Image == "" || !sess.HasAsset(assetPath) {
			return spec, fmt.Errorf("watermark image not found in session")
		}
		img := watermark.ImageWatermark{Path: assetPath, Scale: 0.2}
		if j.Scale != 0 {
			img.Scale = j.Scale
		}
		spec.Variant = img
	default:
		return spec, fmt.Errorf("watermark type must be \"text\" or \"image\"")
	}
	return spec, nil
}

// WatermarkDocuments godoc
// @Summary      Watermark documents
// @Description  Applies a text or image watermark to every page of the named documents
// @Tags         watermark
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string            true  "Session ID"
// @Param        request    body  watermarkRequest  true  "Watermark request"
// @Success      200  {object}  map[string]interface{}  "{ outputs: [{source, downloadUrl}] }"
// @Failure      400  {string}  string  "Invalid watermark spec"
// @Failure      404  {string}  string  "Session not found"
// @Failure      422  {string}  string  "Document not readable"
// @Router       /api/sessions/{sessionID}/actions/watermark [post]
func (h *APIHandler) WatermarkDocuments(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, exists := h.SessionManager.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var req watermarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	spec, err := h.buildSpec(sess, req.Watermark)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := spec.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Default to every document in the session, in merge order.
	sources := sess.GetDocuments()
	if len(req.Sources) > 0 {
		sources = sources[:0]
		for _, name := range req.Sources {
			docPath := filepath.Join(h.UploadDir, name)
			if !sess.HasDocument(docPath) {
				http.Error(w, fmt.Sprintf("Document %s not found in session", name), http.StatusNotFound)
				return
			}
			sources = append(sources, docPath)
		}
	}
	if len(sources) == 0 {
		http.Error(w, "No documents to watermark", http.StatusBadRequest)
		return
	}

	type output struct {
		Source      string `json:"source"`
		DownloadURL string `json:"downloadUrl"`
	}
	var (
		jobs    []watermark.Job
		outputs []output
	)
	for _, src := range sources {
		outName := fmt.Sprintf("stamped-%s.pdf", utils.GenerateUUID())
		jobs = append(jobs, watermark.Job{
			InFile:  src,
			OutFile: filepath.Join(h.OutputDir, outName),
		})
		outputs = append(outputs, output{
			Source:      filepath.Base(src),
			DownloadURL: fmt.Sprintf("/api/sessions/%s/files/%s", sessionID, outName),
		})
	}

	progress := func(page, total int) {
		log.Printf("Watermarked page %d/%d", page, total)
	}
	if err := watermark.Batch(r.Context(), jobs, spec, progress); err != nil {
		var invalid *watermark.InvalidWatermarkError
		var unreadable *watermark.DocumentReadError
		switch {
		case errors.As(err, &invalid):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &unreadable):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			log.Printf("Error watermarking: %v", err)
			http.Error(w, "Failed to watermark documents", http.StatusInternalServerError)
		}
		return
	}

	for _, j := range jobs {
		sess.AddOutput(j.OutFile)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"outputs": outputs})
}

// DownloadFile godoc
// @Summary      Download a produced PDF
// @Description  Downloads a merged or watermarked PDF owned by the session
// @Tags         files
// @Produce      application/pdf
// @Param        sessionID  path  string  true  "Session ID"
// @Param        filename   path  string  true  "Output PDF filename"
// @Success      200  {file}  file  "PDF file download"
// @Failure      403  {string}  string  "Unauthorized access to file"
// @Failure      404  {string}  string  "Session or file not found"
// @Router       /api/sessions/{sessionID}/files/{filename} [get]
func (h *APIHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	filename := chi.URLParam(r, "filename")
	session, exists := h.SessionManager.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	outputPath := filepath.Join(h.OutputDir, filename)
	if !session.OwnsOutput(outputPath) {
		http.Error(w, "Unauthorized access to file", http.StatusForbidden)
		return
	}
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, outputPath)
}
