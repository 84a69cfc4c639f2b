package http

import (
	"io"
	"net/http"
	"path/filepath"

	"planvault-backend/internal/storage"
)

// UploadHandler accepts proof-of-payment files and stores them via the
// configured storage backend. When the backend is local it also serves the
// stored files back.
type UploadHandler struct {
	store        storage.Storage
	local        *storage.LocalStorage
	maxFileBytes int64
}

func NewUploadHandler(store storage.Storage, local *storage.LocalStorage, maxFileSizeMB int64) *UploadHandler {
	return &UploadHandler{
		store:        store,
		local:        local,
		maxFileBytes: maxFileSizeMB << 20,
	}
}

func (h *UploadHandler) UploadProof(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileBytes)
	if err := r.ParseMultipartForm(h.maxFileBytes); err != nil {
		writeBadRequest(w, "file too large or malformed form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/webp", "application/pdf":
	default:
		writeBadRequest(w, "unsupported content type")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeBadRequest(w, "could not read file")
		return
	}

	url, err := h.store.Upload(r.Context(), data, contentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// ServeProof streams a locally stored proof file. Only registered when the
// local backend is in use.
func (h *UploadHandler) ServeProof(w http.ResponseWriter, r *http.Request) {
	if h.local == nil {
		http.NotFound(w, r)
		return
	}
	key := pathVar(r, "key")
	file, err := h.local.Open(key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	case ".pdf":
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, file)
}
