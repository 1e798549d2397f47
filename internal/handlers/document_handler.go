package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// maxUploadBytes bounds a single document upload.
const maxUploadBytes = 64 << 20

// DocumentHandler exposes the ingestion pipeline over HTTP.
type DocumentHandler struct {
	ingest    interfaces.IngestService
	documents interfaces.DocumentStorage
	logger    arbor.ILogger
}

func NewDocumentHandler(ingest interfaces.IngestService, documents interfaces.DocumentStorage, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		ingest:    ingest,
		documents: documents,
		logger:    logger,
	}
}

// UploadHandler ingests one document from a multipart form. The declared
// format comes from the "format" field, falling back to the filename
// extension.
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = formatFromFilename(header.Filename)
	}

	result, err := h.ingest.Ingest(r.Context(), header.Filename, format, payload)
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", header.Filename).Msg("Ingestion failed")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

// DeleteHandler removes a document by id: DELETE /api/documents/{id}.
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "missing document id")
		return
	}

	if err := h.ingest.Delete(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "deleted",
		"document_id": id,
	})
}

// ListHandler returns the source-document registry.
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	docs, err := h.documents.ListDocuments(0, 0)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(docs),
		"documents": docs,
	})
}

// FormatsHandler lists the registered ingestion formats.
func (h *DocumentHandler) FormatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"formats": h.ingest.Formats(),
	})
}

// formatFromFilename infers the declared format from the file extension.
func formatFromFilename(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "jpeg":
		return models.FormatJPEG
	case "htm":
		return models.FormatHTML
	case "markdown":
		return models.FormatMarkdown
	default:
		return ext
	}
}
