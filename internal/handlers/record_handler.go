package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// RecordHandler manages the ticket/KB records backing structured search.
type RecordHandler struct {
	records interfaces.RecordStorage
	logger  arbor.ILogger
}

func NewRecordHandler(records interfaces.RecordStorage, logger arbor.ILogger) *RecordHandler {
	return &RecordHandler{
		records: records,
		logger:  logger,
	}
}

type recordRequest struct {
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Status   string `json:"status"`
	URL      string `json:"url"`
}

// RecordsHandler serves /api/records: POST creates a record, GET lists them
// (optionally filtered with ?kind=ticket|kb).
func (h *RecordHandler) RecordsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		h.create(w, r)
	case "GET":
		h.list(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RecordHandler) create(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	kind := models.RecordKind(req.Kind)
	if kind != models.RecordTicket && kind != models.RecordKB {
		WriteError(w, http.StatusBadRequest, "kind must be ticket or kb")
		return
	}
	if req.Title == "" || req.Text == "" {
		WriteError(w, http.StatusBadRequest, "title and text are required")
		return
	}

	now := time.Now()
	rec := &models.Record{
		ID:        common.NewRecordID(),
		Kind:      kind,
		Title:     req.Title,
		Text:      req.Text,
		Category:  req.Category,
		Status:    req.Status,
		URL:       req.URL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.records.SaveRecord(rec); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, rec)
}

func (h *RecordHandler) list(w http.ResponseWriter, r *http.Request) {
	kind := models.RecordKind(r.URL.Query().Get("kind"))

	var (
		recs []*models.Record
		err  error
	)
	if kind != "" {
		recs, err = h.records.ListRecords(kind, 0)
	} else {
		recs, err = h.records.AllRecords()
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(recs),
		"records": recs,
	})
}
