package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
)

// StatusHandler reports corpus and index state.
type StatusHandler struct {
	documents interfaces.DocumentStorage
	records   interfaces.RecordStorage
	index     interfaces.VectorIndex
	logger    arbor.ILogger
}

func NewStatusHandler(documents interfaces.DocumentStorage, records interfaces.RecordStorage, index interfaces.VectorIndex, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		documents: documents,
		records:   records,
		index:     index,
		logger:    logger,
	}
}

// GetStatusHandler serves GET /api/status.
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	docCount, err := h.documents.CountDocuments()
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	recStats, err := h.records.GetStats()
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":        common.GetVersion(),
		"documents":      docCount,
		"indexed_chunks": h.index.Count(),
		"records":        recStats,
	})
}
