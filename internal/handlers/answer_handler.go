package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
)

// AnswerHandler exposes the query entry point over HTTP.
type AnswerHandler struct {
	answers interfaces.AnswerService
	logger  arbor.ILogger
}

func NewAnswerHandler(answers interfaces.AnswerService, logger arbor.ILogger) *AnswerHandler {
	return &AnswerHandler{
		answers: answers,
		logger:  logger,
	}
}

type answerRequest struct {
	Question string `json:"question"`
}

// AnswerHandler responds to POST /api/answer with a grounded answer payload.
func (h *AnswerHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.answers.Answer(r.Context(), req.Question)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Answer query failed")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
