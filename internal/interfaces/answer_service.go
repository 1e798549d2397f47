package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// AnswerService is the query entry point: hybrid retrieval, context
// assembly and grounded answer synthesis. A failing retrieval source
// contributes zero hits; only both sources failing is fatal to the query
// (models.ErrIndexUnavailable).
type AnswerService interface {
	Answer(ctx context.Context, question string) (*models.AnswerResult, error)
}
