package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// StructuredSearch is the keyword/relevance search over ticket and
// knowledge-base records. Read-only from this subsystem's perspective.
// Scores are normalized to [0,1] and monotonic in match quality.
type StructuredSearch interface {
	SearchRelevant(ctx context.Context, query string, limit int) ([]models.RetrievalHit, error)
}
