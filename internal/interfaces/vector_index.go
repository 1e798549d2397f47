package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// VectorIndex stores embedded chunks and serves nearest-neighbor search.
// The similarity metric is fixed per deployment (cosine); mixing metrics in
// one index is disallowed.
//
// Mutations are serialized per document id: at most one ReplaceDocument or
// Delete is in flight for a given id, while distinct ids proceed
// concurrently. Readers never observe a partially replaced document.
type VectorIndex interface {
	// ReplaceDocument atomically swaps all chunks for a document. Old
	// entries are removed only after the new ones are durably written; on
	// failure the prior version stays intact.
	ReplaceDocument(ctx context.Context, documentID string, chunks []models.EmbeddedChunk) error

	// Search returns up to k hits ordered by descending similarity,
	// comparing only vectors with a matching model id. An empty index
	// yields an empty result, never an error.
	Search(ctx context.Context, query []float32, k int, modelID string) ([]models.RetrievalHit, error)

	// Delete removes all chunks belonging to a document; no-op if absent.
	Delete(ctx context.Context, documentID string) error

	// Count returns the number of indexed chunks.
	Count() int
}
