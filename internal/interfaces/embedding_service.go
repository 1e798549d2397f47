package interfaces

import "context"

// EmbeddingService is the external embedding function. Embed is
// deterministic for a given model id and text. Failures are classified as
// transient (retryable) or permanent via models.EmbeddingError.
type EmbeddingService interface {
	// Embed generates a fixed-dimension vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelID identifies the embedding model; the vector index partitions
	// by it.
	ModelID() string

	// Dimension returns the vector dimensionality.
	Dimension() int
}
