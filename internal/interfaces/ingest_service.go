package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// IngestService is the document ingestion entry point: format routing,
// extraction, chunking, embedding and indexed storage. Ingestion errors
// abort the single document and never affect previously ingested ones.
type IngestService interface {
	// Ingest processes one file. A document that yields zero extractable
	// units returns ChunkCount 0 with a nil error.
	Ingest(ctx context.Context, filename, format string, payload []byte) (*models.IngestResult, error)

	// Delete removes a document and cascades into the vector index.
	Delete(ctx context.Context, documentID string) error

	// Formats lists the registered ingestion formats.
	Formats() []string

	// ProcessPending re-embeds documents whose chunks were produced by a
	// different embedding model than the configured one.
	ProcessPending(ctx context.Context) error
}
