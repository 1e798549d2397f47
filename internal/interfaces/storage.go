package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// DocumentStorage persists the source-document registry.
type DocumentStorage interface {
	SaveDocument(doc *models.SourceDocument) error
	GetDocument(id string) (*models.SourceDocument, error)
	DeleteDocument(id string) error
	ListDocuments(limit, offset int) ([]*models.SourceDocument, error)
	CountDocuments() (int, error)
}

// RecordStorage persists ticket and knowledge-base records for the
// structured search path.
type RecordStorage interface {
	SaveRecord(rec *models.Record) error
	GetRecord(id string) (*models.Record, error)
	ListRecords(kind models.RecordKind, limit int) ([]*models.Record, error)
	AllRecords() ([]*models.Record, error)
	GetStats() (*models.RecordStats, error)
}

// RecordSearchIndex is the full-text candidate index shadowing the record
// store. Writes to RecordStorage keep it in sync; MatchRecords returns
// candidate ids in rank order for the structured search path to re-score.
type RecordSearchIndex interface {
	IndexRecord(rec *models.Record) error
	RemoveRecord(id string) error
	MatchRecords(ctx context.Context, match string, limit int) ([]string, error)
	Clear() error
}

// VectorStorage persists embedded chunks. ReplaceDocumentChunks performs the
// swap in a single transaction so readers loading from storage never see a
// half-replaced document.
type VectorStorage interface {
	ReplaceDocumentChunks(documentID string, chunks []models.EmbeddedChunk) error
	DeleteDocumentChunks(documentID string) error
	LoadAll() ([]models.EmbeddedChunk, error)
	CountChunks() (int, error)
}

// StorageManager owns the storage backends and their connections.
type StorageManager interface {
	DocumentStorage() DocumentStorage
	RecordStorage() RecordStorage
	VectorStorage() VectorStorage
	RecordSearchIndex() RecordSearchIndex
	Close() error
}
