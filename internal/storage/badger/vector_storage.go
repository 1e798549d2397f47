package badger

import (
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// chunkRecord is the persisted form of an embedded chunk. DocumentID is
// lifted to the top level so badgerhold queries don't depend on promoted
// field resolution.
type chunkRecord struct {
	Key        string
	DocumentID string
	Chunk      models.EmbeddedChunk
}

// VectorStorage persists embedded chunks in Badger. Per-document replace
// runs in a single Badger transaction so a reader loading the store never
// observes a half-replaced document.
type VectorStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVectorStorage creates a new VectorStorage instance
func NewVectorStorage(db *BadgerDB, logger arbor.ILogger) interfaces.VectorStorage {
	return &VectorStorage{
		db:     db,
		logger: logger,
	}
}

// ReplaceDocumentChunks atomically swaps all persisted chunks for a document.
func (s *VectorStorage) ReplaceDocumentChunks(documentID string, chunks []models.EmbeddedChunk) error {
	if documentID == "" {
		return fmt.Errorf("document ID is required")
	}

	store := s.db.Store()
	err := store.Badger().Update(func(tx *badgerdb.Txn) error {
		if err := store.TxDeleteMatching(tx, &chunkRecord{}, badgerhold.Where("DocumentID").Eq(documentID)); err != nil {
			return fmt.Errorf("failed to delete prior chunks: %w", err)
		}
		for i := range chunks {
			rec := chunkRecord{
				Key:        chunks[i].Key(),
				DocumentID: chunks[i].DocumentID,
				Chunk:      chunks[i],
			}
			if err := store.TxUpsert(tx, rec.Key, &rec); err != nil {
				return fmt.Errorf("failed to store chunk %s: %w", rec.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace chunks for %s: %w", documentID, err)
	}

	s.logger.Debug().
		Str("document_id", documentID).
		Int("chunks", len(chunks)).
		Msg("Replaced document chunks")

	return nil
}

// DeleteDocumentChunks removes all persisted chunks for a document.
// No-op if the document is absent.
func (s *VectorStorage) DeleteDocumentChunks(documentID string) error {
	if err := s.db.Store().DeleteMatching(&chunkRecord{}, badgerhold.Where("DocumentID").Eq(documentID)); err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", documentID, err)
	}
	return nil
}

// LoadAll returns every persisted chunk; the in-memory index calls this once
// at startup.
func (s *VectorStorage) LoadAll() ([]models.EmbeddedChunk, error) {
	var recs []chunkRecord
	if err := s.db.Store().Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}

	chunks := make([]models.EmbeddedChunk, len(recs))
	for i := range recs {
		chunks[i] = recs[i].Chunk
	}
	return chunks, nil
}

func (s *VectorStorage) CountChunks() (int, error) {
	count, err := s.db.Store().Count(&chunkRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(count), nil
}
