package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
)

// Manager owns the Badger connection and the typed storage facades.
type Manager struct {
	db        *BadgerDB
	documents interfaces.DocumentStorage
	records   interfaces.RecordStorage
	vectors   interfaces.VectorStorage
	logger    arbor.ILogger
}

// NewManager opens the database and wires the storage facades. Record writes
// are mirrored into searchIndex so full-text candidates stay current.
func NewManager(config *common.BadgerConfig, searchIndex interfaces.RecordSearchIndex, logger arbor.ILogger) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return &Manager{
		db:        db,
		documents: NewDocumentStorage(db, logger),
		records:   NewRecordStorage(db, searchIndex, logger),
		vectors:   NewVectorStorage(db, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.documents
}

func (m *Manager) RecordStorage() interfaces.RecordStorage {
	return m.records
}

func (m *Manager) VectorStorage() interfaces.VectorStorage {
	return m.vectors
}

// Close closes the underlying database connection.
func (m *Manager) Close() error {
	return m.db.Close()
}
