package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/storage/badger"
	"github.com/ternarybob/responsum/internal/storage/sqlite"
)

// Manager composes the two storage engines: Badger holds documents, records
// and vectors; SQLite carries the FTS5 candidate index over records.
type Manager struct {
	badger *badger.Manager
	search *sqlite.SQLiteDB
	index  interfaces.RecordSearchIndex
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens both engines and rebuilds the full-text index from the
// record store so the two can never drift across restarts.
func NewManager(config *common.StorageConfig, logger arbor.ILogger) (*Manager, error) {
	searchDB, err := sqlite.NewSQLiteDB(logger, &config.SQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	index := sqlite.NewRecordIndex(searchDB, logger)

	badgerManager, err := badger.NewManager(&config.Badger, index, logger)
	if err != nil {
		searchDB.Close()
		return nil, err
	}

	m := &Manager{
		badger: badgerManager,
		search: searchDB,
		index:  index,
		logger: logger,
	}
	if err := m.rebuildSearchIndex(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// rebuildSearchIndex re-derives the FTS shadow from the record store.
func (m *Manager) rebuildSearchIndex() error {
	records, err := m.badger.RecordStorage().AllRecords()
	if err != nil {
		return fmt.Errorf("failed to load records for index rebuild: %w", err)
	}
	if err := m.index.Clear(); err != nil {
		return err
	}
	for _, rec := range records {
		if err := m.index.IndexRecord(rec); err != nil {
			return fmt.Errorf("failed to rebuild index for record %s: %w", rec.ID, err)
		}
	}

	m.logger.Debug().Int("records", len(records)).Msg("Search index rebuilt")
	return nil
}

func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.badger.DocumentStorage()
}

func (m *Manager) RecordStorage() interfaces.RecordStorage {
	return m.badger.RecordStorage()
}

func (m *Manager) VectorStorage() interfaces.VectorStorage {
	return m.badger.VectorStorage()
}

func (m *Manager) RecordSearchIndex() interfaces.RecordSearchIndex {
	return m.index
}

// Close closes both engines, reporting the first failure.
func (m *Manager) Close() error {
	err := m.badger.Close()
	if cerr := m.search.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
