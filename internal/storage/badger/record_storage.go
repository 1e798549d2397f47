package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// RecordStorage implements the RecordStorage interface for Badger. It holds
// the ticket and knowledge-base records served by the structured search
// path, and mirrors every write into the full-text index shadowing it.
type RecordStorage struct {
	db     *BadgerDB
	search interfaces.RecordSearchIndex
	logger arbor.ILogger
}

// NewRecordStorage creates a new RecordStorage instance
func NewRecordStorage(db *BadgerDB, search interfaces.RecordSearchIndex, logger arbor.ILogger) interfaces.RecordStorage {
	return &RecordStorage{
		db:     db,
		search: search,
		logger: logger,
	}
}

func (s *RecordStorage) SaveRecord(rec *models.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	if err := s.db.Store().Upsert(rec.ID, rec); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	if s.search != nil {
		if err := s.search.IndexRecord(rec); err != nil {
			return fmt.Errorf("record saved but not indexed: %w", err)
		}
	}
	return nil
}

func (s *RecordStorage) GetRecord(id string) (*models.Record, error) {
	var rec models.Record
	if err := s.db.Store().Get(id, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("record not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &rec, nil
}

func (s *RecordStorage) ListRecords(kind models.RecordKind, limit int) ([]*models.Record, error) {
	query := badgerhold.Where("Kind").Eq(kind)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recs []models.Record
	if err := s.db.Store().Find(&recs, query); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	result := make([]*models.Record, len(recs))
	for i := range recs {
		result[i] = &recs[i]
	}
	return result, nil
}

func (s *RecordStorage) AllRecords() ([]*models.Record, error) {
	var recs []models.Record
	if err := s.db.Store().Find(&recs, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	result := make([]*models.Record, len(recs))
	for i := range recs {
		result[i] = &recs[i]
	}
	return result, nil
}

func (s *RecordStorage) GetStats() (*models.RecordStats, error) {
	total, err := s.db.Store().Count(&models.Record{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	byKind := make(map[string]int)
	for _, kind := range []models.RecordKind{models.RecordTicket, models.RecordKB} {
		count, err := s.db.Store().Count(&models.Record{}, badgerhold.Where("Kind").Eq(kind))
		if err != nil {
			return nil, fmt.Errorf("failed to count records by kind: %w", err)
		}
		byKind[string(kind)] = int(count)
	}

	return &models.RecordStats{
		TotalRecords: int(total),
		ByKind:       byKind,
	}, nil
}
