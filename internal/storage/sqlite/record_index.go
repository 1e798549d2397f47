package sqlite

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// RecordIndex is the FTS5 candidate index over ticket and knowledge-base
// records. It stores only the searchable text; the record store stays the
// source of truth and callers fetch full records by id.
type RecordIndex struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

var _ interfaces.RecordSearchIndex = (*RecordIndex)(nil)

// NewRecordIndex creates the index over an open database.
func NewRecordIndex(db *SQLiteDB, logger arbor.ILogger) *RecordIndex {
	return &RecordIndex{
		db:     db,
		logger: logger,
	}
}

// IndexRecord replaces the indexed text for a record. Re-indexing the same
// id never produces duplicate rows.
func (r *RecordIndex) IndexRecord(rec *models.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	tx, err := r.db.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records_fts WHERE record_id = ?", rec.ID); err != nil {
		return fmt.Errorf("failed to clear stale index entry: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO records_fts(record_id, title, body) VALUES (?, ?, ?)",
		rec.ID, rec.Title, rec.Text,
	); err != nil {
		return fmt.Errorf("failed to index record: %w", err)
	}

	return tx.Commit()
}

// RemoveRecord drops a record from the index.
func (r *RecordIndex) RemoveRecord(id string) error {
	if _, err := r.db.db.Exec("DELETE FROM records_fts WHERE record_id = ?", id); err != nil {
		return fmt.Errorf("failed to remove record from index: %w", err)
	}
	return nil
}

// MatchRecords runs an FTS5 MATCH query and returns candidate record ids in
// rank order.
func (r *RecordIndex) MatchRecords(ctx context.Context, match string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.db.QueryContext(ctx,
		"SELECT record_id FROM records_fts WHERE records_fts MATCH ? ORDER BY rank LIMIT ?",
		match, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("full-text query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan record id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Clear empties the index, ahead of a rebuild from the record store.
func (r *RecordIndex) Clear() error {
	if _, err := r.db.db.Exec("DELETE FROM records_fts"); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	return nil
}
