package sqlite

// Records live in Badger; this schema only carries the FTS5 shadow used for
// structured-search candidate retrieval. It is rebuilt from the record store
// on startup, so losing it is never a data loss.
const schemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
	record_id UNINDEXED,
	title,
	body
);
`

// initSchema initializes the database schema
func (s *SQLiteDB) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
