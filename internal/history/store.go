package history

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// UnknownCount marks an entry whose match count was not computed
const UnknownCount int64 = -1

// Entry is one applied filter
type Entry struct {
	ID         int64
	Expression string
	Filter     models.TagFilter
	Source     string // catalog the filter was applied against, e.g. public.logs
	MatchCount int64
	AppliedAt  time.Time
}

// Store manages filter history persistence
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a new history store
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create schema
	_, err = db.Exec(schemaSQL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Add records an applied filter; empty filters are skipped
func (s *Store) Add(entry Entry) error {
	if len(entry.Filter.Items) == 0 {
		return nil
	}

	data, err := json.Marshal(entry.Filter)
	if err != nil {
		return fmt.Errorf("failed to encode filter: %w", err)
	}

	appliedAt := entry.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = s.now()
	}

	_, err = s.db.Exec(`
		INSERT INTO filter_history
		(expression, filter_json, source, match_count, applied_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.Expression,
		string(data),
		entry.Source,
		entry.MatchCount,
		appliedAt.UnixNano(),
	)
	return err
}

// GetRecent retrieves the most recent history entries
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, expression, filter_json, source, match_count, applied_at
		FROM filter_history
		ORDER BY applied_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Search searches history by expression text
func (s *Store) Search(text string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, expression, filter_json, source, match_count, applied_at
		FROM filter_history
		WHERE expression LIKE ?
		ORDER BY applied_at DESC, id DESC
		LIMIT ?`, "%"+text+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Prune keeps the newest max entries and returns how many were removed
func (s *Store) Prune(max int) (int64, error) {
	res, err := s.db.Exec(`
		DELETE FROM filter_history
		WHERE id NOT IN (
			SELECT id FROM filter_history
			ORDER BY applied_at DESC, id DESC
			LIMIT ?
		)`, max)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var filterJSON string
		var appliedAt int64

		err := rows.Scan(
			&e.ID,
			&e.Expression,
			&filterJSON,
			&e.Source,
			&e.MatchCount,
			&appliedAt,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(filterJSON), &e.Filter); err != nil {
			return nil, fmt.Errorf("history entry %d: %w", e.ID, err)
		}
		e.AppliedAt = time.Unix(0, appliedAt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
