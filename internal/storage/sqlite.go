package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/windguide/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		topic TEXT NOT NULL,
		section_id TEXT NOT NULL,
		section_label TEXT,
		description TEXT,
		keywords TEXT,
		icon TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_entries_position ON entries(position);

	CREATE TABLE IF NOT EXISTS query_log (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		results INTEGER NOT NULL,
		took_us INTEGER NOT NULL,
		source TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_query_log_query ON query_log(query);
	CREATE INDEX IF NOT EXISTS idx_query_log_created_at ON query_log(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveEntries replaces every stored entry with entries, keeping their order.
func (s *SQLiteStorage) SaveEntries(ctx context.Context, entries []*models.IndexEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, position, topic, section_id, section_label, description, keywords, icon, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i, e := range entries {
		keywordsJSON, err := json.Marshal(e.Keywords)
		if err != nil {
			return fmt.Errorf("failed to marshal keywords: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, i, e.Topic, e.SectionID, e.SectionLabel, e.Description, string(keywordsJSON), e.Icon, now); err != nil {
			return fmt.Errorf("failed to insert entry %q: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

const entryColumns = `id, topic, section_id, section_label, description, keywords, icon`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.IndexEntry, error) {
	var e models.IndexEntry
	var label, desc, keywordsJSON, icon sql.NullString
	if err := row.Scan(&e.ID, &e.Topic, &e.SectionID, &label, &desc, &keywordsJSON, &icon); err != nil {
		return nil, err
	}
	e.SectionLabel = label.String
	e.Description = desc.String
	e.Icon = icon.String
	if keywordsJSON.String != "" && keywordsJSON.String != "null" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &e.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords for %q: %w", e.ID, err)
		}
	}
	return &e, nil
}

// ListEntries returns all entries in saved order.
func (s *SQLiteStorage) ListEntries(ctx context.Context) ([]*models.IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.IndexEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry returns an entry by ID.
func (s *SQLiteStorage) GetEntry(ctx context.Context, id string) (*models.IndexEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CountEntries returns the number of stored entries.
func (s *SQLiteStorage) CountEntries(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count)
	return count, err
}

// RecordQuery appends rec to the query log. The query is stored lower-cased and
// trimmed so variants aggregate together. ID and CreatedAt are filled when empty.
func (s *SQLiteStorage) RecordQuery(ctx context.Context, rec *models.QueryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	q := strings.ToLower(strings.TrimSpace(rec.Query))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_log (id, query, results, took_us, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, q, rec.Results, rec.Took.Microseconds(), rec.Source, rec.CreatedAt,
	)
	return err
}

// TopQueries returns the most frequent logged queries, most frequent first.
func (s *SQLiteStorage) TopQueries(ctx context.Context, limit int) ([]models.QueryStat, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, COUNT(*) AS n, MAX(created_at), SUM(CASE WHEN results = 0 THEN 1 ELSE 0 END)
		 FROM query_log GROUP BY query ORDER BY n DESC, query ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.QueryStat
	for rows.Next() {
		var st models.QueryStat
		var last string
		if err := rows.Scan(&st.Query, &st.Count, &last, &st.ZeroHits); err != nil {
			return nil, err
		}
		st.LastSeen = parseTimestamp(last)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// MAX() drops the column's declared type, so the driver hands back text.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CountQueries returns the total number of logged searches.
func (s *SQLiteStorage) CountQueries(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_log`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
