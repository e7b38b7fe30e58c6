// Package sqlite is the embedded single-node persistence gateway.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/medibridge/carepipe/internal/domain/records"
)

// RecordRepository implements records.Repository on a local SQLite file.
type RecordRepository struct {
	db *sql.DB
}

// Open opens or creates the database at path and initializes the schema.
// Parent directories are created if they do not exist.
func Open(path string) (*RecordRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &RecordRepository{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS medical_records (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		file_url TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		extracted_text TEXT NOT NULL,
		summary TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_medical_records_owner ON medical_records(owner_id, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// DB exposes the pool for health checks.
func (r *RecordRepository) DB() *sql.DB { return r.db }

func (r *RecordRepository) Close() error { return r.db.Close() }

// Create inserts a record, replacing one with the same id.
func (r *RecordRepository) Create(ctx context.Context, rec *records.Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO medical_records (id, owner_id, title, file_url, content_type, extracted_text, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   file_url = excluded.file_url,
		   content_type = excluded.content_type,
		   extracted_text = excluded.extracted_text,
		   summary = excluded.summary`,
		rec.ID, rec.OwnerID, rec.Title, rec.FileURL, rec.ContentType,
		rec.ExtractedText, rec.Summary, createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	return nil
}

// Get returns one record of owner, records.ErrNotFound otherwise.
func (r *RecordRepository) Get(ctx context.Context, owner string, id records.RecordID) (*records.Record, error) {
	var rec records.Record
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, file_url, content_type, extracted_text, summary, created_at
		 FROM medical_records WHERE owner_id = ? AND id = ?`, owner, id,
	).Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.FileURL, &rec.ContentType,
		&rec.ExtractedText, &rec.Summary, &rec.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get medical record: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

// FindByOwner lists owner's records, newest first.
func (r *RecordRepository) FindByOwner(ctx context.Context, owner string) ([]*records.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, file_url, content_type, extracted_text, summary, created_at
		 FROM medical_records WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("query medical records: %w", err)
	}
	defer rows.Close()

	out := []*records.Record{}
	for rows.Next() {
		var rec records.Record
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.FileURL, &rec.ContentType,
			&rec.ExtractedText, &rec.Summary, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, &rec)
	}
	return out, rows.Err()
}
