package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medibridge/carepipe/internal/domain/records"
)

type RecordRepository struct{ db *sql.DB }

func NewRecordRepository(db *sql.DB) *RecordRepository { return &RecordRepository{db: db} }

const selectRecord = `
SELECT id, owner_id, title, file_url, content_type, extracted_text, summary, created_at
FROM medical_records`

// Create insert/update a medical record
func (r *RecordRepository) Create(ctx context.Context, rec *records.Record) error {
	const q = `
INSERT INTO medical_records
  (id, owner_id, title, file_url, content_type, extracted_text, summary, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  file_url = EXCLUDED.file_url,
  content_type = EXCLUDED.content_type,
  extracted_text = EXCLUDED.extracted_text,
  summary = EXCLUDED.summary;`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.OwnerID, rec.Title, rec.FileURL, rec.ContentType,
		rec.ExtractedText, rec.Summary, createdAt,
	); err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	return nil
}

// Get by ID + owner
func (r *RecordRepository) Get(ctx context.Context, owner string, id records.RecordID) (*records.Record, error) {
	row := r.db.QueryRowContext(ctx, selectRecord+`
WHERE owner_id=$1 AND id=$2
LIMIT 1;`, owner, id)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get medical record: %w", err)
	}
	return rec, nil
}

// FindByOwner returns all records of one owner, newest first
func (r *RecordRepository) FindByOwner(ctx context.Context, owner string) ([]*records.Record, error) {
	rows, err := r.db.QueryContext(ctx, selectRecord+`
WHERE owner_id=$1
ORDER BY created_at DESC, id DESC;`, owner)
	if err != nil {
		return nil, fmt.Errorf("query medical records: %w", err)
	}
	defer rows.Close()

	out := []*records.Record{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scan(row interface{ Scan(...any) error }) (*records.Record, error) {
	var rec records.Record
	if err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.Title, &rec.FileURL, &rec.ContentType,
		&rec.ExtractedText, &rec.Summary, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
