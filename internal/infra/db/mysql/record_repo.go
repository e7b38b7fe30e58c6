package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medibridge/carepipe/internal/domain/records"
)

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create insert/update a medical record
func (r *RecordRepository) Create(ctx context.Context, rec *records.Record) error {
	const q = `
INSERT INTO medical_records
  (id, owner_id, title, file_url, content_type, extracted_text, summary, created_at)
VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  title=VALUES(title), file_url=VALUES(file_url), content_type=VALUES(content_type),
  extracted_text=VALUES(extracted_text), summary=VALUES(summary);
`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.OwnerID, rec.Title, rec.FileURL, stringOrDash(rec.ContentType),
		rec.ExtractedText, rec.Summary, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	return nil
}

// Get by ID + owner
func (r *RecordRepository) Get(ctx context.Context, owner string, id records.RecordID) (*records.Record, error) {
	const q = `
SELECT id, owner_id, title, file_url, content_type, extracted_text, summary, created_at
FROM medical_records
WHERE owner_id=? AND id=? LIMIT 1;
`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, owner, id))
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
	const q = `
SELECT id, owner_id, title, file_url, content_type, extracted_text, summary, created_at
FROM medical_records
WHERE owner_id=?
ORDER BY created_at DESC, id DESC;
`
	rows, err := r.db.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, fmt.Errorf("query medical records: %w", err)
	}
	defer rows.Close()

	out := []*records.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

