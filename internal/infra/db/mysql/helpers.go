package mysql

import (
	"strings"

	"github.com/medibridge/carepipe/internal/domain/records"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// dashToEmpty reverses stringOrDash on read.
func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*records.Record, error) {
	var r records.Record
	if err := row.Scan(
		&r.ID, &r.OwnerID, &r.Title, &r.FileURL, &r.ContentType,
		&r.ExtractedText, &r.Summary, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	r.ContentType = dashToEmpty(r.ContentType)
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}
