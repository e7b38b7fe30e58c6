package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Connect opens the pool and pings it. The caller owns Close.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// Migrate creates the medical_records table when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	const q = `
CREATE TABLE IF NOT EXISTS medical_records (
  id             VARCHAR(64)  NOT NULL PRIMARY KEY,
  owner_id       VARCHAR(128) NOT NULL,
  title          VARCHAR(255) NOT NULL,
  file_url       TEXT         NOT NULL,
  content_type   VARCHAR(128) NOT NULL DEFAULT '-',
  extracted_text LONGTEXT     NOT NULL,
  summary        TEXT         NOT NULL,
  created_at     DATETIME(6)  NOT NULL,
  INDEX idx_medical_records_owner (owner_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("migrate medical_records: %w", err)
	}
	return nil
}
