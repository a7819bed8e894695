//go:build sqlite
// +build sqlite

package jobboard

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend implements the Backend interface using SQLite.
// Position, type and priority are kept in columns for ad-hoc queries; the
// full record is stored as a codec-encoded payload.
type SQLiteBackend struct {
	db     *sql.DB
	logger *slog.Logger
	codec  Codec
}

// NewSQLiteBackend creates a new SQLite backend.
// The database file will be created if it doesn't exist.
// dbPath is the path to the SQLite database file.
// codec encodes the payload column; nil means JSON.
func NewSQLiteBackend(dbPath string, logger *slog.Logger, codec Codec) (*SQLiteBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if codec == nil {
		codec = &JSONCodec{}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; concurrent saves queue on the pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	backend := &SQLiteBackend{db: db, logger: logger, codec: codec}

	// Initialize schema
	if err := backend.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return backend, nil
}

// Close closes the database connection
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// initSchema initializes the database schema
func (b *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY,
		job_type TEXT NOT NULL,
		pos_x INTEGER NOT NULL,
		pos_y INTEGER NOT NULL,
		pos_z INTEGER NOT NULL,
		priority INTEGER NOT NULL,
		worked_by INTEGER,
		payload BLOB NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_pos ON jobs(pos_x, pos_y, pos_z);
	CREATE INDEX IF NOT EXISTS idx_jobs_type ON jobs(job_type);
	`

	_, err := b.db.Exec(schema)
	return err
}

// SaveJobs inserts or replaces records by id in one transaction.
func (b *SQLiteBackend) SaveJobs(ctx context.Context, records []*JobRecord) error {
	var err error
	if ctx, err = normalizeContext(ctx); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// A saved id may now sit on another tile; clear conflicting positions first.
	clear, err := tx.PrepareContext(ctx, `DELETE FROM jobs WHERE pos_x = ? AND pos_y = ? AND pos_z = ? AND id != ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer clear.Close()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO jobs (id, job_type, pos_x, pos_y, pos_z, priority, worked_by, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			job_type = excluded.job_type,
			pos_x = excluded.pos_x,
			pos_y = excluded.pos_y,
			pos_z = excluded.pos_z,
			priority = excluded.priority,
			worked_by = excluded.worked_by,
			payload = excluded.payload
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		payload, err := b.codec.Encode(rec)
		if err != nil {
			return fmt.Errorf("failed to encode job %d: %w", rec.ID, err)
		}
		if _, err := clear.ExecContext(ctx, rec.Pos.X, rec.Pos.Y, rec.Pos.Z, rec.ID); err != nil {
			return fmt.Errorf("failed to clear position of job %d: %w", rec.ID, err)
		}
		var workedBy any
		if rec.Worked {
			workedBy = rec.WorkedBy
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Type, rec.Pos.X, rec.Pos.Y, rec.Pos.Z, rec.Priority, workedBy, payload); err != nil {
			return fmt.Errorf("failed to insert job %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	b.logger.Debug("SaveJobs", "count", len(records), "codec", b.codec.Name())
	return nil
}

// DeleteJobs deletes records by id.
func (b *SQLiteBackend) DeleteJobs(ctx context.Context, jobIDs []uint) error {
	var err error
	if ctx, err = normalizeContext(ctx); err != nil {
		return err
	}
	if len(jobIDs) == 0 {
		return nil
	}

	placeholders := make([]string, len(jobIDs))
	args := make([]any, len(jobIDs))
	for i, id := range jobIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf("DELETE FROM jobs WHERE id IN (%s)", strings.Join(placeholders, ","))
	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete jobs: %w", err)
	}
	b.logger.Debug("DeleteJobs", "count", len(jobIDs))
	return nil
}

// LoadJobs returns every stored record, sorted by id.
func (b *SQLiteBackend) LoadJobs(ctx context.Context) ([]*JobRecord, error) {
	var err error
	if ctx, err = normalizeContext(ctx); err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, `SELECT payload FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var records []*JobRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		rec, err := b.codec.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (b *SQLiteBackend) Count(ctx context.Context) (int, error) {
	var err error
	if ctx, err = normalizeContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}
