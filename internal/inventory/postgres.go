package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the scan_records table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS scan_records (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    path        TEXT NOT NULL UNIQUE,
    split       TEXT NOT NULL DEFAULT '',
    selection   TEXT NOT NULL,
    subcategory TEXT NOT NULL DEFAULT '',
    snr         DOUBLE PRECISION NOT NULL,
    label       TEXT NOT NULL DEFAULT '',
    confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
    scanned_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_scan_records_selection ON scan_records(selection);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling [PostgresStore.Migrate]
// to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// scan_records table and index if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("inventory: migrate: %w", err)
	}
	return nil
}

// Insert writes a record, replacing any previous record for the same path.
// On success the record's ID and ScannedAt are filled in from the database.
func (s *PostgresStore) Insert(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	const query = `
		INSERT INTO scan_records (path, split, selection, subcategory, snr, label, confidence)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (path) DO UPDATE SET
			split = EXCLUDED.split,
			selection = EXCLUDED.selection,
			subcategory = EXCLUDED.subcategory,
			snr = EXCLUDED.snr,
			label = EXCLUDED.label,
			confidence = EXCLUDED.confidence,
			scanned_at = now()
		RETURNING id, scanned_at`

	err := s.db.QueryRow(ctx, query,
		rec.Path, rec.Split, rec.Selection, rec.Subcategory,
		rec.SNR, rec.Label, rec.Confidence,
	).Scan(&rec.ID, &rec.ScannedAt)
	if err != nil {
		return fmt.Errorf("inventory: insert %q: %w", rec.Path, err)
	}
	return nil
}

// ListBySelection returns all records for the given selection, ordered by
// path. An empty selection returns every record.
func (s *PostgresStore) ListBySelection(ctx context.Context, selection string) ([]Record, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if selection == "" {
		const query = `
			SELECT id, path, split, selection, subcategory, snr, label, confidence, scanned_at
			FROM scan_records
			ORDER BY path`
		rows, err = s.db.Query(ctx, query)
	} else {
		const query = `
			SELECT id, path, split, selection, subcategory, snr, label, confidence, scanned_at
			FROM scan_records
			WHERE selection = $1
			ORDER BY path`
		rows, err = s.db.Query(ctx, query, selection)
	}
	if err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.Path, &rec.Split, &rec.Selection, &rec.Subcategory,
			&rec.SNR, &rec.Label, &rec.Confidence, &rec.ScannedAt,
		); err != nil {
			return nil, fmt.Errorf("inventory: scan row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	return recs, nil
}
