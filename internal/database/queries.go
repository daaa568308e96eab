package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/ummalqura-api/internal/hijri"
)

// querier is the subset of *sql.DB and *sql.Tx the queries need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns nil if no known format matches.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999",
	} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return &t
		}
	}
	return nil
}

const selectTableRecord = `
	SELECT id, version, table_id, calendar_type, iso_start,
	       min_year, max_year, source, checksum, created_at
	FROM hijri_tables
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTableRecord(row rowScanner) (*TableRecord, error) {
	var rec TableRecord
	var createdAt sql.NullString
	err := row.Scan(
		&rec.ID,
		&rec.Version,
		&rec.TableID,
		&rec.CalendarType,
		&rec.ISOStart,
		&rec.MinYear,
		&rec.MaxYear,
		&rec.Source,
		&rec.Checksum,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = parseTimestamp(createdAt)
	return &rec, nil
}

// =============================================================================
// Table Writes
// =============================================================================

// SaveTable stores t in one transaction. A table whose version is already
// stored returns ErrDuplicate.
func (db *DB) SaveTable(ctx context.Context, t *hijri.Table, source string) (*TableRecord, error) {
	var rec *TableRecord
	err := db.WithTx(ctx, func(tx *Tx) error {
		var err error
		rec, err = tx.SaveTable(ctx, t, source)
		return err
	})
	if err != nil {
		return nil, err
	}

	db.logger.Info("hijri table stored",
		slog.String("version", rec.Version),
		slog.Int("min_year", rec.MinYear),
		slog.Int("max_year", rec.MaxYear),
		slog.String("source", source),
	)
	return rec, nil
}

// SaveTable stores t inside the transaction.
func (tx *Tx) SaveTable(ctx context.Context, t *hijri.Table, source string) (*TableRecord, error) {
	return saveTable(ctx, tx, t, source)
}

func saveTable(ctx context.Context, q querier, t *hijri.Table, source string) (*TableRecord, error) {
	rec := &TableRecord{
		Version:      t.Version,
		TableID:      t.ID,
		CalendarType: t.Type,
		ISOStart:     t.ISOStart.String(),
		MinYear:      t.MinYear,
		MaxYear:      t.MaxYear,
		Source:       source,
		Checksum:     t.Checksum(),
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO hijri_tables
			(version, table_id, calendar_type, iso_start, min_year, max_year, source, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Version, rec.TableID, rec.CalendarType, rec.ISOStart,
		rec.MinYear, rec.MaxYear, rec.Source, rec.Checksum)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert table: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get table id: %w", err)
	}

	for _, year := range t.Years() {
		months, _ := t.Months(year)
		_, err := q.ExecContext(ctx,
			"INSERT INTO hijri_table_years (table_id, year, month_lengths) VALUES (?, ?, ?)",
			rec.ID, year, hijri.FormatMonthLengths(months),
		)
		if err != nil {
			return nil, fmt.Errorf("insert year %d: %w", year, err)
		}
	}

	return rec, nil
}

// DeleteTable removes a stored table and its years.
// Returns ErrNotFound if no table has that version.
func (db *DB) DeleteTable(ctx context.Context, version string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM hijri_tables WHERE version = ?", version)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Table Reads
// =============================================================================

// ListTables returns every stored table record, newest first.
func (db *DB) ListTables(ctx context.Context) ([]TableRecord, error) {
	rows, err := db.QueryContext(ctx, selectTableRecord+" ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var records []TableRecord
	for rows.Next() {
		rec, err := scanTableRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return records, nil
}

// LatestTable returns the most recently stored table.
// Returns ErrNotFound if the store is empty.
func (db *DB) LatestTable(ctx context.Context) (*StoredTable, error) {
	return getTable(ctx, db, selectTableRecord+" ORDER BY id DESC LIMIT 1")
}

// GetTableByVersion returns the table stored under version.
// Returns ErrNotFound if there is none.
func (db *DB) GetTableByVersion(ctx context.Context, version string) (*StoredTable, error) {
	return getTable(ctx, db, selectTableRecord+" WHERE version = ?", version)
}

// FindTableByChecksum returns the first table record with checksum.
// Returns ErrNotFound if there is none.
func (db *DB) FindTableByChecksum(ctx context.Context, checksum string) (*TableRecord, error) {
	rec, err := scanTableRecord(db.QueryRowContext(ctx,
		selectTableRecord+" WHERE checksum = ? ORDER BY id LIMIT 1", checksum))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query table by checksum: %w", err)
	}
	return rec, nil
}

func getTable(ctx context.Context, q querier, query string, args ...any) (*StoredTable, error) {
	rec, err := scanTableRecord(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query table: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		"SELECT year, month_lengths FROM hijri_table_years WHERE table_id = ? ORDER BY year",
		rec.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query table years: %w", err)
	}
	defer rows.Close()

	stored := &StoredTable{TableRecord: *rec, Years: make(map[int]string)}
	for rows.Next() {
		var year int
		var months string
		if err := rows.Scan(&year, &months); err != nil {
			return nil, fmt.Errorf("scan table year: %w", err)
		}
		stored.Years[year] = months
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table years: %w", err)
	}
	return stored, nil
}
