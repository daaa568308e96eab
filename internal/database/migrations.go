package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1HijriTables,
	2: migrationV2TableChecksum,
}

// migrationV1HijriTables creates the table store.
//
// A stored table is one hijri_tables row plus one hijri_table_years row per
// Hijri year. Month lengths are kept in the same "30 29 ..." form the
// properties files use so a stored table re-validates through the loader.
const migrationV1HijriTables = `
-- Migration 001: Hijri month-length tables

CREATE TABLE IF NOT EXISTS hijri_tables (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Free-form version tag from the table's "version" key
    version TEXT NOT NULL UNIQUE,

    -- Optional "id" and "type" keys, kept for round trips
    table_id TEXT NOT NULL DEFAULT '',
    calendar_type TEXT NOT NULL DEFAULT '',

    -- Gregorian date (yyyy-mm-dd) of 1 Muharram of min_year
    iso_start TEXT NOT NULL,

    min_year INTEGER NOT NULL,
    max_year INTEGER NOT NULL,

    -- Where the table came from: a file path, "embedded" or "api"
    source TEXT NOT NULL DEFAULT '',

    created_at TEXT NOT NULL DEFAULT (datetime('now')),

    CHECK (max_year >= min_year)
);

CREATE TABLE IF NOT EXISTS hijri_table_years (
    table_id INTEGER NOT NULL,
    year INTEGER NOT NULL,

    -- Twelve space separated month lengths, Muharram first
    month_lengths TEXT NOT NULL,

    PRIMARY KEY (table_id, year),
    FOREIGN KEY (table_id) REFERENCES hijri_tables(id) ON DELETE CASCADE
);
`

// migrationV2TableChecksum adds a content checksum so re-imports of the same
// data under a new version can be spotted.
const migrationV2TableChecksum = `
-- Migration 002: table checksum

ALTER TABLE hijri_tables ADD COLUMN checksum TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS idx_hijri_tables_checksum
    ON hijri_tables(checksum);
`
