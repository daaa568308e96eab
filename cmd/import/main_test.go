package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/ummalqura-api/internal/database"
	"github.com/zapponejosh/ummalqura-api/internal/logger"
)

const smallTable = `version=small-1
iso-start=2015-10-14
1437=30 29 30 30 29 29 30 29 30 29 29 30
1438=29 30 29 30 29 30 30 29 30 29 30 29
`

func openStore(t *testing.T, path string) *database.DB {
	t.Helper()
	db, err := database.Open(database.DefaultConfig(path), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_BundledTable(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ummalqura.db")

	require.NoError(t, run(ctx, options{dbPath: dbPath}, logger.Discard()))

	db := openStore(t, dbPath)
	stored, err := db.LatestTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, "embedded", stored.Source)
	assert.Equal(t, 1365, stored.MinYear)
	assert.Equal(t, 1500, stored.MaxYear)
	assert.Len(t, stored.Years, 136)
}

func TestRun_TableFileAndReplace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ummalqura.db")
	tablePath := filepath.Join(dir, "small.properties")
	require.NoError(t, os.WriteFile(tablePath, []byte(smallTable), 0o644))

	opts := options{tablePath: tablePath, dbPath: dbPath}
	require.NoError(t, run(ctx, opts, logger.Discard()))

	// Same version again is refused without -replace.
	err := run(ctx, opts, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-replace")

	opts.replace = true
	opts.source = "manual"
	require.NoError(t, run(ctx, opts, logger.Discard()))

	db := openStore(t, dbPath)
	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "manual", tables[0].Source)
	assert.Equal(t, "small-1", tables[0].Version)
}

func TestRun_SameRowsUnderNewVersion(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ummalqura.db")

	v1 := filepath.Join(dir, "v1.properties")
	v2 := filepath.Join(dir, "v2.properties")
	require.NoError(t, os.WriteFile(v1, []byte(smallTable), 0o644))
	require.NoError(t, os.WriteFile(v2, []byte(strings.Replace(smallTable, "version=small-1", "version=small-2", 1)), 0o644))

	var first bytes.Buffer
	require.NoError(t, run(ctx, options{tablePath: v1, dbPath: dbPath}, slog.New(slog.NewTextHandler(&first, nil))))
	assert.NotContains(t, first.String(), "identical table already stored")

	var second bytes.Buffer
	require.NoError(t, run(ctx, options{tablePath: v2, dbPath: dbPath}, slog.New(slog.NewTextHandler(&second, nil))))
	assert.Contains(t, second.String(), "identical table already stored under another version")
	assert.Contains(t, second.String(), "stored_version=small-1")

	// Both versions are kept.
	db := openStore(t, dbPath)
	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, tables[0].Checksum, tables[1].Checksum)
}

func TestRun_InvalidTable(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "bad.properties")
	require.NoError(t, os.WriteFile(tablePath,
		[]byte("version=bad\niso-start=2015-10-14\n1437=30 29 30 30 29 29 30 29 30 29 29 33\n"), 0o644))

	dbPath := filepath.Join(dir, "ummalqura.db")
	err := run(context.Background(), options{tablePath: tablePath, dbPath: dbPath}, logger.Discard())
	require.Error(t, err)

	// Validation fails before the database is touched.
	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr))
}
