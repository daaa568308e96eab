// Command import validates a Umm al-Qura month-length table and stores it in
// the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -table data/umalqura.properties -db data/ummalqura.db
//
// This tool:
// 1. Parses the properties table (the bundled table when -table is empty)
// 2. Builds the epoch-month index to validate every month length
// 3. Creates/opens the SQLite database and runs migrations
// 4. Stores the table and its years in a single transaction
//
// Importing a version that is already stored fails unless -replace is set.
// A table whose content matches a stored table under another version is
// stored anyway, with a warning.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/ummalqura-api/internal/database"
	"github.com/zapponejosh/ummalqura-api/internal/hijri"
)

func main() {
	// Parse command line flags
	tablePath := flag.String("table", "", "Path to properties table (default: bundled table)")
	dbPath := flag.String("db", "data/ummalqura.db", "Path to SQLite database")
	source := flag.String("source", "", "Source label stored with the table (default: table path)")
	replace := flag.Bool("replace", false, "Replace a stored table with the same version")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	opts := options{
		tablePath: *tablePath,
		dbPath:    *dbPath,
		source:    *source,
		replace:   *replace,
	}

	// Run import
	if err := run(context.Background(), opts, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

type options struct {
	tablePath string
	dbPath    string
	source    string
	replace   bool
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and parse the table
	// =========================================================================
	var (
		table *hijri.Table
		err   error
	)
	source := opts.source
	if opts.tablePath == "" {
		logger.Info("reading bundled table")
		table, err = hijri.DefaultTable()
		if source == "" {
			source = "embedded"
		}
	} else {
		logger.Info("reading table file", slog.String("path", opts.tablePath))
		table, err = hijri.LoadTableFile(opts.tablePath)
		if source == "" {
			source = opts.tablePath
		}
	}
	if err != nil {
		return fmt.Errorf("parse table: %w", err)
	}

	logger.Info("parsed table",
		slog.String("version", table.Version),
		slog.String("id", table.ID),
		slog.String("iso_start", table.ISOStart.String()),
		slog.Int("min_year", table.MinYear),
		slog.Int("max_year", table.MaxYear),
	)

	// =========================================================================
	// Step 2: Validate by building the index
	// =========================================================================
	conv, err := hijri.New(table, hijri.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("validate table: %w", err)
	}
	first, last := conv.Bounds()
	logger.Debug("table validated",
		slog.String("first_date", first.String()),
		slog.String("last_date", last.String()),
	)

	// =========================================================================
	// Step 3: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", opts.dbPath))

	db, err := database.Open(database.DefaultConfig(opts.dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 4: Store the table
	// =========================================================================
	checksum := table.Checksum()
	if existing, err := db.FindTableByChecksum(ctx, checksum); err == nil && existing.Version != table.Version {
		logger.Warn("identical table already stored under another version",
			slog.String("stored_version", existing.Version),
			slog.String("checksum", checksum),
		)
	} else if err != nil && !database.IsNotFound(err) {
		return fmt.Errorf("look up checksum: %w", err)
	}

	if opts.replace {
		err := db.DeleteTable(ctx, table.Version)
		switch {
		case err == nil:
			logger.Info("replacing stored table", slog.String("version", table.Version))
		case !errors.Is(err, database.ErrNotFound):
			return fmt.Errorf("delete existing table: %w", err)
		}
	}

	rec, err := db.SaveTable(ctx, table, source)
	if errors.Is(err, database.ErrDuplicate) {
		return fmt.Errorf("version %q is already stored; use -replace to overwrite", table.Version)
	}
	if err != nil {
		return fmt.Errorf("store table: %w", err)
	}

	elapsed := time.Since(startTime)

	// Print summary
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Version:             %s\n", rec.Version)
	fmt.Printf("Years:               %d-%d (%d)\n", rec.MinYear, rec.MaxYear, rec.MaxYear-rec.MinYear+1)
	fmt.Printf("Gregorian range:     %s to %s\n", first, last)
	fmt.Printf("Checksum:            %s\n", rec.Checksum)
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}
