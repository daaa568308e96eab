// Package main is the entry point for the Umm al-Qura API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/ummalqura-api/internal/api"
	"github.com/zapponejosh/ummalqura-api/internal/config"
	"github.com/zapponejosh/ummalqura-api/internal/database"
	"github.com/zapponejosh/ummalqura-api/internal/hijri"
	"github.com/zapponejosh/ummalqura-api/internal/logger"
	"github.com/zapponejosh/ummalqura-api/internal/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	if err := run(cfg, log); err != nil {
		logger.Error(context.Background(), "server failed", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "starting Umm al-Qura API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.String("table_source", cfg.TableSource),
		slog.String("timezone", cfg.Timezone),
	)
	if !cfg.IsDevelopment() && cfg.APIKey == "" {
		logger.Warn(ctx, "API_KEY is not set; admin endpoints will reject every request")
	}

	// =========================================================================
	// Database
	// =========================================================================
	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// =========================================================================
	// Month-length table and converter
	// =========================================================================
	table, err := loadTable(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("load table: %w", err)
	}

	conv, err := hijri.New(table, hijri.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build converter: %w", err)
	}

	first, last := conv.Bounds()
	logger.Info(ctx, "hijri table loaded",
		slog.String("version", table.Version),
		slog.Int("min_year", conv.MinimumYear()),
		slog.Int("max_year", conv.MaximumYear()),
		slog.String("first_date", first.String()),
		slog.String("last_date", last.String()),
	)

	m := metrics.New()
	m.SetTable(table)

	// =========================================================================
	// HTTP server
	// =========================================================================
	handlers := api.NewHandlers(conv, db, cfg, m, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, m, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Umm al-Qura API ready", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info(shutdownCtx, "server stopped")
	return nil
}

// loadTable reads the month-length table from the configured source.
func loadTable(ctx context.Context, cfg *config.Config, db *database.DB) (*hijri.Table, error) {
	logger.Debug(ctx, "loading hijri table",
		slog.String("source", cfg.TableSource),
		slog.String("path", cfg.TablePath),
	)
	switch cfg.TableSource {
	case config.TableSourceFile:
		return hijri.LoadTableFile(cfg.TablePath)
	case config.TableSourceDatabase:
		stored, err := db.LatestTable(ctx)
		if err != nil {
			if database.IsNotFound(err) {
				return nil, errors.New("no table stored; run cmd/import first")
			}
			return nil, err
		}
		return stored.Table()
	default:
		return hijri.DefaultTable()
	}
}
