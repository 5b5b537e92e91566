package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/mtlprog/stmtimport/internal/api"
	"github.com/mtlprog/stmtimport/internal/config"
	"github.com/mtlprog/stmtimport/internal/database"
	"github.com/mtlprog/stmtimport/internal/export"
	"github.com/mtlprog/stmtimport/internal/portfolio"
	"github.com/mtlprog/stmtimport/internal/store"
	"github.com/mtlprog/stmtimport/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func runServe(ctx context.Context, cfg config.Config) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	if cfg.RequireDatabase() == "" {
		return errors.New("DATABASE_URL is required")
	}
	strategy, err := portfolio.ParseStrategy(cfg.DefaultMergeStrategy)
	if err != nil {
		return fmt.Errorf("DEFAULT_MERGE_STRATEGY: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	pool, err := database.Open(ctx, cfg.DatabaseURL, migrationsSub)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Publish every saved version to Google Sheets when configured
	var hooks []store.AfterImportHook
	if cfg.GoogleSheetsID != "" && cfg.GoogleCredentialsJSON != "" {
		w, err := export.NewSheetsWriter(ctx, cfg.GoogleSheetsID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return err
		}
		hooks = append(hooks, export.NewService(w))
	}

	repo := store.NewPgRepository(pool)
	storeSvc := store.NewService(repo, hooks...)
	if err := storeSvc.EnsureAccount(ctx, cfg.AccountSlug, cfg.AccountSlug); err != nil {
		return err
	}

	importSvc := newImporter(cfg)

	if cfg.InboxDir != "" {
		inbox := worker.NewInboxWorker(importSvc, storeSvc, cfg.InboxDir, cfg.AccountSlug, strategy, cfg.InboxInterval)
		go inbox.Run(ctx)
	}

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, import endpoint is unprotected")
	}

	handler := api.NewHandler(importSvc, storeSvc, cfg.AccountSlug, strategy, cfg.MaxUploadBytes)
	srv := api.NewServer(cfg.HTTPPort, handler, cfg.AdminAPIKey)

	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	slog.Info("shutdown complete")
	return nil
}
