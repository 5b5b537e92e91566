// Package worker runs background loops that feed statement files into the store.
package worker

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/importer"
	"github.com/mtlprog/stmtimport/internal/portfolio"
)

const (
	ProcessingDir = "processing"
	ProcessedDir  = "processed"
	FailedDir     = "failed"
)

// FileParser parses one statement file.
type FileParser interface {
	ParseFile(file domain.ImportFileData, id domain.BrokerID) (importer.Result, error)
}

// PortfolioImporter folds a parsed portfolio into stored state.
type PortfolioImporter interface {
	Import(ctx context.Context, slug string, p domain.Portfolio, strategy portfolio.Strategy) (domain.Portfolio, error)
}

// InboxWorker periodically imports statement files dropped into a directory. A file is
// claimed by moving it to processing/ before it is read, so it is never imported twice.
// Imported files then move to processed/, files that fail to parse or store move to
// failed/. A file whose final move fails stays in processing/ for an operator.
type InboxWorker struct {
	parser   FileParser
	importer PortfolioImporter
	dir      string
	slug     string
	strategy portfolio.Strategy
	interval time.Duration
}

// NewInboxWorker creates a new InboxWorker.
func NewInboxWorker(parser FileParser, imp PortfolioImporter, dir, slug string, strategy portfolio.Strategy, interval time.Duration) *InboxWorker {
	return &InboxWorker{
		parser:   parser,
		importer: imp,
		dir:      dir,
		slug:     slug,
		strategy: strategy,
		interval: interval,
	}
}

// Run starts the inbox loop. It blocks until the context is cancelled.
func (w *InboxWorker) Run(ctx context.Context) {
	slog.Info("InboxWorker: starting", "dir", w.dir, "interval", w.interval)

	// Scan immediately on startup
	w.scan(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("InboxWorker: shutting down")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *InboxWorker) scan(ctx context.Context) {
	names, err := w.pending()
	if err != nil {
		slog.Error("InboxWorker: scan failed", "error", err)
		return
	}

	for _, name := range names {
		if ctx.Err() != nil {
			return
		}
		if err := w.move(w.dir, name, ProcessingDir); err != nil {
			slog.Error("InboxWorker: claiming file failed", "file", name, "error", err)
			continue
		}
		claimed := filepath.Join(w.dir, ProcessingDir)

		dest := ProcessedDir
		if err := w.importFile(ctx, claimed, name); err != nil {
			slog.Error("InboxWorker: import failed", "file", name, "error", err)
			dest = FailedDir
		} else {
			slog.Info("InboxWorker: import completed", "file", name)
		}
		if err := w.move(claimed, name, dest); err != nil {
			slog.Error("InboxWorker: moving file failed", "file", name, "dest", dest, "error", err)
		}
	}
}

// pending lists regular, non-hidden files directly in the inbox.
func (w *InboxWorker) pending() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("reading inbox %s: %w", w.dir, err)
	}
	return lo.FilterMap(entries, func(e fs.DirEntry, _ int) (string, bool) {
		return e.Name(), e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".")
	}), nil
}

func (w *InboxWorker) importFile(ctx context.Context, dir, name string) error {
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	res, err := w.parser.ParseFile(domain.ImportFileData{Name: name, Content: content}, "")
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	for _, row := range res.Skipped {
		slog.Warn("InboxWorker: row skipped", "file", name, "line", row.Line, "reason", row.Reason)
	}

	if _, err := w.importer.Import(ctx, w.slug, res.Portfolio, w.strategy); err != nil {
		return fmt.Errorf("storing: %w", err)
	}
	return nil
}

// move renames name from dir into the inbox subdirectory sub.
func (w *InboxWorker) move(dir, name, sub string) error {
	destDir := filepath.Join(w.dir, sub)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}
	return os.Rename(filepath.Join(dir, name), filepath.Join(destDir, name))
}
