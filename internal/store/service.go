// Package store keeps versioned portfolios per account and folds new imports into the
// latest version with a merge strategy.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/portfolio"
)

// AfterImportHook is called with every portfolio version the service saves.
type AfterImportHook interface {
	Export(ctx context.Context, p domain.Portfolio) error
}

// Service manages stored portfolio versions.
type Service struct {
	repo  Repository
	hooks []AfterImportHook
}

// NewService creates a new store Service. Hooks run after each successful save.
func NewService(repo Repository, hooks ...AfterImportHook) *Service {
	return &Service{repo: repo, hooks: hooks}
}

// Import folds p into the account's latest portfolio using strategy and saves the result
// as a new version. The first import of an account is saved as is.
func (s *Service) Import(ctx context.Context, slug string, p domain.Portfolio, strategy portfolio.Strategy) (domain.Portfolio, error) {
	next := p
	latest, err := s.repo.Latest(ctx, slug)
	switch {
	case errors.Is(err, ErrNotFound):
		next.Positions = portfolio.Deduplicate(p.Positions)
	case err != nil:
		return domain.Portfolio{}, fmt.Errorf("loading latest portfolio: %w", err)
	default:
		next = fold(latest.Portfolio, p, strategy)
	}
	next.ID = uuid.NewString()

	if err := s.repo.Save(ctx, slug, next); err != nil {
		return domain.Portfolio{}, fmt.Errorf("saving portfolio: %w", err)
	}
	slog.Info("store: portfolio saved", "account", slug, "strategy", strategy, "positions", len(next.Positions))

	for _, h := range s.hooks {
		if err := h.Export(ctx, next); err != nil {
			slog.Error("store: after-import hook failed", "account", slug, "error", err)
		}
	}
	return next, nil
}

// fold applies an import to the stored portfolio. Adding sums statistics as well as
// positions; replacing takes the import's statistics when it has any.
func fold(existing, incoming domain.Portfolio, strategy portfolio.Strategy) domain.Portfolio {
	if strategy == portfolio.StrategyAdd {
		next := portfolio.MergePortfolios(existing, incoming)
		next.ImportedAt = incoming.ImportedAt
		return next
	}

	next := existing
	next.Positions = portfolio.Merge(existing.Positions, incoming.Positions, strategy)
	if strategy == portfolio.StrategyReplace && incoming.Statistics != nil {
		next.Statistics = incoming.Statistics
	}
	if incoming.LastUpdated.After(next.LastUpdated) {
		next.LastUpdated = incoming.LastUpdated
	}
	next.ImportedAt = incoming.ImportedAt
	return next
}

// Latest retrieves the most recent portfolio version for the account.
func (s *Service) Latest(ctx context.Context, slug string) (*Record, error) {
	return s.repo.Latest(ctx, slug)
}

// List retrieves recent portfolio versions, newest first.
func (s *Service) List(ctx context.Context, slug string, limit int) ([]Record, error) {
	return s.repo.List(ctx, slug, limit)
}

// EnsureAccount creates the account if it does not exist.
func (s *Service) EnsureAccount(ctx context.Context, slug, name string) error {
	return s.repo.EnsureAccount(ctx, slug, name)
}
