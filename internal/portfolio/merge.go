package portfolio

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// Strategy decides what happens when an imported position collides with one already
// held.
type Strategy string

const (
	// StrategyAdd sums the two positions.
	StrategyAdd Strategy = "add"
	// StrategyReplace keeps the imported position.
	StrategyReplace Strategy = "replace"
	// StrategyIgnore keeps the existing position.
	StrategyIgnore Strategy = "ignore"
)

// ErrUnknownStrategy indicates a merge strategy name outside add, replace and ignore.
var ErrUnknownStrategy = errors.New("unknown merge strategy")

// ParseStrategy reads a strategy name case-insensitively. Empty input is StrategyAdd.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyAdd:
		return StrategyAdd, nil
	case StrategyReplace:
		return StrategyReplace, nil
	case StrategyIgnore:
		return StrategyIgnore, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Merge combines incoming positions into existing ones. Colliding positions are
// resolved by strategy; the rest of incoming is appended in order.
func Merge(existing, incoming []domain.Position, strategy Strategy) []domain.Position {
	var m merger
	for _, p := range Deduplicate(existing) {
		m.add(p)
	}

	for _, p := range Deduplicate(incoming) {
		if !m.has(p) {
			m.add(p)
			continue
		}
		switch strategy {
		case StrategyReplace:
			m.replace(p)
		case StrategyIgnore:
		default:
			m.add(p)
		}
	}
	return m.result()
}

// MergePortfolios folds the positions of others into base and deduplicates them.
// Account metadata comes from base; additive statistics are summed.
func MergePortfolios(base domain.Portfolio, others ...domain.Portfolio) domain.Portfolio {
	positions := slices.Clone(base.Positions)
	base.Performance = slices.Clone(base.Performance)
	for _, o := range others {
		positions = append(positions, o.Positions...)
		base.Statistics = mergeStatistics(base.Statistics, o.Statistics)
		base.Performance = append(base.Performance, o.Performance...)
		if o.LastUpdated.After(base.LastUpdated) {
			base.LastUpdated = o.LastUpdated
		}
		if base.Profile == nil {
			base.Profile = o.Profile
		}
	}
	base.Positions = Deduplicate(positions)
	return base
}

func mergeStatistics(a, b *domain.PortfolioStatistics) *domain.PortfolioStatistics {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		c := *b
		return &c
	case b == nil:
		c := *a
		return &c
	}

	c := *a
	c.Dividends = domain.SumPtr(a.Dividends, b.Dividends)
	c.Interest = domain.SumPtr(a.Interest, b.Interest)
	c.Fees = domain.SumPtr(a.Fees, b.Fees)
	c.RealizedPnL = domain.SumPtr(a.RealizedPnL, b.RealizedPnL)
	return &c
}
