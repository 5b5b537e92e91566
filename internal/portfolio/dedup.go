// Package portfolio canonicalizes extracted positions, merges duplicates by identity
// key and applies the merge strategies callers use when importing into an existing
// portfolio.
package portfolio

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/normalize"
)

// Canonicalize maps symbol, asset type, sector and currency onto the canonical
// vocabularies. An empty name takes the canonical symbol.
func Canonicalize(p domain.Position) domain.Position {
	p.Symbol = normalize.NormalizeSymbol(p.Symbol)
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = p.Symbol
	}
	p.ISIN = strings.ToUpper(strings.TrimSpace(p.ISIN))
	p.AssetType = normalize.NormalizeAssetType(string(p.AssetType))
	p.Sector = normalize.NormalizeSector(string(p.Sector))
	p.Currency = normalize.NormalizeCurrency(p.Currency)
	p.Exchange = strings.TrimSpace(p.Exchange)
	if p.FXRateToBase.IsZero() {
		p.FXRateToBase = decimal.NewFromInt(1)
	}
	return p
}

// IdentityKey returns the key positions merge under: the ISIN, else the normalized
// symbol with the currency, else the name with the currency. It reports false when
// the position carries none of them.
func IdentityKey(p domain.Position) (string, bool) {
	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	switch {
	case strings.TrimSpace(p.ISIN) != "":
		return "isin:" + strings.ToUpper(strings.TrimSpace(p.ISIN)), true
	case strings.TrimSpace(p.Symbol) != "":
		return "symbol:" + normalize.NormalizeSymbol(p.Symbol) + ":" + currency, true
	case strings.TrimSpace(p.Name) != "":
		return "name:" + strings.ToUpper(strings.TrimSpace(p.Name)) + ":" + currency, true
	default:
		return "", false
	}
}

// Deduplicate canonicalizes positions and merges those sharing an identity key.
// Positions without a key are kept apart. Output follows first-seen key order, and
// running it on its own output changes nothing.
//
// A merged position is repriced as summed value over summed quantity. Instruments
// quoted in points or per 100 of face value, such as bonds, therefore carry a
// per-unit price after a merge. Unmerged positions keep the supplied price.
func Deduplicate(positions []domain.Position) []domain.Position {
	var m merger
	for _, p := range positions {
		m.add(Canonicalize(p))
	}
	return m.result()
}

// merger accumulates positions by identity key in first-seen order.
type merger struct {
	out    []domain.Position
	merged []bool
	index  map[string]int
	anon   int
}

func (m *merger) key(p domain.Position) string {
	if k, ok := IdentityKey(p); ok {
		return k
	}
	m.anon++
	return "row:" + strconv.Itoa(m.anon)
}

func (m *merger) add(p domain.Position) {
	if m.index == nil {
		m.index = map[string]int{}
	}
	k := m.key(p)
	if idx, ok := m.index[k]; ok {
		m.out[idx] = combine(m.out[idx], p)
		m.merged[idx] = true
		return
	}
	m.index[k] = len(m.out)
	m.out = append(m.out, p)
	m.merged = append(m.merged, false)
}

// replace swaps the position stored under p's key, or appends p.
func (m *merger) replace(p domain.Position) {
	k, ok := IdentityKey(p)
	if idx, found := m.index[k]; ok && found {
		m.out[idx] = p
		m.merged[idx] = false
		return
	}
	m.add(p)
}

func (m *merger) has(p domain.Position) bool {
	k, ok := IdentityKey(p)
	if !ok {
		return false
	}
	_, found := m.index[k]
	return found
}

// result reprices merged positions from their summed value and quantity.
func (m *merger) result() []domain.Position {
	out := make([]domain.Position, len(m.out))
	for i, p := range m.out {
		if m.merged[i] && !p.Quantity.IsZero() {
			p.ClosePrice = domain.SafeDiv(p.Value, p.Quantity)
		}
		out[i] = p
	}
	return out
}

// combine sums the amounts of b into a. Descriptive fields keep the first non-empty
// value; Other counts as empty for asset type and sector.
func combine(a, b domain.Position) domain.Position {
	a.Quantity = a.Quantity.Add(b.Quantity)
	a.Value = a.Value.Add(b.Value)
	a.CostBasis = a.CostBasis.Add(b.CostBasis)
	a.UnrealizedPnL = a.UnrealizedPnL.Add(b.UnrealizedPnL)
	a.RealizedPnL = a.RealizedPnL.Add(b.RealizedPnL)
	a.DividendIncome = a.DividendIncome.Add(b.DividendIncome)

	if a.HasDefaultFXRate() && !b.HasDefaultFXRate() {
		a.FXRateToBase = b.FXRateToBase
	}
	if a.ClosePrice.IsZero() {
		a.ClosePrice = b.ClosePrice
	}

	a.Symbol = lo.CoalesceOrEmpty(a.Symbol, b.Symbol)
	a.Name = lo.CoalesceOrEmpty(a.Name, b.Name)
	a.Currency = lo.CoalesceOrEmpty(a.Currency, b.Currency)
	a.Exchange = lo.CoalesceOrEmpty(a.Exchange, b.Exchange)
	a.ISIN = lo.CoalesceOrEmpty(a.ISIN, b.ISIN)
	a.RegionOverride = lo.CoalesceOrEmpty(a.RegionOverride, b.RegionOverride)
	if a.AssetType == "" || a.AssetType == domain.AssetOther {
		a.AssetType = lo.CoalesceOrEmpty(b.AssetType, a.AssetType)
	}
	if a.Sector == "" || a.Sector == domain.SectorOther {
		a.Sector = lo.CoalesceOrEmpty(b.Sector, a.Sector)
	}

	if b.LastUpdated.After(a.LastUpdated) {
		a.LastUpdated = b.LastUpdated
	}
	return a
}
