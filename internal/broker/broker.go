// Package broker holds one statement extractor per supported brokerage plus a
// generic fallback, and the registry that enumerates them.
package broker

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/normalize"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

// now is replaced in tests.
var now = time.Now

// headerScanLines bounds the search for a header row at the top of a file.
const headerScanLines = 30

// Result is the output of one extractor run.
type Result struct {
	Portfolio domain.Portfolio
	Skipped   []domain.SkippedRow
}

// Extractor turns the text of one statement format into a portfolio.
// The set of implementations is closed; see Registry.
type Extractor interface {
	ID() domain.BrokerID
	DisplayName() string
	DefaultCurrency() string
	Extensions() []string
	Parse(content string) (Result, error)

	sealed()
}

// base carries the registry metadata every extractor exposes.
type base struct {
	info domain.BrokerInfo
}

func newBase(id domain.BrokerID) base {
	info, ok := domain.BrokerInfoByID(id)
	if !ok {
		panic(fmt.Sprintf("broker %q missing from domain broker table", id))
	}
	return base{info: info}
}

func (b base) ID() domain.BrokerID     { return b.info.ID }
func (b base) DisplayName() string     { return b.info.DisplayName }
func (b base) DefaultCurrency() string { return b.info.DefaultCurrency }
func (b base) Extensions() []string    { return append([]string(nil), b.info.Extensions...) }
func (base) sealed()                   {}

func (b base) newPortfolio() domain.Portfolio {
	return domain.Portfolio{
		ID:          uuid.NewString(),
		Broker:      b.info.ID,
		Positions:   []domain.Position{},
		LastUpdated: now().UTC(),
	}
}

// skips collects rows an extractor could not use.
type skips []domain.SkippedRow

func (s *skips) add(line int, format string, args ...any) {
	*s = append(*s, domain.SkippedRow{Line: line, Reason: fmt.Sprintf(format, args...)})
}

func num(raw string) decimal.Decimal {
	return normalize.ParseDecimal(raw, decimal.Zero)
}

// isSummaryLabel reports cells that label total or cash rows rather than securities.
func isSummaryLabel(cell string) bool {
	s := strings.ToLower(strings.TrimSpace(cell))
	for _, prefix := range []string{"total", "subtotal", "overall total", "account total", "grand total"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// snapshotPosition maps one position row of a snapshot-style statement. Missing value,
// cost basis and unrealized P&L are derived from quantity and price.
func snapshotPosition(cm tabular.ColumnMap, row tabular.Row, parse func(string) decimal.Decimal) domain.Position {
	p := domain.NewPosition(cm.Get(row, tabular.RoleSymbol), cm.Get(row, tabular.RoleName))
	if p.Name == "" {
		p.Name = cm.Get(row, tabular.RoleDescription)
	}
	p.ISIN = strings.ToUpper(cm.Get(row, tabular.RoleISIN))
	p.Currency = cm.Get(row, tabular.RoleCurrency)
	p.Exchange = cm.Get(row, tabular.RoleExchange)
	p.Sector = domain.Sector(cm.Get(row, tabular.RoleSector))
	p.Quantity = parse(cm.Get(row, tabular.RoleQuantity))
	p.ClosePrice = parse(cm.Get(row, tabular.RolePrice))

	if at := cm.Get(row, tabular.RoleAssetType); at != "" {
		p.AssetType = domain.AssetType(at)
	} else {
		p.AssetType = normalize.AssetTypeFromName(p.Name)
	}

	if rate := parse(cm.Get(row, tabular.RoleFXRate)); rate.IsPositive() {
		p.FXRateToBase = rate
	}

	rawValue := cm.Get(row, tabular.RoleValue)
	hasValue := normalize.HasValue(rawValue)
	p.Value = parse(rawValue)

	rawCost := cm.Get(row, tabular.RoleCostBasis)
	hasCost := normalize.HasValue(rawCost)
	p.CostBasis = parse(rawCost)
	if !hasCost {
		if avg := cm.Get(row, tabular.RoleAverageCost); normalize.HasValue(avg) {
			p.CostBasis = parse(avg).Mul(p.Quantity)
			hasCost = true
		}
	}

	rawPnL := cm.Get(row, tabular.RoleUnrealizedPnL)
	hasPnL := normalize.HasValue(rawPnL)
	p.UnrealizedPnL = parse(rawPnL)

	p.DeriveMissing(hasValue, hasCost, hasPnL)
	return p
}

// dataRows calls fn for each non-blank row after the header until fn returns false.
func dataRows(t tabular.Table, headerIdx int, fn func(i int, row tabular.Row) bool) {
	for i := headerIdx + 1; i < len(t.Rows); i++ {
		row := t.Rows[i]
		if row.IsBlank() {
			continue
		}
		if !fn(i, row) {
			return
		}
	}
}
