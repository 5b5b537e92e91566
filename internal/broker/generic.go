package broker

import (
	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/normalize"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

// genericSchema matches header keywords anywhere in a cell. Earlier aliases win, so
// "market value" is preferred over a bare "value" column.
var genericSchema = tabular.Schema{
	Contains: true,
	Columns: map[tabular.Role][]string{
		tabular.RoleSymbol:        {"symbol", "ticker", "code", "instrument"},
		tabular.RoleName:          {"name", "description", "security", "product"},
		tabular.RoleISIN:          {"isin"},
		tabular.RoleQuantity:      {"quantity", "shares", "units", "qty", "holding", "position"},
		tabular.RolePrice:         {"close price", "last price", "market price", "current price", "price"},
		tabular.RoleValue:         {"market value", "current value", "total value", "value", "amount"},
		tabular.RoleCostBasis:     {"cost basis", "total cost", "book cost", "cost"},
		tabular.RoleAverageCost:   {"average", "avg"},
		tabular.RoleUnrealizedPnL: {"unrealized", "gain", "p&l", "p/l", "profit"},
		tabular.RoleCurrency:      {"currency", "ccy"},
		tabular.RoleAssetType:     {"asset class", "asset type", "security type", "type", "class"},
		tabular.RoleSector:        {"sector", "industry"},
		tabular.RoleExchange:      {"exchange", "market"},
	},
	Required: []tabular.Role{tabular.RoleSymbol},
	AnyOf:    []tabular.Role{tabular.RoleQuantity, tabular.RolePrice, tabular.RoleValue},
}

// Generic is the best-effort extractor for any table with a symbol-like column and a
// quantity, price or value column.
type Generic struct{ base }

func NewGeneric() *Generic { return &Generic{newBase(domain.BrokerGeneric)} }

func (e *Generic) Parse(content string) (Result, error) {
	t := tabular.Read(content, tabular.SniffDelimiter(content))
	headerIdx, cm, err := genericSchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	portfolio := e.newPortfolio()
	var skipped skips

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		symbol := cm.Get(row, tabular.RoleSymbol)
		if symbol == "" || isSummaryLabel(symbol) {
			return true
		}

		p := snapshotPosition(cm, row, normalize.ParseFlexibleDecimal)
		if p.IsEmpty() {
			skipped.add(t.Line(i), "no quantity for %s", symbol)
			return true
		}
		portfolio.Positions = append(portfolio.Positions, p)
		return true
	})

	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}
