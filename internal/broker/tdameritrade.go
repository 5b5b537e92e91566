package broker

import (
	"strings"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/normalize"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

var tdAmeritradeSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleSymbol:        {"instrument", "symbol"},
		tabular.RoleQuantity:      {"qty", "quantity"},
		tabular.RolePrice:         {"mark"},
		tabular.RoleAverageCost:   {"trade price"},
		tabular.RoleUnrealizedPnL: {"p/l open"},
	},
	Required: []tabular.Role{tabular.RoleSymbol, tabular.RoleQuantity, tabular.RolePrice},
}

// TDAmeritrade reads the thinkorswim position statement. Instruments are grouped
// under section labels and followed by subtotal rows.
type TDAmeritrade struct{ base }

func NewTDAmeritrade() *TDAmeritrade { return &TDAmeritrade{newBase(domain.BrokerTDAmeritrade)} }

func (e *TDAmeritrade) Parse(content string) (Result, error) {
	t := tabular.Read(content, ',')
	headerIdx, cm, err := tdAmeritradeSchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	portfolio := e.newPortfolio()
	var skipped skips

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		symbol := cm.Get(row, tabular.RoleSymbol)
		lower := strings.ToLower(symbol)
		switch {
		case len(row) < 3 || symbol == "":
			// group labels such as "Equities"
			return true
		case isSummaryLabel(symbol), strings.HasPrefix(lower, "subtotals"), strings.HasPrefix(lower, "overall totals"):
			return true
		}

		rawQty := cm.Get(row, tabular.RoleQuantity)
		if !normalize.HasValue(rawQty) {
			skipped.add(t.Line(i), "no quantity for %s", symbol)
			return true
		}

		p := snapshotPosition(cm, row, num)
		p.AssetType = domain.AssetStocks
		if p.IsEmpty() {
			return true
		}
		portfolio.Positions = append(portfolio.Positions, p)
		return true
	})

	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}
