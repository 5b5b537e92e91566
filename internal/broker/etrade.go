package broker

import (
	"strings"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/normalize"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

var etradeSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleSymbol:        {"symbol"},
		tabular.RolePrice:         {"last price $", "last price"},
		tabular.RoleQuantity:      {"quantity"},
		tabular.RoleAverageCost:   {"price paid $", "price paid"},
		tabular.RoleUnrealizedPnL: {"total gain $", "total gain"},
		tabular.RoleValue:         {"value $", "value"},
	},
	Required: []tabular.Role{tabular.RoleSymbol, tabular.RoleQuantity, tabular.RoleAverageCost},
}

// ETrade reads the portfolio download, where each row is one tax lot. Lots of the same
// symbol accumulate into one position.
type ETrade struct{ base }

func NewETrade() *ETrade { return &ETrade{newBase(domain.BrokerETrade)} }

func (e *ETrade) Parse(content string) (Result, error) {
	t := tabular.Read(content, ',')
	headerIdx, cm, err := etradeSchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	portfolio := e.newPortfolio()
	var skipped skips
	bySymbol := map[string]int{}

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		symbol := cm.Get(row, tabular.RoleSymbol)
		switch {
		case symbol == "":
			return true
		case strings.EqualFold(symbol, "CASH"), isSummaryLabel(symbol):
			return true
		}

		rawQty := cm.Get(row, tabular.RoleQuantity)
		if !normalize.HasValue(rawQty) {
			skipped.add(t.Line(i), "lot without quantity for %s", symbol)
			return true
		}

		lot := snapshotPosition(cm, row, num)
		if lot.IsEmpty() {
			return true
		}

		idx, ok := bySymbol[symbol]
		if !ok {
			bySymbol[symbol] = len(portfolio.Positions)
			portfolio.Positions = append(portfolio.Positions, lot)
			return true
		}

		p := &portfolio.Positions[idx]
		p.Quantity = p.Quantity.Add(lot.Quantity)
		p.Value = p.Value.Add(lot.Value)
		p.CostBasis = p.CostBasis.Add(lot.CostBasis)
		p.UnrealizedPnL = p.UnrealizedPnL.Add(lot.UnrealizedPnL)
		if lot.ClosePrice.IsPositive() {
			p.ClosePrice = lot.ClosePrice
		}
		return true
	})

	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}
