package broker

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

var fidelitySchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleAccount:       {"account number"},
		tabular.RoleSymbol:        {"symbol"},
		tabular.RoleName:          {"description"},
		tabular.RoleQuantity:      {"quantity"},
		tabular.RolePrice:         {"last price"},
		tabular.RoleValue:         {"current value"},
		tabular.RoleCostBasis:     {"cost basis total", "cost basis"},
		tabular.RoleAverageCost:   {"average cost basis"},
		tabular.RoleUnrealizedPnL: {"total gain/loss dollar", "total gain/loss $"},
		tabular.RoleDescription:   {"account name"},
	},
	Required: []tabular.Role{tabular.RoleSymbol, tabular.RoleQuantity, tabular.RoleValue},
}

// Fidelity reads the "Portfolio_Positions" download.
type Fidelity struct{ base }

func NewFidelity() *Fidelity { return &Fidelity{newBase(domain.BrokerFidelity)} }

func (e *Fidelity) Parse(content string) (Result, error) {
	t := tabular.Read(content, ',')
	headerIdx, cm, err := fidelitySchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	portfolio := e.newPortfolio()
	var skipped skips

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		symbol := cm.Get(row, tabular.RoleSymbol)
		switch {
		case len(row) < 3:
			// trailing disclaimer paragraphs
			return true
		case symbol == "" || strings.EqualFold(symbol, "Pending Activity") || isSummaryLabel(symbol):
			return true
		}

		if portfolio.AccountID == "" {
			portfolio.AccountID = cm.Get(row, tabular.RoleAccount)
			portfolio.AccountName = cm.Get(row, tabular.RoleDescription)
		}

		// money market sweep funds are flagged with a trailing "**" and carry no quantity
		if strings.HasSuffix(symbol, "**") {
			value := num(cm.Get(row, tabular.RoleValue))
			if value.IsZero() {
				return true
			}
			p := domain.NewPosition(strings.TrimSuffix(symbol, "**"), cm.Get(row, tabular.RoleName))
			p.AssetType = domain.AssetCash
			p.Quantity = value
			p.ClosePrice = decimal.NewFromInt(1)
			p.DeriveMissing(false, false, false)
			portfolio.Positions = append(portfolio.Positions, p)
			return true
		}

		p := snapshotPosition(cm, row, num)
		if p.IsEmpty() {
			if p.Value.IsZero() {
				skipped.add(t.Line(i), "no quantity for %s", symbol)
			}
			return true
		}
		portfolio.Positions = append(portfolio.Positions, p)
		return true
	})

	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}
