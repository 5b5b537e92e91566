package broker

import (
	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

var vanguardSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleAccount:  {"account number"},
		tabular.RoleName:     {"investment name"},
		tabular.RoleSymbol:   {"symbol"},
		tabular.RoleQuantity: {"shares"},
		tabular.RolePrice:    {"share price"},
		tabular.RoleValue:    {"total value"},
	},
	Required: []tabular.Role{tabular.RoleSymbol, tabular.RoleQuantity},
	AnyOf:    []tabular.Role{tabular.RolePrice, tabular.RoleValue},
}

// Vanguard reads the holdings block of the download. The transaction block after the
// first blank line is not part of the holdings.
type Vanguard struct{ base }

func NewVanguard() *Vanguard { return &Vanguard{newBase(domain.BrokerVanguard)} }

func (e *Vanguard) Parse(content string) (Result, error) {
	t := tabular.Read(content, ',')
	headerIdx, cm, err := vanguardSchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	portfolio := e.newPortfolio()
	var skipped skips

	for i := headerIdx + 1; i < len(t.Rows); i++ {
		row := t.Rows[i]
		if row.IsBlank() {
			break
		}

		name := cm.Get(row, tabular.RoleName)
		symbol := cm.Get(row, tabular.RoleSymbol)
		if symbol == "" && name == "" {
			skipped.add(t.Line(i), "holding without symbol or name")
			continue
		}
		if portfolio.AccountID == "" {
			portfolio.AccountID = cm.Get(row, tabular.RoleAccount)
		}

		p := snapshotPosition(cm, row, num)
		if p.IsEmpty() {
			continue
		}
		portfolio.Positions = append(portfolio.Positions, p)
	}

	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}
