package broker

import (
	"regexp"
	"strings"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

var schwabSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleSymbol:        {"symbol"},
		tabular.RoleName:          {"description"},
		tabular.RoleQuantity:      {"quantity", "qty (quantity)"},
		tabular.RolePrice:         {"price"},
		tabular.RoleValue:         {"market value", "mkt val (market value)"},
		tabular.RoleCostBasis:     {"cost basis"},
		tabular.RoleUnrealizedPnL: {"gain/loss $", "gain $ (gain/loss $)"},
		tabular.RoleAssetType:     {"security type"},
	},
	Required: []tabular.Role{tabular.RoleSymbol, tabular.RoleQuantity},
	AnyOf:    []tabular.Role{tabular.RolePrice, tabular.RoleValue},
}

var schwabTitleRegex = regexp.MustCompile(`(?i)positions for (?:account\s+)?(.+?)\s+as of`)

// Schwab reads the positions CSV, which opens with a "Positions for account" title line.
type Schwab struct{ base }

func NewSchwab() *Schwab { return &Schwab{newBase(domain.BrokerSchwab)} }

func (e *Schwab) Parse(content string) (Result, error) {
	t := tabular.Read(content, ',')
	headerIdx, cm, err := schwabSchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	portfolio := e.newPortfolio()
	for _, row := range t.Rows[:headerIdx] {
		if m := schwabTitleRegex.FindStringSubmatch(row.Cell(0)); m != nil {
			portfolio.AccountName = m[1]
			break
		}
	}

	var skipped skips
	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		symbol := cm.Get(row, tabular.RoleSymbol)
		lower := strings.ToLower(symbol)
		switch {
		case symbol == "":
			return true
		case strings.HasPrefix(lower, "cash & cash investments"), isSummaryLabel(symbol):
			return true
		case strings.HasPrefix(lower, "positions for"):
			// next account block of a multi-account export
			return true
		}

		p := snapshotPosition(cm, row, num)
		if p.IsEmpty() {
			skipped.add(t.Line(i), "no quantity for %s", symbol)
			return true
		}
		portfolio.Positions = append(portfolio.Positions, p)
		return true
	})

	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}
