package broker

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/ledger"
	"github.com/mtlprog/stmtimport/internal/normalize"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

var trading212Schema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleAction:   {"action"},
		tabular.RoleDate:     {"time"},
		tabular.RoleISIN:     {"isin"},
		tabular.RoleSymbol:   {"ticker"},
		tabular.RoleName:     {"name"},
		tabular.RoleQuantity: {"no. of shares"},
		tabular.RolePrice:    {"price / share"},
		tabular.RoleCurrency: {"currency (price / share)"},
		tabular.RoleFXRate:   {"exchange rate"},
		tabular.RoleAmount:   {"total", "total (eur)", "total (gbp)", "total (usd)"},
		tabular.RoleFees:     {"currency conversion fee", "stamp duty reserve tax", "french transaction tax"},
	},
	Required: []tabular.Role{tabular.RoleAction, tabular.RoleQuantity},
	AnyOf:    []tabular.Role{tabular.RoleISIN, tabular.RoleSymbol},
}

// Trading212 replays the transaction history export.
type Trading212 struct{ base }

func NewTrading212() *Trading212 { return &Trading212{newBase(domain.BrokerTrading212)} }

func (e *Trading212) Parse(content string) (Result, error) {
	t := tabular.Read(content, ',')
	headerIdx, cm, err := trading212Schema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	l := ledger.New()
	var skipped skips

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		action := strings.ToLower(cm.Get(row, tabular.RoleAction))
		at, _ := normalize.ParseDate(cm.Get(row, tabular.RoleDate))
		inst := ledger.Instrument{
			Symbol:   cm.Get(row, tabular.RoleSymbol),
			Name:     cm.Get(row, tabular.RoleName),
			ISIN:     strings.ToUpper(cm.Get(row, tabular.RoleISIN)),
			Currency: cm.Get(row, tabular.RoleCurrency),
		}
		qty := num(cm.Get(row, tabular.RoleQuantity))
		price := num(cm.Get(row, tabular.RolePrice))
		amount := num(cm.Get(row, tabular.RoleAmount))

		if fee := num(cm.Get(row, tabular.RoleFees)); !fee.IsZero() {
			l.Fee(fee)
		}

		switch {
		case strings.HasPrefix(action, "deposit"), strings.HasPrefix(action, "withdrawal"),
			strings.Contains(action, "stock split close"):
			return true
		case strings.Contains(action, "interest"):
			l.Interest(amount)
			return true
		case strings.HasPrefix(action, "dividend"):
			l.Dividend(inst, amount, at)
			return true
		}

		if inst.Symbol == "" && inst.ISIN == "" {
			skipped.add(t.Line(i), "%q without instrument", action)
			return true
		}
		if qty.IsZero() {
			skipped.add(t.Line(i), "%q without share count", action)
			return true
		}

		// cost is tracked in the instrument currency; the Total column is in the account currency
		switch {
		case strings.Contains(action, "stock split open"):
			l.Split(inst, qty, at)
		case strings.HasSuffix(action, "buy"):
			l.Buy(inst, qty, price, decimal.Zero, at)
		case strings.HasSuffix(action, "sell"):
			l.Sell(inst, qty, price, decimal.Zero, at)
		default:
			skipped.add(t.Line(i), "unknown action %q", action)
		}
		return true
	})

	portfolio := e.newPortfolio()
	portfolio.Positions = l.Positions()
	portfolio.Statistics = l.Statistics()
	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}
