package broker

import (
	"strings"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/ledger"
	"github.com/mtlprog/stmtimport/internal/normalize"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

var revolutSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleDate:     {"date"},
		tabular.RoleSymbol:   {"ticker"},
		tabular.RoleAction:   {"type"},
		tabular.RoleQuantity: {"quantity"},
		tabular.RolePrice:    {"price per share"},
		tabular.RoleAmount:   {"total amount"},
		tabular.RoleCurrency: {"currency"},
		tabular.RoleFXRate:   {"fx rate"},
	},
	Required: []tabular.Role{tabular.RoleSymbol, tabular.RoleAction, tabular.RoleAmount},
}

// Revolut replays the trading account statement. Amounts carry a currency code
// prefix such as "USD 150.25".
type Revolut struct{ base }

func NewRevolut() *Revolut { return &Revolut{newBase(domain.BrokerRevolut)} }

func (e *Revolut) Parse(content string) (Result, error) {
	t := tabular.Read(content, ',')
	headerIdx, cm, err := revolutSchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	l := ledger.New()
	var skipped skips

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		kind := strings.ToUpper(cm.Get(row, tabular.RoleAction))
		at, _ := normalize.ParseDate(cm.Get(row, tabular.RoleDate))
		amount := num(cm.Get(row, tabular.RoleAmount))
		inst := ledger.Instrument{
			Symbol:   cm.Get(row, tabular.RoleSymbol),
			Currency: cm.Get(row, tabular.RoleCurrency),
		}

		switch {
		case strings.HasPrefix(kind, "CASH"), kind == "TRANSFER FROM REVOLUT BANK", kind == "":
			return true
		case strings.Contains(kind, "FEE"):
			l.Fee(amount)
			return true
		}

		if inst.Symbol == "" {
			skipped.add(t.Line(i), "%s without ticker", kind)
			return true
		}

		qty := num(cm.Get(row, tabular.RoleQuantity))
		price := num(cm.Get(row, tabular.RolePrice))

		switch {
		case strings.HasPrefix(kind, "BUY"):
			l.Buy(inst, qty, price, amount, at)
		case strings.HasPrefix(kind, "SELL"):
			l.Sell(inst, qty, price, amount, at)
		case strings.HasPrefix(kind, "DIVIDEND"):
			l.Dividend(inst, amount, at)
		case strings.HasPrefix(kind, "STOCK SPLIT"):
			l.AddShares(inst, qty, at)
		default:
			skipped.add(t.Line(i), "unknown type %q", kind)
		}
		return true
	})

	portfolio := e.newPortfolio()
	portfolio.Positions = l.Positions()
	portfolio.Statistics = l.Statistics()
	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}
