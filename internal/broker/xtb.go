package broker

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/ledger"
	"github.com/mtlprog/stmtimport/internal/normalize"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

var xtbSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleSymbol:   {"symbol"},
		tabular.RoleAction:   {"type"},
		tabular.RoleDate:     {"time", "open time"},
		tabular.RoleComment:  {"comment"},
		tabular.RoleAmount:   {"amount"},
		tabular.RoleQuantity: {"volume"},
		tabular.RolePrice:    {"open price", "price"},
	},
	Required: []tabular.Role{tabular.RoleAction, tabular.RoleComment, tabular.RoleAmount},
}

// xtbTradeRegex pulls side, volume and price out of comments such as
// "OPEN BUY 0.5 @ 175.50", "CLOSE BUY 1/2 @ 180.00" or "buy 0.5 at 175.50".
var xtbTradeRegex = regexp.MustCompile(`(?i)\b(buy|sell)\s+([\d.,]+)(?:/[\d.,]+)?\s*(?:@|at)\s*([\d.,]+)`)

// XTB replays the cash operations export. The CSV download is semicolon-delimited;
// workbooks re-encoded to text arrive comma-delimited.
type XTB struct{ base }

func NewXTB() *XTB { return &XTB{newBase(domain.BrokerXTB)} }

func (e *XTB) Parse(content string) (Result, error) {
	t := tabular.Read(content, tabular.SniffDelimiter(content))
	headerIdx, cm, err := xtbSchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	l := ledger.New()
	var skipped skips

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		kind := strings.ToLower(cm.Get(row, tabular.RoleAction))
		comment := cm.Get(row, tabular.RoleComment)
		amount := normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RoleAmount))
		at, _ := normalize.ParseDate(cm.Get(row, tabular.RoleDate))
		inst := ledger.Instrument{Symbol: cm.Get(row, tabular.RoleSymbol)}

		switch {
		case kind == "" || isSummaryLabel(kind):
			return true
		case strings.Contains(kind, "deposit"), strings.Contains(kind, "withdraw"), strings.Contains(kind, "transfer"):
			return true
		case strings.Contains(kind, "interest"):
			l.Interest(amount)
			return true
		case strings.Contains(kind, "commission"), strings.Contains(kind, "fee"):
			l.Fee(amount)
			return true
		case strings.Contains(kind, "divid"), strings.Contains(kind, "withholding"), strings.Contains(kind, "tax"):
			if inst.Symbol == "" {
				skipped.add(t.Line(i), "%s without symbol", kind)
				return true
			}
			l.Dividend(inst, amount, at)
			return true
		}

		if inst.Symbol == "" {
			skipped.add(t.Line(i), "%s without symbol", kind)
			return true
		}

		sell, qty, price, ok := xtbTrade(cm, row, kind, comment)
		if !ok {
			skipped.add(t.Line(i), "no volume and price in %q", comment)
			return true
		}

		// the amount is in the account currency; cost follows the quoted price
		if sell {
			l.Sell(inst, qty, price, decimal.Zero, at)
		} else {
			l.Buy(inst, qty, price, decimal.Zero, at)
		}
		return true
	})

	portfolio := e.newPortfolio()
	portfolio.Positions = l.Positions()
	portfolio.Statistics = l.Statistics()
	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}

// xtbTrade reads side, volume and price from explicit columns when present and from
// the comment otherwise. A "CLOSE BUY" comment closes a long position, so it sells.
func xtbTrade(cm tabular.ColumnMap, row tabular.Row, kind, comment string) (sell bool, qty, price decimal.Decimal, ok bool) {
	upper := strings.ToUpper(comment)
	sell = strings.Contains(kind, "sale") || strings.Contains(kind, "sell") || strings.HasPrefix(upper, "CLOSE")

	if cm.Has(tabular.RoleQuantity) && cm.Has(tabular.RolePrice) {
		qty = normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RoleQuantity))
		price = normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RolePrice))
		if !qty.IsZero() {
			return sell, qty, price, true
		}
	}

	m := xtbTradeRegex.FindStringSubmatch(comment)
	if m == nil {
		return false, decimal.Zero, decimal.Zero, false
	}
	if !strings.Contains(kind, "purchase") && !strings.Contains(kind, "sale") && !strings.HasPrefix(upper, "CLOSE") {
		sell = strings.EqualFold(m[1], "sell")
	}
	return sell, normalize.ParseFlexibleDecimal(m[2]), normalize.ParseFlexibleDecimal(m[3]), true
}
