package broker

import (
	"regexp"
	"strings"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/ledger"
	"github.com/mtlprog/stmtimport/internal/normalize"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

var robinhoodSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleDate:        {"activity date"},
		tabular.RoleSymbol:      {"instrument"},
		tabular.RoleDescription: {"description"},
		tabular.RoleAction:      {"trans code"},
		tabular.RoleQuantity:    {"quantity"},
		tabular.RolePrice:       {"price"},
		tabular.RoleAmount:      {"amount"},
	},
	Required: []tabular.Role{tabular.RoleSymbol, tabular.RoleAction, tabular.RoleQuantity},
}

var (
	robinhoodISINRegex  = regexp.MustCompile(`(?i)\bISIN:?\s*([A-Z]{2}[A-Z0-9]{10})\b`)
	robinhoodCUSIPRegex = regexp.MustCompile(`(?i)\bCUSIP:?\s*([0-9A-Z]{9})\b`)
)

// Robinhood replays the account activity report. Descriptions span several lines
// inside quotes, so the file is read as whole CSV records.
type Robinhood struct{ base }

func NewRobinhood() *Robinhood { return &Robinhood{newBase(domain.BrokerRobinhood)} }

func (e *Robinhood) Parse(content string) (Result, error) {
	t := tabular.ReadRecords(content, ',')
	headerIdx, cm, err := robinhoodSchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}

	l := ledger.New()
	var skipped skips

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		code := strings.ToUpper(cm.Get(row, tabular.RoleAction))
		description := cm.Get(row, tabular.RoleDescription)
		amount := num(cm.Get(row, tabular.RoleAmount))
		at, _ := normalize.ParseDate(cm.Get(row, tabular.RoleDate))
		inst := ledger.Instrument{
			Symbol: cm.Get(row, tabular.RoleSymbol),
			Name:   robinhoodName(description),
			ISIN:   robinhoodISIN(description),
		}

		switch code {
		case "INT":
			l.Interest(amount)
			return true
		case "GOLD", "AFEE", "DFEE":
			l.Fee(amount)
			return true
		case "":
			return true
		}

		if inst.Symbol == "" {
			// ACH transfers and other cash movements
			return true
		}

		// sells may carry a trailing "S" on the quantity
		qty := num(strings.TrimRight(cm.Get(row, tabular.RoleQuantity), "Ss"))
		price := num(cm.Get(row, tabular.RolePrice))

		switch code {
		case "BUY":
			l.Buy(inst, qty, price, amount, at)
		case "SELL":
			l.Sell(inst, qty, price, amount, at)
		case "CDIV", "MDIV":
			l.Dividend(inst, amount, at)
		case "DTAX":
			l.Dividend(inst, amount.Abs().Neg(), at)
		case "SPL", "SPR":
			l.AddShares(inst, qty, at)
		default:
			skipped.add(t.Line(i), "unhandled trans code %s", code)
		}
		return true
	})

	portfolio := e.newPortfolio()
	portfolio.Positions = l.Positions()
	portfolio.Statistics = l.Statistics()
	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}

func robinhoodName(description string) string {
	first, _, _ := strings.Cut(description, "\n")
	return strings.TrimSpace(first)
}

// robinhoodISIN takes an ISIN token from the description, or derives a US ISIN from a
// CUSIP token.
func robinhoodISIN(description string) string {
	if m := robinhoodISINRegex.FindStringSubmatch(description); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := robinhoodCUSIPRegex.FindStringSubmatch(description); m != nil {
		if isin, ok := normalize.ISINFromCUSIP(m[1], "US"); ok {
			return isin
		}
	}
	return ""
}
