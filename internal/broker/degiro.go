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

var currencyCellRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)

// DEGIRO headers are localized; aliases cover the Dutch, German and English exports.
// Currency columns carry no header and sit right of the amount they qualify.
var degiroTransactionSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleDate:     {"datum", "date"},
		tabular.RoleTime:     {"tijd", "uhrzeit", "time"},
		tabular.RoleName:     {"product", "produkt"},
		tabular.RoleISIN:     {"isin"},
		tabular.RoleExchange: {"beurs", "referenzbörse", "reference exchange", "reference"},
		tabular.RoleQuantity: {"aantal", "anzahl", "quantity"},
		tabular.RolePrice:    {"koers", "kurs", "price"},
		tabular.RoleValue:    {"lokale waarde", "wert in lokalwährung", "local value"},
		tabular.RoleFXRate:   {"wisselkoers", "wechselkurs", "exchange rate"},
		tabular.RoleFees: {
			"transactiekosten en/of kosten van derden", "transaktionskosten und/oder gebühren dritter",
			"transaction and/or third party fees", "transactiekosten", "transaktionskosten", "transaction costs",
		},
		tabular.RoleAmount: {"totaal", "gesamt", "total"},
	},
	Required: []tabular.Role{tabular.RoleDate, tabular.RoleName, tabular.RoleISIN, tabular.RoleQuantity, tabular.RolePrice},
}

var degiroPortfolioSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleName:     {"product", "produkt"},
		tabular.RoleSymbol:   {"symbool/isin", "symbol/isin"},
		tabular.RoleQuantity: {"aantal", "anzahl", "quantity"},
		tabular.RolePrice:    {"slotkoers", "schlusskurs", "closing", "closing price"},
		tabular.RoleValue:    {"lokale waarde", "wert in lokalwährung", "local value"},
		tabular.RoleAmount:   {"waarde in eur", "wert in eur", "value in eur"},
	},
	Required: []tabular.Role{tabular.RoleName, tabular.RoleSymbol, tabular.RoleValue},
}

// DEGIRO reads either the transactions export, replayed through the ledger, or the
// portfolio snapshot. Numbers may use either decimal convention.
type DEGIRO struct{ base }

func NewDEGIRO() *DEGIRO { return &DEGIRO{newBase(domain.BrokerDEGIRO)} }

func (e *DEGIRO) Parse(content string) (Result, error) {
	t := tabular.Read(content, tabular.SniffDelimiter(content))
	if t.IsEmpty() {
		return Result{}, domain.ErrEmptyInput
	}

	if idx, cm, err := degiroTransactionSchema.FindHeader(t, headerScanLines); err == nil {
		return e.transactions(t, idx, cm), nil
	}
	idx, cm, err := degiroPortfolioSchema.FindHeader(t, headerScanLines)
	if err != nil {
		return Result{}, err
	}
	return e.portfolio(t, idx, cm), nil
}

func (e *DEGIRO) transactions(t tabular.Table, headerIdx int, cm tabular.ColumnMap) Result {
	l := ledger.New()
	var skipped skips

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		isin := strings.ToUpper(cm.Get(row, tabular.RoleISIN))
		name := cm.Get(row, tabular.RoleName)
		if isin == "" && name == "" {
			skipped.add(t.Line(i), "transaction without product")
			return true
		}

		qty := normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RoleQuantity))
		if qty.IsZero() {
			skipped.add(t.Line(i), "transaction without quantity for %s", name)
			return true
		}

		at, _ := normalize.ParseDate(cm.Get(row, tabular.RoleDate) + " " + cm.Get(row, tabular.RoleTime))
		inst := ledger.Instrument{
			Name:     name,
			ISIN:     isin,
			Exchange: cm.Get(row, tabular.RoleExchange),
			Currency: degiroCurrencyRight(cm, row, tabular.RolePrice),
		}
		price := normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RolePrice))
		local := normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RoleValue))

		if fee := normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RoleFees)); !fee.IsZero() {
			l.Fee(fee)
		}

		// quantity is signed: positive buys, negative sells
		if qty.IsPositive() {
			l.Buy(inst, qty, price, local, at)
		} else {
			l.Sell(inst, qty, price, local, at)
		}
		return true
	})

	portfolio := e.newPortfolio()
	portfolio.Positions = l.Positions()
	portfolio.Statistics = l.Statistics()
	return Result{Portfolio: portfolio, Skipped: skipped}
}

func (e *DEGIRO) portfolio(t tabular.Table, headerIdx int, cm tabular.ColumnMap) Result {
	portfolio := e.newPortfolio()
	var skipped skips

	dataRows(t, headerIdx, func(i int, row tabular.Row) bool {
		name := cm.Get(row, tabular.RoleName)
		id := cm.Get(row, tabular.RoleSymbol)
		currency := cm.Get(row, tabular.RoleValue)
		local := normalize.ParseFlexibleDecimal(row.Cell(cm[tabular.RoleValue] + 1))

		// "CASH & CASH FUND & FTX CASH (EUR)" has no symbol and no quantity
		if id == "" {
			if local.IsZero() {
				skipped.add(t.Line(i), "row without symbol or value")
				return true
			}
			p := domain.NewPosition("", name)
			p.AssetType = domain.AssetCash
			p.Currency = currency
			p.Quantity = local
			p.ClosePrice = decimal.NewFromInt(1)
			p.DeriveMissing(false, false, false)
			portfolio.Positions = append(portfolio.Positions, p)
			return true
		}

		p := domain.NewPosition("", name)
		if normalize.IsISIN(id) {
			p.ISIN = strings.ToUpper(id)
		} else {
			p.Symbol = id
		}
		p.AssetType = normalize.AssetTypeFromName(name)
		p.Currency = currency
		p.Quantity = normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RoleQuantity))
		p.ClosePrice = normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RolePrice))
		p.Value = local
		if inEUR := normalize.ParseFlexibleDecimal(cm.Get(row, tabular.RoleAmount)); inEUR.IsPositive() && local.IsPositive() {
			p.FXRateToBase = inEUR.Div(local).Round(6)
		}
		p.DeriveMissing(true, false, false)
		if p.IsEmpty() {
			return true
		}
		portfolio.Positions = append(portfolio.Positions, p)
		return true
	})

	return Result{Portfolio: portfolio, Skipped: skipped}
}

// degiroCurrencyRight returns the unlabeled currency cell right of role's column.
func degiroCurrencyRight(cm tabular.ColumnMap, row tabular.Row, role tabular.Role) string {
	idx, ok := cm[role]
	if !ok {
		return ""
	}
	c := row.Cell(idx + 1)
	if !currencyCellRegex.MatchString(c) {
		return ""
	}
	return strings.ToUpper(c)
}
