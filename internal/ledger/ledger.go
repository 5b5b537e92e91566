// Package ledger replays transaction rows into net positions.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// Instrument identifies the security a transaction row refers to.
type Instrument struct {
	Symbol    string
	Name      string
	ISIN      string
	Currency  string
	Exchange  string
	AssetType domain.AssetType
}


type entry struct {
	inst        Instrument
	quantity    decimal.Decimal
	costBasis   decimal.Decimal
	realized    decimal.Decimal
	dividends   decimal.Decimal
	lastPrice   decimal.Decimal
	lastUpdated time.Time
}

// Ledger accumulates buys, sells, dividends and splits per instrument.
// The zero value is not usable; call New.
type Ledger struct {
	entries  map[string]*entry
	aliases  map[string]string
	order    []string
	fees     decimal.Decimal
	interest decimal.Decimal
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]*entry), aliases: make(map[string]string)}
}

// key groups rows by ISIN first, then by symbol, then by name. A symbol seen next to
// an ISIN resolves to that ISIN's entry, so rows that omit the ISIN still land there.
func (l *Ledger) key(inst Instrument) string {
	sym := "sym:" + inst.Symbol
	switch {
	case inst.ISIN != "":
		k := "isin:" + inst.ISIN
		if _, taken := l.aliases[sym]; inst.Symbol != "" && !taken {
			l.aliases[sym] = k
		}
		return k
	case inst.Symbol != "":
		if k, ok := l.aliases[sym]; ok {
			return k
		}
		return sym
	default:
		return "name:" + inst.Name
	}
}

func (l *Ledger) get(inst Instrument) *entry {
	k := l.key(inst)
	e, ok := l.entries[k]
	if !ok {
		e = &entry{inst: inst}
		l.entries[k] = e
		l.order = append(l.order, k)
		return e
	}
	// later rows may carry metadata the first one lacked
	if e.inst.Name == "" {
		e.inst.Name = inst.Name
	}
	if e.inst.Symbol == "" {
		e.inst.Symbol = inst.Symbol
	}
	if e.inst.ISIN == "" {
		e.inst.ISIN = inst.ISIN
	}
	if e.inst.Currency == "" {
		e.inst.Currency = inst.Currency
	}
	if e.inst.Exchange == "" {
		e.inst.Exchange = inst.Exchange
	}
	if e.inst.AssetType == "" {
		e.inst.AssetType = inst.AssetType
	}
	return e
}

func (e *entry) observe(price decimal.Decimal, at time.Time) {
	if price.IsPositive() {
		e.lastPrice = price
	}
	if at.After(e.lastUpdated) {
		e.lastUpdated = at
	}
}

// Buy adds shares and their cost. A zero amount is derived as quantity × price.
func (l *Ledger) Buy(inst Instrument, quantity, price, amount decimal.Decimal, at time.Time) {
	e := l.get(inst)
	qty := quantity.Abs()
	cost := amount.Abs()
	if cost.IsZero() {
		cost = qty.Mul(price.Abs())
	}
	e.quantity = e.quantity.Add(qty)
	e.costBasis = e.costBasis.Add(cost)
	e.observe(price.Abs(), at)
}

// Sell removes shares at the average cost held before the sale and books the
// difference to realized P&L. A zero amount is derived as quantity × price.
func (l *Ledger) Sell(inst Instrument, quantity, price, amount decimal.Decimal, at time.Time) {
	e := l.get(inst)
	sold := quantity.Abs()
	proceeds := amount.Abs()
	if proceeds.IsZero() {
		proceeds = sold.Mul(price.Abs())
	}

	held := e.quantity
	removed := decimal.Zero
	if held.IsPositive() {
		avgCost := domain.SafeDiv(e.costBasis, held)
		removed = avgCost.Mul(decimal.Min(sold, held))
	}

	e.quantity = held.Sub(sold)
	e.costBasis = e.costBasis.Sub(removed)
	if !e.quantity.IsPositive() {
		e.costBasis = decimal.Zero
	}
	e.realized = e.realized.Add(proceeds.Sub(removed))
	e.observe(price.Abs(), at)
}

// Dividend books income against an instrument. Withholding tax is passed as a
// negative amount. Quantity is untouched.
func (l *Ledger) Dividend(inst Instrument, amount decimal.Decimal, at time.Time) {
	e := l.get(inst)
	e.dividends = e.dividends.Add(amount)
	if at.After(e.lastUpdated) {
		e.lastUpdated = at
	}
}

// Split sets the quantity held after a split. Cost basis is preserved.
func (l *Ledger) Split(inst Instrument, newQuantity decimal.Decimal, at time.Time) {
	e := l.get(inst)
	e.quantity = newQuantity.Abs()
	if at.After(e.lastUpdated) {
		e.lastUpdated = at
	}
}

// AddShares adds split or bonus shares without cost.
func (l *Ledger) AddShares(inst Instrument, quantity decimal.Decimal, at time.Time) {
	e := l.get(inst)
	e.quantity = e.quantity.Add(quantity)
	if at.After(e.lastUpdated) {
		e.lastUpdated = at
	}
}

// Fee books an account-level fee. The sign is ignored.
func (l *Ledger) Fee(amount decimal.Decimal) {
	l.fees = l.fees.Add(amount.Abs())
}

// Interest books account-level interest.
func (l *Ledger) Interest(amount decimal.Decimal) {
	l.interest = l.interest.Add(amount)
}

// Held returns the current quantity for an instrument.
func (l *Ledger) Held(inst Instrument) decimal.Decimal {
	if e, ok := l.entries[l.key(inst)]; ok {
		return e.quantity
	}
	return decimal.Zero
}

// Positions returns one position per instrument with a non-zero net quantity, in
// first-seen order. Positions are valued at the last trade price; without one the
// cost basis stands in for the value.
func (l *Ledger) Positions() []domain.Position {
	out := make([]domain.Position, 0, len(l.order))
	for _, k := range l.order {
		e := l.entries[k]
		if e.quantity.IsZero() {
			continue
		}

		p := domain.NewPosition(e.inst.Symbol, e.inst.Name)
		p.ISIN = e.inst.ISIN
		p.Currency = e.inst.Currency
		p.Exchange = e.inst.Exchange
		p.AssetType = e.inst.AssetType
		p.Quantity = e.quantity
		p.CostBasis = e.costBasis
		p.RealizedPnL = e.realized
		p.DividendIncome = e.dividends
		p.LastUpdated = e.lastUpdated

		if e.lastPrice.IsPositive() {
			p.ClosePrice = e.lastPrice
			p.Value = e.quantity.Mul(e.lastPrice)
		} else {
			p.Value = e.costBasis
			p.ClosePrice = domain.SafeDiv(e.costBasis, e.quantity)
		}
		p.UnrealizedPnL = p.Value.Sub(p.CostBasis)
		out = append(out, p)
	}
	return out
}

// Statistics summarizes realized P&L, dividends, fees and interest across every
// instrument, closed ones included. Nil is returned when nothing was booked.
func (l *Ledger) Statistics() *domain.PortfolioStatistics {
	realized, dividends := decimal.Zero, decimal.Zero
	for _, e := range l.entries {
		realized = realized.Add(e.realized)
		dividends = dividends.Add(e.dividends)
	}

	if realized.IsZero() && dividends.IsZero() && l.fees.IsZero() && l.interest.IsZero() {
		return nil
	}

	stats := &domain.PortfolioStatistics{}
	if !realized.IsZero() {
		stats.RealizedPnL = domain.DecimalPtr(realized)
	}
	if !dividends.IsZero() {
		stats.Dividends = domain.DecimalPtr(dividends)
	}
	if !l.fees.IsZero() {
		stats.Fees = domain.DecimalPtr(l.fees)
	}
	if !l.interest.IsZero() {
		stats.Interest = domain.DecimalPtr(l.interest)
	}
	return stats
}
