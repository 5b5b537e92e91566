package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	day1 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	day3 = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	aapl = Instrument{Symbol: "AAPL", Name: "Apple", Currency: "USD"}
	msft = Instrument{Symbol: "MSFT", Name: "Microsoft", Currency: "USD"}
)

func TestBuyAccumulates(t *testing.T) {
	l := New()
	l.Buy(aapl, d("5"), d("100"), d("-500"), day1)
	l.Buy(aapl, d("5"), d("120"), decimal.Zero, day2)

	positions := l.Positions()
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	p := positions[0]

	if !p.Quantity.Equal(d("10")) {
		t.Errorf("Quantity = %s, want 10", p.Quantity)
	}
	if !p.CostBasis.Equal(d("1100")) {
		t.Errorf("CostBasis = %s, want 1100", p.CostBasis)
	}
	if !p.ClosePrice.Equal(d("120")) {
		t.Errorf("ClosePrice = %s, want last trade price 120", p.ClosePrice)
	}
	if !p.Value.Equal(d("1200")) {
		t.Errorf("Value = %s, want 1200", p.Value)
	}
	if !p.UnrealizedPnL.Equal(d("100")) {
		t.Errorf("UnrealizedPnL = %s, want 100", p.UnrealizedPnL)
	}
	if !p.LastUpdated.Equal(day2) {
		t.Errorf("LastUpdated = %v, want %v", p.LastUpdated, day2)
	}
}

func TestSellUsesAverageCostBeforeSale(t *testing.T) {
	l := New()
	l.Buy(aapl, d("10"), d("100"), d("1000"), day1)
	l.Sell(aapl, d("-4"), d("150"), d("600"), day2)

	p := l.Positions()[0]
	if !p.Quantity.Equal(d("6")) {
		t.Errorf("Quantity = %s, want 6", p.Quantity)
	}
	// 4 shares at avg cost 100 removed
	if !p.CostBasis.Equal(d("600")) {
		t.Errorf("CostBasis = %s, want 600", p.CostBasis)
	}
	if !p.RealizedPnL.Equal(d("200")) {
		t.Errorf("RealizedPnL = %s, want 200", p.RealizedPnL)
	}
}

func TestSellEverythingDropsPositionButKeepsRealized(t *testing.T) {
	l := New()
	l.Buy(aapl, d("2"), d("50"), decimal.Zero, day1)
	l.Sell(aapl, d("2"), d("40"), decimal.Zero, day2)
	l.Buy(msft, d("1"), d("300"), decimal.Zero, day2)

	positions := l.Positions()
	if len(positions) != 1 || positions[0].Symbol != "MSFT" {
		t.Fatalf("Positions() = %+v, want only MSFT", positions)
	}

	stats := l.Statistics()
	if stats == nil || stats.RealizedPnL == nil {
		t.Fatal("Statistics() should report realized P&L of the closed position")
	}
	if !stats.RealizedPnL.Equal(d("-20")) {
		t.Errorf("RealizedPnL = %s, want -20", stats.RealizedPnL)
	}
}

func TestOversellCapsRemovedCost(t *testing.T) {
	l := New()
	l.Buy(aapl, d("1"), d("100"), decimal.Zero, day1)
	l.Sell(aapl, d("3"), d("110"), decimal.Zero, day2)

	if !l.Held(aapl).Equal(d("-2")) {
		t.Errorf("Held = %s, want -2", l.Held(aapl))
	}
	p := l.Positions()[0]
	if !p.CostBasis.IsZero() {
		t.Errorf("CostBasis = %s, want 0 after oversell", p.CostBasis)
	}
	// proceeds 330 minus the cost of the one share held
	if !p.RealizedPnL.Equal(d("230")) {
		t.Errorf("RealizedPnL = %s, want 230", p.RealizedPnL)
	}
}

func TestDividendLeavesQuantity(t *testing.T) {
	l := New()
	l.Buy(aapl, d("10"), d("100"), decimal.Zero, day1)
	l.Dividend(aapl, d("2.40"), day2)
	l.Dividend(aapl, d("-0.36"), day2)

	p := l.Positions()[0]
	if !p.Quantity.Equal(d("10")) {
		t.Errorf("Quantity = %s, want 10", p.Quantity)
	}
	if !p.DividendIncome.Equal(d("2.04")) {
		t.Errorf("DividendIncome = %s, want 2.04", p.DividendIncome)
	}
}

func TestSplitPreservesCost(t *testing.T) {
	l := New()
	l.Buy(aapl, d("10"), d("400"), decimal.Zero, day1)
	l.Split(aapl, d("40"), day2)

	p := l.Positions()[0]
	if !p.Quantity.Equal(d("40")) {
		t.Errorf("Quantity = %s, want 40", p.Quantity)
	}
	if !p.CostBasis.Equal(d("4000")) {
		t.Errorf("CostBasis = %s, want 4000", p.CostBasis)
	}

	l.AddShares(aapl, d("40"), day3)
	if !l.Held(aapl).Equal(d("80")) {
		t.Errorf("Held after AddShares = %s, want 80", l.Held(aapl))
	}
}

func TestPositionsWithoutPriceUseCost(t *testing.T) {
	l := New()
	l.Buy(aapl, d("4"), decimal.Zero, d("200"), day1)

	p := l.Positions()[0]
	if !p.Value.Equal(d("200")) || !p.ClosePrice.Equal(d("50")) {
		t.Errorf("Value/ClosePrice = %s/%s, want 200/50", p.Value, p.ClosePrice)
	}
}

func TestFirstSeenOrderAndMetadataFill(t *testing.T) {
	l := New()
	l.Buy(msft, d("1"), d("1"), decimal.Zero, day1)
	l.Buy(Instrument{Symbol: "AAPL"}, d("1"), d("1"), decimal.Zero, day1)
	l.Buy(aapl, d("1"), d("1"), decimal.Zero, day1)

	positions := l.Positions()
	if positions[0].Symbol != "MSFT" || positions[1].Symbol != "AAPL" {
		t.Errorf("order = %s,%s want MSFT,AAPL", positions[0].Symbol, positions[1].Symbol)
	}
	if positions[1].Name != "Apple" || positions[1].Currency != "USD" {
		t.Errorf("metadata not filled from later row: %+v", positions[1])
	}
}

func TestStatisticsNilWhenNothingBooked(t *testing.T) {
	l := New()
	l.Buy(aapl, d("1"), d("1"), decimal.Zero, day1)
	if l.Statistics() != nil {
		t.Error("Statistics() should be nil without realized P&L, dividends, fees or interest")
	}

	l.Fee(d("-1.5"))
	l.Interest(d("0.25"))
	stats := l.Statistics()
	if stats == nil || !stats.Fees.Equal(d("1.5")) || !stats.Interest.Equal(d("0.25")) {
		t.Errorf("Statistics() = %+v, want fees 1.5 and interest 0.25", stats)
	}
}

func TestSymbolOnlyRowsJoinISINEntry(t *testing.T) {
	l := New()
	withISIN := Instrument{Symbol: "AAPL", ISIN: "US0378331005"}
	l.Buy(withISIN, d("3"), d("100"), decimal.Zero, day1)
	l.Dividend(Instrument{Symbol: "AAPL"}, d("0.75"), day2)

	positions := l.Positions()
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	if !positions[0].DividendIncome.Equal(d("0.75")) {
		t.Errorf("DividendIncome = %s, want 0.75", positions[0].DividendIncome)
	}
}
