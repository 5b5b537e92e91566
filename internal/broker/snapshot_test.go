package broker

import (
	"testing"

	"github.com/mtlprog/stmtimport/internal/domain"
)

const ibkrStatement = `Introduction,Header,Name,Account,Alias,BaseCurrency,AccountType,AnalysisPeriod,PerformanceMeasure
Introduction,Data,Jane Doe,U1234567,Main,USD,Individual,"January 1, 2024 - March 31, 2024",TWR
Profile,Header,Name,Account Type,Customer Type,Account Capabilities,Base Currency
Profile,Data,Jane Doe,Individual,Individual,Margin,USD
Key Statistics,Header,BeginningNAV,EndingNAV,CumulativeReturn,1MonthReturn,3MonthReturn,BestReturn,BestReturnDate,WorstReturn,WorstReturnDate,Dividends,Interest,Fees,ChangeInNAV
Key Statistics,Data,10000,11500,15.0,2.1,5.3,6.2,01/31/24,-1.4,02/29/24,120.50,10.25,-5.00,1500
Historical Performance (Annualized),Header,Date,U1234567 Account Return
Historical Performance (Annualized),Data,202401,6.2
Historical Performance (Annualized),Data,Q1 2024,15.0
Historical Performance (Annualized),Data,2023,
Open Position Summary,Header,Date,FinancialInstrument,Currency,Symbol,Description,Sector,Quantity,ClosePrice,Value,Cost Basis,UnrealizedP&L,FX Rate To Base
Open Position Summary,Data,03/28/24,Stocks,USD,AAPL,APPLE INC,Technology,10,171.48,1714.80,1500.00,214.80,1
Open Position Summary,Data,03/28/24,ETFs,EUR,VWCE,VANGUARD FTSE ALL-WORLD,Broad,5,110.00,550.00,,,1.0812
Open Position Summary,Data,Total,,,,,,,,2264.80,,,
Open Position Summary,Data,03/28/24,Stocks,USD,ZERO,ZERO CORP,Technology,0,1,0,0,0,1
`

func TestIBKR(t *testing.T) {
	res, err := NewIBKR().Parse(ibkrStatement)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p := res.Portfolio

	if p.AccountID != "U1234567" || p.AccountName != "Main" || p.BaseCurrency != "USD" {
		t.Errorf("account = %q/%q/%q, want U1234567/Main/USD", p.AccountID, p.AccountName, p.BaseCurrency)
	}
	if p.Profile == nil || p.Profile.HolderName != "Jane Doe" || p.Profile.Capabilities != "Margin" {
		t.Errorf("Profile = %+v", p.Profile)
	}

	stats := p.Statistics
	if stats == nil {
		t.Fatal("Statistics = nil")
	}
	if stats.NAVEnd == nil || !stats.NAVEnd.Equal(d("11500")) {
		t.Errorf("NAVEnd = %v, want 11500", stats.NAVEnd)
	}
	if stats.Fees == nil || !stats.Fees.Equal(d("-5")) {
		t.Errorf("Fees = %v, want -5", stats.Fees)
	}
	if stats.WorstMonthDate != "02/29/24" {
		t.Errorf("WorstMonthDate = %q", stats.WorstMonthDate)
	}
	if stats.RealizedPnL != nil {
		t.Errorf("RealizedPnL = %v, want unset", stats.RealizedPnL)
	}

	wantPeriods := []struct {
		period string
		typ    domain.PeriodType
		hasRet bool
	}{
		{"202401", domain.PeriodMonth, true},
		{"Q1 2024", domain.PeriodQuarter, true},
		{"2023", domain.PeriodYear, false},
	}
	if len(p.Performance) != len(wantPeriods) {
		t.Fatalf("got %d performance records, want %d", len(p.Performance), len(wantPeriods))
	}
	for i, w := range wantPeriods {
		rec := p.Performance[i]
		if rec.Period != w.period || rec.PeriodType != w.typ || (rec.AccountReturn != nil) != w.hasRet {
			t.Errorf("Performance[%d] = %+v, want %s %s return=%v", i, rec, w.period, w.typ, w.hasRet)
		}
	}

	if len(p.Positions) != 2 {
		t.Fatalf("got %d positions, want 2 (total and zero rows dropped)", len(p.Positions))
	}
	checkPosition(t, p.Positions, wantPosition{
		symbol: "AAPL", quantity: "10", price: "171.48", value: "1714.80", cost: "1500", pnl: "214.80",
	})
	checkPosition(t, p.Positions, wantPosition{
		symbol: "VWCE", quantity: "5", value: "550", cost: "550", pnl: "0",
	})
	vwce := findPosition(t, p.Positions, "VWCE")
	if !vwce.FXRateToBase.Equal(d("1.0812")) || vwce.Currency != "EUR" || vwce.AssetType != "ETFs" {
		t.Errorf("VWCE = %s %s %s", vwce.FXRateToBase, vwce.Currency, vwce.AssetType)
	}
}

func TestIBKRActivityLotsSkipped(t *testing.T) {
	content := `Open Positions,Header,DataDiscriminator,Asset Category,Currency,Symbol,Quantity,Cost Price,Close Price,Value
Open Positions,Data,Summary,Stocks,USD,MSFT,4,300,420,1680
Open Positions,Data,Lot,Stocks,USD,MSFT,4,300,420,1680
`
	res, err := NewIBKR().Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(res.Portfolio.Positions) != 1 {
		t.Fatalf("got %d positions, want the summary row only", len(res.Portfolio.Positions))
	}
	checkPosition(t, res.Portfolio.Positions, wantPosition{
		symbol: "MSFT", quantity: "4", price: "420", value: "1680", cost: "1200", pnl: "480",
	})
}

func TestFidelity(t *testing.T) {
	content := `Account Number,Account Name,Symbol,Description,Quantity,Last Price,Last Price Change,Current Value,Today's Gain/Loss Dollar,Today's Gain/Loss Percent,Total Gain/Loss Dollar,Total Gain/Loss Percent,Percent Of Account,Cost Basis Total,Average Cost Basis,Type
Z12345678,Individual,SPAXX**,HELD IN MONEY MARKET,,,,$1234.56,,,,,10.00%,,,Cash,
Z12345678,Individual,AAPL,APPLE INC,10,$171.48,+$1.20,$1714.80,+$12.00,+0.70%,+$214.80,+14.32%,50.00%,$1500.00,$150.00,Cash,
Z12345678,Individual,Pending Activity,,,,,-$50.00,,,,,,,,,
Z12345678,Individual,FXAIX,FIDELITY 500 INDEX FUND,2.5,$180.00,,$450.00,,,,,,,,Cash,

"The data and information in this spreadsheet is provided to you solely for your use"
"Date downloaded 03/28/2024 5:00 PM ET"
`
	res, err := NewFidelity().Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p := res.Portfolio
	if p.AccountID != "Z12345678" || p.AccountName != "Individual" {
		t.Errorf("account = %q/%q", p.AccountID, p.AccountName)
	}
	if len(p.Positions) != 3 {
		t.Fatalf("got %d positions, want 3", len(p.Positions))
	}

	checkPosition(t, p.Positions, wantPosition{
		symbol: "SPAXX", quantity: "1234.56", price: "1", value: "1234.56", cost: "1234.56", pnl: "0",
	})
	if findPosition(t, p.Positions, "SPAXX").AssetType != domain.AssetCash {
		t.Error("SPAXX should be a cash position")
	}
	checkPosition(t, p.Positions, wantPosition{
		symbol: "AAPL", quantity: "10", price: "171.48", value: "1714.80", cost: "1500", pnl: "214.80",
	})
	checkPosition(t, p.Positions, wantPosition{
		symbol: "FXAIX", quantity: "2.5", value: "450", cost: "450", pnl: "0",
	})
	if at := findPosition(t, p.Positions, "FXAIX").AssetType; at != domain.AssetFunds {
		t.Errorf("FXAIX AssetType = %s, want Funds", at)
	}
}

func TestFidelityGuessesTypeFromWholeWords(t *testing.T) {
	content := `Account Number,Account Name,Symbol,Description,Quantity,Last Price,Current Value,Cost Basis Total
Z12345678,Individual,GS,GOLDMAN SACHS GROUP INC,2,$400.00,$800.00,$700.00
Z12345678,Individual,COIN,COINBASE GLOBAL INC CL A,3,$200.00,$600.00,$450.00
Z12345678,Individual,GLD,SPDR GOLD TRUST,1,$200.00,$200.00,$180.00
`
	res, err := NewFidelity().Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	for symbol, want := range map[string]domain.AssetType{
		"GS":   domain.AssetStocks,
		"COIN": domain.AssetStocks,
		"GLD":  domain.AssetCommodities,
	} {
		if at := findPosition(t, res.Portfolio.Positions, symbol).AssetType; at != want {
			t.Errorf("%s AssetType = %s, want %s", symbol, at, want)
		}
	}
}

func TestSchwab(t *testing.T) {
	content := `"Positions for account Individual ...123 as of 09:00 PM ET, 2024/03/28"

"Symbol","Description","Quantity","Price","Price Change $","Price Change %","Market Value","Day Change $","Day Change %","Cost Basis","Gain/Loss $","Gain/Loss %","Reinvest Dividends?","Capital Gains?","% Of Account","Security Type"
"MSFT","MICROSOFT CORP","20","$420.72","$1.50","0.36%","$8,414.40","$30.00","0.36%","$6,000.00","$2,414.40","40.24%","No","N/A","60%","Equity"
"SCHD","SCHWAB US DIVIDEND EQUITY ETF","50","$78.00","$0.10","0.1%","$3,900.00","$5.00","0.1%","$3,500.00","$400.00","11.4%","Yes","N/A","28%","ETFs & Closed End Funds"
"Cash & Cash Investments","--","--","--","--","--","$1,700.00","--","--","--","--","--","--","--","12%","Cash and Money Market"
"Account Total","--","--","--","--","--","$14,014.40","--","--","--","--","--","--","--","100%","--"
`
	res, err := NewSchwab().Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p := res.Portfolio
	if p.AccountName != "Individual ...123" {
		t.Errorf("AccountName = %q", p.AccountName)
	}
	if len(p.Positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(p.Positions))
	}
	checkPosition(t, p.Positions, wantPosition{
		symbol: "MSFT", quantity: "20", price: "420.72", value: "8414.40", cost: "6000", pnl: "2414.40",
	})
	checkPosition(t, p.Positions, wantPosition{
		symbol: "SCHD", quantity: "50", value: "3900", cost: "3500", pnl: "400",
	})
	if len(res.Skipped) != 0 {
		t.Errorf("Skipped = %+v, want none", res.Skipped)
	}
}

func TestTDAmeritrade(t *testing.T) {
	content := `Position Statement for D-12345678 (margin) on 3/28/24 17:00:00

Instrument,Qty,Days,Trade Price,Mark,Mrk Chng,P/L Open,P/L Day,BP Effect
Equities
AAPL,10,,150.00,171.48,1.20,214.80,12.00,
NVDA,5,,800.00,900.00,-5.00,500.00,-25.00,
Subtotals,,,,,,714.80,-13.00,
Overall Totals,,,,,,714.80,-13.00,
`
	res, err := NewTDAmeritrade().Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(res.Portfolio.Positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(res.Portfolio.Positions))
	}
	checkPosition(t, res.Portfolio.Positions, wantPosition{
		symbol: "AAPL", quantity: "10", price: "171.48", value: "1714.80", cost: "1500", pnl: "214.80",
	})
	checkPosition(t, res.Portfolio.Positions, wantPosition{
		symbol: "NVDA", quantity: "5", price: "900", value: "4500", cost: "4000", pnl: "500",
	})
}

func TestVanguardStopsAtTransactions(t *testing.T) {
	content := `Account Number,Investment Name,Symbol,Shares,Share Price,Total Value,
12345678,VANGUARD TOTAL STOCK MARKET INDEX ADMIRAL,VTSAX,100.5,120.00,12060.00,
12345678,VANGUARD FEDERAL MONEY MARKET FUND,VMFXX,500,1.00,500.00,

Account Number,Trade Date,Settlement Date,Transaction Type,Transaction Description,Investment Name,Symbol,Shares,Share Price,Principal Amount,Commissions and Fees,Net Amount,Accrued Interest,Account Type,
12345678,2024-03-01,2024-03-04,Buy,Buy,VANGUARD TOTAL STOCK MARKET INDEX ADMIRAL,VTSAX,10,118.00,-1180.00,0,-1180.00,0,CASH,
`
	res, err := NewVanguard().Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p := res.Portfolio
	if p.AccountID != "12345678" {
		t.Errorf("AccountID = %q", p.AccountID)
	}
	if len(p.Positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(p.Positions))
	}
	checkPosition(t, p.Positions, wantPosition{
		symbol: "VTSAX", quantity: "100.5", price: "120", value: "12060", cost: "12060", pnl: "0",
	})
	if at := findPosition(t, p.Positions, "VMFXX").AssetType; at != domain.AssetCash {
		t.Errorf("VMFXX AssetType = %s, want Cash", at)
	}
}

func TestETradeAccumulatesLots(t *testing.T) {
	content := `Account Summary
Account,Net Account Value,Total Gain $,Total Gain %,Day's Gain Unrealized $,Day's Gain Unrealized %,Available For Withdrawal,Cash Purchasing Power
Brokerage -1234,25000.00,5000.00,25.00%,100.00,0.40%,1000.00,1000.00

View Summary - All Positions
Symbol,Last Price $,Change $,Change %,Quantity,Price Paid $,Day's Gain $,Total Gain $,Total Gain %,Value $
AAPL,171.48,1.20,0.70,5,140.00,6.00,157.40,22.49,857.40
AAPL,171.48,1.20,0.70,5,160.00,6.00,57.40,7.18,857.40
MSFT,420.00,2.00,0.48,2,400.00,4.00,40.00,5.00,840.00
CASH,,,,,,,,,1000.00
TOTAL,,,,,,,,,2554.80
`
	res, err := NewETrade().Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(res.Portfolio.Positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(res.Portfolio.Positions))
	}
	checkPosition(t, res.Portfolio.Positions, wantPosition{
		symbol: "AAPL", quantity: "10", price: "171.48", value: "1714.80", cost: "1500", pnl: "214.80",
	})
	checkPosition(t, res.Portfolio.Positions, wantPosition{
		symbol: "MSFT", quantity: "2", value: "840", cost: "800", pnl: "40",
	})
}

func TestDEGIROPortfolio(t *testing.T) {
	content := `Product,Symbol/ISIN,Quantity,Closing,Local value,,Value in EUR
CASH & CASH FUND & FTX CASH (EUR),,,,EUR,125.40,125.40
APPLE INC,US0378331005,10,171.48,USD,1714.80,1575.00
`
	res, err := NewDEGIRO().Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	positions := res.Portfolio.Positions
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}

	cash := positions[0]
	if cash.AssetType != domain.AssetCash || cash.Currency != "EUR" || !cash.Value.Equal(d("125.40")) {
		t.Errorf("cash = %s %s %s", cash.AssetType, cash.Currency, cash.Value)
	}

	apple := positions[1]
	if apple.ISIN != "US0378331005" || apple.Symbol != "" {
		t.Errorf("ISIN/Symbol = %q/%q", apple.ISIN, apple.Symbol)
	}
	if apple.Currency != "USD" || !apple.Value.Equal(d("1714.80")) || !apple.Quantity.Equal(d("10")) {
		t.Errorf("apple = %s %s x %s", apple.Currency, apple.Value, apple.Quantity)
	}
	if apple.HasDefaultFXRate() || !apple.FXRateToBase.LessThan(d("1")) {
		t.Errorf("FXRateToBase = %s, want EUR/USD rate below 1", apple.FXRateToBase)
	}
}
