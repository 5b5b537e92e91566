package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/stmtimport/internal/domain"
)

func samplePortfolio() domain.Portfolio {
	aapl := domain.NewPosition("AAPL", "Apple Inc")
	aapl.Currency = "USD"
	aapl.Quantity = decimal.NewFromInt(10)
	aapl.ClosePrice = decimal.NewFromInt(150)
	aapl.Value = decimal.NewFromInt(1500)
	aapl.LastUpdated = time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC)

	sap := domain.NewPosition("SAP", "SAP SE")
	sap.Currency = "EUR"
	sap.Quantity = decimal.NewFromInt(5)
	sap.Value = decimal.NewFromInt(1000)
	sap.FXRateToBase = decimal.RequireFromString("1.1")

	return domain.Portfolio{
		ID:           "p1",
		AccountID:    "U1234567",
		BaseCurrency: "USD",
		Broker:       domain.BrokerIBKR,
		Positions:    []domain.Position{aapl, sap},
		Statistics:   &domain.PortfolioStatistics{Fees: domain.DecimalPtr(decimal.NewFromInt(-5))},
		Performance: []domain.PerformanceRecord{
			{Period: "2024-02", PeriodType: domain.PeriodMonth, AccountReturn: domain.DecimalPtr(decimal.RequireFromString("1.5"))},
			{Period: "2024", PeriodType: domain.PeriodYear},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(samplePortfolio())

	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header, 2 positions and total", len(rows))
	}
	header := rows[0]
	if header[15] != "Value (USD)" {
		t.Errorf("base value header = %v, want Value (USD)", header[15])
	}
	for i, row := range rows {
		if len(row) != len(header) {
			t.Errorf("row %d has %d columns, want %d", i, len(row), len(header))
		}
	}

	aapl := rows[1]
	if aapl[0] != "AAPL" || aapl[7] != 10.0 || aapl[16] != "2024-03-28" {
		t.Errorf("AAPL row = %v", aapl)
	}
	if sap := rows[2]; sap[15] != 1100.0 {
		t.Errorf("SAP base value = %v, want 1100", sap[15])
	}
	if total := rows[3]; total[0] != "Total" || total[15] != 2600.0 {
		t.Errorf("total row = %v, want 2600 in base currency", total)
	}
}

func TestSummaryRows(t *testing.T) {
	rows := SummaryRows(samplePortfolio())

	byLabel := map[string]any{}
	for _, row := range rows[:len(summaryFields)] {
		byLabel[row[0].(string)] = row[1]
	}
	if byLabel["Account"] != "U1234567" || byLabel["Broker"] != "ibkr" {
		t.Errorf("account rows = %v / %v", byLabel["Account"], byLabel["Broker"])
	}
	if byLabel["Fees"] != -5.0 {
		t.Errorf("Fees = %v, want -5", byLabel["Fees"])
	}
	if byLabel["NAV End"] != nil {
		t.Errorf("NAV End = %v, want nil when not supplied", byLabel["NAV End"])
	}

	perf := rows[len(summaryFields)+2:]
	if len(perf) != 2 {
		t.Fatalf("got %d performance rows, want 2", len(perf))
	}
	if perf[0][2] != 1.5 || perf[1][2] != nil {
		t.Errorf("performance returns = %v, %v", perf[0][2], perf[1][2])
	}
}

func TestSummaryRowsWithoutStatistics(t *testing.T) {
	rows := SummaryRows(domain.Portfolio{})
	if len(rows) != len(summaryFields) {
		t.Errorf("got %d rows, want only the labelled fields", len(rows))
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, samplePortfolio()); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != PositionsSheet || got[1] != SummarySheet {
		t.Fatalf("sheets = %v", got)
	}
	symbol, err := f.GetCellValue(PositionsSheet, "A2")
	if err != nil || symbol != "AAPL" {
		t.Errorf("A2 = %q, %v, want AAPL", symbol, err)
	}
}

type mockWriter struct {
	sheets []Sheet
	err    error
}

func (m *mockWriter) Write(_ context.Context, sheets []Sheet) error {
	m.sheets = sheets
	return m.err
}

func TestServiceExport(t *testing.T) {
	w := &mockWriter{}
	if err := NewService(w).Export(context.Background(), samplePortfolio()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(w.sheets) != 2 || w.sheets[0].Name != PositionsSheet {
		t.Errorf("sheets = %+v", w.sheets)
	}

	boom := errors.New("quota exceeded")
	if err := NewService(&mockWriter{err: boom}).Export(context.Background(), samplePortfolio()); !errors.Is(err, boom) {
		t.Errorf("Export() error = %v, want wrapped writer error", err)
	}
}
