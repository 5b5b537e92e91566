// Package export renders portfolios as spreadsheet tables and publishes them to XLSX
// files or Google Sheets.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/stmtimport/internal/domain"
)

const (
	PositionsSheet = "POSITIONS"
	SummarySheet   = "SUMMARY"
)

// Sheet is one named table of cell values.
type Sheet struct {
	Name string
	Rows [][]any
}

// SheetWriter writes sheets to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, sheets []Sheet) error
}

// Service publishes portfolios through a SheetWriter.
type Service struct {
	writer SheetWriter
}

// NewService creates a new export Service.
func NewService(writer SheetWriter) *Service {
	return &Service{writer: writer}
}

// Export renders p and writes it. Implements store.AfterImportHook.
func (s *Service) Export(ctx context.Context, p domain.Portfolio) error {
	if err := s.writer.Write(ctx, Sheets(p)); err != nil {
		return fmt.Errorf("writing portfolio %s: %w", p.ID, err)
	}
	return nil
}

// Sheets renders the positions and summary sheets of p.
func Sheets(p domain.Portfolio) []Sheet {
	return []Sheet{
		{Name: PositionsSheet, Rows: Rows(p)},
		{Name: SummarySheet, Rows: SummaryRows(p)},
	}
}

// Rows builds the positions table: a header row, one row per position and a total row
// in the base currency.
// Columns: Symbol | Name | ISIN | Type | Sector | Currency | Exchange | Quantity | Price |
// Value | Cost Basis | Unrealized P&L | Realized P&L | Dividends | FX Rate | Value (base) | Updated
func Rows(p domain.Portfolio) [][]any {
	data := make([][]any, 0, len(p.Positions)+2)
	data = append(data, []any{
		"Symbol", "Name", "ISIN", "Type", "Sector", "Currency", "Exchange",
		"Quantity", "Price", "Value", "Cost Basis", "Unrealized P&L", "Realized P&L",
		"Dividends", "FX Rate", "Value (" + p.BaseCurrency + ")", "Updated",
	})

	for _, pos := range p.Positions {
		data = append(data, []any{
			pos.Symbol, pos.Name, pos.ISIN, string(pos.AssetType), string(pos.Sector), pos.Currency, pos.Exchange,
			toFloat(pos.Quantity), toFloat(pos.ClosePrice), toFloat(pos.Value), toFloat(pos.CostBasis),
			toFloat(pos.UnrealizedPnL), toFloat(pos.RealizedPnL), toFloat(pos.DividendIncome),
			toFloat(pos.FXRateToBase), toFloat(pos.Value.Mul(pos.FXRateToBase)), formatDate(pos.LastUpdated),
		})
	}

	total := make([]any, 17)
	total[0] = "Total"
	total[15] = toFloat(p.TotalValue())
	return append(data, total)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func ptrFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}
