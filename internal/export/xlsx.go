package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// XLSXWriter implements SheetWriter by writing a workbook to an io.Writer.
type XLSXWriter struct {
	w io.Writer
}

// NewXLSXWriter creates an XLSXWriter writing to w.
func NewXLSXWriter(w io.Writer) *XLSXWriter {
	return &XLSXWriter{w: w}
}

// WriteXLSX writes the positions and summary sheets of p as an XLSX workbook.
func WriteXLSX(w io.Writer, p domain.Portfolio) error {
	return NewXLSXWriter(w).Write(context.Background(), Sheets(p))
}

func (x *XLSXWriter) Write(_ context.Context, data []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range data {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", s.Name, err)
		}

		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return fmt.Errorf("addressing row %d: %w", r+1, err)
			}
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				return fmt.Errorf("writing %s row %d: %w", s.Name, r+1, err)
			}
		}
	}

	if err := f.Write(x.w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
