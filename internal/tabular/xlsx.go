package tabular

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// ReadXLSX reads the first worksheet of an XLSX workbook as a table.
func ReadXLSX(content []byte) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Table{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, domain.ErrEmptyInput
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	t := Table{Delimiter: ','}
	for _, cells := range rows {
		row := make(Row, len(cells))
		for i, c := range cells {
			row[i] = NormalizeCell(c)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
