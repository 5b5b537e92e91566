// Package tabular turns delimited statement text into rows of trimmed cells and
// resolves header columns to semantic roles.
package tabular

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// Row is one line of cells. A blank source line is an empty Row.
type Row []string

// Table is a statement split into rows. Rows read line by line map row i to source
// line i+1; rows read as whole records carry their start lines in Lines.
type Table struct {
	Rows      []Row
	Lines     []int
	Delimiter rune
}

// Line returns the 1-based source line number of row index i.
func (t Table) Line(i int) int {
	if i >= 0 && i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 1
}

// IsBlank reports whether the row has no non-empty cell.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if c != "" {
			return false
		}
	}
	return true
}

// Cell returns the cell at i or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// IsEmpty reports whether no row of the table carries a value.
func (t Table) IsEmpty() bool {
	for _, r := range t.Rows {
		if !r.IsBlank() {
			return false
		}
	}
	return true
}

// Read splits text into rows using delim. A UTF-8 BOM is stripped, CRLF and CR line
// endings are normalized, and blank lines are kept as empty rows so sectioned exports
// can see their breaks. Each line is split on its own with quote awareness; a line the
// CSV reader rejects falls back to a plain split.
func Read(text string, delim rune) Table {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimRight(text, "\n")

	t := Table{Delimiter: delim}
	if strings.TrimSpace(text) == "" {
		return t
	}

	for _, line := range strings.Split(text, "\n") {
		t.Rows = append(t.Rows, splitLine(line, delim))
	}
	return t
}

func splitLine(line string, delim rune) Row {
	if strings.TrimSpace(line) == "" {
		return Row{}
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	cells, err := r.Read()
	if err != nil {
		cells = strings.Split(line, string(delim))
	}

	row := make(Row, len(cells))
	for i, c := range cells {
		row[i] = NormalizeCell(c)
	}
	return row
}

// NormalizeCell trims whitespace and stray quotes around a cell.
func NormalizeCell(c string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(c), `"`))
}

// ReadRecords parses text as one CSV document so quoted cells may span lines.
// Blank lines are dropped. Malformed records end the read; rows read so far are kept.
func ReadRecords(text string, delim rune) Table {
	text = strings.TrimPrefix(text, "\ufeff")
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	t := Table{Delimiter: delim}
	for {
		cells, err := r.Read()
		if err != nil {
			break
		}
		line, _ := r.FieldPos(0)
		row := make(Row, len(cells))
		for i, c := range cells {
			row[i] = NormalizeCell(c)
		}
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, line)
	}
	return t
}

// SniffDelimiter picks comma, semicolon or tab by counting them on the leading lines.
// Comma wins ties.
func SniffDelimiter(text string) rune {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	if len(lines) > 20 {
		lines = lines[:20]
	}

	counts := map[rune]int{}
	for _, line := range lines {
		inQuotes := false
		for _, r := range line {
			switch {
			case r == '"':
				inQuotes = !inQuotes
			case !inQuotes && (r == ',' || r == ';' || r == '\t'):
				counts[r]++
			}
		}
	}

	best := ','
	for _, d := range []rune{';', '\t'} {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

// Encode writes the table back to delimited text with CSV quoting.
func Encode(t Table, delim rune) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delim
	for _, r := range t.Rows {
		// csv.Writer never fails on a bytes.Buffer
		_ = w.Write(r)
	}
	w.Flush()
	return buf.String()
}
