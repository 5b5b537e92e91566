// Package pdf turns the text layer of PDF statements into delimited rows that the
// CSV extractors can read.
package pdf

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/samber/lo"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

// MinDelimitedLines is how many lines must carry two or more commas (or semicolons)
// before the text is treated as delimited rather than column-aligned.
const MinDelimitedLines = 2

var whitespaceRunRegex = regexp.MustCompile(`\s{2,}`)

// ExtractText returns the text of every page, one visual row per line. Fragments that
// sit far apart on a row are separated by two spaces so column layout survives.
func ExtractText(content []byte) (text string, err error) {
	if len(content) == 0 {
		return "", domain.ErrEmptyInput
	}

	// the reader panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i, err)
		}
		for _, row := range rows {
			b.WriteString(joinFragments(row.Content))
			b.WriteByte('\n')
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: pdf has no text layer", domain.ErrEmptyInput)
	}
	return b.String(), nil
}

func joinFragments(texts pdf.TextHorizontal) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			gap := t.X - (prev.X + prev.W)
			switch {
			case gap > prev.FontSize:
				b.WriteString("  ")
			case gap > prev.FontSize/4:
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return b.String()
}

// ToRows splits extracted text into rows of cells and reports the delimiter they were
// split on. Tab-separated text wins outright; otherwise commas or semicolons are used
// when enough lines carry them, and column-aligned text is split on runs of two or
// more spaces and reported as comma-delimited. Rows with fewer than two cells are
// dropped.
func ToRows(text string) ([][]string, rune) {
	text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
	lines := lo.FilterMap(strings.Split(text, "\n"), func(l string, _ int) (string, bool) {
		l = strings.TrimSpace(l)
		return l, l != ""
	})

	delim, delimited := pickDelimiter(lines)

	var rows [][]string
	if delimited {
		t := tabular.Read(strings.Join(lines, "\n"), delim)
		rows = lo.Map(t.Rows, func(r tabular.Row, _ int) []string { return r })
	} else {
		for _, l := range lines {
			rows = append(rows, whitespaceRunRegex.Split(l, -1))
		}
	}

	return lo.Filter(rows, func(r []string, _ int) bool { return len(r) >= 2 }), delim
}

func pickDelimiter(lines []string) (rune, bool) {
	if lo.SomeBy(lines, func(l string) bool { return strings.Contains(l, "\t") }) {
		return '\t', true
	}

	commas := lo.CountBy(lines, func(l string) bool { return strings.Count(l, ",") >= 2 })
	semicolons := lo.CountBy(lines, func(l string) bool { return strings.Count(l, ";") >= 2 })
	switch {
	case commas >= MinDelimitedLines && commas >= semicolons:
		return ',', true
	case semicolons >= MinDelimitedLines:
		return ';', true
	default:
		return ',', false
	}
}

// ToCSV writes rows as delimited text with CSV quoting.
func ToCSV(rows [][]string, delim rune) string {
	t := tabular.Table{Rows: lo.Map(rows, func(r []string, _ int) tabular.Row { return r })}
	return tabular.Encode(t, delim)
}

// TextToCSV runs ToRows and ToCSV on extracted text.
func TextToCSV(text string) string {
	return ToCSV(ToRows(text))
}
