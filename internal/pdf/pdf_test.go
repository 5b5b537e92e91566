package pdf

import (
	"errors"
	"slices"
	"testing"

	"github.com/mtlprog/stmtimport/internal/domain"
)

func TestToRows(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantDelim rune
		wantRows  [][]string
	}{
		{
			name:      "tab separated",
			text:      "Symbol\tQuantity\tPrice\nAAPL\t10\t150.00\n",
			wantDelim: '\t',
			wantRows:  [][]string{{"Symbol", "Quantity", "Price"}, {"AAPL", "10", "150.00"}},
		},
		{
			name:      "comma lines",
			text:      "Statement for March\nSymbol,Quantity,Price\nAAPL,10,150.00\n",
			wantDelim: ',',
			wantRows:  [][]string{{"Symbol", "Quantity", "Price"}, {"AAPL", "10", "150.00"}},
		},
		{
			name:      "semicolon lines with decimal commas",
			text:      "Symbol;Quantity;Price\nSAP;5;150,25\nASML;2;700,10\n",
			wantDelim: ';',
			wantRows:  [][]string{{"Symbol", "Quantity", "Price"}, {"SAP", "5", "150,25"}, {"ASML", "2", "700,10"}},
		},
		{
			name:      "column aligned",
			text:      "  Portfolio Statement\nSymbol    Quantity   Price\nAAPL      10         1,500.00\n",
			wantDelim: ',',
			wantRows:  [][]string{{"Symbol", "Quantity", "Price"}, {"AAPL", "10", "1,500.00"}},
		},
		{
			name:      "single delimited line stays column aligned",
			text:      "a,b,c\nSymbol  Value\n",
			wantDelim: ',',
			wantRows:  [][]string{{"Symbol", "Value"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, delim := ToRows(tt.text)
			if delim != tt.wantDelim {
				t.Errorf("delim = %q, want %q", delim, tt.wantDelim)
			}
			if !slices.EqualFunc(rows, tt.wantRows, slices.Equal[[]string]) {
				t.Errorf("rows = %q, want %q", rows, tt.wantRows)
			}
		})
	}
}

func TestToCSVQuotes(t *testing.T) {
	got := ToCSV([][]string{{"Symbol", "Value"}, {"AAPL", "1,500.00"}}, ',')
	want := "Symbol,Value\nAAPL,\"1,500.00\"\n"
	if got != want {
		t.Errorf("ToCSV() = %q, want %q", got, want)
	}
}

func TestTextToCSVFromAlignedColumns(t *testing.T) {
	got := TextToCSV("Symbol    Quantity   Price\nAAPL      10         150.00\n")
	want := "Symbol,Quantity,Price\nAAPL,10,150.00\n"
	if got != want {
		t.Errorf("TextToCSV() = %q, want %q", got, want)
	}
}

func TestExtractTextRejectsInvalidInput(t *testing.T) {
	if _, err := ExtractText(nil); !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("ExtractText(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, err := ExtractText([]byte("Symbol,Quantity\nAAPL,10\n")); err == nil {
		t.Error("ExtractText(csv bytes) should fail")
	}
}
