package normalize

import "testing"

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"aapl", "AAPL"},
		{" AAPL.US ", "AAPL"},
		{"VOD:LSE", "VOD"},
		{"SAP.DE", "SAP"},
		{"VUSA.L", "VUSA"},
		{"SHOP.TO.US", "SHOP"},
		{"BRK.A", "BRK.A"},
		{"BRK.B", "BRK.B"},
		{"US0378331005", "US0378331005"},
		{"", ""},
		{"AAPL.", "AAPL"},
		// dual-class ticker whose class letter collides with the TSX Venture suffix
		{"MKC.V", "MKC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeSymbol(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeSymbol(got); again != got {
				t.Errorf("NormalizeSymbol not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestIsISIN(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"US0378331005", true},
		{"ie00b4l5y983", true},
		{"AAPL", false},
		{"US037833100", false},
	}

	for _, tt := range tests {
		if got := IsISIN(tt.input); got != tt.want {
			t.Errorf("IsISIN(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"usd", "USD"},
		{"$", "USD"},
		{"€", "EUR"},
		{"GBX", "GBP"},
		{" chf ", "CHF"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCurrency(tt.input); got != tt.want {
			t.Errorf("NormalizeCurrency(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsKnownCurrency(t *testing.T) {
	if !IsKnownCurrency("eur") {
		t.Error("IsKnownCurrency(eur) = false, want true")
	}
	if IsKnownCurrency("XYZQ") {
		t.Error("IsKnownCurrency(XYZQ) = true, want false")
	}
	if IsKnownCurrency("") {
		t.Error("IsKnownCurrency(\"\") = true, want false")
	}
}

func TestISINFromCUSIP(t *testing.T) {
	tests := []struct {
		cusip   string
		country string
		want    string
		wantOK  bool
	}{
		{"037833100", "US", "US0378331005", true},
		{"594918104", "us", "US5949181045", true},
		{"12345", "US", "", false},
		{"037833100", "USA", "", false},
	}

	for _, tt := range tests {
		got, ok := ISINFromCUSIP(tt.cusip, tt.country)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ISINFromCUSIP(%q, %q) = (%q, %v), want (%q, %v)", tt.cusip, tt.country, got, ok, tt.want, tt.wantOK)
		}
	}
}
