package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
)

var (
	isinRegex  = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{10}$`)
	cusipRegex = regexp.MustCompile(`^[0-9A-Z]{9}$`)
)

// exchangeSuffixes are trailing ticker segments that name a listing venue rather than a
// share class. The list is heuristic: a class letter equal to one of these is stripped too.
var exchangeSuffixes = map[string]bool{
	"US": true, "NASDAQ": true, "NYSE": true, "ARCA": true, "AMEX": true, "BATS": true, "OTC": true,
	"LSE": true, "L": true, "LN": true, "XETRA": true, "XETR": true, "DE": true, "F": true, "GY": true,
	"HK": true, "HKEX": true, "TO": true, "TSX": true, "V": true, "CN": true, "AX": true, "ASX": true,
	"NSE": true, "BSE": true, "NS": true, "BO": true, "PA": true, "FP": true, "AS": true, "NA": true,
	"MI": true, "IM": true, "SW": true, "SE": true, "MC": true, "SM": true, "BR": true, "ST": true,
	"CO": true, "OL": true, "HE": true, "VI": true, "WA": true, "T": true, "JP": true, "TYO": true,
	"KS": true, "SS": true, "SZ": true, "SI": true, "NZ": true, "SA": true, "MX": true, "EU": true,
}

var currencyAliases = map[string]string{
	"$":   "USD",
	"US$": "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"GBX": "GBP",
}

// IsISIN reports whether s has the shape of an ISIN (2 letters + 10 alphanumerics).
func IsISIN(s string) bool {
	return isinRegex.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// ISINFromCUSIP builds an ISIN from a 9-character CUSIP and a country prefix,
// appending the Luhn check digit. It reports false for malformed input.
func ISINFromCUSIP(cusip, country string) (string, bool) {
	cusip = strings.ToUpper(strings.TrimSpace(cusip))
	country = strings.ToUpper(strings.TrimSpace(country))
	if !cusipRegex.MatchString(cusip) || len(country) != 2 {
		return "", false
	}

	body := country + cusip
	var digits []int
	for _, r := range body {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			digits = append(digits, v/10, v%10)
		default:
			return "", false
		}
	}

	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		// every other digit is doubled, starting from the rightmost
		if (len(digits)-1-i)%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return fmt.Sprintf("%s%d", body, (10-sum%10)%10), true
}

// NormalizeSymbol uppercases a ticker and strips trailing exchange suffixes
// ("AAPL.US" → "AAPL", "VOD:LSE" → "VOD"). ISINs pass through unchanged and
// "BRK.A" is kept because "A" is not an exchange suffix.
func NormalizeSymbol(raw string) string {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if s == "" || isinRegex.MatchString(s) {
		return s
	}

	for {
		idx := strings.LastIndexAny(s, ".:/-")
		if idx <= 0 || idx == len(s)-1 {
			return strings.TrimRight(s, ".:/-")
		}
		if !exchangeSuffixes[s[idx+1:]] {
			return s
		}
		s = s[:idx]
	}
}

// NormalizeCurrency returns the ISO 4217 code for a currency cell.
// Known symbols are mapped to codes; unknown non-empty input is uppercased and kept.
func NormalizeCurrency(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if code, ok := currencyAliases[s]; ok {
		return code
	}
	return s
}

// IsKnownCurrency reports whether code is an ISO currency in the go-money catalogue.
func IsKnownCurrency(code string) bool {
	return code != "" && money.GetCurrency(strings.ToUpper(code)) != nil
}
