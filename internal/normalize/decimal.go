// Package normalize holds the locale-tolerant number, date, vocabulary and
// symbol normalizers shared by every extractor.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyCodeRegex = regexp.MustCompile(`^[A-Za-z]{3}\s*|\s*[A-Za-z]{3}$`)
	currencySymbols   = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "%", "", " ", "", "\u00a0", "", "'", "")
)

var emptyMarkers = map[string]bool{
	"":    true,
	"-":   true,
	"--":  true,
	"n/a": true,
	"na":  true,
	"nan": true,
}

// clean strips decoration around a numeric cell and reports the sign separately.
// ok is false when the cell holds one of the "no value" markers.
func clean(raw string) (body string, negative, ok bool) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, "−", "-")
	if emptyMarkers[strings.ToLower(s)] {
		return "", false, false
	}

	s = currencyCodeRegex.ReplaceAllString(s, "")
	s = currencySymbols.Replace(s)

	// "(43.64)", "-(43.64)" and "$(43.64)" all read as negative
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	if strings.HasSuffix(s, "-") {
		negative = true
		s = s[:len(s)-1]
	}
	if emptyMarkers[strings.ToLower(s)] {
		return "", false, false
	}
	return s, negative, true
}

func finish(body string, negative bool, def decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(body)
	if err != nil {
		return def
	}
	if negative {
		return d.Neg()
	}
	return d
}

// ParseDecimal parses a US-formatted number ("1,234.56", "($43.64)", "+12%", "USD 10").
// Empty cells, "-", "--" and "N/A" yield def. It never fails.
func ParseDecimal(raw string, def decimal.Decimal) decimal.Decimal {
	body, negative, ok := clean(raw)
	if !ok {
		return def
	}
	return finish(strings.ReplaceAll(body, ",", ""), negative, def)
}

// ParseEuropeanDecimal parses a number where "." groups thousands and "," is the decimal mark.
func ParseEuropeanDecimal(raw string, def decimal.Decimal) decimal.Decimal {
	body, negative, ok := clean(raw)
	if !ok {
		return def
	}
	body = strings.ReplaceAll(body, ".", "")
	body = strings.Replace(body, ",", ".", 1)
	return finish(body, negative, def)
}

// ParseFlexibleDecimal decides the decimal mark from the last "," and last "." in the cell.
// "1.234,56" → 1234.56, "1,234.56" → 1234.56, "0,8" → 0.8, "1,234" → 1234 (US fallback).
// Unparseable input yields zero.
func ParseFlexibleDecimal(raw string) decimal.Decimal {
	body, negative, ok := clean(raw)
	if !ok {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(body, ",")
	lastDot := strings.LastIndex(body, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		body = strings.ReplaceAll(body, ".", "")
		body = strings.Replace(body, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		body = strings.ReplaceAll(body, ",", "")
	case lastComma >= 0:
		if strings.Count(body, ",") == 1 && len(body)-lastComma-1 != 3 {
			body = strings.Replace(body, ",", ".", 1)
		} else {
			body = strings.ReplaceAll(body, ",", "")
		}
	}
	return finish(body, negative, decimal.Zero)
}

// HasValue reports whether a cell carries a number rather than an empty marker.
func HasValue(raw string) bool {
	_, _, ok := clean(raw)
	return ok
}
