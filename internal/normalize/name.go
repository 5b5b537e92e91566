package normalize

import (
	"slices"
	"strings"
	"unicode"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// Security names are matched on whole words only: "GOLDMAN" is not gold and
// "COINBASE" is not a coin.
var (
	nameFundRules = []keywordRule[domain.AssetType]{
		{[]string{"etf", "etfs", "etn", "etp", "exchange traded"}, domain.AssetETFs},
		{[]string{"money market"}, domain.AssetCash},
		{[]string{"fund", "funds", "sicav", "ucits"}, domain.AssetFunds},
	}

	// Checked once the name is known to belong to an operating company, so
	// "OPTION CARE HEALTH INC" and "BILL HOLDINGS INC" stay equities.
	nameInstrumentRules = []keywordRule[domain.AssetType]{
		{[]string{"option", "options", "warrant", "warrants"}, domain.AssetOptions},
		{[]string{"future", "futures"}, domain.AssetFutures},
		{[]string{"cfd"}, domain.AssetCFDs},
		{[]string{"bitcoin", "ethereum", "crypto"}, domain.AssetCrypto},
		{[]string{"bond", "bonds", "treasury", "treasuries", "note", "notes", "bill", "bills", "fixed income"}, domain.AssetBonds},
		{[]string{"reit", "reits", "real estate"}, domain.AssetRealEstate},
		{[]string{"gold", "silver", "platinum", "palladium", "commodity", "commodities"}, domain.AssetCommodities},
	}

	issuerSuffixes = []string{
		"inc", "incorporated", "corp", "corporation", "co", "company", "ltd", "limited", "plc",
		"ag", "sa", "nv", "se", "asa", "ab", "oyj", "spa", "group", "holdings", "cl", "class",
		"adr", "ads", "ord",
	}
)

// AssetTypeFromName guesses the asset type of a security from its display name,
// defaulting to Stocks. Fund wrappers win first; names carrying a company suffix are
// equities; instrument keywords decide the rest.
func AssetTypeFromName(name string) domain.AssetType {
	words := nameWords(name)
	if at, ok := matchWords(words, nameFundRules); ok {
		return at
	}
	if slices.ContainsFunc(words, func(w string) bool { return slices.Contains(issuerSuffixes, w) }) {
		return domain.AssetStocks
	}
	if at, ok := matchWords(words, nameInstrumentRules); ok {
		return at
	}
	return domain.AssetStocks
}

func nameWords(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchWords matches each keyword as a run of consecutive words.
func matchWords[T any](words []string, rules []keywordRule[T]) (T, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if hasPhrase(words, strings.Fields(kw)) {
				return rule.value, true
			}
		}
	}
	var zero T
	return zero, false
}

func hasPhrase(words, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(words); i++ {
		if slices.Equal(words[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}
