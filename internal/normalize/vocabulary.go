package normalize

import (
	"strings"
	"unicode"

	"github.com/mtlprog/stmtimport/internal/domain"
)

type keywordRule[T any] struct {
	keywords []string
	value    T
}

// Order matters: more specific labels ("exchange traded fund", "stock option") must win
// over the generic keywords they contain.
var assetTypeRules = []keywordRule[domain.AssetType]{
	{[]string{"etf", "exchange traded", "exchange-traded", "etp", "etn"}, domain.AssetETFs},
	{[]string{"option", "warrant"}, domain.AssetOptions},
	{[]string{"future"}, domain.AssetFutures},
	{[]string{"cfd"}, domain.AssetCFDs},
	{[]string{"crypto", "bitcoin", "coin", "token"}, domain.AssetCrypto},
	{[]string{"bond", "fixed income", "treasur", "note", "bill", "debt"}, domain.AssetBonds},
	{[]string{"real estate", "reit"}, domain.AssetRealEstate},
	{[]string{"commodit", "precious metal", "gold", "silver"}, domain.AssetCommodities},
	{[]string{"money market", "forex", "fx", "cash", "currency", "currencies"}, domain.AssetCash},
	{[]string{"fund", "mutual", "sicav", "ucits"}, domain.AssetFunds},
	{[]string{"stock", "equity", "equities", "share", "common", "adr", "stk"}, domain.AssetStocks},
	{[]string{"other"}, domain.AssetOther},
}

var sectorRules = []keywordRule[domain.Sector]{
	{[]string{"non-cyclical", "non cyclical", "noncyclical", "staples", "defensive"}, domain.SectorConsumerNonCyclical},
	{[]string{"cyclical", "discretionary", "consumer"}, domain.SectorConsumerCyclicals},
	{[]string{"health", "pharma", "biotech", "medical"}, domain.SectorHealthcare},
	{[]string{"tech", "software", "semiconductor", "information"}, domain.SectorTechnology},
	{[]string{"financ", "bank", "insurance"}, domain.SectorFinancials},
	{[]string{"industrial", "aerospace", "defense", "transport"}, domain.SectorIndustrials},
	{[]string{"basic material", "materials", "chemical", "mining"}, domain.SectorBasicMaterials},
	{[]string{"energy", "oil", "gas"}, domain.SectorEnergy},
	{[]string{"utilit"}, domain.SectorUtilities},
	{[]string{"real estate", "reit"}, domain.SectorRealEstate},
	{[]string{"communication", "telecom", "media"}, domain.SectorCommunications},
	{[]string{"broad", "diversified", "index"}, domain.SectorBroad},
}

// NormalizeAssetType maps a free-text asset class onto the canonical vocabulary.
// Unmatched non-empty input is title-cased and passed through; empty input is Other.
func NormalizeAssetType(raw string) domain.AssetType {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return domain.AssetOther
	}
	if v, ok := matchKeywords(s, assetTypeRules); ok {
		return v
	}
	return domain.AssetType(titleCase(s))
}

// NormalizeSector maps a free-text sector onto the canonical vocabulary, defaulting to Other.
func NormalizeSector(raw string) domain.Sector {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return domain.SectorOther
	}
	if v, ok := matchKeywords(s, sectorRules); ok {
		return v
	}
	return domain.SectorOther
}

func matchKeywords[T any](s string, rules []keywordRule[T]) (T, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if containsWord(s, kw) {
				return rule.value, true
			}
		}
	}
	var zero T
	return zero, false
}

// containsWord matches short keywords (three letters or less) only at word starts,
// so "fx" does not hit "fixed" and "etf" does not hit "netflix".
func containsWord(s, kw string) bool {
	if len(kw) > 3 {
		return strings.Contains(s, kw)
	}
	for i := 0; ; {
		j := strings.Index(s[i:], kw)
		if j < 0 {
			return false
		}
		pos := i + j
		if pos == 0 || !unicode.IsLetter(rune(s[pos-1])) {
			return true
		}
		i = pos + 1
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
