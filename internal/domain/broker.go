package domain

import (
	"github.com/samber/lo"
)

// BrokerID identifies a statement format.
type BrokerID string

const (
	BrokerIBKR         BrokerID = "ibkr"
	BrokerFidelity     BrokerID = "fidelity"
	BrokerSchwab       BrokerID = "schwab"
	BrokerTDAmeritrade BrokerID = "tdameritrade"
	BrokerVanguard     BrokerID = "vanguard"
	BrokerETrade       BrokerID = "etrade"
	BrokerTrading212   BrokerID = "trading212"
	BrokerDEGIRO       BrokerID = "degiro"
	BrokerXTB          BrokerID = "xtb"
	BrokerRobinhood    BrokerID = "robinhood"
	BrokerRevolut      BrokerID = "revolut"
	BrokerGeneric      BrokerID = "generic"
)

// BrokerInfo is the display metadata of a supported statement format.
type BrokerInfo struct {
	ID              BrokerID `json:"id"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description"`
	Region          string   `json:"region"`
	DefaultCurrency string   `json:"defaultCurrency"`
	Extensions      []string `json:"extensions"`
}

// brokerInfos is unexported to prevent external mutation; order is registration order.
var brokerInfos = []BrokerInfo{
	{ID: BrokerIBKR, DisplayName: "Interactive Brokers", Description: "PortfolioAnalyst CSV with profile, statistics and open positions", Region: "Global", DefaultCurrency: "USD", Extensions: []string{"csv", "pdf"}},
	{ID: BrokerFidelity, DisplayName: "Fidelity", Description: "Portfolio positions CSV", Region: "US", DefaultCurrency: "USD", Extensions: []string{"csv"}},
	{ID: BrokerSchwab, DisplayName: "Charles Schwab", Description: "Positions CSV", Region: "US", DefaultCurrency: "USD", Extensions: []string{"csv"}},
	{ID: BrokerTDAmeritrade, DisplayName: "TD Ameritrade", Description: "thinkorswim position statement CSV", Region: "US", DefaultCurrency: "USD", Extensions: []string{"csv"}},
	{ID: BrokerVanguard, DisplayName: "Vanguard", Description: "Holdings and transactions download", Region: "US", DefaultCurrency: "USD", Extensions: []string{"csv"}},
	{ID: BrokerETrade, DisplayName: "E*TRADE", Description: "Portfolio download with per-lot gain columns", Region: "US", DefaultCurrency: "USD", Extensions: []string{"csv"}},
	{ID: BrokerTrading212, DisplayName: "Trading 212", Description: "Transaction history export", Region: "EU/UK", DefaultCurrency: "EUR", Extensions: []string{"csv"}},
	{ID: BrokerDEGIRO, DisplayName: "DEGIRO", Description: "Transactions or portfolio export (NL/DE/EN headers)", Region: "EU", DefaultCurrency: "EUR", Extensions: []string{"csv", "xlsx"}},
	{ID: BrokerXTB, DisplayName: "XTB", Description: "Cash operations export (semicolon)", Region: "EU", DefaultCurrency: "EUR", Extensions: []string{"csv", "xlsx"}},
	{ID: BrokerRobinhood, DisplayName: "Robinhood", Description: "Account activity report", Region: "US", DefaultCurrency: "USD", Extensions: []string{"csv"}},
	{ID: BrokerRevolut, DisplayName: "Revolut", Description: "Trading account statement", Region: "EU/UK", DefaultCurrency: "USD", Extensions: []string{"csv"}},
	{ID: BrokerGeneric, DisplayName: "Generic", Description: "Best-effort import of any table with symbol and quantity, price or value columns", Region: "Global", DefaultCurrency: "USD", Extensions: []string{"csv", "tsv", "txt", "pdf", "xlsx"}},
}

// BrokerInfos returns a copy of the broker metadata list in registration order.
func BrokerInfos() []BrokerInfo {
	out := make([]BrokerInfo, len(brokerInfos))
	for i, b := range brokerInfos {
		b.Extensions = append([]string(nil), b.Extensions...)
		out[i] = b
	}
	return out
}

// BrokerInfoByID looks up broker metadata by id.
// Returns the info and true if found, zero value and false otherwise.
func BrokerInfoByID(id BrokerID) (BrokerInfo, bool) {
	return lo.Find(BrokerInfos(), func(b BrokerInfo) bool {
		return b.ID == id
	})
}

// SpecificBrokers returns every registered broker except the generic fallback.
func SpecificBrokers() []BrokerInfo {
	return lo.Filter(BrokerInfos(), func(b BrokerInfo, _ int) bool {
		return b.ID != BrokerGeneric
	})
}
