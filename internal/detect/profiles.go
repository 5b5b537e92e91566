package detect

import (
	"strings"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// Comma-only exports never arrive semicolon-delimited.
var semicolonDelimited = penalty{
	name:    "semicolon-delimited",
	weight:  -FingerprintWeight,
	applies: func(s sample) bool { return s.delimiter == ';' },
}

// Section exports mark every row with Header or Data in the second cell.
var noSectionMarkers = penalty{
	name:   "no section markers",
	weight: -KeywordWeight,
	applies: func(s sample) bool {
		for _, l := range s.lines {
			if strings.Contains(l, ",header,") || strings.Contains(l, ",data,") {
				return false
			}
		}
		return true
	},
}

// Fingerprints are lowercased header prefixes with quotes dropped and semicolons or
// tabs folded to commas.
var profiles = map[domain.BrokerID]profile{
	domain.BrokerIBKR: {
		fingerprints: []string{"introduction,header", "statement,header", "open position summary,header", "open positions,header"},
		keywords:     []string{"portfolioanalyst", "interactive brokers", "open position summary", "key statistics", "historical performance"},
		columns:      []string{"fxratetobase", "fx rate to base", "financialinstrument", "datadiscriminator", "closeprice", "unrealizedp&l"},
		penalties:    []penalty{semicolonDelimited, noSectionMarkers},
	},
	domain.BrokerFidelity: {
		fingerprints: []string{"account number,account name,symbol"},
		keywords:     []string{"fidelity", "pending activity", "spaxx**", "fcash**"},
		columns:      []string{"current value", "cost basis total", "average cost basis", "last price change"},
		penalties:    []penalty{semicolonDelimited},
	},
	domain.BrokerSchwab: {
		fingerprints: []string{"positions for account", "positions for"},
		keywords:     []string{"charles schwab", "cash & cash investments", "account total"},
		columns:      []string{"gain/loss $", "reinvest dividends?", "% of account", "security type"},
		penalties:    []penalty{semicolonDelimited},
	},
	domain.BrokerTDAmeritrade: {
		fingerprints: []string{"position statement for", "instrument,qty,days,trade price,mark"},
		keywords:     []string{"thinkorswim", "td ameritrade", "overall totals"},
		columns:      []string{"trade price", "mark", "mrk chng", "p/l open", "p/l day", "bp effect"},
		penalties:    []penalty{semicolonDelimited},
	},
	domain.BrokerVanguard: {
		fingerprints: []string{"account number,investment name,symbol"},
		keywords:     []string{"vanguard"},
		columns:      []string{"investment name", "share price"},
		penalties:    []penalty{semicolonDelimited},
	},
	domain.BrokerETrade: {
		fingerprints: []string{"symbol,last price $"},
		keywords:     []string{"e*trade", "etrade", "view summary"},
		columns:      []string{"price paid $", "day's gain $", "total gain $", "value $"},
		penalties:    []penalty{semicolonDelimited},
	},
	domain.BrokerTrading212: {
		fingerprints: []string{"action,time,isin,ticker"},
		keywords:     []string{"trading 212", "market buy", "market sell", "limit buy", "dividend (ordinary)"},
		columns:      []string{"no. of shares", "price / share", "currency (price / share)", "currency (total)"},
		penalties:    []penalty{semicolonDelimited},
	},
	domain.BrokerDEGIRO: {
		fingerprints: []string{
			"datum,tijd,product,isin", "datum,uhrzeit,produkt,isin", "date,time,product,isin",
			"product,symbool/isin", "produkt,symbol/isin", "product,symbol/isin",
		},
		keywords: []string{"degiro", "flatex", "cash & cash fund"},
		columns: []string{
			"lokale waarde", "wisselkoers", "transactiekosten en/of", "uitvoeringsplaats",
			"wert in lokalwährung", "wechselkurs", "referenzbörse", "local value", "value in eur", "order id",
		},
	},
	domain.BrokerXTB: {
		fingerprints: []string{"id,type,time,symbol,comment,amount", "symbol,type,time,comment,amount", "id,type,time,comment,symbol,amount"},
		keywords:     []string{"xtb", "xstation", "stocks/etf purchase", "stocks/etf sale", "open buy", "close buy", "free-funds interest"},
		columns:      []string{"comment", "open price", "volume"},
	},
	domain.BrokerRobinhood: {
		fingerprints: []string{"activity date,process date,settle date,instrument"},
		keywords:     []string{"robinhood", "cusip:", "cdiv"},
		columns:      []string{"trans code", "settle date", "process date"},
		penalties:    []penalty{semicolonDelimited},
	},
	domain.BrokerRevolut: {
		fingerprints: []string{"date,ticker,type,quantity,price per share"},
		keywords:     []string{"revolut", "cash top-up", "buy - market", "sell - market", "custody fee"},
		columns:      []string{"price per share", "total amount", "fx rate"},
		penalties:    []penalty{semicolonDelimited},
	},
}
