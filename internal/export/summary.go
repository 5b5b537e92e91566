package export

import (
	"github.com/samber/lo"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// summaryField is one labelled row of the SUMMARY sheet. value returns nil when the
// statement did not supply the figure.
type summaryField struct {
	label string
	value func(p domain.Portfolio, s domain.PortfolioStatistics) any
}

var summaryFields = []summaryField{
	{"Account", func(p domain.Portfolio, _ domain.PortfolioStatistics) any { return p.AccountID }},
	{"Account Name", func(p domain.Portfolio, _ domain.PortfolioStatistics) any { return p.AccountName }},
	{"Broker", func(p domain.Portfolio, _ domain.PortfolioStatistics) any { return string(p.Broker) }},
	{"Base Currency", func(p domain.Portfolio, _ domain.PortfolioStatistics) any { return p.BaseCurrency }},
	{"Holder", func(p domain.Portfolio, _ domain.PortfolioStatistics) any {
		if p.Profile == nil {
			return nil
		}
		return p.Profile.HolderName
	}},
	{"Positions", func(p domain.Portfolio, _ domain.PortfolioStatistics) any { return float64(len(p.Positions)) }},
	{"Total Value", func(p domain.Portfolio, _ domain.PortfolioStatistics) any { return toFloat(p.TotalValue()) }},
	{"NAV Begin", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.NAVBegin) }},
	{"NAV End", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.NAVEnd) }},
	{"NAV Change", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.NAVChange) }},
	{"Cumulative Return %", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.CumulativeReturn) }},
	{"1M Return %", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.Return1M) }},
	{"3M Return %", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.Return3M) }},
	{"Best Month %", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.BestMonth) }},
	{"Worst Month %", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.WorstMonth) }},
	{"Dividends", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.Dividends) }},
	{"Interest", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.Interest) }},
	{"Fees", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.Fees) }},
	{"Realized P&L", func(_ domain.Portfolio, s domain.PortfolioStatistics) any { return ptrFloat(s.RealizedPnL) }},
	{"Last Updated", func(p domain.Portfolio, _ domain.PortfolioStatistics) any { return formatDate(p.LastUpdated) }},
	{"Imported At", func(p domain.Portfolio, _ domain.PortfolioStatistics) any { return formatDate(p.ImportedAt) }},
}

// SummaryRows builds the SUMMARY sheet: label/value rows for the account and its
// statistics, then a performance table when the statement carried one.
func SummaryRows(p domain.Portfolio) [][]any {
	stats := lo.FromPtr(p.Statistics)

	data := make([][]any, 0, len(summaryFields)+len(p.Performance)+2)
	for _, f := range summaryFields {
		data = append(data, []any{f.label, f.value(p, stats)})
	}

	if len(p.Performance) == 0 {
		return data
	}
	data = append(data, []any{}, []any{"Period", "Type", "Return %"})
	for _, r := range p.Performance {
		data = append(data, []any{r.Period, string(r.PeriodType), ptrFloat(r.AccountReturn)})
	}
	return data
}
