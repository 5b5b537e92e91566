package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType classifies a historical performance period.
type PeriodType string

const (
	PeriodMonth   PeriodType = "month"
	PeriodQuarter PeriodType = "quarter"
	PeriodYear    PeriodType = "year"
)

// PortfolioProfile holds account holder metadata reported by a statement.
type PortfolioProfile struct {
	HolderName   string `json:"holderName,omitempty"`
	AccountType  string `json:"accountType,omitempty"`
	CustomerType string `json:"customerType,omitempty"`
	Capabilities string `json:"capabilities,omitempty"`
	BaseCurrency string `json:"baseCurrency,omitempty"`
}

// PortfolioStatistics holds summary figures parsed from a statement.
// Nil fields were not supplied by the source format.
type PortfolioStatistics struct {
	NAVBegin         *decimal.Decimal `json:"navBegin,omitempty"`
	NAVEnd           *decimal.Decimal `json:"navEnd,omitempty"`
	NAVChange        *decimal.Decimal `json:"navChange,omitempty"`
	CumulativeReturn *decimal.Decimal `json:"cumulativeReturn,omitempty"`
	Return1M         *decimal.Decimal `json:"return1M,omitempty"`
	Return3M         *decimal.Decimal `json:"return3M,omitempty"`
	BestMonth        *decimal.Decimal `json:"bestMonth,omitempty"`
	BestMonthDate    string           `json:"bestMonthDate,omitempty"`
	WorstMonth       *decimal.Decimal `json:"worstMonth,omitempty"`
	WorstMonthDate   string           `json:"worstMonthDate,omitempty"`
	Dividends        *decimal.Decimal `json:"dividends,omitempty"`
	Interest         *decimal.Decimal `json:"interest,omitempty"`
	Fees             *decimal.Decimal `json:"fees,omitempty"`
	RealizedPnL      *decimal.Decimal `json:"realizedPnL,omitempty"`
}

// PerformanceRecord is one historical period's account return in percent.
type PerformanceRecord struct {
	Period        string           `json:"period"`
	PeriodType    PeriodType       `json:"periodType"`
	AccountReturn *decimal.Decimal `json:"accountReturn"`
}

// Portfolio is the aggregate produced by a single import.
type Portfolio struct {
	ID           string               `json:"id"`
	AccountID    string               `json:"accountId"`
	AccountName  string               `json:"accountName"`
	BaseCurrency string               `json:"baseCurrency"`
	Broker       BrokerID             `json:"broker"`
	Positions    []Position           `json:"positions"`
	Profile      *PortfolioProfile    `json:"profile,omitempty"`
	Statistics   *PortfolioStatistics `json:"statistics,omitempty"`
	Performance  []PerformanceRecord  `json:"performance,omitempty"`
	LastUpdated  time.Time            `json:"lastUpdated"`
	ImportedAt   time.Time            `json:"importedAt"`
}

// TotalValue sums position values converted to the base currency.
func (p Portfolio) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.Positions {
		rate := pos.FXRateToBase
		if rate.IsZero() {
			rate = decimal.NewFromInt(1)
		}
		total = total.Add(pos.Value.Mul(rate))
	}
	return total
}

// ImportFileData is one statement file supplied by a caller.
type ImportFileData struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Content   []byte `json:"-"`
}

// SkippedRow records a data row an extractor could not turn into a record.
type SkippedRow struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}
