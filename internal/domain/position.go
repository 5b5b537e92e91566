package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Position is one holding of a portfolio, expressed in the position currency.
type Position struct {
	ID             string          `json:"id"`
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name"`
	AssetType      AssetType       `json:"assetType"`
	Sector         Sector          `json:"sector"`
	Currency       string          `json:"currency"`
	Quantity       decimal.Decimal `json:"quantity"`
	ClosePrice     decimal.Decimal `json:"closePrice"`
	Value          decimal.Decimal `json:"value"`
	CostBasis      decimal.Decimal `json:"costBasis"`
	UnrealizedPnL  decimal.Decimal `json:"unrealizedPnL"`
	RealizedPnL    decimal.Decimal `json:"realizedPnL"`
	DividendIncome decimal.Decimal `json:"dividendIncome"`
	FXRateToBase   decimal.Decimal `json:"fxRateToBase"`
	ISIN           string          `json:"isin,omitempty"`
	Exchange       string          `json:"exchange,omitempty"`
	RegionOverride string          `json:"regionOverride,omitempty"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

// NewPosition returns a position with a fresh identifier and the default FX rate of 1.
func NewPosition(symbol, name string) Position {
	return Position{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Name:         name,
		FXRateToBase: decimal.NewFromInt(1),
	}
}

// HasDefaultFXRate reports whether the FX rate is unset or exactly 1.
func (p Position) HasDefaultFXRate() bool {
	return p.FXRateToBase.IsZero() || p.FXRateToBase.Equal(decimal.NewFromInt(1))
}

// DeriveMissing fills value, cost basis and unrealized P&L when a source did not supply them.
// value = quantity × price, costBasis = value, unrealizedPnL = value − costBasis.
func (p *Position) DeriveMissing(hasValue, hasCost, hasPnL bool) {
	if !hasValue {
		p.Value = p.Quantity.Mul(p.ClosePrice)
	}
	if p.ClosePrice.IsZero() && !p.Quantity.IsZero() {
		p.ClosePrice = SafeDiv(p.Value, p.Quantity)
	}
	if !hasCost {
		p.CostBasis = p.Value
	}
	if !hasPnL {
		p.UnrealizedPnL = p.Value.Sub(p.CostBasis)
	}
}

// IsEmpty reports whether the position carries no holding and should be dropped at extraction.
func (p Position) IsEmpty() bool {
	return p.Quantity.IsZero()
}
