package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Position represents a held quantity of one instrument for one account.
// A position only exists while its quantity is above zero; the sell that
// zeroes it removes the row entirely.
type Position struct {
	gorm.Model
	AccountID       uint            `gorm:"uniqueIndex:idx_account_symbol" json:"-"`
	Symbol          string          `gorm:"uniqueIndex:idx_account_symbol" json:"symbol"`
	Name            string          `json:"name"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"quantity"`
	AvgPrice        decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"avgPrice"`
	LastPrice       decimal.Decimal `gorm:"type:decimal(20,8)" json:"lastPrice"`
	TotalValue      decimal.Decimal `gorm:"type:decimal(20,8)" json:"totalValue"`
	GainLoss        decimal.Decimal `gorm:"type:decimal(20,8)" json:"gainLoss"`
	GainLossPercent decimal.Decimal `gorm:"type:decimal(20,8)" json:"gainLossPercent"`
}

// Refresh recomputes the market-dependent fields against price and records
// it as the last known price. The average cost basis is never touched here.
func (p *Position) Refresh(price decimal.Decimal) {
	p.LastPrice = price
	p.TotalValue = p.Quantity.Mul(price)
	p.GainLoss = price.Sub(p.AvgPrice).Mul(p.Quantity)
	if p.AvgPrice.IsPositive() {
		p.GainLossPercent = price.Sub(p.AvgPrice).Div(p.AvgPrice).Mul(decimal.NewFromInt(100))
	} else {
		p.GainLossPercent = decimal.Zero
	}
}
