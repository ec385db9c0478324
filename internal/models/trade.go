package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TradeSideBuy  = "BUY"
	TradeSideSell = "SELL"
)

// Trade represents a completed trade record in the database.
// Records are append-only: they are never mutated or deleted except by a
// full account reset.
type Trade struct {
	gorm.Model
	AccountID   uint            `gorm:"index" json:"-"`
	Side        string          `json:"type"` // "BUY" or "SELL"
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"totalAmount"`
	Timestamp   int64           `json:"timestamp"`
}
