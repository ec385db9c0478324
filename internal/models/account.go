package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account represents a paper-trading account: virtual cash plus the
// positions and trade history it owns.
//
// Version is bumped on every write-back and guards against two trades on
// the same account racing each other (optimistic concurrency).
type Account struct {
	gorm.Model
	Cash      decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"balance"`
	Version   uint            `gorm:"not null;default:0" json:"-"`
	Positions []Position      `json:"portfolio"`
	Trades    []Trade         `json:"-"`
}

// FindPosition returns the account's position for symbol, or nil.
func (a *Account) FindPosition(symbol string) *Position {
	for i := range a.Positions {
		if a.Positions[i].Symbol == symbol {
			return &a.Positions[i]
		}
	}
	return nil
}

// RemovePosition deletes the position for symbol from the account, keeping
// the order of the remaining positions.
func (a *Account) RemovePosition(symbol string) {
	for i := range a.Positions {
		if a.Positions[i].Symbol == symbol {
			a.Positions = append(a.Positions[:i], a.Positions[i+1:]...)
			return
		}
	}
}
