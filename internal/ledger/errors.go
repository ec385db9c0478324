package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned when an execution price is zero or negative.
// The price oracle must never hand the ledger a fabricated price.
var ErrInvalidPrice = errors.New("execution price must be positive")

// InvalidQuantityError is returned when a trade request carries a zero or
// negative quantity. It is rejected before any price lookup or state change.
type InvalidQuantityError struct {
	Quantity decimal.Decimal
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %s: must be positive", e.Quantity)
}

// InsufficientFundsError is returned when a buy would cost more than the
// account's available cash. It reports both sides so callers can render a
// user-facing message.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s", e.Required, e.Available)
}

// PositionNotFoundError is returned when selling a symbol the account does
// not hold.
type PositionNotFoundError struct {
	Symbol string
}

func (e *PositionNotFoundError) Error() string {
	return fmt.Sprintf("no position held for %s", e.Symbol)
}

// InsufficientSharesError is returned when a sell requests more quantity
// than the position holds.
type InsufficientSharesError struct {
	Symbol    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares of %s: requested %s, available %s", e.Symbol, e.Requested, e.Available)
}
