// Package ledger implements the position ledger for paper trading:
// weighted-average cost basis on buys, realized P&L on sells, and cash
// balance reconciliation.
//
// All operations work on an in-memory Account snapshot and perform no I/O.
// Loading the snapshot, calling an operation, and writing the result back is
// one logical transaction owned by the caller; the operations themselves
// validate everything up front so that a failed trade leaves the snapshot
// untouched.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"paper-trading-go/internal/models"
)

var hundred = decimal.NewFromInt(100)

// TradeResult describes a successfully executed trade.
type TradeResult struct {
	Trade      models.Trade    `json:"trade"`
	NewBalance decimal.Decimal `json:"newBalance"`
	// RealizedPnL is the gain or loss locked in by a sell, computed against
	// the position's average cost basis. Always zero for buys. It is
	// reported per trade, not accumulated; callers may keep a running total.
	RealizedPnL decimal.Decimal `json:"realizedPnL"`
}

// ExecuteBuy debits quantity*price from the account's cash and folds the
// purchase into the position for symbol, creating it on first buy. The
// position's average cost basis becomes the quantity-weighted average of all
// buys. A trade record is appended to the account's log.
//
// On any error the account is left exactly as it was.
func ExecuteBuy(acct *models.Account, symbol, name string, quantity, price decimal.Decimal) (*TradeResult, error) {
	if !quantity.IsPositive() {
		return nil, &InvalidQuantityError{Quantity: quantity}
	}
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	totalCost := price.Mul(quantity)
	if acct.Cash.LessThan(totalCost) {
		return nil, &InsufficientFundsError{Required: totalCost, Available: acct.Cash}
	}

	acct.Cash = acct.Cash.Sub(totalCost)

	pos := acct.FindPosition(symbol)
	if pos == nil {
		acct.Positions = append(acct.Positions, models.Position{
			AccountID: acct.ID,
			Symbol:    symbol,
			Name:      name,
			Quantity:  quantity,
			AvgPrice:  price,
		})
		pos = &acct.Positions[len(acct.Positions)-1]
	} else {
		// Weighted average across the existing holding and this purchase.
		newQuantity := pos.Quantity.Add(quantity)
		pos.AvgPrice = pos.Quantity.Mul(pos.AvgPrice).Add(totalCost).Div(newQuantity)
		pos.Quantity = newQuantity
	}
	pos.Refresh(price)

	trade := appendTrade(acct, models.TradeSideBuy, symbol, name, quantity, price, totalCost)
	return &TradeResult{Trade: trade, NewBalance: acct.Cash}, nil
}

// ExecuteSell credits quantity*price to the account's cash and reduces the
// position for symbol, removing it when the quantity reaches exactly zero.
// Selling never changes the average cost basis of the remaining shares.
//
// On any error the account is left exactly as it was.
func ExecuteSell(acct *models.Account, symbol string, quantity, price decimal.Decimal) (*TradeResult, error) {
	if !quantity.IsPositive() {
		return nil, &InvalidQuantityError{Quantity: quantity}
	}
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	pos := acct.FindPosition(symbol)
	if pos == nil {
		return nil, &PositionNotFoundError{Symbol: symbol}
	}
	if pos.Quantity.LessThan(quantity) {
		return nil, &InsufficientSharesError{Symbol: symbol, Requested: quantity, Available: pos.Quantity}
	}

	proceeds := price.Mul(quantity)
	realized := price.Sub(pos.AvgPrice).Mul(quantity)
	name := pos.Name

	acct.Cash = acct.Cash.Add(proceeds)
	pos.Quantity = pos.Quantity.Sub(quantity)
	if pos.Quantity.IsZero() {
		acct.RemovePosition(symbol)
	} else {
		pos.Refresh(price)
	}

	trade := appendTrade(acct, models.TradeSideSell, symbol, name, quantity, price, proceeds)
	return &TradeResult{Trade: trade, NewBalance: acct.Cash, RealizedPnL: realized}, nil
}

func appendTrade(acct *models.Account, side, symbol, name string, quantity, price, totalAmount decimal.Decimal) models.Trade {
	trade := models.Trade{
		AccountID:   acct.ID,
		Side:        side,
		Symbol:      symbol,
		Name:        name,
		Quantity:    quantity,
		Price:       price,
		TotalAmount: totalAmount,
		Timestamp:   time.Now().Unix(),
	}
	acct.Trades = append(acct.Trades, trade)
	return trade
}

// Valuation is the portfolio report consumed by the dashboard surface.
type Valuation struct {
	Balance              decimal.Decimal   `json:"balance"`
	Positions            []models.Position `json:"portfolio"`
	TotalPortfolioValue  decimal.Decimal   `json:"totalPortfolioValue"`
	TotalGainLoss        decimal.Decimal   `json:"totalGainLoss"`
	TotalGainLossPercent decimal.Decimal   `json:"totalGainLossPercent"`
}

// Valuate refreshes every position that has a price in prices and reports
// the portfolio totals against initialBalance. Partial coverage is fine:
// positions whose symbol is missing from prices keep their last known
// values rather than being zeroed out by a transient fetch failure.
func Valuate(acct *models.Account, prices map[string]decimal.Decimal, initialBalance decimal.Decimal) Valuation {
	total := acct.Cash
	for i := range acct.Positions {
		pos := &acct.Positions[i]
		if price, ok := prices[pos.Symbol]; ok && price.IsPositive() {
			pos.Refresh(price)
		}
		total = total.Add(pos.TotalValue)
	}

	gainLoss := total.Sub(initialBalance)
	v := Valuation{
		Balance:             acct.Cash,
		Positions:           acct.Positions,
		TotalPortfolioValue: total,
		TotalGainLoss:       gainLoss,
	}
	if initialBalance.IsPositive() {
		v.TotalGainLossPercent = gainLoss.Div(initialBalance).Mul(hundred)
	}
	return v
}

// Reset restores the account to its freshly created state: cash back to the
// starting balance, positions and trade log emptied. Idempotent.
func Reset(acct *models.Account, initialBalance decimal.Decimal) {
	acct.Cash = initialBalance
	acct.Positions = nil
	acct.Trades = nil
}
