// Package trading wires the position ledger to its collaborators: the
// account store, the price oracle and the HTTP surface. It owns the
// fetch-price-then-commit ordering: market lookups happen before the
// account read-modify-write cycle, never inside it.
package trading

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paper-trading-go/internal/ledger"
	"paper-trading-go/internal/models"
	"paper-trading-go/internal/store"
	"paper-trading-go/internal/yahoo"
)

// Service executes paper trades against persisted accounts.
type Service struct {
	logger         *zap.Logger
	store          store.AccountStore
	quotes         yahoo.QuoteClientInterface
	initialBalance decimal.Decimal
}

// NewService creates a new trading service.
func NewService(logger *zap.Logger, accounts store.AccountStore, quotes yahoo.QuoteClientInterface, initialBalance decimal.Decimal) *Service {
	return &Service{
		logger:         logger,
		store:          accounts,
		quotes:         quotes,
		initialBalance: initialBalance,
	}
}

// ExecutionReport is the response to a successful buy or sell.
type ExecutionReport struct {
	ledger.TradeResult
	Portfolio []models.Position `json:"portfolio"`
}

// CreateAccount opens a new account with the configured starting balance.
func (s *Service) CreateAccount(ctx context.Context) (*models.Account, error) {
	acct, err := s.store.Create(ctx, s.initialBalance)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Account created",
		zap.Uint("account_id", acct.ID),
		zap.String("balance", acct.Cash.String()))
	return acct, nil
}

// Buy purchases quantity units of symbol at the current market price.
func (s *Service) Buy(ctx context.Context, accountID uint, symbol string, quantity decimal.Decimal) (*ExecutionReport, error) {
	return s.execute(ctx, accountID, symbol, quantity, models.TradeSideBuy)
}

// Sell sells quantity units of symbol at the current market price.
func (s *Service) Sell(ctx context.Context, accountID uint, symbol string, quantity decimal.Decimal) (*ExecutionReport, error) {
	return s.execute(ctx, accountID, symbol, quantity, models.TradeSideSell)
}

func (s *Service) execute(ctx context.Context, accountID uint, symbol string, quantity decimal.Decimal, side string) (*ExecutionReport, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	// Reject bad quantities before any price lookup.
	if !quantity.IsPositive() {
		return nil, &ledger.InvalidQuantityError{Quantity: quantity}
	}

	// The quote is network I/O and may be slow; fetch it before entering
	// the account read-modify-write cycle.
	price, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	acct, err := s.store.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var result *ledger.TradeResult
	if side == models.TradeSideBuy {
		result, err = ledger.ExecuteBuy(acct, symbol, yahoo.Lookup(symbol).Name, quantity, price)
	} else {
		result, err = ledger.ExecuteSell(acct, symbol, quantity, price)
	}
	if err != nil {
		return nil, err
	}

	// A store.ErrConcurrentModification here means another trade won the
	// write-back; the caller retries from a fresh read.
	if err := s.store.Save(ctx, acct); err != nil {
		return nil, err
	}

	s.logger.Info("Trade executed",
		zap.Uint("account_id", accountID),
		zap.String("side", side),
		zap.String("symbol", symbol),
		zap.String("quantity", quantity.String()),
		zap.String("price", price.String()),
		zap.String("new_balance", acct.Cash.String()))

	return &ExecutionReport{TradeResult: *result, Portfolio: acct.Positions}, nil
}

// Portfolio values an account against current market prices. Price fetches
// are best effort: positions whose quote fails keep their last known values.
func (s *Service) Portfolio(ctx context.Context, accountID uint) (*ledger.Valuation, error) {
	acct, err := s.store.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	prices := s.fetchPrices(ctx, acct.Positions)
	valuation := ledger.Valuate(acct, prices, s.initialBalance)

	// Persist the refreshed last-known prices. Losing this write to a
	// concurrent trade is harmless; the valuation itself is still served.
	if len(prices) > 0 {
		if err := s.store.Save(ctx, acct); err != nil {
			s.logger.Warn("Failed to persist refreshed portfolio values",
				zap.Uint("account_id", accountID), zap.Error(err))
		}
	}
	return &valuation, nil
}

type symbolPrice struct {
	symbol string
	price  decimal.Decimal
}

// fetchPrices gathers quotes for every held symbol concurrently, dropping
// the ones that fail.
func (s *Service) fetchPrices(ctx context.Context, positions []models.Position) map[string]decimal.Decimal {
	var wg sync.WaitGroup
	results := make(chan symbolPrice, len(positions))

	for _, pos := range positions {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			price, err := s.quotes.GetQuote(ctx, symbol)
			if err != nil {
				s.logger.Warn("Could not refresh price for valuation",
					zap.String("symbol", symbol), zap.Error(err))
				return
			}
			results <- symbolPrice{symbol: symbol, price: price}
		}(pos.Symbol)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	prices := make(map[string]decimal.Decimal, len(positions))
	for r := range results {
		prices[r.symbol] = r.price
	}
	return prices
}

// Trades returns the account's trade history, newest first.
func (s *Service) Trades(ctx context.Context, accountID uint) ([]models.Trade, error) {
	if _, err := s.store.Get(ctx, accountID); err != nil {
		return nil, err
	}
	return s.store.Trades(ctx, accountID)
}

// Reset restores an account to the starting balance with no positions and
// an empty trade log. Intended for practice resets; idempotent.
func (s *Service) Reset(ctx context.Context, accountID uint) (*models.Account, error) {
	acct, err := s.store.Reset(ctx, accountID, s.initialBalance)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Account reset", zap.Uint("account_id", accountID))
	return acct, nil
}

// Quote returns the current market price for a symbol.
func (s *Service) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return s.quotes.GetQuote(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
}
