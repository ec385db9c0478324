// Package store persists paper-trading accounts. The ledger operates on
// account snapshots; a store provides the read-modify-write cycle around
// them and guarantees that two trades racing on the same account cannot
// both win the write-back.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"paper-trading-go/internal/models"
)

// ErrAccountNotFound is returned when the requested account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ErrConcurrentModification is returned when the account changed between
// Get and Save. The caller should retry the whole operation from a fresh
// read, not reapply the stale snapshot.
var ErrConcurrentModification = errors.New("account modified concurrently")

// AccountStore is the persistence surface for accounts, positions and the
// trade log.
type AccountStore interface {
	// Create opens a new account with the given starting cash.
	Create(ctx context.Context, initialBalance decimal.Decimal) (*models.Account, error)

	// Get loads an account snapshot: cash, version and positions. The trade
	// log is not loaded; Trades on the returned account collects records to
	// append on the next Save.
	Get(ctx context.Context, id uint) (*models.Account, error)

	// Save writes a snapshot back: cash, position set (removed positions
	// are deleted) and any not-yet-persisted trade records. Fails with
	// ErrConcurrentModification when the stored version no longer matches
	// the snapshot's.
	Save(ctx context.Context, acct *models.Account) error

	// Trades returns the account's trade log, newest first.
	Trades(ctx context.Context, id uint) ([]models.Trade, error)

	// Reset restores the starting cash and wipes positions and the trade
	// log in one transaction.
	Reset(ctx context.Context, id uint, initialBalance decimal.Decimal) (*models.Account, error)
}
