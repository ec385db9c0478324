package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"paper-trading-go/internal/ledger"
	"paper-trading-go/internal/models"
)

// MemoryStore keeps accounts in memory. It backs practice mode and tests,
// and honors the same snapshot/version contract as the database store.
type MemoryStore struct {
	mu          sync.Mutex
	nextID      uint
	nextTradeID uint
	accounts    map[uint]*models.Account
}

var _ AccountStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[uint]*models.Account)}
}

func (s *MemoryStore) Create(ctx context.Context, initialBalance decimal.Decimal) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	acct := &models.Account{Cash: initialBalance}
	acct.ID = s.nextID
	s.accounts[acct.ID] = acct
	return copyAccount(acct), nil
}

func (s *MemoryStore) Get(ctx context.Context, id uint) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	snapshot := copyAccount(acct)
	snapshot.Trades = nil
	return snapshot, nil
}

func (s *MemoryStore) Save(ctx context.Context, acct *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[acct.ID]
	if !ok {
		return ErrAccountNotFound
	}
	if stored.Version != acct.Version {
		return ErrConcurrentModification
	}

	updated := copyAccount(acct)
	updated.Version++
	updated.Trades = append([]models.Trade(nil), stored.Trades...)
	for i := range acct.Trades {
		if acct.Trades[i].ID != 0 {
			continue
		}
		s.nextTradeID++
		acct.Trades[i].ID = s.nextTradeID
		acct.Trades[i].AccountID = acct.ID
		updated.Trades = append(updated.Trades, acct.Trades[i])
	}

	s.accounts[acct.ID] = updated
	acct.Version = updated.Version
	return nil
}

func (s *MemoryStore) Trades(ctx context.Context, id uint) ([]models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}

	trades := append([]models.Trade(nil), acct.Trades...)
	// Newest first, matching the database store's ordering.
	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp > trades[j].Timestamp
		}
		return trades[i].ID > trades[j].ID
	})
	return trades, nil
}

func (s *MemoryStore) Reset(ctx context.Context, id uint, initialBalance decimal.Decimal) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	ledger.Reset(acct, initialBalance)
	acct.Version++
	return copyAccount(acct), nil
}

func copyAccount(acct *models.Account) *models.Account {
	dup := *acct
	dup.Positions = append([]models.Position(nil), acct.Positions...)
	dup.Trades = append([]models.Trade(nil), acct.Trades...)
	return &dup
}
