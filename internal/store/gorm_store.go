package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"paper-trading-go/internal/models"
)

// GormStore persists accounts through gorm.
type GormStore struct {
	db *gorm.DB
}

var _ AccountStore = (*GormStore)(nil)

// NewGormStore creates a database-backed account store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, initialBalance decimal.Decimal) (*models.Account, error) {
	acct := &models.Account{Cash: initialBalance}
	if err := s.db.WithContext(ctx).Create(acct).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acct, nil
}

func (s *GormStore) Get(ctx context.Context, id uint) (*models.Account, error) {
	var acct models.Account
	err := s.db.WithContext(ctx).Preload("Positions").First(&acct, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", id, err)
	}
	acct.Trades = nil
	return &acct, nil
}

func (s *GormStore) Save(ctx context.Context, acct *models.Account) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Guarded write-back: only one snapshot taken at this version may
		// land. A concurrent trade bumps the version first and we lose.
		res := tx.Model(&models.Account{}).
			Where("id = ? AND version = ?", acct.ID, acct.Version).
			Updates(map[string]interface{}{"cash": acct.Cash, "version": acct.Version + 1})
		if res.Error != nil {
			return fmt.Errorf("failed to update account %d: %w", acct.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentModification
		}

		kept := make([]string, 0, len(acct.Positions))
		for i := range acct.Positions {
			pos := &acct.Positions[i]
			pos.AccountID = acct.ID
			if err := tx.Save(pos).Error; err != nil {
				return fmt.Errorf("failed to save position %s: %w", pos.Symbol, err)
			}
			kept = append(kept, pos.Symbol)
		}

		// Hard-delete sold-out positions so the (account, symbol) unique
		// index is free for a later re-buy.
		del := tx.Unscoped().Where("account_id = ?", acct.ID)
		if len(kept) > 0 {
			del = del.Where("symbol NOT IN ?", kept)
		}
		if err := del.Delete(&models.Position{}).Error; err != nil {
			return fmt.Errorf("failed to delete closed positions: %w", err)
		}

		// Append trade records the ledger added to this snapshot. Already
		// persisted records carry an ID and are never touched again.
		for i := range acct.Trades {
			trade := &acct.Trades[i]
			if trade.ID != 0 {
				continue
			}
			trade.AccountID = acct.ID
			if err := tx.Create(trade).Error; err != nil {
				return fmt.Errorf("failed to append trade record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	acct.Version++
	return nil
}

func (s *GormStore) Trades(ctx context.Context, id uint) ([]models.Trade, error) {
	var trades []models.Trade
	err := s.db.WithContext(ctx).
		Where("account_id = ?", id).
		Order("timestamp desc, id desc").
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for account %d: %w", id, err)
	}
	return trades, nil
}

func (s *GormStore) Reset(ctx context.Context, id uint, initialBalance decimal.Decimal) (*models.Account, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Account{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"cash": initialBalance, "version": gorm.Expr("version + 1")})
		if res.Error != nil {
			return fmt.Errorf("failed to reset account %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		if err := tx.Unscoped().Where("account_id = ?", id).Delete(&models.Position{}).Error; err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}
		if err := tx.Unscoped().Where("account_id = ?", id).Delete(&models.Trade{}).Error; err != nil {
			return fmt.Errorf("failed to clear trade log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
