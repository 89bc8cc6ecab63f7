package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ledger_service/internal/domain"
)

// AccountRepository is the read side of the account ledger. Balances change only
// through ledger.Processor.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// ListByUser returns the accounts owned by userID
func (r *AccountRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts for user %d: %w", userID, err)
	}
	return accounts, nil
}

// List returns every account
func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := r.db.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}
