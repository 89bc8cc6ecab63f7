package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ledger_service/internal/domain"
)

// TransactionRepository reads the transaction log
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByUser returns the user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, transaction_id desc").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions for user %d: %w", userID, err)
	}
	return txs, nil
}

// List returns every transaction, newest first with ties ordered by transaction id
func (r *TransactionRepository) List(ctx context.Context) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := r.db.WithContext(ctx).Order("created_at desc, transaction_id desc").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}
