package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger_service/internal/apperr"
	"ledger_service/internal/domain"
	"ledger_service/internal/events"
	"ledger_service/internal/utils"
)

// ProcessedMessage is returned with every successful payment
const ProcessedMessage = "Transaction processed"

// PaymentRequest is a signed balance delta for (UserID, AccountID)
type PaymentRequest struct {
	TransactionID string  // Idempotency key, caller-chosen
	AccountID     uint    // Account primary key
	UserID        uint    // Account owner
	Amount        float64 // Delta, may be negative
	Signature     string  // hex sha256, see Sign
}

// PaymentResult is the outcome of a committed payment
type PaymentResult struct {
	Message       string  `json:"message"`
	NewBalance    float64 `json:"new_balance"`
	AccountOpened bool    `json:"-"`
}

// Processor applies payments. It is safe for concurrent use; all coordination is
// delegated to the database transaction.
type Processor struct {
	db        *gorm.DB
	secret    string
	rdb       *redis.Client
	publisher *events.Publisher
}

// NewProcessor creates a Processor. rdb and publisher may be nil.
func NewProcessor(db *gorm.DB, secret string, rdb *redis.Client, publisher *events.Publisher) *Processor {
	return &Processor{db: db, secret: secret, rdb: rdb, publisher: publisher}
}

// ApplyPayment verifies the signature, then in one database transaction rejects a
// reused transaction id, opens or updates the account under a row lock, and appends
// the transaction record.
func (p *Processor) ApplyPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if strings.TrimSpace(req.TransactionID) == "" {
		return nil, apperr.New(apperr.Validation, "transaction_id is required")
	}
	if !VerifySignature(req, p.secret) {
		logrus.WithFields(logrus.Fields{
			"transaction_id": req.TransactionID, // Rejected transaction
			"user_id":        req.UserID,        // Claimed owner
			"account_id":     req.AccountID,     // Target account
		}).Warn("Payment signature rejected")
		return nil, apperr.New(apperr.InvalidSignature, "Invalid signature")
	}

	result := &PaymentResult{Message: ProcessedMessage}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&domain.Transaction{}).Where("transaction_id = ?", req.TransactionID).Count(&seen).Error; err != nil {
			return fmt.Errorf("check transaction %q: %w", req.TransactionID, err)
		}
		if seen > 0 {
			return apperr.New(apperr.DuplicateTransaction, "Transaction already processed")
		}

		opened, err := applyDelta(tx, req)
		if err != nil {
			return err
		}
		result.AccountOpened = opened

		record := domain.Transaction{
			TransactionID: req.TransactionID,
			UserID:        req.UserID,
			AccountID:     req.AccountID,
			Amount:        req.Amount,
			Signature:     req.Signature,
		}
		if err := tx.Create(&record).Error; err != nil {
			// A concurrent submission of the same id committed first
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Wrap(apperr.DuplicateTransaction, "Transaction already processed", err)
			}
			return fmt.Errorf("record transaction %q: %w", req.TransactionID, err)
		}

		if err := tx.Model(&domain.Account{}).Select("amount").Where("id = ?", req.AccountID).Scan(&result.NewBalance).Error; err != nil {
			return fmt.Errorf("read balance of account %d: %w", req.AccountID, err)
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.Internal {
			logrus.WithFields(logrus.Fields{
				"transaction_id": req.TransactionID, // Failed transaction
				"user_id":        req.UserID,        // Owner
				"account_id":     req.AccountID,     // Target account
				"amount":         req.Amount,        // Delta
				"error":          err.Error(),       // Error message
			}).Error("Payment failed")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": req.TransactionID,               // Applied transaction
		"user_id":        req.UserID,                      // Owner
		"account_id":     req.AccountID,                   // Mutated account
		"amount":         req.Amount,                      // Delta
		"new_balance":    result.NewBalance,               // Balance after commit
		"account_opened": result.AccountOpened,            // First payment to the account
		"timestamp":      time.Now().Format(time.RFC3339), // Current timestamp
	}).Info("Payment transaction")

	p.afterCommit(ctx, req, result)
	return result, nil
}

// applyDelta opens the account seeded at the delta, or, when it already exists, locks
// the row and adds the delta to its balance. It reports whether the account was opened.
// A concurrent first payment to the same account waits on the winner's row and then
// takes the update path.
func applyDelta(tx *gorm.DB, req PaymentRequest) (bool, error) {
	account := domain.Account{ID: req.AccountID, UserID: req.UserID, Amount: req.Amount}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&account)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return false, apperr.Wrap(apperr.Validation, "Unknown user", res.Error)
		}
		return false, fmt.Errorf("open account %d: %w", req.AccountID, res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var existing domain.Account
	res = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", req.AccountID).Limit(1).Find(&existing)
	if res.Error != nil {
		return false, fmt.Errorf("lock account %d: %w", req.AccountID, res.Error)
	}
	switch {
	case res.RowsAffected == 0:
		return false, fmt.Errorf("lock account %d: row vanished after conflicting insert", req.AccountID)
	case existing.UserID != req.UserID:
		return false, apperr.New(apperr.Validation, "Account belongs to another user")
	}
	err := tx.Model(&domain.Account{}).
		Where("id = ? AND user_id = ?", req.AccountID, req.UserID).
		Update("amount", gorm.Expr("amount + ?", req.Amount)).Error
	if err != nil {
		return false, fmt.Errorf("update account %d: %w", req.AccountID, err)
	}
	return false, nil
}

// afterCommit drops stale cached listings and announces the payment. Failures are logged only.
func (p *Processor) afterCommit(ctx context.Context, req PaymentRequest, result *PaymentResult) {
	if err := utils.DeleteCache(ctx, p.rdb, AccountsCacheKey(req.UserID), TransactionsCacheKey(req.UserID)); err != nil {
		logrus.WithError(err).WithField("user_id", req.UserID).Warn("Failed to invalidate ledger cache")
	}
	err := p.publisher.Publish(ctx, events.LedgerStream, events.TransactionProcessed, events.TransactionProcessedEvent{
		TransactionID: req.TransactionID,
		UserID:        req.UserID,
		AccountID:     req.AccountID,
		Amount:        req.Amount,
		NewBalance:    result.NewBalance,
		AccountOpened: result.AccountOpened,
	})
	if err != nil {
		logrus.WithError(err).WithField("transaction_id", req.TransactionID).Warn("Failed to publish transaction event")
	}
}

// AccountsCacheKey is the cache key of a user's account listing
func AccountsCacheKey(userID uint) string {
	return "accounts:user:" + strconv.FormatUint(uint64(userID), 10)
}

// TransactionsCacheKey is the cache key of a user's transaction history
func TransactionsCacheKey(userID uint) string {
	return "transactions:user:" + strconv.FormatUint(uint64(userID), 10)
}
