package api

import (
	"context"  // Request context
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"ledger_service/internal/apperr"     // Error kinds
	"ledger_service/internal/domain"     // Importing domain models
	"ledger_service/internal/ledger"     // Payment processing
	"ledger_service/internal/middleware" // Authenticated user
)

// TransactionReader serves transaction history
type TransactionReader interface {
	TransactionsForUser(ctx context.Context, userID uint) ([]domain.Transaction, error)
	AllTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// PaymentProcessor applies signed payments
type PaymentProcessor interface {
	ApplyPayment(ctx context.Context, req ledger.PaymentRequest) (*ledger.PaymentResult, error)
}

// MakeTransactionRequest represents a signed payment
type MakeTransactionRequest struct {
	TransactionID string   `json:"transaction_id" binding:"required"` // Idempotency key
	AccountID     uint     `json:"account_id" binding:"required"`     // Target account
	UserID        uint     `json:"user_id" binding:"required"`        // Account owner
	Amount        *float64 `json:"amount" binding:"required"`         // Balance delta, may be negative
	Signature     string   `json:"signature" binding:"required"`      // hex sha256 over the payment fields
}

// MyTransactionsHandler returns the caller's transactions, newest first
func MyTransactionsHandler(transactions TransactionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c) // Set by JWTAuthMiddleware
		list, err := transactions.TransactionsForUser(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(list) == 0 {
			respondError(c, apperr.New(apperr.NotFound, "Transactions not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"transaction_info": list})
	}
}

// UserTransactionsHandler returns the transactions of the user named by the user_id query parameter
func UserTransactionsHandler(transactions TransactionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUserID(c, c.Query("user_id"))
		if !ok {
			return
		}
		list, err := transactions.TransactionsForUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id, "transactions": nonNil(list)})
	}
}

// ListTransactionsHandler returns every transaction, newest first
func ListTransactionsHandler(transactions TransactionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := transactions.AllTransactions(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": nonNil(all)})
	}
}

// MakeTransactionHandler verifies and applies a signed payment
func MakeTransactionHandler(payments PaymentProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MakeTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		result, err := payments.ApplyPayment(c.Request.Context(), ledger.PaymentRequest{
			TransactionID: req.TransactionID,
			AccountID:     req.AccountID,
			UserID:        req.UserID,
			Amount:        *req.Amount,
			Signature:     req.Signature,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
