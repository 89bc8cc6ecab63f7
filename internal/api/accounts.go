package api

import (
	"context"  // Request context
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"ledger_service/internal/apperr"     // Error kinds
	"ledger_service/internal/domain"     // Importing domain models
	"ledger_service/internal/middleware" // Authenticated user
)

// AccountReader serves account listings
type AccountReader interface {
	AccountsForUser(ctx context.Context, userID uint) ([]domain.Account, error)
	AllAccounts(ctx context.Context) ([]domain.Account, error)
}

// MyAccountsHandler returns the caller's accounts
func MyAccountsHandler(accounts AccountReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c) // Set by JWTAuthMiddleware
		userAccounts(c, accounts, user.ID)
	}
}

// UserAccountsHandler returns the accounts of the user named in the path
func UserAccountsHandler(accounts AccountReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUserID(c, c.Param("user_id"))
		if !ok {
			return
		}
		userAccounts(c, accounts, id)
	}
}

// ListAccountsHandler returns every account
func ListAccountsHandler(accounts AccountReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := accounts.AllAccounts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accounts": nonNil(all)})
	}
}

func userAccounts(c *gin.Context, accounts AccountReader, userID uint) {
	list, err := accounts.AccountsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	// A user without accounts is reported as missing
	if len(list) == 0 {
		respondError(c, apperr.New(apperr.NotFound, "Accounts not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_info": list})
}

// nonNil keeps empty listings encoded as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
