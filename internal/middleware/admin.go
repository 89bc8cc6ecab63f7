package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"ledger_service/internal/apperr" // Error kinds
	"ledger_service/internal/domain" // Importing domain models
)

// AdminChecker decides whether a user may use admin routes
type AdminChecker interface {
	RequireAdmin(user *domain.UserView) error
}

// AdminOnlyMiddleware checks the role of the user resolved by JWTAuthMiddleware
func AdminOnlyMiddleware(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c) // Get user from context
		// JWTAuthMiddleware must run first
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}
		if err := checker.RequireAdmin(user); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,      // Caller
				"path":    c.FullPath(), // Admin route
			}).Warn("Admin access denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperr.MessageOf(err)})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
