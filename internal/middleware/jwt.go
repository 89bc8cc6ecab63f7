package middleware

import (
	"context"  // Request context
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"ledger_service/internal/apperr" // Error kinds
	"ledger_service/internal/domain" // Importing domain models
)

// UserContextKey is the gin context key holding the authenticated *domain.UserView
const UserContextKey = "user"

// TokenResolver turns a bearer token into the user it was issued to
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.UserView, error)
}

// JWTAuthMiddleware validates bearer tokens and stores the resolved user in the context
func JWTAuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header carries a bearer token; the scheme is case-insensitive
		scheme, tokenStr, found := strings.Cut(strings.TrimSpace(authHeader), " ")
		tokenStr = strings.TrimSpace(tokenStr) // Extract the token string
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			unauthorized(c, "Not authenticated")
			return
		}
		user, err := resolver.ResolveToken(c.Request.Context(), tokenStr) // Verify and look up the subject
		if err != nil {
			if apperr.KindOf(err) == apperr.Internal {
				logrus.WithError(err).WithField("path", c.FullPath()).Error("Token resolution failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": apperr.MessageOf(err)})
				return
			}
			unauthorized(c, apperr.MessageOf(err))
			return
		}
		c.Set(UserContextKey, user) // Store user in context
		c.Next()                    // Proceed to the next handler
	}
}

// CurrentUser returns the user stored by JWTAuthMiddleware
func CurrentUser(c *gin.Context) (*domain.UserView, bool) {
	v, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.UserView)
	return user, ok && user != nil
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
