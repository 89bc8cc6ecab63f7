package api

import (
	"context"  // Request context
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"ledger_service/internal/auth"       // Token type
	"ledger_service/internal/middleware" // Authenticated user
)

// Authenticator exchanges credentials for an access token
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// LoginRequest is the form-encoded login body; username carries the email
type LoginRequest struct {
	Username string `form:"username" binding:"required"` // Email must be provided
	Password string `form:"password" binding:"required"` // Password must be provided
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT token
	TokenType   string `json:"token_type"`   // Always "bearer"
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind form request to struct
		if err := c.ShouldBind(&req); err != nil {
			respondBindError(c, err)
			return
		}
		token, err := authn.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			logrus.WithField("email", req.Username).Info("Login rejected")
			respondError(c, err)
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: auth.TokenType})
	}
}

// CurrentUserHandler returns the caller's own user record
func CurrentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c) // Set by JWTAuthMiddleware
		c.JSON(http.StatusOK, gin.H{"user_info": user})
	}
}
