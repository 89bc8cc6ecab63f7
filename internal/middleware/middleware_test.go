package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"ledger_service/internal/apperr"
	"ledger_service/internal/domain"
)

type mockResolver struct {
	ResolveTokenFunc func(ctx context.Context, token string) (*domain.UserView, error)
}

func (m *mockResolver) ResolveToken(ctx context.Context, token string) (*domain.UserView, error) {
	return m.ResolveTokenFunc(ctx, token)
}

type mockChecker struct {
	RequireAdminFunc func(user *domain.UserView) error
}

func (m *mockChecker) RequireAdmin(user *domain.UserView) error {
	return m.RequireAdminFunc(user)
}

var (
	adminView = &domain.UserView{ID: 1, Email: "admin@example.com", RoleID: domain.RoleAdmin}
	userView  = &domain.UserView{ID: 2, Email: "user@example.com", RoleID: domain.RoleUser}
)

func tokenTable(token string) (*domain.UserView, error) {
	switch token {
	case "admin-token":
		return adminView, nil
	case "user-token":
		return userView, nil
	case "broken-store":
		return nil, errors.New("database is down")
	}
	return nil, apperr.New(apperr.InvalidToken, "Could not validate credentials")
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := &mockResolver{ResolveTokenFunc: func(_ context.Context, token string) (*domain.UserView, error) {
		return tokenTable(token)
	}}
	checker := &mockChecker{RequireAdminFunc: func(user *domain.UserView) error {
		if !user.IsAdmin() {
			return apperr.New(apperr.Forbidden, "The user doesn't have enough privileges")
		}
		return nil
	}}

	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", JWTAuthMiddleware(resolver), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	r.GET("/admin", JWTAuthMiddleware(resolver), AdminOnlyMiddleware(checker), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := setupRouter()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer user-token", http.StatusOK, `{"id":2}`},
		{"missing header", "", http.StatusUnauthorized, `{"error":"Not authenticated"}`},
		{"wrong scheme", "Basic user-token", http.StatusUnauthorized, `{"error":"Not authenticated"}`},
		{"lowercase scheme", "bearer user-token", http.StatusOK, `{"id":2}`},
		{"uppercase scheme", "BEARER user-token", http.StatusOK, `{"id":2}`},
		{"scheme without token", "Bearer ", http.StatusUnauthorized, `{"error":"Not authenticated"}`},
		{"rejected token", "Bearer expired", http.StatusUnauthorized, `{"error":"Could not validate credentials"}`},
		{"store failure", "Bearer broken-store", http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	r := setupRouter()

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"admin passes", "admin-token", http.StatusNoContent},
		{"regular user forbidden", "user-token", http.StatusForbidden},
		{"bad token unauthorized", "nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
