package api

import (
	"context"  // Request context
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Audit timestamps

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"ledger_service/internal/apperr"     // Error kinds
	"ledger_service/internal/domain"     // Importing domain models
	"ledger_service/internal/events"     // Ledger event types
	"ledger_service/internal/middleware" // Authenticated user
	"ledger_service/internal/store"      // User creation input
)

// UserStore is the credential store as seen by the admin routes
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, in store.NewUser) (*domain.User, error)
	Delete(ctx context.Context, id uint) error
}

// EventPublisher announces ledger events
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AddUserRequest is the admin payload for creating a user
type AddUserRequest struct {
	ID       uint   `json:"id"`                              // Optional explicit id
	Email    string `json:"email" binding:"required,email"`  // Login identity
	FullName string `json:"full_name" binding:"required"`    // Display name
	Password string `json:"password" binding:"required"`     // Plaintext password, hashed by the store
	RoleID   uint   `json:"role_id" binding:"required,gt=0"` // Role reference
}

// GetUserHandler returns a single user by path id
func GetUserHandler(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUserID(c, c.Param("user_id"))
		if !ok {
			return
		}
		user, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_info": user.View()})
	}
}

// AddUserHandler creates a user with a hashed password
func AddUserHandler(users UserStore, publisher EventPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := users.Create(c.Request.Context(), store.NewUser{
			ID:       req.ID,
			Email:    req.Email,
			FullName: req.FullName,
			Password: req.Password,
			RoleID:   req.RoleID,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		auditUserChange(c, "User created", user.ID, user.Email)
		publishUserEvent(c.Request.Context(), publisher, events.UserCreated, user.ID, user.Email)
		c.JSON(http.StatusOK, gin.H{"status": "User added successfully"})
	}
}

// DeleteUserHandler removes the user named by the user_id query parameter
func DeleteUserHandler(users UserStore, publisher EventPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUserID(c, c.Query("user_id"))
		if !ok {
			return
		}
		if err := users.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		auditUserChange(c, "User deleted", id, "")
		publishUserEvent(c.Request.Context(), publisher, events.UserDeleted, id, "")
		c.JSON(http.StatusOK, gin.H{"message": "User with id " + strconv.FormatUint(uint64(id), 10) + " deleted successfully"})
	}
}

// ListUsersHandler returns every user without password hashes
func ListUsersHandler(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := users.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]domain.UserView, len(all))
		// Map users to response format
		for i, u := range all {
			resp[i] = u.View()
		}
		c.JSON(http.StatusOK, gin.H{"users": resp})
	}
}

// parseUserID reads a positive user id or writes a 400 and reports false
func parseUserID(c *gin.Context, raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondError(c, apperr.New(apperr.Validation, "user_id must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

func auditUserChange(c *gin.Context, msg string, userID uint, email string) {
	fields := logrus.Fields{
		"user_id":   userID,                          // Affected user
		"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
	}
	if admin, ok := middleware.CurrentUser(c); ok {
		fields["admin_id"] = admin.ID
	}
	if email != "" {
		fields["email"] = email
	}
	logrus.WithFields(fields).Info(msg)
}

func publishUserEvent(ctx context.Context, publisher EventPublisher, eventType string, userID uint, email string) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events.LedgerStream, eventType, events.UserEvent{UserID: userID, Email: email}); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to publish user event")
	}
}
