package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding validation errors
	"github.com/sirupsen/logrus"             // Logging library

	"ledger_service/internal/apperr"     // Error kinds
	"ledger_service/internal/middleware" // Request id key
)

// FieldError describes one rejected request field
type FieldError struct {
	Field   string `json:"field"`   // Offending field
	Message string `json:"message"` // Human readable reason
	Type    string `json:"type"`    // Failed validation tag
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidCredentials, apperr.InvalidToken:
		return http.StatusUnauthorized
	case apperr.Forbidden, apperr.InvalidSignature:
		return http.StatusForbidden
	case apperr.DuplicateTransaction, apperr.Validation:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": message} with the status of its kind
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey), // Correlation id
			"path":       c.FullPath(),                         // Route
			"error":      err.Error(),                          // Error message
		}).Error("Request failed")
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(status, gin.H{"error": apperr.MessageOf(err)})
}

// respondBindError reports a request that failed binding or validation
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Malformed body or wrong types
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Type:    fe.Tag(),
		})
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return "value is too short, minimum is " + fe.Param()
	case "gt":
		return "value must be greater than " + fe.Param()
	default:
		return "value failed " + fe.Tag() + " validation"
	}
}
