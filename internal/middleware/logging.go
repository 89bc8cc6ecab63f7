package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key of the request id
	RequestIDKey = "request_id"
)

// RequestID reuses the caller's X-Request-ID or assigns a fresh uuid
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one logrus line per request once the handler chain has finished
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"request_id": c.GetString(RequestIDKey),  // Correlation id
			"method":     c.Request.Method,           // HTTP method
			"path":       c.Request.URL.Path,         // Request path
			"status":     c.Writer.Status(),          // Response status
			"latency":    time.Since(start).String(), // Handler time
			"client_ip":  c.ClientIP(),               // Remote address
		}
		if user, ok := CurrentUser(c); ok {
			fields["user_id"] = user.ID
		}
		entry := logrus.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}
