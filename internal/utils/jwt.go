package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// ErrMissingSubject is returned when a valid token carries no subject claim
var ErrMissingSubject = errors.New("token has no subject")

// TokenSigner issues and verifies bearer tokens with a shared secret
type TokenSigner struct {
	secret    []byte        // HMAC secret
	algorithm string        // HS256, HS384 or HS512
	ttl       time.Duration // Token lifetime
	now       func() time.Time
}

// NewTokenSigner creates a TokenSigner; algorithm must name an HMAC signing method
func NewTokenSigner(secret, algorithm string, ttl time.Duration) (*TokenSigner, error) {
	if _, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unsupported signing algorithm: " + algorithm)
	}
	return &TokenSigner{secret: []byte(secret), algorithm: algorithm, ttl: ttl, now: time.Now}, nil
}

// GenerateJWT creates a token whose subject is the user's email
func (s *TokenSigner) GenerateJWT(email string) (string, error) {
	now := s.now()
	// Set token claims
	claims := jwt.RegisteredClaims{
		Subject:   email,                              // Login identity
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)), // Expiry
		IssuedAt:  jwt.NewNumericDate(now),            // Issued at current time
	}
	token := jwt.NewWithClaims(jwt.GetSigningMethod(s.algorithm), claims) // Create token with claims
	return token.SignedString(s.secret)                                   // Sign the token with the secret
}

// ParseJWT validates a token string and returns its subject
func (s *TokenSigner) ParseJWT(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil // Return the secret key for validation
	},
		jwt.WithValidMethods([]string{s.algorithm}), // Reject alg switching
		jwt.WithExpirationRequired(),                // exp must be present
		jwt.WithTimeFunc(s.now),
	)
	// Check for parsing errors, including expiry and signature
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
