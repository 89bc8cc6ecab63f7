package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	signer, err := NewTokenSigner("secret", "HS256", 15*time.Minute)
	require.NoError(t, err)

	token, err := signer.GenerateJWT("admin@example.com")
	require.NoError(t, err)

	sub, err := signer.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", sub)
}

func TestExpiredTokenRejected(t *testing.T) {
	signer, err := NewTokenSigner("secret", "HS256", time.Minute)
	require.NoError(t, err)
	signer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := signer.GenerateJWT("user@example.com")
	require.NoError(t, err)

	signer.now = time.Now
	_, err = signer.ParseJWT(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTamperedTokenRejected(t *testing.T) {
	signer, err := NewTokenSigner("secret", "HS256", time.Minute)
	require.NoError(t, err)
	other, err := NewTokenSigner("other-secret", "HS256", time.Minute)
	require.NoError(t, err)

	token, err := other.GenerateJWT("user@example.com")
	require.NoError(t, err)

	_, err = signer.ParseJWT(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	good, err := signer.GenerateJWT("user@example.com")
	require.NoError(t, err)
	_, err = signer.ParseJWT(good + "x")
	assert.Error(t, err)
}

func TestAlgorithmMismatchRejected(t *testing.T) {
	hs512, err := NewTokenSigner("secret", "HS512", time.Minute)
	require.NoError(t, err)
	hs256, err := NewTokenSigner("secret", "HS256", time.Minute)
	require.NoError(t, err)

	token, err := hs512.GenerateJWT("user@example.com")
	require.NoError(t, err)

	_, err = hs256.ParseJWT(token)
	assert.Error(t, err)
}

func TestMissingClaimsRejected(t *testing.T) {
	signer, err := NewTokenSigner("secret", "HS256", time.Minute)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = signer.ParseJWT(noSubject)
	assert.ErrorIs(t, err, ErrMissingSubject)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user@example.com",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = signer.ParseJWT(noExpiry)
	assert.Error(t, err)
}

func TestNewTokenSignerRejectsAsymmetric(t *testing.T) {
	_, err := NewTokenSigner("secret", "RS256", time.Minute)
	assert.Error(t, err)
	_, err = NewTokenSigner("secret", "none", time.Minute)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword("s3cret-pass", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("s3cret-pass", "not-a-hash"))
}
