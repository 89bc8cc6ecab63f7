package ledger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// FormatAmount renders an amount the way it enters the signed message: shortest
// decimal form, so 50 signs as "50" and -12.5 as "-12.5".
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// Sign computes hex(sha256(account_id || amount || transaction_id || user_id || secret)).
func Sign(accountID uint, amount float64, transactionID string, userID uint, secret string) string {
	msg := strconv.FormatUint(uint64(accountID), 10) +
		FormatAmount(amount) +
		transactionID +
		strconv.FormatUint(uint64(userID), 10) +
		secret
	sum := sha256.Sum256([]byte(msg))
	return hex.EncodeToString(sum[:])
}

// VerifySignature reports whether req.Signature matches the expected signature exactly
func VerifySignature(req PaymentRequest, secret string) bool {
	expected := Sign(req.AccountID, req.Amount, req.TransactionID, req.UserID, secret)
	return hmac.Equal([]byte(expected), []byte(req.Signature))
}
