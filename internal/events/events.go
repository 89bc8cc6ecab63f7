package events

import "time"

// LedgerStream is the Redis stream ledger events are appended to
const LedgerStream = "ledger.events"

// Event types
const (
	TransactionProcessed = "transaction.processed"
	UserCreated          = "user.created"
	UserDeleted          = "user.deleted"
)

// Event is the envelope written to the stream
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// TransactionProcessedEvent is published after a payment commits
type TransactionProcessedEvent struct {
	TransactionID string  `json:"transaction_id"`
	UserID        uint    `json:"user_id"`
	AccountID     uint    `json:"account_id"`
	Amount        float64 `json:"amount"`
	NewBalance    float64 `json:"new_balance"`
	AccountOpened bool    `json:"account_opened"`
}

// UserEvent is published after admin user changes
type UserEvent struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email,omitempty"`
}
