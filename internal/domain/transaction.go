package domain

// Transaction Model. Rows are immutable once written.
type Transaction struct {
	TransactionID string   `gorm:"primaryKey;size:255" json:"transaction_id"`               // Idempotency key
	UserID        uint     `gorm:"not null;index" json:"user_id"`                           // Foreign key to User
	User          *User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Payer
	AccountID     uint     `gorm:"not null;index" json:"account_id"`                        // Foreign key to Account
	Account       *Account `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Mutated account
	Amount        float64  `gorm:"not null" json:"amount"`                                  // Delta applied
	Signature     string   `gorm:"not null" json:"signature"`                               // Caller-supplied signature
	CreatedAt     int64    `gorm:"autoCreateTime:milli" json:"created_at"`                  // Timestamp of creation in milliseconds
}

// TableName pins the table to the persisted schema name
func (Transaction) TableName() string { return "transaction" }
