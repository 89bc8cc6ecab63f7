package domain

// Account Model
type Account struct {
	ID     uint    `gorm:"primaryKey;autoIncrement:false" json:"id"`                // Primary key, caller-chosen on first payment
	UserID uint    `gorm:"not null;index" json:"user_id"`                           // Foreign key to User
	User   *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Owner
	Amount float64 `gorm:"not null" json:"amount"`                                  // Signed balance
}

// TableName pins the table to the persisted schema name
func (Account) TableName() string { return "account" }
