package domain

// Role identifiers seeded by the migration
const (
	RoleAdmin uint = 1 // Administrator
	RoleUser  uint = 2 // Regular user
)

// Role Model
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"` // Primary key
	Name string `gorm:"not null" json:"name"` // Role name: admin or user
}

// TableName pins the table to the persisted schema name
func (Role) TableName() string { return "role" }

// User Model
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`                                    // Primary key
	Email          string `gorm:"size:255;uniqueIndex;not null" json:"email"`              // Login identity
	FullName       string `gorm:"not null" json:"full_name"`                               // Display name
	HashedPassword string `gorm:"column:hashed_password;not null" json:"-"`                // bcrypt hash, never serialized
	RoleID         uint   `gorm:"not null" json:"role_id"`                                 // Foreign key to Role
	Role           *Role  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Belongs-to Role
}

// TableName pins the table to the persisted schema name
func (User) TableName() string { return "user" }

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}

// View strips the password hash
func (u User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, FullName: u.FullName, RoleID: u.RoleID}
}

// UserView is the user representation handed out by every read path
type UserView struct {
	ID       uint   `json:"id"`        // User ID
	Email    string `json:"email"`     // Login identity
	FullName string `json:"full_name"` // Display name
	RoleID   uint   `json:"role_id"`   // Role reference
}

// IsAdmin reports whether the user holds the admin role
func (v UserView) IsAdmin() bool {
	return v.RoleID == RoleAdmin
}
