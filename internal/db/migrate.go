package db

import (
	"fmt" // Error wrapping

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // ON CONFLICT clause

	"ledger_service/internal/domain" // Importing domain models
	"ledger_service/internal/utils"  // Password hashing
)

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.Role{}, &domain.User{}, &domain.Account{}, &domain.Transaction{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

// SeedUser describes a demo user provisioned by Seed
type SeedUser struct {
	ID       uint   // User ID
	Email    string // Login identity
	FullName string // Display name
	Password string // Plaintext password, hashed before insert
	RoleID   uint   // Role reference
}

// DefaultSeedUsers are the demo users of a fresh install
var DefaultSeedUsers = []SeedUser{
	{ID: 1, Email: "admin@example.com", FullName: "Admin User", Password: "admin", RoleID: domain.RoleAdmin},
	{ID: 2, Email: "user@example.com", FullName: "Regular User", Password: "user", RoleID: domain.RoleUser},
}

// DefaultSeedAccounts are the zero-balance accounts of a fresh install
var DefaultSeedAccounts = []domain.Account{
	{ID: 1, UserID: 1, Amount: 0},
	{ID: 2, UserID: 1, Amount: 0},
	{ID: 3, UserID: 2, Amount: 0},
}

// Seed provisions roles, demo users and their accounts. Rows that already exist are left untouched.
func Seed(db *gorm.DB, users []SeedUser, accounts []domain.Account) error {
	roles := []domain.Role{
		{ID: domain.RoleAdmin, Name: "admin"},
		{ID: domain.RoleUser, Name: "user"},
	}
	rows := make([]domain.User, 0, len(users))
	for _, u := range users {
		hash, err := utils.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("hash seed password for %s: %w", u.Email, err)
		}
		rows = append(rows, domain.User{ID: u.ID, Email: u.Email, FullName: u.FullName, HashedPassword: hash, RoleID: u.RoleID})
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
		}
		if len(accounts) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&accounts).Error; err != nil {
				return fmt.Errorf("seed accounts: %w", err)
			}
		}
		if tx.Dialector.Name() == "postgres" {
			// Explicit ids do not advance serial sequences
			for _, table := range []string{"role", "user"} {
				stmt := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%q', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %q))`, table, table)
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("reset %s id sequence: %w", table, err)
				}
			}
		}
		logrus.WithFields(logrus.Fields{
			"roles":    len(roles),    // Roles provisioned
			"users":    len(rows),     // Users provisioned
			"accounts": len(accounts), // Accounts provisioned
		}).Info("Seed completed.")
		return nil
	})
}
