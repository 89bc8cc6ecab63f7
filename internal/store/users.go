// Package store holds the GORM repositories for users, accounts and transactions.
// Every method scopes the shared *gorm.DB to the caller's context, so each call works
// on its own request-scoped handle.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ledger_service/internal/apperr"
	"ledger_service/internal/domain"
	"ledger_service/internal/utils"
)

// NewUser is the admin input for creating a user
type NewUser struct {
	ID       uint   // Optional explicit id, zero lets the database assign one
	Email    string // Login identity
	FullName string // Display name
	Password string // Plaintext, hashed before storage
	RoleID   uint   // Role reference
}

// UserRepository is the credential store
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns the user or an apperr.NotFound error
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	res := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, fmt.Errorf("find user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	return &user, nil
}

// FindByEmail returns the user or an apperr.NotFound error
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	res := r.db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, fmt.Errorf("find user by email: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	return &user, nil
}

// List returns every user ordered by id
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create hashes the password and inserts the user. Constraint violations come back as apperr.Validation.
func (r *UserRepository) Create(ctx context.Context, in NewUser) (*domain.User, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:             in.ID,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: hash,
		RoleID:         in.RoleID,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, apperr.Wrap(apperr.Validation, "User with this email or id already exists", err)
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, apperr.Wrap(apperr.Validation, "Unknown role", err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Delete removes the user. Users still referenced by accounts or transactions are not deleted.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return apperr.Wrap(apperr.Validation, "User still owns accounts or transactions", res.Error)
		}
		return fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "User not found")
	}
	return nil
}
