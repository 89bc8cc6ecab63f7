// Package auth authenticates users by email and password and resolves bearer tokens
// back to the stored user.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"ledger_service/internal/apperr"
	"ledger_service/internal/domain"
	"ledger_service/internal/utils"
)

// TokenType is reported alongside every issued access token
const TokenType = "bearer"

// UserFinder looks a user up by login identity
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Service issues and checks bearer tokens
type Service struct {
	users  UserFinder
	signer *utils.TokenSigner
}

func NewService(users UserFinder, signer *utils.TokenSigner) *Service {
	return &Service{users: users, signer: signer}
}

// Authenticate returns the user when password matches the stored hash
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.InvalidCredentials, "Incorrect username or password")
		}
		return nil, err
	}
	if !utils.CheckPassword(password, user.HashedPassword) {
		return nil, apperr.New(apperr.InvalidCredentials, "Incorrect username or password")
	}
	return user, nil
}

// IssueToken signs an access token whose subject is the user's email
func (s *Service) IssueToken(user *domain.User) (string, error) {
	token, err := s.signer.GenerateJWT(user.Email)
	if err != nil {
		return "", fmt.Errorf("sign token for user %d: %w", user.ID, err)
	}
	return token, nil
}

// Login authenticates and issues a token in one step
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.IssueToken(user)
}

// ResolveToken verifies the token and re-reads its subject from the credential store.
// Every rejection is reported as apperr.InvalidToken; storage failures stay Internal.
func (s *Service) ResolveToken(ctx context.Context, token string) (*domain.UserView, error) {
	email, err := s.signer.ParseJWT(token)
	if err != nil {
		logrus.WithError(err).Debug("Bearer token rejected")
		return nil, apperr.Wrap(apperr.InvalidToken, "Could not validate credentials", err)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Wrap(apperr.InvalidToken, "Could not validate credentials", err)
		}
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// RequireAdmin rejects every user without the admin role
func (s *Service) RequireAdmin(user *domain.UserView) error {
	if user == nil || !user.IsAdmin() {
		return apperr.New(apperr.Forbidden, "The user doesn't have enough privileges")
	}
	return nil
}
