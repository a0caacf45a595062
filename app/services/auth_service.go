package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/pkg/auth"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
)

// UserStore is the slice of the user repository the auth flows need.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// AuthService issues tokens and runs the idempotent registration flow.
type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates the user if the email is new, otherwise treats the call
// as a login. Either way the caller gets a token; the message tells the two
// outcomes apart.
func (s *AuthService) Register(ctx context.Context, user models.User, password string) (token, message string, err error) {
	_, err = s.users.FindByEmail(ctx, user.Email)
	switch {
	case err == nil:
		token, err = auth.GenerateToken(user.Email)
		return token, "login", err
	case !errors.Is(err, database.ErrNotFound):
		return "", "", fmt.Errorf("services: register lookup: %w", err)
	}

	if password != "" {
		hash, herr := auth.HashPassword(password)
		if herr != nil {
			return "", "", fmt.Errorf("services: register: %w", herr)
		}
		user.Password = hash
	}

	if err := s.users.Create(ctx, &user); err != nil {
		// Lost the race against a concurrent registration with the same
		// email; the unique index held, so fall back to login.
		if errors.Is(err, database.ErrDuplicate) {
			token, err = auth.GenerateToken(user.Email)
			return token, "login", err
		}
		return "", "", fmt.Errorf("services: register: %w", err)
	}

	token, err = auth.GenerateToken(user.Email)
	return token, "user created", err
}

// IssueToken signs a token for a known user. An unknown email is
// ErrNotFound; the handler turns that into the empty-token envelope.
func (s *AuthService) IssueToken(ctx context.Context, email string) (string, error) {
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		return "", err
	}
	return auth.GenerateToken(email)
}

// HasRole reports whether the stored user holds the exact role literal.
// An unknown email is simply false, not an error.
func (s *AuthService) HasRole(ctx context.Context, email, role string) (bool, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Role == role, nil
}
