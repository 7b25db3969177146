package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates users and manages the seed admin account.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// EnsureDefaultAdmin creates the admin account when no admin exists and
	// reports whether it did.
	EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error)
}

type authService struct {
	users domain.UserRepository
	cost  int
}

// NewAuthService creates a new AuthService
func NewAuthService(users domain.UserRepository) AuthService {
	return &authService{users: users, cost: bcrypt.DefaultCost}
}

// Login never reveals whether the username or the password was wrong.
func (s *authService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *authService) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		logger.InfoLog(ctx, "Admin user already exists")
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	u := &domain.User{Username: username, PasswordHash: string(hash), Role: domain.RoleAdmin}
	if err := s.users.Create(ctx, u); err != nil {
		return false, err
	}
	logger.InfoLog(ctx, "Default admin user %q created", username)
	return true, nil
}
