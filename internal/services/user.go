package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shoptrack/apiserver/internal/store"
	"github.com/shoptrack/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredential is returned when the password does not match the
// stored hash.
var ErrInvalidCredential = errors.New("invalid credential")

// ErrUserExists is returned when creating a user whose username is taken.
var ErrUserExists = errors.New("user already exists")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Create registers a new user with a bcrypt-hashed password. An empty
// role defaults to "user". Duplicate usernames are refused with
// ErrUserExists.
func (s *UserService) Create(ctx context.Context, username, role, password string) (types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return types.User{}, errors.New("username is required")
	}
	if password == "" {
		return types.User{}, errors.New("password is required")
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = "user"
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return types.User{}, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check user failed: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password failed: %w", err)
	}

	return s.repo.Create(ctx, types.User{
		Username:     username,
		Role:         role,
		PasswordHash: string(hashed),
	})
}

// VerifyCredentials checks a username/password pair. It returns
// store.ErrNotFound for an unknown user and ErrInvalidCredential for a
// password mismatch. The plaintext password is never logged or stored.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredential
	}

	return user, nil
}
