package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/davberk/microblog/internal/authz"
	"github.com/davberk/microblog/internal/models"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, so callers cannot tell which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation flags malformed registration input.
	ErrValidation = errors.New("invalid input")
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// TokenStore tracks session tokens; *SessionStore is the Redis-backed
// implementation.
type TokenStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Service establishes and tears down authenticated sessions.
type Service struct {
	users    UserStore
	sessions TokenStore
	hasher   PasswordHasher
}

func NewService(users UserStore, sessions TokenStore, hasher PasswordHasher) *Service {
	return &Service{users: users, sessions: sessions, hasher: hasher}
}

// Register creates a new user with a hashed password.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email, and password are required", ErrValidation)
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.CreateUser(ctx, username, email, hashed)
}

// Authenticate verifies credentials and opens a session. Lookup misses
// and hash mismatches are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := s.hasher.Verify(user.Password, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	return user, token, nil
}

// Resolve maps a session token to an actor. An empty or unknown token
// resolves to the anonymous actor; absence of a session is not an error.
func (s *Service) Resolve(ctx context.Context, token string) (authz.Actor, error) {
	if token == "" {
		return authz.Actor{}, nil
	}
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		return authz.Actor{}, err
	}
	return authz.Actor{ID: userID}, nil
}

// Terminate invalidates a session. Terminating an already-invalid
// session is a no-op.
func (s *Service) Terminate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}
