// Package accounts registers users and exchanges credentials for session tokens.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/geocoder89/reviewhub/internal/security"
)

var (
	ErrValidation = errors.New("name, email, password and address are required")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, email string) (string, time.Time, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  string
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      user.Public `json:"user"`
}

type Service struct {
	users  UserStore
	tokens TokenIssuer
	log    *slog.Logger
}

func NewService(users UserStore, tokens TokenIssuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{users: users, tokens: tokens, log: log}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" ||
		in.Password == "" || strings.TrimSpace(in.Address) == "" {
		return user.User{}, ErrValidation
	}

	// Fast path for the common duplicate; the store's unique index still
	// decides when two signups race past this check.
	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return user.User{}, user.ErrEmailTaken
	case !errors.Is(err, user.ErrNotFound):
		return user.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, user.New(in.Name, in.Email, hash, in.Address))
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)

	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	found, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("lookup email: %w", err)
	}

	if err := security.CheckPassword(found.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(found.ID, found.Email)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	return Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      found.Public(),
	}, nil
}
