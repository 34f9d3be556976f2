package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gccn-chatbot/session-service/internal/pkg/metrics"
	"github.com/gccn-chatbot/session-service/internal/core/domain"
	"github.com/gccn-chatbot/session-service/internal/core/ports"
)

const (
	// DefaultBcryptCost matches 10 rounds of the adaptive hash.
	DefaultBcryptCost = 10
	minPasswordLength = 6
	maxPasswordBytes  = 72
)

// AccountService implements registration and login.
type AccountService struct {
	repo      ports.UserRepository
	tokens    ports.TokenService
	cost      int
	dummyHash []byte
	log       zerolog.Logger
}

func NewAccountService(repo ports.UserRepository, tokens ports.TokenService, cost int, log zerolog.Logger) *AccountService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	// Compared against when the username is unknown, so both login failure
	// paths cost one bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("unknown-user-placeholder"), cost)
	return &AccountService{
		repo:      repo,
		tokens:    tokens,
		cost:      cost,
		dummyHash: dummy,
		log:       log.With().Str("component", "account").Logger(),
	}
}

func (s *AccountService) Register(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrMissingField
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		}
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return &domain.AuthResult{User: created, Token: token}, nil
}

// Login never tells the caller whether the username exists: an unknown user
// and a wrong password both yield domain.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrMissingField
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.log.Debug().Str("user_id", user.ID).Msg("user logged in")
	return &domain.AuthResult{User: user, Token: token}, nil
}
