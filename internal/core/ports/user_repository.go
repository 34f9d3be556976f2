package ports

import (
	"context"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create persists a new user and returns it with its assigned ID.
	// Returns domain.ErrDuplicateUsername when the username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
