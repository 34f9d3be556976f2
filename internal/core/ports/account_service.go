package ports

import (
	"context"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

// AccountService handles registration and login.
type AccountService interface {
	Register(ctx context.Context, username, password string) (*domain.AuthResult, error)
	Login(ctx context.Context, username, password string) (*domain.AuthResult, error)
}
