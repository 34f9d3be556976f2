// Package memory holds in-process stores used for local development
// (STORAGE_DRIVER=memory) and tests. Data does not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User // keyed by username
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrDuplicateUsername
	}
	stored := *user
	stored.ID = uuid.NewString()
	r.users[stored.Username] = &stored

	out := stored
	return &out, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}
