package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

// HistoryRepository keeps one record per user, each behind its own lock so
// appends for one user serialize without blocking other users.
type HistoryRepository struct {
	mu      sync.Mutex
	records map[string]*userRecord
}

type userRecord struct {
	mu        sync.Mutex
	turns     []domain.Turn
	updatedAt time.Time
	deleted   bool
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{records: make(map[string]*userRecord)}
}

func (r *HistoryRepository) Get(_ context.Context, userID string) ([]domain.Turn, error) {
	r.mu.Lock()
	rec, ok := r.records[userID]
	r.mu.Unlock()
	if !ok {
		return []domain.Turn{}, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]domain.Turn, len(rec.turns))
	copy(out, rec.turns)
	return out, nil
}

func (r *HistoryRepository) Append(_ context.Context, userID string, turns ...domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	for {
		rec := r.record(userID)
		rec.mu.Lock()
		if rec.deleted {
			// Cleared between lookup and lock; retry against a fresh record.
			rec.mu.Unlock()
			continue
		}
		rec.turns = append(rec.turns, turns...)
		rec.updatedAt = time.Now().UTC()
		rec.mu.Unlock()
		return nil
	}
}

func (r *HistoryRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	rec, ok := r.records[userID]
	delete(r.records, userID)
	r.mu.Unlock()

	if ok {
		rec.mu.Lock()
		rec.deleted = true
		rec.mu.Unlock()
	}
	return nil
}

func (r *HistoryRepository) record(userID string) *userRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		rec = &userRecord{}
		r.records[userID] = rec
	}
	return rec
}
