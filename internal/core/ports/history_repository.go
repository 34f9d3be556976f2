package ports

import (
	"context"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

// HistoryRepository persists the ordered conversation of each user.
type HistoryRepository interface {
	// Get returns the user's turns oldest first. A user without a record
	// gets an empty slice and a nil error.
	Get(ctx context.Context, userID string) ([]domain.Turn, error)
	// Append adds turns to the end of the user's record, creating it if needed.
	// Concurrent calls for the same user never interleave their turns.
	Append(ctx context.Context, userID string, turns ...domain.Turn) error
	// Clear deletes the record. Clearing a missing record is not an error.
	Clear(ctx context.Context, userID string) error
}
