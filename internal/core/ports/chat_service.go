package ports

import (
	"context"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

// HistoryEntry is a prior turn supplied by the client with a chat request.
type HistoryEntry struct {
	Role string `validate:"required,oneof=user assistant"`
	Text string
}

// ChatInput is the DTO passed from the transport layer to ChatService.
// UserID comes from the verified token, never from the request body.
type ChatInput struct {
	UserID  string
	Message string         `validate:"required,notblank"`
	History []HistoryEntry `validate:"dive"`
}

// ChatService is the session gateway behind the authenticated chat routes.
type ChatService interface {
	Chat(ctx context.Context, in ChatInput) (string, error)
	History(ctx context.Context, userID string) ([]domain.Turn, error)
	ClearHistory(ctx context.Context, userID string) error
}
