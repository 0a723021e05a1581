// ABOUTME: Read-side query service for the admin inbox and per-user threads
// ABOUTME: Validates identifiers and delegates projections to the store

package chat

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shahriaraf/Ayira-Ecommerce-Server/internal/store"
)

// ErrInvalidUserID is returned for a malformed customer identifier.
var ErrInvalidUserID = errors.New("invalid user id")

// QueryStore defines what the query service needs from storage
type QueryStore interface {
	GetThreadMessages(ctx context.Context, userID string) ([]*store.Message, error)
	ListInbox(ctx context.Context) ([]*store.InboxEntry, error)
}

// QueryService produces the admin-facing inbox view and per-user thread
// fetches. Read-only; it never mutates conversations.
type QueryService struct {
	store  QueryStore
	logger *slog.Logger
}

// NewQueryService creates a query service. Pass nil logger for default.
func NewQueryService(qs QueryStore, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{
		store:  qs,
		logger: logger.With("component", "chat-query"),
	}
}

// ListInbox returns one entry per conversation, newest last message first.
func (q *QueryService) ListInbox(ctx context.Context) ([]*store.InboxEntry, error) {
	return q.store.ListInbox(ctx)
}

// GetThread returns the ordered message log for the conversation owned by
// userID. An absent conversation yields an empty slice; a malformed
// identifier yields ErrInvalidUserID before any store access.
func (q *QueryService) GetThread(ctx context.Context, userID string) ([]*store.Message, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidUserID
	}
	return q.store.GetThreadMessages(ctx, userID)
}
