// ABOUTME: Store interface and data types for conversation persistence
// ABOUTME: Defines Conversation, Message, UserProfile structs and sentinel errors

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Participant roles. Every conversation has exactly one slot of each.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// NoMessagesPreview is the inbox preview shown for a conversation whose
// message log is still empty.
const NoMessagesPreview = "No messages yet..."

// FallbackCustomerName is used when no profile exists for a user id.
const FallbackCustomerName = "Customer"

// Participant is one slot in a conversation. The admin slot carries no
// identity: all admins share it.
type Participant struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Conversation is the durable per-customer thread. At most one exists per
// distinct user id; it is created lazily on first contact and never deleted.
type Conversation struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// Participants returns the two-slot participant view: the customer and the
// shared, identity-less admin slot.
func (c *Conversation) Participants() []Participant {
	return []Participant{
		{UserID: c.UserID, Role: RoleUser},
		{UserID: "", Role: RoleAdmin},
	}
}

// Message is one entry in a conversation's append-only log. Immutable once
// written.
type Message struct {
	ID         string
	SenderID   string
	SenderRole string
	Content    string
	Timestamp  time.Time
}

// UserProfile is the customer record the inbox projection joins names from.
type UserProfile struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// InboxEntry is one row of the admin-facing inbox projection.
// LastMessageAt is nil for conversations without messages.
type InboxEntry struct {
	ConversationID string
	UserID         string
	CustomerName   string
	LastMessage    string
	LastMessageAt  *time.Time
}

// Store defines conversation and profile persistence.
type Store interface {
	// AppendMessage records msg in the conversation owned by userID, creating
	// the conversation if this is the user's first contact. Creation and
	// append are a single atomic operation: concurrent first-contact sends
	// must never produce two conversations.
	AppendMessage(ctx context.Context, userID string, msg *Message) error

	GetConversationByUserID(ctx context.Context, userID string) (*Conversation, error)

	// GetThreadMessages returns the ordered log for the conversation owned by
	// userID, or an empty slice when no conversation exists.
	GetThreadMessages(ctx context.Context, userID string) ([]*Message, error)

	// ListInbox returns one entry per conversation, newest last message
	// first. Conversations without messages sort after all timestamped ones.
	ListInbox(ctx context.Context) ([]*InboxEntry, error)

	// User profiles
	SaveUserProfile(ctx context.Context, profile *UserProfile) error
	GetUserProfile(ctx context.Context, id string) (*UserProfile, error)

	// NameForUserID resolves a display name, falling back to
	// FallbackCustomerName when no profile exists.
	NameForUserID(ctx context.Context, id string) (string, error)

	// Close releases any resources held by the store
	Close() error
}
