// ABOUTME: Message router for the realtime chat channel
// ABOUTME: Validates submissions, persists them atomically, and fans out to rooms

package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shahriaraf/Ayira-Ecommerce-Server/internal/store"
)

// ConversationStore defines what the router needs from storage
type ConversationStore interface {
	AppendMessage(ctx context.Context, userID string, msg *store.Message) error
	NameForUserID(ctx context.Context, id string) (string, error)
}

// Broadcaster defines what the router needs from the connection registry.
// Injected rather than ambient so tests can supply a fake.
type Broadcaster interface {
	Broadcast(room string, ev *OutboundEvent) int
}

// delivery pairs a resolved outbound event with its target room.
type delivery struct {
	room  string
	event *OutboundEvent
}

// Router accepts one inbound message submission at a time: validate, persist,
// then push. Persistence always happens before fan-out, so a message with no
// connected recipient is still recorded and shows up on the next fetch.
type Router struct {
	store    ConversationStore
	registry Broadcaster
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRouter creates a message router. Pass nil logger for default.
func NewRouter(convStore ConversationStore, registry Broadcaster, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		store:    convStore,
		registry: registry,
		validate: validator.New(),
		logger:   logger.With("component", "chat-router"),
	}
}

// Dispatch handles one sendMessage submission from origin. All failures are
// non-fatal: they are logged, optionally answered with a sendMessageError
// event to the originating connection, and the dispatch loop keeps serving.
func (r *Router) Dispatch(ctx context.Context, origin Sink, req *SendMessageRequest) {
	if err := r.validate.Struct(req); err != nil {
		r.logger.Warn("invalid sendMessage payload", "error", err)
		r.deliverError(origin, "Invalid message payload.")
		return
	}

	// The conversation key is the customer's id regardless of direction:
	// admin messages resolve it from the recipient, user messages from the
	// sender.
	conversationUserID := req.Sender.UserID
	if req.Sender.Role == store.RoleAdmin {
		if req.Recipient == nil || req.Recipient.UserID == "" {
			// Addressing failure, not validation: dropped before persistence
			// with no user-visible confirmation.
			r.logger.Warn("admin message with no resolvable recipient",
				"sender_id", req.Sender.UserID)
			return
		}
		conversationUserID = req.Recipient.UserID
	}

	msg := &store.Message{
		ID:         uuid.New().String(),
		SenderID:   req.Sender.UserID,
		SenderRole: req.Sender.Role,
		Content:    req.Content,
		Timestamp:  time.Now().UTC(),
	}

	if err := r.store.AppendMessage(ctx, conversationUserID, msg); err != nil {
		r.logger.Error("failed to persist message",
			"error", err,
			"conversation_user_id", conversationUserID,
			"message_id", msg.ID)
		r.deliverError(origin, "Failed to send message.")
		return
	}

	senderName := req.Sender.Name
	if senderName == "" {
		name, err := r.store.NameForUserID(ctx, req.Sender.UserID)
		if err != nil {
			r.logger.Debug("could not resolve sender name", "error", err,
				"sender_id", req.Sender.UserID)
			name = store.FallbackCustomerName
		}
		senderName = name
	}
	payload := &MessagePayload{
		SenderID:           msg.SenderID,
		SenderRole:         msg.SenderRole,
		Content:            msg.Content,
		Timestamp:          msg.Timestamp,
		ConversationUserID: conversationUserID,
		SenderName:         senderName,
	}

	for _, d := range resolveDeliveries(req.Sender.Role, conversationUserID, payload) {
		delivered := r.registry.Broadcast(d.room, d.event)
		r.logger.Debug("message fanned out",
			"room", d.room,
			"event", d.event.Name,
			"delivered", delivered)
	}
}

// resolveDeliveries maps a persisted message to its outbound event set,
// resolved once per message. Admin messages go to the customer's room only;
// customer messages raise both the live-thread event and the inbox-refresh
// event on the admin room.
func resolveDeliveries(senderRole, conversationUserID string, payload *MessagePayload) []delivery {
	if senderRole == store.RoleAdmin {
		return []delivery{
			{room: conversationUserID, event: &OutboundEvent{Name: EventNewMessage, Data: payload}},
		}
	}
	return []delivery{
		{room: AdminRoom, event: &OutboundEvent{Name: EventNewMessage, Data: payload}},
		{room: AdminRoom, event: &OutboundEvent{Name: EventNewMessageAdmin, Data: payload}},
	}
}

// deliverError emits sendMessageError to the originating connection only.
func (r *Router) deliverError(origin Sink, message string) {
	if origin == nil {
		return
	}
	ev := &OutboundEvent{Name: EventSendMessageError, Data: &ErrorPayload{Message: message}}
	if err := origin.Deliver(ev); err != nil {
		r.logger.Debug("could not deliver error event to origin", "error", err)
	}
}
