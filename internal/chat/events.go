// ABOUTME: Wire-level event types for the realtime chat channel
// ABOUTME: Inbound join/sendMessage payloads and tagged outbound events

package chat

import (
	"encoding/json"
	"time"
)

// Event names carried in the envelope. Inbound names are what clients emit;
// outbound names are what rooms receive.
const (
	EventJoin             = "join"
	EventSendMessage      = "sendMessage"
	EventNewMessage       = "newMessage"
	EventNewMessageAdmin  = "newMessageForAdmin"
	EventSendMessageError = "sendMessageError"
)

// Envelope is the JSON frame exchanged over the persistent connection.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinRequest is the inbound payload placing a connection into a room.
type JoinRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Sender identifies who is submitting a message.
type Sender struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,oneof=user admin"`
	Name   string `json:"name"`
}

// Recipient names the customer an admin message is addressed to.
type Recipient struct {
	UserID string `json:"userId" validate:"omitempty,uuid"`
}

// SendMessageRequest is the inbound payload for one message submission.
// Recipient is required when the sender is an admin.
type SendMessageRequest struct {
	Sender    Sender     `json:"sender"`
	Recipient *Recipient `json:"recipient,omitempty"`
	Content   string     `json:"content" validate:"required"`
}

// OutboundEvent is a named payload ready for room delivery. The router
// resolves the event set once per message instead of branching at each emit
// site.
type OutboundEvent struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// MessagePayload is the outbound body for newMessage and newMessageForAdmin.
type MessagePayload struct {
	SenderID           string    `json:"senderId"`
	SenderRole         string    `json:"senderRole"`
	Content            string    `json:"content"`
	Timestamp          time.Time `json:"timestamp"`
	ConversationUserID string    `json:"conversationUserId"`
	SenderName         string    `json:"senderName"`
}

// ErrorPayload is the outbound body for sendMessageError, delivered only to
// the originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}
