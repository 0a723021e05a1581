// ABOUTME: HTTP API handlers for the admin inbox, thread fetches, and profiles
// ABOUTME: Thin JSON wrappers over the chat query service and the store

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shahriaraf/Ayira-Ecommerce-Server/internal/chat"
	"github.com/shahriaraf/Ayira-Ecommerce-Server/internal/store"
)

// ConversationResponse is one row of the GET /api/conversations listing.
type ConversationResponse struct {
	ID                   string `json:"_id"`
	LastMessage          string `json:"lastMessage"`
	LastMessageTimestamp string `json:"lastMessageTimestamp,omitempty"`
	CustomerName         string `json:"customerName"`
	UserID               string `json:"userId"`
}

// MessageResponse is one entry of the GET /api/conversations/{userId} thread.
type MessageResponse struct {
	SenderID   string `json:"senderId"`
	SenderRole string `json:"senderRole"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

// SaveUserRequest is the JSON request body for POST /api/users.
type SaveUserRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleListConversations handles GET /api/conversations.
// Returns the admin inbox: one entry per conversation, newest first.
func (g *Gateway) handleListConversations(w http.ResponseWriter, r *http.Request) {
	entries, err := g.query.ListInbox(r.Context())
	if err != nil {
		g.logger.Error("failed to list conversations", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch conversations."})
		return
	}

	resp := make([]ConversationResponse, 0, len(entries))
	for _, e := range entries {
		row := ConversationResponse{
			ID:           e.ConversationID,
			LastMessage:  e.LastMessage,
			CustomerName: e.CustomerName,
			UserID:       e.UserID,
		}
		if e.LastMessageAt != nil {
			row.LastMessageTimestamp = e.LastMessageAt.UTC().Format(time.RFC3339Nano)
		}
		resp = append(resp, row)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetThread handles GET /api/conversations/{userId}.
// A malformed id is a 400; an absent conversation is an empty list, not an
// error.
func (g *Gateway) handleGetThread(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	messages, err := g.query.GetThread(r.Context(), userID)
	if errors.Is(err, chat.ErrInvalidUserID) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID format."})
		return
	}
	if err != nil {
		g.logger.Error("failed to fetch thread", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch messages."})
		return
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, MessageResponse{
			SenderID:   m.SenderID,
			SenderRole: m.SenderRole,
			Content:    m.Content,
			Timestamp:  m.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSaveUser handles POST /api/users, upserting a customer profile so
// the inbox can show a display name instead of the fallback.
func (g *Gateway) handleSaveUser(w http.ResponseWriter, r *http.Request) {
	var req SaveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body."})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "name is required."})
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	} else if _, err := uuid.Parse(req.ID); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID format."})
		return
	}

	profile := &store.UserProfile{
		ID:    req.ID,
		Name:  req.Name,
		Email: req.Email,
	}
	if err := g.store.SaveUserProfile(r.Context(), profile); err != nil {
		g.logger.Error("failed to save user profile", "error", err, "user_id", req.ID)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to save user."})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": profile.ID})
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
