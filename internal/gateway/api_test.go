// ABOUTME: Tests for the gateway HTTP API
// ABOUTME: Exercises the inbox listing, thread fetches, and profile upserts over httptest

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahriaraf/Ayira-Ecommerce-Server/internal/config"
	"github.com/shahriaraf/Ayira-Ecommerce-Server/internal/store"
)

func createTestGateway(t *testing.T) (*Gateway, *httptest.Server) {
	cfg := &config.Config{}
	cfg.Server.HTTPAddr = "localhost:0"
	cfg.Database.Path = filepath.Join(t.TempDir(), "gateway.db")
	cfg.Chat.SendBuffer = 64

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { gw.store.Close() })

	server := httptest.NewServer(gw.httpServer.Handler)
	t.Cleanup(server.Close)
	return gw, server
}

func seedMessage(t *testing.T, gw *Gateway, userID, role, content string, ts time.Time) {
	msg := &store.Message{
		ID:         uuid.New().String(),
		SenderID:   userID,
		SenderRole: role,
		Content:    content,
		Timestamp:  ts,
	}
	require.NoError(t, gw.store.AppendMessage(context.Background(), userID, msg))
}

func TestGateway_Health(t *testing.T) {
	_, server := createTestGateway(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestGateway_ListConversations(t *testing.T) {
	gw, server := createTestGateway(t)

	u1 := uuid.New().String()
	u2 := uuid.New().String()
	base := time.Now().UTC()

	require.NoError(t, gw.store.SaveUserProfile(context.Background(),
		&store.UserProfile{ID: u1, Name: "Farhan Ahmed"}))

	seedMessage(t, gw, u1, store.RoleUser, "older conversation", base)
	seedMessage(t, gw, u2, store.RoleUser, "newer conversation", base.Add(time.Minute))

	resp, err := http.Get(server.URL + "/api/conversations")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var rows []ConversationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 2)

	// Newest last message first
	assert.Equal(t, u2, rows[0].UserID)
	assert.Equal(t, "newer conversation", rows[0].LastMessage)
	assert.Equal(t, store.FallbackCustomerName, rows[0].CustomerName)
	assert.NotEmpty(t, rows[0].LastMessageTimestamp)

	assert.Equal(t, u1, rows[1].UserID)
	assert.Equal(t, "Farhan Ahmed", rows[1].CustomerName)
	assert.NotEmpty(t, rows[1].ID)
}

func TestGateway_ListConversations_EmptyIsArray(t *testing.T) {
	_, server := createTestGateway(t)

	resp, err := http.Get(server.URL + "/api/conversations")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))
}

func TestGateway_GetThread(t *testing.T) {
	gw, server := createTestGateway(t)
	userID := uuid.New().String()
	base := time.Now().UTC()

	seedMessage(t, gw, userID, store.RoleUser, "Hi", base)
	seedMessage(t, gw, userID, store.RoleAdmin, "Hello", base.Add(time.Second))

	resp, err := http.Get(server.URL + "/api/conversations/" + userID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var messages []MessageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "Hi", messages[0].Content)
	assert.Equal(t, store.RoleUser, messages[0].SenderRole)
	assert.Equal(t, "Hello", messages[1].Content)
	assert.Equal(t, store.RoleAdmin, messages[1].SenderRole)
}

func TestGateway_GetThread_InvalidIDIs400(t *testing.T) {
	_, server := createTestGateway(t)

	resp, err := http.Get(server.URL + "/api/conversations/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "Invalid user ID format.", errResp.Error)
}

func TestGateway_GetThread_UnknownUserIsEmptyList(t *testing.T) {
	_, server := createTestGateway(t)

	resp, err := http.Get(server.URL + "/api/conversations/" + uuid.New().String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))
}

func TestGateway_SaveUser(t *testing.T) {
	gw, server := createTestGateway(t)

	body, _ := json.Marshal(SaveUserRequest{Name: "Sadia Islam", Email: "sadia@example.com"})
	resp, err := http.Post(server.URL+"/api/users", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created["id"])

	profile, err := gw.store.GetUserProfile(context.Background(), created["id"])
	require.NoError(t, err)
	assert.Equal(t, "Sadia Islam", profile.Name)
	assert.Equal(t, "sadia@example.com", profile.Email)
}

func TestGateway_SaveUser_Validation(t *testing.T) {
	_, server := createTestGateway(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"x@example.com"}`},
		{"bad id", `{"id":"nope","name":"X"}`},
		{"not json", `{{{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/api/users", "application/json",
				bytes.NewReader([]byte(tc.body)))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGateway_SaveUser_ExplicitIDShowsInInbox(t *testing.T) {
	gw, server := createTestGateway(t)
	userID := uuid.New().String()

	body, _ := json.Marshal(SaveUserRequest{ID: userID, Name: "Mehedi Hasan"})
	resp, err := http.Post(server.URL+"/api/users", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	seedMessage(t, gw, userID, store.RoleUser, "hi there", time.Now().UTC())

	listResp, err := http.Get(server.URL + "/api/conversations")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var rows []ConversationResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Mehedi Hasan", rows[0].CustomerName)
}
