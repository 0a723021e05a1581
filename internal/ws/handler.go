// ABOUTME: HTTP upgrade handler and read loop for the chat websocket endpoint
// ABOUTME: Dispatches join/sendMessage events and guarantees disconnect cleanup

package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shahriaraf/Ayira-Ecommerce-Server/internal/chat"
)

// Handler upgrades HTTP requests to websocket connections and runs the
// single-goroutine read loop that feeds the registry and router.
type Handler struct {
	registry   *chat.Registry
	router     *chat.Router
	sendBuffer int
	pongWait   time.Duration
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a websocket handler. Pass nil logger for default.
func NewHandler(registry *chat.Registry, router *chat.Router, sendBuffer int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry:   registry,
		router:     router,
		sendBuffer: sendBuffer,
		pongWait:   pongWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The admin console and the storefront are served from other
			// origins; the chat channel carries no credentials.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "ws"),
	}
}

// ServeHTTP handles GET /ws.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := NewConn(socket, h.sendBuffer)
	conn.Start()
	h.logger.Debug("connection opened", "conn_id", conn.ID)

	// The write loop pings on pingPeriod; a peer that stops answering blows
	// the read deadline here instead of lingering until TCP gives up.
	_ = socket.SetReadDeadline(time.Now().Add(h.pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	// Cleanup runs on every exit path, including a drop mid-send: the read
	// loop below is the only reader, so any transport error lands here.
	defer func() {
		h.registry.Leave(conn.ID)
		conn.Close(websocket.CloseNormalClosure, "bye")
		h.logger.Debug("connection closed", "conn_id", conn.ID)
	}()

	for {
		_, data, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("read failed", "conn_id", conn.ID, "error", err)
			}
			return
		}
		h.handleFrame(r, conn, data)
	}
}

// handleFrame decodes one envelope and dispatches it. Malformed frames are
// logged and skipped; they never tear down the connection.
func (h *Handler) handleFrame(r *http.Request, conn *Conn, data []byte) {
	var env chat.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.logger.Warn("malformed frame", "conn_id", conn.ID, "error", err)
		return
	}

	switch env.Event {
	case chat.EventJoin:
		var join chat.JoinRequest
		if err := json.Unmarshal(env.Data, &join); err != nil {
			h.logger.Warn("malformed join payload", "conn_id", conn.ID, "error", err)
			return
		}
		h.registry.Join(conn.ID, join.UserID, join.Role, conn)

	case chat.EventSendMessage:
		var req chat.SendMessageRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.logger.Warn("malformed sendMessage payload", "conn_id", conn.ID, "error", err)
			return
		}
		h.router.Dispatch(r.Context(), conn, &req)

	default:
		h.logger.Debug("unknown event", "conn_id", conn.ID, "event", env.Event)
	}
}
