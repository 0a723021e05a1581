// ABOUTME: In-memory registry mapping live connections to fan-out rooms
// ABOUTME: Admin connections share one room; customers get a room per user id

package chat

import (
	"log/slog"
	"sync"

	"github.com/shahriaraf/Ayira-Ecommerce-Server/internal/store"
)

// AdminRoom is the single shared room all admin connections join. Room
// identity for admins is this constant, never a per-admin id.
const AdminRoom = "admin-room"

// Sink delivers outbound events to one live connection. Implementations must
// not block; a slow consumer is the sink's problem, not the registry's.
type Sink interface {
	Deliver(ev *OutboundEvent) error
}

// RoomFor maps a participant to its room name.
func RoomFor(userID, role string) string {
	if role == store.RoleAdmin {
		return AdminRoom
	}
	return userID
}

// Registry tracks which room each live connection belongs to. Membership is
// ephemeral: it exists only for the lifetime of the connection and is never
// persisted. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]map[string]Sink // room -> connID -> sink
	members map[string]string          // connID -> room
	logger  *slog.Logger
}

// NewRegistry creates a registry. Pass nil logger for default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		rooms:   make(map[string]map[string]Sink),
		members: make(map[string]string),
		logger:  logger.With("component", "registry"),
	}
}

// Join places the connection into the room for the given participant. A
// later join from the same connection replaces its membership rather than
// duplicating it.
func (r *Registry) Join(connID, userID, role string, sink Sink) {
	room := RoomFor(userID, role)

	r.mu.Lock()
	if prev, ok := r.members[connID]; ok && prev != room {
		r.removeLocked(connID, prev)
	}
	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(map[string]Sink)
	}
	r.rooms[room][connID] = sink
	r.members[connID] = room
	r.mu.Unlock()

	r.logger.Debug("connection joined room",
		"conn_id", connID,
		"room", room,
		"role", role)
}

// Leave removes the connection from whatever room it belongs to. Safe to
// call for a connection that never joined or already left; it must run on
// every disconnect path.
func (r *Registry) Leave(connID string) {
	r.mu.Lock()
	room, ok := r.members[connID]
	if ok {
		r.removeLocked(connID, room)
	}
	r.mu.Unlock()

	if ok {
		r.logger.Debug("connection left room", "conn_id", connID, "room", room)
	}
}

// Broadcast delivers the event to every connection currently in the room.
// An empty room is a silent no-op: delivery is best-effort, never queued.
// Returns the number of sinks the event was handed to.
func (r *Registry) Broadcast(room string, ev *OutboundEvent) int {
	r.mu.RLock()
	members, ok := r.rooms[room]
	if !ok || len(members) == 0 {
		r.mu.RUnlock()
		return 0
	}

	// Copy sinks under read lock to avoid holding it during delivery
	targets := make([]Sink, 0, len(members))
	for _, sink := range members {
		targets = append(targets, sink)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, sink := range targets {
		if err := sink.Deliver(ev); err != nil {
			r.logger.Debug("dropped event for unreachable connection",
				"room", room,
				"event", ev.Name)
			continue
		}
		delivered++
	}
	return delivered
}

// RoomSize reports the current member count of a room.
func (r *Registry) RoomSize(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Close clears all membership state.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms = make(map[string]map[string]Sink)
	r.members = make(map[string]string)

	r.logger.Debug("registry closed")
}

func (r *Registry) removeLocked(connID, room string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
	delete(r.members, connID)
}
