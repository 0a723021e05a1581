// ABOUTME: Tests for the in-memory connection registry
// ABOUTME: Verifies room membership, re-join semantics, and broadcast fan-out

package chat

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahriaraf/Ayira-Ecommerce-Server/internal/store"
)

// recordingSink captures delivered events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []*OutboundEvent
	fail   bool
}

func (s *recordingSink) Deliver(ev *OutboundEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("connection gone")
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) Events() []*OutboundEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*OutboundEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestRoomFor(t *testing.T) {
	userID := uuid.New().String()

	assert.Equal(t, userID, RoomFor(userID, store.RoleUser))
	assert.Equal(t, AdminRoom, RoomFor(userID, store.RoleAdmin))
	assert.Equal(t, AdminRoom, RoomFor("", store.RoleAdmin))
}

func TestRegistry_JoinAndBroadcast(t *testing.T) {
	r := NewRegistry(nil)
	userID := uuid.New().String()
	sink := &recordingSink{}

	r.Join("conn-1", userID, store.RoleUser, sink)
	require.Equal(t, 1, r.RoomSize(userID))

	ev := &OutboundEvent{Name: EventNewMessage, Data: "hi"}
	delivered := r.Broadcast(userID, ev)
	assert.Equal(t, 1, delivered)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventNewMessage, events[0].Name)
}

func TestRegistry_AdminsShareOneRoom(t *testing.T) {
	r := NewRegistry(nil)
	sink1 := &recordingSink{}
	sink2 := &recordingSink{}

	r.Join("conn-1", uuid.New().String(), store.RoleAdmin, sink1)
	r.Join("conn-2", uuid.New().String(), store.RoleAdmin, sink2)
	require.Equal(t, 2, r.RoomSize(AdminRoom))

	delivered := r.Broadcast(AdminRoom, &OutboundEvent{Name: EventNewMessageAdmin})
	assert.Equal(t, 2, delivered)
	assert.Len(t, sink1.Events(), 1)
	assert.Len(t, sink2.Events(), 1)
}

func TestRegistry_RejoinReplacesMembership(t *testing.T) {
	r := NewRegistry(nil)
	oldRoom := uuid.New().String()
	newRoom := uuid.New().String()
	sink := &recordingSink{}

	r.Join("conn-1", oldRoom, store.RoleUser, sink)
	r.Join("conn-1", newRoom, store.RoleUser, sink)

	assert.Equal(t, 0, r.RoomSize(oldRoom))
	assert.Equal(t, 1, r.RoomSize(newRoom))
	assert.Equal(t, 0, r.Broadcast(oldRoom, &OutboundEvent{Name: EventNewMessage}))
	assert.Equal(t, 1, r.Broadcast(newRoom, &OutboundEvent{Name: EventNewMessage}))
}

func TestRegistry_BroadcastEmptyRoomIsNoOp(t *testing.T) {
	r := NewRegistry(nil)

	delivered := r.Broadcast(uuid.New().String(), &OutboundEvent{Name: EventNewMessage})
	assert.Equal(t, 0, delivered)
}

func TestRegistry_Leave(t *testing.T) {
	r := NewRegistry(nil)
	userID := uuid.New().String()
	sink := &recordingSink{}

	r.Join("conn-1", userID, store.RoleUser, sink)
	r.Leave("conn-1")

	assert.Equal(t, 0, r.RoomSize(userID))
	assert.Equal(t, 0, r.Broadcast(userID, &OutboundEvent{Name: EventNewMessage}))

	// Leaving twice, or without ever joining, is fine
	r.Leave("conn-1")
	r.Leave("never-joined")
}

func TestRegistry_BroadcastSkipsFailingSinks(t *testing.T) {
	r := NewRegistry(nil)
	healthy := &recordingSink{}
	broken := &recordingSink{fail: true}

	r.Join("conn-1", uuid.New().String(), store.RoleAdmin, healthy)
	r.Join("conn-2", uuid.New().String(), store.RoleAdmin, broken)

	delivered := r.Broadcast(AdminRoom, &OutboundEvent{Name: EventNewMessage})
	assert.Equal(t, 1, delivered)
	assert.Len(t, healthy.Events(), 1)
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry(nil)
	userID := uuid.New().String()

	r.Join("conn-1", userID, store.RoleUser, &recordingSink{})
	r.Close()

	assert.Equal(t, 0, r.RoomSize(userID))
}

func TestRegistry_ConcurrentJoinLeaveBroadcast(t *testing.T) {
	r := NewRegistry(nil)
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			connID := uuid.New().String()
			r.Join(connID, uuid.New().String(), store.RoleAdmin, &recordingSink{})
			r.Broadcast(AdminRoom, &OutboundEvent{Name: EventNewMessage})
			r.Leave(connID)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.RoomSize(AdminRoom))
}
