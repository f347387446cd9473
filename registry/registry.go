package registry

import (
	"context"
	"sync"

	"card-battle-server/game"
	"card-battle-server/matcherrors"
)

// Registry maps session ids to running rooms and players to their room.
// It is the only shared state between connections.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	byPlayer map[string]*Room
	ctx      context.Context
	buffer   int

	// OnRoomClosed, when set before the first Start, runs after a room stops.
	OnRoomClosed func(r *Room, reason string)
}

// New creates a Registry. Rooms it starts stop when ctx is cancelled.
func New(ctx context.Context, actionBuffer int) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		byPlayer: make(map[string]*Room),
		ctx:      ctx,
		buffer:   actionBuffer,
	}
}

// Start registers a room for a playing session and runs it. The room is
// removed when it closes.
func (reg *Registry) Start(s *game.Session, hostSend, guestSend chan []byte) (*Room, error) {
	room := NewRoom(s, hostSend, guestSend, reg.buffer)
	room.OnClose = reg.OnRoomClosed
	host, guest := room.Players()

	reg.mu.Lock()
	if _, ok := reg.rooms[room.ID]; ok {
		reg.mu.Unlock()
		return nil, matcherrors.ErrAlreadyInGame
	}
	for _, id := range []string{host, guest} {
		if _, ok := reg.byPlayer[id]; ok {
			reg.mu.Unlock()
			return nil, matcherrors.ErrAlreadyInGame
		}
	}
	reg.rooms[room.ID] = room
	reg.byPlayer[host] = room
	reg.byPlayer[guest] = room
	reg.mu.Unlock()

	go func() {
		room.Run(reg.ctx)
		reg.remove(room)
	}()
	return room, nil
}

func (reg *Registry) remove(room *Room) {
	host, guest := room.Players()
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.rooms[room.ID] == room {
		delete(reg.rooms, room.ID)
	}
	for _, id := range []string{host, guest} {
		if reg.byPlayer[id] == room {
			delete(reg.byPlayer, id)
		}
	}
}

// Get returns the room for a session id.
func (reg *Registry) Get(sessionID string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[sessionID]
	if !ok {
		return nil, matcherrors.ErrSessionNotFound
	}
	return room, nil
}

// RoomFor returns the room playerID is seated in.
func (reg *Registry) RoomFor(playerID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.byPlayer[playerID]
	return room, ok
}

// Submit routes an action to the session it is tagged with.
func (reg *Registry) Submit(sessionID string, a game.Action) error {
	room, err := reg.Get(sessionID)
	if err != nil {
		return err
	}
	return room.Submit(a)
}

// Len returns the number of running rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
