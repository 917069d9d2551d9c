package websocket

import (
	"sync"

	"cartshare/internal/domain"
	"cartshare/pkg/logger"
)

// Registry is the single source of truth for which connection belongs to
// which room. One coarse RWMutex guards both indexes; rooms are
// group-household sized so contention is not a concern.
type Registry struct {
	connections map[string]domain.ClientConnection // connID -> connection
	rooms       map[domain.Room]map[string]struct{} // room -> member connIDs
	memberships map[string]map[domain.Room]struct{} // connID -> joined rooms
	mutex       sync.RWMutex
	log         logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		connections: make(map[string]domain.ClientConnection),
		rooms:       make(map[domain.Room]map[string]struct{}),
		memberships: make(map[string]map[domain.Room]struct{}),
		log:         log,
	}
}

func (r *Registry) Register(conn domain.ClientConnection) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := conn.ID()
	if _, exists := r.connections[id]; exists {
		return domain.ErrDuplicateConnection
	}

	r.connections[id] = conn
	r.memberships[id] = make(map[domain.Room]struct{})

	r.log.Info("Connection registered", "connection_id", id)
	return nil
}

// Join adds the connection to a room, creating the room implicitly on
// first join. Joining a room the connection is already in is a no-op.
func (r *Registry) Join(connectionID string, room domain.Room) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	joined, exists := r.memberships[connectionID]
	if !exists {
		return domain.ErrUnknownConnection
	}

	if _, member := joined[room]; member {
		return nil
	}

	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]struct{})
	}
	r.rooms[room][connectionID] = struct{}{}
	joined[room] = struct{}{}

	r.log.Info("Joined room", "connection_id", connectionID,
		"room_kind", room.Kind.String(), "room_id", room.ID)
	return nil
}

// Leave removes the connection from a room. Leaving a room the
// connection never joined is a no-op, not an error.
func (r *Registry) Leave(connectionID string, room domain.Room) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	joined, exists := r.memberships[connectionID]
	if !exists {
		return domain.ErrUnknownConnection
	}

	if _, member := joined[room]; !member {
		return nil
	}

	delete(joined, room)
	r.removeFromRoom(connectionID, room)

	r.log.Info("Left room", "connection_id", connectionID,
		"room_kind", room.Kind.String(), "room_id", room.ID)
	return nil
}

// Unregister removes the connection and every membership it holds in one
// atomic step. Safe to call for an id that was never registered.
func (r *Registry) Unregister(connectionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	joined, exists := r.memberships[connectionID]
	if !exists {
		return
	}

	for room := range joined {
		r.removeFromRoom(connectionID, room)
	}
	delete(r.memberships, connectionID)
	delete(r.connections, connectionID)

	r.log.Info("Connection unregistered", "connection_id", connectionID)
}

// removeFromRoom deletes one membership entry and garbage-collects the
// room when it empties. Caller holds the write lock.
func (r *Registry) removeFromRoom(connectionID string, room domain.Room) {
	members, exists := r.rooms[room]
	if !exists {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// MembersOf returns a snapshot of the live connections in a room. A room
// nobody has joined yields an empty slice.
func (r *Registry) MembersOf(room domain.Room) []domain.ClientConnection {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var connections []domain.ClientConnection
	for id := range r.rooms[room] {
		if conn, live := r.connections[id]; live {
			connections = append(connections, conn)
		}
	}
	return connections
}

// Rooms returns the rooms a connection currently belongs to.
func (r *Registry) Rooms(connectionID string) []domain.Room {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var rooms []domain.Room
	for room := range r.memberships[connectionID] {
		rooms = append(rooms, room)
	}
	return rooms
}

func (r *Registry) Stats() domain.RegistryStats {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := domain.RegistryStats{Connections: len(r.connections)}
	for room := range r.rooms {
		switch room.Kind {
		case domain.GroupRoom:
			stats.GroupRooms++
		case domain.ListRoom:
			stats.ListRooms++
		}
	}
	return stats
}
