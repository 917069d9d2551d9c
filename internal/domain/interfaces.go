package domain

import (
	"context"
	"time"
)

// ClientConnection is the transport-facing view of one live socket.
type ClientConnection interface {
	ID() string
	Send(event string, data interface{}) error
	SendRaw(frame []byte) error
	Close() error
}

// ConnectionRegistry is the single source of truth for room membership.
// All mutation goes through its atomic operations; readers only ever see
// snapshots.
type ConnectionRegistry interface {
	Register(conn ClientConnection) error
	Join(connectionID string, room Room) error
	Leave(connectionID string, room Room) error
	Unregister(connectionID string)
	MembersOf(room Room) []ClientConnection
	Rooms(connectionID string) []Room
	Stats() RegistryStats
}

// RoomBroadcaster fans one event out to the current members of one or
// more rooms, best effort, at most once per member.
type RoomBroadcaster interface {
	Broadcast(room Room, event string, payload []byte, excludeConnectionID string)
	BroadcastRooms(rooms []Room, event string, payload []byte, excludeConnectionID string)
}

// PriceCacheStore persists price-lookup results with a storage-enforced
// TTL. A second Set for the same key overwrites the first.
type PriceCacheStore interface {
	Get(ctx context.Context, key string) ([]PriceResult, bool, error)
	Set(ctx context.Context, key string, results []PriceResult, ttl time.Duration) error
}

// PriceLookupProvider is the external price source wrapped by the cache.
type PriceLookupProvider interface {
	Lookup(ctx context.Context, city string, barcodes []string) ([]PriceResult, error)
}

// DistanceProvider resolves the driving distance between two free-form
// addresses, in kilometers.
type DistanceProvider interface {
	Distance(ctx context.Context, origin, destination string) (float64, error)
}
