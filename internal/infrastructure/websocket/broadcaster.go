package websocket

import (
	"sync"

	"cartshare/internal/domain"
	"cartshare/pkg/logger"
)

// Broadcaster fans events out to room members. It only ever reads
// membership snapshots from the registry; it never mutates them.
type Broadcaster struct {
	registry domain.ConnectionRegistry
	log      logger.Logger
}

func NewBroadcaster(registry domain.ConnectionRegistry, log logger.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// Broadcast delivers event/payload to every current member of the room
// except the excluded sender. Delivery is at most once, best effort: a
// member whose write fails is logged and skipped, and a room with no
// members is a no-op.
func (b *Broadcaster) Broadcast(room domain.Room, event string, payload []byte, excludeConnectionID string) {
	b.BroadcastRooms([]domain.Room{room}, event, payload, excludeConnectionID)
}

// BroadcastRooms delivers to the union of the members of all target
// rooms, so a connection joined to more than one of them still receives
// exactly one copy. Members are written to concurrently; one stalled
// connection cannot delay the others.
func (b *Broadcaster) BroadcastRooms(rooms []domain.Room, event string, payload []byte, excludeConnectionID string) {
	recipients := make(map[string]domain.ClientConnection)
	for _, room := range rooms {
		for _, conn := range b.registry.MembersOf(room) {
			if conn.ID() == excludeConnectionID {
				continue
			}
			recipients[conn.ID()] = conn
		}
	}

	if len(recipients) == 0 {
		return
	}

	frame, err := encodeFrame(event, payload)
	if err != nil {
		b.log.Error("Failed to encode broadcast frame", "event", event, "error", err)
		return
	}

	var wg sync.WaitGroup
	for _, conn := range recipients {
		wg.Add(1)
		go func(conn domain.ClientConnection) {
			defer wg.Done()
			if err := conn.SendRaw(frame); err != nil {
				// The member may have disconnected mid-broadcast. Dropped.
				b.log.Warn("Broadcast delivery failed", "connection_id", conn.ID(),
					"event", event, "error", err)
			}
		}(conn)
	}
	wg.Wait()

	b.log.Debug("Broadcast delivered", "event", event, "recipients", len(recipients))
}
