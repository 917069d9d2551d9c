package websocket

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"cartshare/internal/domain"
	"cartshare/pkg/logger"
)

// fakeConn records frames instead of writing to a socket.
type fakeConn struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(event string, data interface{}) error {
	frame, err := encodeFrame(event, nil)
	if err != nil {
		return err
	}
	return f.SendRaw(frame)
}

func (f *fakeConn) SendRaw(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("write on closed connection")
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeConn) lastFrame() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry(logger.NewNop())

	if err := reg.Register(newFakeConn("conn-1")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := reg.Register(newFakeConn("conn-1")); !errors.Is(err, domain.ErrDuplicateConnection) {
		t.Errorf("Register() duplicate error = %v, want ErrDuplicateConnection", err)
	}
}

func TestRegistryJoinIdempotent(t *testing.T) {
	reg := NewRegistry(logger.NewNop())
	conn := newFakeConn("conn-1")
	room := domain.NewGroupRoom("group-1")

	if err := reg.Register(conn); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := reg.Join(conn.ID(), room); err != nil {
			t.Fatalf("Join() call %d error = %v", i, err)
		}
	}

	if got := len(reg.MembersOf(room)); got != 1 {
		t.Errorf("MembersOf() after repeated joins = %d members, want 1", got)
	}
	if got := len(reg.Rooms(conn.ID())); got != 1 {
		t.Errorf("Rooms() after repeated joins = %d rooms, want 1", got)
	}
}

func TestRegistryJoinUnknownConnection(t *testing.T) {
	reg := NewRegistry(logger.NewNop())

	err := reg.Join("never-registered", domain.NewGroupRoom("group-1"))
	if !errors.Is(err, domain.ErrUnknownConnection) {
		t.Errorf("Join() error = %v, want ErrUnknownConnection", err)
	}

	err = reg.Leave("never-registered", domain.NewGroupRoom("group-1"))
	if !errors.Is(err, domain.ErrUnknownConnection) {
		t.Errorf("Leave() error = %v, want ErrUnknownConnection", err)
	}
}

func TestRegistryLeave(t *testing.T) {
	reg := NewRegistry(logger.NewNop())
	conn := newFakeConn("conn-1")
	room := domain.NewListRoom("list-1")

	reg.Register(conn)

	// Leaving a room never joined is a no-op, not an error.
	if err := reg.Leave(conn.ID(), room); err != nil {
		t.Errorf("Leave() before join error = %v, want nil", err)
	}

	reg.Join(conn.ID(), room)
	if err := reg.Leave(conn.ID(), room); err != nil {
		t.Fatalf("Leave() error = %v", err)
	}

	if got := len(reg.MembersOf(room)); got != 0 {
		t.Errorf("MembersOf() after leave = %d members, want 0", got)
	}
}

func TestRegistryUnregisterRemovesAllMemberships(t *testing.T) {
	reg := NewRegistry(logger.NewNop())
	conn := newFakeConn("conn-1")
	group := domain.NewGroupRoom("group-1")
	list := domain.NewListRoom("list-1")

	reg.Register(conn)
	reg.Join(conn.ID(), group)
	reg.Join(conn.ID(), list)

	reg.Unregister(conn.ID())

	if got := len(reg.MembersOf(group)); got != 0 {
		t.Errorf("group room still has %d members after unregister", got)
	}
	if got := len(reg.MembersOf(list)); got != 0 {
		t.Errorf("list room still has %d members after unregister", got)
	}
	if stats := reg.Stats(); stats.Connections != 0 || stats.GroupRooms != 0 || stats.ListRooms != 0 {
		t.Errorf("Stats() after unregister = %+v, want all zero", stats)
	}

	// Unregistering twice must be harmless.
	reg.Unregister(conn.ID())
}

func TestRegistryRoomKindsAreDistinct(t *testing.T) {
	reg := NewRegistry(logger.NewNop())
	conn := newFakeConn("conn-1")

	reg.Register(conn)
	reg.Join(conn.ID(), domain.NewGroupRoom("shared-id"))

	// Same id, different kind: a different room.
	if got := len(reg.MembersOf(domain.NewListRoom("shared-id"))); got != 0 {
		t.Errorf("list room %q has %d members, want 0", "shared-id", got)
	}
}

func TestRegistryStats(t *testing.T) {
	reg := NewRegistry(logger.NewNop())

	for i := 0; i < 3; i++ {
		conn := newFakeConn(fmt.Sprintf("conn-%d", i))
		reg.Register(conn)
		reg.Join(conn.ID(), domain.NewGroupRoom("group-1"))
	}
	reg.Join("conn-0", domain.NewListRoom("list-1"))

	stats := reg.Stats()
	if stats.Connections != 3 {
		t.Errorf("Stats().Connections = %d, want 3", stats.Connections)
	}
	if stats.GroupRooms != 1 {
		t.Errorf("Stats().GroupRooms = %d, want 1", stats.GroupRooms)
	}
	if stats.ListRooms != 1 {
		t.Errorf("Stats().ListRooms = %d, want 1", stats.ListRooms)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry(logger.NewNop())
	room := domain.NewGroupRoom("group-1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("conn-%d", i)
			reg.Register(newFakeConn(id))
			reg.Join(id, room)
			reg.MembersOf(room)
			if i%2 == 0 {
				reg.Unregister(id)
			}
		}(i)
	}
	wg.Wait()

	if got := len(reg.MembersOf(room)); got != 25 {
		t.Errorf("MembersOf() after concurrent churn = %d, want 25", got)
	}
}
