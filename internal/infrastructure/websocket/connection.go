package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cartshare/internal/domain"
)

// Connection wraps one gorilla socket. Writes are serialized by a mutex
// and bounded by a write deadline, so a stalled peer fails fast instead
// of wedging a broadcast goroutine.
type Connection struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
	closed       bool
}

func NewConnection(id string, conn *websocket.Conn, writeTimeout time.Duration) *Connection {
	return &Connection{
		id:           id,
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (c *Connection) ID() string { return c.id }

// Send marshals data and writes an event frame.
func (c *Connection) Send(event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := encodeFrame(event, raw)
	if err != nil {
		return err
	}
	return c.SendRaw(frame)
}

// SendRaw writes an already-encoded frame.
func (c *Connection) SendRaw(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return websocket.ErrCloseSent
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// encodeFrame builds the wire envelope around an event name and its
// already-marshaled data object.
func encodeFrame(event string, data []byte) ([]byte, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}
	return json.Marshal(domain.Envelope{Event: event, Data: data})
}
