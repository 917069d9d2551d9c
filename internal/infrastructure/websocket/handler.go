package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cartshare/internal/config"
	"cartshare/internal/domain"
	"cartshare/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Auth happens before this layer; origin is not enforced here.
	},
}

// Handler runs the session protocol for each socket: connect, join
// group, join list, relay updates, disconnect.
type Handler struct {
	registry    domain.ConnectionRegistry
	broadcaster domain.RoomBroadcaster
	cfg         config.WebSocketConfig
	log         logger.Logger
}

func NewHandler(registry domain.ConnectionRegistry, broadcaster domain.RoomBroadcaster,
	cfg config.WebSocketConfig, log logger.Logger) *Handler {
	return &Handler{
		registry:    registry,
		broadcaster: broadcaster,
		cfg:         cfg,
		log:         log,
	}
}

// session tracks the rooms one connection currently occupies. The
// protocol keeps a connection in at most one group room and one list
// room at a time; the registry itself does not care.
type session struct {
	conn         *Connection
	currentGroup string
	currentList  string
}

func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(uuid.NewString(), wsConn, h.cfg.WriteTimeout)

	if err := h.registry.Register(conn); err != nil {
		h.log.Error("Failed to register connection", "connection_id", conn.ID(), "error", err)
		conn.Close()
		return
	}

	go h.handleMessages(&session{conn: conn}, wsConn)
}

func (h *Handler) handleMessages(sess *session, wsConn *websocket.Conn) {
	defer func() {
		h.registry.Unregister(sess.conn.ID())
		sess.conn.Close()
	}()

	wsConn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	stopPings := h.startPings(sess.conn, wsConn)
	defer stopPings()

	for {
		_, frame, err := wsConn.ReadMessage()
		if err != nil {
			// Voluntary close, network error and ping timeout all land
			// here and share the same unregister path.
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Connection read failed", "connection_id", sess.conn.ID(), "error", err)
			}
			return
		}

		event, err := domain.ParseClientEvent(frame)
		if err != nil {
			h.log.Warn("Ignoring bad event", "connection_id", sess.conn.ID(), "error", err)
			continue
		}

		h.dispatch(sess, event)
	}
}

func (h *Handler) dispatch(sess *session, event *domain.ClientEvent) {
	switch {
	case event.JoinGroup != nil:
		h.handleJoinGroup(sess, event.JoinGroup.GroupID)
	case event.JoinList != nil:
		h.handleJoinList(sess, event.JoinList.ListID)
	case event.ListUpdate != nil:
		h.handleListUpdate(sess, event.ListUpdate, event.Raw)
	}
}

// handleJoinGroup moves the connection into the requested group room.
// Re-joining the same room is idempotent but still acknowledged; each
// join call earns one joinedGroup ack.
func (h *Handler) handleJoinGroup(sess *session, groupID string) {
	if sess.currentGroup != "" && sess.currentGroup != groupID {
		if err := h.registry.Leave(sess.conn.ID(), domain.NewGroupRoom(sess.currentGroup)); err != nil {
			h.log.Error("Failed to leave group room", "connection_id", sess.conn.ID(),
				"group_id", sess.currentGroup, "error", err)
		}
	}

	if err := h.registry.Join(sess.conn.ID(), domain.NewGroupRoom(groupID)); err != nil {
		h.log.Error("Failed to join group room", "connection_id", sess.conn.ID(),
			"group_id", groupID, "error", err)
		return
	}
	sess.currentGroup = groupID

	if err := sess.conn.Send(domain.EventJoinedGroup, domain.JoinGroupData{GroupID: groupID}); err != nil {
		h.log.Warn("Failed to ack joinGroup", "connection_id", sess.conn.ID(), "error", err)
	}
}

func (h *Handler) handleJoinList(sess *session, listID string) {
	if sess.currentList != "" && sess.currentList != listID {
		if err := h.registry.Leave(sess.conn.ID(), domain.NewListRoom(sess.currentList)); err != nil {
			h.log.Error("Failed to leave list room", "connection_id", sess.conn.ID(),
				"list_id", sess.currentList, "error", err)
		}
	}

	if err := h.registry.Join(sess.conn.ID(), domain.NewListRoom(listID)); err != nil {
		h.log.Error("Failed to join list room", "connection_id", sess.conn.ID(),
			"list_id", listID, "error", err)
		return
	}
	sess.currentList = listID

	if err := sess.conn.Send(domain.EventJoinedList, domain.JoinListData{ListID: listID}); err != nil {
		h.log.Warn("Failed to ack joinList", "connection_id", sess.conn.ID(), "error", err)
	}
}

// handleListUpdate forwards the payload, byte for byte, to the list room
// and/or group room it names. The sender never hears its own update; a
// listener in both rooms hears it once.
func (h *Handler) handleListUpdate(sess *session, update *domain.ListUpdateData, raw []byte) {
	var rooms []domain.Room
	if update.ListID != "" {
		rooms = append(rooms, domain.NewListRoom(update.ListID))
	}
	if update.GroupID != "" {
		rooms = append(rooms, domain.NewGroupRoom(update.GroupID))
	}
	if len(rooms) == 0 {
		h.log.Warn("listUpdate names no room", "connection_id", sess.conn.ID())
		return
	}

	h.broadcaster.BroadcastRooms(rooms, domain.EventListUpdate, raw, sess.conn.ID())
}

// startPings keeps the peer's pong handler busy. A peer that stops
// answering blows the read deadline and is torn down like any other
// disconnect.
func (h *Handler) startPings(conn *Connection, wsConn *websocket.Conn) func() {
	ticker := time.NewTicker(h.cfg.PingInterval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(h.cfg.WriteTimeout)
				if err := wsConn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					if !errors.Is(err, websocket.ErrCloseSent) {
						h.log.Debug("Ping failed", "connection_id", conn.ID(), "error", err)
					}
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}
