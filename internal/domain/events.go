package domain

import (
	"encoding/json"
	"fmt"
)

// Inbound event names (client -> server).
const (
	EventJoinGroup  = "joinGroup"
	EventJoinList   = "joinList"
	EventListUpdate = "listUpdate"
)

// Outbound event names (server -> client).
const (
	EventJoinedGroup = "joinedGroup"
	EventJoinedList  = "joinedList"
)

// Envelope is the wire frame for every socket message in both
// directions: an event name plus an event-specific data object.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinGroupData struct {
	GroupID string `json:"groupId"`
}

type JoinListData struct {
	ListID string `json:"listId"`
}

// ListUpdateData carries the routing fields of a list mutation. The full
// payload is forwarded to listeners untouched; these fields are only
// decoded to pick the target rooms.
type ListUpdateData struct {
	ListID   string `json:"listId"`
	GroupID  string `json:"groupId,omitempty"`
	Action   string `json:"action,omitempty"`
	ItemName string `json:"itemName,omitempty"`
}

// ClientEvent is the closed set of messages a client may send. Exactly
// one field is non-nil after a successful parse.
type ClientEvent struct {
	JoinGroup  *JoinGroupData
	JoinList   *JoinListData
	ListUpdate *ListUpdateData

	// Raw is the undecoded data object, kept so listUpdate payloads can
	// be forwarded byte-for-byte.
	Raw json.RawMessage
}

// ParseClientEvent decodes a raw frame into one of the known variants.
// Unknown event names return ErrUnknownEvent; the caller logs and moves on.
func ParseClientEvent(frame []byte) (*ClientEvent, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	ev := &ClientEvent{Raw: env.Data}
	switch env.Event {
	case EventJoinGroup:
		var d JoinGroupData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed %s data: %w", env.Event, err)
		}
		if d.GroupID == "" {
			return nil, fmt.Errorf("%s: %w", env.Event, ErrMissingRoomID)
		}
		ev.JoinGroup = &d
	case EventJoinList:
		var d JoinListData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed %s data: %w", env.Event, err)
		}
		if d.ListID == "" {
			return nil, fmt.Errorf("%s: %w", env.Event, ErrMissingRoomID)
		}
		ev.JoinList = &d
	case EventListUpdate:
		var d ListUpdateData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed %s data: %w", env.Event, err)
		}
		ev.ListUpdate = &d
	default:
		return nil, fmt.Errorf("%q: %w", env.Event, ErrUnknownEvent)
	}

	return ev, nil
}
