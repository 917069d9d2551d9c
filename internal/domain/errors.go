package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateConnection means a registration collided with a live
	// connection id. Should not happen with generated ids; fatal only to
	// that registration attempt.
	ErrDuplicateConnection = errors.New("connection id already registered")

	// ErrUnknownConnection means an operation referenced a connection
	// that is not currently registered. Logged and ignored by callers.
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrUnknownEvent means a client sent an event name outside the
	// protocol. Never fatal to the connection.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrMissingRoomID means a join event arrived without its room id.
	ErrMissingRoomID = errors.New("missing room id")
)

// UpstreamError is a typed failure from an external provider (geocoding
// or price lookup). It is surfaced to the REST caller, never swallowed.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstreamError reports whether err is (or wraps) an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
