package socket

import (
	"context"

	"github.com/park285/rcboard/pkg/boarddto"
)

// State is the channel lifecycle as seen by callers.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnected    State = "connected"
)

// ReadyState is what the underlying transport reports, numbered like the
// browser WebSocket readyState.
type ReadyState int

const (
	ReadyConnecting ReadyState = iota
	ReadyOpen
	ReadyClosing
	ReadyClosed
)

func (r ReadyState) String() string {
	switch r {
	case ReadyConnecting:
		return "connecting"
	case ReadyOpen:
		return "open"
	case ReadyClosing:
		return "closing"
	default:
		return "closed"
	}
}

// writable reports whether a frame may still be handed to the transport.
func (r ReadyState) writable() bool { return r <= ReadyOpen }

// Listener receives the latest message value.
type Listener func(message string)

// StateCallback receives lifecycle transitions.
type StateCallback func(state State)

// Resolver turns an endpoint path into a full socket URL.
type Resolver interface {
	URL(path string) string
}

// HeaderProvider injects handshake headers.
type HeaderProvider func() map[string]string

// Client is the surface the rest of the app depends on.
type Client interface {
	Create(ctx context.Context, path string) error
	Send(ctx context.Context, message string) error
	Destroy(ctx context.Context) error
	Subscribe(fn Listener) int
	Unsubscribe(id int)
	LastMessage() string
	State() State
	ReadyState() ReadyState
}

var (
	ErrNotConnected     = boarddto.DomainError{Code: "not_connected", Message: "socket channel is not connected"}
	ErrAlreadyConnected = boarddto.DomainError{Code: "already_connected", Message: "socket channel is already connected"}
)
