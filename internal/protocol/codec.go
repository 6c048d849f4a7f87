package protocol

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/park285/rcboard/pkg/boarddto"
)

var (
	ErrUnknownType = boarddto.DomainError{Code: "unknown_type", Message: "unknown message type"}
	ErrEmpty       = boarddto.DomainError{Code: "empty_message", Message: "empty message"}
)

// EncodeClient renders m as the text frame the server expects.
func EncodeClient(m ClientMessage) (string, error) {
	switch m.Type {
	case ClientMove, ClientCreate, ClientList:
	default:
		return "", ErrUnknownType.WithMessage(fmt.Sprintf("unknown client message type %q", m.Type))
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal client message: %w", err)
	}
	return string(raw), nil
}

// DecodeServer parses a text frame received from the server.
func DecodeServer(raw string) (ServerMessage, error) {
	if strings.TrimSpace(raw) == "" {
		return ServerMessage{}, ErrEmpty
	}
	var m ServerMessage
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return ServerMessage{}, fmt.Errorf("decode server message: %w", err)
	}
	switch m.Type {
	case ServerMove, ServerErr, ServerCreate, ServerStart, ServerReconnect, ServerList:
		return m, nil
	default:
		return ServerMessage{}, ErrUnknownType.WithMessage(fmt.Sprintf("unknown server message type %q", m.Type))
	}
}
