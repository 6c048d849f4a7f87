// Package protocol holds the JSON envelopes exchanged with the game server.
// Every envelope carries a snake_case "type" tag.
package protocol

import (
	"github.com/park285/rcboard/pkg/boarddto"
)

type ClientType string

const (
	ClientMove   ClientType = "move"
	ClientCreate ClientType = "create"
	ClientList   ClientType = "list"
)

type ServerType string

const (
	ServerMove      ServerType = "move"
	ServerErr       ServerType = "err"
	ServerCreate    ServerType = "create"
	ServerStart     ServerType = "start"
	ServerReconnect ServerType = "reconnect"
	ServerList      ServerType = "list"
)

// ServerError is the code carried by an "err" envelope.
type ServerError string

const (
	ErrInternal     ServerError = "internal_error"
	ErrInvalidInput ServerError = "invalid_input"
	ErrIllegalMove  ServerError = "illegal_move"
	ErrOutOfContext ServerError = "out_of_context"
)

// Color is a player side; "all" addresses both players.
type Color string

const (
	White Color = "white"
	Black Color = "black"
	All   Color = "all"
)

type ClientMessage struct {
	Type      ClientType `json:"type"`
	From      string     `json:"from,omitempty"`
	To        string     `json:"to,omitempty"`
	Promotion string     `json:"promotion,omitempty"`
	FEN       string     `json:"fen,omitempty"`
	Items     int        `json:"items,omitempty"`
}

type ServerMessage struct {
	Type   ServerType  `json:"type"`
	From   string      `json:"from,omitempty"`
	To     string      `json:"to,omitempty"`
	Side   string      `json:"side,omitempty"`
	FEN    string      `json:"fen,omitempty"`
	What   ServerError `json:"what,omitempty"`
	RoomID string      `json:"room_id,omitempty"`
	Color  Color       `json:"color,omitempty"`
	Turn   Color       `json:"turn,omitempty"`
	Rooms  []string    `json:"rooms,omitempty"`
}

// MoveMessage announces a move played on the local board. fen is the
// position after the move.
func MoveMessage(m boarddto.Move, fen string) ClientMessage {
	return ClientMessage{
		Type:      ClientMove,
		From:      string(m.Origin),
		To:        string(m.Destination),
		Promotion: m.Promotion,
		FEN:       fen,
	}
}

func CreateMessage() ClientMessage { return ClientMessage{Type: ClientCreate} }

// ListMessage asks for up to items open rooms. The server's list variant
// has no named field; "items" is this client's own name for the count.
func ListMessage(items int) ClientMessage { return ClientMessage{Type: ClientList, Items: items} }

// Move returns the move carried by a "move" envelope.
func (m ServerMessage) Move() boarddto.Move {
	return boarddto.Move{Origin: boarddto.Square(m.From), Destination: boarddto.Square(m.To)}
}
