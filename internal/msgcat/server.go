package msgcat

import (
	"github.com/park285/rcboard/internal/protocol"
)

// Describe renders a server envelope as one line of user-facing text.
func (c *Catalog) Describe(msg protocol.ServerMessage) string {
	switch msg.Type {
	case protocol.ServerMove:
		return c.MustText("move", msg)
	case protocol.ServerCreate:
		return c.MustText("create", msg)
	case protocol.ServerStart:
		return c.MustText("start."+string(msg.Color), msg)
	case protocol.ServerReconnect:
		return c.MustText("reconnect", msg)
	case protocol.ServerList:
		if len(msg.Rooms) == 0 {
			return c.MustText("list.empty", msg)
		}
		return c.MustText("list.rooms", msg)
	case protocol.ServerErr:
		key := "error." + string(msg.What)
		if c.Has(key) {
			return c.MustText(key, msg)
		}
		return c.MustText("error.unknown", msg)
	default:
		return string(msg.Type)
	}
}
