package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/rcboard/internal/protocol"
)

func TestRender_Embedded(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("client.bad_move", map[string]string{"Code": "e2e5", "Reason": "illegal"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Cannot play e2e5: illegal" {
		t.Fatalf("unexpected text: %q", got)
	}
	if _, err := c.Render("client.bad_move", map[string]string{"Code": "x"}); err == nil {
		t.Fatalf("expected missing data key error")
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
	if c.MustText("no.such.key", nil) != "no.such.key" {
		t.Fatalf("MustText should fall back to the key")
	}
}

func TestOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("error:\n  illegal_move: \"Nope.\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Describe(protocol.ServerMessage{Type: protocol.ServerErr, What: protocol.ErrIllegalMove}); got != "Nope." {
		t.Fatalf("override not applied: %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("error:\n  illegal_move: \"again\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate override key") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestOverrides_RejectNonString(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("move: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected error for non-string leaf")
	}
}

func TestDescribe(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		msg  protocol.ServerMessage
		want string
	}{
		{protocol.ServerMessage{Type: protocol.ServerMove, From: "e2", To: "e4", Side: "white"}, "white played e2e4"},
		{protocol.ServerMessage{Type: protocol.ServerCreate, RoomID: "r1"}, "Room created: r1"},
		{protocol.ServerMessage{Type: protocol.ServerStart, Color: protocol.Black}, "Game started. You play black."},
		{protocol.ServerMessage{Type: protocol.ServerReconnect, Color: protocol.White, Turn: protocol.Black}, "Reconnected as white, black to move."},
		{protocol.ServerMessage{Type: protocol.ServerList}, "No open rooms."},
		{protocol.ServerMessage{Type: protocol.ServerList, Rooms: []string{"a", "b"}}, "Open rooms: a, b"},
		{protocol.ServerMessage{Type: protocol.ServerErr, What: "teapot"}, "Server error: teapot"},
	}
	for _, tc := range cases {
		if got := c.Describe(tc.msg); got != tc.want {
			t.Fatalf("Describe(%s): want %q, got %q", tc.msg.Type, tc.want, got)
		}
	}
}
