package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/park285/rcboard/pkg/boarddto"
)

func TestEncodeClient_Move(t *testing.T) {
	raw, err := EncodeClient(MoveMessage(boarddto.Move{Origin: "e2", Destination: "e4"}, "fen"))
	if err != nil {
		t.Fatalf("EncodeClient: %v", err)
	}
	want := `{"type":"move","from":"e2","to":"e4","fen":"fen"}`
	if raw != want {
		t.Fatalf("unexpected frame: %s", raw)
	}
}

func TestEncodeClient_CreateAndList(t *testing.T) {
	raw, err := EncodeClient(CreateMessage())
	if err != nil || raw != `{"type":"create"}` {
		t.Fatalf("create frame: %s %v", raw, err)
	}
	raw, err = EncodeClient(ListMessage(12))
	if err != nil || !strings.Contains(raw, `"items":12`) {
		t.Fatalf("list frame: %s %v", raw, err)
	}
	if _, err := EncodeClient(ClientMessage{Type: "dance"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestDecodeServer(t *testing.T) {
	m, err := DecodeServer(`{"type":"move","from":"e7","to":"e5","side":"black","fen":"x"}`)
	if err != nil {
		t.Fatalf("DecodeServer: %v", err)
	}
	if mv := m.Move(); mv.Origin != "e7" || mv.Destination != "e5" || m.Side != "black" {
		t.Fatalf("unexpected move envelope: %+v", m)
	}

	m, err = DecodeServer(`{"type":"err","what":"illegal_move"}`)
	if err != nil || m.What != ErrIllegalMove {
		t.Fatalf("err envelope: %+v %v", m, err)
	}

	m, err = DecodeServer(`{"type":"reconnect","color":"white","turn":"black","fen":"f"}`)
	if err != nil || m.Color != White || m.Turn != Black {
		t.Fatalf("reconnect envelope: %+v %v", m, err)
	}

	m, err = DecodeServer(`{"type":"list","rooms":["a","b"]}`)
	if err != nil || len(m.Rooms) != 2 {
		t.Fatalf("list envelope: %+v %v", m, err)
	}
}

func TestDecodeServer_Errors(t *testing.T) {
	if _, err := DecodeServer(""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := DecodeServer(`{"type":"teleport"}`); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := DecodeServer(`not json`); err == nil {
		t.Fatalf("expected decode error")
	}
}
