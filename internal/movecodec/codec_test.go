package movecodec

import (
	"errors"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/rcboard/pkg/boarddto"
)

func TestDecode_Basic(t *testing.T) {
	mv, err := Decode("e2e4")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := boarddto.Move{Origin: "e2", Destination: "e4"}
	if mv != want {
		t.Fatalf("unexpected move: %+v", mv)
	}

	mv, err = Decode("e7e8q")
	if err != nil {
		t.Fatalf("Decode promotion: %v", err)
	}
	if mv.Origin != "e7" || mv.Destination != "e8" || mv.Promotion != "q" {
		t.Fatalf("unexpected promotion move: %+v", mv)
	}
}

func TestDecode_InvalidLength(t *testing.T) {
	for _, code := range []string{"", "e2", "e2e", "e7e8qq", "e2-e4"[:3]} {
		if _, err := Decode(code); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("Decode(%q): expected ErrInvalidFormat, got %v", code, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	codes := []string{"e2e4", "g1f3", "a7a8q", "h2h1n", "b7c8r", "zzzz"}
	for _, code := range codes {
		mv, err := Decode(code)
		if err != nil {
			t.Fatalf("Decode(%q): %v", code, err)
		}
		if got := Encode(mv); got != code {
			t.Fatalf("Encode(Decode(%q)) = %q", code, got)
		}
	}

	moves := []boarddto.Move{
		{Origin: "d2", Destination: "d4"},
		{Origin: "c7", Destination: "c8", Promotion: "b"},
	}
	for _, m := range moves {
		got, err := Decode(Encode(m))
		if err != nil || got != m {
			t.Fatalf("Decode(Encode(%+v)) = %+v, %v", m, got, err)
		}
	}
}

func TestPromotionPiece(t *testing.T) {
	if pt, ok := PromotionPiece(boarddto.Move{Promotion: "q"}); !ok || pt != nchess.Queen {
		t.Fatalf("expected queen, got %v %v", pt, ok)
	}
	if _, ok := PromotionPiece(boarddto.Move{}); ok {
		t.Fatalf("expected no promotion piece for empty promotion")
	}
}

func TestToChessMove_LegalAndIllegal(t *testing.T) {
	game := nchess.NewGame()
	pos := game.Position()

	mv, err := ToChessMove(pos, boarddto.Move{Origin: "e2", Destination: "e4"})
	if err != nil {
		t.Fatalf("ToChessMove legal: %v", err)
	}
	if mv.S1() != nchess.E2 || mv.S2() != nchess.E4 {
		t.Fatalf("unexpected squares: %s %s", mv.S1(), mv.S2())
	}
	if back := FromChessMove(mv); back != (boarddto.Move{Origin: "e2", Destination: "e4"}) {
		t.Fatalf("FromChessMove mismatch: %+v", back)
	}

	if _, err := ToChessMove(pos, boarddto.Move{Origin: "e2", Destination: "e5"}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if _, err := ToChessMove(pos, boarddto.Move{Origin: "e2"}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}
