package dests

import (
	"errors"
	"reflect"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/rcboard/internal/movecodec"
	"github.com/park285/rcboard/pkg/boarddto"
)

func TestBuild_SplitsInOrder(t *testing.T) {
	got, err := Build(map[string]string{"e2": "e3e4", "g1": "f3h3"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[boarddto.Square][]boarddto.Square{
		"e2": {"e3", "e4"},
		"g1": {"f3", "h3"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected dests: %v", got)
	}
}

func TestBuild_Malformed(t *testing.T) {
	for _, v := range []string{"", "e3e", "e"} {
		_, err := Build(map[string]string{"e2": v})
		if !errors.Is(err, ErrMalformedDestinationString) {
			t.Fatalf("Build(%q): expected ErrMalformedDestinationString, got %v", v, err)
		}
		if !errors.Is(err, movecodec.ErrInvalidFormat) {
			t.Fatalf("Build(%q): expected error in invalid format family", v)
		}
	}
}

func TestSerialize_InverseOfBuild(t *testing.T) {
	raw := map[string]string{"b1": "a3c3", "e2": "e3e4"}
	built, err := Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := Serialize(built); !reflect.DeepEqual(got, raw) {
		t.Fatalf("Serialize(Build(raw)) = %v", got)
	}
}

func TestFromPosition_StartPosition(t *testing.T) {
	raw := FromPosition(nchess.NewGame().Position())
	if len(raw) != 10 {
		t.Fatalf("expected 10 origins, got %d (%v)", len(raw), raw)
	}
	built, err := Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	total := 0
	for _, list := range built {
		total += len(list)
	}
	if total != 20 {
		t.Fatalf("expected 20 destinations, got %d", total)
	}
	if !containsSquare(raw["g1"], "f3") || !containsSquare(raw["g1"], "h3") {
		t.Fatalf("knight destinations missing: %q", raw["g1"])
	}
}

func TestFromPosition_PromotionsCollapsed(t *testing.T) {
	opt, err := nchess.FEN("8/P7/8/8/8/8/8/k6K w - - 0 1")
	if err != nil {
		t.Fatalf("FEN: %v", err)
	}
	raw := FromPosition(nchess.NewGame(opt).Position())
	if raw["a7"] != "a8" {
		t.Fatalf("expected single a8 entry for promotions, got %q", raw["a7"])
	}
}
