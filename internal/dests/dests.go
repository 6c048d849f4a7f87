// Package dests converts per-square legal destination lists between the
// serialized server form ("e2" -> "e3e4") and the board widget form.
package dests

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/rcboard/internal/movecodec"
	"github.com/park285/rcboard/pkg/boarddto"
)

// ErrMalformedDestinationString is matched by errors.Is against
// movecodec.ErrInvalidFormat as well.
var ErrMalformedDestinationString = movecodec.ErrInvalidFormat.Narrow("malformed_destination_string", "malformed destination string")

// Build splits every value of raw into consecutive two character squares.
func Build(raw map[string]string) (map[boarddto.Square][]boarddto.Square, error) {
	out := make(map[boarddto.Square][]boarddto.Square, len(raw))
	for orig, packed := range raw {
		if len(packed) == 0 || len(packed)%2 != 0 {
			return nil, fmt.Errorf("dests for %q: %w", orig, ErrMalformedDestinationString)
		}
		list := make([]boarddto.Square, 0, len(packed)/2)
		for i := 0; i < len(packed); i += 2 {
			list = append(list, boarddto.Square(packed[i:i+2]))
		}
		out[boarddto.Square(orig)] = list
	}
	return out, nil
}

// Serialize is the inverse of Build.
func Serialize(d map[boarddto.Square][]boarddto.Square) map[string]string {
	out := make(map[string]string, len(d))
	for orig, list := range d {
		if len(list) == 0 {
			continue
		}
		var b strings.Builder
		for _, sq := range list {
			b.WriteString(string(sq))
		}
		out[string(orig)] = b.String()
	}
	return out
}

// FromPosition lists the legal destinations of pos in the serialized form.
// Promotions to different pieces share one destination entry.
func FromPosition(pos *nchess.Position) map[string]string {
	out := map[string]string{}
	if pos == nil {
		return out
	}
	moves := pos.ValidMoves()
	for i := range moves {
		from := moves[i].S1().String()
		to := moves[i].S2().String()
		cur := out[from]
		if containsSquare(cur, to) {
			continue
		}
		out[from] = cur + to
	}
	return out
}

func containsSquare(packed, sq string) bool {
	for i := 0; i+2 <= len(packed); i += 2 {
		if packed[i:i+2] == sq {
			return true
		}
	}
	return false
}
