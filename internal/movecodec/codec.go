// Package movecodec converts between UCI move codes and the board widget's
// structured move.
package movecodec

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/rcboard/pkg/boarddto"
)

// ErrInvalidFormat reports a move or destination string of the wrong length.
var ErrInvalidFormat = boarddto.DomainError{Code: "invalid_format", Message: "invalid move format"}

// ErrIllegalMove reports a well-formed move that the position does not allow.
var ErrIllegalMove = boarddto.DomainError{Code: "illegal_move", Message: "illegal move"}

// Decode splits a 4 or 5 character UCI code into origin, destination and
// optional promotion. Squares are not checked for legality.
func Decode(code string) (boarddto.Move, error) {
	if n := len(code); n != 4 && n != 5 {
		return boarddto.Move{}, ErrInvalidFormat.WithMessage(fmt.Sprintf("move %q: want 4 or 5 characters, got %d", code, n))
	}
	mv := boarddto.Move{
		Origin:      boarddto.Square(code[0:2]),
		Destination: boarddto.Square(code[2:4]),
	}
	if len(code) == 5 {
		mv.Promotion = code[4:5]
	}
	return mv, nil
}

// Encode is the inverse of Decode.
func Encode(m boarddto.Move) string {
	return string(m.Origin) + string(m.Destination) + m.Promotion
}

// PromotionPiece maps the promotion letter to a piece type.
func PromotionPiece(m boarddto.Move) (nchess.PieceType, bool) {
	switch strings.ToLower(m.Promotion) {
	case "q":
		return nchess.Queen, true
	case "r":
		return nchess.Rook, true
	case "b":
		return nchess.Bishop, true
	case "n":
		return nchess.Knight, true
	default:
		return nchess.NoPieceType, false
	}
}

// ToChessMove resolves m to one of the legal moves of pos.
func ToChessMove(pos *nchess.Position, m boarddto.Move) (*nchess.Move, error) {
	if pos == nil {
		return nil, fmt.Errorf("position is nil")
	}
	code := strings.ToLower(Encode(m))
	if _, err := Decode(code); err != nil {
		return nil, err
	}
	uci := nchess.UCINotation{}
	moves := pos.ValidMoves()
	for i := range moves {
		if uci.Encode(pos, &moves[i]) == code {
			return &moves[i], nil
		}
	}
	return nil, ErrIllegalMove.WithMessage(fmt.Sprintf("illegal move %s", code))
}

// FromChessMove converts a library move back into the widget form.
func FromChessMove(mv *nchess.Move) boarddto.Move {
	if mv == nil {
		return boarddto.Move{}
	}
	out := boarddto.Move{
		Origin:      boarddto.Square(mv.S1().String()),
		Destination: boarddto.Square(mv.S2().String()),
	}
	switch mv.Promo() {
	case nchess.Queen:
		out.Promotion = "q"
	case nchess.Rook:
		out.Promotion = "r"
	case nchess.Bishop:
		out.Promotion = "b"
	case nchess.Knight:
		out.Promotion = "n"
	}
	return out
}
