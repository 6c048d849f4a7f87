// Package board keeps a local copy of the game so the widget can validate
// moves and highlight legal destinations before the server answers.
package board

import (
	"fmt"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/rcboard/internal/dests"
	"github.com/park285/rcboard/internal/movecodec"
	"github.com/park285/rcboard/pkg/boarddto"
)

// MoveEvent is what the widget emits after a piece is dropped.
type MoveEvent struct {
	Origin      boarddto.Square
	Destination boarddto.Square
	Metadata    boarddto.MoveMetadata
	Board       *Board
}

// Move returns the event as a structured move.
func (e MoveEvent) Move() boarddto.Move {
	return boarddto.Move{Origin: e.Origin, Destination: e.Destination}
}

type Board struct {
	mu   sync.RWMutex
	game *nchess.Game
}

func New() *Board {
	return &Board{game: nchess.NewGame()}
}

// FromFEN starts from an arbitrary position; "startpos" and "" mean the
// initial position.
func FromFEN(fen string) (*Board, error) {
	game, err := gameFromFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Board{game: game}, nil
}

func gameFromFEN(fen string) (*nchess.Game, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" || fen == "startpos" {
		return nchess.NewGame(), nil
	}
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return nchess.NewGame(option), nil
}

// Play applies m if it is legal and reports the resulting event. A pawn
// reaching the last rank without a promotion letter promotes to a queen.
func (b *Board) Play(m boarddto.Move) (MoveEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos := b.game.Position()
	if m.Promotion == "" && needsPromotion(pos, m) {
		m.Promotion = "q"
	}
	mv, err := movecodec.ToChessMove(pos, m)
	if err != nil {
		return MoveEvent{}, err
	}
	meta := boarddto.MoveMetadata{}
	if captured := capturedPiece(pos, mv); captured != nil {
		meta.Captured = captured
	}
	if err := b.game.Move(mv, nil); err != nil {
		return MoveEvent{}, movecodec.ErrIllegalMove.WithMessage(err.Error())
	}
	return MoveEvent{Origin: m.Origin, Destination: m.Destination, Metadata: meta, Board: b}, nil
}

// PlayUCI decodes code and plays it.
func (b *Board) PlayUCI(code string) (MoveEvent, error) {
	m, err := movecodec.Decode(strings.TrimSpace(code))
	if err != nil {
		return MoveEvent{}, err
	}
	return b.Play(m)
}

// Sync replaces the local position with the server's.
func (b *Board) Sync(fen string) error {
	game, err := gameFromFEN(fen)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.game = game
	b.mu.Unlock()
	return nil
}

// Dests lists legal destinations per origin for the side to move.
func (b *Board) Dests() (map[boarddto.Square][]boarddto.Square, error) {
	b.mu.RLock()
	raw := dests.FromPosition(b.game.Position())
	b.mu.RUnlock()
	return dests.Build(raw)
}

func (b *Board) FEN() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.game.FEN()
}

// Turn returns "white" or "black".
func (b *Board) Turn() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.game.Position().Turn() == nchess.White {
		return "white"
	}
	return "black"
}

// LastMove returns the last move played locally since the last Sync.
func (b *Board) LastMove() (boarddto.Move, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	moves := b.game.Moves()
	if len(moves) == 0 {
		return boarddto.Move{}, false
	}
	return movecodec.FromChessMove(moves[len(moves)-1]), true
}

// Outcome is "*" while the game is running, else "1-0", "0-1" or "1/2-1/2".
func (b *Board) Outcome() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.game.Outcome())
}

// Position exposes the current position for rendering.
func (b *Board) Position() *nchess.Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.game.Position()
}

func needsPromotion(pos *nchess.Position, m boarddto.Move) bool {
	sq, ok := parseSquare(string(m.Origin))
	if !ok {
		return false
	}
	piece := pos.Board().Piece(sq)
	if piece.Type() != nchess.Pawn {
		return false
	}
	dest := string(m.Destination)
	if len(dest) != 2 {
		return false
	}
	return (piece.Color() == nchess.White && dest[1] == '8') || (piece.Color() == nchess.Black && dest[1] == '1')
}

func capturedPiece(pos *nchess.Position, mv *nchess.Move) *boarddto.Piece {
	target := pos.Board().Piece(mv.S2())
	if target == nchess.NoPiece {
		if mv.HasTag(nchess.EnPassant) {
			return &boarddto.Piece{Role: "pawn", Color: colorName(pos.Turn().Other())}
		}
		return nil
	}
	return &boarddto.Piece{Role: roleName(target.Type()), Color: colorName(target.Color())}
}

func parseSquare(s string) (nchess.Square, bool) {
	if len(s) != 2 {
		return nchess.NoSquare, false
	}
	f, r := s[0], s[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return nchess.NoSquare, false
	}
	return nchess.NewSquare(nchess.File(f-'a'), nchess.Rank(r-'1')), true
}

func colorName(c nchess.Color) string {
	if c == nchess.White {
		return "white"
	}
	return "black"
}

func roleName(pt nchess.PieceType) string {
	switch pt {
	case nchess.King:
		return "king"
	case nchess.Queen:
		return "queen"
	case nchess.Rook:
		return "rook"
	case nchess.Bishop:
		return "bishop"
	case nchess.Knight:
		return "knight"
	default:
		return "pawn"
	}
}
