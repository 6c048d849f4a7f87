package boarddto

// Square names a board location such as "e4". The board widget owns validity.
type Square string

func (s Square) String() string { return string(s) }

// Move is the widget's structured move. Promotion is empty unless the move
// came from a five character UCI code.
type Move struct {
	Origin      Square
	Destination Square
	Promotion   string
}

// Piece identifies a captured piece in move metadata.
type Piece struct {
	Role  string
	Color string
}

// MoveMetadata mirrors what the board widget reports alongside a move.
type MoveMetadata struct {
	Premove  bool
	CtrlKey  bool
	Captured *Piece
}
