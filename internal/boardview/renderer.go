// Package boardview rasterizes a position the way the board widget shows
// it: last move highlighted and legal destinations of a selected square
// dotted.
package boardview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/rcboard/pkg/boarddto"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type Options struct {
	// Flip draws the board from black's side.
	Flip bool
	// LastMove is tinted when set.
	LastMove *boarddto.Move
	// Selected marks an origin; its entries in Dests are dotted.
	Selected boarddto.Square
	Dests    map[boarddto.Square][]boarddto.Square
	// SquareSize in pixels, defaults to 64.
	SquareSize int
}

type Renderer interface {
	RenderPNG(ctx context.Context, pos *nchess.Position, opts Options) ([]byte, error)
}

type pngRenderer struct{}

func NewRenderer() Renderer { return &pngRenderer{} }

var (
	lightSquare     = color.RGBA{233, 207, 163, 255}
	darkSquare      = color.RGBA{187, 136, 96, 255}
	lastMoveFill    = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	selectedFill    = color.NRGBA{R: 120, G: 180, B: 120, A: 150}
	whiteGlyphColor = color.NRGBA{R: 34, G: 34, B: 34, A: 255}
	blackGlyphColor = color.NRGBA{R: 244, G: 241, B: 234, A: 255}
	coordinateColor = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	marginColor     = color.NRGBA{R: 250, G: 248, B: 242, A: 255}
)

func (r *pngRenderer) RenderPNG(ctx context.Context, pos *nchess.Position, opts Options) ([]byte, error) {
	if pos == nil {
		return nil, fmt.Errorf("position is nil")
	}
	size := opts.SquareSize
	if size <= 0 {
		size = 64
	}
	margin := size / 3
	boardSize := size * 8
	total := boardSize + margin*2
	g := geometry{size: size, origin: image.Point{X: margin, Y: margin}, flip: opts.Flip}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, total, total))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(marginColor), image.Point{}, imagedraw.Src)

	for sq := nchess.A1; sq <= nchess.H8; sq++ {
		imagedraw.Draw(img, g.rect(sq), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
	}
	if opts.LastMove != nil {
		overlay(img, g, opts.LastMove.Origin, lastMoveFill)
		overlay(img, g, opts.LastMove.Destination, lastMoveFill)
	}
	if opts.Selected != "" {
		overlay(img, g, opts.Selected, selectedFill)
	}

	if err := drawPieces(img, pos.Board(), g); err != nil {
		return nil, err
	}
	if opts.Selected != "" {
		if err := drawDests(img, g, opts.Dests[opts.Selected]); err != nil {
			return nil, err
		}
	}
	drawCoordinates(img, g)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type geometry struct {
	size   int
	origin image.Point
	flip   bool
}

func (g geometry) rect(sq nchess.Square) image.Rectangle {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	if g.flip {
		col, row = 7-col, 7-row
	}
	x := g.origin.X + col*g.size
	y := g.origin.Y + row*g.size
	return image.Rect(x, y, x+g.size, y+g.size)
}

func overlay(img *image.RGBA, g geometry, s boarddto.Square, clr color.Color) {
	sq, ok := parseSquare(s)
	if !ok {
		return
	}
	imagedraw.Draw(img, g.rect(sq), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawPieces(img *image.RGBA, board *nchess.Board, g geometry) error {
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		disc, err := pieceDisc(piece, g.size)
		if err != nil {
			return err
		}
		rect := g.rect(sq)
		imagedraw.Draw(img, rect, disc, image.Point{}, imagedraw.Over)

		drawer.Src = image.NewUniform(whiteGlyphColor)
		if piece.Color() == nchess.Black {
			drawer.Src = image.NewUniform(blackGlyphColor)
		}
		centerText(drawer, pieceLetter(piece), rect)
	}
	return nil
}

func drawDests(img *image.RGBA, g geometry, list []boarddto.Square) error {
	if len(list) == 0 {
		return nil
	}
	dot, err := destDot(g.size)
	if err != nil {
		return err
	}
	for _, s := range list {
		sq, ok := parseSquare(s)
		if !ok {
			continue
		}
		imagedraw.Draw(img, g.rect(sq), dot, image.Point{}, imagedraw.Over)
	}
	return nil
}

func drawCoordinates(img *image.RGBA, g geometry) {
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13, Src: image.NewUniform(coordinateColor)}
	for i := 0; i < 8; i++ {
		fileSq := nchess.NewSquare(nchess.File(i), nchess.Rank1)
		r := g.rect(fileSq)
		below := image.Rect(r.Min.X, g.origin.Y+8*g.size, r.Max.X, g.origin.Y+8*g.size+g.origin.Y)
		centerText(drawer, nchess.File(i).String(), below)

		rankSq := nchess.NewSquare(nchess.FileA, nchess.Rank(i))
		r = g.rect(rankSq)
		left := image.Rect(0, r.Min.Y, g.origin.X, r.Max.Y)
		centerText(drawer, nchess.Rank(i).String(), left)
	}
}

func centerText(drawer *font.Drawer, text string, rect image.Rectangle) {
	width := drawer.MeasureString(text).Ceil()
	ascent := drawer.Face.Metrics().Ascent.Ceil()
	x := rect.Min.X + (rect.Dx()-width)/2
	y := rect.Min.Y + (rect.Dy()+ascent)/2
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)
}

func squareColor(sq nchess.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func parseSquare(s boarddto.Square) (nchess.Square, bool) {
	if len(s) != 2 {
		return nchess.NoSquare, false
	}
	f, r := s[0], s[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return nchess.NoSquare, false
	}
	return nchess.NewSquare(nchess.File(f-'a'), nchess.Rank(r-'1')), true
}
