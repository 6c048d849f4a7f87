package boardview

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/rcboard/pkg/boarddto"
)

func TestRenderPNG_SizeAndFlip(t *testing.T) {
	r := NewRenderer()
	pos := nchess.NewGame().Position()
	ctx := context.Background()

	front, err := r.RenderPNG(ctx, pos, Options{SquareSize: 48})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(front))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if want := 48*8 + 2*(48/3); img.Bounds().Dx() != want || img.Bounds().Dy() != want {
		t.Fatalf("unexpected size %v, want %d", img.Bounds(), want)
	}

	back, err := r.RenderPNG(ctx, pos, Options{SquareSize: 48, Flip: true})
	if err != nil {
		t.Fatalf("RenderPNG flipped: %v", err)
	}
	if bytes.Equal(front, back) {
		t.Fatalf("expected different images for flipped orientation")
	}
}

func TestRenderPNG_DestsChangeImage(t *testing.T) {
	r := NewRenderer()
	pos := nchess.NewGame().Position()
	ctx := context.Background()

	plain, err := r.RenderPNG(ctx, pos, Options{})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	marked, err := r.RenderPNG(ctx, pos, Options{
		Selected: "e2",
		Dests:    map[boarddto.Square][]boarddto.Square{"e2": {"e3", "e4"}},
		LastMove: &boarddto.Move{Origin: "d7", Destination: "d5"},
	})
	if err != nil {
		t.Fatalf("RenderPNG marked: %v", err)
	}
	if bytes.Equal(plain, marked) {
		t.Fatalf("expected highlights to change the image")
	}
}

func TestRenderPNG_Errors(t *testing.T) {
	r := NewRenderer()
	if _, err := r.RenderPNG(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected error for nil position")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, nchess.NewGame().Position(), Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}
