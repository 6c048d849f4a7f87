package boardview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// discSpec describes a filled circle rasterized from SVG.
type discSpec struct {
	size   int
	radius int // percent of the viewbox
	fill   string
	stroke string
}

var (
	discCache   = map[discSpec]image.Image{}
	discCacheMu sync.RWMutex
)

func discSVG(s discSpec) string {
	stroke := ""
	if s.stroke != "" {
		stroke = fmt.Sprintf(` stroke="%s" stroke-width="5"`, s.stroke)
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><circle cx="50" cy="50" r="%d" fill="%s"%s/></svg>`,
		s.radius, s.fill, stroke)
}

func renderDisc(s discSpec) (image.Image, error) {
	discCacheMu.RLock()
	if img, ok := discCache[s]; ok {
		discCacheMu.RUnlock()
		return img, nil
	}
	discCacheMu.RUnlock()

	icon, err := oksvg.ReadIconStream(strings.NewReader(discSVG(s)))
	if err != nil {
		return nil, fmt.Errorf("parse disc svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(s.size), float64(s.size))

	img := image.NewRGBA(image.Rect(0, 0, s.size, s.size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(s.size, s.size, img, img.Bounds())
	raster := rasterx.NewDasher(s.size, s.size, scanner)
	icon.Draw(raster, 1.0)

	discCacheMu.Lock()
	discCache[s] = img
	discCacheMu.Unlock()
	return img, nil
}

func pieceDisc(piece nchess.Piece, size int) (image.Image, error) {
	if piece.Color() == nchess.White {
		return renderDisc(discSpec{size: size, radius: 38, fill: "#f4f1ea", stroke: "#222222"})
	}
	return renderDisc(discSpec{size: size, radius: 38, fill: "#2b2b2b", stroke: "#f4f1ea"})
}

func destDot(size int) (image.Image, error) {
	return renderDisc(discSpec{size: size, radius: 14, fill: "#3c7a3c"})
}

func pieceLetter(piece nchess.Piece) string {
	switch piece.Type() {
	case nchess.King:
		return "K"
	case nchess.Queen:
		return "Q"
	case nchess.Rook:
		return "R"
	case nchess.Bishop:
		return "B"
	case nchess.Knight:
		return "N"
	default:
		return "P"
	}
}
