// Package sampler works out which part of the source image textures a piece.
//
// A piece's base rectangle maps proportionally onto the source image. Tab
// sides need extra pixels beyond that rectangle, so the source region grows
// outward on every Out side; blank and border sides never grow since the
// outline clip only cuts into pixels that are already there. The grown region
// is then clamped to the image, and whatever is clamped away is also taken off
// the destination rectangle (converted back to puzzle units) so that source
// and destination keep the same scale and stay aligned under the clip.
package sampler

import (
	"image"
	"math"

	"github.com/irfansharif/jigsaw/internal/geom"
	"github.com/irfansharif/jigsaw/internal/topology"
)

// Request describes one piece.
type Request struct {
	Cell           geom.Box // base rectangle, relative to the puzzle's top-left corner
	PuzzleW        float64
	PuzzleH        float64
	ImageW, ImageH int
	Sides          [4]topology.Polarity // indexed by topology.Side
	Expand         [4]float64           // growth per side in puzzle units, used on Out sides
}

// Region pairs a source rectangle (image pixels) with the destination
// rectangle it is drawn into (piece-local puzzle units, base rectangle at the
// origin).
type Region struct {
	Src geom.Box
	Dst geom.Box
}

// Sample computes the region for a piece.
func Sample(req Request) Region {
	imgW, imgH := float64(req.ImageW), float64(req.ImageH)
	sx, sy := imgW/req.PuzzleW, imgH/req.PuzzleH

	src := geom.MakeBox(req.Cell.X*sx, req.Cell.Y*sy, req.Cell.W*sx, req.Cell.H*sy)
	dst := geom.MakeBox(0, 0, req.Cell.W, req.Cell.H)

	for _, side := range topology.Sides {
		if req.Sides[side] != topology.Out {
			continue
		}
		e := req.Expand[side]
		switch side {
		case topology.Top:
			src.Y -= e * sy
			src.H += e * sy
			dst.Y -= e
			dst.H += e
		case topology.Right:
			src.W += e * sx
			dst.W += e
		case topology.Bottom:
			src.H += e * sy
			dst.H += e
		case topology.Left:
			src.X -= e * sx
			src.W += e * sx
			dst.X -= e
			dst.W += e
		}
	}

	// Clamp to the image. Every pixel removed from the source takes its share
	// of destination with it.
	if src.X < 0 {
		c := -src.X
		src.X, src.W = 0, src.W-c
		dst.X, dst.W = dst.X+c/sx, dst.W-c/sx
	}
	if src.Y < 0 {
		c := -src.Y
		src.Y, src.H = 0, src.H-c
		dst.Y, dst.H = dst.Y+c/sy, dst.H-c/sy
	}
	if over := src.X + src.W - imgW; over > 0 {
		src.W -= over
		dst.W -= over / sx
	}
	if over := src.Y + src.H - imgH; over > 0 {
		src.H -= over
		dst.H -= over / sy
	}
	return Region{Src: src, Dst: dst}
}

// Valid reports whether the region samples a non-empty part of the image.
func (r Region) Valid() bool {
	return r.Src.W > 0 && r.Src.H > 0 && r.Dst.W > 0 && r.Dst.H > 0
}

// Snapped rounds the source region outward to whole pixels and grows the
// destination by the same amounts, so drawing the integer rectangle into the
// returned box keeps every pixel where Sample put it.
func (r Region) Snapped() (image.Rectangle, geom.Box) {
	rect := image.Rect(
		int(math.Floor(r.Src.X)),
		int(math.Floor(r.Src.Y)),
		int(math.Ceil(r.Src.X+r.Src.W)),
		int(math.Ceil(r.Src.Y+r.Src.H)),
	)
	sx, sy := r.Dst.W/r.Src.W, r.Dst.H/r.Src.H
	dst := geom.MakeBox(
		r.Dst.X-(r.Src.X-float64(rect.Min.X))*sx,
		r.Dst.Y-(r.Src.Y-float64(rect.Min.Y))*sy,
		float64(rect.Dx())*sx,
		float64(rect.Dy())*sy,
	)
	return rect, dst
}
