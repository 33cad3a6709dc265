// Package piece holds the per-cell puzzle entity: its fixed geometry and the
// position and placement state the board mutates during play.
package piece

import (
	"fmt"
	"math"

	"github.com/irfansharif/jigsaw/internal/geom"
	"github.com/irfansharif/jigsaw/internal/outline"
	"github.com/irfansharif/jigsaw/internal/sampler"
	"github.com/irfansharif/jigsaw/internal/topology"
)

// SnapThreshold is the per-axis distance (puzzle units) within which a piece
// counts as near its target.
const SnapThreshold = 25.0

// padMargin is added to the outline's true extent when sizing the sprite
// buffer, so antialiased border strokes are not clipped.
const padMargin = 2.0

// Piece is one grid cell. Row, Col, Target, Sides, Outline and Region are
// fixed once the board is built; Pos, Placed and Dragging change during play.
type Piece struct {
	Row, Col int
	W, H     float64

	Target geom.Point // top-left of the base rectangle when solved
	Pos    geom.Point // current top-left of the base rectangle

	Sides   [4]topology.Edge
	Outline *outline.Outline
	Region  sampler.Region

	// Pad is the margin around the base rectangle used for both the sprite
	// buffer and the padded hit box.
	Pad float64

	Placed   bool
	Dragging bool
}

// Spec carries everything needed to build a piece.
type Spec struct {
	Row, Col       int
	W, H           float64
	Origin         geom.Point // puzzle rectangle's top-left corner
	PuzzleW        float64
	PuzzleH        float64
	ImageW, ImageH int
	Sides          [4]topology.Edge
	Library        *outline.Library
}

// New builds a piece's outline and sampled region.
func New(s Spec) (*Piece, error) {
	if !(s.W > 0 && s.H > 0) {
		return nil, fmt.Errorf("piece (%d,%d): invalid size %vx%v", s.Row, s.Col, s.W, s.H)
	}
	o := outline.Build(s.Sides, s.W, s.H, s.Library)

	// Expand tab sides by the nominal protrusion, or by how far the outline
	// actually reaches if that is further.
	req := sampler.Request{
		Cell:    geom.MakeBox(float64(s.Col)*s.W, float64(s.Row)*s.H, s.W, s.H),
		PuzzleW: s.PuzzleW,
		PuzzleH: s.PuzzleH,
		ImageW:  s.ImageW,
		ImageH:  s.ImageH,
	}
	protrusion := outline.Protrusion(s.W, s.H)
	for _, side := range topology.Sides {
		req.Sides[side] = s.Sides[side].Polarity
		req.Expand[side] = math.Max(protrusion, o.Extent(side))
	}
	region := sampler.Sample(req)
	if !region.Valid() {
		return nil, fmt.Errorf("piece (%d,%d): empty image region %+v", s.Row, s.Col, region.Src)
	}

	target := s.Origin.Add(geom.MakePoint(req.Cell.X, req.Cell.Y))
	return &Piece{
		Row:     s.Row,
		Col:     s.Col,
		W:       s.W,
		H:       s.H,
		Target:  target,
		Pos:     target,
		Sides:   s.Sides,
		Outline: o,
		Region:  region,
		Pad:     math.Max(outline.Padding(s.W, s.H), o.MaxExtent()+padMargin),
	}, nil
}

// Bounds is the base rectangle at the current position.
func (p *Piece) Bounds() geom.Box {
	return geom.MakeBox(p.Pos.X, p.Pos.Y, p.W, p.H)
}

// HitBox is the base rectangle grown by Pad on every side.
func (p *Piece) HitBox() geom.Box {
	return p.Bounds().Grow(p.Pad)
}

// Contains is the padded bounding-box hit test (inclusive edges).
func (p *Piece) Contains(pt geom.Point) bool {
	return p.HitBox().Contains(pt)
}

// ContainsExact tests pt against the outline itself.
func (p *Piece) ContainsExact(pt geom.Point) bool {
	return p.Outline.Contains(pt.Sub(p.Pos))
}

// NearTarget reports whether the piece lies strictly within threshold of its
// target on both axes.
func (p *Piece) NearTarget(threshold float64) bool {
	return math.Abs(p.Pos.X-p.Target.X) < threshold && math.Abs(p.Pos.Y-p.Target.Y) < threshold
}

// Snap moves the piece onto its target and marks it placed.
func (p *Piece) Snap() {
	p.Pos = p.Target
	p.Placed = true
}

// IsBorder reports whether the piece sits on the outer frame of an n×n grid.
func (p *Piece) IsBorder(n int) bool {
	return p.Row == 0 || p.Col == 0 || p.Row == n-1 || p.Col == n-1
}

func (p *Piece) String() string {
	return fmt.Sprintf("piece(%d,%d)", p.Row, p.Col)
}
