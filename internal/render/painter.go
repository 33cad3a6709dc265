package render

import (
	"fmt"
	"image/color"
	"time"

	"github.com/gogpu/gg"

	"github.com/irfansharif/jigsaw/internal/board"
	"github.com/irfansharif/jigsaw/internal/palette"
	"github.com/irfansharif/jigsaw/internal/piece"
)

// Drawing constants, in puzzle units.
const (
	guideWidth      = 2.0
	guideDash       = 10.0
	guideGap        = 5.0
	cornerWidth     = 3.0
	cornerSize      = 20.0
	snapStrokeWidth = 4.0
	placedWidth     = 1.5
	shadowOffset    = 5.0
	shadowSpread    = 3.0
	shadowPasses    = 3
	shadowGlow      = 0.6  // how far a snappable piece's shadow leans toward SnapOK
	shadowLift      = 0.15 // extra brightness on top
)

// Painter draws a board frame.
type Painter struct {
	Palette palette.Palette
	Sprites *SpriteCache

	// HighlightPlaced outlines pieces that are in their solved position. On
	// by default.
	HighlightPlaced bool

	stats Stats
}

// NewPainter returns a painter drawing from sprites.
func NewPainter(pal palette.Palette, sprites *SpriteCache) *Painter {
	return &Painter{Palette: pal, Sprites: sprites, HighlightPlaced: true}
}

// Paint draws the whole frame: background, the puzzle guide and its corner
// markers, then every piece in z-order, bottom first. The dragged piece gets
// a drop shadow, and while it is near its target a colored outline telling
// whether releasing would snap it.
func (pt *Painter) Paint(s Surface, b *board.Board) error {
	start := time.Now()

	s.ClearWithColor(gg.FromColor(pt.Palette.Background))

	cam := b.Camera()
	s.Push()
	defer s.Pop()
	s.Translate(cam.Pan.X, cam.Pan.Y)
	s.Scale(cam.Zoom, cam.Zoom)

	if err := pt.paintGuide(s, b); err != nil {
		return err
	}
	for _, p := range b.Pieces() {
		if err := pt.paintPiece(s, b, p); err != nil {
			return err
		}
	}

	pt.stats.LastPaintTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	return nil
}

func (pt *Painter) paintGuide(s Surface, b *board.Board) error {
	r := b.Puzzle()

	s.SetColor(pt.Palette.Guide)
	s.SetLineWidth(guideWidth)
	s.SetDash(guideDash, guideGap)
	s.ClearPath()
	s.DrawRectangle(r.X, r.Y, r.W, r.H)
	err := s.Stroke()
	s.ClearDash()
	if err != nil {
		return fmt.Errorf("guide: %w", err)
	}

	s.SetColor(pt.Palette.GuideCorner)
	s.SetLineWidth(cornerWidth)
	s.ClearPath()
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H
	for _, c := range [4][3][2]float64{
		{{x0, y0 + cornerSize}, {x0, y0}, {x0 + cornerSize, y0}},
		{{x1 - cornerSize, y0}, {x1, y0}, {x1, y0 + cornerSize}},
		{{x1, y1 - cornerSize}, {x1, y1}, {x1 - cornerSize, y1}},
		{{x0 + cornerSize, y1}, {x0, y1}, {x0, y1 - cornerSize}},
	} {
		s.MoveTo(c[0][0], c[0][1])
		s.LineTo(c[1][0], c[1][1])
		s.LineTo(c[2][0], c[2][1])
	}
	if err := s.Stroke(); err != nil {
		return fmt.Errorf("corners: %w", err)
	}
	return nil
}

func (pt *Painter) paintPiece(s Surface, b *board.Board, p *piece.Piece) error {
	sp, ok := pt.Sprites.Get(p)
	if !ok {
		return fmt.Errorf("%s: no sprite", p)
	}

	near := p.Dragging && b.NearTarget(p)
	snappable := near && b.CanSnap(p)
	if p.Dragging {
		if err := pt.paintShadow(s, p, snappable); err != nil {
			return err
		}
	}

	s.DrawImageEx(sp.Buf, gg.DrawImageOptions{
		X:             p.Pos.X - sp.Pad,
		Y:             p.Pos.Y - sp.Pad,
		DstWidth:      sp.W,
		DstHeight:     sp.H,
		Interpolation: gg.InterpBilinear,
	})

	switch {
	case near:
		c := pt.Palette.SnapBlocked
		if snappable {
			c = pt.Palette.SnapOK
		}
		return pt.strokeOutline(s, p, c, snapStrokeWidth)
	case p.Placed && pt.HighlightPlaced:
		return pt.strokeOutline(s, p, pt.Palette.Placed, placedWidth)
	}
	return nil
}

// ShadowColor is the fill of a dragged piece's drop shadow. It turns a
// brighter green while releasing would snap the piece.
func (pt *Painter) ShadowColor(snappable bool) color.NRGBA {
	if !snappable {
		return pt.Palette.Shadow
	}
	return palette.Brighten(palette.Blend(pt.Palette.Shadow, pt.Palette.SnapOK, shadowGlow), shadowLift)
}

// paintShadow approximates a blurred drop shadow with a few widening,
// fading strokes around an offset fill.
func (pt *Painter) paintShadow(s Surface, p *piece.Piece, snappable bool) error {
	s.Push()
	defer s.Pop()
	s.Translate(p.Pos.X+shadowOffset, p.Pos.Y+shadowOffset)

	c := pt.ShadowColor(snappable)
	s.SetColor(c)
	tracePath(s, p.Outline)
	if err := s.Fill(); err != nil {
		return fmt.Errorf("%s shadow: %w", p, err)
	}
	for i := 1; i <= shadowPasses; i++ {
		c.A /= 2
		s.SetColor(c)
		s.SetLineWidth(shadowSpread * float64(i))
		tracePath(s, p.Outline)
		if err := s.Stroke(); err != nil {
			return fmt.Errorf("%s shadow: %w", p, err)
		}
	}
	return nil
}

func (pt *Painter) strokeOutline(s Surface, p *piece.Piece, c color.Color, width float64) error {
	s.Push()
	defer s.Pop()
	s.Translate(p.Pos.X, p.Pos.Y)
	s.SetColor(c)
	s.SetLineWidth(width)
	tracePath(s, p.Outline)
	if err := s.Stroke(); err != nil {
		return fmt.Errorf("%s outline: %w", p, err)
	}
	return nil
}

// Stats returns the painter's timings.
func (pt *Painter) Stats() Stats { return pt.stats }
