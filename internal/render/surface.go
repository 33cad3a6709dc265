package render

import (
	"image/color"

	"github.com/gogpu/gg"

	"github.com/irfansharif/jigsaw/internal/outline"
)

// Surface is the 2D canvas the painter draws onto. *gg.Context satisfies it.
type Surface interface {
	Width() int
	Height() int
	ClearWithColor(c gg.RGBA)

	Push()
	Pop()
	Translate(x, y float64)
	Scale(x, y float64)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
	ClearPath()
	DrawRectangle(x, y, w, h float64)
	Fill() error
	Stroke() error

	SetColor(c color.Color)
	SetLineWidth(w float64)
	SetDash(lengths ...float64)
	ClearDash()

	DrawImageEx(img *gg.ImageBuf, opts gg.DrawImageOptions)
}

var _ Surface = (*gg.Context)(nil)

// pathBuilder is the subset of Surface needed to trace an outline.
type pathBuilder interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
	ClearPath()
}

// tracePath replaces the current path with o, in piece-local coordinates.
func tracePath(s pathBuilder, o *outline.Outline) {
	s.ClearPath()
	s.MoveTo(o.Start.X, o.Start.Y)
	for _, seg := range o.Segments {
		if seg.Line {
			s.LineTo(seg.To.X, seg.To.Y)
			continue
		}
		s.CubicTo(seg.C1.X, seg.C1.Y, seg.C2.X, seg.C2.Y, seg.To.X, seg.To.Y)
	}
	s.ClosePath()
}
