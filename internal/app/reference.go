package app

import (
	"image"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/irfansharif/jigsaw/internal/render"
)

const (
	// ReferenceSize bounds the longer edge of the reference thumbnail, in
	// surface pixels.
	ReferenceSize  = 240
	referenceInset = 16.0
)

type reference struct {
	img *image.RGBA
	buf *gg.ImageBuf
	on  bool
}

// Reference returns a thumbnail of the source image no larger than
// ReferenceSize on either edge, or nil with no image loaded.
func (g *Game) Reference() *image.RGBA {
	if g.image == nil {
		return nil
	}
	if g.reference == nil {
		g.reference = &reference{img: thumbnail(g.image.Image, ReferenceSize)}
		g.reference.buf = gg.ImageBufFromImage(g.reference.img)
	}
	return g.reference.img
}

// ToggleReference shows or hides the thumbnail and returns the new state.
func (g *Game) ToggleReference() bool {
	if g.Reference() == nil {
		return false
	}
	g.reference.on = !g.reference.on
	return g.reference.on
}

// ReferenceShown reports whether the thumbnail is drawn.
func (g *Game) ReferenceShown() bool {
	return g.reference != nil && g.reference.on
}

// paintReference draws the thumbnail in the top-right corner of the surface,
// outside the camera transform.
func (g *Game) paintReference(s render.Surface) error {
	if !g.ReferenceShown() {
		return nil
	}
	r := g.reference.img.Rect
	x := float64(s.Width()) - float64(r.Dx()) - referenceInset
	s.DrawImageEx(g.reference.buf, gg.DrawImageOptions{X: x, Y: referenceInset})

	s.SetColor(g.painter.Palette.GuideCorner)
	s.SetLineWidth(2)
	s.ClearPath()
	s.DrawRectangle(x, referenceInset, float64(r.Dx()), float64(r.Dy()))
	return s.Stroke()
}

// thumbnail scales img to fit within limit×limit, keeping its aspect ratio.
func thumbnail(img image.Image, limit int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h && w > limit {
		w, h = limit, h*limit/w
	} else if h > w && h > limit {
		w, h = w*limit/h, limit
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, b, xdraw.Src, nil)
	return dst
}
