package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/irfansharif/jigsaw/internal/board"
	"github.com/irfansharif/jigsaw/internal/palette"
	"github.com/irfansharif/jigsaw/internal/piece"
)

// DefaultResolution is the number of sprite pixels per puzzle unit. Two keeps
// pieces sharp up to 2× zoom.
const DefaultResolution = 2.0

// Sprite is a piece's pre-rendered image: the sampled source pixels clipped
// to the outline, with a thin border, on a transparent buffer that extends
// Pad puzzle units beyond the base rectangle on every side.
type Sprite struct {
	Buf   *gg.ImageBuf
	Image *image.RGBA
	Pad   float64
	W, H  float64 // buffer size in puzzle units
}

// SpriteCache holds one sprite per piece of a board.
type SpriteCache struct {
	Resolution float64

	sprites map[*piece.Piece]*Sprite
	stats   SpriteStats
}

// SpriteStats records the cost of the last Build.
type SpriteStats struct {
	Sprites     int
	Pixels      int
	BuildTimeMs float64
}

// NewSpriteCache returns an empty cache. A non-positive resolution takes
// DefaultResolution.
func NewSpriteCache(resolution float64) *SpriteCache {
	if !(resolution > 0) {
		resolution = DefaultResolution
	}
	return &SpriteCache{Resolution: resolution, sprites: map[*piece.Piece]*Sprite{}}
}

// Build renders a sprite for every piece of b from img, replacing anything
// cached before. img must be the image the board was sized for.
func (c *SpriteCache) Build(b *board.Board, img image.Image, pal palette.Palette) error {
	start := time.Now()

	w, h := b.ImageSize()
	if got := img.Bounds(); got.Dx() != w || got.Dy() != h {
		return fmt.Errorf("sprite source is %dx%d, board expects %dx%d", got.Dx(), got.Dy(), w, h)
	}
	src := gg.ImageBufFromImage(img)

	sprites := make(map[*piece.Piece]*Sprite, len(b.Pieces()))
	pixels := 0
	for _, p := range b.Pieces() {
		s, err := c.render(p, src, pal)
		if err != nil {
			return err
		}
		sprites[p] = s
		pixels += s.Image.Rect.Dx() * s.Image.Rect.Dy()
	}
	c.sprites = sprites
	c.stats = SpriteStats{
		Sprites:     len(sprites),
		Pixels:      pixels,
		BuildTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}
	renderLogger.Printf("built %d sprites (%d px) in %.2fms", len(sprites), pixels, c.stats.BuildTimeMs)
	return nil
}

// render draws one piece. The sampled region is drawn unclipped into a
// scratch buffer, composited onto the sprite through a mask rasterized from
// the outline, and finally the border is stroked on top.
func (c *SpriteCache) render(p *piece.Piece, src *gg.ImageBuf, pal palette.Palette) (*Sprite, error) {
	res := c.Resolution
	pw := int(math.Ceil((p.W + 2*p.Pad) * res))
	ph := int(math.Ceil((p.H + 2*p.Pad) * res))
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("%s: empty sprite", p)
	}
	local := func(dc *gg.Context) {
		dc.Scale(res, res)
		dc.Translate(p.Pad, p.Pad)
	}

	rect, dst := p.Region.Snapped()
	scratch := gg.NewContext(pw, ph)
	defer func() { _ = scratch.Close() }()
	local(scratch)
	scratch.DrawImageEx(src, gg.DrawImageOptions{
		X:             dst.X,
		Y:             dst.Y,
		DstWidth:      dst.W,
		DstHeight:     dst.H,
		SrcRect:       &rect,
		Interpolation: gg.InterpBilinear,
	})

	mask := gg.NewContext(pw, ph)
	defer func() { _ = mask.Close() }()
	local(mask)
	mask.SetColor(color.White)
	tracePath(mask, p.Outline)
	if err := mask.Fill(); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	clipped := image.NewRGBA(image.Rect(0, 0, pw, ph))
	xdraw.DrawMask(clipped, clipped.Rect, scratch.Image(), image.Point{}, mask.Image(), image.Point{}, xdraw.Src)

	dc := gg.NewContextForImage(clipped)
	defer func() { _ = dc.Close() }()
	local(dc)
	dc.SetColor(pal.Border)
	dc.SetLineWidth(1)
	tracePath(dc, p.Outline)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	out, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected sprite image %T", p, dc.Image())
	}
	return &Sprite{
		Buf:   gg.ImageBufFromImage(out),
		Image: out,
		Pad:   p.Pad,
		W:     float64(pw) / res,
		H:     float64(ph) / res,
	}, nil
}

// Get returns the sprite for p.
func (c *SpriteCache) Get(p *piece.Piece) (*Sprite, bool) {
	s, ok := c.sprites[p]
	return s, ok
}

// Len returns the number of cached sprites.
func (c *SpriteCache) Len() int { return len(c.sprites) }

// Stats returns the cost of the last Build.
func (c *SpriteCache) Stats() SpriteStats { return c.stats }
