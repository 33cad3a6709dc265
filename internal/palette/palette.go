// Package palette holds the colors the board painter uses for guides, drag
// feedback and highlights.
package palette

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the set of colors for one game.
type Palette struct {
	Background  color.NRGBA
	Guide       color.NRGBA // dashed puzzle outline
	GuideCorner color.NRGBA // corner markers
	Shadow      color.NRGBA // drop shadow under a dragged piece
	SnapOK      color.NRGBA // dragged piece near its target and allowed to snap
	SnapBlocked color.NRGBA // near its target but not connected
	Placed      color.NRGBA // highlight outline on placed pieces
	Border      color.NRGBA // thin outline baked into every piece sprite
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// withAlpha converts c to a non-premultiplied color with alpha in [0,1].
func withAlpha(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp(alpha, 0, 1)*255 + 0.5)}
}

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the standard palette on a dark slate background.
func Default() Palette {
	slate := hex("#94a3b8")
	return Palette{
		Background:  withAlpha(hex("#1e293b"), 1),
		Guide:       withAlpha(slate, 0.6),
		GuideCorner: withAlpha(slate, 0.8),
		Shadow:      withAlpha(colorful.Color{}, 0.5),
		SnapOK:      withAlpha(hex("#22c55e"), 0.8),
		SnapBlocked: withAlpha(hex("#ef4444"), 0.8),
		Placed:      withAlpha(hex("#ffffff"), 0.35),
		Border:      withAlpha(colorful.Color{}, 0.4),
	}
}

// Random returns the default palette with a background of random hue, kept
// dark and desaturated so pieces stand out.
func Random(r *rand.Rand) Palette {
	p := Default()
	hue := r.Float64() * 360
	sat := clamp(0.15+r.Float64()*0.2, 0, 1)
	val := clamp(0.15+r.Float64()*0.1, 0, 1)
	p.Background = withAlpha(colorful.Hsv(hue, sat, val), 1)
	return p
}

// Brighten raises the HSV value of c by amount (in [0,1]), keeping alpha.
func Brighten(c color.NRGBA, amount float64) color.NRGBA {
	cc := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, v := cc.Hsv()
	v = clamp(v+amount, 0, 1)
	out := withAlpha(colorful.Hsv(h, s, v), 1)
	out.A = c.A
	return out
}

// Blend mixes a toward b in Lab space; t=0 is a, t=1 is b. Alpha is
// interpolated linearly.
func Blend(a, b color.NRGBA, t float64) color.NRGBA {
	t = clamp(t, 0, 1)
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	out := withAlpha(ca.BlendLab(cb, t), 1)
	out.A = uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t + 0.5)
	return out
}

// Gradient paints a w×h image to play with when none is given: four random
// corner hues blended in Lab space, with a faint checkerboard of the given
// number of cells per side so that neighboring pieces are told apart.
func Gradient(r *rand.Rand, w, h, cells int) *image.NRGBA {
	var corners [4]colorful.Color
	hue := r.Float64() * 360
	for i := range corners {
		corners[i] = colorful.Hsv(math.Mod(hue+float64(i)*(60+r.Float64()*60), 360), 0.55+r.Float64()*0.3, 0.7+r.Float64()*0.25)
	}
	if cells < 1 {
		cells = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		v := float64(y) / math.Max(1, float64(h-1))
		left := corners[0].BlendLab(corners[3], v)
		right := corners[1].BlendLab(corners[2], v)
		for x := 0; x < w; x++ {
			u := float64(x) / math.Max(1, float64(w-1))
			c := left.BlendLab(right, u)
			if (x*cells/w+y*cells/h)%2 == 1 {
				hh, s, l := c.Hsl()
				c = colorful.Hsl(hh, s, clamp(l*0.85, 0, 1))
			}
			img.SetNRGBA(x, y, withAlpha(c, 1))
		}
	}
	return img
}
