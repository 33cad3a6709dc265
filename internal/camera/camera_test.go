package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/irfansharif/jigsaw/internal/geom"
)

func TestRoundTrip(t *testing.T) {
	c := New(800, 600)
	c.Zoom = 2
	c.Pan = geom.MakePoint(-100, 50)

	p := geom.MakePoint(123, 456)
	s := c.ToSurface(p)
	assert.Equal(t, geom.MakePoint(146, 962), s)
	assert.Equal(t, p, c.ToPuzzle(s))
}

func TestZoomClamp(t *testing.T) {
	c := New(800, 600)
	for i := 0; i < 40; i++ {
		c.Step(false)
	}
	assert.Equal(t, 0.5, c.Zoom)
	assert.False(t, c.Step(false), "already at the minimum")

	for i := 0; i < 40; i++ {
		c.Step(true)
	}
	assert.Equal(t, 3.0, c.Zoom)
	assert.False(t, c.Step(true))
}

func TestZoomAnchorsOnCenter(t *testing.T) {
	c := New(800, 600)
	c.Pan = geom.MakePoint(30, -20)
	center := c.Center()
	before := c.ToPuzzle(center)

	for i := 0; i < 7; i++ {
		c.Step(true)
	}
	after := c.ToPuzzle(center)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestPanClamp(t *testing.T) {
	tests := []struct {
		name  string
		zoom  float64
		delta geom.Point
		want  geom.Point
	}{
		{name: "within margin", zoom: 1, delta: geom.MakePoint(150, -150), want: geom.MakePoint(150, -150)},
		{name: "far right and down", zoom: 1, delta: geom.MakePoint(1e6, 1e6), want: geom.MakePoint(200, 200)},
		{name: "far left and up", zoom: 1, delta: geom.MakePoint(-1e6, -1e6), want: geom.MakePoint(-200, -200)},
		{name: "zoomed in allows more travel", zoom: 2, delta: geom.MakePoint(-1e6, -1e6), want: geom.MakePoint(-1000, -800)},
		{name: "zoomed out", zoom: 0.5, delta: geom.MakePoint(-1e6, 1e6), want: geom.MakePoint(200, 200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(800, 600)
			c.Zoom = tt.zoom
			c.PanBy(tt.delta)
			assert.Equal(t, tt.want, c.Pan)
		})
	}
}

func TestReset(t *testing.T) {
	c := New(800, 600)
	c.Step(true)
	c.PanBy(geom.MakePoint(40, 40))
	c.Reset()
	assert.Equal(t, 1.0, c.Zoom)
	assert.Equal(t, geom.Point{}, c.Pan)
}
