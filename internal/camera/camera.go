// Package camera maps between drawing-surface coordinates and puzzle space.
package camera

import (
	"math"

	"github.com/irfansharif/jigsaw/internal/geom"
)

const (
	DefaultMinZoom   = 0.5
	DefaultMaxZoom   = 3.0
	DefaultZoomStep  = 0.1
	DefaultPanMargin = 200.0
)

// Camera holds the pan offset and zoom scale for a surface of the given size.
// Surface = puzzle*Zoom + Pan.
type Camera struct {
	Zoom          float64
	Pan           geom.Point
	Width, Height float64

	MinZoom, MaxZoom float64
	ZoomStep         float64
	PanMargin        float64
}

// New returns an identity camera with the default limits.
func New(width, height float64) *Camera {
	return &Camera{
		Zoom:      1,
		Width:     width,
		Height:    height,
		MinZoom:   DefaultMinZoom,
		MaxZoom:   DefaultMaxZoom,
		ZoomStep:  DefaultZoomStep,
		PanMargin: DefaultPanMargin,
	}
}

// ToPuzzle converts a surface point to puzzle space.
func (c *Camera) ToPuzzle(p geom.Point) geom.Point {
	return p.Sub(c.Pan).Scale(1 / c.Zoom)
}

// ToSurface converts a puzzle-space point to surface coordinates.
func (c *Camera) ToSurface(p geom.Point) geom.Point {
	return p.Scale(c.Zoom).Add(c.Pan)
}

// Center is the middle of the surface.
func (c *Camera) Center() geom.Point {
	return geom.MakePoint(c.Width/2, c.Height/2)
}

// Step zooms in one notch for in=true and out otherwise, keeping the surface
// center fixed. It reports whether the zoom changed.
func (c *Camera) Step(in bool) bool {
	delta := -c.ZoomStep
	if in {
		delta = c.ZoomStep
	}
	return c.SetZoom(c.Zoom+delta, c.Center())
}

// SetZoom clamps zoom to the configured range and rescales the pan offset so
// that anchor (a surface point) stays over the same puzzle point.
func (c *Camera) SetZoom(zoom float64, anchor geom.Point) bool {
	// Snap to whole steps so repeated notches do not drift.
	if c.ZoomStep > 0 {
		zoom = math.Round(zoom/c.ZoomStep) * c.ZoomStep
	}
	zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, zoom))
	if zoom == c.Zoom {
		return false
	}
	ratio := zoom / c.Zoom
	c.Pan = anchor.Sub(anchor.Sub(c.Pan).Scale(ratio))
	c.Zoom = zoom
	return true
}

// PanBy moves the offset by a surface-space delta, clamped so the puzzle stays
// reachable within PanMargin of the surface edges.
func (c *Camera) PanBy(d geom.Point) {
	c.SetPan(c.Pan.Add(d))
}

// SetPan sets the offset, applying the same clamp as PanBy.
func (c *Camera) SetPan(p geom.Point) {
	lo, hi := c.PanLimits()
	c.Pan = geom.MakePoint(
		math.Max(lo.X, math.Min(hi.X, p.X)),
		math.Max(lo.Y, math.Min(hi.Y, p.Y)),
	)
}

// PanLimits returns the smallest and largest allowed offsets.
func (c *Camera) PanLimits() (lo, hi geom.Point) {
	lo = geom.MakePoint(
		-(c.Width*(c.Zoom-1))-c.PanMargin,
		-(c.Height*(c.Zoom-1))-c.PanMargin,
	)
	hi = geom.MakePoint(c.PanMargin, c.PanMargin)
	return lo, hi
}

// Resize updates the surface size.
func (c *Camera) Resize(width, height float64) {
	c.Width, c.Height = width, height
}

// Reset returns to the identity transform.
func (c *Camera) Reset() {
	c.Zoom = 1
	c.Pan = geom.Point{}
}
