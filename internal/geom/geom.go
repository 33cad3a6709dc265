// Package geom provides the 2D primitives shared by the puzzle packages:
// - Points and vector arithmetic
// - Axis-aligned boxes (puzzle rectangles, hit boxes, sample regions)
// - Affine transforms (edge frames, the screen-to-NDC mapping)
package geom

import "math"

// Point represents a 2D point or vector in Cartesian coordinates.
type Point struct {
	X float64
	Y float64
}

// Box represents an axis-aligned rectangle.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Affine represents a 2D affine transform in row-major form:
// [ a b c ]
// [ d e f ]
// where (x', y') = (a*x + b*y + c, d*x + e*y + f)
type Affine struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

func MakePoint(x, y float64) Point               { return Point{X: x, Y: y} }
func MakeBox(x, y, w, h float64) Box             { return Box{X: x, Y: y, W: w, H: h} }
func MakeAffine(a, b, c, d, e, f float64) Affine { return Affine{A: a, B: b, C: c, D: d, E: e, F: f} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func Dist(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Min returns the top-left corner of the box.
func (b Box) Min() Point { return Point{b.X, b.Y} }

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Grow expands the box by d on every side (shrinks it for negative d).
func (b Box) Grow(d float64) Box {
	return Box{X: b.X - d, Y: b.Y - d, W: b.W + 2*d, H: b.H + 2*d}
}

// Overlaps reports whether the interiors of two boxes intersect.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W && b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// BoundPoints returns the bounding box of a non-empty point set.
func BoundPoints(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	xmin, xmax := pts[0].X, pts[0].X
	ymin, ymax := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		ymin = math.Min(ymin, p.Y)
		ymax = math.Max(ymax, p.Y)
	}
	return MakeBox(xmin, ymin, xmax-xmin, ymax-ymin)
}

// MulPoint applies the affine transform to a point.
func (t Affine) MulPoint(p Point) Point {
	return Point{
		X: t.A*p.X + t.B*p.Y + t.C,
		Y: t.D*p.X + t.E*p.Y + t.F,
	}
}

// EdgeFrame constructs the transform that maps template space onto an edge:
// template x runs along p->q with 100 template units spanning the edge, and
// template y runs along the given unit normal, scaled by the same factor.
func EdgeFrame(p, q, normal Point) Affine {
	s := Dist(p, q) / 100.0
	ux, uy := (q.X-p.X)/100.0, (q.Y-p.Y)/100.0
	return MakeAffine(
		ux, normal.X*s, p.X,
		uy, normal.Y*s, p.Y,
	)
}
