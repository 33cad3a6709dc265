// Package outline builds the closed jigsaw outline of a single piece.
//
// An outline is walked clockwise from the top-left corner: top, right, bottom,
// left. Border sides are straight lines. Tab and blank sides instantiate a
// pattern from the curve library, scaled from TemplateLength units to the real
// edge length; blanks mirror the template across the edge. Vertical edges use
// the same templates with the axes swapped.
//
// Every shared edge is evaluated in its canonical direction (left to right for
// horizontal edges, top to bottom for vertical ones) and then reversed for the
// bottom and left walk, so two neighbors trace exactly the same curve even for
// asymmetric patterns.
package outline

import (
	"math"

	"github.com/irfansharif/jigsaw/internal/geom"
	"github.com/irfansharif/jigsaw/internal/topology"
)

const (
	protrusionFraction = 0.2 // tab size estimate, as a fraction of min(w, h)
	flattenSteps       = 16  // line segments per cubic when flattening
)

// Segment is one step of an outline, starting where the previous one ended.
type Segment struct {
	Line   bool       // straight segment to To; C1/C2 unused
	C1, C2 geom.Point // cubic control points
	To     geom.Point
}

// Outline is a closed piece outline in piece-local coordinates, with the base
// rectangle spanning (0,0)-(W,H).
type Outline struct {
	W, H     float64
	Start    geom.Point
	Segments []Segment

	polygon   []geom.Point
	triangles [][3]geom.Point
	bounds    geom.Box
}

// Protrusion is the nominal tab size of a w×h piece.
func Protrusion(w, h float64) float64 {
	return protrusionFraction * math.Min(w, h)
}

// Padding is the margin a raster buffer holding a w×h piece should leave on
// every side. The real outline can exceed the nominal protrusion, so callers
// should also take Outline.Extent into account.
func Padding(w, h float64) float64 {
	return 2 * Protrusion(w, h)
}

type edgeSpan struct {
	from, to geom.Point // canonical direction
	normal   geom.Point // outward unit normal of the walking piece
	reversed bool       // walked against the canonical direction
}

func spans(w, h float64) [4]edgeSpan {
	tl, tr := geom.MakePoint(0, 0), geom.MakePoint(w, 0)
	bl, br := geom.MakePoint(0, h), geom.MakePoint(w, h)
	return [4]edgeSpan{
		topology.Top:    {from: tl, to: tr, normal: geom.MakePoint(0, -1)},
		topology.Right:  {from: tr, to: br, normal: geom.MakePoint(1, 0)},
		topology.Bottom: {from: bl, to: br, normal: geom.MakePoint(0, 1), reversed: true},
		topology.Left:   {from: tl, to: bl, normal: geom.MakePoint(-1, 0), reversed: true},
	}
}

// Build produces the outline of a w×h piece with the given sides, indexed by
// topology.Side.
func Build(sides [4]topology.Edge, w, h float64, lib *Library) *Outline {
	o := &Outline{W: w, H: h, Start: geom.MakePoint(0, 0)}
	edgeSpans := spans(w, h)
	for _, side := range topology.Sides {
		span := edgeSpans[side]
		edge := sides[side]
		if edge.Polarity == topology.None {
			end := span.to
			if span.reversed {
				end = span.from
			}
			o.Segments = append(o.Segments, Segment{Line: true, To: end})
			continue
		}
		o.Segments = append(o.Segments, edgeSegments(span, edge, lib)...)
	}

	o.polygon = o.flatten()
	o.bounds = geom.BoundPoints(o.polygon)
	if tris, err := triangulate(o.polygon); err == nil {
		o.triangles = tris
	}
	return o
}

// edgeSegments instantiates the edge's pattern along span. Tabs bulge along
// the walking piece's outward normal and blanks against it; the neighbor walks
// the same edge with the opposite normal and complemented polarity, which
// lands on the same points.
func edgeSegments(span edgeSpan, edge topology.Edge, lib *Library) []Segment {
	pattern := lib.Pattern(edge.Pattern)
	frame := geom.EdgeFrame(span.from, span.to, span.normal.Scale(float64(edge.Polarity)))

	segs := make([]Segment, len(pattern.Curves))
	for i, c := range pattern.Curves {
		segs[i] = Segment{
			C1: frame.MulPoint(c.C1),
			C2: frame.MulPoint(c.C2),
			To: frame.MulPoint(c.End),
		}
	}
	if !span.reversed {
		return segs
	}

	rev := make([]Segment, len(segs))
	for i := range segs {
		start := span.from
		if i > 0 {
			start = segs[i-1].To
		}
		rev[len(segs)-1-i] = Segment{C1: segs[i].C2, C2: segs[i].C1, To: start}
	}
	return rev
}

// flatten approximates the outline with a closed polygon (the closing vertex
// is not repeated).
func (o *Outline) flatten() []geom.Point {
	pts := []geom.Point{o.Start}
	cur := o.Start
	for _, s := range o.Segments {
		if s.Line {
			pts = append(pts, s.To)
		} else {
			for i := 1; i <= flattenSteps; i++ {
				pts = append(pts, cubicAt(cur, s.C1, s.C2, s.To, float64(i)/flattenSteps))
			}
		}
		cur = s.To
	}
	if len(pts) > 1 && geom.Dist(pts[0], pts[len(pts)-1]) < 1e-9 {
		pts = pts[:len(pts)-1]
	}
	return pts
}

func cubicAt(p0, p1, p2, p3 geom.Point, t float64) geom.Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return geom.MakePoint(
		a*p0.X+b*p1.X+c*p2.X+d*p3.X,
		a*p0.Y+b*p1.Y+c*p2.Y+d*p3.Y,
	)
}

// Polygon returns the flattened outline.
func (o *Outline) Polygon() []geom.Point { return o.polygon }

// Bounds returns the bounding box of the flattened outline.
func (o *Outline) Bounds() geom.Box { return o.bounds }

// Extent returns how far the outline leaves the base rectangle on the given
// side (zero when it stays inside).
func (o *Outline) Extent(side topology.Side) float64 {
	b := o.bounds
	switch side {
	case topology.Top:
		return math.Max(0, -b.Y)
	case topology.Right:
		return math.Max(0, b.X+b.W-o.W)
	case topology.Bottom:
		return math.Max(0, b.Y+b.H-o.H)
	default:
		return math.Max(0, -b.X)
	}
}

// MaxExtent returns the largest Extent over all four sides.
func (o *Outline) MaxExtent() float64 {
	m := 0.0
	for _, s := range topology.Sides {
		m = math.Max(m, o.Extent(s))
	}
	return m
}

// Area returns the enclosed area, summed over the triangulation.
func (o *Outline) Area() float64 {
	area := 0.0
	for _, t := range o.triangles {
		area += math.Abs(cross(t[0], t[1], t[2])) / 2
	}
	return area
}

// Contains reports whether p (piece-local) lies inside the outline.
func (o *Outline) Contains(p geom.Point) bool {
	if !o.bounds.Contains(p) {
		return false
	}
	if o.triangles == nil {
		return evenOdd(o.polygon, p)
	}
	for _, t := range o.triangles {
		if inTriangle(t, p) {
			return true
		}
	}
	return false
}

func cross(a, b, c geom.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func inTriangle(t [3]geom.Point, p geom.Point) bool {
	d1 := cross(t[0], t[1], p)
	d2 := cross(t[1], t[2], p)
	d3 := cross(t[2], t[0], p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// evenOdd is the ray-casting fallback used when triangulation failed.
func evenOdd(poly []geom.Point, p geom.Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
