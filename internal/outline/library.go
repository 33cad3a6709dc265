package outline

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"math"

	"github.com/irfansharif/jigsaw/internal/geom"
)

// TemplateLength is the edge length every pattern is normalized to.
const TemplateLength = 100.0

//go:embed patterns.json
var patternData []byte

// defaultLibrary is the built-in pattern set.
var defaultLibrary *Library

func init() {
	lib, err := ParseLibrary(patternData)
	if err != nil {
		log.Fatalf("cannot load tab patterns: %v", err)
	}
	defaultLibrary = lib
}

// Default returns the built-in curve library.
func Default() *Library { return defaultLibrary }

// Curve is one cubic bezier segment of a template. Its start point is the end
// point of the previous curve, or (0,0) for the first one.
type Curve struct {
	C1, C2, End geom.Point
}

// Pattern is a named tab template: a chain of cubic segments running from
// (0,0) to (TemplateLength,0). Positive y is the direction the tab bulges in.
type Pattern struct {
	Name   string
	Curves []Curve
}

// Library is an indexed set of tab patterns. Edges refer to patterns by index.
type Library struct {
	patterns  []Pattern
	maxHeight float64
}

// ParseLibrary decodes and validates a JSON pattern library.
func ParseLibrary(data []byte) (*Library, error) {
	type rawPattern struct {
		Name   string      `json:"name"`
		Curves [][]float64 `json:"curves"` // each [c1x, c1y, c2x, c2y, ex, ey]
	}
	var raw struct {
		Patterns []rawPattern `json:"patterns"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.Patterns) == 0 {
		return nil, fmt.Errorf("library has no patterns")
	}

	lib := &Library{patterns: make([]Pattern, 0, len(raw.Patterns))}
	seen := make(map[string]bool)
	for i, rp := range raw.Patterns {
		if rp.Name == "" {
			return nil, fmt.Errorf("pattern %d has no name", i)
		}
		if seen[rp.Name] {
			return nil, fmt.Errorf("duplicate pattern %q", rp.Name)
		}
		seen[rp.Name] = true
		if len(rp.Curves) == 0 {
			return nil, fmt.Errorf("pattern %q has no curves", rp.Name)
		}

		p := Pattern{Name: rp.Name, Curves: make([]Curve, len(rp.Curves))}
		for j, flat := range rp.Curves {
			if len(flat) != 6 {
				return nil, fmt.Errorf("pattern %q curve %d has %d coordinates, want 6", rp.Name, j, len(flat))
			}
			p.Curves[j] = Curve{
				C1:  geom.MakePoint(flat[0], flat[1]),
				C2:  geom.MakePoint(flat[2], flat[3]),
				End: geom.MakePoint(flat[4], flat[5]),
			}
			for _, v := range []float64{flat[1], flat[3], flat[5]} {
				lib.maxHeight = math.Max(lib.maxHeight, math.Abs(v))
			}
		}
		end := p.Curves[len(p.Curves)-1].End
		if end != geom.MakePoint(TemplateLength, 0) {
			return nil, fmt.Errorf("pattern %q ends at %v, want (%v,0)", rp.Name, end, TemplateLength)
		}
		lib.patterns = append(lib.patterns, p)
	}
	return lib, nil
}

// Len returns the number of patterns.
func (l *Library) Len() int { return len(l.patterns) }

// Pattern returns the pattern at index i.
func (l *Library) Pattern(i int) Pattern { return l.patterns[i] }

// Names lists the pattern names in index order.
func (l *Library) Names() []string {
	names := make([]string, len(l.patterns))
	for i, p := range l.patterns {
		names[i] = p.Name
	}
	return names
}

// MaxHeight returns the largest perpendicular control-point excursion across
// the library, in template units.
func (l *Library) MaxHeight() float64 { return l.maxHeight }
