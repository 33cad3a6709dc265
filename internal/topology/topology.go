// Package topology assigns the tab/blank layout of a square jigsaw grid.
//
// Every interior edge of an N×N grid is stored exactly once in an edge table,
// from the point of view of its canonical owner: the left piece for edges
// between horizontal neighbors (row edges) and the top piece for edges between
// vertical neighbors (column edges). Pieces never write into each other; they
// read their four sides back out of the table, and the non-owner side sees the
// complemented polarity. This makes the two interlock invariants hold by
// construction:
//   - the polarities on either side of an edge are complements, and
//   - both sides of an edge reference the same curve pattern.
//
// Generation uses run-length clustering: along each row (and independently
// each column) polarities come in short runs of 1-3 equal values, which looks
// closer to a manufactured puzzle than independent coin flips.
package topology

import (
	"fmt"
	"math/rand"
)

const maxRunLength = 3 // longest run of same-polarity edges

// Polarity classifies one side of a piece.
type Polarity int8

const (
	None Polarity = 0  // flat border edge
	Out  Polarity = 1  // tab, protrudes into the neighbor
	In   Polarity = -1 // blank, recedes into the piece
)

// Complement returns the polarity the neighbor sees on the same edge.
func (p Polarity) Complement() Polarity { return -p }

func (p Polarity) String() string {
	switch p {
	case Out:
		return "out"
	case In:
		return "in"
	default:
		return "none"
	}
}

// Side identifies one side of a piece. Sides are listed in the clockwise order
// in which outlines are walked.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Sides lists all four sides in walk order.
var Sides = [4]Side{Top, Right, Bottom, Left}

// Opposite returns the side facing s across an edge.
func (s Side) Opposite() Side { return (s + 2) % 4 }

func (s Side) String() string {
	return [...]string{"top", "right", "bottom", "left"}[s]
}

// Edge is one entry of the edge table. When read through Topology.Side it
// describes the edge from the reading piece's point of view.
type Edge struct {
	Polarity Polarity
	Pattern  int // index into the curve library, meaningless for None
}

// Topology is the edge table of an N×N grid.
type Topology struct {
	N int
	// RowEdges[r][c] sits between pieces (r, c) and (r, c+1); owned by the left
	// piece.
	RowEdges [][]Edge
	// ColEdges[r][c] sits between pieces (r, c) and (r+1, c); owned by the top
	// piece.
	ColEdges [][]Edge
}

// Generate builds the edge table for an n×n grid, drawing polarities with
// run-length clustering and pattern indexes uniformly from [0, patterns).
func Generate(rng *rand.Rand, n, patterns int) *Topology {
	if n < 2 {
		panic(fmt.Sprintf("topology: grid size %d < 2", n))
	}
	if patterns < 1 {
		panic("topology: pattern library is empty")
	}

	t := &Topology{
		N:        n,
		RowEdges: make([][]Edge, n),
		ColEdges: make([][]Edge, n-1),
	}

	// Right/left sides: one run sequence per row.
	for r := 0; r < n; r++ {
		pols := clusteredPolarities(rng, n-1)
		t.RowEdges[r] = make([]Edge, n-1)
		for c, pol := range pols {
			t.RowEdges[r][c] = Edge{Polarity: pol, Pattern: rng.Intn(patterns)}
		}
	}

	// Bottom/top sides: one run sequence per column.
	for r := range t.ColEdges {
		t.ColEdges[r] = make([]Edge, n)
	}
	for c := 0; c < n; c++ {
		pols := clusteredPolarities(rng, n-1)
		for r, pol := range pols {
			t.ColEdges[r][c] = Edge{Polarity: pol, Pattern: rng.Intn(patterns)}
		}
	}
	return t
}

// clusteredPolarities returns count polarities laid out in runs: pick a
// polarity and a run length in [1, maxRunLength], emit the run, re-roll both,
// and repeat until the sequence is full.
func clusteredPolarities(rng *rand.Rand, count int) []Polarity {
	out := make([]Polarity, 0, count)
	for len(out) < count {
		pol := Out
		if rng.Intn(2) == 0 {
			pol = In
		}
		run := 1 + rng.Intn(maxRunLength)
		for i := 0; i < run && len(out) < count; i++ {
			out = append(out, pol)
		}
	}
	return out
}

// Side returns the edge on the given side of piece (row, col), as seen by that
// piece. Border sides are always None.
func (t *Topology) Side(row, col int, side Side) Edge {
	switch side {
	case Top:
		if row == 0 {
			return Edge{}
		}
		return t.ColEdges[row-1][col].flip()
	case Right:
		if col == t.N-1 {
			return Edge{}
		}
		return t.RowEdges[row][col]
	case Bottom:
		if row == t.N-1 {
			return Edge{}
		}
		return t.ColEdges[row][col]
	case Left:
		if col == 0 {
			return Edge{}
		}
		return t.RowEdges[row][col-1].flip()
	}
	panic(fmt.Sprintf("topology: unknown side %d", side))
}

// Sides returns all four sides of piece (row, col) in walk order.
func (t *Topology) Sides(row, col int) [4]Edge {
	var out [4]Edge
	for _, s := range Sides {
		out[s] = t.Side(row, col, s)
	}
	return out
}

// ForceRecessed turns every non-border side of piece (row, col) into a blank,
// which makes the matching side of each neighbor a tab.
func (t *Topology) ForceRecessed(row, col int) {
	if row > 0 {
		t.ColEdges[row-1][col].Polarity = Out
	}
	if col < t.N-1 {
		t.RowEdges[row][col].Polarity = In
	}
	if row < t.N-1 {
		t.ColEdges[row][col].Polarity = In
	}
	if col > 0 {
		t.RowEdges[row][col-1].Polarity = Out
	}
}

// Interior returns the (row, col) of every piece that touches no border, in
// row-major order.
func (t *Topology) Interior() [][2]int {
	var cells [][2]int
	for r := 1; r < t.N-1; r++ {
		for c := 1; c < t.N-1; c++ {
			cells = append(cells, [2]int{r, c})
		}
	}
	return cells
}

// Validate checks the shape of the edge table and that every interior edge is
// polarized with a pattern inside [0, patterns).
func (t *Topology) Validate(patterns int) error {
	if len(t.RowEdges) != t.N || len(t.ColEdges) != t.N-1 {
		return fmt.Errorf("edge table has %d row and %d column lines for grid size %d",
			len(t.RowEdges), len(t.ColEdges), t.N)
	}
	check := func(kind string, r, c int, e Edge) error {
		if e.Polarity != Out && e.Polarity != In {
			return fmt.Errorf("%s edge (%d,%d) has polarity %s", kind, r, c, e.Polarity)
		}
		if e.Pattern < 0 || e.Pattern >= patterns {
			return fmt.Errorf("%s edge (%d,%d) has pattern %d outside [0,%d)", kind, r, c, e.Pattern, patterns)
		}
		return nil
	}
	for r, line := range t.RowEdges {
		if len(line) != t.N-1 {
			return fmt.Errorf("row %d has %d edges, want %d", r, len(line), t.N-1)
		}
		for c, e := range line {
			if err := check("row", r, c, e); err != nil {
				return err
			}
		}
	}
	for r, line := range t.ColEdges {
		if len(line) != t.N {
			return fmt.Errorf("column line %d has %d edges, want %d", r, len(line), t.N)
		}
		for c, e := range line {
			if err := check("column", r, c, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e Edge) flip() Edge {
	return Edge{Polarity: e.Polarity.Complement(), Pattern: e.Pattern}
}
