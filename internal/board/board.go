// Package board owns a built puzzle: its pieces in z-order, the camera, and
// the pointer-driven drag/snap/pan state machine.
//
// Coordinates passed to the pointer methods are drawing-surface coordinates;
// the board converts them to puzzle space through its camera. With the
// identity camera the two coincide, so the puzzle rectangle and the scattered
// pieces both lie within the surface when a board is first built.
package board

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/irfansharif/jigsaw/internal/camera"
	"github.com/irfansharif/jigsaw/internal/geom"
	"github.com/irfansharif/jigsaw/internal/outline"
	"github.com/irfansharif/jigsaw/internal/piece"
	"github.com/irfansharif/jigsaw/internal/topology"
)

var inputLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("JIGSAW_DEBUG_INPUT") == "1" {
		inputLogger = log.New(os.Stdout, "[input] ", log.Ltime|log.Lmsgprefix)
	}
}

// HitMode selects how pointer-down picks a piece.
type HitMode int

const (
	// HitBox tests against the piece's padded bounding box. Corners of
	// neighboring boxes may overlap where the outlines do not.
	HitBox HitMode = iota
	// HitOutline tests against the piece outline.
	HitOutline
)

func (m HitMode) String() string {
	if m == HitOutline {
		return "outline"
	}
	return "box"
}

// Options configures a board. Zero values take the defaults below.
type Options struct {
	Grid             int
	ImageW, ImageH   int
	SurfaceW         float64
	SurfaceH         float64
	Rand             *rand.Rand
	Library          *outline.Library
	HitMode          HitMode
	OnComplete       func()
	FitFraction      float64 // of min(SurfaceW, SurfaceH)
	ScatterMargin    float64
	ScatterBuffer    float64
	ScatterAttempts  int
	SnapThreshold    float64
	MinZoom, MaxZoom float64
	ZoomStep         float64
	PanMargin        float64
}

// returnTolerance absorbs the rounding in a grab offset round trip.
const returnTolerance = 1e-6

const (
	DefaultFitFraction     = 0.8
	DefaultScatterMargin   = 50.0
	DefaultScatterBuffer   = 30.0
	DefaultScatterAttempts = 50
)

func (o *Options) setDefaults() {
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(1))
	}
	if o.Library == nil {
		o.Library = outline.Default()
	}
	if o.FitFraction == 0 {
		o.FitFraction = DefaultFitFraction
	}
	if o.ScatterMargin == 0 {
		o.ScatterMargin = DefaultScatterMargin
	}
	if o.ScatterBuffer == 0 {
		o.ScatterBuffer = DefaultScatterBuffer
	}
	if o.ScatterAttempts == 0 {
		o.ScatterAttempts = DefaultScatterAttempts
	}
	if o.SnapThreshold == 0 {
		o.SnapThreshold = piece.SnapThreshold
	}
	if o.MinZoom == 0 {
		o.MinZoom = camera.DefaultMinZoom
	}
	if o.MaxZoom == 0 {
		o.MaxZoom = camera.DefaultMaxZoom
	}
	if o.ZoomStep == 0 {
		o.ZoomStep = camera.DefaultZoomStep
	}
	if o.PanMargin == 0 {
		o.PanMargin = camera.DefaultPanMargin
	}
}

func (o *Options) validate() error {
	if o.Grid < 2 {
		return fmt.Errorf("grid size %d, need at least 2", o.Grid)
	}
	if o.ImageW <= 0 || o.ImageH <= 0 {
		return fmt.Errorf("invalid image size %dx%d", o.ImageW, o.ImageH)
	}
	if !(o.SurfaceW > 0 && o.SurfaceH > 0) {
		return fmt.Errorf("invalid surface size %vx%v", o.SurfaceW, o.SurfaceH)
	}
	if !(o.FitFraction > 0 && o.FitFraction <= 1) {
		return fmt.Errorf("fit fraction %v out of (0, 1]", o.FitFraction)
	}
	if o.MinZoom > o.MaxZoom {
		return fmt.Errorf("zoom range [%v, %v] is empty", o.MinZoom, o.MaxZoom)
	}
	return nil
}

// Board is a built puzzle. It is not safe for concurrent use; all methods are
// expected to run on the input/render thread.
type Board struct {
	opts   Options
	n      int
	puzzle geom.Box
	topo   *topology.Topology
	cam    *camera.Camera

	pieces []*piece.Piece   // z-order, topmost last
	grid   [][]*piece.Piece // [row][col]
	placed int
	// complete is set once every piece is placed and never cleared.
	complete bool

	panMode bool
	panning bool
	last    geom.Point // surface position of the previous pan event

	dragged    *piece.Piece
	grab       geom.Point // pointer minus piece position, in puzzle space
	wasPlaced  bool       // dragged piece was placed when picked up
	recessedAt [2]int     // interior piece forced to all blanks, or {-1,-1}
}

// New builds a board: puzzle rectangle, topology, pieces, scatter.
func New(opts Options) (*Board, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	n := opts.Grid

	// Fit the longer image axis to a fraction of the shorter surface axis.
	maxSize := math.Min(opts.SurfaceW, opts.SurfaceH) * opts.FitFraction
	aspect := float64(opts.ImageW) / float64(opts.ImageH)
	pw, ph := maxSize, maxSize
	if aspect > 1 {
		ph = maxSize / aspect
	} else {
		pw = maxSize * aspect
	}
	puzzle := geom.MakeBox((opts.SurfaceW-pw)/2, (opts.SurfaceH-ph)/2, pw, ph)

	topo := topology.Generate(opts.Rand, n, opts.Library.Len())
	recessed := [2]int{-1, -1}
	if interior := topo.Interior(); len(interior) > 0 {
		recessed = interior[opts.Rand.Intn(len(interior))]
		topo.ForceRecessed(recessed[0], recessed[1])
	}

	cam := camera.New(opts.SurfaceW, opts.SurfaceH)
	cam.MinZoom, cam.MaxZoom = opts.MinZoom, opts.MaxZoom
	cam.ZoomStep, cam.PanMargin = opts.ZoomStep, opts.PanMargin

	b := &Board{
		opts:       opts,
		n:          n,
		puzzle:     puzzle,
		topo:       topo,
		cam:        cam,
		grid:       make([][]*piece.Piece, n),
		recessedAt: recessed,
	}
	for row := 0; row < n; row++ {
		b.grid[row] = make([]*piece.Piece, n)
		for col := 0; col < n; col++ {
			p, err := piece.New(piece.Spec{
				Row:     row,
				Col:     col,
				W:       pw / float64(n),
				H:       ph / float64(n),
				Origin:  puzzle.Min(),
				PuzzleW: pw,
				PuzzleH: ph,
				ImageW:  opts.ImageW,
				ImageH:  opts.ImageH,
				Sides:   topo.Sides(row, col),
				Library: opts.Library,
			})
			if err != nil {
				return nil, fmt.Errorf("board: %w", err)
			}
			b.grid[row][col] = p
			b.pieces = append(b.pieces, p)
		}
	}
	b.Shuffle()
	inputLogger.Printf("built %dx%d board, puzzle %.0fx%.0f at (%.0f,%.0f), recessed piece %v",
		n, n, pw, ph, puzzle.X, puzzle.Y, recessed)
	return b, nil
}

// Shuffle scatters every piece outside the puzzle rectangle, clears placement
// and randomizes the z-order. It does not clear completion.
func (b *Board) Shuffle() {
	for _, p := range b.pieces {
		b.scatter(p)
		p.Placed = false
		p.Dragging = false
	}
	b.placed = 0
	b.dragged = nil
	b.opts.Rand.Shuffle(len(b.pieces), func(i, j int) {
		b.pieces[i], b.pieces[j] = b.pieces[j], b.pieces[i]
	})
}

// scatter picks a uniformly random position inside the surface margins that
// keeps the piece clear of the buffered puzzle rectangle. After the retry
// budget the last candidate is used as is.
func (b *Board) scatter(p *piece.Piece) {
	rng := b.opts.Rand
	margin, buffer := b.opts.ScatterMargin, b.opts.ScatterBuffer
	spanX := math.Max(0, b.opts.SurfaceW-p.W-2*margin)
	spanY := math.Max(0, b.opts.SurfaceH-p.H-2*margin)
	keepOut := b.puzzle.Grow(buffer)

	for attempt := 1; ; attempt++ {
		p.Pos = geom.MakePoint(margin+rng.Float64()*spanX, margin+rng.Float64()*spanY)
		outside := p.Pos.X+p.W < keepOut.X ||
			p.Pos.X > keepOut.X+keepOut.W ||
			p.Pos.Y+p.H < keepOut.Y ||
			p.Pos.Y > keepOut.Y+keepOut.H
		if outside || attempt >= b.opts.ScatterAttempts {
			return
		}
	}
}

// PointerDown starts a pan in pan mode, otherwise picks the topmost piece
// under the pointer, lifts it out of placement and raises it.
func (b *Board) PointerDown(x, y float64) {
	sp := geom.MakePoint(x, y)
	if !sp.Finite() {
		return
	}
	if b.panMode {
		b.panning = true
		b.last = sp
		return
	}

	if b.dragged != nil {
		// A second press without a release; drop the old piece where it is.
		b.dragged.Dragging = false
		b.dragged = nil
	}

	wp := b.cam.ToPuzzle(sp)
	for i := len(b.pieces) - 1; i >= 0; i-- {
		p := b.pieces[i]
		if !b.hit(p, wp) {
			continue
		}
		b.wasPlaced = p.Placed
		if p.Placed {
			p.Placed = false
			b.placed--
		}
		p.Dragging = true
		b.dragged = p
		b.grab = wp.Sub(p.Pos)

		copy(b.pieces[i:], b.pieces[i+1:])
		b.pieces[len(b.pieces)-1] = p
		inputLogger.Printf("picked %v at %v (was placed: %t)", p, p.Pos, b.wasPlaced)
		return
	}
}

func (b *Board) hit(p *piece.Piece, wp geom.Point) bool {
	if b.opts.HitMode == HitOutline {
		return p.ContainsExact(wp)
	}
	return p.Contains(wp)
}

// PointerMove pans the camera or drags the held piece.
func (b *Board) PointerMove(x, y float64) {
	sp := geom.MakePoint(x, y)
	if !sp.Finite() {
		return
	}
	if b.panning {
		b.cam.PanBy(sp.Sub(b.last))
		b.last = sp
		return
	}
	if b.dragged != nil {
		b.dragged.Pos = b.cam.ToPuzzle(sp).Sub(b.grab)
	}
}

// PointerUp ends a pan or a drag. A dragged piece first follows the pointer to
// the release position (when finite), then snaps if it is near its target and
// eligible.
func (b *Board) PointerUp(x, y float64) {
	if b.panning {
		b.panning = false
		return
	}
	p := b.dragged
	if p == nil {
		return
	}
	b.PointerMove(x, y)
	b.dragged = nil
	p.Dragging = false

	if !p.NearTarget(b.opts.SnapThreshold) || p.Placed {
		inputLogger.Printf("dropped %v at %v", p, p.Pos)
		return
	}
	// A placed piece released where it was picked up stays placed, even if
	// its neighbors have since been lifted.
	stayed := b.wasPlaced && geom.Dist(p.Pos, p.Target) <= returnTolerance
	if !stayed && !b.CanSnap(p) {
		inputLogger.Printf("rejected %v: not connected to the assembly", p)
		return
	}
	p.Snap()
	b.placed++
	inputLogger.Printf("placed %v (%d/%d)", p, b.placed, len(b.pieces))
	b.checkCompletion()
}

func (b *Board) checkCompletion() {
	if b.complete || b.placed != len(b.pieces) {
		return
	}
	b.complete = true
	inputLogger.Printf("puzzle complete")
	if b.opts.OnComplete != nil {
		b.opts.OnComplete()
	}
}

// CanSnap reports whether p satisfies the connectivity rule: nothing is placed
// yet, p is on the border, or a grid neighbor of p is placed.
func (b *Board) CanSnap(p *piece.Piece) bool {
	return b.placed == 0 || p.IsBorder(b.n) || b.hasPlacedNeighbor(p)
}

func (b *Board) hasPlacedNeighbor(p *piece.Piece) bool {
	for _, d := range [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}} {
		r, c := p.Row+d[0], p.Col+d[1]
		if r < 0 || c < 0 || r >= b.n || c >= b.n {
			continue
		}
		if b.grid[r][c].Placed {
			return true
		}
	}
	return false
}

// NearTarget reports whether p is within the snap threshold of its target.
func (b *Board) NearTarget(p *piece.Piece) bool {
	return p.NearTarget(b.opts.SnapThreshold)
}

// Wheel zooms one step about the surface center: in for negative deltaY, out
// for positive. A zero delta does nothing.
func (b *Board) Wheel(deltaY float64) {
	if deltaY == 0 || math.IsNaN(deltaY) {
		return
	}
	if b.cam.Step(deltaY < 0) {
		inputLogger.Printf("zoom %.1f", b.cam.Zoom)
	}
}

// TogglePanMode flips pan mode and returns the new state. Leaving pan mode
// ends any pan in progress.
func (b *Board) TogglePanMode() bool {
	b.panMode = !b.panMode
	if !b.panMode {
		b.panning = false
	}
	return b.panMode
}

// Progress is the rounded percentage of placed pieces.
func (b *Board) Progress() int {
	return int(math.Round(float64(b.placed) / float64(len(b.pieces)) * 100))
}

// Complete reports whether the puzzle has been solved.
func (b *Board) Complete() bool { return b.complete }

// Resize updates the surface size. Puzzle geometry is unchanged.
func (b *Board) Resize(w, h float64) {
	b.opts.SurfaceW, b.opts.SurfaceH = w, h
	b.cam.Resize(w, h)
}

// Pieces returns the pieces in z-order, topmost last. Callers must not
// reorder the slice.
func (b *Board) Pieces() []*piece.Piece { return b.pieces }

// PieceAt returns the piece for a grid cell.
func (b *Board) PieceAt(row, col int) *piece.Piece { return b.grid[row][col] }

func (b *Board) Grid() int                    { return b.n }
func (b *Board) Placed() int                  { return b.placed }
func (b *Board) Puzzle() geom.Box             { return b.puzzle }
func (b *Board) Camera() *camera.Camera       { return b.cam }
func (b *Board) Topology() *topology.Topology { return b.topo }
func (b *Board) Dragged() *piece.Piece        { return b.dragged }
func (b *Board) PanMode() bool                { return b.panMode }
func (b *Board) Panning() bool                { return b.panning }
func (b *Board) Recessed() (row, col int)     { return b.recessedAt[0], b.recessedAt[1] }
func (b *Board) ImageSize() (w, h int)        { return b.opts.ImageW, b.opts.ImageH }
