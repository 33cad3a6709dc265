package board

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/jigsaw/internal/geom"
	"github.com/irfansharif/jigsaw/internal/piece"
	"github.com/irfansharif/jigsaw/internal/topology"
)

func newBoard(t *testing.T, n int, mods ...func(*Options)) *Board {
	t.Helper()
	opts := Options{
		Grid:     n,
		ImageW:   400,
		ImageH:   400,
		SurfaceW: 1000,
		SurfaceH: 1000,
		Rand:     rand.New(rand.NewSource(42)),
	}
	for _, m := range mods {
		m(&opts)
	}
	b, err := New(opts)
	require.NoError(t, err)
	return b
}

// spread moves every piece far away from the puzzle and from each other so
// that presses land on exactly one piece.
func spread(b *Board) {
	for i, p := range b.Pieces() {
		p.Pos = geom.MakePoint(3000+float64(i)*1000, 3000)
	}
}

func center(p *piece.Piece) geom.Point {
	return p.Pos.Add(geom.MakePoint(p.W/2, p.H/2))
}

// drag presses on the middle of p and releases with its top-left at to. It
// assumes the identity camera.
func drag(b *Board, p *piece.Piece, to geom.Point) {
	from := center(p)
	dst := to.Add(geom.MakePoint(p.W/2, p.H/2))
	b.PointerDown(from.X, from.Y)
	b.PointerMove((from.X+dst.X)/2, (from.Y+dst.Y)/2)
	b.PointerUp(dst.X, dst.Y)
}

func place(b *Board, row, col int) *piece.Piece {
	p := b.PieceAt(row, col)
	drag(b, p, p.Target)
	return p
}

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name         string
		imgW, imgH   int
		wantPuzzle   geom.Box
		wantPieceW   float64
		wantPieceH   float64
		wantRecessed bool
	}{
		{name: "square", imgW: 400, imgH: 400, wantPuzzle: geom.MakeBox(100, 100, 800, 800), wantPieceW: 200, wantPieceH: 200, wantRecessed: true},
		{name: "landscape", imgW: 800, imgH: 400, wantPuzzle: geom.MakeBox(100, 300, 800, 400), wantPieceW: 200, wantPieceH: 100, wantRecessed: true},
		{name: "portrait", imgW: 200, imgH: 400, wantPuzzle: geom.MakeBox(300, 100, 400, 800), wantPieceW: 100, wantPieceH: 200, wantRecessed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard(t, 4, func(o *Options) { o.ImageW, o.ImageH = tt.imgW, tt.imgH })

			assert.Equal(t, tt.wantPuzzle, b.Puzzle())
			require.Len(t, b.Pieces(), 16)
			assert.Equal(t, 0, b.Progress())
			assert.False(t, b.Complete())
			require.NoError(t, b.Topology().Validate(b.opts.Library.Len()))

			seen := make(map[*piece.Piece]bool)
			for _, p := range b.Pieces() {
				seen[p] = true
				assert.InDelta(t, tt.wantPieceW, p.W, 1e-9)
				assert.InDelta(t, tt.wantPieceH, p.H, 1e-9)
				want := tt.wantPuzzle.Min().Add(geom.MakePoint(float64(p.Col)*p.W, float64(p.Row)*p.H))
				assert.InDelta(t, want.X, p.Target.X, 1e-9)
				assert.InDelta(t, want.Y, p.Target.Y, 1e-9)
				assert.False(t, p.Placed)

				// Scattered within the surface margins.
				assert.GreaterOrEqual(t, p.Pos.X, DefaultScatterMargin)
				assert.GreaterOrEqual(t, p.Pos.Y, DefaultScatterMargin)
				assert.LessOrEqual(t, p.Pos.X+p.W, 1000-DefaultScatterMargin)
				assert.LessOrEqual(t, p.Pos.Y+p.H, 1000-DefaultScatterMargin)
			}
			assert.Len(t, seen, 16, "every cell appears once in z-order")

			row, col := b.Recessed()
			require.Equal(t, tt.wantRecessed, row > 0)
			for _, e := range b.PieceAt(row, col).Sides {
				assert.Equal(t, topology.In, e.Polarity)
			}
		})
	}
}

func TestNewTwoByTwoHasNoRecessedPiece(t *testing.T) {
	b := newBoard(t, 2)
	row, col := b.Recessed()
	assert.Equal(t, -1, row)
	assert.Equal(t, -1, col)
}

func TestScatterAvoidsPuzzleWhenThereIsRoom(t *testing.T) {
	b := newBoard(t, 3, func(o *Options) {
		o.SurfaceW, o.SurfaceH = 3000, 3000
		o.FitFraction = 0.2
	})
	keepOut := b.Puzzle().Grow(DefaultScatterBuffer)
	for _, p := range b.Pieces() {
		assert.False(t, p.Bounds().Overlaps(keepOut), "%v at %v", p, p.Pos)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Options)
	}{
		{name: "grid too small", mod: func(o *Options) { o.Grid = 1 }},
		{name: "no image", mod: func(o *Options) { o.ImageW = 0 }},
		{name: "no surface", mod: func(o *Options) { o.SurfaceH = 0 }},
		{name: "bad fit", mod: func(o *Options) { o.FitFraction = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Grid: 3, ImageW: 10, ImageH: 10, SurfaceW: 100, SurfaceH: 100}
			tt.mod(&opts)
			_, err := New(opts)
			assert.Error(t, err)
		})
	}
}

func TestDeterministic(t *testing.T) {
	a, b := newBoard(t, 5), newBoard(t, 5)
	assert.Equal(t, a.Topology(), b.Topology())
	for i := range a.Pieces() {
		pa, pb := a.Pieces()[i], b.Pieces()[i]
		assert.Equal(t, [2]int{pa.Row, pa.Col}, [2]int{pb.Row, pb.Col})
		assert.Equal(t, pa.Pos, pb.Pos)
	}
}

func TestBoardEdgeInvariants(t *testing.T) {
	for n := 2; n <= 10; n++ {
		b := newBoard(t, n, func(o *Options) { o.Rand = rand.New(rand.NewSource(int64(n))) })
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				p := b.PieceAt(row, col)
				if col+1 < n {
					q := b.PieceAt(row, col+1)
					assert.Equal(t, p.Sides[topology.Right].Polarity, -q.Sides[topology.Left].Polarity)
					assert.Equal(t, p.Sides[topology.Right].Pattern, q.Sides[topology.Left].Pattern)
				} else {
					assert.Equal(t, topology.None, p.Sides[topology.Right].Polarity)
				}
				if row+1 < n {
					q := b.PieceAt(row+1, col)
					assert.Equal(t, p.Sides[topology.Bottom].Polarity, -q.Sides[topology.Top].Polarity)
					assert.Equal(t, p.Sides[topology.Bottom].Pattern, q.Sides[topology.Top].Pattern)
				} else {
					assert.Equal(t, topology.None, p.Sides[topology.Bottom].Polarity)
				}
				if row == 0 {
					assert.Equal(t, topology.None, p.Sides[topology.Top].Polarity)
				}
				if col == 0 {
					assert.Equal(t, topology.None, p.Sides[topology.Left].Polarity)
				}
			}
		}
	}
}

func TestConnectivityRule(t *testing.T) {
	t.Run("interior piece without a placed neighbor", func(t *testing.T) {
		b := newBoard(t, 3)
		spread(b)

		assert.True(t, place(b, 0, 0).Placed, "first piece is always accepted")

		mid := place(b, 1, 1)
		assert.False(t, mid.Placed, "isolated interior piece is rejected")
		assert.InDelta(t, mid.Target.X, mid.Pos.X, 1e-9, "and stays where it was dropped")
		assert.InDelta(t, mid.Target.Y, mid.Pos.Y, 1e-9)
		assert.False(t, b.CanSnap(mid))

		assert.True(t, place(b, 2, 0).Placed, "border piece without neighbors is accepted")
		assert.True(t, place(b, 0, 1).Placed)
		assert.True(t, b.CanSnap(mid))

		// Pick it up from where it was left and drop it again.
		drag(b, mid, mid.Target)
		assert.True(t, mid.Placed)
		assert.Equal(t, mid.Target, mid.Pos)
		assert.Equal(t, 4, b.Placed())
	})

	t.Run("interior piece first", func(t *testing.T) {
		b := newBoard(t, 3)
		spread(b)
		assert.True(t, place(b, 1, 1).Placed)
	})

	t.Run("border piece first", func(t *testing.T) {
		b := newBoard(t, 3)
		spread(b)
		assert.True(t, place(b, 2, 1).Placed)
	})
}

func TestFullSolve(t *testing.T) {
	completions := 0
	b := newBoard(t, 2, func(o *Options) { o.OnComplete = func() { completions++ } })
	spread(b)

	order := [][2]int{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	wantProgress := []int{25, 50, 75, 100}
	for i, cell := range order {
		p := place(b, cell[0], cell[1])
		require.True(t, p.Placed, "piece %v", p)
		assert.Equal(t, p.Target, p.Pos)
		assert.Equal(t, wantProgress[i], b.Progress())
		assert.Equal(t, i == len(order)-1, b.Complete())
	}
	assert.Equal(t, 1, completions)
}

func TestDropAwayFromTarget(t *testing.T) {
	b := newBoard(t, 2)
	spread(b)
	p := b.PieceAt(0, 0)

	to := p.Target.Add(geom.MakePoint(piece.SnapThreshold+1, 0))
	drag(b, p, to)
	assert.False(t, p.Placed)
	assert.InDelta(t, to.X, p.Pos.X, 1e-9)
	assert.Nil(t, b.Dragged())
	assert.False(t, p.Dragging)

	drag(b, p, p.Target.Add(geom.MakePoint(-24, 24)))
	assert.True(t, p.Placed)
	assert.Equal(t, p.Target, p.Pos)
}

func TestSnapIdempotence(t *testing.T) {
	b := newBoard(t, 3)
	spread(b)
	p := place(b, 0, 2)
	require.True(t, p.Placed)

	c := center(p)
	b.PointerDown(c.X, c.Y)
	assert.False(t, p.Placed, "lifting a placed piece clears placement")
	assert.True(t, p.Dragging)
	b.PointerUp(c.X, c.Y)

	assert.True(t, p.Placed)
	assert.Equal(t, p.Target, p.Pos)
	assert.Equal(t, 1, b.Placed())

	t.Run("first piece on interior", func(t *testing.T) {
		b := newBoard(t, 3)
		spread(b)
		mid := place(b, 1, 1)
		place(b, 0, 0)
		require.Equal(t, 2, b.Placed())

		c := center(mid)
		b.PointerDown(c.X, c.Y)
		b.PointerUp(c.X, c.Y)
		assert.True(t, mid.Placed)
		assert.Equal(t, 2, b.Placed())
	})
}

// A piece that was placed must satisfy the connectivity rule again once it
// leaves its target.
func TestReplacedPieceNeedsAnchor(t *testing.T) {
	tests := []struct {
		name       string
		liftAnchor bool
		wantPlaced bool
	}{
		{name: "anchor still placed", liftAnchor: false, wantPlaced: true},
		{name: "anchor lifted", liftAnchor: true, wantPlaced: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard(t, 3)
			spread(b)
			place(b, 0, 0)
			anchor := place(b, 0, 1)
			mid := place(b, 1, 1)
			require.Equal(t, 3, b.Placed())

			if tt.liftAnchor {
				drag(b, anchor, geom.MakePoint(5000, 5000))
				require.False(t, anchor.Placed)
			}

			off := mid.Target.Add(geom.MakePoint(15, 15))
			drag(b, mid, off)
			assert.Equal(t, tt.wantPlaced, mid.Placed)
			if tt.wantPlaced {
				assert.Equal(t, mid.Target, mid.Pos)
				return
			}
			assert.InDelta(t, off.X, mid.Pos.X, 1e-9)
			assert.InDelta(t, off.Y, mid.Pos.Y, 1e-9)
			assert.False(t, b.CanSnap(mid))
			assert.Equal(t, 1, b.Placed())
		})
	}
}

func TestCompletionMonotonic(t *testing.T) {
	b := newBoard(t, 2)
	spread(b)
	for _, cell := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		place(b, cell[0], cell[1])
	}
	require.True(t, b.Complete())

	p := b.PieceAt(1, 1)
	drag(b, p, geom.MakePoint(5000, 5000))
	assert.False(t, p.Placed)
	assert.Equal(t, 75, b.Progress())
	assert.True(t, b.Complete())

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		x, y := rng.Float64()*1200-100, rng.Float64()*1200-100
		switch rng.Intn(5) {
		case 0:
			b.PointerDown(x, y)
		case 1:
			b.PointerMove(x, y)
		case 2:
			b.PointerUp(x, y)
		case 3:
			b.Wheel(rng.Float64() - 0.5)
		case 4:
			if rng.Intn(10) == 0 {
				b.TogglePanMode()
			}
		}
		require.True(t, b.Complete(), "event %d", i)
	}

	b.Shuffle()
	assert.True(t, b.Complete())
	assert.Equal(t, 0, b.Progress())
}

func TestHitOrder(t *testing.T) {
	b := newBoard(t, 3)
	spread(b)
	pieces := b.Pieces()
	under, over := pieces[3], pieces[6]
	under.Pos = geom.MakePoint(500, 500)
	over.Pos = geom.MakePoint(520, 520)

	c := center(under)
	b.PointerDown(c.X, c.Y)
	assert.Same(t, over, b.Dragged(), "topmost piece wins")
	b.PointerUp(c.X, c.Y)
	assert.Same(t, over, b.Pieces()[len(b.Pieces())-1])

	// Raise the other one by picking it from a spot only it covers.
	corner := under.Pos.Add(geom.MakePoint(-under.Pad, -under.Pad))
	b.PointerDown(corner.X, corner.Y)
	assert.Same(t, under, b.Dragged())
	assert.Same(t, under, b.Pieces()[len(b.Pieces())-1])
	b.PointerUp(corner.X, corner.Y)
	assert.Len(t, b.Pieces(), 9)
}

func TestHitModes(t *testing.T) {
	for _, mode := range []HitMode{HitBox, HitOutline} {
		t.Run(mode.String(), func(t *testing.T) {
			b := newBoard(t, 3, func(o *Options) { o.HitMode = mode })
			spread(b)
			p := b.PieceAt(1, 1)
			corner := p.Pos.Add(geom.MakePoint(-p.Pad+1, -p.Pad+1))

			b.PointerDown(corner.X, corner.Y)
			if mode == HitBox {
				assert.Same(t, p, b.Dragged())
			} else {
				assert.Nil(t, b.Dragged())
			}
			b.PointerUp(corner.X, corner.Y)

			c := center(p)
			b.PointerDown(c.X, c.Y)
			assert.Same(t, p, b.Dragged())
			b.PointerUp(c.X, c.Y)
		})
	}
}

func TestDragUnderCamera(t *testing.T) {
	b := newBoard(t, 2)
	spread(b)
	cam := b.Camera()
	cam.Zoom = 2
	cam.Pan = geom.MakePoint(-100, 40)

	p := b.PieceAt(0, 0)
	start := p.Pos
	s := cam.ToSurface(center(p))
	b.PointerDown(s.X, s.Y)
	require.Same(t, p, b.Dragged())
	b.PointerMove(s.X+100, s.Y-60)
	assert.InDelta(t, start.X+50, p.Pos.X, 1e-9)
	assert.InDelta(t, start.Y-30, p.Pos.Y, 1e-9)
	b.PointerUp(s.X+100, s.Y-60)

	// Drop onto the target through the camera.
	s = cam.ToSurface(center(p))
	dst := cam.ToSurface(p.Target.Add(geom.MakePoint(p.W/2, p.H/2)))
	b.PointerDown(s.X, s.Y)
	b.PointerUp(dst.X, dst.Y)
	assert.True(t, p.Placed)
}

func TestNonFinitePointerIgnored(t *testing.T) {
	b := newBoard(t, 2)
	spread(b)
	p := b.PieceAt(0, 0)

	b.PointerDown(math.NaN(), 0)
	assert.Nil(t, b.Dragged())

	c := center(p)
	b.PointerDown(c.X, c.Y)
	start := p.Pos
	b.PointerMove(math.Inf(1), c.Y)
	assert.Equal(t, start, p.Pos)
	b.PointerUp(math.NaN(), math.NaN())
	assert.Equal(t, start, p.Pos)
	assert.Nil(t, b.Dragged())
	assert.False(t, p.Dragging)
}

func TestWheelZoom(t *testing.T) {
	b := newBoard(t, 2)
	for i := 0; i < 40; i++ {
		b.Wheel(1)
	}
	assert.Equal(t, 0.5, b.Camera().Zoom)

	b.Wheel(0)
	assert.Equal(t, 0.5, b.Camera().Zoom)

	b.Wheel(-3)
	assert.InDelta(t, 0.6, b.Camera().Zoom, 1e-9)
}

func TestPanMode(t *testing.T) {
	b := newBoard(t, 2)
	spread(b)
	positions := make(map[*piece.Piece]geom.Point)
	for _, p := range b.Pieces() {
		positions[p] = p.Pos
	}

	require.True(t, b.TogglePanMode())
	b.PointerDown(500, 500)
	assert.True(t, b.Panning())
	b.PointerMove(550, 470)
	assert.Equal(t, geom.MakePoint(50, -30), b.Camera().Pan)

	b.PointerMove(10500, 10500)
	assert.Equal(t, geom.MakePoint(200, 200), b.Camera().Pan, "clamped to the margin")
	b.PointerMove(-1e6, -1e6)
	assert.Equal(t, geom.MakePoint(-200, -200), b.Camera().Pan)
	b.PointerUp(0, 0)
	assert.False(t, b.Panning())
	assert.Nil(t, b.Dragged())

	for p, pos := range positions {
		assert.Equal(t, pos, p.Pos)
	}
	assert.False(t, b.TogglePanMode())
}

func TestShuffle(t *testing.T) {
	b := newBoard(t, 3)
	spread(b)
	place(b, 0, 0)
	require.Equal(t, 1, b.Placed())

	b.Shuffle()
	assert.Equal(t, 0, b.Placed())
	for _, p := range b.Pieces() {
		assert.False(t, p.Placed)
		assert.Less(t, p.Pos.X, 1000.0)
	}
}
