package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/jigsaw/internal/board"
	"github.com/irfansharif/jigsaw/internal/geom"
	"github.com/irfansharif/jigsaw/internal/imageload"
)

type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time          { return f.t }
func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, w, h), 0o644))
	return path
}

func newGame(t *testing.T) (*Game, *fakeTime) {
	t.Helper()
	ft := &fakeTime{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := New(Options{
		SurfaceW:   1000,
		SurfaceH:   1000,
		Seed:       7,
		Resolution: 0.1,
		Now:        ft.now,
	})
	return g, ft
}

func initGame(t *testing.T, n int) (*Game, *fakeTime) {
	t.Helper()
	g, ft := newGame(t)
	require.NoError(t, g.InitPuzzle(context.Background(), bytes.NewReader(encodePNG(t, 120, 90)), n))
	return g, ft
}

// solve places every piece in row-major order, which keeps each new piece
// connected to the assembly.
func solve(b *board.Board) {
	n := b.Grid()
	for i, p := range b.Pieces() {
		p.Pos = geom.MakePoint(5000+float64(i)*1000, 5000)
	}
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			p := b.PieceAt(row, col)
			half := geom.MakePoint(p.W/2, p.H/2)
			from, to := p.Pos.Add(half), p.Target.Add(half)
			b.PointerDown(from.X, from.Y)
			b.PointerUp(to.X, to.Y)
		}
	}
}

func TestInitPuzzle(t *testing.T) {
	g, _ := initGame(t, 3)

	b := g.Board()
	require.NotNil(t, b)
	assert.Equal(t, 3, b.Grid())
	assert.Len(t, b.Pieces(), 9)
	assert.Equal(t, 0, g.Progress())
	assert.False(t, g.IsComplete())
	assert.Equal(t, image.Rect(0, 0, 120, 90), g.Image().Bounds())

	_, err := uuid.Parse(g.SessionID())
	assert.NoError(t, err)
}

func TestInitPuzzleFailureKeepsBoard(t *testing.T) {
	g, _ := initGame(t, 3)
	b, session := g.Board(), g.SessionID()

	err := g.InitPuzzle(context.Background(), bytes.NewReader([]byte("not an image")), 3)
	require.Error(t, err)
	var loadErr *imageload.ImageLoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, image.ErrFormat)

	err = g.InitPuzzle(context.Background(), bytes.NewReader(encodePNG(t, 10, 10)), 1)
	require.Error(t, err)

	assert.Same(t, b, g.Board())
	assert.Equal(t, session, g.SessionID())
}

func TestInitPuzzleCancelled(t *testing.T) {
	g, _ := newGame(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.InitPuzzle(ctx, bytes.NewReader(encodePNG(t, 10, 10)), 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, g.Board())
	assert.Empty(t, g.SessionID())
}

func TestNewGame(t *testing.T) {
	g, _ := newGame(t)
	require.Error(t, g.NewGame(3), "no image yet")

	g, _ = initGame(t, 3)
	b, session := g.Board(), g.SessionID()

	require.NoError(t, g.NewGame(5))
	assert.NotSame(t, b, g.Board())
	assert.NotEqual(t, session, g.SessionID())
	assert.Equal(t, 5, g.Board().Grid())
	assert.Len(t, g.Board().Pieces(), 25)
}

func TestSolveStopsClock(t *testing.T) {
	g, ft := initGame(t, 3)
	ft.advance(65 * time.Second)
	assert.Equal(t, 65, g.ElapsedTime())

	solve(g.Board())
	require.True(t, g.IsComplete())
	assert.Equal(t, 100, g.Progress())

	ft.advance(time.Hour)
	assert.Equal(t, 65, g.ElapsedTime())
	assert.Equal(t, "01:05", g.FormatTime(g.ElapsedTime()))
}

func TestShuffle(t *testing.T) {
	t.Run("in progress", func(t *testing.T) {
		g, ft := initGame(t, 3)
		b := g.Board()
		p := b.PieceAt(0, 0)
		p.Pos = geom.MakePoint(5000, 5000)
		half := geom.MakePoint(p.W/2, p.H/2)
		from, to := p.Pos.Add(half), p.Target.Add(half)
		g.HandlePointerDown(from.X, from.Y)
		g.HandlePointerMove(to.X, to.Y)
		g.HandlePointerUp(to.X, to.Y)
		require.True(t, p.Placed)

		ft.advance(30 * time.Second)
		require.NoError(t, g.Shuffle())
		assert.Same(t, b, g.Board())
		assert.Equal(t, 0, g.Progress())
		assert.Equal(t, 0, g.ElapsedTime())
	})
	t.Run("solved puzzle is rebuilt", func(t *testing.T) {
		g, _ := initGame(t, 2)
		b := g.Board()
		solve(b)
		require.True(t, g.IsComplete())

		require.NoError(t, g.Shuffle())
		assert.NotSame(t, b, g.Board())
		assert.False(t, g.IsComplete())
		assert.Equal(t, 2, g.Board().Grid())
	})
}

func TestCameraControls(t *testing.T) {
	g, _ := initGame(t, 2)
	cam := g.Board().Camera()

	g.ZoomIn()
	assert.InDelta(t, 1.1, cam.Zoom, 1e-9)
	g.ZoomOut()
	g.ZoomOut()
	assert.InDelta(t, 0.9, cam.Zoom, 1e-9)

	assert.True(t, g.TogglePanMode())
	assert.True(t, g.PanMode())
	g.HandlePointerDown(100, 100)
	g.HandlePointerMove(150, 120)
	g.HandlePointerUp(150, 120)
	assert.NotEqual(t, geom.Point{}, cam.Pan)
	assert.False(t, g.TogglePanMode())

	g.ResetCamera()
	assert.Equal(t, 1.0, cam.Zoom)
	assert.Equal(t, geom.Point{}, cam.Pan)

	g.ZoomIn()
	before := cam.Pan
	g.PanBy(-30, -40)
	assert.InDelta(t, before.X-30, cam.Pan.X, 1e-9)
	assert.InDelta(t, before.Y-40, cam.Pan.Y, 1e-9)
}

func TestToggleHighlight(t *testing.T) {
	g, _ := initGame(t, 2)
	assert.False(t, g.ToggleHighlight(), "placed pieces start highlighted")
	require.NoError(t, g.Paint(gg.NewContext(200, 200)))
	assert.Greater(t, g.PaintStats().LastPaintTimeMs, -1.0)
	assert.True(t, g.ToggleHighlight())
}

func TestWithoutPuzzle(t *testing.T) {
	g, _ := newGame(t)

	g.HandlePointerDown(1, 1)
	g.HandlePointerMove(2, 2)
	g.HandlePointerUp(2, 2)
	g.HandleWheel(-1)
	g.ResetCamera()
	assert.False(t, g.TogglePanMode())
	assert.NoError(t, g.Shuffle())
	assert.Equal(t, 0, g.Progress())
	assert.False(t, g.IsComplete())
	assert.Nil(t, g.Reference())
	assert.False(t, g.ToggleReference())

	dc := gg.NewContext(50, 50)
	assert.NoError(t, g.Paint(dc))
}

func TestReference(t *testing.T) {
	tests := []struct {
		name       string
		imgW, imgH int
		want       image.Rectangle
	}{
		{name: "landscape", imgW: 480, imgH: 240, want: image.Rect(0, 0, 240, 120)},
		{name: "portrait", imgW: 100, imgH: 600, want: image.Rect(0, 0, 40, 240)},
		{name: "small images are not enlarged", imgW: 100, imgH: 50, want: image.Rect(0, 0, 100, 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newGame(t)
			require.NoError(t, g.InitPuzzle(context.Background(), bytes.NewReader(encodePNG(t, tt.imgW, tt.imgH)), 2))

			ref := g.Reference()
			require.NotNil(t, ref)
			assert.Equal(t, tt.want, ref.Rect)
			assert.Same(t, ref, g.Reference(), "cached")

			assert.False(t, g.ReferenceShown())
			assert.True(t, g.ToggleReference())
			assert.True(t, g.ReferenceShown())

			dc := gg.NewContext(1000, 1000)
			require.NoError(t, g.Paint(dc))
		})
	}
}

func TestReferenceFollowsImage(t *testing.T) {
	g, _ := initGame(t, 2)
	ref := g.Reference()
	require.NoError(t, g.NewGame(3))
	assert.Same(t, ref, g.Reference(), "same image")

	require.NoError(t, g.InitPuzzle(context.Background(), bytes.NewReader(encodePNG(t, 60, 60)), 2))
	assert.Equal(t, image.Rect(0, 0, 60, 60), g.Reference().Rect)
}

func pollUntilInstalled(t *testing.T, g *Game) {
	t.Helper()
	require.Eventually(t, func() bool {
		ok, err := g.Poll()
		assert.NoError(t, err)
		return ok
	}, 10*time.Second, 5*time.Millisecond)
}

func TestStartLoad(t *testing.T) {
	g, _ := newGame(t)
	path := writePNG(t, 80, 60)

	g.StartLoad(context.Background(), path, 3)
	assert.True(t, g.Loading())
	pollUntilInstalled(t, g)

	assert.False(t, g.Loading())
	require.NotNil(t, g.Board())
	assert.Equal(t, 3, g.Board().Grid())
	w, h := g.Board().ImageSize()
	assert.Equal(t, [2]int{80, 60}, [2]int{w, h})

	ok, err := g.Poll()
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestStartLoadSupersedes(t *testing.T) {
	g, _ := newGame(t)
	first, second := writePNG(t, 90, 30), writePNG(t, 30, 90)

	g.StartLoad(context.Background(), first, 2)
	g.StartLoad(context.Background(), second, 3)
	pollUntilInstalled(t, g)

	w, h := g.Board().ImageSize()
	assert.Equal(t, [2]int{30, 90}, [2]int{w, h})
	assert.Equal(t, 3, g.Board().Grid())
	assert.False(t, g.Loading())
}

func TestStartLoadFailure(t *testing.T) {
	g, _ := initGame(t, 2)
	b := g.Board()

	g.StartLoad(context.Background(), filepath.Join(t.TempDir(), "missing.png"), 3)
	var err error
	require.Eventually(t, func() bool {
		var ok bool
		ok, err = g.Poll()
		assert.False(t, ok)
		return err != nil
	}, 10*time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Same(t, b, g.Board())
	assert.False(t, g.Loading())
}
