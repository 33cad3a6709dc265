// Package app ties a board to its source image, sprites, timer and load
// lifecycle. It is the surface the window layer in cmd talks to.
package app

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/google/uuid"

	"github.com/irfansharif/jigsaw/internal/board"
	"github.com/irfansharif/jigsaw/internal/clock"
	"github.com/irfansharif/jigsaw/internal/geom"
	"github.com/irfansharif/jigsaw/internal/imageload"
	"github.com/irfansharif/jigsaw/internal/palette"
	"github.com/irfansharif/jigsaw/internal/render"
)

var loadLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("JIGSAW_DEBUG_LOAD") == "1" {
		loadLogger = log.New(os.Stdout, "[load] ", log.Ltime|log.Lmsgprefix)
	}
}

// Options configures a Game.
type Options struct {
	SurfaceW, SurfaceH float64
	Seed               int64
	HitMode            board.HitMode
	Palette            *palette.Palette // nil picks a random background from Seed
	Resolution         float64          // sprite pixels per puzzle unit; 0 for render.DefaultResolution
	Now                func() time.Time // nil for time.Now
}

// Game is one play session: the installed board and everything derived from
// its image. Apart from StartLoad's background work, all methods must be
// called from the same goroutine (the window's main thread).
type Game struct {
	opts    Options
	rng     *rand.Rand
	clock   *clock.Clock
	painter *render.Painter

	board     *board.Board
	image     *imageload.Image
	session   uuid.UUID
	reference *reference

	mu      sync.Mutex
	gen     uint64      // generation of the latest StartLoad
	pending *loadResult // finished load waiting for Poll
	loading bool
}

// buildParams captures everything prepare needs, read on the calling goroutine.
type buildParams struct {
	n        int
	seed     int64
	surfaceW float64
	surfaceH float64
	pal      palette.Palette
}

func (g *Game) params(n int) buildParams {
	return buildParams{
		n:        n,
		seed:     g.rng.Int63(),
		surfaceW: g.opts.SurfaceW,
		surfaceH: g.opts.SurfaceH,
		pal:      g.painter.Palette,
	}
}

// prepared is a fully built board that has not been installed yet.
type prepared struct {
	board   *board.Board
	image   *imageload.Image
	sprites *render.SpriteCache
}

// New returns a game with no puzzle installed.
func New(opts Options) *Game {
	g := &Game{
		opts:  opts,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		clock: clock.New(opts.Now),
	}
	pal := palette.Random(rand.New(rand.NewSource(opts.Seed)))
	if opts.Palette != nil {
		pal = *opts.Palette
	}
	g.painter = render.NewPainter(pal, render.NewSpriteCache(opts.Resolution))
	return g
}

// InitPuzzle decodes an image from r and installs a fresh n×n puzzle made
// from it. On error the previously installed puzzle, if any, stays.
func (g *Game) InitPuzzle(ctx context.Context, r io.Reader, n int) error {
	img, err := imageload.Decode(ctx, r, "reader")
	if err != nil {
		return err
	}
	p, err := g.prepare(ctx, img, g.params(n))
	if err != nil {
		return err
	}
	g.install(p)
	return nil
}

// NewGame rebuilds the puzzle from the current image with an n×n grid.
func (g *Game) NewGame(n int) error {
	if g.image == nil {
		return fmt.Errorf("new game: no image loaded")
	}
	p, err := g.prepare(context.Background(), g.image, g.params(n))
	if err != nil {
		return err
	}
	g.install(p)
	return nil
}

// prepare builds a board and its sprites without touching the installed
// state, so it may run on any goroutine.
func (g *Game) prepare(ctx context.Context, img *imageload.Image, bp buildParams) (*prepared, error) {
	w, h := img.Size()
	var b *board.Board
	b, err := board.New(board.Options{
		Grid:       bp.n,
		ImageW:     w,
		ImageH:     h,
		SurfaceW:   bp.surfaceW,
		SurfaceH:   bp.surfaceH,
		Rand:       rand.New(rand.NewSource(bp.seed)),
		HitMode:    g.opts.HitMode,
		OnComplete: func() { g.completed(b) },
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", img.Source, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sprites := render.NewSpriteCache(g.opts.Resolution)
	if err := sprites.Build(b, img, bp.pal); err != nil {
		return nil, fmt.Errorf("%s: %w", img.Source, err)
	}
	return &prepared{board: b, image: img, sprites: sprites}, nil
}

// install makes p the current puzzle and restarts the timer.
func (g *Game) install(p *prepared) {
	g.board = p.board
	g.painter.Sprites = p.sprites
	if g.image != p.image {
		g.reference = nil
	}
	g.image = p.image
	g.session = uuid.New()
	g.clock.Start()

	w, h := p.image.Size()
	loadLogger.Printf("session %s: %dx%d puzzle from %s (%s, %dx%d), sprites in %.1fms",
		g.session, p.board.Grid(), p.board.Grid(), p.image.Source, p.image.Format, w, h,
		p.sprites.Stats().BuildTimeMs)
}

func (g *Game) completed(b *board.Board) {
	if b != g.board {
		return
	}
	g.clock.Stop()
	loadLogger.Printf("session %s: solved in %s", g.session, clock.FormatTime(g.clock.Seconds()))
}

// Board returns the installed board, or nil.
func (g *Game) Board() *board.Board { return g.board }

// Image returns the installed source image, or nil.
func (g *Game) Image() image.Image {
	if g.image == nil {
		return nil
	}
	return g.image.Image
}

// SessionID identifies the installed puzzle; empty before the first install.
func (g *Game) SessionID() string {
	if g.board == nil {
		return ""
	}
	return g.session.String()
}

// Palette returns the colors the game paints with.
func (g *Game) Palette() palette.Palette { return g.painter.Palette }

// HandlePointerDown forwards a press in surface coordinates.
func (g *Game) HandlePointerDown(x, y float64) {
	if g.board != nil {
		g.board.PointerDown(x, y)
	}
}

// HandlePointerMove forwards a pointer move in surface coordinates.
func (g *Game) HandlePointerMove(x, y float64) {
	if g.board != nil {
		g.board.PointerMove(x, y)
	}
}

// HandlePointerUp forwards a release in surface coordinates.
func (g *Game) HandlePointerUp(x, y float64) {
	if g.board != nil {
		g.board.PointerUp(x, y)
	}
}

// HandleWheel zooms: negative deltaY zooms in.
func (g *Game) HandleWheel(deltaY float64) {
	if g.board != nil {
		g.board.Wheel(deltaY)
	}
}

// TogglePanMode flips pan mode and returns the new state.
func (g *Game) TogglePanMode() bool {
	if g.board == nil {
		return false
	}
	return g.board.TogglePanMode()
}

// PanMode reports whether pointer drags pan the camera.
func (g *Game) PanMode() bool {
	return g.board != nil && g.board.PanMode()
}

// ZoomIn and ZoomOut step the zoom about the surface center.
func (g *Game) ZoomIn()  { g.HandleWheel(-1) }
func (g *Game) ZoomOut() { g.HandleWheel(1) }

// ResetCamera returns to zoom 1 with no pan.
func (g *Game) ResetCamera() {
	if g.board != nil {
		g.board.Camera().Reset()
	}
}

// Shuffle rescatters the pieces and restarts the timer. A solved puzzle is
// rebuilt instead, with fresh edges.
func (g *Game) Shuffle() error {
	if g.board == nil {
		return nil
	}
	if g.board.Complete() {
		return g.NewGame(g.board.Grid())
	}
	g.board.Shuffle()
	g.clock.Start()
	loadLogger.Printf("session %s: shuffled", g.session)
	return nil
}

// Resize tells the game the drawing surface changed size. The next puzzle is
// fitted to the new size; the installed one keeps its geometry.
func (g *Game) Resize(w, h float64) {
	if !(w > 0 && h > 0) {
		return
	}
	g.opts.SurfaceW, g.opts.SurfaceH = w, h
	if g.board != nil {
		g.board.Resize(w, h)
	}
}

// Progress is the percentage of placed pieces, 0 with no puzzle.
func (g *Game) Progress() int {
	if g.board == nil {
		return 0
	}
	return g.board.Progress()
}

// IsComplete reports whether the installed puzzle has been solved.
func (g *Game) IsComplete() bool {
	return g.board != nil && g.board.Complete()
}

// ElapsedTime is the number of whole seconds on the timer.
func (g *Game) ElapsedTime() int { return g.clock.Seconds() }

// FormatTime renders seconds as MM:SS.
func (g *Game) FormatTime(seconds int) string { return clock.FormatTime(seconds) }

// Paint draws the installed puzzle, and the reference thumbnail when shown.
func (g *Game) Paint(s render.Surface) error {
	if g.board == nil {
		s.ClearWithColor(gg.FromColor(g.painter.Palette.Background))
		return nil
	}
	if err := g.painter.Paint(s, g.board); err != nil {
		return err
	}
	return g.paintReference(s)
}

// PanBy moves the camera by a surface-space offset.
func (g *Game) PanBy(dx, dy float64) {
	if g.board != nil {
		g.board.Camera().PanBy(geom.MakePoint(dx, dy))
	}
}

// ToggleHighlight flips outlining of placed pieces and returns the new state.
func (g *Game) ToggleHighlight() bool {
	g.painter.HighlightPlaced = !g.painter.HighlightPlaced
	return g.painter.HighlightPlaced
}

// PaintStats returns the timing of the last Paint.
func (g *Game) PaintStats() render.Stats { return g.painter.Stats() }
