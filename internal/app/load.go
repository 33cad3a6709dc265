package app

import (
	"context"
	"time"

	"github.com/irfansharif/jigsaw/internal/imageload"
)

type loadResult struct {
	gen    uint64
	source string
	took   time.Duration
	p      *prepared
	err    error
}

// StartLoad decodes the image at path and builds an n×n puzzle from it on a
// background goroutine. The result is installed by the next Poll that sees
// it. Starting another load supersedes this one.
func (g *Game) StartLoad(ctx context.Context, path string, n int) {
	bp := g.params(n)

	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.loading = true
	g.mu.Unlock()

	loadLogger.Printf("load %d: %s (%dx%d)", gen, path, n, n)
	go func() {
		start := time.Now()
		res := &loadResult{gen: gen, source: path}
		img, err := imageload.Open(ctx, path)
		if err == nil {
			res.p, err = g.prepare(ctx, img, bp)
		}
		res.err = err
		res.took = time.Since(start)

		g.mu.Lock()
		defer g.mu.Unlock()
		if gen == g.gen {
			g.pending = res
		}
	}()
}

// Poll installs a finished load. It reports whether a new puzzle was
// installed; a failed load returns its error and leaves the current puzzle
// in place.
func (g *Game) Poll() (bool, error) {
	g.mu.Lock()
	res := g.pending
	g.pending = nil
	current := res != nil && res.gen == g.gen
	if current {
		g.loading = false
	}
	g.mu.Unlock()

	if !current {
		return false, nil
	}
	if res.err != nil {
		loadLogger.Printf("load %d: %s failed after %s: %v", res.gen, res.source, res.took, res.err)
		return false, res.err
	}
	loadLogger.Printf("load %d: %s ready in %s", res.gen, res.source, res.took)
	g.install(res.p)
	return true, nil
}

// Loading reports whether a StartLoad is still waiting to be installed.
func (g *Game) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}
