// Package render draws a board.
//
// Frames are composed in two steps:
// 1. The Painter draws the board with gg onto a CPU surface, from sprites
//    pre-rendered once per puzzle by the SpriteCache.
// 2. The Presenter uploads the finished frame to an OpenGL texture and draws
//    it as a single screen-sized quad.
package render

import (
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gg"

	"github.com/irfansharif/jigsaw/internal/geom"
)

var renderLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("JIGSAW_DEBUG_RENDER") == "1" {
		renderLogger = log.New(os.Stdout, "[render] ", log.Ltime|log.Lmsgprefix)
		gg.SetLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}

// Stats tracks rendering performance metrics.
type Stats struct {
	LastPaintTimeMs  float64 // time spent in the last Paint() call in milliseconds
	LastUploadTimeUs float64 // time spent in the last Upload() call in microseconds
	LastDrawTimeUs   float64 // time spent in the last Draw() call in microseconds
	UploadedBytes    int     // size of the last uploaded frame
}

// screenToNDC maps framebuffer pixels (origin top-left, y down) to OpenGL
// normalized device coordinates.
func screenToNDC(w, h int) geom.Affine {
	return geom.MakeAffine(
		2.0/float64(w), 0, -1,
		0, -2.0/float64(h), 1,
	)
}

// affineToMatrix4 converts an affine transform to OpenGL 4x4 matrix format.
func affineToMatrix4(transform geom.Affine) [16]float32 {
	return [16]float32{
		float32(transform.A), float32(transform.D), 0, 0,
		float32(transform.B), float32(transform.E), 0, 0,
		0, 0, 1, 0,
		float32(transform.C), float32(transform.F), 0, 1,
	}
}
