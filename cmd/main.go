package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gg"

	"github.com/irfansharif/jigsaw/internal/app"
	"github.com/irfansharif/jigsaw/internal/config"
	"github.com/irfansharif/jigsaw/internal/palette"
	"github.com/irfansharif/jigsaw/internal/render"
)

const logFlags = log.Ltime | log.Lshortfile

// Size of the image played when none is configured.
const generatedW, generatedH = 960, 720

var runtimeLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	// OpenGL contexts are tied to specific OS threads - let's pin to just one.
	runtime.LockOSThread()
	log.SetFlags(logFlags)

	if os.Getenv("JIGSAW_DEBUG_RUNTIME") == "1" {
		runtimeLogger = log.New(os.Stdout, "[runtime] ", log.Ltime|log.Lmsgprefix)
	}
}

func makeTitle(game *app.Game) string {
	if game.Board() == nil {
		if game.Loading() {
			return "Jigsaw (loading)"
		}
		return "Jigsaw"
	}
	status := []string{
		fmt.Sprintf("%d%%", game.Progress()),
		game.FormatTime(game.ElapsedTime()),
	}
	switch {
	case game.Loading():
		status = append(status, "loading")
	case game.IsComplete():
		status = append(status, "solved")
	case game.PanMode():
		status = append(status, "pan mode")
	}
	return fmt.Sprintf("Jigsaw (%s)", strings.Join(status, ", "))
}

// generated encodes a gradient to play with when no image is configured.
func generated(seed int64, cells int) (io.Reader, error) {
	img := palette.Gradient(rand.New(rand.NewSource(seed)), generatedW, generatedH, cells)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &buf, nil
}

func main() {
	cfg, err := config.Load(os.Args[1:], nil)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()

	// Configure GLFW window hints - use OpenGL 4.1.
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, "Jigsaw", nil, nil)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		log.Fatalf("Failed to initialize OpenGL: %v", err)
	}

	cw, ch := window.GetFramebufferSize()
	game := app.New(app.Options{
		SurfaceW: float64(cw),
		SurfaceH: float64(ch),
		Seed:     cfg.Seed,
		HitMode:  cfg.Hit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Image != "" {
		game.StartLoad(ctx, cfg.Image, cfg.Grid)
	} else {
		r, err := generated(cfg.Seed, 2*cfg.Grid)
		if err != nil {
			log.Fatalf("Failed to generate image: %v", err)
		}
		if err := game.InitPuzzle(ctx, r, cfg.Grid); err != nil {
			log.Fatalf("Failed to build puzzle: %v", err)
		}
	}

	surface := gg.NewContext(cw, ch)
	defer func() { _ = surface.Close() }()
	presenter, err := render.NewPresenter()
	if err != nil {
		log.Fatalf("Failed to set up presenter: %v", err)
	}
	defer presenter.Delete()

	// Initialize event handlers.
	eventHandlers := NewEventHandlers(ctx, window, game, cfg.Grid)

	frameCount, frameTimeSum, paints := 0, 0.0, 0
	lastFPSUpdate := time.Now()
	title := ""

	// Main loop.
	for !window.ShouldClose() {
		frameStart := time.Now()

		if installed, err := game.Poll(); err != nil {
			log.Printf("Failed to load image: %v", err)
			eventHandlers.dirty = true
		} else if installed {
			eventHandlers.dirty = true
		}
		eventHandlers.handleContinuousPanning()

		w, h := window.GetFramebufferSize()
		if w > 0 && h > 0 && (w != surface.Width() || h != surface.Height()) {
			if err := surface.Resize(w, h); err != nil {
				log.Fatalf("Failed to resize surface to %dx%d: %v", w, h, err)
			}
			eventHandlers.dirty = true
		}
		if eventHandlers.dirty {
			if err := game.Paint(surface); err != nil {
				log.Fatalf("Failed to paint: %v", err)
			}
			frame, ok := surface.Image().(*image.RGBA)
			if !ok {
				log.Fatalf("Unexpected surface image %T", surface.Image())
			}
			presenter.Upload(frame)
			eventHandlers.dirty = false
			paints++
		}

		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(1, 1, 1, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		presenter.Draw(w, h)
		window.SwapBuffers()
		glfw.PollEvents()

		if t := makeTitle(game); t != title {
			window.SetTitle(t)
			title = t
		}

		frameTime := time.Since(frameStart).Seconds() * 1000.0 // ms
		frameTimeSum += frameTime

		frameCount++
		now := time.Now()
		if now.Sub(lastFPSUpdate) >= time.Second {
			fps := float64(frameCount) / now.Sub(lastFPSUpdate).Seconds()
			avgFrameTime := frameTimeSum / float64(frameCount)
			paintStats, presentStats := game.PaintStats(), presenter.Stats()

			runtimeLogger.Println("=== Performance statistics ===")
			runtimeLogger.Printf("Frame rate:     %.1f FPS (%.2f ms/frame, %d repaints)", fps, avgFrameTime, paints)
			runtimeLogger.Printf("Paint time:     %.2f ms (last paint)", paintStats.LastPaintTimeMs)
			runtimeLogger.Printf("Present time:   %.2f µs (last upload, %.2f MiB), %.2f µs (last draw)",
				presentStats.LastUploadTimeUs, float64(presentStats.UploadedBytes)/(1024.0*1024.0), presentStats.LastDrawTimeUs)
			if b := game.Board(); b != nil {
				runtimeLogger.Printf("Puzzle:         %s, %dx%d, %d/%d placed, %s",
					game.SessionID(), b.Grid(), b.Grid(), b.Placed(), len(b.Pieces()), game.FormatTime(game.ElapsedTime()))
			}
			runtimeLogger.Println("==============================")

			frameCount, frameTimeSum, paints = 0, 0.0, 0
			lastFPSUpdate = now
		}
	}
}
