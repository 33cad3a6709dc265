package main

import (
	"context"
	"log"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irfansharif/jigsaw/internal/app"
	"github.com/irfansharif/jigsaw/internal/config"
)

const repeatInterval = 125 * time.Millisecond // time between successive pans when pressed down
const basePanDistance = 100.0

// EventHandlers forwards window input to the game.
type EventHandlers struct {
	ctx    context.Context
	window *glfw.Window
	game   *app.Game
	grid   int // size of the next puzzle from a dropped file

	// dirty is set whenever the frame needs repainting.
	dirty bool

	// J/K/H/L allow panning across through keypresses. They also do so
	// continuously if held.
	panKeyHeld                   bool
	panDirectionX, panDirectionY float64
	lastPanTime                  time.Time
}

// NewEventHandlers creates a new event handlers manager.
func NewEventHandlers(ctx context.Context, window *glfw.Window, game *app.Game, grid int) *EventHandlers {
	eh := &EventHandlers{
		ctx:         ctx,
		window:      window,
		game:        game,
		grid:        grid,
		dirty:       true,
		lastPanTime: time.Now(),
	}
	eh.SetupCallbacks(window)
	return eh
}

// SetupCallbacks configures all GLFW event callbacks.
func (eh *EventHandlers) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(wnd *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleKey(key, action, mods)
	})
	window.SetMouseButtonCallback(func(wnd *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleMouseButton(button, action) // pick up, drop, pan
	})
	window.SetCursorPosCallback(func(wnd *glfw.Window, xpos, ypos float64) {
		eh.handleCursorPos(xpos, ypos) // drag
	})
	window.SetScrollCallback(func(wnd *glfw.Window, _, yoff float64) {
		eh.game.HandleWheel(-yoff) // scrolling up zooms in
		eh.dirty = true
	})
	window.SetFramebufferSizeCallback(func(wnd *glfw.Window, newW, newH int) {
		eh.game.Resize(float64(newW), float64(newH))
		eh.dirty = true
	})
	window.SetDropCallback(func(wnd *glfw.Window, names []string) {
		if len(names) == 0 {
			return
		}
		eh.game.StartLoad(eh.ctx, names[0], eh.grid)
	})
}

// toSurface converts window coordinates to framebuffer pixels, the space the
// board works in.
func (eh *EventHandlers) toSurface(xpos, ypos float64) (x, y float64) {
	scaleX, scaleY := eh.window.GetContentScale()
	return xpos * float64(scaleX), ypos * float64(scaleY)
}

// handleKey handles keyboard input events.
func (eh *EventHandlers) handleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	switch key {
	case glfw.KeyJ:
		eh.handlePanKeys(action, 0 /*dx*/, -1 /*dy*/) // pan down
		return
	case glfw.KeyK:
		eh.handlePanKeys(action, 0 /*dx*/, 1 /*dy*/) // pan up
		return
	case glfw.KeyH:
		eh.handlePanKeys(action, 1 /*dx*/, 0 /*dy*/) // pan right
		return
	case glfw.KeyL:
		eh.handlePanKeys(action, -1 /*dx*/, 0 /*dy*/) // pan left
		return
	}
	if action != glfw.Press {
		return
	}

	// Number keys pick the difficulty.
	if key >= glfw.Key2 && key <= glfw.Key0+config.MaxGrid {
		n := int(key - glfw.Key0)
		if err := eh.game.NewGame(n); err != nil {
			log.Printf("Failed to start a %dx%d game: %v", n, n, err)
			return
		}
		eh.grid = n
		eh.dirty = true
		return
	}

	switch key {
	case glfw.KeyP:
		eh.game.TogglePanMode()
	case glfw.KeyS:
		if err := eh.game.Shuffle(); err != nil {
			log.Printf("Failed to shuffle: %v", err)
		}
	case glfw.KeyR:
		eh.game.ToggleReference()
	case glfw.KeyG:
		eh.game.ToggleHighlight()
	case glfw.KeyEscape:
		eh.game.ResetCamera()
	case glfw.KeyEqual:
		if (mods & glfw.ModSuper) == 0 {
			return
		}
		eh.game.ZoomIn()
	case glfw.KeyMinus:
		if (mods & glfw.ModSuper) == 0 {
			return
		}
		eh.game.ZoomOut()
	default:
		return
	}
	eh.dirty = true
}

// handlePanKeys handles j/k/h/l key presses, and also releases for
// continuous panning.
func (eh *EventHandlers) handlePanKeys(action glfw.Action, dx, dy float64) {
	switch action {
	case glfw.Press:
		eh.panKeyHeld = true
		eh.panDirectionX = dx
		eh.panDirectionY = dy
		eh.performPan(dx, dy)
		eh.lastPanTime = time.Now()

	case glfw.Release:
		eh.panKeyHeld = false

	case glfw.Repeat:
		// Ignore repeat events - we handle continuous panning ourselves to
		// ensure consistent timing.
	}
}

// performPan executes a single pan operation.
func (eh *EventHandlers) performPan(dx, dy float64) {
	eh.game.PanBy(dx*basePanDistance, dy*basePanDistance)
	eh.dirty = true
}

// handleContinuousPanning handles continuous panning while pan keys are held.
func (eh *EventHandlers) handleContinuousPanning() {
	if !eh.panKeyHeld {
		return // nothing to do
	}

	now := time.Now()
	if now.Sub(eh.lastPanTime) < repeatInterval {
		return // not enough time has passed since the last pan
	}

	eh.performPan(eh.panDirectionX, eh.panDirectionY)
	eh.lastPanTime = now
}

// handleMouseButton picks up and drops pieces, or grabs the view in pan mode.
func (eh *EventHandlers) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return // nothing to do
	}

	x, y := eh.toSurface(eh.window.GetCursorPos())
	switch action {
	case glfw.Press:
		eh.game.HandlePointerDown(x, y)
	case glfw.Release:
		eh.game.HandlePointerUp(x, y)
	default:
		return
	}
	eh.dirty = true
}

// handleCursorPos handles mouse movement for dragging and panning.
func (eh *EventHandlers) handleCursorPos(xpos, ypos float64) {
	b := eh.game.Board()
	if b == nil || (b.Dragged() == nil && !b.Panning()) {
		return // nothing is following the pointer
	}
	eh.game.HandlePointerMove(eh.toSurface(xpos, ypos))
	eh.dirty = true
}
