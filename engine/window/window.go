// Package window provides platform windowing and input event handling for
// the graph viewer. It wraps GLFW with a common interface so the rest of
// the engine never imports glfw directly.
package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events,
	// used to drive viewport zoom.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = zoom in)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetPanButtonDownCallback sets the callback for the pan-drag mouse
	// button (left button) being pressed, used to start a viewport pan or
	// node drag depending on what's under the cursor.
	SetPanButtonDownCallback(callback func(x, y int32))

	// SetPanButtonUpCallback sets the callback for the pan-drag mouse
	// button being released.
	SetPanButtonUpCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for
	// creating a WebGPU surface on this window.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// Close closes the window and releases platform resources.
	Close() error

	// ProcessMessages runs the window message loop. Blocks until the
	// window is closed, calling the update callback each iteration.
	ProcessMessages()

	// Width returns the current window client area width in pixels.
	Width() int

	// Height returns the current window client area height in pixels.
	Height() int
}

// engineWindow is the implementation of Window.
type engineWindow struct {
	title string

	maxWidth, maxHeight int
	minWidth, minHeight int
	width, height       int

	internalWindow any

	onUpdate        func()
	onResize        func(width, height int)
	onScroll        func(delta float32)
	onKeyDown       func(keyCode uint32)
	onKeyUp         func(keyCode uint32)
	onPanButtonDown func(x, y int32)
	onPanButtonUp   func(x, y int32)
	onMouseMove     func(x, y int32)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the given options applied over
// defaults, then spawns the underlying platform window.
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:     "HeroineGraph",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func())                  { w.onUpdate = callback }
func (w *engineWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *engineWindow) SetScrollCallback(callback func(delta float32))     { w.onScroll = callback }
func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32))   { w.onKeyDown = callback }
func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32))    { w.onKeyUp = callback }
func (w *engineWindow) SetPanButtonDownCallback(callback func(x, y int32)) { w.onPanButtonDown = callback }
func (w *engineWindow) SetPanButtonUpCallback(callback func(x, y int32))   { w.onPanButtonUp = callback }
func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32))     { w.onMouseMove = callback }

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return platformGetSurfaceDescriptor(w) }
func (w *engineWindow) IsRunning() bool                            { return platformIsRunningCheck(w) }
func (w *engineWindow) Close() error                               { return platformCloseWindow(w) }

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int  { return w.width }
func (w *engineWindow) Height() int { return w.height }
