package heroine

import "github.com/tomWhiting/heroine-graph-sub003/common"

// Resize updates both the renderer's surface configuration and the
// viewport's screen extent, then fires viewport:changed.
func (e *engine) Resize(width, height int) {
	e.mu.Lock()
	e.vp.Resize(float32(width), float32(height))
	e.renderer.Resize(width, height)
	e.mu.Unlock()
	e.emit(EventViewportChanged, nil)
}

// Pan translates the viewport in graph-space units.
func (e *engine) Pan(dx, dy float32) {
	e.mu.Lock()
	e.vp.Pan(dx, dy)
	e.mu.Unlock()
	e.emit(EventViewportChanged, nil)
}

// Zoom scales the viewport around a screen-space pivot.
func (e *engine) Zoom(factor, pivotX, pivotY float32) {
	e.mu.Lock()
	e.vp.Zoom(factor, pivotX, pivotY)
	e.mu.Unlock()
	e.emit(EventViewportChanged, nil)
}

// FitToView frames the given graph-space bounding box with padding.
func (e *engine) FitToView(minX, minY, maxX, maxY, padding float32) {
	e.mu.Lock()
	e.vp.FitToView(minX, minY, maxX, maxY, padding)
	e.mu.Unlock()
	e.emit(EventViewportChanged, nil)
}

func (e *engine) ScreenToGraph(x, y float32) common.Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vp.ScreenToGraph(common.Vec2{X: x, Y: y})
}

func (e *engine) GraphToScreen(x, y float32) common.Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vp.GraphToScreen(common.Vec2{X: x, Y: y})
}
