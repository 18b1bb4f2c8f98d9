// Package viewport is the single source of truth for graph<->screen
// coordinate transforms: pan, zoom, resize, and fit-to-view all mutate one
// Viewport, and every shader reads the resulting uniform block.
package viewport

import (
	"math"
	"sync"

	"github.com/tomWhiting/heroine-graph-sub003/common"
)

// GPUUniforms mirrors the shader's ViewportUniforms struct field-for-field
// so StructToBytes can upload it directly: its fields take 72 bytes, which
// WGSL's 16-byte struct alignment pads to 80 on the shader side.
// The graph->clip transform is stored column-major with each column
// padded to 16 bytes, matching WGSL's mat3x3<f32> uniform-address-space
// layout; there is no stored inverse matrix since the viewport only pans
// and scales uniformly, so Scale/InvScale alone are enough for shaders
// that need to convert a graph-space extent to screen pixels or back.
type GPUUniforms struct {
	TransformCol0 [4]float32
	TransformCol1 [4]float32
	TransformCol2 [4]float32
	ScreenSize    common.Vec2
	Scale         float32
	InvScale      float32
	_pad          common.Vec2
}

// viewport is the implementation of Viewport.
type viewport struct {
	mu sync.Mutex

	centre common.Vec2
	scale  float32
	minScale, maxScale float32

	width, height float32
	dpr           float32
}

// Viewport owns the current pan/zoom state and the derived graph<->screen
// transforms.
type Viewport interface {
	Centre() common.Vec2
	Scale() float32
	Extent() (w, h float32)
	DevicePixelRatio() float32

	// Resize updates the pixel extent of the viewport, e.g. on window resize.
	Resize(width, height float32)

	// Pan shifts the centre by a delta expressed in graph units.
	Pan(dx, dy float32)

	// PanScreen shifts the centre by a delta expressed in screen pixels,
	// dividing by scale to convert to graph units.
	PanScreen(dx, dy float32)

	// Zoom multiplies the current scale by factor, clamped to
	// [minScale,maxScale], preserving the graph point under the pivot
	// screen pixel.
	Zoom(factor float32, pivotX, pivotY float32)

	// FitToView takes the content AABB {minX,minY,maxX,maxY} from the
	// caller and chooses scale/centre so the content fits with the given padding
	// fraction (e.g. 0.1 = 10% margin).
	FitToView(minX, minY, maxX, maxY, padding float32)

	// ScreenToGraph converts a screen-space point to graph space.
	ScreenToGraph(p common.Vec2) common.Vec2

	// GraphToScreen converts a graph-space point to screen space.
	GraphToScreen(p common.Vec2) common.Vec2

	// GraphToClip returns the combined graph->clip transform matrix,
	// composing graph->screen with screen->clip (Y flipped for WebGPU's
	// NDC convention).
	GraphToClip() common.Mat3

	// Uniforms returns the GPU-ready uniform block for the current state.
	Uniforms() GPUUniforms
}

var _ Viewport = &viewport{}

// New creates a Viewport at the origin with scale 1 and the given pixel
// extent and device pixel ratio.
func New(width, height, devicePixelRatio float32) Viewport {
	return &viewport{
		centre:   common.Vec2{},
		scale:    1,
		minScale: 0.02,
		maxScale: 64,
		width:    width,
		height:   height,
		dpr:      devicePixelRatio,
	}
}

func (v *viewport) Centre() common.Vec2 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.centre
}

func (v *viewport) Scale() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scale
}

func (v *viewport) Extent() (float32, float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

func (v *viewport) DevicePixelRatio() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dpr
}

func (v *viewport) Resize(width, height float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height
}

func (v *viewport) Pan(dx, dy float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.centre = v.centre.Add(common.Vec2{X: dx, Y: dy})
}

func (v *viewport) PanScreen(dx, dy float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.centre = v.centre.Add(common.Vec2{X: dx / v.scale, Y: dy / v.scale})
}

func (v *viewport) Zoom(factor float32, pivotX, pivotY float32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pivot := common.Vec2{X: pivotX, Y: pivotY}
	beforeGraph := v.screenToGraphLocked(pivot)

	newScale := v.scale * factor
	if newScale < v.minScale {
		newScale = v.minScale
	}
	if newScale > v.maxScale {
		newScale = v.maxScale
	}
	v.scale = newScale

	// Re-derive centre so the graph point under the pivot stays fixed on screen.
	afterGraph := v.screenToGraphLocked(pivot)
	v.centre = v.centre.Add(beforeGraph.Sub(afterGraph))
}

func (v *viewport) FitToView(minX, minY, maxX, maxY, padding float32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	contentW := maxX - minX
	contentH := maxY - minY
	if contentW <= 0 {
		contentW = 1
	}
	if contentH <= 0 {
		contentH = 1
	}

	padW := v.width * (1 - padding)
	padH := v.height * (1 - padding)

	sx := padW / contentW
	sy := padH / contentH
	s := sx
	if sy < s {
		s = sy
	}
	if s < v.minScale {
		s = v.minScale
	}
	if s > v.maxScale {
		s = v.maxScale
	}

	v.scale = s
	v.centre = common.Vec2{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
}

func (v *viewport) screenToGraphLocked(p common.Vec2) common.Vec2 {
	half := common.Vec2{X: v.width / 2, Y: v.height / 2}
	return p.Sub(half).Scale(1 / v.scale).Add(v.centre)
}

func (v *viewport) ScreenToGraph(p common.Vec2) common.Vec2 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.screenToGraphLocked(p)
}

func (v *viewport) graphToScreenLocked(p common.Vec2) common.Vec2 {
	half := common.Vec2{X: v.width / 2, Y: v.height / 2}
	return p.Sub(v.centre).Scale(v.scale).Add(half)
}

func (v *viewport) GraphToScreen(p common.Vec2) common.Vec2 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.graphToScreenLocked(p)
}

func (v *viewport) GraphToClip() common.Mat3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.graphToClipLocked()
}

// graphToClipLocked composes graph->screen with screen->clip. Screen space
// has Y increasing downward in pixels [0,h]; clip space is [-1,1] with Y
// increasing upward, so Y is flipped and scaled by 2/h.
func (v *viewport) graphToClipLocked() common.Mat3 {
	graphToScreen := common.Mul3(common.Translation(v.width/2, v.height/2), common.Scaling(v.scale))
	graphToScreen = common.Mul3(graphToScreen, common.Translation(-v.centre.X, -v.centre.Y))

	screenToClip := common.Mat3{
		A: 2 / v.width, B: 0,
		C: 0, D: -2 / v.height,
		Tx: -1, Ty: 1,
	}

	return common.Mul3(screenToClip, graphToScreen)
}

func (v *viewport) Uniforms() GPUUniforms {
	v.mu.Lock()
	defer v.mu.Unlock()

	g2c := v.graphToClipLocked()
	invScale := float32(0)
	if v.scale != 0 {
		invScale = 1 / v.scale
	}

	return GPUUniforms{
		// Column-major: column 0 is (A, C, 0), column 1 is (B, D, 0),
		// column 2 is the translation (Tx, Ty, 1), each padded to vec4.
		TransformCol0: [4]float32{g2c.A, g2c.C, 0, 0},
		TransformCol1: [4]float32{g2c.B, g2c.D, 0, 0},
		TransformCol2: [4]float32{g2c.Tx, g2c.Ty, 1, 0},
		ScreenSize:    common.Vec2{X: v.width, Y: v.height},
		Scale:         v.scale,
		InvScale:      invScale,
	}
}

// ClampScale clamps a scale value to the legal [min,max] zoom range,
// exported so the host façade can validate a requested zoom before
// applying it.
func ClampScale(scale, min, max float32) float32 {
	return float32(math.Max(float64(min), math.Min(float64(max), float64(scale))))
}
