// Package heroine is the Public Surface (spec §6.1): one façade object a
// host constructs, feeds graph data and configuration, and listens to
// for events, without ever touching the renderer, simulation driver, or
// graph store directly. It owns the tick/render goroutine pair in the
// same shape as the teacher engine's handleEngine/handleRender split,
// generalized from a scene-graph renderer to the Simulation Driver and
// Layer Compositor.
package heroine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tomWhiting/heroine-graph-sub003/algorithm"
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/compositor"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/window"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
	"github.com/tomWhiting/heroine-graph-sub003/simulation"
	"github.com/tomWhiting/heroine-graph-sub003/valuestream"
	"github.com/tomWhiting/heroine-graph-sub003/viewport"
)

// Engine is the host façade (spec §6.1). Every method below is safe to
// call from any goroutine; internal state is protected by a single
// mutex, mirroring the teacher engine's own struct-level locking.
type Engine interface {
	// Load replaces the entire graph and returns the number of dropped
	// nodes/edges (duplicate keys, edges referencing unknown nodes).
	Load(nodes []graphstore.Node, nodeKeys []graphstore.NodeKey, edges []graphstore.Edge) (droppedNodes, droppedEdges int, err error)

	AddNodes(nodes []graphstore.Node) ([]graphstore.NodeIndex, error)
	AddEdges(edges []graphstore.Edge) ([]int64, error)
	RemoveNodes(keys []graphstore.NodeKey) error
	RemoveEdges(indices []graphstore.EdgeIndex) error

	SetNodePositions(xs, ys []float32) error
	SetNodeColors(colors [][4]uint8) error
	SetNodeSizes(radii []float32) error
	SetEdgeColors(colors [][4]uint8) error
	SetEdgeWidths(widths []float32) error
	SetEdgeCurvatures(curvatures []float32) error

	SetForceAlgorithm(id string) error
	SetForceConfig(cfg algorithm.ForceConfig) error

	Start() error
	Stop() error
	Restart() error

	Compositor() *compositor.Compositor
	Viewport() viewport.Viewport
	Store() graphstore.Store

	EnableHeatmap(cfg HeatmapConfig) error
	DisableHeatmap()
	SetHeatmapConfig(cfg HeatmapConfig) error

	EnableContour(cfg ContourConfig)
	DisableContour()
	SetContourConfig(cfg ContourConfig)

	EnableMetaball(cfg MetaballConfig)
	DisableMetaball()
	SetMetaballConfig(cfg MetaballConfig)

	EnableLabels()
	DisableLabels()

	SetHeatmapDataSource(source string) error
	SetContourDataSource(source string) error

	DefineLayer(layer *compositor.Layer)
	RemoveLayer(name string)
	SetLayerVisible(name string, visible bool)
	GetLayerVisibility(name string) bool

	DefineValueStream(name, scaleName string, defaultValue float32) error
	SetStreamValues(name string, indices []graphstore.NodeIndex, values []float32) error
	RemoveValueStream(name string)

	SetNodeTypeStyles(styles map[int32]NodeTypeStyle)
	SetEdgeTypeStyles(styles map[int32]EdgeTypeStyle)

	EnableCurvedEdges(curvatureScale float32)
	DisableCurvedEdges()
	SetCurvedEdges(curvatureScale float32)

	SetEdgeFlowConfig(cfg EdgeFlowConfig)
	SetEdgeFlowPreset(name string) bool
	DisableEdgeFlow()
	GetEdgeFlowConfig() EdgeFlowConfig

	Resize(width, height int)
	Pan(dx, dy float32)
	Zoom(factor, pivotX, pivotY float32)
	FitToView(minX, minY, maxX, maxY, padding float32)
	ScreenToGraph(x, y float32) common.Vec2
	GraphToScreen(x, y float32) common.Vec2

	On(event Event, handler EventHandler)
	Off(event Event)

	// Run starts the tick and render goroutines and blocks processing
	// window messages until Quit is called or the window closes.
	Run()

	// Quit stops every engine goroutine. Safe to call more than once.
	Quit()
}

var _ Engine = &engine{}

type engine struct {
	mu sync.Mutex

	window   window.Window
	renderer renderer.Renderer
	store    graphstore.Store
	sim      simulation.Driver
	vp       viewport.Viewport
	comp     *compositor.Compositor
	streams  map[string]*valuestream.Stream

	compositorCfg compositor.Config

	tickRate         time.Duration
	renderFrameLimit time.Duration

	running     bool
	ready       bool
	quitChannel chan struct{}
	quitOnce    sync.Once
	wg          sync.WaitGroup

	handlers map[Event]EventHandler

	maxNodes, maxEdges uint32

	layers          []*compositor.Layer
	layerVisibility map[string]bool

	nodeTypeStyles map[int32]NodeTypeStyle
	edgeTypeStyles map[int32]EdgeTypeStyle

	profiler *frameProfiler
}

// New constructs an Engine. The surface/device setup the window owns
// must already be initialized by the time Run is called; construction
// itself only wires the in-process object graph together.
func New(r renderer.Renderer, w window.Window, opts ...Option) (Engine, error) {
	e := &engine{
		renderer:    r,
		window:      w,
		store:       graphstore.New(),
		vp:          viewport.New(1920, 1080, 1.0),
		streams:     make(map[string]*valuestream.Stream),
		tickRate:    time.Second / 60,
		quitChannel: make(chan struct{}),
		handlers:    make(map[Event]EventHandler),
		maxNodes:    65536,
		maxEdges:    262144,
	}
	for _, opt := range opts {
		opt(e)
	}

	sim, err := simulation.New(r, e.store, e.maxNodes, e.maxEdges)
	if err != nil {
		return nil, fmt.Errorf("heroine: %w", err)
	}
	e.sim = sim
	e.sim.SetOnDiverged(func(err error) { e.emit(EventSimulationDiverged, err) })
	e.sim.SetOnEnd(func() { e.emit(EventSimulationEnd, nil) })

	densityGrid := uint32(128)
	viridis, _ := valuestream.Preset("viridis")
	comp, err := compositor.New(r, densityGrid, densityGrid, viridis)
	if err != nil {
		e.sim.Destroy()
		return nil, fmt.Errorf("heroine: %w", err)
	}
	e.comp = comp

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.mu.Lock()
			e.vp.Resize(float32(width), float32(height))
			e.renderer.Resize(width, height)
			e.mu.Unlock()
			e.emit(EventViewportChanged, nil)
		})
	}

	e.ready = true
	return e, nil
}

func (e *engine) emit(event Event, payload any) {
	e.mu.Lock()
	handler := e.handlers[event]
	e.mu.Unlock()
	if handler != nil {
		handler(payload)
	}
}

func (e *engine) requireReady() error {
	if !e.ready {
		return fmt.Errorf("heroine: %w", herr.ErrNotReady)
	}
	return nil
}

func (e *engine) Store() graphstore.Store           { return e.store }
func (e *engine) Viewport() viewport.Viewport       { return e.vp }
func (e *engine) Compositor() *compositor.Compositor { return e.comp }

func (e *engine) Start() error {
	if err := e.requireReady(); err != nil {
		return err
	}
	e.sim.Start()
	return nil
}

func (e *engine) Stop() error {
	if err := e.requireReady(); err != nil {
		return err
	}
	e.sim.Stop()
	return nil
}

func (e *engine) Restart() error {
	if err := e.requireReady(); err != nil {
		return err
	}
	e.sim.Restart()
	return nil
}

func (e *engine) SetForceAlgorithm(id string) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	alg, ok := algorithmByID(id)
	if !ok {
		return fmt.Errorf("heroine: set force algorithm %q: %w", id, herr.ErrUnknownKey)
	}
	return e.sim.SetAlgorithm(id, alg)
}

func (e *engine) SetForceConfig(cfg algorithm.ForceConfig) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	e.sim.SetForceConfig(cfg)
	return nil
}

// Run starts the tick and render goroutines, then blocks pumping window
// messages, exactly as the teacher engine's Run does.
func (e *engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	e.wg.Add(2)
	go e.tickLoop()
	go e.renderLoop()

	if e.window != nil {
		e.window.ProcessMessages()
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
	e.wg.Wait()
	e.sim.Destroy()
	e.comp.Destroy()
}

func (e *engine) tickLoop() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("heroine: tick goroutine recovered from panic: %v", r)
		}
	}()

	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			if !e.sim.Running() {
				continue
			}
			if err := e.sim.Tick(); err != nil {
				e.emit(EventError, err)
				continue
			}
			e.emit(EventSimulationTick, e.sim.Alpha())
			if err := e.sim.CheckDivergence(); err != nil {
				e.emit(EventSimulationDiverged, err)
			}
		}
	}
}

func (e *engine) renderLoop() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("heroine: render goroutine recovered from panic: %v", r)
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			if e.renderFrameLimit > 0 {
				elapsed := now.Sub(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
					continue
				}
			}
			lastRender = now

			e.mu.Lock()
			nodeCount := uint32(e.store.NodeCount())
			edgeCount := uint32(e.store.EdgeCount())
			cfg := e.compositorCfg
			e.mu.Unlock()

			if err := e.renderer.BeginFrame(); err != nil {
				continue
			}
			if err := e.comp.Draw(e.renderer, cfg, nodeCount, edgeCount, nil, nil, nil); err != nil {
				e.emit(EventError, err)
			}
			e.renderer.EndFrame()
			e.renderer.Present()

			if e.profiler != nil {
				e.profiler.tick()
			}
		}
	}
}

// algorithmByID builds the requested repulsion kernel by its stable
// Info().ID, matching whatever the setForceAlgorithm call names.
func algorithmByID(id string) (algorithm.Algorithm, bool) {
	for _, factory := range algorithmRegistry {
		alg := factory()
		if alg.Info().ID == id {
			return alg, true
		}
	}
	return nil, false
}
