// Package simulation owns the per-tick pass schedule: spring/gravity
// passes the current Algorithm doesn't claim, the Algorithm's own
// repulsion dispatch, integration, and the alpha cooling schedule. It is
// the only component allowed to write the position/velocity buffer; every
// Algorithm only ever accumulates into the shared force buffer.
package simulation

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/gpubuf"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

// NodeDataSize is sizeof(graphstore.NodeData): position, velocity, mass,
// pinned flag, pin target, all float32/uint32 so Go's struct layout
// matches the WGSL NodeData struct byte-for-byte.
const NodeDataSize = 32

// EdgeDataSize is sizeof(graphstore.EdgeData).
const EdgeDataSize = 16

// ForcesSize is the per-node byte footprint of the fixed-point force
// accumulator: two atomic<i32> lanes (fx, fy).
const ForcesSize = 8

// Driver is the Simulation Driver (spec §4.1): it owns the tick loop's
// pass ordering, the running/alpha state machine, the pinned-node slot,
// and the currently active Algorithm.
type Driver interface {
	// Tick advances the simulation by one step. Returns herr.ErrNotInitialized
	// if no renderer/device is attached. Never blocks on GPU readback.
	Tick() error

	// Start resumes ticking, preserving the current alpha.
	Start()
	// Stop halts ticking; Tick becomes a no-op until Start is called again.
	Stop()
	// Restart resets alpha to 1.0 and resumes ticking.
	Restart()
	Running() bool
	Alpha() float32

	// SetAlgorithm atomically swaps the repulsion kernel. The old
	// algorithm's buffers are released only after the new one's
	// CreatePipelines/CreateBuffers/CreateBindGroups all succeed; on
	// failure the previous algorithm stays active and the error is
	// returned.
	SetAlgorithm(id string, alg algorithm.Algorithm) error
	AlgorithmID() string

	// SetForceConfig updates the shared uniform struct read by every
	// algorithm kernel and the driver's own spring/gravity/integration
	// passes. Takes effect at the next tick; no buffer reallocation.
	SetForceConfig(cfg algorithm.ForceConfig)

	// SetPinned records idx as the pinned node; a second call replaces the
	// first. Tick does not read this record: a node is held in place only
	// through its own NodeData pinned flag and pinX/pinY, which the
	// integration kernel applies.
	SetPinned(idx graphstore.NodeIndex)
	// ClearPinned removes any pin.
	ClearPinned()

	// SetOnEnd registers a callback fired once when alpha decays below
	// alphaMin (simulation:end). SetOnDiverged registers a callback fired
	// when CheckDivergence finds a NaN/Inf position (simulation:diverged).
	SetOnEnd(cb func())
	SetOnDiverged(cb func(err error))

	// CheckDivergence copies the current position buffer back to the CPU
	// and scans for NaN/Inf. It is the "validation pass on demand" the
	// contract calls out as lazy rather than per-tick, since a GPU
	// readback stalls the pipeline. Returns herr.ErrSimulationDiverged if
	// found; the driver then refuses further ticks until the host calls
	// Restart.
	CheckDivergence() error

	Destroy()
}

// AlphaSchedule mirrors a force-directed layout's standard cooling
// schedule: alpha decays geometrically toward alphaTarget each tick, and
// the simulation is considered settled once it drops under alphaMin.
type AlphaSchedule struct {
	Target float32
	Decay  float32
	Min    float32
}

// DefaultAlphaSchedule matches the conventional d3-force defaults.
func DefaultAlphaSchedule() AlphaSchedule {
	return AlphaSchedule{Target: 0, Decay: 0.0228, Min: 0.001}
}

// stepAlpha advances alpha one tick toward target by decay, reporting
// whether the schedule has settled (alpha fallen under min). Pure so it
// can be tested without a device.
func stepAlpha(alpha float32, s AlphaSchedule) (next float32, ended bool) {
	next = alpha + (s.Target-alpha)*s.Decay
	return next, next < s.Min
}

type driver struct {
	mu sync.Mutex

	r     renderer.Renderer
	store graphstore.Store

	maxNodes, maxEdges uint32

	nodeData *gpubuf.Buffer
	forces   *gpubuf.Buffer
	edgeData *gpubuf.Buffer
	rowOff   *gpubuf.Buffer
	colTgt   *gpubuf.Buffer
	counts   *gpubuf.Buffer

	forceConfig   *gpubuf.Buffer
	config        algorithm.ForceConfig

	nodeDataBag bindgroup.BindGroupProvider // Buffer(0) == nodeData.Raw(), the Context.NodeData a Algorithm reads
	forcesBag   bindgroup.BindGroupProvider // Buffer(0) == forces.Raw(), the Context.ForceAccumulator

	springGroup      bindgroup.BindGroupProvider
	gravityGroup     bindgroup.BindGroupProvider
	integrationGroup bindgroup.BindGroupProvider

	alg   algorithm.Algorithm
	algID string

	alpha    float32
	schedule AlphaSchedule
	running  bool
	diverged bool

	pinned *graphstore.NodeIndex

	onEnd      func()
	onDiverged func(error)

	readback *readback
}

var _ Driver = &driver{}

// New creates a Driver sized for maxNodes/maxEdges, registers its own
// spring/gravity/integration pipelines, and allocates the shared
// node/force/edge/CSR buffers every Algorithm binds against.
func New(r renderer.Renderer, store graphstore.Store, maxNodes, maxEdges uint32) (Driver, error) {
	d := &driver{
		r:        r,
		store:    store,
		maxNodes: maxNodes,
		maxEdges: maxEdges,
		alpha:    1.0,
		schedule: DefaultAlphaSchedule(),
		config: algorithm.ForceConfig{
			Theta: 0.8, RepulsionStrength: 400, SpringStiffness: 0.1,
			SpringLength: 30, Gravity: 0.02, Damping: 0.9, DT: 1.0 / 60,
			FixedPointScale: float32(1 << 16), MaxVelocity: 200,
		},
	}

	if err := d.allocateBuffers(); err != nil {
		return nil, err
	}
	if err := d.registerPasses(); err != nil {
		d.releaseBuffers()
		return nil, err
	}
	if err := d.buildProviders(); err != nil {
		d.releaseBuffers()
		return nil, err
	}

	rb, err := newReadback(r.Device(), maxNodes)
	if err != nil {
		d.releaseBuffers()
		return nil, err
	}
	d.readback = rb

	return d, nil
}

func (d *driver) allocateBuffers() error {
	device := d.r.Device()
	var err error

	d.nodeData, err = gpubuf.NewBuffer(device, "simulation:node-data",
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst|wgpu.BufferUsageCopySrc, uint64(d.maxNodes)*NodeDataSize)
	if err != nil {
		return fmt.Errorf("simulation: allocate node data: %w", err)
	}
	d.forces, err = gpubuf.NewBuffer(device, "simulation:forces",
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, uint64(d.maxNodes)*ForcesSize)
	if err != nil {
		return fmt.Errorf("simulation: allocate forces: %w", err)
	}
	d.edgeData, err = gpubuf.NewBuffer(device, "simulation:edge-data",
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, uint64(d.maxEdges)*EdgeDataSize)
	if err != nil {
		return fmt.Errorf("simulation: allocate edge data: %w", err)
	}
	d.rowOff, err = gpubuf.NewBuffer(device, "simulation:row-offsets",
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, uint64(d.maxNodes+1)*4)
	if err != nil {
		return fmt.Errorf("simulation: allocate row offsets: %w", err)
	}
	d.colTgt, err = gpubuf.NewBuffer(device, "simulation:col-targets",
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, uint64(d.maxEdges)*4)
	if err != nil {
		return fmt.Errorf("simulation: allocate col targets: %w", err)
	}
	d.counts, err = gpubuf.NewBuffer(device, "simulation:counts",
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, 16)
	if err != nil {
		return fmt.Errorf("simulation: allocate counts: %w", err)
	}
	d.forceConfig, err = gpubuf.NewBuffer(device, "simulation:force-config",
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, 48)
	if err != nil {
		return fmt.Errorf("simulation: allocate force config: %w", err)
	}
	return nil
}

func (d *driver) releaseBuffers() {
	for _, b := range []*gpubuf.Buffer{d.nodeData, d.forces, d.edgeData, d.rowOff, d.colTgt, d.counts, d.forceConfig} {
		if b != nil {
			b.Release()
		}
	}
}

func (d *driver) buildProviders() error {
	d.nodeDataBag = bindgroup.NewBindGroupProvider("simulation:node-data-bag")
	d.nodeDataBag.SetBuffer(0, d.nodeData.Raw())

	d.forcesBag = bindgroup.NewBindGroupProvider("simulation:forces-bag")
	d.forcesBag.SetBuffer(0, d.forces.Raw())

	d.springGroup = bindgroup.NewBindGroupProvider("simulation:spring")
	d.springGroup.SetBuffer(0, d.nodeData.Raw())
	d.springGroup.SetBuffer(1, d.edgeData.Raw())
	d.springGroup.SetBuffer(2, d.forceConfig.Raw())
	d.springGroup.SetBuffer(3, d.forces.Raw())
	d.springGroup.SetBuffer(4, d.counts.Raw())
	if err := d.r.InitComputeBindGroup(springPipelineKey, d.springGroup); err != nil {
		return fmt.Errorf("simulation: bind spring: %w", err)
	}

	d.gravityGroup = bindgroup.NewBindGroupProvider("simulation:gravity")
	d.gravityGroup.SetBuffer(0, d.nodeData.Raw())
	d.gravityGroup.SetBuffer(1, d.forceConfig.Raw())
	d.gravityGroup.SetBuffer(2, d.forces.Raw())
	d.gravityGroup.SetBuffer(3, d.counts.Raw())
	if err := d.r.InitComputeBindGroup(gravityPipelineKey, d.gravityGroup); err != nil {
		return fmt.Errorf("simulation: bind gravity: %w", err)
	}

	d.integrationGroup = bindgroup.NewBindGroupProvider("simulation:integration")
	d.integrationGroup.SetBuffer(0, d.nodeData.Raw())
	d.integrationGroup.SetBuffer(1, d.forceConfig.Raw())
	d.integrationGroup.SetBuffer(2, d.forces.Raw())
	d.integrationGroup.SetBuffer(3, d.counts.Raw())
	if err := d.r.InitComputeBindGroup(integrationPipelineKey, d.integrationGroup); err != nil {
		return fmt.Errorf("simulation: bind integration: %w", err)
	}
	return nil
}

func (d *driver) Running() bool       { d.mu.Lock(); defer d.mu.Unlock(); return d.running }
func (d *driver) Alpha() float32      { d.mu.Lock(); defer d.mu.Unlock(); return d.alpha }
func (d *driver) AlgorithmID() string { d.mu.Lock(); defer d.mu.Unlock(); return d.algID }

func (d *driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = true
}

func (d *driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
}

func (d *driver) Restart() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alpha = 1.0
	d.running = true
	d.diverged = false
}

func (d *driver) SetForceConfig(cfg algorithm.ForceConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config = cfg
}

func (d *driver) SetPinned(idx graphstore.NodeIndex) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := idx
	d.pinned = &v
}

func (d *driver) ClearPinned() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pinned = nil
}

func (d *driver) SetOnEnd(cb func())           { d.mu.Lock(); d.onEnd = cb; d.mu.Unlock() }
func (d *driver) SetOnDiverged(cb func(error)) { d.mu.Lock(); d.onDiverged = cb; d.mu.Unlock() }

// SetAlgorithm swaps the active repulsion kernel. The new algorithm's
// lifecycle methods run against the driver's own renderer and shared
// buffers before the old algorithm is released, so a failed swap leaves
// the previous algorithm fully intact.
func (d *driver) SetAlgorithm(id string, alg algorithm.Algorithm) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := alg.CreatePipelines(d.r); err != nil {
		return fmt.Errorf("simulation: set algorithm %q: %w", id, err)
	}
	if err := alg.CreateBuffers(d.r, d.maxNodes); err != nil {
		alg.Destroy()
		return fmt.Errorf("simulation: set algorithm %q: %w", id, err)
	}
	ctx := d.contextLocked()
	if err := alg.CreateBindGroups(d.r, ctx); err != nil {
		alg.Destroy()
		return fmt.Errorf("simulation: set algorithm %q: %w", id, err)
	}

	old := d.alg
	d.alg = alg
	d.algID = id
	if old != nil {
		old.Destroy()
	}
	return nil
}

// contextLocked rebuilds the CSR projection if dirty, uploads it to the
// shared row-offset/col-target buffers, and returns the algorithm.Context
// snapshot for the current tick. Caller must hold d.mu.
func (d *driver) contextLocked() algorithm.Context {
	csr := d.store.EnsureCSR()
	d.uploadCSRLocked(csr)

	nodeCount := d.store.NodeCount()
	edgeCount := d.store.EdgeCount()

	cpuNodes := make([]graphstore.Node, nodeCount)
	for i := range cpuNodes {
		cpuNodes[i] = d.store.Node(graphstore.NodeIndex(i))
	}
	cpuEdges := make([]graphstore.Edge, edgeCount)
	for i := range cpuEdges {
		cpuEdges[i] = d.store.Edge(graphstore.EdgeIndex(i))
	}

	return algorithm.Context{
		Renderer:          d.r,
		NodeData:          d.nodeDataBag,
		ForceAccumulator:  d.forcesBag,
		ForceConfigBuffer: d.forceConfig.Raw(),
		NodeCount:         uint32(nodeCount),
		EdgeCount:         uint32(edgeCount),
		Config:            d.config,
		CSR: algorithm.CSRView{
			RowOffsetsBuffer: d.rowOff.Raw(),
			ColTargetsBuffer: d.colTgt.Raw(),
		},
		CPUNodes: cpuNodes,
		CPUEdges: cpuEdges,
	}
}

func (d *driver) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.alg != nil {
		d.alg.Destroy()
		d.alg = nil
	}
	d.nodeDataBag.Release()
	d.forcesBag.Release()
	d.springGroup.Release()
	d.gravityGroup.Release()
	d.integrationGroup.Release()
	d.releaseBuffers()
	if d.readback != nil {
		d.readback.release()
	}
}
