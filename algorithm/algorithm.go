// Package algorithm defines the pluggable repulsion-kernel contract the
// Simulation Driver dispatches against every tick, and the context an
// Algorithm needs to build its own pipelines and buffers. Concrete
// algorithms live in subpackages (barneshut, bruteforce, forceatlas2,
// density, linlog, tfdp, relativity, community, tidytree, codebase), each
// implementing Algorithm independently so the driver can swap one for
// another at runtime (setAlgorithm, §4.1).
package algorithm

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

// Complexity is a coarse asymptotic-cost label surfaced to the host so a
// UI can warn before a user picks an algorithm unsuited to their graph's
// size.
type Complexity string

const (
	ComplexityLinear      Complexity = "O(n)"
	ComplexityLinearithmic Complexity = "O(n log n)"
	ComplexityQuadratic   Complexity = "O(n^2)"
)

// Info is the static descriptive metadata an Algorithm exposes for host
// UI (an algorithm picker) and for the driver's own sanity checks against
// node count.
type Info struct {
	ID                   string
	DisplayName          string
	Complexity           Complexity
	MinRecommendedNodes  int
	MaxRecommendedNodes  int // 0 means no recommended ceiling
}

// ForceConfig mirrors the shader package's embedded ForceConfig WGSL
// struct; it is the one uniform buffer every kernel in the union of
// algorithms may read from, ignoring fields it has no use for.
type ForceConfig struct {
	Theta             float32
	RepulsionStrength float32
	SpringStiffness   float32
	SpringLength      float32
	Gravity           float32
	Damping           float32
	DT                float32
	FixedPointScale   float32

	// MaxVelocity clamps integrated speed per tick so a sudden force spike
	// (e.g. two nodes landing on the same point) can't eject a node off
	// screen in a single step. Unused by repulsion kernels; read only by
	// the Simulation Driver's own integration pass.
	MaxVelocity float32
	_pad0, _pad1, _pad2 float32
}

// Context is everything the Simulation Driver hands an Algorithm each
// tick: the shared buffers/providers it may read (never the position
// buffer directly — see the package-level invariant below) plus counts
// and config needed to size a dispatch.
type Context struct {
	Renderer renderer.Renderer

	NodeData         bindgroup.BindGroupProvider
	ForceAccumulator bindgroup.BindGroupProvider

	// ForceConfigBuffer is the GPU-resident mirror of Config, uploaded
	// once per tick by the Simulation Driver before UpdateUniforms runs.
	// Algorithms bind it directly rather than re-uploading their own copy.
	ForceConfigBuffer *wgpu.Buffer

	NodeCount, EdgeCount uint32
	Config               ForceConfig

	ViewportMinX, ViewportMinY, ViewportMaxX, ViewportMaxY float32

	CSR CSRView

	// CPUEdges exposes the dense edge table for algorithms that need
	// degree without a GPU readback (e.g. degree-weighted repulsion).
	CPUEdges []graphstore.Edge

	// CPUNodes exposes the dense node table for algorithms that key
	// behaviour off per-node metadata the GPU mirror doesn't carry (a
	// community category, a tree-hierarchy parent, a codebase path) —
	// see community, tidytree, codebase.
	CPUNodes []graphstore.Node
}

// CSRView is the read-only subset of graphstore.CSR an algorithm needs to
// bind as a storage buffer; the CPU arrays themselves are uploaded by the
// Simulation Driver once per CSR rebuild, not per algorithm.
type CSRView struct {
	RowOffsetsBuffer *wgpu.Buffer
	ColTargetsBuffer *wgpu.Buffer
}

// Algorithm is the pluggable repulsion-kernel contract. No Algorithm may
// write to the position buffer directly; all position updates go through
// the Simulation Driver's integration pass, which is the single source
// of truth for position writes (§4.2 invariant).
type Algorithm interface {
	Info() Info

	// HandlesGravity/HandlesSprings/HandlesRepulsion report which passes
	// this algorithm owns itself (true) versus which the driver must
	// dispatch its own generic pass for (false). These are fixed per
	// algorithm for the lifetime of the process — see DESIGN.md's Open
	// Question decision on capability flags.
	HandlesGravity() bool
	HandlesSprings() bool
	HandlesRepulsion() bool

	// CreatePipelines registers this algorithm's compute pipelines with
	// the renderer. Called once on setAlgorithm.
	CreatePipelines(r renderer.Renderer) error

	// CreateBuffers allocates this algorithm's own GPU buffers (e.g. a
	// quadtree, a density grid) sized for up to maxNodes bodies. Called
	// once on setAlgorithm, after CreatePipelines.
	CreateBuffers(r renderer.Renderer, maxNodes uint32) error

	// CreateBindGroups builds this algorithm's bind group providers from
	// its own buffers plus ctx's shared ones. Called once on
	// setAlgorithm, after CreateBuffers.
	CreateBindGroups(r renderer.Renderer, ctx Context) error

	// UpdateUniforms refreshes any per-tick uniform buffers (force
	// config, viewport bounds) this algorithm's kernels read. Called
	// every tick before RecordRepulsionPass.
	UpdateUniforms(r renderer.Renderer, ctx Context) error

	// RecordRepulsionPass dispatches this algorithm's repulsion
	// computation for nodeCount live bodies within the Simulation
	// Driver's already-open compute frame.
	RecordRepulsionPass(r renderer.Renderer, ctx Context, nodeCount uint32) error

	// Destroy releases every GPU resource this algorithm allocated.
	// The driver's SetAlgorithm calls this on the outgoing algorithm only
	// after the incoming one's CreatePipelines/CreateBuffers/
	// CreateBindGroups have all succeeded, so both sets of buffers exist
	// briefly during a swap.
	Destroy()
}
