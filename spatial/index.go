package spatial

import (
	"fmt"
	"sync"

	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
	"github.com/tomWhiting/heroine-graph-sub003/sortkernel"
)

const (
	pipelineKeyMorton    = "spatial:morton"
	pipelineKeyBuild     = "spatial:build-leaves"
	pipelineKeyPropagate = "spatial:propagate"
	pipelineKeyTraverse  = "spatial:traverse"
)

// index is the implementation of Index.
type index struct {
	mu sync.Mutex
	r  renderer.Renderer
	s  sortkernel.Sorter

	theta float32

	minX, minY, maxX, maxY float32

	registered bool
}

// Index builds and queries the Morton-ordered quadtree used by
// Barnes-Hut repulsion (§4.4). Providers for node data, sort keys, tree
// storage, and force accumulation are supplied per call by the caller
// (the barneshut algorithm), which owns their GPU allocation via gpubuf
// sized to the current node capacity.
type Index interface {
	// EnsurePipelines registers the morton/build/propagate/traverse
	// kernels. Safe to call repeatedly.
	EnsurePipelines() error

	// SetBounds updates the world bounds used to quantise Morton codes
	// this tick. The caller computes bounds (e.g. from the previous
	// tick's settled positions plus a margin) before calling Build.
	SetBounds(minX, minY, maxX, maxY float32)

	// Theta returns the current Barnes-Hut acceptance threshold.
	Theta() float32

	// SetTheta updates the Barnes-Hut acceptance threshold.
	SetTheta(theta float32)

	// Build dispatches the Morton-code, sort, leaf-build, and
	// bottom-up-propagation passes for nodeCount live bodies. Each
	// provider bundles the buffer bindings its own kernel's @hg:group 0
	// declares (see shaders.go): mortonGroup holds {nodes, keys, bounds},
	// sortIn/sortOut the ping-pong sort_keys pair, buildGroup
	// {nodes, sortedKeys, leaves}, propagateGroup {children, parents,
	// layer uniforms} (rebound by the caller between reduction layers,
	// since children/parents alias different QuadNode buffer slices each
	// pass).
	Build(mortonGroup bindgroup.BindGroupProvider, sortIn, sortOut bindgroup.BindGroupProvider, buildGroup bindgroup.BindGroupProvider, propagateGroup bindgroup.BindGroupProvider, nodeCount uint32) error

	// Traverse dispatches the Barnes-Hut repulsion pass for nodeCount
	// live bodies. traverseGroup bundles {nodes, tree, force_config,
	// forces} per traverseSource's @hg:group 0 declarations.
	Traverse(traverseGroup bindgroup.BindGroupProvider, nodeCount uint32) error
}

var _ Index = &index{}

// New creates an Index bound to the given renderer and radix sorter.
func New(r renderer.Renderer, s sortkernel.Sorter) Index {
	return &index{r: r, s: s, theta: DefaultTheta}
}

func (idx *index) Theta() float32        { return idx.theta }
func (idx *index) SetTheta(theta float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.theta = theta
}

func (idx *index) SetBounds(minX, minY, maxX, maxY float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.minX, idx.minY, idx.maxX, idx.maxY = minX, minY, maxX, maxY
}

func (idx *index) EnsurePipelines() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.registered {
		return nil
	}

	mortonShader := shader.NewShaderFromSource(pipelineKeyMorton, shader.ShaderTypeCompute, mortonSource)
	buildShader := shader.NewShaderFromSource(pipelineKeyBuild, shader.ShaderTypeCompute, buildLeavesSource)
	propagateShader := shader.NewShaderFromSource(pipelineKeyPropagate, shader.ShaderTypeCompute, propagateSource)
	traverseShader := shader.NewShaderFromSource(pipelineKeyTraverse, shader.ShaderTypeCompute, traverseSource)

	pipelines := []pipeline.Pipeline{
		pipeline.NewPipeline(pipelineKeyMorton, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(mortonShader)),
		pipeline.NewPipeline(pipelineKeyBuild, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(buildShader)),
		pipeline.NewPipeline(pipelineKeyPropagate, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(propagateShader)),
		pipeline.NewPipeline(pipelineKeyTraverse, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(traverseShader)),
	}
	if err := idx.r.RegisterPipelines(pipelines...); err != nil {
		return fmt.Errorf("spatial: register pipelines: %w", err)
	}
	if err := idx.s.EnsurePipelines(); err != nil {
		return fmt.Errorf("spatial: register sort pipelines: %w", err)
	}
	idx.registered = true
	return nil
}

func (idx *index) Build(mortonGroup bindgroup.BindGroupProvider, sortIn, sortOut bindgroup.BindGroupProvider, buildGroup bindgroup.BindGroupProvider, propagateGroup bindgroup.BindGroupProvider, nodeCount uint32) error {
	if nodeCount == 0 {
		return nil
	}
	groups := (nodeCount + 255) / 256

	if err := idx.r.InitComputeBindGroup(pipelineKeyMorton, mortonGroup); err != nil {
		return fmt.Errorf("spatial: bind morton: %w", err)
	}
	idx.r.DispatchCompute(pipelineKeyMorton, mortonGroup, [3]uint32{groups, 1, 1})

	if _, err := idx.s.Sort(sortIn, sortOut, nodeCount); err != nil {
		return fmt.Errorf("spatial: sort morton keys: %w", err)
	}

	if err := idx.r.InitComputeBindGroup(pipelineKeyBuild, buildGroup); err != nil {
		return fmt.Errorf("spatial: bind build-leaves: %w", err)
	}
	idx.r.DispatchCompute(pipelineKeyBuild, buildGroup, [3]uint32{groups, 1, 1})

	// Bottom-up reduction: each dispatch folds up to 4 children into 1
	// parent, so layer size shrinks by 4x; repeat until one root remains.
	// The caller rebinds propagateGroup's children/parents slices to the
	// next pair of layers between dispatches.
	layerCount := nodeCount
	for layerCount > 1 {
		layerCount = (layerCount + 3) / 4
		layerGroups := (layerCount + 255) / 256
		if err := idx.r.InitComputeBindGroup(pipelineKeyPropagate, propagateGroup); err != nil {
			return fmt.Errorf("spatial: bind propagate: %w", err)
		}
		idx.r.DispatchCompute(pipelineKeyPropagate, propagateGroup, [3]uint32{layerGroups, 1, 1})
	}
	return nil
}

func (idx *index) Traverse(traverseGroup bindgroup.BindGroupProvider, nodeCount uint32) error {
	if nodeCount == 0 {
		return nil
	}
	groups := (nodeCount + 255) / 256
	if err := idx.r.InitComputeBindGroup(pipelineKeyTraverse, traverseGroup); err != nil {
		return fmt.Errorf("spatial: bind traverse: %w", err)
	}
	idx.r.DispatchCompute(pipelineKeyTraverse, traverseGroup, [3]uint32{groups, 1, 1})
	return nil
}
