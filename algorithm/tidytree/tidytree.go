// Package tidytree implements a tidy tree layout: a spanning tree is
// computed on the CPU from the live edge table (BFS from node 0, first
// edge wins a child's parent), each node gets an analytic target position
// from its depth and sibling order, and the GPU pass springs every node
// toward its own target. HandlesSprings and HandlesRepulsion are both
// true — this algorithm owns node placement outright rather than
// composing with the generic spring/repulsion passes.
package tidytree

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm"
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
	"github.com/tomWhiting/heroine-graph-sub003/gpubuf"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

// ID is this algorithm's info.ID.
const ID = "tidy-tree"

// LevelHeight and SiblingSpacing set the analytic grid the tree lays out
// on, in graph units.
const (
	LevelHeight    = 120.0
	SiblingSpacing = 80.0
)

const pipelineKey = "tidytree:spring"

const springSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read_write nodes array<node_data>
//@hg:group 0 1 storage_read targets array<vec2<f32>>
//@hg:include force_config
//@hg:group 0 2 storage_uniform config force_config
//@hg:group 0 3 storage_read_write forces array<atomic<i32>>

struct Count { nodeCount: u32, _pad0: u32, _pad1: u32, _pad2: u32 }
//@hg:group 0 4 storage_uniform counts Count

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= counts.nodeCount) {
		return;
	}
	let n = nodes[i];
	let target = targets[i];
	let dx = target.x - n.position.x;
	let dy = target.y - n.position.y;
	let fx = config.springStiffness * dx;
	let fy = config.springStiffness * dy;
	atomicAdd(&forces[i * 2u], i32(fx * config.fixedPointScale));
	atomicAdd(&forces[i * 2u + 1u], i32(fy * config.fixedPointScale));
}
`

type tidyTree struct {
	registered bool

	targetBuf *gpubuf.Buffer
	countBuf  *gpubuf.Buffer
	group     bindgroup.BindGroupProvider
}

// New constructs an unconfigured tidy-tree algorithm.
func New() algorithm.Algorithm {
	return &tidyTree{}
}

var _ algorithm.Algorithm = &tidyTree{}

func (a *tidyTree) Info() algorithm.Info {
	return algorithm.Info{
		ID:          ID,
		DisplayName: "Tidy Tree",
		Complexity:  algorithm.ComplexityLinear,
	}
}

func (a *tidyTree) HandlesGravity() bool   { return false }
func (a *tidyTree) HandlesSprings() bool   { return true }
func (a *tidyTree) HandlesRepulsion() bool { return true }

func (a *tidyTree) CreatePipelines(r renderer.Renderer) error {
	if a.registered {
		return nil
	}
	s := shader.NewShaderFromSource(pipelineKey, shader.ShaderTypeCompute, springSource)
	p := pipeline.NewPipeline(pipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(s))
	if err := r.RegisterPipelines(p); err != nil {
		return fmt.Errorf("tidytree: register pipeline: %w", err)
	}
	a.registered = true
	return nil
}

func (a *tidyTree) CreateBuffers(r renderer.Renderer, maxNodes uint32) error {
	device := r.Device()
	targetBuf, err := gpubuf.NewBuffer(device, "tidytree:targets", wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, uint64(maxNodes)*8)
	if err != nil {
		return fmt.Errorf("tidytree: create target buffer: %w", err)
	}
	a.targetBuf = targetBuf

	countBuf, err := gpubuf.NewBuffer(device, "tidytree:counts", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, 16)
	if err != nil {
		return fmt.Errorf("tidytree: create counts buffer: %w", err)
	}
	a.countBuf = countBuf
	return nil
}

func (a *tidyTree) CreateBindGroups(r renderer.Renderer, ctx algorithm.Context) error {
	if a.targetBuf == nil {
		return fmt.Errorf("tidytree: create bind groups: %w", herr.ErrNotInitialized)
	}
	a.group = bindgroup.NewBindGroupProvider("tidytree:spring")
	a.group.SetBuffer(0, ctx.NodeData.Buffer(0))
	a.group.SetBuffer(1, a.targetBuf.Raw())
	a.group.SetBuffer(2, ctx.ForceConfigBuffer)
	a.group.SetBuffer(3, ctx.ForceAccumulator.Buffer(0))
	a.group.SetBuffer(4, a.countBuf.Raw())
	if err := r.InitComputeBindGroup(pipelineKey, a.group); err != nil {
		return fmt.Errorf("tidytree: create bind groups: %w", err)
	}
	return nil
}

// UpdateUniforms recomputes the spanning tree and every node's analytic
// target whenever topology changes. Cheap relative to the O(n) dispatch
// it feeds; recomputed every tick rather than change-tracked, same
// tradeoff as forceatlas2's degree table.
func (a *tidyTree) UpdateUniforms(r renderer.Renderer, ctx algorithm.Context) error {
	targets := computeTargets(ctx.NodeCount, ctx.CPUEdges)

	targetProvider := bindgroup.NewBindGroupProvider("tidytree:targets-write")
	targetProvider.SetBuffer(0, a.targetBuf.Raw())

	countProvider := bindgroup.NewBindGroupProvider("tidytree:counts-write")
	countProvider.SetBuffer(0, a.countBuf.Raw())

	count := [4]uint32{ctx.NodeCount, 0, 0, 0}
	r.WriteBuffers([]bindgroup.BufferWrite{
		{Provider: targetProvider, Binding: 0, Data: common.SliceToBytes(targets)},
		{Provider: countProvider, Binding: 0, Data: common.SliceToBytes(count[:])},
	})
	return nil
}

func (a *tidyTree) RecordRepulsionPass(r renderer.Renderer, ctx algorithm.Context, nodeCount uint32) error {
	groups := (nodeCount + 255) / 256
	r.DispatchCompute(pipelineKey, a.group, [3]uint32{groups, 1, 1})
	return nil
}

func (a *tidyTree) Destroy() {
	if a.targetBuf != nil {
		a.targetBuf.Release()
		a.targetBuf = nil
	}
	if a.countBuf != nil {
		a.countBuf.Release()
		a.countBuf = nil
	}
}
