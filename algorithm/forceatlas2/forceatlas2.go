// Package forceatlas2 implements a degree-weighted repulsion kernel in
// the style of the ForceAtlas2 layout: repulsion between two nodes scales
// with (1+degree_i)*(1+degree_j), so hub nodes push harder against each
// other than against leaves. Degree comes from the CPU-side edge table
// (no GPU readback needed) per the Algorithm contract's Context.CPUEdges.
package forceatlas2

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
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

// ID is this algorithm's info.ID.
const ID = "forceatlas2"

const pipelineKey = "forceatlas2:repulsion"

const repulsionSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:group 0 1 storage_read degrees array<u32>
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
	let me = nodes[i];
	let myWeight = 1.0 + f32(degrees[i]);
	var fx = 0.0;
	var fy = 0.0;
	for (var j = 0u; j < counts.nodeCount; j = j + 1u) {
		if (j == i) {
			continue;
		}
		let other = nodes[j];
		let dx = other.position.x - me.position.x;
		let dy = other.position.y - me.position.y;
		let distSq = dx * dx + dy * dy + 0.0001;
		let dist = sqrt(distSq);
		let weight = myWeight * (1.0 + f32(degrees[j]));
		let f = config.repulsionStrength * weight / dist;
		fx = fx - f * dx / dist;
		fy = fy - f * dy / dist;
	}
	atomicAdd(&forces[i * 2u], i32(fx * config.fixedPointScale));
	atomicAdd(&forces[i * 2u + 1u], i32(fy * config.fixedPointScale));
}
`

type forceAtlas2 struct {
	registered bool

	degreeBuf *gpubuf.Buffer
	countBuf  *gpubuf.Buffer
	group     bindgroup.BindGroupProvider
}

// New constructs an unconfigured ForceAtlas2-style algorithm.
func New() algorithm.Algorithm {
	return &forceAtlas2{}
}

var _ algorithm.Algorithm = &forceAtlas2{}

func (a *forceAtlas2) Info() algorithm.Info {
	return algorithm.Info{
		ID:                  ID,
		DisplayName:         "ForceAtlas2",
		Complexity:          algorithm.ComplexityQuadratic,
		MaxRecommendedNodes: 5000,
	}
}

func (a *forceAtlas2) HandlesGravity() bool   { return false }
func (a *forceAtlas2) HandlesSprings() bool   { return false }
func (a *forceAtlas2) HandlesRepulsion() bool { return true }

func (a *forceAtlas2) CreatePipelines(r renderer.Renderer) error {
	if a.registered {
		return nil
	}
	s := shader.NewShaderFromSource(pipelineKey, shader.ShaderTypeCompute, repulsionSource)
	p := pipeline.NewPipeline(pipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(s))
	if err := r.RegisterPipelines(p); err != nil {
		return fmt.Errorf("forceatlas2: register pipeline: %w", err)
	}
	a.registered = true
	return nil
}

func (a *forceAtlas2) CreateBuffers(r renderer.Renderer, maxNodes uint32) error {
	device := r.Device()
	degreeBuf, err := gpubuf.NewBuffer(device, "forceatlas2:degrees", wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, uint64(maxNodes)*4)
	if err != nil {
		return fmt.Errorf("forceatlas2: create degree buffer: %w", err)
	}
	a.degreeBuf = degreeBuf

	countBuf, err := gpubuf.NewBuffer(device, "forceatlas2:counts", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, 16)
	if err != nil {
		return fmt.Errorf("forceatlas2: create counts buffer: %w", err)
	}
	a.countBuf = countBuf
	return nil
}

func (a *forceAtlas2) CreateBindGroups(r renderer.Renderer, ctx algorithm.Context) error {
	if a.degreeBuf == nil {
		return fmt.Errorf("forceatlas2: create bind groups: %w", herr.ErrNotInitialized)
	}
	a.group = bindgroup.NewBindGroupProvider("forceatlas2:repulsion")
	a.group.SetBuffer(0, ctx.NodeData.Buffer(0))
	a.group.SetBuffer(1, a.degreeBuf.Raw())
	a.group.SetBuffer(2, ctx.ForceConfigBuffer)
	a.group.SetBuffer(3, ctx.ForceAccumulator.Buffer(0))
	a.group.SetBuffer(4, a.countBuf.Raw())
	if err := r.InitComputeBindGroup(pipelineKey, a.group); err != nil {
		return fmt.Errorf("forceatlas2: create bind groups: %w", err)
	}
	return nil
}

// UpdateUniforms recomputes degree from ctx.CPUEdges and uploads both the
// degree table and the live node count. Degree only changes when the
// graph topology mutates, but recomputing it every tick is cheap relative
// to the repulsion dispatch itself and avoids a separate dirty-tracking
// path.
func (a *forceAtlas2) UpdateUniforms(r renderer.Renderer, ctx algorithm.Context) error {
	degrees := computeDegrees(ctx.NodeCount, ctx.CPUEdges)

	degreeProvider := bindgroup.NewBindGroupProvider("forceatlas2:degrees-write")
	degreeProvider.SetBuffer(0, a.degreeBuf.Raw())

	countProvider := bindgroup.NewBindGroupProvider("forceatlas2:counts-write")
	countProvider.SetBuffer(0, a.countBuf.Raw())

	count := [4]uint32{ctx.NodeCount, 0, 0, 0}
	r.WriteBuffers([]bindgroup.BufferWrite{
		{Provider: degreeProvider, Binding: 0, Data: common.SliceToBytes(degrees)},
		{Provider: countProvider, Binding: 0, Data: common.SliceToBytes(count[:])},
	})
	return nil
}

func (a *forceAtlas2) RecordRepulsionPass(r renderer.Renderer, ctx algorithm.Context, nodeCount uint32) error {
	groups := (nodeCount + 255) / 256
	r.DispatchCompute(pipelineKey, a.group, [3]uint32{groups, 1, 1})
	return nil
}

// computeDegrees tallies each node's incident edge count from the dense
// edge table, ignoring edges referencing an index at or beyond
// nodeCount (stale entries from a table sized for a larger capacity).
func computeDegrees(nodeCount uint32, edges []graphstore.Edge) []uint32 {
	degrees := make([]uint32, nodeCount)
	for _, e := range edges {
		if uint32(e.Source) < nodeCount {
			degrees[e.Source]++
		}
		if uint32(e.Target) < nodeCount {
			degrees[e.Target]++
		}
	}
	return degrees
}

func (a *forceAtlas2) Destroy() {
	if a.degreeBuf != nil {
		a.degreeBuf.Release()
		a.degreeBuf = nil
	}
	if a.countBuf != nil {
		a.countBuf.Release()
		a.countBuf = nil
	}
}
