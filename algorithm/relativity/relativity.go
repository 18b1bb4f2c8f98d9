// Package relativity implements the "relativity atlas" variant: repulsion
// is weighted by the product of node masses rather than a fixed constant,
// so heavy nodes (large radius, high importance) carve out proportionally
// more space, similar to gravitational n-body repulsion.
package relativity

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
const ID = "relativity"

const pipelineKey = "relativity:repulsion"

const repulsionSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:include force_config
//@hg:group 0 1 storage_uniform config force_config
//@hg:group 0 2 storage_read_write forces array<atomic<i32>>

struct Count { nodeCount: u32, _pad0: u32, _pad1: u32, _pad2: u32 }
//@hg:group 0 3 storage_uniform counts Count

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= counts.nodeCount) {
		return;
	}
	let me = nodes[i];
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
		let f = config.repulsionStrength * me.mass * other.mass / distSq;
		fx = fx - f * dx / dist;
		fy = fy - f * dy / dist;
	}
	atomicAdd(&forces[i * 2u], i32(fx * config.fixedPointScale));
	atomicAdd(&forces[i * 2u + 1u], i32(fy * config.fixedPointScale));
}
`

type relativity struct {
	registered bool
	countBuf   *gpubuf.Buffer
	group      bindgroup.BindGroupProvider
}

// New constructs an unconfigured relativity-atlas algorithm.
func New() algorithm.Algorithm {
	return &relativity{}
}

var _ algorithm.Algorithm = &relativity{}

func (a *relativity) Info() algorithm.Info {
	return algorithm.Info{
		ID:                  ID,
		DisplayName:         "Relativity Atlas",
		Complexity:          algorithm.ComplexityQuadratic,
		MaxRecommendedNodes: 3000,
	}
}

func (a *relativity) HandlesGravity() bool   { return false }
func (a *relativity) HandlesSprings() bool   { return false }
func (a *relativity) HandlesRepulsion() bool { return true }

func (a *relativity) CreatePipelines(r renderer.Renderer) error {
	if a.registered {
		return nil
	}
	s := shader.NewShaderFromSource(pipelineKey, shader.ShaderTypeCompute, repulsionSource)
	p := pipeline.NewPipeline(pipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(s))
	if err := r.RegisterPipelines(p); err != nil {
		return fmt.Errorf("relativity: register pipeline: %w", err)
	}
	a.registered = true
	return nil
}

func (a *relativity) CreateBuffers(r renderer.Renderer, maxNodes uint32) error {
	buf, err := gpubuf.NewBuffer(r.Device(), "relativity:counts", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, 16)
	if err != nil {
		return fmt.Errorf("relativity: create counts buffer: %w", err)
	}
	a.countBuf = buf
	return nil
}

func (a *relativity) CreateBindGroups(r renderer.Renderer, ctx algorithm.Context) error {
	if a.countBuf == nil {
		return fmt.Errorf("relativity: create bind groups: %w", herr.ErrNotInitialized)
	}
	a.group = bindgroup.NewBindGroupProvider("relativity:repulsion")
	a.group.SetBuffer(0, ctx.NodeData.Buffer(0))
	a.group.SetBuffer(1, ctx.ForceConfigBuffer)
	a.group.SetBuffer(2, ctx.ForceAccumulator.Buffer(0))
	a.group.SetBuffer(3, a.countBuf.Raw())
	if err := r.InitComputeBindGroup(pipelineKey, a.group); err != nil {
		return fmt.Errorf("relativity: create bind groups: %w", err)
	}
	return nil
}

func (a *relativity) UpdateUniforms(r renderer.Renderer, ctx algorithm.Context) error {
	countProvider := bindgroup.NewBindGroupProvider("relativity:counts-write")
	countProvider.SetBuffer(0, a.countBuf.Raw())
	count := [4]uint32{ctx.NodeCount, 0, 0, 0}
	r.WriteBuffers([]bindgroup.BufferWrite{{Provider: countProvider, Binding: 0, Data: common.SliceToBytes(count[:])}})
	return nil
}

func (a *relativity) RecordRepulsionPass(r renderer.Renderer, ctx algorithm.Context, nodeCount uint32) error {
	groups := (nodeCount + 255) / 256
	r.DispatchCompute(pipelineKey, a.group, [3]uint32{groups, 1, 1})
	return nil
}

func (a *relativity) Destroy() {
	if a.countBuf != nil {
		a.countBuf.Release()
		a.countBuf = nil
	}
}
