package simulation

import (
	"fmt"

	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

const (
	springPipelineKey      = "simulation:spring"
	gravityPipelineKey     = "simulation:gravity"
	integrationPipelineKey = "simulation:integration"
)

// springSource dispatches one thread per edge, accumulating a Hookean
// spring force toward springLength into both endpoints' force lanes. The
// Algorithm contract only runs this when the active algorithm's
// HandlesSprings() is false (tidytree handles its own, toward
// analytically computed targets instead).
const springSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:include edge_data
//@hg:group 0 1 storage_read edges array<edge_data>
//@hg:include force_config
//@hg:group 0 2 storage_uniform config force_config
//@hg:group 0 3 storage_read_write forces array<atomic<i32>>

struct Counts { nodeCount: u32, edgeCount: u32, _pad0: u32, _pad1: u32 }
//@hg:group 0 4 storage_uniform counts Counts

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= counts.edgeCount) {
		return;
	}
	let e = edges[i];
	let a = nodes[e.source];
	let b = nodes[e.target];
	let dx = b.position.x - a.position.x;
	let dy = b.position.y - a.position.y;
	let dist = max(sqrt(dx * dx + dy * dy), 0.0001);
	let stretch = dist - config.springLength;
	let f = config.springStiffness * stretch * e.weight;
	let fx = f * dx / dist;
	let fy = f * dy / dist;
	atomicAdd(&forces[e.source * 2u], i32(fx * config.fixedPointScale));
	atomicAdd(&forces[e.source * 2u + 1u], i32(fy * config.fixedPointScale));
	atomicAdd(&forces[e.target * 2u], i32(-fx * config.fixedPointScale));
	atomicAdd(&forces[e.target * 2u + 1u], i32(-fy * config.fixedPointScale));
}
`

// gravitySource dispatches one thread per node, pulling every node a
// small amount toward the origin so disconnected components don't drift
// apart indefinitely. Skipped when the active algorithm's
// HandlesGravity() is true.
const gravitySource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:include force_config
//@hg:group 0 1 storage_uniform config force_config
//@hg:group 0 2 storage_read_write forces array<atomic<i32>>

struct Counts { nodeCount: u32, edgeCount: u32, _pad0: u32, _pad1: u32 }
//@hg:group 0 3 storage_uniform counts Counts

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= counts.nodeCount) {
		return;
	}
	let n = nodes[i];
	let fx = -n.position.x * config.gravity;
	let fy = -n.position.y * config.gravity;
	atomicAdd(&forces[i * 2u], i32(fx * config.fixedPointScale));
	atomicAdd(&forces[i * 2u + 1u], i32(fy * config.fixedPointScale));
}
`

// integrationSource is the single writer of node_data.position in the
// whole engine (the package-level Algorithm Contract invariant). It
// converts the fixed-point force accumulator back to float, applies
// velocity/damping/alpha, clamps to maxVelocity, holds pinned nodes in
// place with zero velocity, then zeroes the accumulator it just consumed
// so next tick's passes start from zero.
const integrationSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read_write nodes array<node_data>
//@hg:include force_config
//@hg:group 0 1 storage_uniform config force_config
//@hg:group 0 2 storage_read_write forces array<atomic<i32>>

struct Counts { nodeCount: u32, alpha: f32, _pad0: u32, _pad1: u32 }
//@hg:group 0 3 storage_uniform counts Counts

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= counts.nodeCount) {
		return;
	}
	var n = nodes[i];

	if (n.pinned != 0u) {
		n.position.x = n.pinX;
		n.position.y = n.pinY;
		n.velocity = vec2<f32>(0.0, 0.0);
		nodes[i] = n;
		atomicStore(&forces[i * 2u], 0);
		atomicStore(&forces[i * 2u + 1u], 0);
		return;
	}

	let fx = f32(atomicLoad(&forces[i * 2u])) / config.fixedPointScale;
	let fy = f32(atomicLoad(&forces[i * 2u + 1u])) / config.fixedPointScale;

	var vx = (n.velocity.x + fx * config.dt) * config.damping;
	var vy = (n.velocity.y + fy * config.dt) * config.damping;
	let speed = sqrt(vx * vx + vy * vy);
	if (speed > config.maxVelocity && speed > 0.0) {
		let scale = config.maxVelocity / speed;
		vx = vx * scale;
		vy = vy * scale;
	}

	n.velocity.x = vx;
	n.velocity.y = vy;
	n.position.x = n.position.x + vx * counts.alpha;
	n.position.y = n.position.y + vy * counts.alpha;
	nodes[i] = n;

	atomicStore(&forces[i * 2u], 0);
	atomicStore(&forces[i * 2u + 1u], 0);
}
`

func (d *driver) registerPasses() error {
	springShader := shader.NewShaderFromSource(springPipelineKey, shader.ShaderTypeCompute, springSource)
	gravityShader := shader.NewShaderFromSource(gravityPipelineKey, shader.ShaderTypeCompute, gravitySource)
	integrationShader := shader.NewShaderFromSource(integrationPipelineKey, shader.ShaderTypeCompute, integrationSource)

	pipelines := []pipeline.Pipeline{
		pipeline.NewPipeline(springPipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(springShader)),
		pipeline.NewPipeline(gravityPipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(gravityShader)),
		pipeline.NewPipeline(integrationPipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(integrationShader)),
	}
	if err := d.r.RegisterPipelines(pipelines...); err != nil {
		return fmt.Errorf("simulation: register passes: %w", err)
	}
	return nil
}

// uploadCSRLocked writes the current CSR projection's row offsets and
// column targets into the shared GPU buffers every spatial-index-backed
// algorithm (barneshut) reads. Caller must hold d.mu.
func (d *driver) uploadCSRLocked(csr graphstore.CSR) {
	rowProvider := bindgroup.NewBindGroupProvider("simulation:row-offsets-write")
	rowProvider.SetBuffer(0, d.rowOff.Raw())
	colProvider := bindgroup.NewBindGroupProvider("simulation:col-targets-write")
	colProvider.SetBuffer(0, d.colTgt.Raw())

	d.r.WriteBuffers([]bindgroup.BufferWrite{
		{Provider: rowProvider, Binding: 0, Data: common.SliceToBytes(csr.RowOffsets)},
		{Provider: colProvider, Binding: 0, Data: common.SliceToBytes(csr.ColTargets)},
	})
}
