// Package codebase implements a structure-aware layout for nodes whose
// Meta carries a slash-separated path (source files in a repository,
// packages in a module graph): repulsion between two nodes is scaled
// down by how many leading path segments they share, so files under the
// same directory cluster tighter than files in unrelated directories.
package codebase

import (
	"fmt"
	"strings"

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
const ID = "codebase"

const pipelineKey = "codebase:repulsion"

const repulsionSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:group 0 1 storage_read pathDepth array<u32>
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
	let myDepth = pathDepth[i];
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
		// pathDepth stores the number of shared leading path segments
		// with node 0's reference path, precomputed on the CPU; a larger
		// shared depth damps repulsion so sibling files sit closer.
		let shared = min(myDepth, pathDepth[j]);
		let damp = 1.0 / (1.0 + f32(shared));
		let f = config.repulsionStrength * damp * other.mass / distSq;
		fx = fx - f * dx / dist;
		fy = fy - f * dy / dist;
	}
	atomicAdd(&forces[i * 2u], i32(fx * config.fixedPointScale));
	atomicAdd(&forces[i * 2u + 1u], i32(fy * config.fixedPointScale));
}
`

type codebase struct {
	registered bool

	pathDepthBuf *gpubuf.Buffer
	countBuf     *gpubuf.Buffer
	group        bindgroup.BindGroupProvider
}

// New constructs an unconfigured structure-aware algorithm.
func New() algorithm.Algorithm {
	return &codebase{}
}

var _ algorithm.Algorithm = &codebase{}

func (a *codebase) Info() algorithm.Info {
	return algorithm.Info{
		ID:                  ID,
		DisplayName:         "Codebase",
		Complexity:          algorithm.ComplexityQuadratic,
		MaxRecommendedNodes: 3000,
	}
}

func (a *codebase) HandlesGravity() bool   { return false }
func (a *codebase) HandlesSprings() bool   { return false }
func (a *codebase) HandlesRepulsion() bool { return true }

func (a *codebase) CreatePipelines(r renderer.Renderer) error {
	if a.registered {
		return nil
	}
	s := shader.NewShaderFromSource(pipelineKey, shader.ShaderTypeCompute, repulsionSource)
	p := pipeline.NewPipeline(pipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(s))
	if err := r.RegisterPipelines(p); err != nil {
		return fmt.Errorf("codebase: register pipeline: %w", err)
	}
	a.registered = true
	return nil
}

func (a *codebase) CreateBuffers(r renderer.Renderer, maxNodes uint32) error {
	device := r.Device()
	pathDepthBuf, err := gpubuf.NewBuffer(device, "codebase:path-depth", wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, uint64(maxNodes)*4)
	if err != nil {
		return fmt.Errorf("codebase: create path depth buffer: %w", err)
	}
	a.pathDepthBuf = pathDepthBuf

	countBuf, err := gpubuf.NewBuffer(device, "codebase:counts", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, 16)
	if err != nil {
		return fmt.Errorf("codebase: create counts buffer: %w", err)
	}
	a.countBuf = countBuf
	return nil
}

func (a *codebase) CreateBindGroups(r renderer.Renderer, ctx algorithm.Context) error {
	if a.pathDepthBuf == nil {
		return fmt.Errorf("codebase: create bind groups: %w", herr.ErrNotInitialized)
	}
	a.group = bindgroup.NewBindGroupProvider("codebase:repulsion")
	a.group.SetBuffer(0, ctx.NodeData.Buffer(0))
	a.group.SetBuffer(1, a.pathDepthBuf.Raw())
	a.group.SetBuffer(2, ctx.ForceConfigBuffer)
	a.group.SetBuffer(3, ctx.ForceAccumulator.Buffer(0))
	a.group.SetBuffer(4, a.countBuf.Raw())
	if err := r.InitComputeBindGroup(pipelineKey, a.group); err != nil {
		return fmt.Errorf("codebase: create bind groups: %w", err)
	}
	return nil
}

func (a *codebase) UpdateUniforms(r renderer.Renderer, ctx algorithm.Context) error {
	depths := pathDepths(ctx.CPUNodes, ctx.NodeCount)

	depthProvider := bindgroup.NewBindGroupProvider("codebase:path-depth-write")
	depthProvider.SetBuffer(0, a.pathDepthBuf.Raw())

	countProvider := bindgroup.NewBindGroupProvider("codebase:counts-write")
	countProvider.SetBuffer(0, a.countBuf.Raw())

	count := [4]uint32{ctx.NodeCount, 0, 0, 0}
	r.WriteBuffers([]bindgroup.BufferWrite{
		{Provider: depthProvider, Binding: 0, Data: common.SliceToBytes(depths)},
		{Provider: countProvider, Binding: 0, Data: common.SliceToBytes(count[:])},
	})
	return nil
}

func (a *codebase) RecordRepulsionPass(r renderer.Renderer, ctx algorithm.Context, nodeCount uint32) error {
	groups := (nodeCount + 255) / 256
	r.DispatchCompute(pipelineKey, a.group, [3]uint32{groups, 1, 1})
	return nil
}

func (a *codebase) Destroy() {
	if a.pathDepthBuf != nil {
		a.pathDepthBuf.Release()
		a.pathDepthBuf = nil
	}
	if a.countBuf != nil {
		a.countBuf.Release()
		a.countBuf = nil
	}
}

// pathDepths returns, for every node, the number of leading path
// segments its Meta path shares with node 0's path. Nodes whose Meta
// isn't a string get depth 0 (no damping, baseline repulsion).
func pathDepths(nodes []graphstore.Node, count uint32) []uint32 {
	depths := make([]uint32, count)
	if len(nodes) == 0 {
		return depths
	}
	reference := pathOf(nodes[0])
	for i := range depths {
		if uint32(i) >= count || i >= len(nodes) {
			break
		}
		depths[i] = sharedPrefixLen(reference, pathOf(nodes[i]))
	}
	return depths
}

func pathOf(n graphstore.Node) []string {
	s, ok := n.Meta.(string)
	if !ok {
		return nil
	}
	return strings.Split(s, "/")
}

func sharedPrefixLen(a, b []string) uint32 {
	var n uint32
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
		n++
	}
	return n
}
