// Package community implements a community-aware repulsion kernel: nodes
// carry an integer category (graphstore.Node.TypeTag), and repulsion
// between two nodes in different categories is boosted so distinct
// communities separate visually, while same-category repulsion stays at
// the baseline strength.
package community

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
const ID = "community"

// InterCommunityBoost multiplies repulsion between nodes of differing
// categories.
const InterCommunityBoost = 2.5

const pipelineKey = "community:repulsion"

const repulsionSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:group 0 1 storage_read categories array<i32>
//@hg:include force_config
//@hg:group 0 2 storage_uniform config force_config
//@hg:group 0 3 storage_read_write forces array<atomic<i32>>

struct Count { nodeCount: u32, _pad0: u32, _pad1: u32, _pad2: u32 }
//@hg:group 0 4 storage_uniform counts Count

const INTER_COMMUNITY_BOOST: f32 = 2.5;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= counts.nodeCount) {
		return;
	}
	let me = nodes[i];
	let myCategory = categories[i];
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
		var boost = 1.0;
		if (categories[j] != myCategory) {
			boost = INTER_COMMUNITY_BOOST;
		}
		let f = config.repulsionStrength * boost * other.mass / distSq;
		fx = fx - f * dx / dist;
		fy = fy - f * dy / dist;
	}
	atomicAdd(&forces[i * 2u], i32(fx * config.fixedPointScale));
	atomicAdd(&forces[i * 2u + 1u], i32(fy * config.fixedPointScale));
}
`

type community struct {
	registered bool

	categoryBuf *gpubuf.Buffer
	countBuf    *gpubuf.Buffer
	group       bindgroup.BindGroupProvider
}

// New constructs an unconfigured community-aware algorithm.
func New() algorithm.Algorithm {
	return &community{}
}

var _ algorithm.Algorithm = &community{}

func (a *community) Info() algorithm.Info {
	return algorithm.Info{
		ID:                  ID,
		DisplayName:         "Community",
		Complexity:          algorithm.ComplexityQuadratic,
		MaxRecommendedNodes: 3000,
	}
}

func (a *community) HandlesGravity() bool   { return false }
func (a *community) HandlesSprings() bool   { return false }
func (a *community) HandlesRepulsion() bool { return true }

func (a *community) CreatePipelines(r renderer.Renderer) error {
	if a.registered {
		return nil
	}
	s := shader.NewShaderFromSource(pipelineKey, shader.ShaderTypeCompute, repulsionSource)
	p := pipeline.NewPipeline(pipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(s))
	if err := r.RegisterPipelines(p); err != nil {
		return fmt.Errorf("community: register pipeline: %w", err)
	}
	a.registered = true
	return nil
}

func (a *community) CreateBuffers(r renderer.Renderer, maxNodes uint32) error {
	device := r.Device()
	categoryBuf, err := gpubuf.NewBuffer(device, "community:categories", wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, uint64(maxNodes)*4)
	if err != nil {
		return fmt.Errorf("community: create category buffer: %w", err)
	}
	a.categoryBuf = categoryBuf

	countBuf, err := gpubuf.NewBuffer(device, "community:counts", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, 16)
	if err != nil {
		return fmt.Errorf("community: create counts buffer: %w", err)
	}
	a.countBuf = countBuf
	return nil
}

func (a *community) CreateBindGroups(r renderer.Renderer, ctx algorithm.Context) error {
	if a.categoryBuf == nil {
		return fmt.Errorf("community: create bind groups: %w", herr.ErrNotInitialized)
	}
	a.group = bindgroup.NewBindGroupProvider("community:repulsion")
	a.group.SetBuffer(0, ctx.NodeData.Buffer(0))
	a.group.SetBuffer(1, a.categoryBuf.Raw())
	a.group.SetBuffer(2, ctx.ForceConfigBuffer)
	a.group.SetBuffer(3, ctx.ForceAccumulator.Buffer(0))
	a.group.SetBuffer(4, a.countBuf.Raw())
	if err := r.InitComputeBindGroup(pipelineKey, a.group); err != nil {
		return fmt.Errorf("community: create bind groups: %w", err)
	}
	return nil
}

// UpdateUniforms uploads the current category table from CPUNodes'
// TypeTag field. Like forceatlas2's degree table, this is recomputed
// every tick rather than change-tracked; categories only move with
// topology edits, which are infrequent relative to tick rate.
func (a *community) UpdateUniforms(r renderer.Renderer, ctx algorithm.Context) error {
	categories := computeCategories(ctx.NodeCount, ctx.CPUNodes)

	categoryProvider := bindgroup.NewBindGroupProvider("community:categories-write")
	categoryProvider.SetBuffer(0, a.categoryBuf.Raw())

	countProvider := bindgroup.NewBindGroupProvider("community:counts-write")
	countProvider.SetBuffer(0, a.countBuf.Raw())

	count := [4]uint32{ctx.NodeCount, 0, 0, 0}
	r.WriteBuffers([]bindgroup.BufferWrite{
		{Provider: categoryProvider, Binding: 0, Data: common.SliceToBytes(categories)},
		{Provider: countProvider, Binding: 0, Data: common.SliceToBytes(count[:])},
	})
	return nil
}

func (a *community) RecordRepulsionPass(r renderer.Renderer, ctx algorithm.Context, nodeCount uint32) error {
	groups := (nodeCount + 255) / 256
	r.DispatchCompute(pipelineKey, a.group, [3]uint32{groups, 1, 1})
	return nil
}

// computeCategories copies each node's TypeTag into a dense array sized
// to nodeCount, stopping early if the node table is shorter (a capacity
// mismatch the caller is expected never to hit in practice).
func computeCategories(nodeCount uint32, nodes []graphstore.Node) []int32 {
	categories := make([]int32, nodeCount)
	for i, n := range nodes {
		if uint32(i) >= nodeCount {
			break
		}
		categories[i] = n.TypeTag
	}
	return categories
}

func (a *community) Destroy() {
	if a.categoryBuf != nil {
		a.categoryBuf.Release()
		a.categoryBuf = nil
	}
	if a.countBuf != nil {
		a.countBuf.Release()
		a.countBuf = nil
	}
}
