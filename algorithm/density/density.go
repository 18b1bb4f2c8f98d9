// Package density implements density-field repulsion: instead of pairwise
// forces, node mass is splatted into a fixed-resolution grid covering the
// current viewport bounds, then each node samples the local density
// gradient (finite difference of neighbouring cells) to get a repulsion
// direction. O(n + gridCells) per tick instead of O(n^2).
package density

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
const ID = "density-field"

// GridResolution is the side length of the square density grid.
const GridResolution = 128

const (
	pipelineKeySplat    = "density:splat"
	pipelineKeyRepulsion = "density:repulsion"
)

const splatSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:group 0 1 storage_read_write grid array<atomic<i32>>

struct GridBounds {
	minX: f32, minY: f32, maxX: f32, maxY: f32,
	resolution: u32, nodeCount: u32, _pad0: u32, _pad1: u32,
}
//@hg:group 0 2 storage_uniform bounds GridBounds

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= bounds.nodeCount) {
		return;
	}
	let n = nodes[i];
	let cell = cellOf(n.position.x, n.position.y);
	atomicAdd(&grid[cell.y * bounds.resolution + cell.x], i32(n.mass * 65536.0));
}

fn cellOf(x: f32, y: f32) -> vec2<u32> {
	let w = max(bounds.maxX - bounds.minX, 0.0001);
	let h = max(bounds.maxY - bounds.minY, 0.0001);
	let tx = clamp((x - bounds.minX) / w, 0.0, 0.9999);
	let ty = clamp((y - bounds.minY) / h, 0.0, 0.9999);
	return vec2<u32>(u32(tx * f32(bounds.resolution)), u32(ty * f32(bounds.resolution)));
}
`

const repulsionSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:group 0 1 storage_read grid array<i32>
//@hg:include force_config
//@hg:group 0 2 storage_uniform config force_config
//@hg:group 0 3 storage_read_write forces array<atomic<i32>>

struct GridBounds {
	minX: f32, minY: f32, maxX: f32, maxY: f32,
	resolution: u32, nodeCount: u32, _pad0: u32, _pad1: u32,
}
//@hg:group 0 4 storage_uniform bounds GridBounds

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= bounds.nodeCount) {
		return;
	}
	let n = nodes[i];
	let w = max(bounds.maxX - bounds.minX, 0.0001);
	let h = max(bounds.maxY - bounds.minY, 0.0001);
	let tx = clamp((n.position.x - bounds.minX) / w, 0.0, 0.9999);
	let ty = clamp((n.position.y - bounds.minY) / h, 0.0, 0.9999);
	let cx = i32(tx * f32(bounds.resolution));
	let cy = i32(ty * f32(bounds.resolution));
	let res = i32(bounds.resolution);

	let left = sample(cx - 1, cy, res);
	let right = sample(cx + 1, cy, res);
	let down = sample(cx, cy - 1, res);
	let up = sample(cx, cy + 1, res);

	let gradX = (right - left) * 0.5;
	let gradY = (up - down) * 0.5;

	let fx = -config.repulsionStrength * gradX;
	let fy = -config.repulsionStrength * gradY;

	atomicAdd(&forces[i * 2u], i32(fx * config.fixedPointScale));
	atomicAdd(&forces[i * 2u + 1u], i32(fy * config.fixedPointScale));
}

fn sample(x: i32, y: i32, res: i32) -> f32 {
	if (x < 0 || y < 0 || x >= res || y >= res) {
		return 0.0;
	}
	return f32(grid[y * res + x]) / 65536.0;
}
`

type densityField struct {
	registered bool

	gridBuf   *gpubuf.Buffer
	boundsBuf *gpubuf.Buffer

	splatGroup     bindgroup.BindGroupProvider
	repulsionGroup bindgroup.BindGroupProvider
}

// New constructs an unconfigured density-field algorithm.
func New() algorithm.Algorithm {
	return &densityField{}
}

var _ algorithm.Algorithm = &densityField{}

func (a *densityField) Info() algorithm.Info {
	return algorithm.Info{
		ID:          ID,
		DisplayName: "Density Field",
		Complexity:  algorithm.ComplexityLinear,
	}
}

func (a *densityField) HandlesGravity() bool   { return false }
func (a *densityField) HandlesSprings() bool   { return false }
func (a *densityField) HandlesRepulsion() bool { return true }

func (a *densityField) CreatePipelines(r renderer.Renderer) error {
	if a.registered {
		return nil
	}
	splat := shader.NewShaderFromSource(pipelineKeySplat, shader.ShaderTypeCompute, splatSource)
	repulsion := shader.NewShaderFromSource(pipelineKeyRepulsion, shader.ShaderTypeCompute, repulsionSource)
	pipelines := []pipeline.Pipeline{
		pipeline.NewPipeline(pipelineKeySplat, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(splat)),
		pipeline.NewPipeline(pipelineKeyRepulsion, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(repulsion)),
	}
	if err := r.RegisterPipelines(pipelines...); err != nil {
		return fmt.Errorf("density: register pipelines: %w", err)
	}
	a.registered = true
	return nil
}

func (a *densityField) CreateBuffers(r renderer.Renderer, maxNodes uint32) error {
	device := r.Device()
	gridBuf, err := gpubuf.NewBuffer(device, "density:grid", wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, GridResolution*GridResolution*4)
	if err != nil {
		return fmt.Errorf("density: create grid buffer: %w", err)
	}
	a.gridBuf = gridBuf

	boundsBuf, err := gpubuf.NewBuffer(device, "density:bounds", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, 32)
	if err != nil {
		return fmt.Errorf("density: create bounds buffer: %w", err)
	}
	a.boundsBuf = boundsBuf
	return nil
}

func (a *densityField) CreateBindGroups(r renderer.Renderer, ctx algorithm.Context) error {
	if a.gridBuf == nil {
		return fmt.Errorf("density: create bind groups: %w", herr.ErrNotInitialized)
	}
	a.splatGroup = bindgroup.NewBindGroupProvider("density:splat")
	a.splatGroup.SetBuffer(0, ctx.NodeData.Buffer(0))
	a.splatGroup.SetBuffer(1, a.gridBuf.Raw())
	a.splatGroup.SetBuffer(2, a.boundsBuf.Raw())

	a.repulsionGroup = bindgroup.NewBindGroupProvider("density:repulsion")
	a.repulsionGroup.SetBuffer(0, ctx.NodeData.Buffer(0))
	a.repulsionGroup.SetBuffer(1, a.gridBuf.Raw())
	a.repulsionGroup.SetBuffer(2, ctx.ForceConfigBuffer)
	a.repulsionGroup.SetBuffer(3, ctx.ForceAccumulator.Buffer(0))
	a.repulsionGroup.SetBuffer(4, a.boundsBuf.Raw())
	if err := r.InitComputeBindGroup(pipelineKeySplat, a.splatGroup); err != nil {
		return fmt.Errorf("density: create bind groups: %w", err)
	}
	if err := r.InitComputeBindGroup(pipelineKeyRepulsion, a.repulsionGroup); err != nil {
		return fmt.Errorf("density: create bind groups: %w", err)
	}
	return nil
}

func (a *densityField) UpdateUniforms(r renderer.Renderer, ctx algorithm.Context) error {
	type gridBounds struct {
		MinX, MinY, MaxX, MaxY float32
		Resolution, NodeCount  uint32
		_pad0, _pad1           uint32
	}
	bounds := gridBounds{
		MinX: ctx.ViewportMinX, MinY: ctx.ViewportMinY,
		MaxX: ctx.ViewportMaxX, MaxY: ctx.ViewportMaxY,
		Resolution: GridResolution, NodeCount: ctx.NodeCount,
	}
	boundsProvider := bindgroup.NewBindGroupProvider("density:bounds-write")
	boundsProvider.SetBuffer(0, a.boundsBuf.Raw())
	r.WriteBuffers([]bindgroup.BufferWrite{
		{Provider: boundsProvider, Binding: 0, Data: common.StructToBytes(&bounds)},
	})
	return nil
}

// RecordRepulsionPass re-zeroes the grid itself (an accumulation buffer
// that is never cleared would compound density forever): the clear is
// issued as a buffer-write of zeros before the splat dispatch.
func (a *densityField) RecordRepulsionPass(r renderer.Renderer, ctx algorithm.Context, nodeCount uint32) error {
	zeros := make([]byte, GridResolution*GridResolution*4)
	clearProvider := bindgroup.NewBindGroupProvider("density:clear")
	clearProvider.SetBuffer(0, a.gridBuf.Raw())
	r.WriteBuffers([]bindgroup.BufferWrite{{Provider: clearProvider, Binding: 0, Data: zeros}})

	groups := (nodeCount + 255) / 256
	r.DispatchCompute(pipelineKeySplat, a.splatGroup, [3]uint32{groups, 1, 1})
	r.DispatchCompute(pipelineKeyRepulsion, a.repulsionGroup, [3]uint32{groups, 1, 1})
	return nil
}

func (a *densityField) Destroy() {
	if a.gridBuf != nil {
		a.gridBuf.Release()
		a.gridBuf = nil
	}
	if a.boundsBuf != nil {
		a.boundsBuf.Release()
		a.boundsBuf = nil
	}
}
