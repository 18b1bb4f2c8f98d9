package compositor

import (
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
)

const densitySplatPipelineKey = "compositor:density-splat"

// densityGridSource accumulates a Gaussian splat per live node into a
// grid of fixed-point i32 cells, kept as a storage buffer rather than an
// R32F render-target texture: the renderer currently offers no
// create-empty-texture/render-to-texture primitive, and representing the
// grid as a buffer keeps this pass consistent with how every other
// compute kernel in the engine moves data (see DESIGN.md). additive
// blending across instances is done with atomicAdd on a fixed-point
// reinterpretation of the accumulator, mirroring the simulation driver's
// own fixed-point force accumulation trick.
const densityGridSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>

struct DensityParams {
	kernelRadius: f32,
	intensity: f32,
	blendMode: u32,
	textureSize: vec2<f32>,
}
//@hg:group 0 1 storage_uniform params DensityParams
//@hg:group 0 2 storage_read_write grid array<atomic<i32>>

struct Counts { nodeCount: u32, fixedPointScale: f32, minX: f32, minY: f32 }
//@hg:group 0 3 storage_uniform counts Counts

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= counts.nodeCount) {
		return;
	}
	let n = nodes[i];
	let gx = i32(((n.position.x - counts.minX) / params.kernelRadius));
	let gy = i32(((n.position.y - counts.minY) / params.kernelRadius));
	let w = i32(params.textureSize.x);
	let h = i32(params.textureSize.y);

	let radiusCells = 2;
	for (var dy = -radiusCells; dy <= radiusCells; dy = dy + 1) {
		for (var dx = -radiusCells; dx <= radiusCells; dx = dx + 1) {
			let cx = gx + dx;
			let cy = gy + dy;
			if (cx < 0 || cy < 0 || cx >= w || cy >= h) {
				continue;
			}
			let d2 = f32(dx * dx + dy * dy);
			let weight = exp(-d2 * 0.5) * params.intensity;
			let idx = u32(cy * w + cx);
			atomicAdd(&grid[idx], i32(weight * counts.fixedPointScale));
		}
	}
}
`

// DensityPass accumulates node positions into a fixed-point grid every
// frame it is enabled. Heatmap reads the grid directly on the GPU and
// normalizes it there; contour extraction does not read this grid (it
// recomputes the same splat on the CPU with SplatGrid), and metaballs do
// not use it.
type DensityPass struct {
	grid       *wgpu.Buffer
	gridWidth  uint32
	gridHeight uint32

	paramsBuf *wgpu.Buffer
	countsBuf *wgpu.Buffer

	provider bindgroup.BindGroupProvider
}

// NewDensityPass allocates a gridWidth x gridHeight accumulator and
// registers the splat compute pipeline.
func NewDensityPass(r renderer.Renderer, gridWidth, gridHeight uint32) (*DensityPass, error) {
	s := shader.NewShaderFromSource(densitySplatPipelineKey, shader.ShaderTypeCompute, densityGridSource)
	p := pipeline.NewPipeline(densitySplatPipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(s))
	if err := r.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("compositor: register density pipeline: %w", err)
	}

	grid, err := r.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "compositor:density-grid",
		Size:  uint64(gridWidth) * uint64(gridHeight) * 4,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: create density grid: %w", err)
	}
	paramsBuf, err := r.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "compositor:density-params", Size: 24,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: create density params: %w", err)
	}
	countsBuf, err := r.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "compositor:density-counts", Size: 16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: create density counts: %w", err)
	}

	provider := bindgroup.NewBindGroupProvider("compositor:density")
	provider.SetBuffer(2, grid)

	return &DensityPass{
		grid: grid, gridWidth: gridWidth, gridHeight: gridHeight,
		paramsBuf: paramsBuf, countsBuf: countsBuf, provider: provider,
	}, nil
}

// DensityParams configures the current frame's splat kernel.
type DensityParams struct {
	KernelRadius float32
	Intensity    float32
	BlendMode    uint32
	_pad0        float32
	TextureW     float32
	TextureH     float32
}

// Clear zeroes the grid (atomicAdd accumulates across frames otherwise).
func (d *DensityPass) Clear(r renderer.Renderer) {
	zeros := make([]byte, d.gridWidth*d.gridHeight*4)
	provider := bindgroup.NewBindGroupProvider("compositor:density-clear")
	provider.SetBuffer(0, d.grid)
	r.WriteBuffers([]bindgroup.BufferWrite{{Provider: provider, Binding: 0, Data: zeros}})
}

// Splat dispatches the accumulation kernel for nodeCount live nodes.
// Must run within an already-open compute frame.
func (d *DensityPass) Splat(r renderer.Renderer, params DensityParams, nodeCount uint32, minX, minY float32) error {
	d.provider.SetBuffer(1, d.paramsBuf)
	d.provider.SetBuffer(3, d.countsBuf)

	paramsPayload := DensityParams{
		KernelRadius: params.KernelRadius, Intensity: params.Intensity,
		BlendMode: params.BlendMode, TextureW: float32(d.gridWidth), TextureH: float32(d.gridHeight),
	}
	countsPayload := struct {
		NodeCount       uint32
		FixedPointScale float32
		MinX, MinY      float32
	}{NodeCount: nodeCount, FixedPointScale: float32(1 << 16), MinX: minX, MinY: minY}

	paramsProvider := bindgroup.NewBindGroupProvider("compositor:density-params-write")
	paramsProvider.SetBuffer(0, d.paramsBuf)
	countsProvider := bindgroup.NewBindGroupProvider("compositor:density-counts-write")
	countsProvider.SetBuffer(0, d.countsBuf)
	r.WriteBuffers([]bindgroup.BufferWrite{
		{Provider: paramsProvider, Binding: 0, Data: common.StructToBytes(&paramsPayload)},
		{Provider: countsProvider, Binding: 0, Data: common.StructToBytes(&countsPayload)},
	})

	workgroups := (nodeCount + 255) / 256
	if workgroups == 0 {
		return nil
	}
	if err := r.InitComputeBindGroup(densitySplatPipelineKey, d.provider); err != nil {
		return fmt.Errorf("compositor: bind density splat: %w", err)
	}
	r.DispatchCompute(densitySplatPipelineKey, d.provider, [3]uint32{workgroups, 1, 1})
	return nil
}

// Grid exposes the raw fixed-point accumulator buffer for Heatmap to
// sample and for a future readback-based contour/metaball extraction.
func (d *DensityPass) Grid() *wgpu.Buffer { return d.grid }

// Destroy releases the pass's GPU resources.
func (d *DensityPass) Destroy() {
	d.provider.Release()
	if d.grid != nil {
		d.grid.Release()
	}
	if d.paramsBuf != nil {
		d.paramsBuf.Release()
	}
	if d.countsBuf != nil {
		d.countsBuf.Release()
	}
}

// SplatGrid is the CPU-side mirror of densityGridSource's math, used by
// the contour-extraction pass (which walks this CPU-computed grid; there
// is no GPU readback) and by tests that can't spin up a device. width/height are
// in grid cells; minX/minY/kernelRadius match Splat's GPU arguments.
func SplatGrid(nodesX, nodesY []float32, width, height int, minX, minY, kernelRadius, intensity float32) []float32 {
	grid := make([]float32, width*height)
	for n := range nodesX {
		gx := int((nodesX[n] - minX) / kernelRadius)
		gy := int((nodesY[n] - minY) / kernelRadius)
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				cx, cy := gx+dx, gy+dy
				if cx < 0 || cy < 0 || cx >= width || cy >= height {
					continue
				}
				d2 := float32(dx*dx + dy*dy)
				weight := expNeg(d2*0.5) * intensity
				grid[cy*width+cx] += weight
			}
		}
	}
	return grid
}

// expNeg approximates exp(-x) with the standard library's math.Exp,
// wrapped so SplatGrid reads like the WGSL kernel it mirrors.
func expNeg(x float32) float32 {
	return float32(math.Exp(-float64(x)))
}
