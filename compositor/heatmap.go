package compositor

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
	"github.com/tomWhiting/heroine-graph-sub003/valuestream"
)

const heatmapPipelineKey = "compositor:heatmap"

// lutSamples is the resolution of the CPU-precomputed colour lookup
// table uploaded alongside the density grid; the fragment shader picks
// the nearest lower entry (no interpolation between entries) rather than
// re-evaluating a ColorScale per pixel.
const lutSamples = 256

// fullScreenTriangle covers the clip-space quad with a single
// over-sized triangle, clipped by the rasterizer; kept as an indexed
// mesh like every other draw call since DrawCall always issues an
// indexed draw.
var fullScreenTriangle = []float32{
	-1, -1,
	3, -1,
	-1, 3,
}

var fullScreenTriangleIndices = []uint32{0, 1, 2}

// heatmapSource colourizes the density grid in place of a texture
// sample: a full-screen triangle reads the density storage buffer at
// the pixel's grid cell, normalizes against params.maxDensity, and
// looks up the resulting 0..1 value in a small colour LUT buffer built
// from a valuestream.ColorScale on the CPU.
const heatmapSource = `
struct HeatmapParams {
	gridWidth: u32,
	gridHeight: u32,
	maxDensity: f32,
	opacity: f32,
	fixedPointScale: f32,
}
//@hg:group 0 0 storage_uniform params HeatmapParams
//@hg:group 0 1 storage_read grid array<i32>
//@hg:group 0 2 storage_read lut array<vec4<f32>>

struct VertexOut {
	@builtin(position) clipPosition: vec4<f32>,
	@location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@location(0) localPos: vec2<f32>) -> VertexOut {
	var out: VertexOut;
	out.clipPosition = vec4<f32>(localPos, 0.0, 1.0);
	out.uv = localPos * 0.5 + vec2<f32>(0.5, 0.5);
	return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
	let gx = u32(in.uv.x * f32(params.gridWidth));
	let gy = u32((1.0 - in.uv.y) * f32(params.gridHeight));
	if (gx >= params.gridWidth || gy >= params.gridHeight) {
		discard;
	}
	let idx = gy * params.gridWidth + gx;
	let raw = f32(grid[idx]) / params.fixedPointScale;
	let norm = clamp(raw / max(params.maxDensity, 0.0001), 0.0, 1.0);
	let lutIdx = u32(norm * f32(arrayLength(&lut) - 1u));
	let color = lut[lutIdx];
	if (color.a <= 0.0) {
		discard;
	}
	return vec4<f32>(color.rgb, color.a * params.opacity);
}
`

// HeatmapPass colourizes a DensityPass's grid using a ColorScale-derived
// LUT, alpha-blended (source alpha over) onto whatever the compositor has
// drawn so far.
type HeatmapPass struct {
	provider  bindgroup.BindGroupProvider
	paramsBuf *wgpu.Buffer
	lutBuf    *wgpu.Buffer
}

// NewHeatmapPass registers the colourization pipeline and allocates the
// LUT buffer, sampling scale into lutSamples entries.
func NewHeatmapPass(r renderer.Renderer, scale valuestream.ColorScale) (*HeatmapPass, error) {
	vert := shader.NewShaderFromSource(heatmapPipelineKey+":vert", shader.ShaderTypeVertex, heatmapSource)
	frag := shader.NewShaderFromSource(heatmapPipelineKey+":frag", shader.ShaderTypeFragment, heatmapSource)
	p := pipeline.NewPipeline(heatmapPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vert), pipeline.WithFragmentShader(frag),
		pipeline.WithBlendEnabled(true), pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList))
	if err := r.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("compositor: register heatmap pipeline: %w", err)
	}

	paramsBuf, err := r.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "compositor:heatmap-params", Size: 32,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: create heatmap params: %w", err)
	}
	lutBuf, err := r.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "compositor:heatmap-lut", Size: lutSamples * 16,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: create heatmap lut: %w", err)
	}

	h := &HeatmapPass{paramsBuf: paramsBuf, lutBuf: lutBuf}
	h.provider = bindgroup.NewBindGroupProvider("compositor:heatmap")
	h.provider.SetBuffer(0, paramsBuf)
	h.provider.SetBuffer(2, lutBuf)
	vertexData := common.SliceToBytes(fullScreenTriangle)
	indexData := common.SliceToBytes(fullScreenTriangleIndices)
	if err := r.InitMeshBuffers(h.provider, vertexData, indexData, len(fullScreenTriangleIndices)); err != nil {
		return nil, fmt.Errorf("compositor: init heatmap mesh: %w", err)
	}
	if err := h.uploadLUT(r, scale); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HeatmapPass) uploadLUT(r renderer.Renderer, scale valuestream.ColorScale) error {
	lut := make([]float32, lutSamples*4)
	for i := 0; i < lutSamples; i++ {
		t := float32(i) / float32(lutSamples-1)
		r, g, b, a := scale.Sample(t)
		lut[i*4+0] = r
		lut[i*4+1] = g
		lut[i*4+2] = b
		lut[i*4+3] = a
	}
	provider := bindgroup.NewBindGroupProvider("compositor:heatmap-lut-write")
	provider.SetBuffer(0, h.lutBuf)
	r.WriteBuffers([]bindgroup.BufferWrite{{Provider: provider, Binding: 0, Data: common.SliceToBytes(lut)}})
	return nil
}

// HeatmapParams configures normalization and opacity for the current frame.
type HeatmapParams struct {
	GridWidth, GridHeight uint32
	MaxDensity, Opacity   float32
}

// Draw colourizes the given density grid buffer across a full-screen
// triangle, binding density's grid buffer as this pass's grid input.
func (h *HeatmapPass) Draw(r renderer.Renderer, density *DensityPass, params HeatmapParams) error {
	h.provider.SetBuffer(1, density.Grid())
	payload := struct {
		GridWidth, GridHeight uint32
		MaxDensity, Opacity   float32
		FixedPointScale       float32
		_pad0, _pad1, _pad2   float32
	}{
		GridWidth: params.GridWidth, GridHeight: params.GridHeight,
		MaxDensity: params.MaxDensity, Opacity: params.Opacity,
		FixedPointScale: float32(1 << 16),
	}
	provider := bindgroup.NewBindGroupProvider("compositor:heatmap-params-write")
	provider.SetBuffer(0, h.paramsBuf)
	r.WriteBuffers([]bindgroup.BufferWrite{{Provider: provider, Binding: 0, Data: common.StructToBytes(&payload)}})
	return r.DrawCall(heatmapPipelineKey, h.provider, 1, nil)
}

// Destroy releases the pass's GPU resources.
func (h *HeatmapPass) Destroy() {
	h.provider.Release()
	if h.paramsBuf != nil {
		h.paramsBuf.Release()
	}
	if h.lutBuf != nil {
		h.lutBuf.Release()
	}
}
