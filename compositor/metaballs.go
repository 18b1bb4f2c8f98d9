package compositor

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
)

const metaballPipelineKey = "compositor:metaballs"

// metaballSource shades a smooth-minimum signed-distance field over
// every node's disc directly from the node-data storage buffer, with no
// grid or texture pass: the field is cheap enough per-pixel (a loop
// over live nodes) that an intermediate representation buys nothing at
// the node counts this engine targets.
const metaballSource = `
//@hg:include viewport_uniforms
//@hg:group 0 0 storage_uniform viewport ViewportUniforms
//@hg:include node_data
//@hg:group 0 1 storage_read nodes array<node_data>

struct MetaballParams {
	nodeCount: u32,
	radius: f32,
	smoothing: f32,
	isoLevel: f32,
	colorR: f32, colorG: f32, colorB: f32, opacity: f32,
}
//@hg:group 0 2 storage_uniform params MetaballParams

struct VertexOut {
	@builtin(position) clipPosition: vec4<f32>,
	@location(0) graphPos: vec2<f32>,
}

@vertex
fn vs_main(@location(0) localPos: vec2<f32>) -> VertexOut {
	var out: VertexOut;
	out.clipPosition = vec4<f32>(localPos, 0.0, 1.0);
	out.graphPos = localPos;
	return out;
}

fn smin(a: f32, b: f32, k: f32) -> f32 {
	let h = clamp(0.5 + 0.5 * (b - a) / k, 0.0, 1.0);
	return mix(b, a, h) - k * h * (1.0 - h);
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
	var field = 1.0e6;
	for (var i = 0u; i < params.nodeCount; i = i + 1u) {
		let d = length(in.graphPos - nodes[i].position) - params.radius;
		field = smin(field, d, params.smoothing);
	}
	if (field > params.isoLevel) {
		discard;
	}
	let edge = smoothstep(params.isoLevel, params.isoLevel - 0.02, field);
	return vec4<f32>(params.colorR, params.colorG, params.colorB, params.opacity * edge);
}
`

// MetaballPass shades a smooth union of node discs, typically drawn
// before edges and nodes so its soft blobs read as background cohesion
// cues rather than occluding foreground detail.
type MetaballPass struct {
	provider  bindgroup.BindGroupProvider
	paramsBuf *wgpu.Buffer
}

// MetaballParams configures the field's radius, smoothing width, and
// tint for the current frame.
type MetaballParams struct {
	NodeCount          uint32
	Radius             float32
	Smoothing          float32
	IsoLevel           float32
	R, G, B, A         float32
}

// NewMetaballPass registers the metaball pipeline and its full-screen
// triangle mesh.
func NewMetaballPass(r renderer.Renderer) (*MetaballPass, error) {
	vert := shader.NewShaderFromSource(metaballPipelineKey+":vert", shader.ShaderTypeVertex, metaballSource)
	frag := shader.NewShaderFromSource(metaballPipelineKey+":frag", shader.ShaderTypeFragment, metaballSource)
	p := pipeline.NewPipeline(metaballPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vert), pipeline.WithFragmentShader(frag),
		pipeline.WithBlendEnabled(true), pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList))
	if err := r.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("compositor: register metaball pipeline: %w", err)
	}

	paramsBuf, err := r.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "compositor:metaball-params", Size: 32,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: create metaball params: %w", err)
	}

	provider := bindgroup.NewBindGroupProvider("compositor:metaballs")
	vertexData := common.SliceToBytes(fullScreenTriangle)
	indexData := common.SliceToBytes(fullScreenTriangleIndices)
	if err := r.InitMeshBuffers(provider, vertexData, indexData, len(fullScreenTriangleIndices)); err != nil {
		return nil, fmt.Errorf("compositor: init metaball mesh: %w", err)
	}
	provider.SetBuffer(2, paramsBuf)

	return &MetaballPass{provider: provider, paramsBuf: paramsBuf}, nil
}

// Draw uploads params and records the metaball shading pass.
func (m *MetaballPass) Draw(r renderer.Renderer, params MetaballParams) error {
	provider := bindgroup.NewBindGroupProvider("compositor:metaball-params-write")
	provider.SetBuffer(0, m.paramsBuf)
	r.WriteBuffers([]bindgroup.BufferWrite{{Provider: provider, Binding: 0, Data: common.StructToBytes(&params)}})
	return r.DrawCall(metaballPipelineKey, m.provider, 1, nil)
}

// Destroy releases the pass's GPU resources.
func (m *MetaballPass) Destroy() {
	m.provider.Release()
	if m.paramsBuf != nil {
		m.paramsBuf.Release()
	}
}
