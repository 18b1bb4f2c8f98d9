package renderpass

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
)

const edgePipelineKey = "renderpass:edges"

// PWMShape selects the edge-flow brightness-modulation waveform (spec
// §4.6 step 6).
type PWMShape uint32

const (
	PWMSquare PWMShape = iota
	PWMTriangle
	PWMSine
)

// EdgeStyle is the per-frame uniform edges read: line width, curvature
// scale, and up to two edge-flow layers' phase/shape.
type EdgeStyle struct {
	Width              float32
	CurvatureScale      float32
	FlowEnabled         uint32
	_pad0               float32
	Layer1Shape         uint32
	Layer1Phase         float32
	Layer1Speed         float32
	Layer1Width         float32
	Layer2Shape         uint32
	Layer2Phase         float32
	Layer2Speed         float32
	Layer2Fade          float32
}

// edgeVertexShaderSource draws every edge as a quadratic Bézier ribbon:
// the vertex shader offsets the straight line's local t-coordinate by a
// perpendicular bow proportional to curvatureScale, and the fragment
// shader computes signed distance to the centre-line for antialiasing
// and, when flow is enabled, modulates brightness by one or two PWM
// waves combined with the "punch-through" rule from spec §4.6 step 6:
// max(layer1, layer2*(1 - fade2*0.7)).
const edgeVertexShaderSource = `
//@hg:include viewport_uniforms
//@hg:group 0 0 storage_uniform viewport ViewportUniforms
//@hg:include node_data
//@hg:group 0 1 storage_read nodes array<node_data>
//@hg:include edge_data
//@hg:group 0 2 storage_read edges array<edge_data>

struct EdgeStyle {
	width: f32,
	curvatureScale: f32,
	flowEnabled: u32,
	_pad0: f32,
	layer1Shape: u32, layer1Phase: f32, layer1Speed: f32, layer1Width: f32,
	layer2Shape: u32, layer2Phase: f32, layer2Speed: f32, layer2Fade: f32,
}
//@hg:group 0 3 storage_uniform style EdgeStyle

struct VertexOut {
	@builtin(position) clipPosition: vec4<f32>,
	@location(0) t: f32,
	@location(1) lateral: f32,
}

@vertex
fn vs_main(@location(0) localPos: vec2<f32>, @builtin(instance_index) instance: u32) -> VertexOut {
	let e = edges[instance];
	let a = nodes[e.source].position;
	let b = nodes[e.target].position;
	let mid = (a + b) * 0.5;
	let dir = b - a;
	let len = max(length(dir), 0.0001);
	let perp = vec2<f32>(-dir.y, dir.x) / len;
	let control = mid + perp * len * style.curvatureScale;

	let t = localPos.x * 0.5 + 0.5;
	let p0 = mix(a, control, t);
	let p1 = mix(control, b, t);
	let curvePos = mix(p0, p1, t);

	let offset = perp * localPos.y * style.width * viewport.invScale;
	let graphPos = curvePos + offset;

	var out: VertexOut;
	let graphToClip = mat3x3<f32>(viewport.transformCol0.xyz, viewport.transformCol1.xyz, viewport.transformCol2.xyz);
	out.clipPosition = vec4<f32>((graphToClip * vec3<f32>(graphPos, 1.0)).xy, 0.0, 1.0);
	out.t = t;
	out.lateral = localPos.y;
	return out;
}

fn pwm(shape: u32, phase: f32) -> f32 {
	let x = fract(phase);
	if (shape == 0u) {
		return select(0.0, 1.0, x < 0.5);
	} else if (shape == 1u) {
		return 1.0 - abs(x * 2.0 - 1.0);
	}
	let s = sin(x * 3.14159265);
	return s * s * s * s;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
	let d = abs(in.lateral);
	let aa = 1.0 - smoothstep(0.8, 1.0, d);
	if (aa <= 0.0) {
		discard;
	}
	var brightness = 1.0;
	if (style.flowEnabled != 0u) {
		let layer1 = pwm(style.layer1Shape, in.t * style.layer1Width - style.layer1Phase);
		let layer2 = pwm(style.layer2Shape, in.t - style.layer2Phase);
		brightness = max(layer1, layer2 * (1.0 - style.layer2Fade * 0.7));
	}
	let color = vec3<f32>(0.5, 0.55, 0.65) * brightness;
	return vec4<f32>(color, aa);
}
`

// EdgePass draws every live edge as an instanced curved ribbon.
type EdgePass struct {
	provider bindgroup.BindGroupProvider
	style    *wgpu.Buffer
}

// NewEdgePass registers the edge draw pipeline and allocates its style
// uniform buffer.
func NewEdgePass(r renderer.Renderer) (*EdgePass, error) {
	vert := shader.NewShaderFromSource(edgePipelineKey+":vert", shader.ShaderTypeVertex, edgeVertexShaderSource)
	frag := shader.NewShaderFromSource(edgePipelineKey+":frag", shader.ShaderTypeFragment, edgeVertexShaderSource)
	p := pipeline.NewPipeline(edgePipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vert), pipeline.WithFragmentShader(frag),
		pipeline.WithBlendEnabled(true), pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList))
	if err := r.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("renderpass: register edge pipeline: %w", err)
	}

	styleBuf, err := r.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "renderpass:edge-style",
		Size:  48,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("renderpass: create edge style buffer: %w", err)
	}

	vertexData := common.SliceToBytes(unitQuad)
	indexData := common.SliceToBytes(quadIndices)
	provider := bindgroup.NewBindGroupProvider("renderpass:edges")
	if err := r.InitMeshBuffers(provider, vertexData, indexData, len(quadIndices)); err != nil {
		return nil, fmt.Errorf("renderpass: init edge mesh: %w", err)
	}

	return &EdgePass{provider: provider, style: styleBuf}, nil
}

// UpdateStyle uploads the current frame's EdgeStyle.
func (p *EdgePass) UpdateStyle(r renderer.Renderer, style EdgeStyle) {
	provider := bindgroup.NewBindGroupProvider("renderpass:edge-style-write")
	provider.SetBuffer(0, p.style)
	r.WriteBuffers([]bindgroup.BufferWrite{{Provider: provider, Binding: 0, Data: common.StructToBytes(&style)}})
}

// Draw records the instanced edge draw call for edgeCount live edges.
func (p *EdgePass) Draw(r renderer.Renderer, edgeCount uint32, shared []bindgroup.BindGroupProvider) error {
	if edgeCount == 0 {
		return nil
	}
	return r.DrawCall(edgePipelineKey, p.provider, edgeCount, shared)
}

// Destroy releases the pass's own GPU resources.
func (p *EdgePass) Destroy() {
	p.provider.Release()
	if p.style != nil {
		p.style.Release()
	}
}
