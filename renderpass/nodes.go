// Package renderpass holds the two instanced draw passes the Layer
// Compositor's fixed pass order always ends on (spec §4.6 steps 6-7):
// edges, then nodes. Each pass owns its own pipeline, a unit-quad mesh
// shared across every instance, and a bind group built from the shared
// node/edge buffers and the viewport uniform block every pass reads.
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

const nodePipelineKey = "renderpass:nodes"

// unitQuad is the four corners of [-1,1]^2 in a vertex's local space, the
// shared mesh every instanced draw pass scales and positions per
// instance; quadIndices winds it into two triangles.
var unitQuad = []float32{
	-1, -1,
	1, -1,
	1, 1,
	-1, 1,
}

var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

// NodeStyle is the per-frame uniform a node draw reads: disc radius in
// screen pixels, ring border width/colour, and the selected/hovered node
// indices (spec §4.6 step 7: "Selection and hover states are shader
// uniforms applied to a highlighted subset").
type NodeStyle struct {
	Radius          float32
	RingWidth       float32
	RingR, RingG, RingB, RingA float32
	SelectedIndex   int32 // -1 if none
	HoveredIndex    int32 // -1 if none
	_pad0, _pad1    float32
}

const nodeVertexShaderSource = `
//@hg:include viewport_uniforms
//@hg:group 0 0 storage_uniform viewport ViewportUniforms
//@hg:include node_data
//@hg:group 0 1 storage_read nodes array<node_data>

struct NodeStyle {
	radius: f32,
	ringWidth: f32,
	ringR: f32, ringG: f32, ringB: f32, ringA: f32,
	selectedIndex: i32,
	hoveredIndex: i32,
	_pad0: f32, _pad1: f32,
}
//@hg:group 0 2 storage_uniform style NodeStyle

struct VertexOut {
	@builtin(position) clipPosition: vec4<f32>,
	@location(0) localPosition: vec2<f32>,
	@location(1) @interpolate(flat) instanceIndex: u32,
}

@vertex
fn vs_main(@location(0) localPos: vec2<f32>, @builtin(instance_index) instance: u32) -> VertexOut {
	let n = nodes[instance];
	let graphPos = n.position + localPos * style.radius * viewport.invScale;
	let graphToClip = mat3x3<f32>(viewport.transformCol0.xyz, viewport.transformCol1.xyz, viewport.transformCol2.xyz);
	let clip = vec4<f32>((graphToClip * vec3<f32>(graphPos, 1.0)).xy, 0.0, 1.0);
	var out: VertexOut;
	out.clipPosition = clip;
	out.localPosition = localPos;
	out.instanceIndex = instance;
	return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
	let d = length(in.localPosition);
	if (d > 1.0) {
		discard;
	}
	var color = vec4<f32>(0.6, 0.7, 0.9, 1.0);
	let ringOuter = 1.0;
	let ringInner = 1.0 - style.ringWidth;
	if (d >= ringInner && style.ringWidth > 0.0) {
		color = vec4<f32>(style.ringR, style.ringG, style.ringB, style.ringA);
	}
	if (i32(in.instanceIndex) == style.selectedIndex) {
		color = mix(color, vec4<f32>(1.0, 0.85, 0.2, 1.0), 0.6);
	} else if (i32(in.instanceIndex) == style.hoveredIndex) {
		color = mix(color, vec4<f32>(1.0, 1.0, 1.0, 1.0), 0.3);
	}
	return color;
}
`

// NodePass draws every live node as an instanced, camera-facing disc.
type NodePass struct {
	provider bindgroup.BindGroupProvider
	style    *gpuNodeStyleBuffer
}

type gpuNodeStyleBuffer struct {
	buf *wgpu.Buffer
}

// NewNodePass registers the node draw pipeline and allocates its style
// uniform buffer.
func NewNodePass(r renderer.Renderer) (*NodePass, error) {
	vert := shader.NewShaderFromSource(nodePipelineKey+":vert", shader.ShaderTypeVertex, nodeVertexShaderSource)
	frag := shader.NewShaderFromSource(nodePipelineKey+":frag", shader.ShaderTypeFragment, nodeVertexShaderSource)
	p := pipeline.NewPipeline(nodePipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vert), pipeline.WithFragmentShader(frag),
		pipeline.WithBlendEnabled(true), pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList))
	if err := r.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("renderpass: register node pipeline: %w", err)
	}

	styleBuf, err := r.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "renderpass:node-style",
		Size:  40,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("renderpass: create node style buffer: %w", err)
	}

	vertexData := common.SliceToBytes(unitQuad)
	indexData := common.SliceToBytes(quadIndices)
	provider := bindgroup.NewBindGroupProvider("renderpass:nodes")
	if err := r.InitMeshBuffers(provider, vertexData, indexData, len(quadIndices)); err != nil {
		return nil, fmt.Errorf("renderpass: init node mesh: %w", err)
	}

	return &NodePass{provider: provider, style: &gpuNodeStyleBuffer{buf: styleBuf}}, nil
}

// UpdateStyle uploads the current frame's NodeStyle.
func (p *NodePass) UpdateStyle(r renderer.Renderer, style NodeStyle) {
	provider := bindgroup.NewBindGroupProvider("renderpass:node-style-write")
	provider.SetBuffer(0, p.style.buf)
	r.WriteBuffers([]bindgroup.BufferWrite{{Provider: provider, Binding: 0, Data: common.StructToBytes(&style)}})
}

// Draw records the instanced node draw call for nodeCount live nodes
// against the shared node-data and viewport bind groups.
func (p *NodePass) Draw(r renderer.Renderer, nodeCount uint32, shared []bindgroup.BindGroupProvider) error {
	if nodeCount == 0 {
		return nil
	}
	return r.DrawCall(nodePipelineKey, p.provider, nodeCount, shared)
}

// Destroy releases the pass's own GPU resources (not the shared buffers
// passed to Draw).
func (p *NodePass) Destroy() {
	p.provider.Release()
	if p.style.buf != nil {
		p.style.buf.Release()
	}
}
