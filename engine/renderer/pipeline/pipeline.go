// Package pipeline wraps WebGPU render and compute pipelines with the
// configuration state (blend, topology, write mask) needed to build them,
// independent of when the underlying GPU objects are actually created.
package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute PipelineType = iota
	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	vertexShader, fragmentShader, computeShader shader.Shader

	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	blendEnabled bool
	topology     wgpu.PrimitiveTopology
	writeMask    wgpu.ColorWriteMask
	blendState   *wgpu.BlendState
}

// Pipeline is a GPU pipeline — either a render pipeline (vertex + fragment)
// or a compute pipeline — along with the configuration used to build it.
// The Layer Compositor's passes are 2D and composite by blending, so unlike
// the teacher's 3D scene pipelines there is no depth test, cull mode, or
// front-face winding configuration: every draw is a flat, unculled quad or
// line list blended into the frame.
type Pipeline interface {
	Type() PipelineType
	PipelineKey() string
	Shader(shaderType shader.ShaderType) shader.Shader
	Pipeline() any
	BlendEnabled() bool
	Topology() wgpu.PrimitiveTopology
	WriteMask() wgpu.ColorWriteMask
	BlendState() *wgpu.BlendState
	SetRenderPipeline(p *wgpu.RenderPipeline)
	SetComputePipeline(p *wgpu.ComputePipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline of the given type, applying defaults
// suited to 2D layer compositing (alpha-over blend, triangle-list
// topology) before any PipelineBuilderOption overrides them.
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		pipelineType: pipelineType,
		blendEnabled: true,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		writeMask:    wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType    { return p.pipelineType }
func (p *pipeline) PipelineKey() string   { return p.pipelineKey }
func (p *pipeline) BlendEnabled() bool    { return p.blendEnabled }
func (p *pipeline) Topology() wgpu.PrimitiveTopology { return p.topology }
func (p *pipeline) WriteMask() wgpu.ColorWriteMask   { return p.writeMask }
func (p *pipeline) BlendState() *wgpu.BlendState     { return p.blendState }

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		return p.renderPipeline
	case PipelineTypeCompute:
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline)   { p.renderPipeline = rp }
func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) { p.computePipeline = cp }
