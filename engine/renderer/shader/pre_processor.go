// pre_processor.go implements the HeroineGraph WGSL pre-processor. It scans
// shader source for @hg: annotations, replaces them with generated WGSL
// declarations or injected struct source, and collects a declarations list
// consumed by the compositor to wire GPU resources without manual string
// lookups.
package shader

import (
	"fmt"
	"strings"
)

// registryEntry pairs a WGSL struct source string with the resolved WGSL
// type name used in generated @group/@binding declarations.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	declarations         []Annotation
}

// PreProcessor processes raw WGSL source containing @hg: annotations.
type PreProcessor interface {
	// Process replaces @hg: annotations with their WGSL output and resets
	// the declarations list for the call.
	Process(source string) (string, error)
	// Declarations returns the group/provider annotations collected during
	// the most recent Process call, in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's struct and
// address-space registries pre-populated.
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgViewportUniforms:  {Source: gpuViewportUniformsSource, Type: "ViewportUniforms"},
			AnnotationArgForceConfig:       {Source: gpuForceConfigSource, Type: "ForceConfig"},
			AnnotationArgNodeData:          {Source: gpuNodeDataSource, Type: "NodeData"},
			AnnotationArgEdgeData:          {Source: gpuEdgeDataSource, Type: "EdgeData"},
			AnnotationArgSortKeys:          {Source: gpuSortKeysSource, Type: "SortKeyValue"},
			AnnotationArgScanUniforms:      {Source: gpuScanUniformsSource, Type: "ScanUniforms"},
			AnnotationArgQuadNode:          {Source: gpuQuadNodeSource, Type: "QuadNode"},
			AnnotationArgDensityParams:     {Source: gpuDensityParamsSource, Type: "DensityParams"},
			AnnotationArgEdgeFlowParams:    {Source: gpuEdgeFlowParamsSource, Type: "EdgeFlowParams"},
			AnnotationArgValueStreamParams: {Source: gpuValueStreamParamsSource, Type: "ValueStreamParams"},
			AnnotationArgLabelInstance:     {Source: gpuLabelInstanceSource, Type: "LabelInstance"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @hg:include argument %q", i+1, a.Args[0])
			}
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			varName := string(a.Args[1])
			var wgslType string
			if inner, ok := strings.CutPrefix(string(a.Args[2]), "array<"); ok {
				inner = strings.TrimSuffix(inner, ">")
				entry := p.structRegistry[AnnotationArg(inner)]
				wgslType = fmt.Sprintf("array<%s>", entry.Type)
			} else {
				entry := p.structRegistry[a.Args[2]]
				wgslType = entry.Type
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, varName, wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation { return p.declarations }

// Embedded WGSL struct source for each registered struct type. These mirror
// the Go-side GPU uniform structs defined in their owning packages
// (viewport.GPUUniforms, graphstore.NodeData, algorithm.ForceConfig,
// and so on) field-for-field.
const (
	// 80 bytes, std140-compatible: the graph->clip affine transform stored
	// column-major (each column padded to vec4 per WGSL uniform address
	// space rules) plus screen size and scale/inverse-scale scalars. There
	// is no stored clip->graph matrix: the viewport only ever pans and
	// scales uniformly (never rotates), so a shader that needs graph-space
	// extents from screen-space ones can recover them from scale alone.
	gpuViewportUniformsSource = `struct ViewportUniforms {
	transformCol0: vec4<f32>,
	transformCol1: vec4<f32>,
	transformCol2: vec4<f32>,
	screenSize: vec2<f32>,
	scale: f32,
	invScale: f32,
	_pad: vec2<f32>,
}`

	gpuForceConfigSource = `struct ForceConfig {
	theta: f32,
	repulsionStrength: f32,
	springStiffness: f32,
	springLength: f32,
	gravity: f32,
	damping: f32,
	dt: f32,
	fixedPointScale: f32,
	maxVelocity: f32,
	_pad0: f32,
	_pad1: f32,
	_pad2: f32,
}`

	gpuNodeDataSource = `struct NodeData {
	position: vec2<f32>,
	velocity: vec2<f32>,
	mass: f32,
	pinned: u32,
	pinX: f32,
	pinY: f32,
}`

	gpuEdgeDataSource = `struct EdgeData {
	source: u32,
	target: u32,
	weight: f32,
	_pad0: f32,
}`

	gpuSortKeysSource = `struct SortKeyValue {
	key: u32,
	value: u32,
}`

	gpuScanUniformsSource = `struct ScanUniforms {
	elementCount: u32,
	passIndex: u32,
	_pad0: u32,
	_pad1: u32,
}`

	gpuQuadNodeSource = `struct QuadNode {
	centerOfMass: vec2<f32>,
	totalMass: f32,
	halfExtent: f32,
	childBase: u32,
	bodyIndex: u32,
	bodyCount: u32,
	_pad0: u32,
}`

	gpuDensityParamsSource = `struct DensityParams {
	kernelRadius: f32,
	intensity: f32,
	blendMode: u32,
	textureSize: vec2<f32>,
}`

	gpuEdgeFlowParamsSource = `struct EdgeFlowParams {
	layer1Speed: f32,
	layer1Width: f32,
	layer2Speed: f32,
	layer2Fade: f32,
}`

	gpuValueStreamParamsSource = `struct ValueStreamParams {
	blendMode: u32,
	intensity: f32,
	minValue: f32,
	maxValue: f32,
}`

	gpuLabelInstanceSource = `struct LabelInstance {
	position: vec2<f32>,
	rank: f32,
	opacity: f32,
}`
)
