// annotations.go defines the annotation types, argument constants, and parser
// for the HeroineGraph WGSL pre-processor. Annotations are single-line WGSL
// comments prefixed with @hg: that drive automatic struct injection, bind
// group declaration, and resource provider registration. Parsed results are
// Annotation values consumed by the PreProcessor and by the compositor's
// pipeline wiring.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks a HeroineGraph annotation within a WGSL comment line.
const annotationPrefix = "@hg:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct
	// definition at the annotation site.
	//
	// Syntax: //@hg:include <struct_type>
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding declaration
	// and records an Annotation so the compositor can match bindings to
	// providers semantically rather than by string lookup.
	//
	// Syntax: //@hg:group <group> <binding> <address_space> <var_name> <type>
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a provider identity for a group and
	// binding whose WGSL declaration is written by hand directly below the
	// annotation (textures, samplers, and flat primitive arrays have no
	// registered struct type).
	//
	// Syntax: //@hg:provider <group> <binding> <provider_identity>
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is a single parsed @hg: annotation.
type Annotation struct {
	Type    AnnotationType
	Args    []AnnotationArg
	Line    int
	Group   *int
	Binding *int
}

// AnnotationArg is a typed string constant used as an annotation argument.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────
// Each identifies a registered GPU-uniform struct type with an embedded
// WGSL source string.

const (
	// AnnotationArgViewportUniforms identifies the Viewport's screen/clip
	// transform uniform block (§4.8).
	AnnotationArgViewportUniforms AnnotationArg = "viewport_uniforms"
	// AnnotationArgForceConfig identifies the per-tick force configuration
	// uniform block consumed by the algorithm pack (§4.2).
	AnnotationArgForceConfig AnnotationArg = "force_config"
	// AnnotationArgNodeData identifies the packed node position/velocity
	// storage struct (§4.3).
	AnnotationArgNodeData AnnotationArg = "node_data"
	// AnnotationArgEdgeData identifies the packed edge endpoint/weight
	// storage struct (§4.3).
	AnnotationArgEdgeData AnnotationArg = "edge_data"
	// AnnotationArgSortKeys identifies the radix sort key/payload struct (§4.5).
	AnnotationArgSortKeys AnnotationArg = "sort_keys"
	// AnnotationArgScanUniforms identifies the Blelloch prefix-scan pass
	// uniform block (§4.5).
	AnnotationArgScanUniforms AnnotationArg = "scan_uniforms"
	// AnnotationArgQuadNode identifies a Barnes-Hut quadtree node storage
	// struct (§4.4).
	AnnotationArgQuadNode AnnotationArg = "quad_node"
	// AnnotationArgDensityParams identifies the density-field accumulation
	// uniform block (§4.6).
	AnnotationArgDensityParams AnnotationArg = "density_params"
	// AnnotationArgEdgeFlowParams identifies the dual-layer edge-flow wave
	// uniform block (§4.6 step 6).
	AnnotationArgEdgeFlowParams AnnotationArg = "edge_flow_params"
	// AnnotationArgValueStreamParams identifies a value-stream overlay's
	// blend configuration (§4.7).
	AnnotationArgValueStreamParams AnnotationArg = "value_stream_params"
	// AnnotationArgLabelInstance identifies the per-label instanced draw
	// struct (§4.6 step 7).
	AnnotationArgLabelInstance AnnotationArg = "label_instance"
)

// ── Address space arguments ────────────────────────────────────────────

const (
	annotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead      AnnotationArg = "storage_read"
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ─────────────────────────────────────────
// Each identifies which compositor-level resource provider owns a bind group.

const (
	// AnnotationArgViewport identifies the viewport transform provider.
	AnnotationArgViewport AnnotationArg = "viewport"
	// AnnotationArgNodes identifies the node storage provider.
	AnnotationArgNodes AnnotationArg = "nodes"
	// AnnotationArgEdges identifies the edge storage provider.
	AnnotationArgEdges AnnotationArg = "edges"
	// AnnotationArgForces identifies the force-accumulation provider.
	AnnotationArgForces AnnotationArg = "forces"
	// AnnotationArgSpatialIndex identifies the Barnes-Hut quadtree provider.
	AnnotationArgSpatialIndex AnnotationArg = "spatial_index"
	// AnnotationArgSortScratch identifies the radix sort's scratch buffer pair.
	AnnotationArgSortScratch AnnotationArg = "sort_scratch"
	// AnnotationArgDensityField identifies the density accumulation target.
	AnnotationArgDensityField AnnotationArg = "density_field"
	// AnnotationArgValueStream identifies a value-stream overlay provider.
	AnnotationArgValueStream AnnotationArg = "value_stream"
	// AnnotationArgLabels identifies the label layout provider.
	AnnotationArgLabels AnnotationArg = "labels"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgViewportUniforms,
	AnnotationArgForceConfig,
	AnnotationArgNodeData,
	AnnotationArgEdgeData,
	AnnotationArgSortKeys,
	AnnotationArgScanUniforms,
	AnnotationArgQuadNode,
	AnnotationArgDensityParams,
	AnnotationArgEdgeFlowParams,
	AnnotationArgValueStreamParams,
	AnnotationArgLabelInstance,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgViewport,
	AnnotationArgNodes,
	AnnotationArgEdges,
	AnnotationArgForces,
	AnnotationArgSpatialIndex,
	AnnotationArgSortScratch,
	AnnotationArgDensityField,
	AnnotationArgValueStream,
	AnnotationArgLabels,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @hg:
// annotation. Returns nil with no error for ordinary source lines.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @hg annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @hg include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @hg include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @hg group annotation requires exactly five arguments (group, binding, address space, var name, type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @hg group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			inner = strings.TrimSuffix(inner, ">")
			if !slices.Contains(validStructTypes, AnnotationArg(inner)) {
				return nil, fmt.Errorf("line %d: unknown array element type %q in @hg group annotation", lineNum, inner)
			}
		} else if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @hg group annotation", lineNum, typeArg)
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) != 4 {
			return nil, fmt.Errorf("line %d: @hg provider annotation requires three arguments (group, binding, provider identity)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @hg provider annotation", lineNum, args[3])
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    []AnnotationArg{AnnotationArg(args[3])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @hg annotation type %q", lineNum, args[0])
	}
}
