// Package shader loads and parses WGSL shader source for the compositor and
// compute pipelines. Source files carry `@hg:` annotation comments that drive
// struct injection, bind group declaration, and resource provider registration,
// so pipelines can discover their bind groups by semantic name instead of by
// hand-maintained index tables.
package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies whether a shader is a render shader or a compute shader.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota
	// ShaderTypeVertex is the vertex shader type.
	ShaderTypeVertex
	// ShaderTypeFragment is the fragment shader type.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	workGroupSize              [3]uint32
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a loaded and parsed WGSL shader, exposing the bind group layouts,
// vertex layouts, workgroup size, and annotation declarations needed to wire
// it into a pipeline without manual index bookkeeping.
type Shader interface {
	Key() string
	Source() string
	BindGroupLayoutDescriptor(bindingKey int) wgpu.BindGroupLayoutDescriptor
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor
	BindGroupVarName(group, binding int) string
	BindGroupFromVarName(group int, varName string) (int, bool)
	BindGroupVarNames() map[int]map[int]string
	VertexLayout(key int) []wgpu.VertexBufferLayout
	VertexLayouts() map[int][]wgpu.VertexBufferLayout
	EntryPoint() string
	WorkgroupSize() [3]uint32
	Module() *wgpu.ShaderModuleDescriptor
	ShaderType() ShaderType
	// Declarations returns the parsed @hg: group/provider annotations in source
	// order, used to match bind groups to resource providers by semantic name.
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader loads WGSL source from sourcePath, pre-processes its @hg:
// annotations, and parses its bind group layouts, vertex layouts, and
// entry point. Panics if the source cannot be read or pre-processed, since a
// malformed shader is an invariant violation discovered at startup, not a
// recoverable runtime condition.
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a valid source path", key))
	}
	s := &shader{
		key:                        key,
		shaderType:                 shaderType,
		bindGroupLayoutDescriptors: make(map[int]wgpu.BindGroupLayoutDescriptor),
		bindingVarNames:            make(map[int]map[int]string),
		vertexLayouts:              make(map[int][]wgpu.VertexBufferLayout),
		pp:                         NewPreProcessor(),
	}
	s.parseSourceFromPath(sourcePath)
	return s
}

// NewShaderFromSource loads WGSL source from an in-memory string rather than
// a file path, used by the compositor's generated compute shader variants
// (radix sort digit-width specializations, algorithm kernel flavors).
func NewShaderFromSource(key string, shaderType ShaderType, source string) Shader {
	s := &shader{
		key:                        key,
		shaderType:                 shaderType,
		bindGroupLayoutDescriptors: make(map[int]wgpu.BindGroupLayoutDescriptor),
		bindingVarNames:            make(map[int]map[int]string),
		vertexLayouts:              make(map[int][]wgpu.VertexBufferLayout),
		pp:                         NewPreProcessor(),
	}
	s.parseSource(source)
	return s
}

func (s *shader) Key() string       { return s.key }
func (s *shader) Source() string    { return s.source }
func (s *shader) EntryPoint() string { return s.entryPoint }
func (s *shader) WorkgroupSize() [3]uint32 { return s.workGroupSize }
func (s *shader) ShaderType() ShaderType   { return s.shaderType }
func (s *shader) Declarations() []Annotation { return s.pp.Declarations() }

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout { return s.vertexLayouts[key] }
func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout { return s.vertexLayouts }

func (s *shader) BindGroupLayoutDescriptor(bindingKey int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[bindingKey]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) BindGroupVarNames() map[int]map[int]string { return s.bindingVarNames }

func (s *shader) Module() *wgpu.ShaderModuleDescriptor { return s.module }

func (s *shader) parseSourceFromPath(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", path, err))
	}
	s.parseSource(string(data))
}

func (s *shader) parseSource(raw string) {
	var err error
	s.source, err = s.pp.Process(raw)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process shader %q: %v", s.key, err))
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	if s.shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(s.source)
	}
	if s.shaderType == ShaderTypeCompute {
		s.workGroupSize = parseWorkgroupSize(s.source)
	}
	var visibility wgpu.ShaderStage
	switch s.shaderType {
	case ShaderTypeVertex:
		visibility = wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		visibility = wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		visibility = wgpu.ShaderStageCompute
	default:
		visibility = wgpu.ShaderStageNone
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, visibility)
}
