package sortkernel

import (
	"fmt"
	"sync"

	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

const (
	pipelineKeyHistogram   = "sortkernel:histogram"
	pipelineKeyScan        = "sortkernel:scan"
	pipelineKeyScatter     = "sortkernel:scatter"
	pipelineKeyCountingSort = "sortkernel:counting"
)

// sorter is the implementation of Sorter.
type sorter struct {
	mu sync.Mutex
	r  renderer.Renderer

	scratch bindgroup.BindGroupProvider // histogram/offsets + scan uniforms

	registered bool
}

// Sorter performs an in-place (from the caller's perspective) LSD radix
// sort of (key, value) pairs already resident on the GPU, falling back to
// a simpler counting sort for small arrays. Call Sort once per use; Result
// tells the caller which of the two key buffers holds the sorted output,
// since the number of passes (and hence which buffer a odd/even dispatch
// count lands on) varies by code path.
type Sorter interface {
	// EnsurePipelines registers the sort kernels with the renderer. Safe
	// to call more than once; a no-op after the first successful call.
	EnsurePipelines() error

	// Sort dispatches the sort over elementCount live entries in keysIn,
	// using the provided command-encoding renderer calls (BeginComputeFrame
	// must already be open on r). Returns which provider (keysIn or
	// keysOut, both owned by the caller) holds the final sorted array, or
	// an error if elementCount's required workgroup fanout exceeds
	// MaxSupportedWorkgroups.
	Sort(keysIn, keysOut bindgroup.BindGroupProvider, elementCount uint32) (result bindgroup.BindGroupProvider, err error)
}

var _ Sorter = &sorter{}

// New creates a Sorter bound to the given renderer and a scratch
// BindGroupProvider holding the histogram/offsets buffer (one shared
// histogram of DigitBuckets u32 counters) and the ScanUniforms uniform
// buffer. The caller (typically the spatial index) owns the
// scratch provider's lifetime, since it is allocated once at startup via
// renderer.InitBindGroup using the histogram shader's layout.
func New(r renderer.Renderer, scratch bindgroup.BindGroupProvider) Sorter {
	return &sorter{r: r, scratch: scratch}
}

func workgroupsFor(elementCount uint32, threadsPerGroup uint32) uint32 {
	return (elementCount + threadsPerGroup - 1) / threadsPerGroup
}

func (s *sorter) EnsurePipelines() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registered {
		return nil
	}

	histogramShader := shader.NewShaderFromSource(pipelineKeyHistogram, shader.ShaderTypeCompute, histogramSource)
	scanShader := shader.NewShaderFromSource(pipelineKeyScan, shader.ShaderTypeCompute, scanSource)
	scatterShader := shader.NewShaderFromSource(pipelineKeyScatter, shader.ShaderTypeCompute, scatterSource)
	countingShader := shader.NewShaderFromSource(pipelineKeyCountingSort, shader.ShaderTypeCompute, countingSortSource)

	pipelines := []pipeline.Pipeline{
		pipeline.NewPipeline(pipelineKeyHistogram, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(histogramShader)),
		pipeline.NewPipeline(pipelineKeyScan, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(scanShader)),
		pipeline.NewPipeline(pipelineKeyScatter, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(scatterShader)),
		pipeline.NewPipeline(pipelineKeyCountingSort, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(countingShader)),
	}
	if err := s.r.RegisterPipelines(pipelines...); err != nil {
		return fmt.Errorf("sortkernel: register pipelines: %w", err)
	}
	s.registered = true
	return nil
}

// bindForPass rebuilds provider's bind group against pipelineKey's own
// layout immediately before each dispatch. keysA/keysB and scratch each
// serve more than one pipeline across a single Sort call (front binds
// histogram then scatter every pass), and a BindGroupProvider only holds
// one *wgpu.BindGroup at a time, so the group must be rebuilt per
// pipeline rather than built once in CreateBindGroups.
func (s *sorter) bindForPass(pipelineKey string, provider bindgroup.BindGroupProvider) error {
	if err := s.r.InitComputeBindGroup(pipelineKey, provider); err != nil {
		return fmt.Errorf("sortkernel: bind %s: %w", pipelineKey, err)
	}
	return nil
}

func (s *sorter) Sort(keysIn, keysOut bindgroup.BindGroupProvider, elementCount uint32) (bindgroup.BindGroupProvider, error) {
	if elementCount == 0 {
		return keysIn, nil
	}

	if elementCount < CountingSortThreshold {
		if err := s.bindForPass(pipelineKeyCountingSort, keysIn); err != nil {
			return nil, err
		}
		s.r.DispatchCompute(pipelineKeyCountingSort, keysIn, [3]uint32{workgroupsFor(elementCount, 256), 1, 1})
		return keysOut, nil
	}

	groups := workgroupsFor(elementCount, 256)
	if groups > MaxSupportedWorkgroups {
		return nil, fmt.Errorf("sortkernel: %d elements need %d workgroups, limit %d: %w",
			elementCount, groups, MaxSupportedWorkgroups, herr.ErrSortCapacityExceeded)
	}

	front, back := keysIn, keysOut
	for pass := uint32(0); pass < PassCount; pass++ {
		uniforms := ScanUniforms{ElementCount: elementCount, PassIndex: pass}
		s.r.WriteBuffers([]bindgroup.BufferWrite{{
			Provider: s.scratch,
			Binding:  scanUniformsBinding,
			Data:     common.StructToBytes(&uniforms),
		}})

		if err := s.bindForPass(pipelineKeyHistogram, front); err != nil {
			return nil, err
		}
		s.r.DispatchCompute(pipelineKeyHistogram, front, [3]uint32{groups, 1, 1})

		if err := s.bindForPass(pipelineKeyScan, s.scratch); err != nil {
			return nil, err
		}
		s.r.DispatchCompute(pipelineKeyScan, s.scratch, [3]uint32{1, 1, 1})

		if err := s.bindForPass(pipelineKeyScatter, front); err != nil {
			return nil, err
		}
		s.r.DispatchCompute(pipelineKeyScatter, front, [3]uint32{groups, 1, 1})

		// Ping-pong discipline: even passes read front/write back, odd
		// passes reverse, so after PassCount (even) passes the final
		// result is back in front.
		front, back = back, front
	}
	return front, nil
}

// scanUniformsBinding is the binding index the scan/histogram/scatter
// shaders above declare for their ScanUniforms uniform block.
const scanUniformsBinding = 2
