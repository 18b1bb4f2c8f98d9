// Package renderer wraps a WebGPU device, surface, and frame lifecycle
// behind a backend-agnostic Renderer interface. The Layer Compositor and
// Simulation Driver never touch wgpu types directly; they go through
// cached Pipelines and BindGroupProviders by key.
package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/shader"
	"github.com/tomWhiting/heroine-graph-sub003/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer is the high-level rendering API. It owns a cache of pipelines
// keyed by name and delegates actual GPU work to a RendererBackend.
type Renderer interface {
	// Device exposes the underlying wgpu device so compute-only callers
	// (algorithm implementations, the Simulation Driver's own buffer
	// allocation) can size and create their own gpubuf-backed storage
	// without a render surface.
	Device() *wgpu.Device

	// Pipeline retrieves the cached Pipeline associated with the given key,
	// or nil if not found.
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the corresponding GPU pipeline objects
	// (render or compute) via the backend, then caches them by
	// PipelineKey. Pipelines whose keys are already registered are
	// skipped.
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// SetPipeline adds or updates a Pipeline in the cache.
	SetPipeline(key string, p pipeline.Pipeline)

	// SetPipelines replaces the entire pipeline cache.
	SetPipelines(pipelines map[string]pipeline.Pipeline)

	// Resize configures the underlying backend to handle a new surface
	// size. Call when the window is resized.
	Resize(width, height int)

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte
	// data and stores them on the given BindGroupProvider.
	InitMeshBuffers(provider bindgroup.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates GPU buffers and a bind group from a layout
	// descriptor and stores them on the given BindGroupProvider. Textures
	// and samplers must be initialized via InitTextureView and InitSampler
	// first.
	InitBindGroup(provider bindgroup.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitComputeBindGroup builds the actual wgpu bind group layout and
	// bind group for a compute dispatch from the registered pipeline's
	// own parsed group-0 layout, reusing whatever buffers the caller
	// already staged on provider via SetBuffer, so DispatchCompute's
	// SetBindGroup call binds a real group instead of nil. The algorithm
	// implementations and the Simulation Driver call this once in their
	// CreateBindGroups/setup step; sortkernel, spatial and the
	// compositor's density splat call it before each dispatch.
	InitComputeBindGroup(pipelineKey string, provider bindgroup.BindGroupProvider) error

	// InitTextureView creates a GPU texture from staging data and stores
	// the resulting texture view on the given BindGroupProvider.
	InitTextureView(provider bindgroup.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler from staging data and stores it on
	// the given BindGroupProvider.
	InitSampler(provider bindgroup.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	WriteBuffers(writes []bindgroup.BufferWrite)

	// CopyBufferToBuffer records and submits a standalone GPU-side copy,
	// independent of the batched compute/render frame. Used by the
	// Simulation Driver's on-demand divergence check to stage positions
	// for a CPU read without opening a full compute frame.
	CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset uint64, size uint64) error

	// BeginComputeFrame creates a single command encoder for batching all
	// compute dispatches for a tick into one GPU submission.
	BeginComputeFrame() error

	// EndComputeFrame finishes and submits the batched compute command
	// encoder.
	EndComputeFrame()

	// DispatchCompute looks up the cached compute Pipeline by key and
	// encodes a compute pass within the current batched compute frame.
	DispatchCompute(pipelineKey string, computeProvider bindgroup.BindGroupProvider, workGroupCount [3]uint32)

	// BeginFrame acquires the swapchain texture and begins the main render
	// pass.
	BeginFrame() error

	// DrawCall encodes a single instanced draw command within the current
	// render pass.
	DrawCall(pipelineKey string, meshProvider bindgroup.BindGroupProvider, instanceCount uint32, bindGroups []bindgroup.BindGroupProvider) error

	// DrawCallIndirect encodes a single indirect instanced draw command;
	// the instance count is read from indirectBuffer on the GPU so a
	// compute shader (e.g. label survivor culling) controls draw count
	// without CPU readback.
	DrawCallIndirect(pipelineKey string, meshProvider bindgroup.BindGroupProvider, indirectBuffer *wgpu.Buffer, bindGroups []bindgroup.BindGroupProvider) error

	// EndFrame ends the current render pass and submits the command
	// buffer. Call Present() afterward to display the frame.
	EndFrame()

	// Present presents the surface and releases the swapchain texture.
	Present()

	// SetPresentMode sets the present mode. A call to Resize is required
	// afterward for the new mode to take effect.
	SetPresentMode(mode PresentMode)
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend
// type, acquiring a GPU device from the given window's surface.
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(win.Width(), win.Height())
	return r
}

func (r *renderer) Resize(width, height int) { r.backend.ConfigureSurface(width, height) }
func (r *renderer) SetPresentMode(mode PresentMode) { r.backend.SetPresentMode(mode) }
func (r *renderer) Device() *wgpu.Device             { return r.backend.Device() }

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return err
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return err
			}
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) SetPipeline(key string, p pipeline.Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelineCache[key] = p
}

func (r *renderer) SetPipelines(pipelines map[string]pipeline.Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelineCache = pipelines
}

func (r *renderer) InitMeshBuffers(provider bindgroup.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bindgroup.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitComputeBindGroup(pipelineKey string, provider bindgroup.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()
	if !exists {
		return fmt.Errorf("compute pipeline %q not found in cache", pipelineKey)
	}
	s := p.Shader(shader.ShaderTypeCompute)
	if s == nil {
		return fmt.Errorf("pipeline %q has no compute shader", pipelineKey)
	}
	descriptor := s.BindGroupLayoutDescriptor(0)
	return r.backend.InitBindGroup(provider, descriptor, nil, nil)
}

func (r *renderer) InitTextureView(provider bindgroup.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bindgroup.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bindgroup.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset uint64, size uint64) error {
	return r.backend.CopyBufferToBuffer(src, srcOffset, dst, dstOffset, size)
}

func (r *renderer) BeginComputeFrame() error { return r.backend.BeginComputeFrame() }
func (r *renderer) EndComputeFrame()         { r.backend.EndComputeFrame() }

func (r *renderer) DispatchCompute(pipelineKey string, computeProvider bindgroup.BindGroupProvider, workGroupCount [3]uint32) {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()
	if !exists {
		return
	}
	r.backend.DispatchCompute(p, computeProvider, workGroupCount)
}

func (r *renderer) BeginFrame() error { return r.backend.BeginFrame() }

func (r *renderer) DrawCall(pipelineKey string, meshProvider bindgroup.BindGroupProvider, instanceCount uint32, bindGroups []bindgroup.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()
	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
	return nil
}

func (r *renderer) DrawCallIndirect(pipelineKey string, meshProvider bindgroup.BindGroupProvider, indirectBuffer *wgpu.Buffer, bindGroups []bindgroup.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()
	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	r.backend.DrawCallIndirect(p, meshProvider, indirectBuffer, bindGroups)
	return nil
}

func (r *renderer) EndFrame() { r.backend.EndFrame() }
func (r *renderer) Present()  { r.backend.Present() }
