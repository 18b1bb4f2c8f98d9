// Package bindgroup holds GPU bind-group resources (buffers, texture views,
// samplers) keyed by binding index, behind a single provider abstraction
// every compositor layer and simulation stage uses to describe and later
// access its GPU resource requirements.
package bindgroup

import "github.com/cogentcore/webgpu/wgpu"

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	label string

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
	textureViews    map[int]*wgpu.TextureView
	samplers        map[int]*wgpu.Sampler

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider describes a component's GPU binding requirements and
// holds the resulting GPU objects once initialized.
//
// Usage pattern:
//  1. Component creates a BindGroupProvider with a unique label.
//  2. The renderer's InitBindGroup creates the GPU bind group from a shader's
//     parsed layout and populates this provider via the Set* methods.
//  3. The component's per-tick update calls the renderer's WriteBuffers to upload new data.
//  4. The component accesses BindGroup() for draw/dispatch calls.
type BindGroupProvider interface {
	Release()
	Label() string

	BindGroup() *wgpu.BindGroup
	BindGroupLayout() *wgpu.BindGroupLayout
	Buffer(binding int) *wgpu.Buffer
	Buffers() map[int]*wgpu.Buffer
	TextureView(binding int) *wgpu.TextureView
	TextureViews() map[int]*wgpu.TextureView
	Sampler(binding int) *wgpu.Sampler
	Samplers() map[int]*wgpu.Sampler
	VertexBuffer() *wgpu.Buffer
	IndexBuffer() *wgpu.Buffer
	IndexCount() int

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)
	SetBuffers(buffers map[int]*wgpu.Buffer)
	SetTextureView(binding int, tv *wgpu.TextureView)
	SetTextureViews(textureViews map[int]*wgpu.TextureView)
	SetSampler(binding int, s *wgpu.Sampler)
	SetSamplers(samplers map[int]*wgpu.Sampler)
	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the given debug
// label and options applied.
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string                        { return p.label }
func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup            { return p.bindGroup }
func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout { return p.bindGroupLayout }
func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer       { return p.buffers[binding] }
func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer         { return p.buffers }
func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}
func (p *bindGroupProvider) TextureViews() map[int]*wgpu.TextureView { return p.textureViews }
func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler       { return p.samplers[binding] }
func (p *bindGroupProvider) Samplers() map[int]*wgpu.Sampler         { return p.samplers }
func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer              { return p.vertexBuffer }
func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer               { return p.indexBuffer }
func (p *bindGroupProvider) IndexCount() int                        { return p.indexCount }

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup)             { p.bindGroup = bg }
func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) { p.bindGroupLayout = bgl }

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.buffers == nil {
		p.buffers = make(map[int]*wgpu.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetBuffers(buffers map[int]*wgpu.Buffer) { p.buffers = buffers }
func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer)        { p.vertexBuffer = buf }
func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer)         { p.indexBuffer = buf }
func (p *bindGroupProvider) SetIndexCount(count int)                 { p.indexCount = count }

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	if p.textureViews == nil {
		p.textureViews = make(map[int]*wgpu.TextureView)
	}
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetTextureViews(textureViews map[int]*wgpu.TextureView) {
	p.textureViews = textureViews
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	if p.samplers == nil {
		p.samplers = make(map[int]*wgpu.Sampler)
	}
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetSamplers(samplers map[int]*wgpu.Sampler) { p.samplers = samplers }

// Release frees every GPU resource held by this provider. Safe to call more
// than once; already-released fields are left nil.
func (p *bindGroupProvider) Release() {
	for i, tv := range p.textureViews {
		if tv != nil {
			tv.Release()
			delete(p.textureViews, i)
		}
	}
	for i, s := range p.samplers {
		if s != nil {
			s.Release()
			delete(p.samplers, i)
		}
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
			delete(p.buffers, i)
		}
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
