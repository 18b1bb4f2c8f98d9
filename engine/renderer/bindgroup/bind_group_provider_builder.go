package bindgroup

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroup sets the bind group for this provider.
func WithBindGroup(bg *wgpu.BindGroup) BindGroupProviderOption {
	return func(p *bindGroupProvider) { p.bindGroup = bg }
}

// WithBindGroupLayout sets the bind group layout for this provider.
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) { p.bindGroupLayout = bgl }
}

// WithBuffer sets a buffer for a specific binding index.
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) { p.buffers[binding] = buf }
}

// WithBuffers sets multiple buffers for this provider at once.
func WithBuffers(buffers map[int]*wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) { p.buffers = buffers }
}
