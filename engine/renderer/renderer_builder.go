package renderer

import "github.com/tomWhiting/heroine-graph-sub003/engine/renderer/pipeline"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipeline pre-registers a single Pipeline in the renderer's pipeline cache under the given key.
func WithPipeline(key string, p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) { r.pipelineCache[key] = p }
}

// WithPipelines replaces the renderer's entire pipeline cache with the provided map.
func WithPipelines(pipelines map[string]pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) { r.pipelineCache = pipelines }
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) { r.pendingPresentMode = &mode }
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) { r.pendingMSAA = &count }
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. Requires a software Vulkan ICD (e.g. lavapipe).
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) { r.forceFallbackAdapter = force }
}
