package heroine

import "time"

// Option is a functional option for New, following the teacher engine's
// With* builder idiom.
type Option func(*engine)

// WithTickRate sets the simulation tick rate in Hz. fps <= 0 falls back
// to 60.
func WithTickRate(fps float64) Option {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.tickRate = time.Second / time.Duration(fps)
	}
}

// WithRenderFrameLimit caps the render loop's frame rate. fps <= 0
// uncaps it (default).
func WithRenderFrameLimit(fps float64) Option {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}

// WithInitialCapacity sizes the simulation's node/edge buffers up
// front, avoiding a reallocation on the graph's first Load.
func WithInitialCapacity(maxNodes, maxEdges uint32) Option {
	return func(e *engine) {
		if maxNodes > 0 {
			e.maxNodes = maxNodes
		}
		if maxEdges > 0 {
			e.maxEdges = maxEdges
		}
	}
}

// WithProfiling enables periodic FPS/heap/GC logging from the render
// loop, once per second, until Quit.
func WithProfiling(enabled bool) Option {
	return func(e *engine) {
		if enabled {
			e.profiler = newFrameProfiler()
		} else {
			e.profiler = nil
		}
	}
}
