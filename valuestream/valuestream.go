// Package valuestream implements Value Streams (spec §4.7): a named
// NodeIndex -> f32 mapping plus a colour scale. No compositor layer reads
// stream values: the density, contour and metaball layers splat uniform
// per-node weight. Streams are pure data pipes — the engine performs no
// aggregation of its own; composing multiple streams is a per-node blend
// of their already-computed values, done on the CPU by Composite.
package valuestream

import (
	"fmt"

	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

// BlendMode is how multiple active streams combine at a single node.
type BlendMode uint32

const (
	BlendAdditive BlendMode = iota
	BlendMultiply
	BlendReplace
	BlendMax
)

// ColorStop is one control point of a ColorScale: at Offset (0..1 within
// the scale's domain) the colour is (R,G,B,A), each 0..1.
type ColorStop struct {
	Offset      float32
	R, G, B, A  float32
}

// ColorScale maps a value in Domain to a colour by linear interpolation
// between the two bracketing Stops. Stops must be sorted ascending by
// Offset and span [0,1]; construction via NewColorScale enforces this.
type ColorScale struct {
	Name   string
	Domain [2]float32
	Stops  []ColorStop
}

// NewColorScale validates stops are sorted ascending and span the unit
// interval, returning herr.ErrShapeMismatch otherwise.
func NewColorScale(name string, domain [2]float32, stops []ColorStop) (ColorScale, error) {
	if len(stops) < 2 {
		return ColorScale{}, fmt.Errorf("valuestream: color scale %q needs at least 2 stops: %w", name, herr.ErrShapeMismatch)
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Offset < stops[i-1].Offset {
			return ColorScale{}, fmt.Errorf("valuestream: color scale %q stops not sorted ascending: %w", name, herr.ErrShapeMismatch)
		}
	}
	if stops[0].Offset != 0 || stops[len(stops)-1].Offset != 1 {
		return ColorScale{}, fmt.Errorf("valuestream: color scale %q must span [0,1]: %w", name, herr.ErrShapeMismatch)
	}
	return ColorScale{Name: name, Domain: domain, Stops: append([]ColorStop(nil), stops...)}, nil
}

// Sample linearly interpolates the colour at t, a value already
// normalized into the scale's Domain by the caller (Stream.Normalized
// does this for a raw node value).
func (c ColorScale) Sample(t float32) (r, g, b, a float32) {
	if t <= c.Stops[0].Offset {
		s := c.Stops[0]
		return s.R, s.G, s.B, s.A
	}
	last := c.Stops[len(c.Stops)-1]
	if t >= last.Offset {
		return last.R, last.G, last.B, last.A
	}
	for i := 1; i < len(c.Stops); i++ {
		if t <= c.Stops[i].Offset {
			lo, hi := c.Stops[i-1], c.Stops[i]
			span := hi.Offset - lo.Offset
			var f float32
			if span > 0 {
				f = (t - lo.Offset) / span
			}
			return lo.R + (hi.R-lo.R)*f,
				lo.G + (hi.G-lo.G)*f,
				lo.B + (hi.B-lo.B)*f,
				lo.A + (hi.A-lo.A)*f
		}
	}
	return last.R, last.G, last.B, last.A
}

// Stream is a named NodeIndex -> f32 mapping plus the colour scale it
// drives when bound to a compositor layer. Values not present for a node
// read back as the stream's Default.
type Stream struct {
	Name    string
	Scale   ColorScale
	Default float32

	values map[graphstore.NodeIndex]float32
}

// NewStream creates an empty stream with the given default fill value.
func NewStream(name string, scale ColorScale, defaultValue float32) *Stream {
	return &Stream{Name: name, Scale: scale, Default: defaultValue, values: make(map[graphstore.NodeIndex]float32)}
}

// Set assigns idx's value. A stream is a pure data pipe: Set never
// triggers any recomputation, aggregation, or GPU upload by itself.
func (s *Stream) Set(idx graphstore.NodeIndex, value float32) {
	s.values[idx] = value
}

// Unset removes idx, reverting it to Default.
func (s *Stream) Unset(idx graphstore.NodeIndex) {
	delete(s.values, idx)
}

// Value returns idx's raw value, or Default if unset.
func (s *Stream) Value(idx graphstore.NodeIndex) float32 {
	if v, ok := s.values[idx]; ok {
		return v
	}
	return s.Default
}

// Normalized maps idx's raw value into [0,1] against the scale's Domain,
// clamped at the ends, ready for ColorScale.Sample.
func (s *Stream) Normalized(idx graphstore.NodeIndex) float32 {
	v := s.Value(idx)
	lo, hi := s.Scale.Domain[0], s.Scale.Domain[1]
	if hi <= lo {
		return 0
	}
	t := (v - lo) / (hi - lo)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Params mirrors the shader package's embedded ValueStreamParams WGSL
// struct. No compositor pass uploads or reads it, and the density splat
// shader's own blendMode field is never read.
type Params struct {
	BlendMode uint32
	Intensity float32
	MinValue  float32
	MaxValue  float32
}

// ParamsFor builds the GPU-uniform view of s under mode at intensity.
func ParamsFor(s *Stream, mode BlendMode, intensity float32) Params {
	return Params{
		BlendMode: uint32(mode),
		Intensity: intensity,
		MinValue:  s.Scale.Domain[0],
		MaxValue:  s.Scale.Domain[1],
	}
}

// Combine folds value into acc under mode. Stream blending happens only
// here, on the CPU; the compositor's splat shader does not blend streams.
// Exposed so host code and tests can reason about multi-stream
// composition without a device.
func Combine(acc, value float32, mode BlendMode) float32 {
	switch mode {
	case BlendMultiply:
		return acc * value
	case BlendReplace:
		return value
	case BlendMax:
		if value > acc {
			return value
		}
		return acc
	default: // BlendAdditive
		return acc + value
	}
}

// Composite blends every active stream's normalized value for idx, in
// the order given, starting from an accumulator of 0, and returns the
// single scalar intensity for idx. No compositor layer calls it.
func Composite(idx graphstore.NodeIndex, streams []*Stream, modes []BlendMode) float32 {
	var acc float32
	for i, s := range streams {
		mode := BlendAdditive
		if i < len(modes) {
			mode = modes[i]
		}
		acc = Combine(acc, s.Normalized(idx), mode)
	}
	return acc
}
