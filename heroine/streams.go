package heroine

import (
	"fmt"

	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
	"github.com/tomWhiting/heroine-graph-sub003/valuestream"
)

// DefineValueStream registers a named value stream (spec §4.7) using
// scaleName's preset ColorScale for normalization, replacing any stream
// already registered under name.
func (e *engine) DefineValueStream(name, scaleName string, defaultValue float32) error {
	scale, ok := valuestream.Preset(scaleName)
	if !ok {
		return fmt.Errorf("heroine: define value stream: unknown color scale %q: %w", scaleName, herr.ErrUnknownKey)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.streams[name] = valuestream.NewStream(name, scale, defaultValue)
	return nil
}

// SetStreamValues bulk-assigns a stream's per-node values.
func (e *engine) SetStreamValues(name string, indices []graphstore.NodeIndex, values []float32) error {
	if len(indices) != len(values) {
		return fmt.Errorf("heroine: set stream values: %w", herr.ErrShapeMismatch)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	stream, ok := e.streams[name]
	if !ok {
		return fmt.Errorf("heroine: set stream values: unknown stream %q: %w", name, herr.ErrUnknownKey)
	}
	for i, idx := range indices {
		stream.Set(idx, values[i])
	}
	return nil
}

// RemoveValueStream deletes a named stream. No-op if it doesn't exist.
func (e *engine) RemoveValueStream(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.streams, name)
}
