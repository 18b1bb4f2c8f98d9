package heroine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
	"github.com/tomWhiting/heroine-graph-sub003/valuestream"
)

func newStreamsEngine() *engine {
	return &engine{streams: make(map[string]*valuestream.Stream)}
}

func TestDefineValueStreamRejectsUnknownScale(t *testing.T) {
	e := newStreamsEngine()
	err := e.DefineValueStream("s", "not-a-scale", 0)
	require.ErrorIs(t, err, herr.ErrUnknownKey)
}

func TestDefineValueStreamRegistersStream(t *testing.T) {
	e := newStreamsEngine()
	err := e.DefineValueStream("s", "viridis", 0)
	require.NoError(t, err)
	require.Contains(t, e.streams, "s")
}

func TestSetStreamValuesRejectsShapeMismatch(t *testing.T) {
	e := newStreamsEngine()
	require.NoError(t, e.DefineValueStream("s", "viridis", 0))
	err := e.SetStreamValues("s", []graphstore.NodeIndex{0, 1}, []float32{1})
	require.ErrorIs(t, err, herr.ErrShapeMismatch)
}

func TestSetStreamValuesRejectsUnknownStream(t *testing.T) {
	e := newStreamsEngine()
	err := e.SetStreamValues("missing", nil, nil)
	require.ErrorIs(t, err, herr.ErrUnknownKey)
}

func TestSetStreamValuesAppliesToStream(t *testing.T) {
	e := newStreamsEngine()
	require.NoError(t, e.DefineValueStream("s", "viridis", 0))
	err := e.SetStreamValues("s", []graphstore.NodeIndex{2}, []float32{0.75})
	require.NoError(t, err)
	require.Equal(t, float32(0.75), e.streams["s"].Value(graphstore.NodeIndex(2)))
}

func TestRemoveValueStreamDeletesIt(t *testing.T) {
	e := newStreamsEngine()
	require.NoError(t, e.DefineValueStream("s", "viridis", 0))
	e.RemoveValueStream("s")
	require.NotContains(t, e.streams, "s")
}
