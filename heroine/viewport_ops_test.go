package heroine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/viewport"
)

func TestPanUpdatesViewportCentre(t *testing.T) {
	vp := viewport.New(800, 600, 1.0)
	e := &engine{vp: vp, handlers: make(map[Event]EventHandler)}
	before := vp.Centre()
	e.Pan(10, 20)
	after := vp.Centre()
	require.NotEqual(t, before, after)
}

func TestScreenToGraphRoundTripsThroughGraphToScreen(t *testing.T) {
	vp := viewport.New(800, 600, 1.0)
	e := &engine{vp: vp, handlers: make(map[Event]EventHandler)}
	g := e.ScreenToGraph(400, 300)
	s := e.GraphToScreen(g.X, g.Y)
	require.InDelta(t, 400, s.X, 0.01)
	require.InDelta(t, 300, s.Y, 0.01)
}
