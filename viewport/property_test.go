package viewport

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"pgregory.net/rapid"
)

// GraphToScreen and ScreenToGraph must be exact inverses for any
// pan/zoom/resize state and any graph-space point, since every pointer
// interaction (drag, hover-pick, pinch zoom) round-trips through both.
func TestGraphScreenRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := float32(rapid.Float64Range(100, 4000).Draw(t, "w"))
		h := float32(rapid.Float64Range(100, 4000).Draw(t, "h"))
		v := New(w, h, 1.0)

		v.Pan(
			float32(rapid.Float64Range(-1e4, 1e4).Draw(t, "panX")),
			float32(rapid.Float64Range(-1e4, 1e4).Draw(t, "panY")),
		)
		v.Zoom(
			float32(rapid.Float64Range(0.01, 100).Draw(t, "zoomFactor")),
			float32(rapid.Float64Range(0, float64(w)).Draw(t, "pivotX")),
			float32(rapid.Float64Range(0, float64(h)).Draw(t, "pivotY")),
		)

		p := common.Vec2{
			X: float32(rapid.Float64Range(-1e4, 1e4).Draw(t, "px")),
			Y: float32(rapid.Float64Range(-1e4, 1e4).Draw(t, "py")),
		}

		back := v.ScreenToGraph(v.GraphToScreen(p))
		require.InDelta(t, p.X, back.X, 1e-2)
		require.InDelta(t, p.Y, back.Y, 1e-2)
	})
}
