package viewport

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/common"
)

func TestScreenGraphRoundTrip(t *testing.T) {
	v := New(1280, 720, 1.0)
	v.Pan(37, -12)
	v.Zoom(3.2, 640, 360)

	pts := []common.Vec2{{X: 0, Y: 0}, {X: 100, Y: -50}, {X: -983.5, Y: 12.25}}
	for _, p := range pts {
		screen := v.GraphToScreen(p)
		back := v.ScreenToGraph(screen)
		require.InDelta(t, p.X, back.X, 1e-4)
		require.InDelta(t, p.Y, back.Y, 1e-4)
	}
}

func TestZoomPreservesPivot(t *testing.T) {
	v := New(800, 600, 1.0)
	pivot := common.Vec2{X: 400, Y: 300}
	before := v.ScreenToGraph(pivot)

	v.Zoom(2.0, pivot.X, pivot.Y)

	after := v.ScreenToGraph(pivot)
	require.InDelta(t, before.X, after.X, 1e-4)
	require.InDelta(t, before.Y, after.Y, 1e-4)
}

func TestZoomClampsToRange(t *testing.T) {
	v := New(800, 600, 1.0)
	v.Zoom(1e9, 400, 300)
	require.LessOrEqual(t, v.Scale(), float32(64))

	v.Zoom(1e-9, 400, 300)
	require.GreaterOrEqual(t, v.Scale(), float32(0.02))
}

func TestFitToViewCentresContent(t *testing.T) {
	v := New(1000, 1000, 1.0)
	v.FitToView(-50, -50, 150, 150, 0.1)

	centre := v.Centre()
	require.InDelta(t, 50, centre.X, 1e-4)
	require.InDelta(t, 50, centre.Y, 1e-4)
}

func TestUniformsMatchScale(t *testing.T) {
	v := New(1920, 1080, 2.0)
	v.Zoom(4, 960, 540)

	u := v.Uniforms()
	require.InDelta(t, v.Scale(), u.Scale, 1e-6)
	require.InDelta(t, 1/float64(v.Scale()), float64(u.InvScale), 1e-4)
	require.Equal(t, float32(1920), u.ScreenSize.X)
	require.Equal(t, float32(1080), u.ScreenSize.Y)
}

func TestClampScale(t *testing.T) {
	require.Equal(t, float32(1), ClampScale(0.5, 1, 10))
	require.Equal(t, float32(10), ClampScale(50, 1, 10))
	require.Equal(t, float32(5), ClampScale(5, 1, 10))
}
