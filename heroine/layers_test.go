package heroine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/compositor"
)

func TestDefineLayerAppendsNewLayer(t *testing.T) {
	e := &engine{}
	e.DefineLayer(&compositor.Layer{Name: "highlighted"})
	require.Len(t, e.layers, 1)
	require.Equal(t, "highlighted", e.layers[0].Name)
}

func TestDefineLayerReplacesExistingByName(t *testing.T) {
	e := &engine{}
	e.DefineLayer(&compositor.Layer{Name: "a", ZIndex: 1})
	e.DefineLayer(&compositor.Layer{Name: "a", ZIndex: 2})
	require.Len(t, e.layers, 1)
	require.Equal(t, 2, e.layers[0].ZIndex)
}

func TestRemoveLayerDeletesByName(t *testing.T) {
	e := &engine{}
	e.DefineLayer(&compositor.Layer{Name: "a"})
	e.DefineLayer(&compositor.Layer{Name: "b"})
	e.RemoveLayer("a")
	require.Len(t, e.layers, 1)
	require.Equal(t, "b", e.layers[0].Name)
}

func TestLayerVisibilityDefaultsToTrue(t *testing.T) {
	e := &engine{}
	require.True(t, e.GetLayerVisibility("unknown"))
}

func TestSetLayerVisibleOverridesDefault(t *testing.T) {
	e := &engine{}
	e.SetLayerVisible("a", false)
	require.False(t, e.GetLayerVisibility("a"))
}

func TestSetMetaballConfigUpdatesCompositorConfig(t *testing.T) {
	e := &engine{}
	e.SetMetaballConfig(MetaballConfig{FillColor: [4]float32{1, 0, 0, 1}, Threshold: 0.5, Opacity: 0.8})
	require.Equal(t, float32(0.5), e.compositorCfg.Metaballs.IsoLevel)
	require.Equal(t, float32(1), e.compositorCfg.Metaballs.R)
	require.Equal(t, float32(0.8), e.compositorCfg.Metaballs.A)
}

func TestEnableMetaballTogglesVisibility(t *testing.T) {
	e := &engine{}
	e.EnableMetaball(MetaballConfig{})
	require.True(t, e.compositorCfg.ShowMetaballs)
	e.DisableMetaball()
	require.False(t, e.compositorCfg.ShowMetaballs)
}

func TestEnableContourTogglesDensityAndContours(t *testing.T) {
	e := &engine{}
	e.EnableContour(ContourConfig{Thresholds: []float32{0.2, 0.5}})
	require.True(t, e.compositorCfg.ShowDensity)
	require.True(t, e.compositorCfg.ShowContours)
	require.Equal(t, []float32{0.2, 0.5}, e.compositorCfg.ContourThresholds)
}
