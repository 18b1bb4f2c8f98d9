package valuestream

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

func twoStopScale(t *testing.T) ColorScale {
	s, err := NewColorScale("test", [2]float32{0, 10}, []ColorStop{
		{Offset: 0, R: 0, G: 0, B: 0, A: 1},
		{Offset: 1, R: 1, G: 1, B: 1, A: 1},
	})
	require.NoError(t, err)
	return s
}

func TestNewColorScaleRejectsTooFewStops(t *testing.T) {
	_, err := NewColorScale("bad", [2]float32{0, 1}, []ColorStop{{Offset: 0}})
	require.Error(t, err)
}

func TestNewColorScaleRejectsUnsortedStops(t *testing.T) {
	_, err := NewColorScale("bad", [2]float32{0, 1}, []ColorStop{
		{Offset: 1}, {Offset: 0},
	})
	require.Error(t, err)
}

func TestNewColorScaleRejectsNonUnitSpan(t *testing.T) {
	_, err := NewColorScale("bad", [2]float32{0, 1}, []ColorStop{
		{Offset: 0.1}, {Offset: 1},
	})
	require.Error(t, err)
}

func TestColorScaleSampleInterpolatesMidpoint(t *testing.T) {
	s := twoStopScale(t)
	r, g, b, a := s.Sample(0.5)
	require.InDelta(t, 0.5, r, 1e-6)
	require.InDelta(t, 0.5, g, 1e-6)
	require.InDelta(t, 0.5, b, 1e-6)
	require.InDelta(t, 1.0, a, 1e-6)
}

func TestColorScaleSampleClampsOutOfRange(t *testing.T) {
	s := twoStopScale(t)
	r, _, _, _ := s.Sample(-1)
	require.Equal(t, float32(0), r)
	r, _, _, _ = s.Sample(2)
	require.Equal(t, float32(1), r)
}

func TestStreamValueDefaultsWhenUnset(t *testing.T) {
	s := NewStream("degree", twoStopScale(t), -1)
	require.Equal(t, float32(-1), s.Value(graphstore.NodeIndex(0)))
	s.Set(graphstore.NodeIndex(0), 7)
	require.Equal(t, float32(7), s.Value(graphstore.NodeIndex(0)))
	s.Unset(graphstore.NodeIndex(0))
	require.Equal(t, float32(-1), s.Value(graphstore.NodeIndex(0)))
}

func TestStreamNormalizedClampsToDomain(t *testing.T) {
	s := NewStream("degree", twoStopScale(t), 0)
	s.Set(graphstore.NodeIndex(0), 5)
	require.InDelta(t, 0.5, s.Normalized(graphstore.NodeIndex(0)), 1e-6)
	s.Set(graphstore.NodeIndex(1), 100)
	require.Equal(t, float32(1), s.Normalized(graphstore.NodeIndex(1)))
	s.Set(graphstore.NodeIndex(2), -100)
	require.Equal(t, float32(0), s.Normalized(graphstore.NodeIndex(2)))
}

func TestCombineModes(t *testing.T) {
	require.Equal(t, float32(3), Combine(1, 2, BlendAdditive))
	require.Equal(t, float32(2), Combine(1, 2, BlendMultiply))
	require.Equal(t, float32(2), Combine(1, 2, BlendReplace))
	require.Equal(t, float32(2), Combine(1, 2, BlendMax))
	require.Equal(t, float32(1), Combine(1, 0, BlendMax))
}

func TestCompositeAppliesPerStreamMode(t *testing.T) {
	a := NewStream("a", twoStopScale(t), 0)
	a.Set(graphstore.NodeIndex(0), 10) // normalized 1.0
	b := NewStream("b", twoStopScale(t), 0)
	b.Set(graphstore.NodeIndex(0), 5) // normalized 0.5

	got := Composite(graphstore.NodeIndex(0), []*Stream{a, b}, []BlendMode{BlendAdditive, BlendAdditive})
	require.InDelta(t, 1.5, got, 1e-6)

	got = Composite(graphstore.NodeIndex(0), []*Stream{a, b}, []BlendMode{BlendAdditive, BlendMax})
	require.InDelta(t, 1.0, got, 1e-6)
}

func TestPresetLookup(t *testing.T) {
	_, ok := Preset("viridis")
	require.True(t, ok)
	_, ok = Preset("not-a-scale")
	require.False(t, ok)
}
