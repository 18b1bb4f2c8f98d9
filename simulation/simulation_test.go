package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepAlphaDecaysTowardTarget(t *testing.T) {
	s := DefaultAlphaSchedule()
	next, ended := stepAlpha(1.0, s)
	require.Less(t, next, float32(1.0))
	require.Greater(t, next, float32(0.9))
	require.False(t, ended)
}

func TestStepAlphaEndsBelowMin(t *testing.T) {
	s := AlphaSchedule{Target: 0, Decay: 0.5, Min: 0.01}
	next, ended := stepAlpha(0.015, s)
	require.True(t, ended)
	require.Less(t, next, s.Min)
}

func TestStepAlphaNeverEndsAboveMinWithZeroDecay(t *testing.T) {
	s := AlphaSchedule{Target: 0, Decay: 0, Min: 0.001}
	next, ended := stepAlpha(0.5, s)
	require.Equal(t, float32(0.5), next)
	require.False(t, ended)
}

func TestWorkgroupsForRoundsUp(t *testing.T) {
	require.Equal(t, uint32(1), workgroupsFor(1))
	require.Equal(t, uint32(1), workgroupsFor(256))
	require.Equal(t, uint32(2), workgroupsFor(257))
	require.Equal(t, uint32(0), workgroupsFor(0))
}

func float32Bytes(f float32) []byte {
	bits := math.Float32bits(f)
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

func TestHasNaNOrInfFindsNaN(t *testing.T) {
	data := append(float32Bytes(1.0), float32Bytes(float32(math.NaN()))...)
	require.True(t, hasNaNOrInf(data))
}

func TestHasNaNOrInfFindsInf(t *testing.T) {
	data := append(float32Bytes(0.0), float32Bytes(float32(math.Inf(1)))...)
	require.True(t, hasNaNOrInf(data))
}

func TestHasNaNOrInfCleanData(t *testing.T) {
	data := append(float32Bytes(12.5), float32Bytes(-3.25)...)
	require.False(t, hasNaNOrInf(data))
}
