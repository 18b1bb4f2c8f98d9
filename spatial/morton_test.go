package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuantiseClampsToRange(t *testing.T) {
	require.Equal(t, uint32(0), Quantise(-5, 0, 100))
	require.Equal(t, uint32(65535), Quantise(500, 0, 100))
	require.Equal(t, uint32(0), Quantise(0, 0, 100))
}

func TestMortonCodeInterleavesBits(t *testing.T) {
	// x=1 (bit 0 set), y=0 -> bit 0 of the key set, nothing else.
	require.Equal(t, uint32(1), MortonCode(1, 0))
	// x=0, y=1 -> bit 1 of the key set.
	require.Equal(t, uint32(2), MortonCode(0, 1))
	// x=1, y=1 -> bits 0 and 1 both set.
	require.Equal(t, uint32(3), MortonCode(1, 1))
}

func TestMortonCodeOrdersSpatiallyCloseSiblings(t *testing.T) {
	// Two points in the same quadrant cell should have Morton codes
	// closer together than a point in a distant quadrant.
	near := MortonCode(Quantise(10, 0, 100), Quantise(12, 0, 100))
	self := MortonCode(Quantise(11, 0, 100), Quantise(11, 0, 100))
	far := MortonCode(Quantise(90, 0, 100), Quantise(90, 0, 100))

	diffNear := absDiff(self, near)
	diffFar := absDiff(self, far)
	require.Less(t, diffNear, diffFar)
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
