package gpubuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextCapacityFromZero(t *testing.T) {
	require.Equal(t, uint64(1024), nextCapacity(0, 1024))
}

func TestNextCapacityDoublesUntilSufficient(t *testing.T) {
	require.Equal(t, uint64(1024), nextCapacity(256, 1000))
	require.Equal(t, uint64(256), nextCapacity(256, 200))
}

func TestNextCapacityExactFit(t *testing.T) {
	require.Equal(t, uint64(512), nextCapacity(512, 512))
}
