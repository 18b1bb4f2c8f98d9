package forceatlas2

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

func TestComputeDegreesCountsBothEndpoints(t *testing.T) {
	edges := []graphstore.Edge{
		{Source: 0, Target: 1},
		{Source: 0, Target: 2},
	}
	degrees := computeDegrees(3, edges)
	require.Equal(t, []uint32{2, 1, 1}, degrees)
}

func TestComputeDegreesIgnoresOutOfRangeEdges(t *testing.T) {
	edges := []graphstore.Edge{{Source: 0, Target: 5}}
	degrees := computeDegrees(2, edges)
	require.Equal(t, []uint32{1, 0}, degrees)
}
