package tidytree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

func TestComputeTargetsAssignsIncreasingDepth(t *testing.T) {
	edges := []graphstore.Edge{
		{Source: 0, Target: 1},
		{Source: 0, Target: 2},
		{Source: 1, Target: 3},
	}
	targets := computeTargets(4, edges)
	require.Equal(t, float32(0), targets[0].Y)
	require.Equal(t, float32(LevelHeight), targets[1].Y)
	require.Equal(t, float32(LevelHeight), targets[2].Y)
	require.Equal(t, float32(2*LevelHeight), targets[3].Y)
}

func TestComputeTargetsSeparatesDisconnectedComponents(t *testing.T) {
	edges := []graphstore.Edge{{Source: 0, Target: 1}}
	targets := computeTargets(4, edges)
	require.NotEqual(t, targets[0].X, targets[2].X)
}

func TestComputeTargetsHandlesEmptyGraph(t *testing.T) {
	require.Len(t, computeTargets(0, nil), 0)
}
