package graphstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDeduplicatesAndDropsDanglingEdges(t *testing.T) {
	s := New()
	nodes := []Node{{Key: "a"}, {Key: "b"}, {Key: "a"}}
	edges := []Edge{
		{Source: 0, Target: 1},
		{Source: 0, Target: 99}, // dangling
	}
	droppedNodes, droppedEdges := s.Load(nodes, edges)
	require.Equal(t, 1, droppedNodes)
	require.Equal(t, 1, droppedEdges)
	require.Equal(t, 2, s.NodeCount())
	require.Equal(t, 1, s.EdgeCount())
}

func TestAddNodesAssignsStableIndices(t *testing.T) {
	s := New()
	idxs := s.AddNodes([]Node{{Key: "x"}, {Key: "y"}})
	require.Equal(t, []NodeIndex{0, 1}, idxs)

	found, ok := s.Index("y")
	require.True(t, ok)
	require.Equal(t, NodeIndex(1), found)
}

func TestAddEdgesRejectsUnknownEndpoints(t *testing.T) {
	s := New()
	s.AddNodes([]Node{{Key: "a"}, {Key: "b"}})
	results := s.AddEdges([]Edge{
		{Source: 0, Target: 1},
		{Source: 0, Target: 5},
	})
	require.Equal(t, int64(0), results[0])
	require.Equal(t, int64(-1), results[1])
}

func TestRemoveNodeCascadesIncidentEdges(t *testing.T) {
	s := New()
	s.AddNodes([]Node{{Key: "a"}, {Key: "b"}, {Key: "c"}})
	s.AddEdges([]Edge{{Source: 0, Target: 1}, {Source: 1, Target: 2}})
	require.Equal(t, 2, s.EdgeCount())

	s.RemoveNodes([]NodeKey{"b"})
	require.Equal(t, 0, s.EdgeCount())
	require.Equal(t, 2, s.NodeCount())

	_, ok := s.Index("b")
	require.False(t, ok)
}

func TestFenceRecyclesIndicesOnlyAfterCall(t *testing.T) {
	s := New()
	s.AddNodes([]Node{{Key: "a"}})
	s.RemoveNodes([]NodeKey{"a"})

	// Before Fence, re-adding must not reuse the not-yet-recycled slot.
	idxs := s.AddNodes([]Node{{Key: "b"}})
	require.Equal(t, NodeIndex(1), idxs[0])

	s.Fence()
	idxs = s.AddNodes([]Node{{Key: "c"}})
	require.Equal(t, NodeIndex(0), idxs[0], "slot 0 should be recycled after Fence")
}

func TestSetNodePositionsShapeMismatch(t *testing.T) {
	s := New()
	s.AddNodes([]Node{{Key: "a"}, {Key: "b"}})
	err := s.SetNodePositions([]float32{1}, []float32{1})
	require.Error(t, err)
}

func TestSetNodePositionsApplies(t *testing.T) {
	s := New()
	s.AddNodes([]Node{{Key: "a"}, {Key: "b"}})
	require.NoError(t, s.SetNodePositions([]float32{1, 2}, []float32{3, 4}))
	n := s.Node(0)
	require.Equal(t, float32(1), n.X)
	require.Equal(t, float32(3), n.Y)
}

func TestCSRAdjacency(t *testing.T) {
	s := New()
	s.AddNodes([]Node{{Key: "a"}, {Key: "b"}, {Key: "c"}})
	s.AddEdges([]Edge{{Source: 0, Target: 1}, {Source: 0, Target: 2}})

	csr := s.EnsureCSR()
	require.Equal(t, uint32(2), csr.Degree(0))
	neighbors := csr.Neighbors(0)
	require.ElementsMatch(t, []NodeIndex{1, 2}, neighbors)
	require.Equal(t, uint32(0), csr.Degree(1))
}

func TestNodeDataBytesLength(t *testing.T) {
	s := New()
	s.AddNodes([]Node{{Key: "a"}, {Key: "b"}, {Key: "c"}})
	b := s.NodeDataBytes()
	require.Len(t, b, 3*32) // 8 float32/u32 fields * 4 bytes * 3 nodes
}
