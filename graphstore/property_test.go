package graphstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// A NodeKey resolved via Index must keep pointing at the same node's data
// across any sequence of AddNodes/RemoveNodes/Fence calls that never
// removes that key, since the Simulation Driver and every Algorithm index
// GPU buffers by NodeIndex between Fence boundaries.
func TestIndexStableAcrossMutation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		survivorKey := NodeKey("survivor")
		s.AddNodes([]Node{{Key: survivorKey, X: 1, Y: 2}})
		survivorIdx, ok := s.Index(survivorKey)
		require.True(t, ok)

		steps := rapid.IntRange(0, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				s.AddNodes([]Node{{Key: NodeKey(fmt.Sprintf("n%d-%d", i, rapid.Int().Draw(t, "salt")))}})
			case 1:
				s.RemoveNodes([]NodeKey{NodeKey(fmt.Sprintf("n%d-%d", i, rapid.Int().Draw(t, "salt")))})
			case 2:
				s.Fence()
			}

			idx, ok := s.Index(survivorKey)
			require.True(t, ok)
			require.Equal(t, survivorIdx, idx)
			require.True(t, s.Alive(idx))
			n := s.Node(idx)
			require.Equal(t, survivorKey, n.Key)
		}
	})
}

// buildCSR must agree with a naive O(V*E) adjacency scan over the same
// live edge set for any node/edge combination, including dead edges and
// nodes with no incident edges at all.
func TestCSRMatchesNaiveAdjacency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodeCount := rapid.IntRange(1, 24).Draw(t, "nodeCount")
		nodes := make([]Node, nodeCount)
		for i := range nodes {
			nodes[i] = Node{Key: NodeKey(fmt.Sprintf("n%d", i))}
		}

		edgeCount := rapid.IntRange(0, 40).Draw(t, "edgeCount")
		edges := make([]Edge, edgeCount)
		edgeDead := make([]bool, edgeCount)
		for i := range edges {
			edges[i] = Edge{
				Source: NodeIndex(rapid.IntRange(0, nodeCount-1).Draw(t, "src")),
				Target: NodeIndex(rapid.IntRange(0, nodeCount-1).Draw(t, "dst")),
			}
			edgeDead[i] = rapid.Bool().Draw(t, "dead")
		}

		csr := buildCSR(nodes, edges, edgeDead)
		require.Len(t, csr.RowOffsets, nodeCount+1)

		for n := 0; n < nodeCount; n++ {
			var want []NodeIndex
			for i, e := range edges {
				if !edgeDead[i] && int(e.Source) == n {
					want = append(want, e.Target)
				}
			}
			require.ElementsMatch(t, want, csr.Neighbors(NodeIndex(n)))
			require.Equal(t, uint32(len(want)), csr.Degree(NodeIndex(n)))
		}
	})
}
