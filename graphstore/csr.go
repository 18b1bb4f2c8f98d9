package graphstore

// CSR is the compressed sparse row projection of the live edge set:
// RowOffsets has one entry per node plus a trailing sentinel, and
// ColTargets[RowOffsets[n]:RowOffsets[n+1]] lists n's outgoing neighbours.
// Dead nodes get an empty row (RowOffsets[n] == RowOffsets[n+1]).
type CSR struct {
	RowOffsets []uint32
	ColTargets []uint32
	ColEdges   []uint32 // EdgeIndex parallel to ColTargets, for kernels that need edge attributes during traversal
}

// buildCSR is O(V+E): one pass to count out-degree per node, one prefix
// sum, one scatter pass. Treats every edge as contributing to its
// source's row only (directed CSR); algorithms that need the reverse
// adjacency build it themselves from ColEdges.
func buildCSR(nodes []Node, edges []Edge, edgeDead []bool) CSR {
	n := len(nodes)
	degree := make([]uint32, n)
	for i, e := range edges {
		if edgeDead[i] {
			continue
		}
		degree[e.Source]++
	}

	rowOffsets := make([]uint32, n+1)
	for i := 0; i < n; i++ {
		rowOffsets[i+1] = rowOffsets[i] + degree[i]
	}

	total := rowOffsets[n]
	colTargets := make([]uint32, total)
	colEdges := make([]uint32, total)
	cursor := make([]uint32, n)
	copy(cursor, rowOffsets[:n])

	for i, e := range edges {
		if edgeDead[i] {
			continue
		}
		pos := cursor[e.Source]
		colTargets[pos] = uint32(e.Target)
		colEdges[pos] = uint32(i)
		cursor[e.Source]++
	}

	// Dead nodes naturally end up with a zero-width row: removeNodes
	// cascades to remove their incident edges first (see store.go), so a
	// dead node never contributes to degree above.

	return CSR{RowOffsets: rowOffsets, ColTargets: colTargets, ColEdges: colEdges}
}

// Neighbors returns the target NodeIndices of n's outgoing edges.
func (c CSR) Neighbors(n NodeIndex) []NodeIndex {
	start, end := c.RowOffsets[n], c.RowOffsets[n+1]
	out := make([]NodeIndex, end-start)
	for i := start; i < end; i++ {
		out[i-start] = NodeIndex(c.ColTargets[i])
	}
	return out
}

// Degree returns n's out-degree.
func (c CSR) Degree(n NodeIndex) uint32 {
	return c.RowOffsets[n+1] - c.RowOffsets[n]
}
