package tidytree

import (
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

// computeTargets builds a spanning tree by BFS from node 0 (first edge
// touching an unvisited node wins its parent), then assigns each node an
// analytic (x, y) target from its BFS depth and order within that depth.
// Nodes unreachable from 0 are laid out as additional roots to the right
// of the main tree, so every node still gets a defined target.
func computeTargets(nodeCount uint32, edges []graphstore.Edge) []common.Vec2 {
	targets := make([]common.Vec2, nodeCount)
	if nodeCount == 0 {
		return targets
	}

	adjacency := make(map[uint32][]uint32, nodeCount)
	for _, e := range edges {
		s, t := uint32(e.Source), uint32(e.Target)
		if s >= nodeCount || t >= nodeCount {
			continue
		}
		adjacency[s] = append(adjacency[s], t)
		adjacency[t] = append(adjacency[t], s)
	}

	visited := make([]bool, nodeCount)
	depth := make([]int, nodeCount)
	nextColumnAtDepth := map[int]float64{}
	nextRootColumn := 0.0
	componentBase := 0.0

	var bfs func(root uint32)
	bfs = func(root uint32) {
		queue := []uint32{root}
		visited[root] = true
		depth[root] = 0
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			col, ok := nextColumnAtDepth[depth[cur]]
			if !ok {
				col = componentBase
			}
			targets[cur] = common.Vec2{
				X: float32(col * SiblingSpacing),
				Y: float32(depth[cur]) * LevelHeight,
			}
			nextColumnAtDepth[depth[cur]] = col + 1
			for _, next := range adjacency[cur] {
				if visited[next] {
					continue
				}
				visited[next] = true
				depth[next] = depth[cur] + 1
				queue = append(queue, next)
			}
		}
	}

	for i := uint32(0); i < nodeCount; i++ {
		if visited[i] {
			continue
		}
		base := nextRootColumn
		for d := range nextColumnAtDepth {
			delete(nextColumnAtDepth, d)
		}
		componentBase = base
		bfs(i)
		// one-column gap right of this component's widest level
		nextRootColumn = base + 1
		for _, col := range nextColumnAtDepth {
			nextRootColumn = max(nextRootColumn, col+1)
		}
	}

	return targets
}
