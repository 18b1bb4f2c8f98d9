package heroine

import (
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

// Load replaces the entire graph (spec §4.3, §6.1) and fires
// graph:loaded. Where nodeKeys[i] exists it overwrites nodes[i].Key;
// nodes past the end of nodeKeys keep the Key the caller set on them.
func (e *engine) Load(nodes []graphstore.Node, nodeKeys []graphstore.NodeKey, edges []graphstore.Edge) (int, int, error) {
	if err := e.requireReady(); err != nil {
		return 0, 0, err
	}
	for i := range nodes {
		if i < len(nodeKeys) {
			nodes[i].Key = nodeKeys[i]
		}
	}
	dropped, droppedEdges := e.store.Load(nodes, edges)
	e.emit(EventGraphLoaded, struct{ Nodes, Edges int }{len(nodes) - dropped, len(edges) - droppedEdges})
	return dropped, droppedEdges, nil
}

func (e *engine) AddNodes(nodes []graphstore.Node) ([]graphstore.NodeIndex, error) {
	if err := e.requireReady(); err != nil {
		return nil, err
	}
	return e.store.AddNodes(nodes), nil
}

func (e *engine) AddEdges(edges []graphstore.Edge) ([]int64, error) {
	if err := e.requireReady(); err != nil {
		return nil, err
	}
	return e.store.AddEdges(edges), nil
}

func (e *engine) RemoveNodes(keys []graphstore.NodeKey) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	e.store.RemoveNodes(keys)
	return nil
}

func (e *engine) RemoveEdges(indices []graphstore.EdgeIndex) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	e.store.RemoveEdges(indices)
	return nil
}

func (e *engine) SetNodePositions(xs, ys []float32) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	return e.store.SetNodePositions(xs, ys)
}

func (e *engine) SetNodeColors(colors [][4]uint8) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	return e.store.SetNodeColors(colors)
}

func (e *engine) SetNodeSizes(radii []float32) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	return e.store.SetNodeSizes(radii)
}

func (e *engine) SetEdgeColors(colors [][4]uint8) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	return e.store.SetEdgeColors(colors)
}

func (e *engine) SetEdgeWidths(widths []float32) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	return e.store.SetEdgeWidths(widths)
}

func (e *engine) SetEdgeCurvatures(curvatures []float32) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	return e.store.SetEdgeCurvatures(curvatures)
}
