package compositor

import (
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

// NodePredicate reports whether a node belongs to a Layer.
type NodePredicate func(graphstore.NodeIndex, graphstore.Node) bool

// EdgePredicate reports whether an edge belongs to a Layer.
type EdgePredicate func(graphstore.EdgeIndex, graphstore.Edge) bool

// Layer is a filtered view over the graph (spec §4.6: "layers as
// filtered views"): a predicate selecting which nodes and edges belong
// to it, a z-index by which SortedLayers orders it relative to other
// layers, and an ordered list of sub-layers placed immediately after it.
// A node may match more than one Layer's predicate. Compositor.Draw takes
// no layers, so no Layer field changes what a frame draws.
type Layer struct {
	Name        string
	ZIndex      int
	NodeFilter  NodePredicate
	EdgeFilter  EdgePredicate
	SubLayers   []*Layer
	NodeStyle   NodeStyleOverride
}

// NodeStyleOverride carries the subset of per-node visual parameters a
// Layer can adjust relative to the compositor's default node/edge style.
// Zero value means "inherit the default style".
type NodeStyleOverride struct {
	RadiusScale float32
	Opacity     float32
}

// AllNodes is a NodePredicate matching every node.
func AllNodes(graphstore.NodeIndex, graphstore.Node) bool { return true }

// AllEdges is an EdgePredicate matching every edge.
func AllEdges(graphstore.EdgeIndex, graphstore.Edge) bool { return true }

// SortedLayers returns layers ordered by ascending ZIndex (lowest drawn
// first, i.e. furthest back), each layer's sub-layers flattened
// immediately after it in their own declared order.
func SortedLayers(layers []*Layer) []*Layer {
	flat := make([]*Layer, 0, len(layers))
	var walk func(*Layer)
	walk = func(l *Layer) {
		flat = append(flat, l)
		for _, sub := range l.SubLayers {
			walk(sub)
		}
	}
	ordered := append([]*Layer(nil), layers...)
	insertionSort(ordered)
	for _, l := range ordered {
		walk(l)
	}
	return flat
}

// insertionSort orders layers by ZIndex; layer counts are small (tens,
// not thousands) so an O(n^2) stable sort is simpler than pulling in
// sort.Slice for a handful of comparisons done once per configuration
// change.
func insertionSort(layers []*Layer) {
	for i := 1; i < len(layers); i++ {
		for j := i; j > 0 && layers[j-1].ZIndex > layers[j].ZIndex; j-- {
			layers[j-1], layers[j] = layers[j], layers[j-1]
		}
	}
}

// SelectNodes returns the indices of every node in store matching layer's
// NodeFilter (or every node if NodeFilter is nil).
func SelectNodes(store graphstore.Store, layer *Layer) []graphstore.NodeIndex {
	count := store.NodeCount()
	selected := make([]graphstore.NodeIndex, 0, count)
	for i := 0; i < count; i++ {
		idx := graphstore.NodeIndex(i)
		if layer.NodeFilter == nil || layer.NodeFilter(idx, store.Node(idx)) {
			selected = append(selected, idx)
		}
	}
	return selected
}
