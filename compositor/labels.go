// Package compositor implements the Layer Compositor (spec §4.6): the
// fixed back-to-front render pass sequence (clear, density, heatmap,
// contours, metaballs, edges, nodes, labels), each skippable, plus the
// "layers as filtered views" mechanism — a predicate over nodes/edges
// with its own ordered sub-layer list and explicit z-index.
package compositor

import (
	"sort"

	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

// LabelCandidate is one label-eligible node's screen-space placement
// input for the survivor-culling pass (spec §4.6 step 8).
type LabelCandidate struct {
	Index      graphstore.NodeIndex
	ScreenX    float32
	ScreenY    float32
	Width      float32 // screen-space label box width
	Height     float32 // screen-space label box height
	Importance float32 // caller-supplied node importance weight
}

// priority is importance * 1/visible-size, per spec.md's exact ranking
// rule; a small, important label outranks a large, unimportant one.
func (c LabelCandidate) priority() float32 {
	size := c.Width * c.Height
	if size <= 0 {
		return 0
	}
	return c.Importance / size
}

// aabb returns the candidate's screen-space bounding box, centred at
// (ScreenX, ScreenY).
func (c LabelCandidate) aabb() (minX, minY, maxX, maxY float32) {
	hw, hh := c.Width/2, c.Height/2
	return c.ScreenX - hw, c.ScreenY - hh, c.ScreenX + hw, c.ScreenY + hh
}

func overlaps(aMinX, aMinY, aMaxX, aMaxY, bMinX, bMinY, bMaxX, bMaxY float32) bool {
	return aMinX < bMaxX && aMaxX > bMinX && aMinY < bMaxY && aMaxY > bMinY
}

// SelectLabelSurvivors ranks candidates by priority descending, then
// walks them in rank order, rejecting any whose AABB overlaps a
// previously accepted label, exactly as spec §4.6 step 8 describes. The
// coarse grid the spec mentions is an acceleration structure over this
// same AABB-overlap test; with realistic label counts (hundreds, not
// millions) the O(n^2) walk below is equivalent and needs no grid.
func SelectLabelSurvivors(candidates []LabelCandidate) []LabelCandidate {
	ranked := append([]LabelCandidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].priority() > ranked[j].priority()
	})

	type box struct{ minX, minY, maxX, maxY float32 }
	accepted := make([]box, 0, len(ranked))
	survivors := make([]LabelCandidate, 0, len(ranked))

	for _, c := range ranked {
		minX, minY, maxX, maxY := c.aabb()
		rejected := false
		for _, a := range accepted {
			if overlaps(minX, minY, maxX, maxY, a.minX, a.minY, a.maxX, a.maxY) {
				rejected = true
				break
			}
		}
		if rejected {
			continue
		}
		accepted = append(accepted, box{minX, minY, maxX, maxY})
		survivors = append(survivors, c)
	}
	return survivors
}
