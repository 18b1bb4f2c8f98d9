package compositor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

func TestSelectLabelSurvivorsKeepsHighPriorityOverLowPriority(t *testing.T) {
	candidates := []LabelCandidate{
		{Index: graphstore.NodeIndex(0), ScreenX: 0, ScreenY: 0, Width: 10, Height: 10, Importance: 1},
		{Index: graphstore.NodeIndex(1), ScreenX: 5, ScreenY: 5, Width: 100, Height: 100, Importance: 1},
	}
	survivors := SelectLabelSurvivors(candidates)
	require.Len(t, survivors, 1)
	require.Equal(t, graphstore.NodeIndex(0), survivors[0].Index)
}

func TestSelectLabelSurvivorsKeepsNonOverlapping(t *testing.T) {
	candidates := []LabelCandidate{
		{Index: graphstore.NodeIndex(0), ScreenX: 0, ScreenY: 0, Width: 10, Height: 10, Importance: 1},
		{Index: graphstore.NodeIndex(1), ScreenX: 100, ScreenY: 100, Width: 10, Height: 10, Importance: 1},
	}
	survivors := SelectLabelSurvivors(candidates)
	require.Len(t, survivors, 2)
}

func TestSelectLabelSurvivorsZeroSizeHasZeroPriority(t *testing.T) {
	candidates := []LabelCandidate{
		{Index: graphstore.NodeIndex(0), Width: 0, Height: 0, Importance: 5},
	}
	survivors := SelectLabelSurvivors(candidates)
	require.Len(t, survivors, 1)
	require.Equal(t, float32(0), survivors[0].priority())
}

func TestOverlapsDetectsIntersectingBoxes(t *testing.T) {
	require.True(t, overlaps(0, 0, 10, 10, 5, 5, 15, 15))
	require.False(t, overlaps(0, 0, 10, 10, 20, 20, 30, 30))
}

func TestSortedLayersOrdersByZIndex(t *testing.T) {
	a := &Layer{Name: "back", ZIndex: -1}
	b := &Layer{Name: "front", ZIndex: 1}
	c := &Layer{Name: "mid", ZIndex: 0}
	ordered := SortedLayers([]*Layer{b, c, a})
	require.Equal(t, []string{"back", "mid", "front"}, []string{ordered[0].Name, ordered[1].Name, ordered[2].Name})
}

func TestSortedLayersFlattensSubLayersInOrder(t *testing.T) {
	sub := &Layer{Name: "sub", ZIndex: 99}
	parent := &Layer{Name: "parent", ZIndex: 0, SubLayers: []*Layer{sub}}
	ordered := SortedLayers([]*Layer{parent})
	require.Len(t, ordered, 2)
	require.Equal(t, "parent", ordered[0].Name)
	require.Equal(t, "sub", ordered[1].Name)
}
