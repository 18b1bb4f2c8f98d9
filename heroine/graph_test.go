package heroine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

func TestGraphMethodsRejectWhenNotReady(t *testing.T) {
	e := &engine{store: graphstore.New()}
	_, _, err := e.Load(nil, nil, nil)
	require.ErrorIs(t, err, herr.ErrNotReady)

	_, err = e.AddNodes(nil)
	require.ErrorIs(t, err, herr.ErrNotReady)

	err = e.SetNodePositions(nil, nil)
	require.ErrorIs(t, err, herr.ErrNotReady)
}

func TestLoadDelegatesToStoreAndAssignsKeys(t *testing.T) {
	e := &engine{store: graphstore.New(), ready: true, handlers: make(map[Event]EventHandler)}
	var loadedPayload any
	e.On(EventGraphLoaded, func(p any) { loadedPayload = p })

	nodes := []graphstore.Node{{X: 1, Y: 2}, {X: 3, Y: 4}}
	keys := []graphstore.NodeKey{"a", "b"}
	dropped, droppedEdges, err := e.Load(nodes, keys, nil)
	require.NoError(t, err)
	require.Equal(t, 0, dropped)
	require.Equal(t, 0, droppedEdges)
	require.NotNil(t, loadedPayload)

	idx, ok := e.store.Index("a")
	require.True(t, ok)
	require.Equal(t, graphstore.NodeIndex(0), idx)
}

func TestAddNodesDelegatesWhenReady(t *testing.T) {
	e := &engine{store: graphstore.New(), ready: true}
	indices, err := e.AddNodes([]graphstore.Node{{X: 1, Y: 1}})
	require.NoError(t, err)
	require.Len(t, indices, 1)
}
