package community

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

func TestComputeCategoriesCopiesTypeTag(t *testing.T) {
	nodes := []graphstore.Node{{TypeTag: 1}, {TypeTag: 2}, {TypeTag: 1}}
	require.Equal(t, []int32{1, 2, 1}, computeCategories(3, nodes))
}

func TestComputeCategoriesStopsAtNodeCount(t *testing.T) {
	nodes := []graphstore.Node{{TypeTag: 1}, {TypeTag: 2}}
	require.Equal(t, []int32{1}, computeCategories(1, nodes))
}
