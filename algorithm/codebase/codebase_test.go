package codebase

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/graphstore"
)

func TestPathDepthsSharesPrefixWithNodeZero(t *testing.T) {
	nodes := []graphstore.Node{
		{Meta: "pkg/render/shader.go"},
		{Meta: "pkg/render/pipeline.go"},
		{Meta: "pkg/store/graph.go"},
		{Meta: 42}, // non-string Meta
	}
	depths := pathDepths(nodes, uint32(len(nodes)))
	require.Equal(t, uint32(3), depths[0]) // identical to itself
	require.Equal(t, uint32(2), depths[1]) // shares pkg/render
	require.Equal(t, uint32(1), depths[2]) // shares pkg only
	require.Equal(t, uint32(0), depths[3]) // non-string Meta
}

func TestSharedPrefixLenHandlesEmpty(t *testing.T) {
	require.Equal(t, uint32(0), sharedPrefixLen(nil, []string{"a"}))
}
