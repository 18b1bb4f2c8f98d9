package heroine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlgorithmRegistryHasUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, factory := range algorithmRegistry {
		alg := factory()
		id := alg.Info().ID
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate algorithm id %q", id)
		seen[id] = true
	}
}

func TestAlgorithmByIDFindsRegisteredAlgorithm(t *testing.T) {
	first := algorithmRegistry[0]().Info().ID
	alg, ok := algorithmByID(first)
	require.True(t, ok)
	require.Equal(t, first, alg.Info().ID)
}

func TestAlgorithmByIDRejectsUnknown(t *testing.T) {
	_, ok := algorithmByID("does-not-exist")
	require.False(t, ok)
}
