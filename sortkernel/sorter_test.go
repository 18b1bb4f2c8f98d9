package sortkernel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

func TestWorkgroupsForRoundsUp(t *testing.T) {
	require.Equal(t, uint32(1), workgroupsFor(1, 256))
	require.Equal(t, uint32(1), workgroupsFor(256, 256))
	require.Equal(t, uint32(2), workgroupsFor(257, 256))
}

func TestPassCountCoversFullKeyWidth(t *testing.T) {
	require.Equal(t, 8, PassCount)
	require.Equal(t, 0, PassCount%2, "pass count must be even so the ping-pong result lands back in the input buffer")
}

func TestCapacityLimitsDeriveFromScanLimit(t *testing.T) {
	require.Equal(t, SingleWorkgroupScanLimit, MaxSupportedWorkgroups)
}

func TestSortRejectsOversizeArrayWithoutTouchingRenderer(t *testing.T) {
	// elementCount is large enough to take the radix path (not counting
	// sort) but requires more workgroups than the scan supports, so this
	// must error before any renderer/GPU call is made — exercised here
	// with a nil renderer to prove the early-out.
	s := &sorter{}
	_, err := s.Sort(nil, nil, 200000)
	require.Error(t, err)
	require.True(t, errors.Is(err, herr.ErrSortCapacityExceeded))
}

func TestSortNoopOnZeroElements(t *testing.T) {
	s := &sorter{}
	result, err := s.Sort(nil, nil, 0)
	require.NoError(t, err)
	require.Nil(t, result)
}
