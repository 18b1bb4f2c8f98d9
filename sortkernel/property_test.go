package sortkernel

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// cpuRadixSort mirrors the per-pass histogram/scan/scatter structure the
// histogram/scan/scatter WGSL kernels implement (shaders.go): DigitBits-wide
// digits, PassCount passes, a stable scatter within each digit bucket.
// Kept test-local since nothing at runtime needs a CPU-side sort; this is
// the reference the property test below checks the kernels' own algorithm
// against, the same role SplatGrid plays for the density kernel.
func cpuRadixSort(items []SortKeyValue) []SortKeyValue {
	front := append([]SortKeyValue(nil), items...)
	back := make([]SortKeyValue, len(items))
	for pass := 0; pass < PassCount; pass++ {
		shift := uint32(pass * DigitBits)
		var histogram [DigitBuckets]uint32
		for _, kv := range front {
			digit := (kv.Key >> shift) & (DigitBuckets - 1)
			histogram[digit]++
		}
		var offsets [DigitBuckets]uint32
		var running uint32
		for d := 0; d < DigitBuckets; d++ {
			offsets[d] = running
			running += histogram[d]
		}
		for _, kv := range front {
			digit := (kv.Key >> shift) & (DigitBuckets - 1)
			back[offsets[digit]] = kv
			offsets[digit]++
		}
		front, back = back, front
	}
	return front
}

// The radix kernels must produce a fully key-ascending, stable-by-original-
// index ordering for any (key, value) array, matching Go's own stable sort
// used as ground truth.
func TestRadixSortMatchesStableReference(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 200).Draw(t, "n")
		items := make([]SortKeyValue, n)
		for i := range items {
			items[i] = SortKeyValue{
				Key:   rapid.Uint32().Draw(t, "key"),
				Value: uint32(i),
			}
		}

		want := append([]SortKeyValue(nil), items...)
		sort.SliceStable(want, func(i, j int) bool { return want[i].Key < want[j].Key })

		got := cpuRadixSort(items)
		require.Equal(t, want, got)
	})
}

func TestCountingSortThresholdBelowRadixCapacity(t *testing.T) {
	require.Less(t, uint32(CountingSortThreshold), uint32(MaxSupportedWorkgroups)*256)
}
