// Package sortkernel implements the LSD radix sort over 32-bit
// (key, value) pairs shared by Barnes-Hut's Morton-order pass and any
// future grid-based collision kernel, plus the Blelloch prefix scan it
// depends on.
package sortkernel

// SortKeyValue mirrors the shader package's embedded SortKeyValue WGSL
// struct. Key is the sort key (e.g. a Morton code); Value travels with it
// unmodified (typically a NodeIndex).
type SortKeyValue struct {
	Key   uint32
	Value uint32
}

// ScanUniforms mirrors the shader package's embedded ScanUniforms WGSL
// struct, 16 bytes: element count and the current radix pass index.
type ScanUniforms struct {
	ElementCount uint32
	PassIndex    uint32
	_pad0        uint32
	_pad1        uint32
}

// DigitBits is the radix digit width: 4-bit digits give 16 buckets per
// pass and 8 passes to cover a full 32-bit key.
const DigitBits = 4

// DigitBuckets is the number of buckets per pass (2^DigitBits).
const DigitBuckets = 1 << DigitBits

// PassCount is the number of LSD passes needed to sort a full 32-bit key.
const PassCount = 32 / DigitBits

// CountingSortThreshold is the element count below which the simpler O(n^2)
// counting sort replaces the full radix pipeline, avoiding scan overhead
// for small arrays (e.g. early in a graph's growth, or a small subgraph).
const CountingSortThreshold = 1024

// SingleWorkgroupScanLimit is the largest histogram the single-workgroup
// Blelloch scan handles. There is no multi-workgroup (three-phase) scan;
// Sort rejects larger inputs instead (see MaxSupportedWorkgroups).
const SingleWorkgroupScanLimit = 512

// MaxSupportedWorkgroups is the largest first-pass workgroup count Sort
// accepts; an element count needing more fails with
// herr.ErrSortCapacityExceeded.
const MaxSupportedWorkgroups = SingleWorkgroupScanLimit
