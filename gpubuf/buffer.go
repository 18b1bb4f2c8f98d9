package gpubuf

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

// GrowthFactor is the multiplier applied when a Buffer's capacity is
// exceeded; the Graph Store reallocates in 2x steps rather than exactly
// to the requested size, amortizing the cost of frequent small growth.
const GrowthFactor = 2

// Buffer is a single GPU buffer that can grow to a larger capacity,
// preserving its existing contents. Used for data that has no ping-pong
// read/write split: node/edge CSR arrays, sort keys, quadtree nodes.
type Buffer struct {
	label string
	usage wgpu.BufferUsage
	buf   *wgpu.Buffer
	size  uint64
}

// NewBuffer allocates a single GPU buffer at the given byte capacity.
func NewBuffer(device *wgpu.Device, label string, usage wgpu.BufferUsage, capacity uint64) (*Buffer, error) {
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  capacity,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpubuf: create buffer %q: %w", label, herr.ErrInitFailure)
	}
	return &Buffer{label: label, usage: usage, buf: buf, size: capacity}, nil
}

// Raw returns the underlying GPU buffer.
func (b *Buffer) Raw() *wgpu.Buffer { return b.buf }

// Size returns the buffer's current byte capacity.
func (b *Buffer) Size() uint64 { return b.size }

// EnsureCapacity grows the buffer by GrowthFactor steps until it can hold
// at least minBytes, copying old contents forward. No-op if already large
// enough. Returns herr.ErrInitFailure only if device buffer creation
// itself fails; growth by doubling never saturates within realistic graph
// sizes, so there is no hard ceiling here, unlike the sort kernel which
// does have one (see herr.ErrSortCapacityExceeded).
func (b *Buffer) EnsureCapacity(device *wgpu.Device, encoder *wgpu.CommandEncoder, minBytes uint64) error {
	if minBytes <= b.size {
		return nil
	}
	newSize := nextCapacity(b.size, minBytes)

	newBuf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: b.label,
		Size:  newSize,
		Usage: b.usage,
	})
	if err != nil {
		return fmt.Errorf("gpubuf: grow buffer %q: %w", b.label, herr.ErrInitFailure)
	}
	if b.size > 0 {
		encoder.CopyBufferToBuffer(b.buf, 0, newBuf, 0, b.size)
	}
	b.buf.Release()
	b.buf = newBuf
	b.size = newSize
	return nil
}

// nextCapacity returns the smallest size >= minBytes reachable from
// current by repeated GrowthFactor doubling, or minBytes itself if
// current is zero.
func nextCapacity(current, minBytes uint64) uint64 {
	if current == 0 {
		return minBytes
	}
	size := current
	for size < minBytes {
		size *= GrowthFactor
	}
	return size
}

// Release frees the underlying GPU buffer.
func (b *Buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}
