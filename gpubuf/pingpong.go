// Package gpubuf manages the typed, growable GPU buffers the Simulation
// Driver and Graph Store read and write every tick, and the ping-pong
// buffer pairs that let a compute pass read last tick's values while
// writing this tick's without a hazard.
package gpubuf

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

// PingPong is a pair of same-sized, same-usage GPU buffers that swap roles
// every tick: one holds the values a compute pass reads, the other
// receives the values it writes. Swap() exchanges the roles without
// touching the GPU.
type PingPong struct {
	label string
	usage wgpu.BufferUsage

	front *wgpu.Buffer // current read buffer
	back  *wgpu.Buffer // current write buffer

	capacity uint64 // bytes per buffer
}

// NewPingPong allocates both buffers of a ping-pong pair at the given byte
// capacity. usage must include whatever the reading and writing passes
// need (typically wgpu.BufferUsageStorage, plus CopySrc/CopyDst for
// growth).
func NewPingPong(device *wgpu.Device, label string, usage wgpu.BufferUsage, capacity uint64) (*PingPong, error) {
	front, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + "-front",
		Size:  capacity,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpubuf: create front buffer %q: %w", label, herr.ErrInitFailure)
	}
	back, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + "-back",
		Size:  capacity,
		Usage: usage,
	})
	if err != nil {
		front.Release()
		return nil, fmt.Errorf("gpubuf: create back buffer %q: %w", label, herr.ErrInitFailure)
	}
	return &PingPong{label: label, usage: usage, front: front, back: back, capacity: capacity}, nil
}

// Read returns the buffer a compute pass should bind as its read-only
// source this tick.
func (p *PingPong) Read() *wgpu.Buffer { return p.front }

// Write returns the buffer a compute pass should bind as its
// read_write/write-only destination this tick.
func (p *PingPong) Write() *wgpu.Buffer { return p.back }

// Swap exchanges the read and write buffers. Call once per tick after the
// pass that wrote Write() has been submitted, so next tick reads what was
// just written.
func (p *PingPong) Swap() { p.front, p.back = p.back, p.front }

// Capacity returns the byte size of each buffer in the pair.
func (p *PingPong) Capacity() uint64 { return p.capacity }

// Grow reallocates both buffers at a new, larger capacity, copying the
// front buffer's live contents forward via the given encoder so in-flight
// data (e.g. settled node positions) survives a node-count increase. It is
// an error to grow to a capacity smaller than the current one; callers
// should pick a growth factor (the Graph Store doubles) before calling.
func (p *PingPong) Grow(device *wgpu.Device, encoder *wgpu.CommandEncoder, newCapacity uint64) error {
	if newCapacity < p.capacity {
		return fmt.Errorf("gpubuf: grow %q to smaller capacity: %w", p.label, herr.ErrCapacityExceeded)
	}
	newFront, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: p.label + "-front",
		Size:  newCapacity,
		Usage: p.usage,
	})
	if err != nil {
		return fmt.Errorf("gpubuf: grow front buffer %q: %w", p.label, herr.ErrInitFailure)
	}
	newBack, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: p.label + "-back",
		Size:  newCapacity,
		Usage: p.usage,
	})
	if err != nil {
		newFront.Release()
		return fmt.Errorf("gpubuf: grow back buffer %q: %w", p.label, herr.ErrInitFailure)
	}

	encoder.CopyBufferToBuffer(p.front, 0, newFront, 0, p.capacity)
	encoder.CopyBufferToBuffer(p.back, 0, newBack, 0, p.capacity)

	p.front.Release()
	p.back.Release()
	p.front = newFront
	p.back = newBack
	p.capacity = newCapacity
	return nil
}

// Release frees both buffers.
func (p *PingPong) Release() {
	if p.front != nil {
		p.front.Release()
		p.front = nil
	}
	if p.back != nil {
		p.back.Release()
		p.back = nil
	}
}

// BindRead binds the current read buffer into a provider slot, so a
// BufferWrite against that provider and binding writes into the read
// buffer. It uploads nothing itself.
func (p *PingPong) BindRead(provider bindgroup.BindGroupProvider, binding int) {
	provider.SetBuffer(binding, p.front)
}

// BindWrite binds the current write buffer into a provider slot.
func (p *PingPong) BindWrite(provider bindgroup.BindGroupProvider, binding int) {
	provider.SetBuffer(binding, p.back)
}
