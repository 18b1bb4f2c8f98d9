package simulation

import (
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

// readback is a ping-ponged pair of MapRead-usage staging buffers used
// only by CheckDivergence's on-demand validation pass: while one staging
// buffer is mapped and being scanned on the CPU, the other is free to
// receive the next CopyBufferToBuffer, so two divergence checks in quick
// succession never fight over one mapping. The pair is swapped by this
// type itself; gpubuf.PingPong is not used here.
type readback struct {
	front, back *wgpu.Buffer
}

func newReadback(device *wgpu.Device, maxNodes uint32) (*readback, error) {
	size := uint64(maxNodes) * 8 // position only: 2 x float32 per node
	front, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "simulation:readback-front",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("simulation: create readback front buffer: %w", herr.ErrInitFailure)
	}
	back, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "simulation:readback-back",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		front.Release()
		return nil, fmt.Errorf("simulation: create readback back buffer: %w", herr.ErrInitFailure)
	}
	return &readback{front: front, back: back}, nil
}

func (rb *readback) swap() { rb.front, rb.back = rb.back, rb.front }

func (rb *readback) release() {
	if rb.front != nil {
		rb.front.Release()
		rb.front = nil
	}
	if rb.back != nil {
		rb.back.Release()
		rb.back = nil
	}
}

// hasNaNOrInf scans packed little-endian float32 position data for a
// non-finite value. Split out as a pure function so it can be unit
// tested without a device.
func hasNaNOrInf(data []byte) bool {
	for i := 0; i+4 <= len(data); i += 4 {
		bits := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16 | uint32(data[i+3])<<24
		f := math.Float32frombits(bits)
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return true
		}
	}
	return false
}

// CheckDivergence copies the current position buffer back to the CPU and
// scans for NaN/Inf, per the contract's lazy-on-demand validation pass
// (a per-tick scan would force a GPU/CPU sync every frame). On the first
// divergence found, halts the driver and invokes the onDiverged callback.
func (d *driver) CheckDivergence() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.r == nil {
		return fmt.Errorf("simulation: check divergence: %w", herr.ErrNotInitialized)
	}
	nodeCount := uint32(d.store.NodeCount())
	if nodeCount == 0 {
		return nil
	}

	byteSize := uint64(nodeCount) * 8
	target := d.readback.front
	if err := d.r.CopyBufferToBuffer(d.nodeData.Raw(), 0, target, 0, byteSize); err != nil {
		return fmt.Errorf("simulation: check divergence: copy positions: %w", err)
	}

	device := d.r.Device()
	mapped := make(chan error, 1)
	target.MapAsync(wgpu.MapModeRead, 0, byteSize, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapped <- fmt.Errorf("simulation: map readback buffer: status %v", status)
			return
		}
		mapped <- nil
	})
	for {
		device.Poll(true, nil)
		select {
		case err := <-mapped:
			if err != nil {
				return fmt.Errorf("simulation: check divergence: %w", err)
			}
			goto ready
		default:
		}
	}
ready:
	data := target.GetMappedRange(0, byteSize)
	diverged := hasNaNOrInf(data)
	target.Unmap()
	d.readback.swap()

	if diverged {
		d.diverged = true
		d.running = false
		wrapped := fmt.Errorf("simulation: node positions diverged: %w", herr.ErrSimulationDiverged)
		if d.onDiverged != nil {
			cb := d.onDiverged
			d.mu.Unlock()
			cb(wrapped)
			d.mu.Lock()
		}
		return wrapped
	}
	return nil
}
