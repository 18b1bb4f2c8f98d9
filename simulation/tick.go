package simulation

import (
	"fmt"

	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

// workgroupsFor returns the number of workgroup_size(256) groups needed
// to cover count threads, one thread per element.
func workgroupsFor(count uint32) uint32 {
	return (count + 255) / 256
}

// Tick runs the full per-tick pass schedule in a single command
// submission: spring (if the algorithm doesn't claim springs), the
// algorithm's own prelude and repulsion dispatch, gravity (if the
// algorithm doesn't claim gravity), integration, then the alpha cooling
// step. Never blocks on GPU readback; divergence is only ever checked via
// the separate CheckDivergence call.
func (d *driver) Tick() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.r == nil {
		return fmt.Errorf("simulation: tick: %w", herr.ErrNotInitialized)
	}
	if !d.running || d.diverged {
		return nil
	}
	if d.alg == nil {
		return fmt.Errorf("simulation: tick: no algorithm set: %w", herr.ErrNotInitialized)
	}

	ctx := d.contextLocked()
	d.uploadCountsLocked(ctx.NodeCount, ctx.EdgeCount)
	d.uploadForceConfigLocked()
	if err := d.alg.UpdateUniforms(d.r, ctx); err != nil {
		return fmt.Errorf("simulation: tick: algorithm update uniforms: %w", err)
	}

	if err := d.r.BeginComputeFrame(); err != nil {
		return fmt.Errorf("simulation: tick: begin compute frame: %w", err)
	}

	if !d.alg.HandlesSprings() {
		d.r.DispatchCompute(springPipelineKey, d.springGroup, [3]uint32{workgroupsFor(ctx.EdgeCount), 1, 1})
	}
	if d.alg.HandlesRepulsion() {
		if err := d.alg.RecordRepulsionPass(d.r, ctx, ctx.NodeCount); err != nil {
			d.r.EndComputeFrame()
			return fmt.Errorf("simulation: tick: repulsion pass: %w", err)
		}
	}
	if !d.alg.HandlesGravity() {
		d.r.DispatchCompute(gravityPipelineKey, d.gravityGroup, [3]uint32{workgroupsFor(ctx.NodeCount), 1, 1})
	}

	d.uploadIntegrationCountsLocked(ctx.NodeCount)
	d.r.DispatchCompute(integrationPipelineKey, d.integrationGroup, [3]uint32{workgroupsFor(ctx.NodeCount), 1, 1})

	d.r.EndComputeFrame()

	next, ended := stepAlpha(d.alpha, d.schedule)
	d.alpha = next
	if ended {
		d.running = false
		if d.onEnd != nil {
			cb := d.onEnd
			d.mu.Unlock()
			cb()
			d.mu.Lock()
		}
	}
	return nil
}

// uploadCountsLocked writes the shared {nodeCount, edgeCount} uniform the
// spring pass reads. Caller must hold d.mu.
func (d *driver) uploadCountsLocked(nodeCount, edgeCount uint32) {
	provider := bindgroup.NewBindGroupProvider("simulation:counts-write")
	provider.SetBuffer(0, d.counts.Raw())
	counts := [4]uint32{nodeCount, edgeCount, 0, 0}
	d.r.WriteBuffers([]bindgroup.BufferWrite{{Provider: provider, Binding: 0, Data: common.SliceToBytes(counts[:])}})
}

// uploadIntegrationCountsLocked writes {nodeCount, alpha} into the
// integration pass's own counts uniform, reusing the same raw buffer as
// uploadCountsLocked but reinterpreting the second word as a float so the
// GPU kernel sees the current alpha for this tick's position update.
func (d *driver) uploadIntegrationCountsLocked(nodeCount uint32) {
	provider := bindgroup.NewBindGroupProvider("simulation:integration-counts-write")
	provider.SetBuffer(0, d.counts.Raw())
	payload := struct {
		NodeCount uint32
		Alpha     float32
		_pad0     uint32
		_pad1     uint32
	}{NodeCount: nodeCount, Alpha: d.alpha}
	d.r.WriteBuffers([]bindgroup.BufferWrite{{Provider: provider, Binding: 0, Data: common.StructToBytes(&payload)}})
}

// uploadForceConfigLocked mirrors the driver's current ForceConfig to its
// GPU uniform buffer. Caller must hold d.mu.
func (d *driver) uploadForceConfigLocked() {
	provider := bindgroup.NewBindGroupProvider("simulation:force-config-write")
	provider.SetBuffer(0, d.forceConfig.Raw())
	d.r.WriteBuffers([]bindgroup.BufferWrite{{Provider: provider, Binding: 0, Data: common.StructToBytes(&d.config)}})
}
