// Package barneshut implements the Barnes-Hut repulsion kernel (§4.4): a
// Morton-ordered quadtree rebuilt fresh each tick, traversed once per node
// with an s/d < theta acceptance criterion. It wraps the spatial package
// for the quadtree build/traverse and gpubuf for its own GPU allocations,
// owning nothing the driver's shared Context already provides.
package barneshut

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm"
	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/gpubuf"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
	"github.com/tomWhiting/heroine-graph-sub003/sortkernel"
	"github.com/tomWhiting/heroine-graph-sub003/spatial"
)

// ID is this algorithm's info.ID.
const ID = "barnes-hut"

const quadNodeSize = 32 // bytes; mirrors spatial.QuadNode's field layout

type barnesHut struct {
	index  spatial.Index
	sorter sortkernel.Sorter

	maxNodes uint32

	keysA, keysB *gpubuf.Buffer // ping-pong sort_keys pair
	scratch      *gpubuf.Buffer // histogram + offsets scratch for the sorter
	tree         *gpubuf.Buffer // quad_node array sized for leaves + internal nodes
	bounds       *gpubuf.Buffer // world bounds uniform the morton pass quantises against

	scratchGroup  bindgroup.BindGroupProvider
	mortonGroup   bindgroup.BindGroupProvider
	buildGroup    bindgroup.BindGroupProvider
	propagateGroup bindgroup.BindGroupProvider
	traverseGroup bindgroup.BindGroupProvider
	keysAGroup    bindgroup.BindGroupProvider
	keysBGroup    bindgroup.BindGroupProvider
}

// New constructs an unconfigured Barnes-Hut algorithm. CreatePipelines,
// CreateBuffers, and CreateBindGroups must run (in that order) before
// RecordRepulsionPass is dispatched.
func New() algorithm.Algorithm {
	return &barnesHut{}
}

var _ algorithm.Algorithm = &barnesHut{}

func (b *barnesHut) Info() algorithm.Info {
	return algorithm.Info{
		ID:          ID,
		DisplayName: "Barnes-Hut",
		Complexity:  algorithm.ComplexityLinearithmic,
	}
}

func (b *barnesHut) HandlesGravity() bool   { return false }
func (b *barnesHut) HandlesSprings() bool   { return false }
func (b *barnesHut) HandlesRepulsion() bool { return true }

func (b *barnesHut) CreatePipelines(r renderer.Renderer) error {
	b.scratchGroup = bindgroup.NewBindGroupProvider("barneshut:sort-scratch")
	b.sorter = sortkernel.New(r, b.scratchGroup)
	b.index = spatial.New(r, b.sorter)
	if err := b.index.EnsurePipelines(); err != nil {
		return fmt.Errorf("barneshut: ensure pipelines: %w", err)
	}
	return nil
}

func (b *barnesHut) CreateBuffers(r renderer.Renderer, maxNodes uint32) error {
	b.maxNodes = maxNodes
	device := r.Device()

	const storage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

	keysA, err := gpubuf.NewBuffer(device, "barneshut:keys-a", storage, uint64(maxNodes)*8)
	if err != nil {
		return fmt.Errorf("barneshut: create keys-a buffer: %w", err)
	}
	b.keysA = keysA

	keysB, err := gpubuf.NewBuffer(device, "barneshut:keys-b", storage, uint64(maxNodes)*8)
	if err != nil {
		return fmt.Errorf("barneshut: create keys-b buffer: %w", err)
	}
	b.keysB = keysB

	scratch, err := gpubuf.NewBuffer(device, "barneshut:scratch", storage, sortkernel.DigitBuckets*4*2)
	if err != nil {
		return fmt.Errorf("barneshut: create sort scratch buffer: %w", err)
	}
	b.scratch = scratch

	treeCapacity := uint64(maxNodes) * 2 * quadNodeSize
	tree, err := gpubuf.NewBuffer(device, "barneshut:tree", storage, treeCapacity)
	if err != nil {
		return fmt.Errorf("barneshut: create tree buffer: %w", err)
	}
	b.tree = tree

	bounds, err := gpubuf.NewBuffer(device, "barneshut:bounds", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, 16)
	if err != nil {
		return fmt.Errorf("barneshut: create bounds buffer: %w", err)
	}
	b.bounds = bounds

	return nil
}

func (b *barnesHut) CreateBindGroups(r renderer.Renderer, ctx algorithm.Context) error {
	if b.tree == nil {
		return fmt.Errorf("barneshut: create bind groups: %w", herr.ErrNotInitialized)
	}

	b.scratchGroup.SetBuffer(0, b.scratch.Raw())

	b.mortonGroup = bindgroup.NewBindGroupProvider("barneshut:morton")
	b.mortonGroup.SetBuffer(0, ctx.NodeData.Buffer(0))
	b.mortonGroup.SetBuffer(1, b.keysA.Raw())
	b.mortonGroup.SetBuffer(2, b.bounds.Raw())

	b.keysAGroup = bindgroup.NewBindGroupProvider("barneshut:keys-a")
	b.keysAGroup.SetBuffer(0, b.keysA.Raw())
	b.keysAGroup.SetBuffer(1, b.keysB.Raw())
	b.keysAGroup.SetBuffer(2, b.scratch.Raw())

	b.keysBGroup = bindgroup.NewBindGroupProvider("barneshut:keys-b")
	b.keysBGroup.SetBuffer(0, b.keysB.Raw())
	b.keysBGroup.SetBuffer(1, b.keysA.Raw())
	b.keysBGroup.SetBuffer(2, b.scratch.Raw())

	b.buildGroup = bindgroup.NewBindGroupProvider("barneshut:build")
	b.buildGroup.SetBuffer(0, ctx.NodeData.Buffer(0))
	b.buildGroup.SetBuffer(1, b.keysA.Raw())
	b.buildGroup.SetBuffer(2, b.tree.Raw())

	b.propagateGroup = bindgroup.NewBindGroupProvider("barneshut:propagate")
	b.propagateGroup.SetBuffer(0, b.tree.Raw())
	b.propagateGroup.SetBuffer(1, b.tree.Raw())

	b.traverseGroup = bindgroup.NewBindGroupProvider("barneshut:traverse")
	b.traverseGroup.SetBuffer(0, ctx.NodeData.Buffer(0))
	b.traverseGroup.SetBuffer(1, b.tree.Raw())
	b.traverseGroup.SetBuffer(2, ctx.ForceConfigBuffer)
	b.traverseGroup.SetBuffer(3, ctx.ForceAccumulator.Buffer(0))

	return nil
}

func (b *barnesHut) UpdateUniforms(r renderer.Renderer, ctx algorithm.Context) error {
	b.index.SetBounds(ctx.ViewportMinX, ctx.ViewportMinY, ctx.ViewportMaxX, ctx.ViewportMaxY)
	b.index.SetTheta(ctx.Config.Theta)

	bounds := [4]float32{ctx.ViewportMinX, ctx.ViewportMinY, ctx.ViewportMaxX, ctx.ViewportMaxY}
	r.WriteBuffers([]bindgroup.BufferWrite{{
		Provider: boundsProviderFor(b.bounds),
		Binding:  0,
		Data:     common.SliceToBytes(bounds[:]),
	}})
	return nil
}

func boundsProviderFor(buf *gpubuf.Buffer) bindgroup.BindGroupProvider {
	p := bindgroup.NewBindGroupProvider("barneshut:bounds-write")
	p.SetBuffer(0, buf.Raw())
	return p
}

func (b *barnesHut) RecordRepulsionPass(r renderer.Renderer, ctx algorithm.Context, nodeCount uint32) error {
	if err := b.index.Build(b.mortonGroup, b.keysAGroup, b.keysBGroup, b.buildGroup, b.propagateGroup, nodeCount); err != nil {
		return fmt.Errorf("barneshut: build quadtree: %w", err)
	}
	if err := b.index.Traverse(b.traverseGroup, nodeCount); err != nil {
		return fmt.Errorf("barneshut: traverse quadtree: %w", err)
	}
	return nil
}

func (b *barnesHut) Destroy() {
	for _, buf := range []*gpubuf.Buffer{b.keysA, b.keysB, b.scratch, b.tree, b.bounds} {
		if buf != nil {
			buf.Release()
		}
	}
	b.keysA, b.keysB, b.scratch, b.tree, b.bounds = nil, nil, nil, nil, nil
}
