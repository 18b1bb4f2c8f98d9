// Package graphstore owns the dense node/edge tables, their CSR
// projection, and the capacity/growth discipline for the GPU buffers that
// mirror them. It is the single place mutation (add/remove) and the
// Simulation Driver's per-tick read meet.
package graphstore

// NodeKey is the opaque, user-supplied identity of a node: a string or an
// integer, compared for equality only. Two Add calls with the same key
// refer to the same node.
type NodeKey any

// NodeIndex is a dense, stable 32-bit slot id. It stays valid until the
// slot is explicitly recycled by a later mutation. Store.Alive reports
// only whether a slot is occupied now, so a NodeIndex held past removal
// is not told apart from a new node that later reuses the same slot.
type NodeIndex uint32

// EdgeIndex is the edge-table analogue of NodeIndex.
type EdgeIndex uint32

// Generation is the type of the store's internal counter, which Fence
// advances. No Store method returns or accepts a Generation, and
// Store.Alive does not check one.
type Generation uint32

// Node is the CPU-resident record for one graph node. Position/velocity
// are the CPU mirror; while the simulation runs the GPU copy is the
// source of truth and this mirror is considered stale until explicitly
// read back.
type Node struct {
	Key        NodeKey
	X, Y       float32
	VX, VY     float32
	Radius     float32
	R, G, B, A uint8
	TypeTag    int32
	Pinned     bool
	PinX, PinY float32
	VisMask    uint32
	Meta       any
}

// Edge is the CPU-resident record for one graph edge.
type Edge struct {
	Source, Target NodeIndex
	Width          float32
	R, G, B, A     uint8
	Curvature      float32
	TypeTag        int32
}

// NodeData is the simulation-side GPU layout, a subset of Node's fields:
// only what a compute kernel touches every tick. Field order matches the
// shader package's embedded NodeData WGSL struct exactly.
type NodeData struct {
	PositionX, PositionY float32
	VelocityX, VelocityY float32
	Mass                 float32
	Pinned               uint32
	PinX, PinY           float32
}

// EdgeData is the simulation-side GPU layout for the spring pass. Field
// order matches the shader package's embedded EdgeData WGSL struct.
type EdgeData struct {
	Source, Target uint32
	Weight         float32
	_pad0          float32
}
