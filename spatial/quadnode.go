package spatial

// QuadNode mirrors the shader package's embedded QuadNode WGSL struct.
// Leaves (bodyCount == 1) and internal nodes share the same layout:
// internal nodes aggregate centerOfMass/totalMass from their four
// children (stored contiguously starting at childBase) during the
// propagation pass; leaves carry their source node's index in bodyIndex.
type QuadNode struct {
	CenterOfMassX, CenterOfMassY float32
	TotalMass                    float32
	HalfExtent                   float32
	ChildBase                    uint32
	BodyIndex                    uint32
	BodyCount                    uint32
	_pad0                        uint32
}

// IsLeaf reports whether n is a leaf (one body, no children).
func (n QuadNode) IsLeaf() bool { return n.BodyCount <= 1 }

// FixedPointScale is the quantisation factor applied to accumulated
// forces before atomic add, so a fractional repulsion force survives
// integer atomics: F_fixed = i32(F * FixedPointScale), which truncates
// toward zero rather than rounding to nearest; integration
// divides back down by the same factor. Chosen so worst-case accumulated
// force across the densest expected quadtree cell still fits in an i32.
const FixedPointScale = 1 << 16
