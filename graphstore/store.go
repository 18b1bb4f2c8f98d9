package graphstore

import (
	"fmt"
	"sync"

	"github.com/tomWhiting/heroine-graph-sub003/common"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
)

// CapacityFloor is the smallest GPU buffer capacity (in element count) the
// store ever allocates, even for a handful of nodes, so early small
// mutations don't force a reallocation on every add.
const CapacityFloor = 1024

// store is the implementation of Store.
type store struct {
	mu sync.Mutex

	nodes   []Node
	dead    []bool
	gen     []Generation
	keyToIx map[NodeKey]NodeIndex
	freeN   []NodeIndex // recycled, ready to reuse
	pendingFreeN []NodeIndex // dead but not yet past a fence

	edges     []Edge
	edgeDead  []bool
	edgeAlive int
	freeE     []EdgeIndex
	pendingFreeE []EdgeIndex

	// incident[n] lists every live EdgeIndex with Source==n or Target==n,
	// so removeNodes can cascade-remove without a full edge scan.
	incident map[NodeIndex][]EdgeIndex

	nodeCapacity uint32
	edgeCapacity uint32

	csr      CSR
	csrDirty bool
}

// Store owns the node/edge tables and their CSR projection.
type Store interface {
	// Load replaces the entire graph. Duplicate node keys keep the first
	// occurrence; edges referencing an unknown or dropped node are
	// skipped. Returns the number of dropped nodes and edges.
	Load(nodes []Node, edges []Edge) (droppedNodes, droppedEdges int)

	// AddNodes appends nodes, returning their assigned indices in input
	// order. Growing capacity doubles (next power of two, floor 1024).
	AddNodes(nodes []Node) []NodeIndex

	// AddEdges resolves each edge's Source/Target keys are assumed already
	// NodeIndex (callers resolve keys via Index beforehand); entries whose
	// endpoints no longer exist are rejected. Returns one EdgeIndex per
	// input entry, or -1 for a rejected entry (shape-preserving).
	AddEdges(edges []Edge) []int64

	// RemoveNodes marks the named nodes (and their incident edges) dead.
	// Indices are recycled only after Fence is called, so no in-flight
	// GPU read observes a reused slot mid-tick.
	RemoveNodes(keys []NodeKey)

	// RemoveEdges marks the given edges dead and marks the CSR dirty.
	RemoveEdges(indices []EdgeIndex)

	// Fence recycles everything marked dead since the last Fence. Call
	// once per tick boundary, after the GPU command buffer for the
	// current tick has been submitted.
	Fence()

	// Index resolves a NodeKey to its current NodeIndex, or ok=false if
	// absent or removed.
	Index(key NodeKey) (NodeIndex, bool)

	// Alive reports whether idx still refers to a live node.
	Alive(idx NodeIndex) bool

	NodeCount() int
	EdgeCount() int
	Node(idx NodeIndex) Node
	Edge(idx EdgeIndex) Edge

	// SetNodePositions/Colors/Sizes bulk-replace the named field for every
	// node slot in index order, dead slots not yet removed by a Fence
	// included. Rejects with ErrShapeMismatch if len(arr) differs from that
	// slot count.
	SetNodePositions(xs, ys []float32) error
	SetNodeColors(colors [][4]uint8) error
	SetNodeSizes(radii []float32) error

	SetEdgeWidths(widths []float32) error
	SetEdgeColors(colors [][4]uint8) error
	SetEdgeCurvatures(curvatures []float32) error

	// EnsureCSR rebuilds the CSR projection if dirty and returns it.
	EnsureCSR() CSR

	// NodeDataBytes/EdgeDataBytes produce the GPU-ready byte payload for
	// the simulation's dense tables, in index order (dead slots included
	// as zeroed/pinned entries so indices stay dense until a Fence).
	NodeDataBytes() []byte
	EdgeDataBytes() []byte
}

var _ Store = &store{}

// New creates an empty Store.
func New() Store {
	return &store{
		keyToIx:  make(map[NodeKey]NodeIndex),
		incident: make(map[NodeIndex][]EdgeIndex),
	}
}

func nextPowerOfTwo(n uint32) uint32 {
	if n <= CapacityFloor {
		return CapacityFloor
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}

func (s *store) Load(nodes []Node, edges []Edge) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = nil
	s.dead = nil
	s.gen = nil
	s.keyToIx = make(map[NodeKey]NodeIndex)
	s.freeN = nil
	s.pendingFreeN = nil
	s.edges = nil
	s.edgeDead = nil
	s.edgeAlive = 0
	s.freeE = nil
	s.pendingFreeE = nil
	s.incident = make(map[NodeIndex][]EdgeIndex)

	droppedNodes := 0
	for _, n := range nodes {
		if _, exists := s.keyToIx[n.Key]; exists {
			droppedNodes++
			continue
		}
		idx := NodeIndex(len(s.nodes))
		s.nodes = append(s.nodes, n)
		s.dead = append(s.dead, false)
		s.gen = append(s.gen, 0)
		s.keyToIx[n.Key] = idx
	}

	droppedEdges := 0
	for _, e := range edges {
		if !s.nodeLiveLocked(e.Source) || !s.nodeLiveLocked(e.Target) {
			droppedEdges++
			continue
		}
		eix := EdgeIndex(len(s.edges))
		s.edges = append(s.edges, e)
		s.edgeDead = append(s.edgeDead, false)
		s.edgeAlive++
		s.incident[e.Source] = append(s.incident[e.Source], eix)
		s.incident[e.Target] = append(s.incident[e.Target], eix)
	}

	s.nodeCapacity = nextPowerOfTwo(uint32(len(s.nodes)))
	s.edgeCapacity = nextPowerOfTwo(uint32(len(s.edges)))
	s.csrDirty = true
	return droppedNodes, droppedEdges
}

func (s *store) nodeLiveLocked(idx NodeIndex) bool {
	return int(idx) < len(s.nodes) && !s.dead[idx]
}

func (s *store) AddNodes(nodes []Node) []NodeIndex {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]NodeIndex, len(nodes))
	for i, n := range nodes {
		var idx NodeIndex
		if len(s.freeN) > 0 {
			idx = s.freeN[len(s.freeN)-1]
			s.freeN = s.freeN[:len(s.freeN)-1]
			s.nodes[idx] = n
			s.dead[idx] = false
		} else {
			idx = NodeIndex(len(s.nodes))
			s.nodes = append(s.nodes, n)
			s.dead = append(s.dead, false)
			s.gen = append(s.gen, 0)
		}
		s.keyToIx[n.Key] = idx
		result[i] = idx
	}
	if n := nextPowerOfTwo(uint32(len(s.nodes))); n > s.nodeCapacity {
		s.nodeCapacity = n
	}
	return result
}

func (s *store) AddEdges(edges []Edge) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]int64, len(edges))
	for i, e := range edges {
		if !s.nodeLiveLocked(e.Source) || !s.nodeLiveLocked(e.Target) {
			result[i] = -1
			continue
		}
		var eix EdgeIndex
		if len(s.freeE) > 0 {
			eix = s.freeE[len(s.freeE)-1]
			s.freeE = s.freeE[:len(s.freeE)-1]
			s.edges[eix] = e
			s.edgeDead[eix] = false
		} else {
			eix = EdgeIndex(len(s.edges))
			s.edges = append(s.edges, e)
			s.edgeDead = append(s.edgeDead, false)
		}
		s.edgeAlive++
		s.incident[e.Source] = append(s.incident[e.Source], eix)
		s.incident[e.Target] = append(s.incident[e.Target], eix)
		result[i] = int64(eix)
	}
	if n := nextPowerOfTwo(uint32(len(s.edges))); n > s.edgeCapacity {
		s.edgeCapacity = n
	}
	s.csrDirty = true
	return result
}

func (s *store) RemoveNodes(keys []NodeKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		idx, ok := s.keyToIx[k]
		if !ok || s.dead[idx] {
			continue
		}
		for _, eix := range s.incident[idx] {
			s.removeEdgeLocked(eix)
		}
		delete(s.incident, idx)
		s.dead[idx] = true
		delete(s.keyToIx, k)
		s.pendingFreeN = append(s.pendingFreeN, idx)
	}
	s.csrDirty = true
}

func (s *store) removeEdgeLocked(eix EdgeIndex) {
	if s.edgeDead[eix] {
		return
	}
	s.edgeDead[eix] = true
	s.edgeAlive--
	s.pendingFreeE = append(s.pendingFreeE, eix)
}

func (s *store) RemoveEdges(indices []EdgeIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, eix := range indices {
		if int(eix) >= len(s.edges) {
			continue
		}
		s.removeEdgeLocked(eix)
	}
	s.csrDirty = true
}

func (s *store) Fence() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idx := range s.pendingFreeN {
		s.gen[idx]++
		s.freeN = append(s.freeN, idx)
	}
	s.pendingFreeN = nil
	for _, eix := range s.pendingFreeE {
		s.freeE = append(s.freeE, eix)
	}
	s.pendingFreeE = nil
}

func (s *store) Index(key NodeKey) (NodeIndex, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.keyToIx[key]
	return idx, ok
}

func (s *store) Alive(idx NodeIndex) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodeLiveLocked(idx)
}

func (s *store) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keyToIx)
}

func (s *store) EdgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edgeAlive
}

func (s *store) Node(idx NodeIndex) Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes[idx]
}

func (s *store) Edge(idx EdgeIndex) Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edges[idx]
}

func (s *store) SetNodePositions(xs, ys []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(xs) != len(s.nodes) || len(ys) != len(s.nodes) {
		return fmt.Errorf("graphstore: setNodePositions length %d/%d != node table %d: %w", len(xs), len(ys), len(s.nodes), herr.ErrShapeMismatch)
	}
	for i := range s.nodes {
		s.nodes[i].X, s.nodes[i].Y = xs[i], ys[i]
	}
	return nil
}

func (s *store) SetNodeColors(colors [][4]uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(colors) != len(s.nodes) {
		return fmt.Errorf("graphstore: setNodeColors length %d != node table %d: %w", len(colors), len(s.nodes), herr.ErrShapeMismatch)
	}
	for i, c := range colors {
		s.nodes[i].R, s.nodes[i].G, s.nodes[i].B, s.nodes[i].A = c[0], c[1], c[2], c[3]
	}
	return nil
}

func (s *store) SetNodeSizes(radii []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(radii) != len(s.nodes) {
		return fmt.Errorf("graphstore: setNodeSizes length %d != node table %d: %w", len(radii), len(s.nodes), herr.ErrShapeMismatch)
	}
	for i, r := range radii {
		s.nodes[i].Radius = r
	}
	return nil
}

func (s *store) SetEdgeWidths(widths []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(widths) != len(s.edges) {
		return fmt.Errorf("graphstore: setEdgeWidths length %d != edge table %d: %w", len(widths), len(s.edges), herr.ErrShapeMismatch)
	}
	for i, w := range widths {
		s.edges[i].Width = w
	}
	return nil
}

func (s *store) SetEdgeColors(colors [][4]uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(colors) != len(s.edges) {
		return fmt.Errorf("graphstore: setEdgeColors length %d != edge table %d: %w", len(colors), len(s.edges), herr.ErrShapeMismatch)
	}
	for i, c := range colors {
		s.edges[i].R, s.edges[i].G, s.edges[i].B, s.edges[i].A = c[0], c[1], c[2], c[3]
	}
	return nil
}

func (s *store) SetEdgeCurvatures(curvatures []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(curvatures) != len(s.edges) {
		return fmt.Errorf("graphstore: setEdgeCurvatures length %d != edge table %d: %w", len(curvatures), len(s.edges), herr.ErrShapeMismatch)
	}
	for i, c := range curvatures {
		s.edges[i].Curvature = c
	}
	return nil
}

func (s *store) EnsureCSR() CSR {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.csrDirty {
		s.csr = buildCSR(s.nodes, s.edges, s.edgeDead)
		s.csrDirty = false
	}
	return s.csr
}

func (s *store) NodeDataBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NodeData, len(s.nodes))
	for i, n := range s.nodes {
		if s.dead[i] {
			out[i] = NodeData{Pinned: 1}
			continue
		}
		pinned := uint32(0)
		if n.Pinned {
			pinned = 1
		}
		out[i] = NodeData{
			PositionX: n.X, PositionY: n.Y,
			VelocityX: n.VX, VelocityY: n.VY,
			Mass:   n.Radius,
			Pinned: pinned,
			PinX:   n.PinX, PinY: n.PinY,
		}
	}
	return common.SliceToBytes(out)
}

func (s *store) EdgeDataBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EdgeData, len(s.edges))
	for i, e := range s.edges {
		if s.edgeDead[i] {
			continue
		}
		weight := e.Width
		if weight == 0 {
			weight = 1
		}
		out[i] = EdgeData{Source: uint32(e.Source), Target: uint32(e.Target), Weight: weight}
	}
	return common.SliceToBytes(out)
}
