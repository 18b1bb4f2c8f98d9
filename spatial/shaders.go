package spatial

// mortonSource computes a Z-order key per node against the index's
// current world bounds, paired with the node's own index as the sort
// value so sortkernel can bring spatial siblings contiguous.
const mortonSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:include sort_keys
//@hg:group 0 1 storage_read_write keys array<sort_keys>

struct Bounds {
	minX: f32,
	minY: f32,
	maxX: f32,
	maxY: f32,
}
//@hg:group 0 2 storage_uniform bounds Bounds

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	let n = nodes[i];
	let qx = quantise(n.position.x, bounds.minX, bounds.maxX);
	let qy = quantise(n.position.y, bounds.minY, bounds.maxY);
	keys[i].key = spread(qx) | (spread(qy) << 1u);
	keys[i].value = i;
}

fn quantise(v: f32, lo: f32, hi: f32) -> u32 {
	if (hi <= lo) {
		return 0u;
	}
	var t = (v - lo) / (hi - lo);
	t = clamp(t, 0.0, 1.0);
	return u32(t * 65535.0);
}

fn spread(v: u32) -> u32 {
	var x = v & 0x0000ffffu;
	x = (x | (x << 8u)) & 0x00FF00FFu;
	x = (x | (x << 4u)) & 0x0F0F0F0Fu;
	x = (x | (x << 2u)) & 0x33333333u;
	x = (x | (x << 1u)) & 0x55555555u;
	return x;
}
`

// buildLeavesSource allocates one leaf QuadNode per sorted body.
const buildLeavesSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:include sort_keys
//@hg:group 0 1 storage_read sortedKeys array<sort_keys>
//@hg:include quad_node
//@hg:group 0 2 storage_read_write leaves array<quad_node>

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	let bodyIndex = sortedKeys[i].value;
	let n = nodes[bodyIndex];
	leaves[i].centerOfMass = n.position;
	leaves[i].totalMass = n.mass;
	leaves[i].halfExtent = 0.0;
	leaves[i].childBase = 0u;
	leaves[i].bodyIndex = bodyIndex;
	leaves[i].bodyCount = 1u;
}
`

// propagateSource is dispatched once per reduction layer (caller tracks
// layer count from leaf count down to 1, quartering per dispatch): each
// thread folds up to four children from the prior layer into one parent
// node, accumulating mass and center of mass and doubling halfExtent.
const propagateSource = `
//@hg:include quad_node
//@hg:group 0 0 storage_read children array<quad_node>
//@hg:group 0 1 storage_read_write parents array<quad_node>

struct LayerUniforms {
	childCount: u32,
	_pad0: u32,
	_pad1: u32,
	_pad2: u32,
}
//@hg:group 0 2 storage_uniform layer LayerUniforms

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	let base = i * 4u;
	var comX = 0.0;
	var comY = 0.0;
	var mass = 0.0;
	var count = 0u;
	for (var c = 0u; c < 4u; c = c + 1u) {
		let idx = base + c;
		if (idx >= layer.childCount) {
			continue;
		}
		let child = children[idx];
		comX = comX + child.centerOfMass.x * child.totalMass;
		comY = comY + child.centerOfMass.y * child.totalMass;
		mass = mass + child.totalMass;
		count = count + child.bodyCount;
	}
	if (mass > 0.0) {
		comX = comX / mass;
		comY = comY / mass;
	}
	parents[i].centerOfMass = vec2<f32>(comX, comY);
	parents[i].totalMass = mass;
	parents[i].childBase = base;
	parents[i].bodyIndex = 0u;
	parents[i].bodyCount = count;
}
`

// traverseSource is the Barnes-Hut repulsion pass: one thread per node,
// stack-based descent from the quadtree root, accepting a subtree as a
// single body whenever size/distance < theta.
const traverseSource = `
//@hg:include node_data
//@hg:group 0 0 storage_read nodes array<node_data>
//@hg:include quad_node
//@hg:group 0 1 storage_read tree array<quad_node>
//@hg:include force_config
//@hg:group 0 2 storage_uniform config force_config
//@hg:group 0 3 storage_read_write forces array<atomic<i32>>

const MAX_STACK: u32 = 64u;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	let me = nodes[i];

	var stack: array<u32, MAX_STACK>;
	var sp = 0u;
	stack[0] = 0u; // root index
	sp = 1u;

	var fx = 0.0;
	var fy = 0.0;

	loop {
		if (sp == 0u) {
			break;
		}
		sp = sp - 1u;
		let nodeIdx = stack[sp];
		let cell = tree[nodeIdx];
		if (cell.totalMass <= 0.0) {
			continue;
		}
		let dx = cell.centerOfMass.x - me.position.x;
		let dy = cell.centerOfMass.y - me.position.y;
		let distSq = dx * dx + dy * dy + 0.0001;
		let dist = sqrt(distSq);

		let accept = cell.bodyCount == 1u || (cell.halfExtent / dist) < config.theta;
		if (accept) {
			if (!(cell.bodyCount == 1u && cell.bodyIndex == i)) {
				let f = config.repulsionStrength * cell.totalMass / distSq;
				fx = fx - f * dx / dist;
				fy = fy - f * dy / dist;
			}
		} else if (sp + 4u <= MAX_STACK) {
			for (var c = 0u; c < 4u; c = c + 1u) {
				stack[sp] = cell.childBase + c;
				sp = sp + 1u;
			}
		}
	}

	atomicAdd(&forces[i * 2u], i32(fx * config.fixedPointScale));
	atomicAdd(&forces[i * 2u + 1u], i32(fy * config.fixedPointScale));
}
`
