package sortkernel

// These WGSL sources are loaded via shader.NewShaderFromSource rather than
// from files: the histogram/scatter shaders are structurally identical
// across the 8 LSD passes (only the digit-shift constant changes, baked
// in as a uniform) so one pipeline per phase is registered once and
// re-dispatched per pass rather than generating 8 shader variants.

const histogramSource = `
//@hg:include sort_keys
//@hg:group 0 0 storage_read sortKeys array<sort_keys>
//@hg:group 0 1 storage_read_write histogram array<u32>
//@hg:include scan_uniforms
//@hg:group 0 2 storage_uniform uniforms scan_uniforms

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= uniforms.elementCount) {
		return;
	}
	let shift = uniforms.passIndex * 4u;
	let digit = (sortKeys[i].key >> shift) & 0xFu;
	atomicAdd(&histogramAtomic[digit], 1u);
}
`

const scanSource = `
//@hg:include scan_uniforms
//@hg:group 0 0 storage_read_write histogram array<u32>
//@hg:group 0 1 storage_uniform uniforms scan_uniforms

var<workgroup> scratch: array<u32, 16>;

// Single-workgroup exclusive Blelloch scan over the 16 digit buckets of
// the one shared histogram. There is no multi-workgroup scan variant.
@compute @workgroup_size(16)
fn main(@builtin(local_invocation_id) lid: vec3<u32>) {
	let i = lid.x;
	scratch[i] = histogram[i];
	workgroupBarrier();

	var offset = 1u;
	for (var d = 8u; d > 0u; d = d >> 1u) {
		workgroupBarrier();
		if (i < d) {
			let ai = offset * (2u * i + 1u) - 1u;
			let bi = offset * (2u * i + 2u) - 1u;
			scratch[bi] = scratch[bi] + scratch[ai];
		}
		offset = offset * 2u;
	}
	if (i == 0u) {
		scratch[15] = 0u;
	}
	for (var d = 1u; d < 16u; d = d * 2u) {
		offset = offset >> 1u;
		workgroupBarrier();
		if (i < d) {
			let ai = offset * (2u * i + 1u) - 1u;
			let bi = offset * (2u * i + 2u) - 1u;
			let t = scratch[ai];
			scratch[ai] = scratch[bi];
			scratch[bi] = scratch[bi] + t;
		}
	}
	workgroupBarrier();
	histogram[i] = scratch[i];
}
`

const scatterSource = `
//@hg:include sort_keys
//@hg:group 0 0 storage_read sortKeysIn array<sort_keys>
//@hg:group 0 1 storage_read_write sortKeysOut array<sort_keys>
//@hg:group 0 2 storage_read_write offsets array<u32>
//@hg:include scan_uniforms
//@hg:group 0 3 storage_uniform uniforms scan_uniforms

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= uniforms.elementCount) {
		return;
	}
	let shift = uniforms.passIndex * 4u;
	let digit = (sortKeysIn[i].key >> shift) & 0xFu;
	let dest = atomicAdd(&offsetsAtomic[digit], 1u);
	sortKeysOut[dest] = sortKeysIn[i];
}
`

// countingSortSource is the O(n^2) fallback for arrays under
// CountingSortThreshold: one thread per element counts how many other
// elements sort strictly before it (by key, tie-broken by original
// index for stability) and scatters directly to that rank.
const countingSortSource = `
//@hg:include sort_keys
//@hg:group 0 0 storage_read sortKeysIn array<sort_keys>
//@hg:group 0 1 storage_read_write sortKeysOut array<sort_keys>
//@hg:include scan_uniforms
//@hg:group 0 2 storage_uniform uniforms scan_uniforms

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let i = gid.x;
	if (i >= uniforms.elementCount) {
		return;
	}
	let mine = sortKeysIn[i];
	var rank = 0u;
	for (var j = 0u; j < uniforms.elementCount; j = j + 1u) {
		let other = sortKeysIn[j];
		if (other.key < mine.key || (other.key == mine.key && j < i)) {
			rank = rank + 1u;
		}
	}
	sortKeysOut[rank] = mine;
}
`
