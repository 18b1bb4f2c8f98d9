package compositor

// Segment is one line segment of an extracted contour, in the same
// coordinate space as the density grid passed to ExtractContours (grid
// cell units, not screen or graph space; callers transform as needed).
type Segment struct {
	X0, Y0, X1, Y1 float32
}

// marchingSquaresEdgeTable maps each of the 16 marching-squares corner
// configurations to up to two segments, expressed as pairs of edge
// indices (0=top, 1=right, 2=bottom, 3=left) to interpolate between.
// Configurations 5 and 10 are ambiguous saddle cases; both are resolved
// by picking the pair that keeps the contour's two strands separate
// (the conventional "do not connect diagonal opposite corners" choice).
var marchingSquaresEdgeTable = map[int][][2]int{
	0:  {},
	1:  {{3, 2}},
	2:  {{2, 1}},
	3:  {{3, 1}},
	4:  {{0, 1}},
	5:  {{3, 0}, {2, 1}},
	6:  {{0, 2}},
	7:  {{3, 0}},
	8:  {{0, 3}},
	9:  {{0, 2}},
	10: {{0, 1}, {3, 2}},
	11: {{0, 1}},
	12: {{3, 1}},
	13: {{2, 1}},
	14: {{3, 2}},
	15: {},
}

// ExtractContours walks a width x height density grid (as produced by
// SplatGrid or read back from DensityPass.Grid) and extracts line
// segments at the given threshold using the classic marching-squares
// algorithm. Done on the CPU rather than on the GPU: contour topology
// (how many disjoint loops exist) isn't known ahead of a pass and is
// awkward to express as a fixed-output compute kernel, whereas a CPU
// walk naturally produces a variable-length segment list per threshold.
func ExtractContours(grid []float32, width, height int, threshold float32) []Segment {
	if width < 2 || height < 2 || len(grid) < width*height {
		return nil
	}
	var segments []Segment
	at := func(x, y int) float32 { return grid[y*width+x] }

	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			tl := at(x, y)
			tr := at(x+1, y)
			br := at(x+1, y+1)
			bl := at(x, y+1)

			config := 0
			if bl >= threshold {
				config |= 1
			}
			if br >= threshold {
				config |= 2
			}
			if tr >= threshold {
				config |= 4
			}
			if tl >= threshold {
				config |= 8
			}

			pairs := marchingSquaresEdgeTable[config]
			if len(pairs) == 0 {
				continue
			}

			edgePoint := func(edge int) (float32, float32) {
				switch edge {
				case 0:
					return lerpX(float32(x), float32(x+1), tl, tr, threshold), float32(y)
				case 1:
					return float32(x + 1), lerpX(float32(y), float32(y+1), tr, br, threshold)
				case 2:
					return lerpX(float32(x), float32(x+1), bl, br, threshold), float32(y + 1)
				default:
					return float32(x), lerpX(float32(y), float32(y+1), tl, bl, threshold)
				}
			}

			for _, pair := range pairs {
				x0, y0 := edgePoint(pair[0])
				x1, y1 := edgePoint(pair[1])
				segments = append(segments, Segment{X0: x0, Y0: y0, X1: x1, Y1: y1})
			}
		}
	}
	return segments
}

// lerpX finds where value crosses threshold between two grid samples a
// and b, returning the interpolated coordinate between posA and posB.
func lerpX(posA, posB, a, b, threshold float32) float32 {
	if b == a {
		return posA
	}
	t := (threshold - a) / (b - a)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return posA + (posB-posA)*t
}
