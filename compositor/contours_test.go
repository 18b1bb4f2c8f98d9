package compositor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestExtractContoursEmptyGridYieldsNoSegments(t *testing.T) {
	grid := make([]float32, 4*4)
	segments := ExtractContours(grid, 4, 4, 0.5)
	require.Empty(t, segments)
}

func TestExtractContoursSinglePeakYieldsClosedLoop(t *testing.T) {
	width, height := 6, 6
	grid := make([]float32, width*height)
	cx, cy := 2.5, 2.5
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			dist := dx*dx + dy*dy
			grid[y*width+x] = float32(1.0 / (1.0 + dist))
		}
	}
	segments := ExtractContours(grid, width, height, 0.3)
	require.NotEmpty(t, segments)
}

func TestExtractContoursTooSmallGridReturnsNil(t *testing.T) {
	require.Nil(t, ExtractContours([]float32{1}, 1, 1, 0.5))
}

func TestSplatGridAccumulatesNearSource(t *testing.T) {
	grid := SplatGrid([]float32{0}, []float32{0}, 10, 10, -5, -5, 1.0, 1.0)
	require.Greater(t, grid[5*10+5], float32(0))
}

func TestSplatGridIgnoresOutOfBoundsCells(t *testing.T) {
	grid := SplatGrid([]float32{1000}, []float32{1000}, 4, 4, 0, 0, 1.0, 1.0)
	for _, v := range grid {
		require.Equal(t, float32(0), v)
	}
}

func TestLerpXInterpolatesBetweenSamples(t *testing.T) {
	got := lerpX(0, 10, 0, 1, 0.5)
	require.InDelta(t, 5.0, got, 0.001)
}

func TestLerpXHandlesFlatSamples(t *testing.T) {
	got := lerpX(0, 10, 1, 1, 0.5)
	require.Equal(t, float32(0), got)
}

// SplatGrid's Gaussian kernel is a sum of non-negative terms, so no
// single source, at any in-bounds position with any positive radius and
// intensity, should ever produce a negative cell across the grid.
func TestSplatGridNeverProducesNegativeDensity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(2, 16).Draw(t, "width")
		height := rapid.IntRange(2, 16).Draw(t, "height")
		sx := float32(rapid.Float64Range(0, float64(width)).Draw(t, "sx"))
		sy := float32(rapid.Float64Range(0, float64(height)).Draw(t, "sy"))
		radius := float32(rapid.Float64Range(0.1, 8).Draw(t, "radius"))
		intensity := float32(rapid.Float64Range(0.1, 8).Draw(t, "intensity"))

		grid := SplatGrid([]float32{sx}, []float32{sy}, width, height, 0, 0, radius, intensity)
		require.Len(t, grid, width*height)
		for _, v := range grid {
			require.GreaterOrEqual(t, v, float32(0))
		}
	})
}
