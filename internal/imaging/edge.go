package imaging

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SobelMagnitude computes the L1 Sobel gradient magnitude of a region.
//
// The returned slice has Size*Size entries in the same row-major layout as
// region.Pix. Each interior cell holds |Gx| + |Gy| for the standard 3x3 Sobel
// kernels:
//
//	Gx: -1 0 1    Gy: -1 -2 -1
//	    -2 0 2         0  0  0
//	    -1 0 1         1  2  1
//
// The one-pixel border is left at zero; no replicated-edge padding is used
// so a crop boundary never reads as an edge.
func SobelMagnitude(region *GrayRegion) []float64 {
	size := region.Size
	mag := make([]float64, size*size)
	if size < 3 {
		return mag
	}

	px := func(x, y int) float64 { return float64(region.Pix[y*size+x]) }

	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			gx := -px(x-1, y-1) + px(x+1, y-1) -
				2*px(x-1, y) + 2*px(x+1, y) -
				px(x-1, y+1) + px(x+1, y+1)
			gy := -px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1) +
				px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)
			mag[y*size+x] = math.Abs(gx) + math.Abs(gy)
		}
	}
	return mag
}

// Percentile returns the empirical p-quantile (0 <= p <= 1) of values: the
// smallest sample v such that at least a fraction p of the samples are <= v.
//
// values is not modified. An empty slice yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
