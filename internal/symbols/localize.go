package symbols

import (
	"math"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/imaging"
)

const (
	minCropSize = 64
	maxCropSize = 256

	// edgePercentile selects the strong-edge cells that pull the centroid.
	edgePercentile = 0.82

	// labelBandFraction is the share of crop rows, counted from the top,
	// that is ignored. Tag text on MEP drawings sits above the symbol.
	labelBandFraction = 0.25
)

// cropWindow returns the top-left corner and side of the square crop
// centered on box at the given scale. The corner is pulled inward so the
// crop stays inside the image whenever the image is at least size pixels
// on each side.
func cropWindow(box Box, meta ImageMetadata, scale float64) (x0, y0, size int) {
	cx := box.X / 100 * float64(meta.Width)
	cy := box.Y / 100 * float64(meta.Height)

	longest := max(meta.Width, meta.Height)
	size = clampInt(int(math.Round(float64(longest)*scale)), minCropSize, maxCropSize)

	half := float64(size) / 2
	x0 = clampInt(int(math.Round(cx-half)), 0, meta.Width-size)
	y0 = clampInt(int(math.Round(cy-half)), 0, meta.Height-size)
	return x0, y0, size
}

// labelBandRows is the number of leading crop rows excluded from analysis.
func labelBandRows(size int) int {
	return int(float64(size) * labelBandFraction)
}

// LocateByEdges recenters box on the magnitude-weighted centroid of the
// strongest Sobel edges in region.
//
// Cells in the top label band are zeroed, the 82nd percentile of the field
// becomes the cutoff, and every cell at or above it contributes its
// magnitude as weight. Width and height are preserved. ok is false when the
// total weight is zero, i.e. the crop carries no edge signal.
func LocateByEdges(box Box, region *imaging.GrayRegion, meta ImageMetadata) (out Box, ok bool) {
	size := region.Size
	mag := imaging.SobelMagnitude(region)

	band := labelBandRows(size)
	for i := 0; i < band*size && i < len(mag); i++ {
		mag[i] = 0
	}

	cutoff := imaging.Percentile(mag, edgePercentile)

	var sum, sx, sy float64
	for i, m := range mag {
		if m < cutoff {
			continue
		}
		sum += m
		sx += m * float64(i%size)
		sy += m * float64(i/size)
	}
	if sum == 0 {
		return Box{}, false
	}
	return recenter(box, region, sx/sum, sy/sum, meta), true
}

// LocateByDarkness recenters box on the centroid of the darkest pixels in
// region, ignoring the top label band. ok is false when the band covers the
// whole crop.
func LocateByDarkness(box Box, region *imaging.GrayRegion, meta ImageMetadata) (out Box, ok bool) {
	size := region.Size
	start := labelBandRows(size)
	if start >= size {
		return Box{}, false
	}

	darkest := uint8(math.MaxUint8)
	for y := start; y < size; y++ {
		for x := 0; x < size; x++ {
			if v := region.At(x, y); v < darkest {
				darkest = v
			}
		}
	}

	var n, sx, sy float64
	for y := start; y < size; y++ {
		for x := 0; x < size; x++ {
			if region.At(x, y) == darkest {
				n++
				sx += float64(x)
				sy += float64(y)
			}
		}
	}
	return recenter(box, region, sx/n, sy/n, meta), true
}

// recenter moves box to a region-local pixel position, expressed back in
// image percentages.
func recenter(box Box, region *imaging.GrayRegion, lx, ly float64, meta ImageMetadata) Box {
	px := float64(region.X) + lx
	py := float64(region.Y) + ly
	return Box{
		X:      px / float64(meta.Width) * 100,
		Y:      py / float64(meta.Height) * 100,
		Width:  box.Width,
		Height: box.Height,
	}
}
