// Package imaging provides the pixel-level operations behind symbol refinement.
//
// This package decodes blueprint images, caches them by path, extracts square
// grayscale regions, computes Sobel gradient fields and percentiles over them,
// and renders annotated overlays. All operations work on standard Go
// image.Image values and use a coordinate system where (0,0) is the top-left
// corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. A decoded Blueprint is never mutated,
// so any number of goroutines may extract regions from it at once; each
// extraction allocates its own buffer.
//
// # Grayscale Conversion
//
// Regions are converted with bild's luminance weights (0.3R + 0.6G + 0.1B).
// Blueprint line work is effectively black on white, so the exact weights do
// not move edge positions.
//
// # Error Handling
//
// Functions return errors for:
//   - Empty or undecodable image data
//   - Regions that do not fit entirely inside the image (ErrRegionOutOfBounds)
//   - File I/O errors during loading
//   - Encoding errors during overlay output
package imaging
