package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// ErrRegionOutOfBounds is returned when a requested region does not fit
// entirely inside the decoded image.
var ErrRegionOutOfBounds = errors.New("region outside image bounds")

// GrayRegion is a square crop of single-channel intensities (0-255).
//
// Pix is row-major with Size*Size entries; Pix[y*Size+x] is the pixel at
// (X+x, Y+y) in image coordinates.
type GrayRegion struct {
	// X, Y is the top-left corner of the region in image pixels.
	X int
	Y int

	// Size is the side length of the square region in pixels.
	Size int

	Pix []uint8
}

// At returns the intensity at region-local coordinates.
func (r *GrayRegion) At(x, y int) uint8 {
	return r.Pix[y*r.Size+x]
}

// GrayRegion extracts a size×size grayscale region whose top-left corner is
// (x, y) in image pixels.
func (b *Blueprint) GrayRegion(x, y, size int) (*GrayRegion, error) {
	return ExtractGrayRegion(b.img, x, y, size)
}

// ExtractGrayRegion crops a square region out of img and converts it to
// grayscale.
//
// Coordinates are relative to img.Bounds().Min. The region must lie entirely
// inside the image; partial crops are rejected with ErrRegionOutOfBounds
// rather than padded.
func ExtractGrayRegion(img image.Image, x, y, size int) (*GrayRegion, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid region size %d", size)
	}

	bounds := img.Bounds()
	rect := image.Rect(x, y, x+size, y+size).Add(bounds.Min)
	if !rect.In(bounds) {
		return nil, fmt.Errorf("%w: region (%d,%d)-(%d,%d), image %dx%d",
			ErrRegionOutOfBounds, x, y, x+size, y+size, bounds.Dx(), bounds.Dy())
	}

	cropped := imaging.Crop(img, rect)
	gray := effect.Grayscale(cropped)

	pix := make([]uint8, size*size)
	gb := gray.Bounds()
	for row := 0; row < size; row++ {
		start := gray.PixOffset(gb.Min.X, gb.Min.Y+row)
		copy(pix[row*size:(row+1)*size], gray.Pix[start:start+size])
	}

	return &GrayRegion{X: x, Y: y, Size: size, Pix: pix}, nil
}
