package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayBox is a rectangle to draw on an overlay, in image pixels.
type OverlayBox struct {
	X1, Y1, X2, Y2 int

	// Label is drawn above the top-left corner. Empty labels are skipped.
	Label string

	// Color is a "#RRGGBB" hex string. Invalid or empty values fall back to
	// the overlay's default color.
	Color string
}

// OverlayResult contains the annotated image encoded as base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	BoxCount    int    `json:"box_count"`
}

var defaultOverlayColor = colorful.Color{R: 1, G: 0, B: 0}

// Overlay draws outlined, labeled boxes on a copy of img.
//
// Boxes are clipped to the image. Each outline is two pixels thick so it
// stays visible on dense line drawings.
func Overlay(img image.Image, boxes []OverlayBox) (*OverlayResult, error) {
	canvas := imaging.Clone(img)
	bounds := canvas.Bounds()

	for _, b := range boxes {
		c := defaultOverlayColor
		if parsed, err := colorful.Hex(b.Color); err == nil {
			c = parsed
		}
		stroke := toRGBA(c, 255)

		r := image.Rect(b.X1, b.Y1, b.X2, b.Y2).Intersect(bounds)
		if r.Empty() {
			continue
		}
		drawOutline(canvas, r, stroke, 2)

		if b.Label != "" {
			drawLabel(canvas, r.Min.X, r.Min.Y-2, b.Label, stroke)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode overlay image: %w", err)
	}

	return &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		BoxCount:    len(boxes),
	}, nil
}

// PaletteColor returns a well separated "#RRGGBB" color for index i out of n,
// spacing hues evenly around the HCL wheel.
func PaletteColor(i, n int) string {
	if n <= 0 {
		n = 1
	}
	hue := 360 * float64(i%n) / float64(n)
	return colorful.Hcl(hue, 0.7, 0.55).Clamped().Hex()
}

func toRGBA(c colorful.Color, alpha uint8) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}
}

func drawOutline(dst *image.NRGBA, r image.Rectangle, c color.Color, thickness int) {
	src := image.NewUniform(c)
	for t := 0; t < thickness; t++ {
		inner := r.Inset(t)
		if inner.Empty() {
			return
		}
		draw.Draw(dst, image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, inner.Min.Y+1), src, image.Point{}, draw.Src)
		draw.Draw(dst, image.Rect(inner.Min.X, inner.Max.Y-1, inner.Max.X, inner.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(dst, image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+1, inner.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(dst, image.Rect(inner.Max.X-1, inner.Min.Y, inner.Max.X, inner.Max.Y), src, image.Point{}, draw.Src)
	}
}

// drawLabel writes text with its baseline at (x, y) on a dark backing strip.
// Labels that would leave the top of the image are moved inside the box.
func drawLabel(dst *image.NRGBA, x, y int, text string, fg color.Color) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	if y-ascent < dst.Bounds().Min.Y {
		y += ascent + 4
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x+1, y),
	}
	width := d.MeasureString(text).Ceil()

	bg := image.Rect(x, y-ascent-1, x+width+2, y+descent).Intersect(dst.Bounds())
	draw.Draw(dst, bg, image.NewUniform(color.RGBA{0, 0, 0, 180}), image.Point{}, draw.Over)
	d.DrawString(text)
}
