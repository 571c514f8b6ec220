package symbols

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"testing"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/imaging"
)

// newDrawing returns a white RGBA canvas.
func newDrawing(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// fillRect paints [x1,x2)×[y1,y2) black.
func fillRect(img *image.RGBA, x1, y1, x2, y2 int) {
	draw.Draw(img, image.Rect(x1, y1, x2, y2), image.NewUniform(color.Black), image.Point{}, draw.Src)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func toRaster(t *testing.T, img image.Image) *imaging.Blueprint {
	t.Helper()
	bp, err := imaging.DecodeBlueprint(encodePNG(t, img))
	if err != nil {
		t.Fatalf("DecodeBlueprint failed: %v", err)
	}
	return bp
}

func assertNear(t *testing.T, what string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.4f, want %.4f (±%.4f)", what, got, want, tol)
	}
}

var meta1000 = ImageMetadata{Width: 1000, Height: 1000}
var centerBox = Box{X: 50, Y: 50, Width: 7, Height: 7}

func TestCropWindow(t *testing.T) {
	tests := []struct {
		name         string
		box          Box
		meta         ImageMetadata
		scale        float64
		wantX, wantY int
		wantSize     int
	}{
		{"centered", centerBox, meta1000, 0.08, 460, 460, 80},
		{"wider", centerBox, meta1000, 0.12, 440, 440, 120},
		{"pulled inside at corner", Box{X: 0, Y: 100, Width: 7, Height: 7}, meta1000, 0.08, 0, 920, 80},
		{"minimum size", centerBox, ImageMetadata{Width: 300, Height: 200}, 0.08, 118, 68, 64},
		{"maximum size", centerBox, ImageMetadata{Width: 5000, Height: 4000}, 0.12, 2372, 1872, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, size := cropWindow(tt.box, tt.meta, tt.scale)
			if x != tt.wantX || y != tt.wantY || size != tt.wantSize {
				t.Errorf("cropWindow = (%d,%d,%d), want (%d,%d,%d)", x, y, size, tt.wantX, tt.wantY, tt.wantSize)
			}
		})
	}
}

func TestLocateByEdges_RecentersOnSymbol(t *testing.T) {
	img := newDrawing(1000, 1000)
	fillRect(img, 495, 500, 525, 530)
	raster := toRaster(t, img)

	region, err := raster.GrayRegion(cropWindow(centerBox, meta1000, 0.08))
	if err != nil {
		t.Fatalf("GrayRegion failed: %v", err)
	}

	got, ok := LocateByEdges(centerBox, region, meta1000)
	if !ok {
		t.Fatal("expected edge signal")
	}
	assertNear(t, "x", got.X, 50.95, 0.05)
	assertNear(t, "y", got.Y, 51.45, 0.05)
	if got.Width != centerBox.Width || got.Height != centerBox.Height {
		t.Errorf("size changed: got %vx%v", got.Width, got.Height)
	}
}

func TestLocateByEdges_IgnoresLabelBand(t *testing.T) {
	img := newDrawing(1000, 1000)
	fillRect(img, 495, 500, 525, 530)
	// Tag text sitting in the top rows of the crop.
	fillRect(img, 470, 462, 530, 472)
	raster := toRaster(t, img)

	region, err := raster.GrayRegion(cropWindow(centerBox, meta1000, 0.08))
	if err != nil {
		t.Fatalf("GrayRegion failed: %v", err)
	}

	got, ok := LocateByEdges(centerBox, region, meta1000)
	if !ok {
		t.Fatal("expected edge signal")
	}
	assertNear(t, "x", got.X, 50.95, 0.05)
	assertNear(t, "y", got.Y, 51.45, 0.05)
}

func TestLocateByEdges_UniformRegion(t *testing.T) {
	region := &imaging.GrayRegion{X: 0, Y: 0, Size: 64, Pix: bytes.Repeat([]byte{128}, 64*64)}
	if _, ok := LocateByEdges(centerBox, region, meta1000); ok {
		t.Error("uniform region should have no edge signal")
	}
}

func TestLocateByEdges_Deterministic(t *testing.T) {
	img := newDrawing(800, 600)
	fillRect(img, 380, 300, 420, 320)
	fillRect(img, 395, 320, 405, 350)
	raster := toRaster(t, img)
	meta := ImageMetadata{Width: 800, Height: 600}
	box := Box{X: 48, Y: 52, Width: 6, Height: 6}

	region, err := raster.GrayRegion(cropWindow(box, meta, 0.08))
	if err != nil {
		t.Fatalf("GrayRegion failed: %v", err)
	}
	first, ok1 := LocateByEdges(box, region, meta)
	for i := 0; i < 5; i++ {
		again, ok2 := LocateByEdges(box, region, meta)
		if again != first || ok1 != ok2 {
			t.Fatalf("run %d: got %+v/%v, first %+v/%v", i, again, ok2, first, ok1)
		}
	}
}

func TestLocateByDarkness(t *testing.T) {
	size := 64
	pix := bytes.Repeat([]byte{200}, size*size)
	pix[3*size+30] = 0 // inside the label band, ignored
	pix[40*size+10] = 5
	region := &imaging.GrayRegion{X: 100, Y: 200, Size: size, Pix: pix}

	got, ok := LocateByDarkness(centerBox, region, meta1000)
	if !ok {
		t.Fatal("expected a dark pixel result")
	}
	assertNear(t, "x", got.X, 11, 1e-9)
	assertNear(t, "y", got.Y, 24, 1e-9)
}

func TestLocateByDarkness_CentroidOfTies(t *testing.T) {
	size := 64
	pix := bytes.Repeat([]byte{255}, size*size)
	pix[20*size+10] = 0
	pix[40*size+30] = 0
	region := &imaging.GrayRegion{X: 0, Y: 0, Size: size, Pix: pix}

	got, ok := LocateByDarkness(centerBox, region, ImageMetadata{Width: 100, Height: 100})
	if !ok {
		t.Fatal("expected a dark pixel result")
	}
	assertNear(t, "x", got.X, 20, 1e-9)
	assertNear(t, "y", got.Y, 30, 1e-9)
}

func TestLocalizer_PrefersWiderEdgesOverDarkness(t *testing.T) {
	img := newDrawing(1000, 1000)
	// Outside the 0.08 crop (460..539), inside the 0.12 crop (440..559).
	fillRect(img, 545, 530, 556, 551)
	raster := toRaster(t, img)

	l := &Localizer{}
	got, loc := l.Locate(raster, centerBox, meta1000)
	if loc.Outcome != RecenteredByEdges {
		t.Fatalf("outcome: got %v, want %v", loc.Outcome, RecenteredByEdges)
	}
	if loc.Scale != 0.12 {
		t.Errorf("scale: got %v, want 0.12", loc.Scale)
	}
	assertNear(t, "x", got.X, 55.0, 0.05)
	assertNear(t, "y", got.Y, 54.0, 0.05)
}

func TestLocalizer_TightScaleFirst(t *testing.T) {
	img := newDrawing(1000, 1000)
	fillRect(img, 495, 500, 525, 530)
	raster := toRaster(t, img)

	_, loc := (&Localizer{}).Locate(raster, centerBox, meta1000)
	if loc.Outcome != RecenteredByEdges || loc.Scale != 0.08 {
		t.Errorf("got %+v, want edges at 0.08", loc)
	}
}

func TestLocalizer_DarknessOnBlankCrop(t *testing.T) {
	raster := toRaster(t, newDrawing(1000, 1000))

	got, loc := (&Localizer{}).Locate(raster, centerBox, meta1000)
	if loc.Outcome != RecenteredByDarkness {
		t.Fatalf("outcome: got %v, want %v", loc.Outcome, RecenteredByDarkness)
	}
	if loc.Scale != 0.08 {
		t.Errorf("scale: got %v, want 0.08", loc.Scale)
	}
	// Centroid of the unmasked rows 20..79 of the 80px crop at (460,460).
	assertNear(t, "x", got.X, 49.95, 1e-9)
	assertNear(t, "y", got.Y, 50.95, 1e-9)
}

type failingRaster struct{ calls int }

func (f *failingRaster) Dimensions() (int, int) { return 1000, 1000 }
func (f *failingRaster) GrayRegion(x, y, size int) (*imaging.GrayRegion, error) {
	f.calls++
	return nil, imaging.ErrRegionOutOfBounds
}

type panickingRaster struct{}

func (panickingRaster) Dimensions() (int, int) { return 1000, 1000 }
func (panickingRaster) GrayRegion(x, y, size int) (*imaging.GrayRegion, error) {
	panic("decoder exploded")
}

type shortRaster struct{}

func (shortRaster) Dimensions() (int, int) { return 1000, 1000 }
func (shortRaster) GrayRegion(x, y, size int) (*imaging.GrayRegion, error) {
	return &imaging.GrayRegion{X: x, Y: y, Size: size, Pix: make([]uint8, 10)}, nil
}

func TestLocalizer_Fallbacks(t *testing.T) {
	box := Box{X: 30, Y: 70, Width: 5, Height: 9}

	t.Run("extraction errors at every scale", func(t *testing.T) {
		r := &failingRaster{}
		got, loc := (&Localizer{}).Locate(r, box, meta1000)
		if got != box || loc.Outcome != UnchangedFallback {
			t.Errorf("got %+v %+v, want unchanged", got, loc)
		}
		if r.calls != len(DefaultScales()) {
			t.Errorf("GrayRegion calls: got %d, want %d", r.calls, len(DefaultScales()))
		}
	})

	t.Run("panic", func(t *testing.T) {
		got, loc := (&Localizer{}).Locate(panickingRaster{}, box, meta1000)
		if got != box || loc.Outcome != UnchangedFallback {
			t.Errorf("got %+v %+v, want unchanged", got, loc)
		}
	})

	t.Run("short read", func(t *testing.T) {
		got, loc := (&Localizer{}).Locate(shortRaster{}, box, meta1000)
		if got != box || loc.Outcome != UnchangedFallback {
			t.Errorf("got %+v %+v, want unchanged", got, loc)
		}
	})

	t.Run("nil raster", func(t *testing.T) {
		got, loc := (&Localizer{}).Locate(nil, box, meta1000)
		if got != box || loc.Outcome != UnchangedFallback {
			t.Errorf("got %+v %+v, want unchanged", got, loc)
		}
	})

	t.Run("invalid metadata", func(t *testing.T) {
		got, loc := (&Localizer{}).Locate(&failingRaster{}, box, ImageMetadata{})
		if got != box || loc.Outcome != UnchangedFallback {
			t.Errorf("got %+v %+v, want unchanged", got, loc)
		}
	})
}

func TestExtractRegion_WrapsError(t *testing.T) {
	_, err := extractRegion(&failingRaster{}, centerBox, meta1000, 0.08)
	if !errors.Is(err, imaging.ErrRegionOutOfBounds) {
		t.Errorf("expected ErrRegionOutOfBounds in chain, got %v", err)
	}
}

func TestOutcome_String(t *testing.T) {
	tests := map[Outcome]string{
		UnchangedFallback:    "unchanged_fallback",
		RecenteredByEdges:    "recentered_by_edges",
		RecenteredByDarkness: "recentered_by_darkness",
	}
	for o, want := range tests {
		if o.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(o), o.String(), want)
		}
	}
}

func TestOutcome_TextRoundTrip(t *testing.T) {
	for _, o := range []Outcome{UnchangedFallback, RecenteredByEdges, RecenteredByDarkness} {
		b, err := o.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText failed: %v", err)
		}
		var back Outcome
		if err := back.UnmarshalText(b); err != nil || back != o {
			t.Errorf("round trip of %v: got %v, %v", o, back, err)
		}
	}
	var o Outcome
	if err := o.UnmarshalText([]byte("teleported")); err == nil {
		t.Error("expected error for unknown outcome")
	}
}

func TestDefaultScales_Fresh(t *testing.T) {
	s := DefaultScales()
	s[0] = 0.5
	if got := DefaultScales(); len(got) != 2 || got[0] != 0.08 || got[1] != 0.12 {
		t.Errorf("DefaultScales() = %v, want [0.08 0.12]", got)
	}
}
