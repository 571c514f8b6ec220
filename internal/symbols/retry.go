package symbols

import (
	"fmt"
	"log"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/imaging"
)

// DefaultScales returns the crop scales tried in order, as a fraction of the
// longest image side: a tight crop first, then a wider one. Each call
// returns a fresh slice.
func DefaultScales() []float64 {
	return []float64{0.08, 0.12}
}

// Outcome is the terminal state of a localization attempt. All outcomes are
// valid results.
type Outcome int

const (
	// UnchangedFallback keeps the clamped detector box.
	UnchangedFallback Outcome = iota

	// RecenteredByEdges moved the box onto the edge-weighted centroid.
	RecenteredByEdges

	// RecenteredByDarkness moved the box onto the darkest-pixel centroid.
	RecenteredByDarkness
)

func (o Outcome) String() string {
	switch o {
	case RecenteredByEdges:
		return "recentered_by_edges"
	case RecenteredByDarkness:
		return "recentered_by_darkness"
	default:
		return "unchanged_fallback"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	for _, c := range [...]Outcome{UnchangedFallback, RecenteredByEdges, RecenteredByDarkness} {
		if string(b) == c.String() {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown localization outcome %q", b)
}

// Localization records how a refined box was produced.
type Localization struct {
	Outcome Outcome `json:"outcome"`

	// Scale is the crop scale that produced the box; zero for
	// UnchangedFallback.
	Scale float64 `json:"scale,omitempty"`
}

// Raster is a decoded image the localizer can read regions from.
type Raster interface {
	Dimensions() (width, height int)
	GrayRegion(x, y, size int) (*imaging.GrayRegion, error)
}

// BoxLocator sharpens a sanitized box onto the symbol it covers.
// Implementations must not panic and must return box unchanged when they
// cannot improve it.
type BoxLocator interface {
	Locate(raster Raster, box Box, meta ImageMetadata) (Box, Localization)
}

// Localizer is the multi-scale BoxLocator.
//
// Edge localization runs at each scale in order and the first hit wins. The
// darkest-pixel fallback is only consulted after every scale has failed to
// find edges, on the crops that were extracted, in the same order. When
// nothing succeeds the input box is returned with UnchangedFallback.
type Localizer struct {
	// Scales overrides DefaultScales when non-empty.
	Scales []float64

	// Logger receives per-attempt debug lines. Nil disables them.
	Logger *log.Logger
}

// Locate implements BoxLocator. Region extraction failures move on to the
// next scale; a panic anywhere yields UnchangedFallback.
func (l *Localizer) Locate(raster Raster, box Box, meta ImageMetadata) (out Box, loc Localization) {
	defer func() {
		if r := recover(); r != nil {
			l.debugf("localize (%.2f,%.2f): recovered from %v", box.X, box.Y, r)
			out, loc = box, Localization{Outcome: UnchangedFallback}
		}
	}()

	if raster == nil || !meta.Valid() {
		return box, Localization{Outcome: UnchangedFallback}
	}

	scales := l.Scales
	if len(scales) == 0 {
		scales = DefaultScales()
	}

	regions := make([]*imaging.GrayRegion, len(scales))
	for i, scale := range scales {
		region, err := extractRegion(raster, box, meta, scale)
		if err != nil {
			l.debugf("localize (%.2f,%.2f) scale %.2f: %v", box.X, box.Y, scale, err)
			continue
		}
		regions[i] = region

		if b, ok := LocateByEdges(box, region, meta); ok {
			return b, Localization{Outcome: RecenteredByEdges, Scale: scale}
		}
		l.debugf("localize (%.2f,%.2f) scale %.2f: no edge signal", box.X, box.Y, scale)
	}

	for i, region := range regions {
		if region == nil {
			continue
		}
		if b, ok := LocateByDarkness(box, region, meta); ok {
			return b, Localization{Outcome: RecenteredByDarkness, Scale: scales[i]}
		}
	}

	return box, Localization{Outcome: UnchangedFallback}
}

func extractRegion(raster Raster, box Box, meta ImageMetadata, scale float64) (*imaging.GrayRegion, error) {
	x0, y0, size := cropWindow(box, meta, scale)
	region, err := raster.GrayRegion(x0, y0, size)
	if err != nil {
		return nil, fmt.Errorf("failed to extract region: %w", err)
	}
	if region == nil || region.Size != size || len(region.Pix) != size*size {
		return nil, fmt.Errorf("failed to extract region: short read at (%d,%d) size %d", x0, y0, size)
	}
	return region, nil
}

func (l *Localizer) debugf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
	}
}
