package symbols

import (
	"image"
	"io"
	"log"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/imaging"
)

const (
	// UnnamedSymbol replaces names that are missing or blank.
	UnnamedSymbol = "?"

	// UnnamedDescription is used for symbols whose name could not be read.
	UnnamedDescription = "Unlabeled symbol; name could not be read from the drawing"

	// NoSummary is used when the detector returned no summary text.
	NoSummary = "No summary provided."
)

// DefaultMetadata is used when neither the caller nor the decoder can supply
// pixel dimensions.
var DefaultMetadata = ImageMetadata{Width: 1000, Height: 1000}

// DecodeFunc turns encoded image bytes into a Raster.
type DecodeFunc func(data []byte) (Raster, error)

// LabelReader recovers a symbol name from the text band above its box.
type LabelReader interface {
	ReadLabel(raster Raster, band image.Rectangle) (string, error)
}

// Pipeline refines detector proposals into validated symbols.
//
// A Pipeline holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	decode   DecodeFunc
	locator  BoxLocator
	labels   LabelReader
	workers  int
	defaults ImageMetadata
	logger   *log.Logger
	debug    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDecoder replaces the image decoder used by RefineBytes.
func WithDecoder(fn DecodeFunc) Option {
	return func(p *Pipeline) { p.decode = fn }
}

// WithLocator replaces the multi-scale localizer.
func WithLocator(l BoxLocator) Option {
	return func(p *Pipeline) { p.locator = l }
}

// WithLabelReader enables name recovery for unnamed symbols.
func WithLabelReader(r LabelReader) Option {
	return func(p *Pipeline) { p.labels = r }
}

// WithWorkers bounds the number of candidates refined concurrently.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n >= 1 {
			p.workers = n
		}
	}
}

// WithDefaultMetadata sets the fallback pixel dimensions. Invalid values
// are ignored.
func WithDefaultMetadata(m ImageMetadata) Option {
	return func(p *Pipeline) {
		if m.Valid() {
			p.defaults = m
		}
	}
}

// WithLogger sets the logger for degraded-path messages. When debug is true
// the default Localizer also logs each failed attempt.
func WithLogger(l *log.Logger, debug bool) Option {
	return func(p *Pipeline) {
		p.logger = l
		p.debug = debug
	}
}

// NewPipeline creates a Pipeline with the multi-scale Localizer, the
// imaging decoder, one worker per CPU, and DefaultMetadata.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		decode:   decodeBlueprint,
		locator:  &Localizer{},
		workers:  runtime.GOMAXPROCS(0),
		defaults: DefaultMetadata,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if loc, ok := p.locator.(*Localizer); ok && p.debug && loc.Logger == nil {
		l := *loc
		l.Logger = p.logger
		p.locator = &l
	}
	return p
}

func decodeBlueprint(data []byte) (Raster, error) {
	bp, err := imaging.DecodeBlueprint(data)
	if err != nil {
		return nil, err
	}
	return bp, nil
}

// RefineBytes decodes data and refines det against it. A decode failure is
// not an error: every box falls back to its clamped detector position.
// meta may be nil.
func (p *Pipeline) RefineBytes(data []byte, meta *ImageMetadata, det Detection) Result {
	raster, err := p.decode(data)
	if err != nil {
		p.logger.Printf("blueprint decode failed, boxes keep detector positions: %v", err)
		raster = nil
	}
	return p.Refine(raster, meta, det)
}

// Refine turns every candidate of det into a RefinedSymbol, preserving input
// order, and drops symbols whose coordinates are not finite. raster and meta
// may be nil.
func (p *Pipeline) Refine(raster Raster, meta *ImageMetadata, det Detection) Result {
	resolved := p.Metadata(raster, meta)

	refined := make([]RefinedSymbol, len(det.Symbols))
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range det.Symbols {
		i := i
		g.Go(func() error {
			refined[i] = p.refineOne(raster, resolved, det.Symbols[i])
			return nil
		})
	}
	_ = g.Wait()

	out := make([]RefinedSymbol, 0, len(refined))
	for i, s := range refined {
		if !s.Coordinates.Finite() {
			p.logger.Printf("dropping symbol %d (%q): non-finite coordinates", i, s.Name)
			continue
		}
		out = append(out, s)
	}

	summary := strings.TrimSpace(det.Summary.Value)
	if summary == "" {
		summary = NoSummary
	}

	return Result{
		Symbols:           out,
		TotalSymbols:      len(out),
		Summary:           summary,
		OverallConfidence: NormalizeOverallConfidence(det.OverallConfidence),
	}
}

// Metadata resolves the pixel dimensions for a call: caller supplied, then
// decoded, then the configured default.
func (p *Pipeline) Metadata(raster Raster, meta *ImageMetadata) ImageMetadata {
	if meta != nil && meta.Valid() {
		return *meta
	}
	if raster != nil {
		w, h := raster.Dimensions()
		if m := (ImageMetadata{Width: w, Height: h}); m.Valid() {
			return m
		}
	}
	return p.defaults
}

func (p *Pipeline) refineOne(raster Raster, meta ImageMetadata, c RawCandidateSymbol) RefinedSymbol {
	box := ClampBox(c.Coordinates)
	coords, loc := p.locate(raster, box, meta)
	if coords.Finite() {
		coords = ClampBox(coords.Raw())
	}

	name := strings.TrimSpace(c.Name.Value)
	if name == "" {
		name = UnnamedSymbol
	}
	if name == UnnamedSymbol && p.labels != nil && raster != nil && coords.Finite() {
		if label := p.readLabel(raster, coords, meta); label != "" {
			name = label
		}
	}
	description := c.Description.Value
	if name == UnnamedSymbol {
		description = UnnamedDescription
	}

	return RefinedSymbol{
		Name:         name,
		Description:  description,
		Confidence:   NormalizeSymbolConfidence(c.Confidence),
		Category:     MapCategory(c.Category.Value),
		Coordinates:  coords,
		Localization: loc,
	}
}

func (p *Pipeline) locate(raster Raster, box Box, meta ImageMetadata) (out Box, loc Localization) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("locator panic for box (%.2f,%.2f): %v", box.X, box.Y, r)
			out, loc = box, Localization{Outcome: UnchangedFallback}
		}
	}()
	return p.locator.Locate(raster, box, meta)
}

func (p *Pipeline) readLabel(raster Raster, box Box, meta ImageMetadata) string {
	band := LabelBand(box, meta)
	if band.Empty() {
		return ""
	}
	text, err := p.labels.ReadLabel(raster, band)
	if err != nil {
		p.logger.Printf("label read at %v failed: %v", band, err)
		return ""
	}
	return strings.TrimSpace(text)
}

// LabelBand returns the pixel rectangle directly above box where an
// equipment tag is expected: half the box height tall (at least 12 px) and
// half again as wide as the box, clipped to the image.
func LabelBand(box Box, meta ImageMetadata) image.Rectangle {
	w := box.Width / 100 * float64(meta.Width)
	h := box.Height / 100 * float64(meta.Height)
	cx := box.X / 100 * float64(meta.Width)
	top := box.Y/100*float64(meta.Height) - h/2

	bandH := math.Max(h/2, 12)
	r := image.Rect(
		int(math.Floor(cx-w*0.75)),
		int(math.Floor(top-bandH)),
		int(math.Ceil(cx+w*0.75)),
		int(math.Ceil(top)),
	)
	return r.Intersect(image.Rect(0, 0, meta.Width, meta.Height))
}
