package symbols

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is an optional float that unmarshals leniently from detector JSON.
//
// Accepted inputs are JSON numbers and numeric strings, optionally with a
// trailing percent sign ("85", "85%"). null, booleans, objects, and
// unparseable strings leave the Number absent instead of failing the decode.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a present Number.
func Num(v float64) Number { return Number{Value: v, Valid: true} }

// Finite reports whether the number is present and neither NaN nor ±Inf.
func (n Number) Finite() bool {
	return n.Valid && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0)
}

// Or returns the value when finite, otherwise def.
func (n Number) Or(def float64) float64 {
	if n.Finite() {
		return n.Value
	}
	return def
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		*n = Num(t)
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*n = Num(f)
		}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Text is an optional string that unmarshals leniently from detector JSON.
// Numbers are kept in their shortest decimal form; other non-string values
// leave the Text absent.
type Text struct {
	Value string
	Valid bool
}

// Str returns a present Text.
func Str(s string) Text { return Text{Value: s, Valid: true} }

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case string:
		*t = Str(x)
	case float64:
		*t = Str(strconv.FormatFloat(x, 'f', -1, 64))
	}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// RawBox is a center-based box in image percentages as proposed by the
// detector. Any field may be missing.
type RawBox struct {
	X      Number `json:"x"`
	Y      Number `json:"y"`
	Width  Number `json:"width"`
	Height Number `json:"height"`
}

func (r *RawBox) UnmarshalJSON(b []byte) error {
	type plain RawBox
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*r = RawBox{}
		return nil
	}
	*r = RawBox(p)
	return nil
}

// RawCandidateSymbol is one unvalidated symbol proposal from the detector.
type RawCandidateSymbol struct {
	Name        Text    `json:"name"`
	Description Text    `json:"description"`
	Category    Text    `json:"category"`
	Confidence  Number  `json:"confidence"`
	Coordinates *RawBox `json:"coordinates"`
}

// UnmarshalJSON never fails: a candidate that is not a JSON object decodes
// to the zero value and is refined entirely from defaults.
func (c *RawCandidateSymbol) UnmarshalJSON(b []byte) error {
	type plain RawCandidateSymbol
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*c = RawCandidateSymbol{}
		return nil
	}
	*c = RawCandidateSymbol(p)
	return nil
}

// Detection is everything the vision detector returns for one image.
type Detection struct {
	Symbols           []RawCandidateSymbol `json:"symbols"`
	OverallConfidence Number               `json:"overallConfidence"`
	Summary           Text                 `json:"summary"`
}

// Box is a sanitized center-based box: X and Y in [0,100], Width and Height
// in [3,12], all in percent of the image dimensions.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Raw converts the box back into a fully populated RawBox.
func (b Box) Raw() *RawBox {
	return &RawBox{X: Num(b.X), Y: Num(b.Y), Width: Num(b.Width), Height: Num(b.Height)}
}

// Finite reports whether every coordinate is a finite number.
func (b Box) Finite() bool {
	for _, v := range [...]float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ImageMetadata holds the pixel dimensions used to map percentages to pixels.
type ImageMetadata struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (m ImageMetadata) Valid() bool { return m.Width > 0 && m.Height > 0 }

// RefinedSymbol is a validated symbol ready for persistence.
type RefinedSymbol struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Confidence   float64      `json:"confidence"`
	Category     Category     `json:"category"`
	Coordinates  Box          `json:"coordinates"`
	Localization Localization `json:"localization"`
}

// Result is the output of one refinement call.
type Result struct {
	Symbols      []RefinedSymbol `json:"symbols"`
	TotalSymbols int             `json:"totalSymbols"`
	Summary      string          `json:"summary"`

	// OverallConfidence is on the 0-100 scale.
	OverallConfidence float64 `json:"overallConfidence"`
}
