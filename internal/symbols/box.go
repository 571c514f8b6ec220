package symbols

// Box defaults and limits, in percent of the image dimensions.
const (
	defaultCenter = 50.0
	defaultSize   = 7.0
	minBoxSize    = 3.0
	maxBoxSize    = 12.0
)

// ClampBox sanitizes a detector box. Missing or non-finite fields take the
// defaults (50% center, 7% size) before clamping x,y to [0,100] and
// width,height to [3,12]. A nil box yields the default box. ClampBox is
// idempotent.
func ClampBox(raw *RawBox) Box {
	var r RawBox
	if raw != nil {
		r = *raw
	}
	return Box{
		X:      clampFloat(r.X.Or(defaultCenter), 0, 100),
		Y:      clampFloat(r.Y.Or(defaultCenter), 0, 100),
		Width:  clampFloat(r.Width.Or(defaultSize), minBoxSize, maxBoxSize),
		Height: clampFloat(r.Height.Or(defaultSize), minBoxSize, maxBoxSize),
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
