package symbols

// NormalizeSymbolConfidence maps a per-symbol confidence onto [0,1].
//
// Detectors report either fractions or percentages. Anything strictly above 1
// is read as a percentage. Missing, non-finite, and negative inputs are 0.
func NormalizeSymbolConfidence(v Number) float64 {
	if !v.Finite() || v.Value < 0 {
		return 0
	}
	c := v.Value
	if c > 1 {
		c /= 100
	}
	return clampFloat(c, 0, 1)
}

// NormalizeOverallConfidence maps an image-level confidence onto [0,100].
//
// The boundary is the reverse of the per-symbol rule: values at or below 1
// are read as fractions and scaled up. Missing, non-finite, and negative
// inputs are 0.
func NormalizeOverallConfidence(v Number) float64 {
	if !v.Finite() || v.Value < 0 {
		return 0
	}
	c := v.Value
	if c <= 1 {
		c *= 100
	}
	return clampFloat(c, 0, 100)
}
