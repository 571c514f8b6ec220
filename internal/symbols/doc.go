// Package symbols refines vision-model symbol proposals on MEP blueprints.
//
// A detector proposes center-based boxes in percent of the image size,
// confidences in whatever unit it felt like, and free-text categories. The
// Pipeline turns each proposal into a RefinedSymbol:
//
//  1. ClampBox sanitizes the box (defaults 50% center, 7% size).
//  2. The Localizer crops a square around the box at scale 0.08, then 0.12,
//     and moves the box onto the weighted centroid of the strongest Sobel
//     edges, ignoring the top quarter of the crop where tag text sits.
//  3. If no crop has edge signal, the box moves onto the darkest pixels.
//  4. Otherwise the clamped box is kept.
//  5. NormalizeSymbolConfidence and MapCategory clean up the rest.
//
// Nothing in this package returns an error for a single proposal. Every
// missing or malformed field has a default and every localization failure
// degrades to the clamped detector box.
//
// Candidates are refined concurrently on a bounded worker pool; output order
// always matches input order.
package symbols
