// Package ocr reads equipment tags off a blueprint with Tesseract.
//
// The vision model often finds a symbol but cannot read the tag printed next
// to it. LabelReader implements symbols.LabelReader: given the pixel band
// above a refined box, it crops that band, upscales it, and runs Tesseract in
// single-line mode restricted to the characters that appear in equipment
// tags (letters, digits, '-', '/', '.').
//
// # Prerequisites
//
// Tesseract and the language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The default language is English ("eng"). Label reading is disabled unless
// ocr_enabled is set in the configuration.
//
// # Thread Safety
//
// A gosseract client is not safe for concurrent use, so ReadLabel creates one
// per call. LabelReader itself holds only configuration and may be shared by
// the pipeline's workers.
package ocr
