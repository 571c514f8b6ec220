// Package detection asks a vision model for symbol proposals on a blueprint.
//
// The refinement pipeline in package symbols never calls a model itself; it
// receives a symbols.Detection. This package supplies one: the Detector
// interface, a Gemini implementation, and ParseDetection, which turns the
// model's raw text into a Detection.
//
// # Response Format
//
// The model is asked for a single JSON object:
//
//	{
//	  "symbols": [
//	    {
//	      "name": "P-101",
//	      "description": "centrifugal pump",
//	      "category": "pump",
//	      "confidence": 0.9,
//	      "coordinates": {"x": 41.5, "y": 62.0, "width": 6, "height": 6}
//	    }
//	  ],
//	  "overallConfidence": 85,
//	  "summary": "Chilled water plant, two pumps and a heat exchanger."
//	}
//
// Coordinates are box centers and sizes in percent of the image. Models
// rarely honor that contract exactly, so parsing is lenient: Markdown code
// fences and surrounding prose are stripped, a bare array is accepted as the
// symbol list, and malformed fields decode as absent rather than failing the
// whole response. Only text with no JSON in it at all is an error.
//
// # Errors
//
// Detect returns ErrNoAPIKey when no key is configured and ErrEmptyResponse
// when the model answers with no text. Both can be matched with errors.Is.
// Transient API failures are retried three times with linear backoff before
// the last error is returned.
package detection
