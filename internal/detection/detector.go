package detection

import (
	"context"
	"errors"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/symbols"
)

var (
	// ErrNoAPIKey is returned when a detector has no API key configured.
	ErrNoAPIKey = errors.New("vision API key is not configured")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("vision model returned an empty response")
)

// DefaultInstruction is sent with every image unless the caller supplies
// its own.
const DefaultInstruction = `You are reading an MEP (mechanical, electrical, plumbing) blueprint.
Find every equipment symbol on the drawing: pumps, valves, fans, air handlers,
compressors, panels, motors, fixtures and similar.

For each symbol return:
- name: the equipment tag printed next to it (for example "P-101"), or "" if unreadable
- description: a short description of the equipment
- category: one of hydraulic, pneumatic, mechanical, electrical, other
- confidence: your confidence from 0 to 1
- coordinates: {"x", "y", "width", "height"} where x and y are the CENTER of the
  symbol and all four values are percentages (0-100) of the image width and height

Also return overallConfidence (0-100) and a one-sentence summary of the drawing.
Respond with a single JSON object:
{"symbols": [...], "overallConfidence": <number>, "summary": "<text>"}`

// Detector proposes symbols on an encoded blueprint image.
//
// Implementations return whatever the model said; validation and defaulting
// happen in symbols.Pipeline.
type Detector interface {
	Detect(ctx context.Context, image []byte, instruction string) (symbols.Detection, error)
}
