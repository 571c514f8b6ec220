package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/imaging"
	"github.com/ironsheep/blueprint-symbols-mcp/internal/symbols"
)

// ErrNoDetector is returned by blueprint_analyze when no vision model is
// configured.
var ErrNoDetector = errors.New("no vision detector configured; set GEMINI_API_KEY")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "blueprint_load").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Blueprint Operations
	case "blueprint_load":
		return s.handleBlueprintLoad(args)
	case "blueprint_refine_symbols":
		return s.handleBlueprintRefine(args)
	case "blueprint_analyze":
		return s.handleBlueprintAnalyze(args)
	case "blueprint_overlay":
		return s.handleBlueprintOverlay(args)

	// Symbol Helpers
	case "symbol_map_category":
		return s.handleSymbolMapCategory(args)
	case "symbol_normalize_confidence":
		return s.handleSymbolNormalizeConfidence(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Blueprint Handlers ===

type blueprintLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleBlueprintLoad(args json.RawMessage) (interface{}, error) {
	var a blueprintLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type refineArgs struct {
	Path              string                       `json:"path"`
	Symbols           []symbols.RawCandidateSymbol `json:"symbols"`
	OverallConfidence symbols.Number               `json:"overallConfidence"`
	Summary           symbols.Text                 `json:"summary"`
	ImageMetadata     *symbols.ImageMetadata       `json:"imageMetadata"`
}

func (a refineArgs) detection() symbols.Detection {
	return symbols.Detection{
		Symbols:           a.Symbols,
		OverallConfidence: a.OverallConfidence,
		Summary:           a.Summary,
	}
}

// handleBlueprintRefine refines caller-supplied proposals. The image is
// optional; without one every box keeps its clamped position.
func (s *Server) handleBlueprintRefine(args json.RawMessage) (interface{}, error) {
	var a refineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.Path == "" {
		return s.pipeline.Refine(nil, a.ImageMetadata, a.detection()), nil
	}

	bp, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Refine(bp, a.ImageMetadata, a.detection()), nil
}

type analyzeArgs struct {
	Path          string                 `json:"path"`
	Instruction   string                 `json:"instruction"`
	ImageMetadata *symbols.ImageMetadata `json:"imageMetadata"`
}

func (s *Server) handleBlueprintAnalyze(args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.detector == nil {
		return nil, ErrNoDetector
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	bp, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.detectTimeout)
	defer cancel()

	det, err := s.detector.Detect(ctx, bp.Bytes(), a.Instruction)
	if err != nil {
		return nil, fmt.Errorf("failed to detect symbols: %w", err)
	}
	return s.pipeline.Refine(bp, a.ImageMetadata, det), nil
}

// OverlayResult is the blueprint_overlay response: the annotated image and
// the refinement it shows.
type OverlayResult struct {
	*imaging.OverlayResult
	Result symbols.Result `json:"result"`
}

func (s *Server) handleBlueprintOverlay(args json.RawMessage) (interface{}, error) {
	var a refineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	bp, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	result := s.pipeline.Refine(bp, a.ImageMetadata, a.detection())

	w, h := bp.Dimensions()
	overlay, err := imaging.Overlay(bp.Image(), OverlayBoxes(result.Symbols, w, h))
	if err != nil {
		return nil, err
	}
	return &OverlayResult{OverlayResult: overlay, Result: result}, nil
}

// OverlayBoxes converts refined percentage boxes into pixel rectangles on a
// width×height image, colored by category.
func OverlayBoxes(refined []symbols.RefinedSymbol, width, height int) []imaging.OverlayBox {
	boxes := make([]imaging.OverlayBox, 0, len(refined))
	for _, sym := range refined {
		c := sym.Coordinates
		x1 := (c.X - c.Width/2) / 100 * float64(width)
		y1 := (c.Y - c.Height/2) / 100 * float64(height)
		x2 := (c.X + c.Width/2) / 100 * float64(width)
		y2 := (c.Y + c.Height/2) / 100 * float64(height)

		boxes = append(boxes, imaging.OverlayBox{
			X1:    int(math.Round(x1)),
			Y1:    int(math.Round(y1)),
			X2:    int(math.Round(x2)),
			Y2:    int(math.Round(y2)),
			Label: sym.Name,
			Color: imaging.PaletteColor(sym.Category.Index(), len(symbols.Categories)),
		})
	}
	return boxes
}

// === Symbol Helper Handlers ===

type mapCategoryArgs struct {
	Label string `json:"label"`
}

// MapCategoryResult is the symbol_map_category response.
type MapCategoryResult struct {
	Label    string           `json:"label"`
	Category symbols.Category `json:"category"`
}

func (s *Server) handleSymbolMapCategory(args json.RawMessage) (interface{}, error) {
	var a mapCategoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return &MapCategoryResult{Label: a.Label, Category: symbols.MapCategory(a.Label)}, nil
}

type normalizeConfidenceArgs struct {
	Value symbols.Number `json:"value"`
	Scale string         `json:"scale"`
}

// NormalizeConfidenceResult is the symbol_normalize_confidence response.
type NormalizeConfidenceResult struct {
	Value      symbols.Number `json:"value"`
	Scale      string         `json:"scale"`
	Normalized float64        `json:"normalized"`
}

func (s *Server) handleSymbolNormalizeConfidence(args json.RawMessage) (interface{}, error) {
	var a normalizeConfidenceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	scale := strings.ToLower(strings.TrimSpace(a.Scale))
	var normalized float64
	switch scale {
	case "", "symbol":
		scale = "symbol"
		normalized = symbols.NormalizeSymbolConfidence(a.Value)
	case "overall":
		normalized = symbols.NormalizeOverallConfidence(a.Value)
	default:
		return nil, fmt.Errorf("unknown scale %q (expected symbol or overall)", a.Scale)
	}

	return &NormalizeConfidenceResult{Value: a.Value, Scale: scale, Normalized: normalized}, nil
}
