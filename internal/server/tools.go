package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the blueprint image (PNG or JPEG)",
	}
}

func imageMetadataProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional pixel dimensions to map percentages against. Defaults to the decoded image size.",
		"properties": map[string]interface{}{
			"width":  map[string]interface{}{"type": "integer"},
			"height": map[string]interface{}{"type": "integer"},
		},
	}
}

// candidateProperties describes the detector output accepted by the refine
// and overlay tools. Every field is optional and may have the wrong type.
func candidateProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"symbols": map[string]interface{}{
			"type":        "array",
			"description": "Raw symbol proposals from a vision model",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":        map[string]interface{}{"type": "string"},
					"description": map[string]interface{}{"type": "string"},
					"category":    map[string]interface{}{"type": "string", "description": "Free-text category, mapped to hydraulic/pneumatic/mechanical/electrical/other"},
					"confidence":  map[string]interface{}{"type": "number", "description": "0-1 or 0-100"},
					"coordinates": map[string]interface{}{
						"type":        "object",
						"description": "Box center and size in percent of the image",
						"properties": map[string]interface{}{
							"x":      map[string]interface{}{"type": "number"},
							"y":      map[string]interface{}{"type": "number"},
							"width":  map[string]interface{}{"type": "number"},
							"height": map[string]interface{}{"type": "number"},
						},
					},
				},
			},
		},
		"overallConfidence": map[string]interface{}{
			"type":        "number",
			"description": "Overall detection confidence, 0-1 or 0-100",
		},
		"summary": map[string]interface{}{
			"type":        "string",
			"description": "Free-text summary of the drawing",
		},
		"imageMetadata": imageMetadataProperty(),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Blueprint Operations
		{
			Name:        "blueprint_load",
			Description: "Load a blueprint image and return its dimensions and format. The decoded image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "blueprint_refine_symbols",
			Description: "Refine vision-model symbol proposals: clamp boxes, recenter them onto the drawn symbol, normalize confidences and map categories. Without a path, boxes are only clamped.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": candidateProperties(),
				"required":   []string{"symbols"},
			},
		},
		{
			Name:        "blueprint_analyze",
			Description: "Run the configured vision model on a blueprint and return the refined symbols. Requires GEMINI_API_KEY.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"instruction": map[string]interface{}{
						"type":        "string",
						"description": "Optional replacement for the built-in detection prompt",
					},
					"imageMetadata": imageMetadataProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "blueprint_overlay",
			Description: "Refine symbol proposals and return the blueprint as base64 PNG with each refined box outlined and labeled, colored by category.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": candidateProperties(),
				"required":   []string{"path", "symbols"},
			},
		},

		// Symbol Helpers
		{
			Name:        "symbol_map_category",
			Description: "Map a free-text equipment category onto hydraulic, pneumatic, mechanical, electrical or other.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Category text as produced by the detector",
					},
				},
				"required": []string{"label"},
			},
		},
		{
			Name:        "symbol_normalize_confidence",
			Description: "Normalize a confidence that may be a fraction or a percentage. Symbol scale returns 0-1, overall scale returns 0-100.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"value": map[string]interface{}{
						"type":        "number",
						"description": "Raw confidence value; numeric strings such as \"85%\" are accepted",
					},
					"scale": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"symbol", "overall"},
						"description": "Output scale. Default symbol",
						"default":     "symbol",
					},
				},
				"required": []string{"value"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
