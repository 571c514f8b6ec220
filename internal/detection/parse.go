package detection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/symbols"
)

// StripCodeFences removes a surrounding Markdown code fence, with or without
// a language tag.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseDetection decodes a model response into a Detection.
//
// Fields that are missing or have the wrong type are left absent; the
// pipeline fills in defaults. An error is returned only when text is empty
// or contains no JSON object or array.
func ParseDetection(text string) (symbols.Detection, error) {
	body := extractJSON(StripCodeFences(text))
	if body == "" {
		if strings.TrimSpace(text) == "" {
			return symbols.Detection{}, ErrEmptyResponse
		}
		return symbols.Detection{}, fmt.Errorf("failed to parse detection: no JSON found in response")
	}

	if body[0] == '[' {
		var list []symbols.RawCandidateSymbol
		if err := json.Unmarshal([]byte(body), &list); err != nil {
			return symbols.Detection{}, fmt.Errorf("failed to parse detection: %w", err)
		}
		return symbols.Detection{Symbols: list}, nil
	}

	var raw struct {
		Symbols           json.RawMessage `json:"symbols"`
		OverallConfidence symbols.Number  `json:"overallConfidence"`
		Summary           symbols.Text    `json:"summary"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return symbols.Detection{}, fmt.Errorf("failed to parse detection: %w", err)
	}

	det := symbols.Detection{
		OverallConfidence: raw.OverallConfidence,
		Summary:           raw.Summary,
	}
	// A "symbols" value that is not a list is treated as no symbols.
	if trimmed := bytes.TrimSpace(raw.Symbols); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &det.Symbols); err != nil {
			return symbols.Detection{}, fmt.Errorf("failed to parse detection symbols: %w", err)
		}
	}
	return det, nil
}

// extractJSON returns the span from the first '{' or '[' to the matching
// last '}' or ']', or "" when there is none.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
