package detection

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/symbols"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

const geminiAttempts = 3

// Gemini is a Detector backed by the Google Gemini API.
type Gemini struct {
	APIKey string
	Model  string
	Logger *log.Logger
}

// NewGemini creates a Gemini detector. An empty model selects
// DefaultGeminiModel.
func NewGemini(apiKey, model string, logger *log.Logger) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Gemini{
		APIKey: strings.TrimSpace(apiKey),
		Model:  model,
		Logger: logger,
	}
}

// Detect sends image and instruction to Gemini and parses the JSON answer.
// An empty instruction selects DefaultInstruction.
func (g *Gemini) Detect(ctx context.Context, image []byte, instruction string) (symbols.Detection, error) {
	if g.APIKey == "" {
		return symbols.Detection{}, ErrNoAPIKey
	}
	if len(image) == 0 {
		return symbols.Detection{}, fmt.Errorf("gemini detect: empty image")
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return symbols.Detection{}, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	m := client.GenerativeModel(g.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(instruction)},
	}

	parts := []genai.Part{
		genai.Text("Return the JSON object for this drawing."),
		&genai.Blob{MIMEType: http.DetectContentType(image), Data: image},
	}

	var lastErr error
	for attempt := 1; attempt <= geminiAttempts; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			g.Logger.Printf("gemini attempt %d/%d failed: %v", attempt, geminiAttempts, err)
			if err := sleepContext(ctx, time.Duration(attempt)*300*time.Millisecond); err != nil {
				return symbols.Detection{}, err
			}
			continue
		}

		txt := firstText(resp)
		if strings.TrimSpace(txt) == "" {
			return symbols.Detection{}, fmt.Errorf("gemini detect: %w", ErrEmptyResponse)
		}
		det, err := ParseDetection(txt)
		if err != nil {
			return symbols.Detection{}, fmt.Errorf("gemini detect: %w", err)
		}
		return det, nil
	}
	return symbols.Detection{}, fmt.Errorf("gemini detect failed after %d attempts: %w", geminiAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// firstText returns the first text part of the first candidate that has one.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
