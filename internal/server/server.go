package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/detection"
	"github.com/ironsheep/blueprint-symbols-mcp/internal/imaging"
	"github.com/ironsheep/blueprint-symbols-mcp/internal/symbols"
)

const (
	serverName           = "blueprint-symbols-mcp"
	defaultDetectTimeout = 2 * time.Minute
)

// Server handles MCP protocol communication
type Server struct {
	cache         *imaging.ImageCache
	pipeline      *symbols.Pipeline
	detector      detection.Detector
	detectTimeout time.Duration
	version       string
	logger        *log.Logger

	in  io.Reader
	out io.Writer
}

// Option configures a Server.
type Option func(*Server)

// WithPipeline sets the refinement pipeline used by every blueprint tool.
func WithPipeline(p *symbols.Pipeline) Option {
	return func(s *Server) { s.pipeline = p }
}

// WithDetector enables blueprint_analyze. Without a detector the tool
// returns an error.
func WithDetector(d detection.Detector) Option {
	return func(s *Server) { s.detector = d }
}

// WithDetectTimeout bounds a single detector call.
func WithDetectTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.detectTimeout = d
		}
	}
}

// WithVersion sets the version reported by initialize.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithLogger sets the logger for protocol errors.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithIO replaces stdin/stdout, mainly for tests.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cache:         imaging.NewImageCache(),
		detectTimeout: defaultDetectTimeout,
		version:       "0.1.0",
		logger:        log.Default(),
		in:            os.Stdin,
		out:           os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = symbols.NewPipeline(symbols.WithLogger(s.logger, false))
	}
	return s
}

// Run starts the MCP server, reading requests line by line until the input
// is closed.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	// Candidate lists for a large drawing can be long
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 8*1024*1024)

	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": s.version,
			},
		},
	}
}
