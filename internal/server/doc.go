// Package server implements the MCP (Model Context Protocol) server for
// blueprint symbol refinement.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Blueprint Operations:
//   - blueprint_load: Load a blueprint and report its size
//   - blueprint_refine_symbols: Refine caller-supplied symbol proposals
//   - blueprint_analyze: Detect symbols with the vision model, then refine
//   - blueprint_overlay: Refine and draw the boxes onto the blueprint
//
// Symbol Helpers:
//   - symbol_map_category: Map free text onto the category taxonomy
//   - symbol_normalize_confidence: Normalize a fraction-or-percent value
//
// Refinement never fails because of a bad proposal; see package symbols.
// Tool errors come from unreadable files, malformed arguments, or the
// vision model.
//
// # Image Caching
//
// Decoded blueprints are cached by path for the lifetime of the process, so
// a load followed by several refine or overlay calls decodes once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(
//	    server.WithPipeline(symbols.NewPipeline()),
//	    server.WithDetector(detection.NewGemini(key, "", nil)),
//	)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
