// Package server implements the MCP (Model Context Protocol) server for the
// keypoint tools.
//
// This package provides a JSON-RPC 2.0 server that exposes corner detection,
// template matching, and annotation over the MCP protocol, so MCP-compatible
// clients can extract trackable feature points from images with per-corner
// strength scores.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Corner Detection:
//   - detect_corners: Full parameter control over the detector
//   - extract_corners: Detection with the standard tracking defaults
//
// Template Matching:
//   - match_template: Normalized-SSD template search
//
// Visualization:
//   - annotate_corners: Write a marker overlay of detected corners to a file
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are
// cached by path and reused across multiple tool calls, avoiding redundant
// disk I/O. The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Note that images in which no corners can be found are not errors: the
// detector's contract is to return empty corner and score lists for
// degenerate content, and the tools pass that through unchanged.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
