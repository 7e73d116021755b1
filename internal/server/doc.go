// Package server exposes the overlay over MCP (Model Context Protocol).
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line, so an MCP
// client can inspect what the overlay currently shows and run the line
// processing steps on its own data.
//
// # Protocol
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Live overlay (require a running pipeline):
//   - overlay_snapshot: Latest published lines, frame rate and show flag
//   - overlay_stats: Rolling tick statistics
//
// Line processing:
//   - overlay_filter_lines: Remove near-duplicate segments
//   - overlay_normalize: Map capture-space segments to a display resolution
//   - overlay_detect_file: Run capture, detection, scaling and filtering on
//     an image file
//
// # Error Handling
//
// Tool failures return JSON-RPC error code -32000 with the cause in the data
// field. Malformed tools/call params return -32602 and unknown methods
// -32601.
//
// # Thread Safety
//
// Requests are handled sequentially. overlay_detect_file decodes the image
// on every call, so a file rewritten between calls is seen fresh. The
// snapshot and statistics sources are safe to share with a pipeline running
// in another goroutine.
package server
