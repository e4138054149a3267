// Package server implements the MCP (Model Context Protocol) server for
// the answer-sheet scanner.
//
// The server lets an MCP client score sheets, inspect why a bubble was or
// was not counted, and tune a template without leaving the conversation.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr so they never interleave with responses.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Scanning:
//   - omr_template_validate: Check a template and list its questions
//   - omr_scan_sheet: Score one sheet, optionally with debug rows and overlay
//   - omr_scan_batch: Score a folder and write the results CSV
//
// Template tuning:
//   - omr_bubble_scores: Raw darkness scores for one question
//   - omr_crop_bubble: Zoomed crop of one bubble's sampling window
//
// Image inspection:
//   - image_load, image_dimensions, image_sample_color
//
// # Image Caching
//
// Decoded sheets are cached by path so repeated tuning calls on the same
// scan do not decode it again. image_load always re-reads the file.
// Templates are re-read on every call, so edits take effect immediately.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000 and the Go error string as data. An invalid template given
// to omr_template_validate is not an error: the result reports
// valid=false with the reason.
package server
