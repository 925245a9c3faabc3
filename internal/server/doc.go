// Package server implements the MCP (Model Context Protocol) server for the
// image pipeline.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - Input: JSON-RPC requests on stdin
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
//   - image_info: Dimensions, format, frame count and quality
//   - image_resize: lfit or fixed resize
//   - image_thumb: Thumbnail policy (shorter side and quality cap)
//   - image_crop: Rectangular crop
//   - image_circle: Elliptical mask
//   - image_watermark: Overlay another image
//   - image_text: Draw text
//   - image_quality: Lower JPEG quality
//   - image_process: Run a full recipe
//
// Every tool that reads an image accepts a path, an http(s) URL or a data
// URI as its source. Results are JSON objects carrying width, height,
// format, mime_type and frames plus base64 image data, and path or url when
// the result was saved or uploaded.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(runner, logger, version)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("server error", zap.Error(err))
//	}
package server
