// Package server implements the MCP (Model Context Protocol) server for screenshot tools.
//
// This package provides a JSON-RPC 2.0 server that lets an MCP client ask the
// host machine for a picture of its screen, either returned inline or saved
// to disk.
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
// Inline results:
//   - take_screenshot: JPEG returned as MCP image content
//   - take_screenshot_base64: JPEG returned as base64 text
//   - take_screenshot_text: OCR of the screen as JSON
//
// Saved results:
//   - take_screenshot_path: Save under a caller-chosen directory
//   - take_screenshot_and_return_path: Save in the server's directory, return the path
//   - take_screenshot_to_wsl: Save into a WSL distribution from a Windows host
//
// # Error Handling
//
// Only take_screenshot reports failures as JSON-RPC errors (code -32000).
// Every other tool answers with a text result that is either its payload or a
// string beginning with "failed: ". Malformed params or arguments get -32602
// and unknown methods -32601.
//
// Each tools/call is logged with its own call_id so the lines of one
// invocation can be grouped.
//
// # Usage
//
//	svc := screenshot.New(capture.Screen{}, opts, logger)
//	srv := server.New(svc, logger, version)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
