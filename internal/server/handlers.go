package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/screenshot-mcp/internal/imaging"
	"github.com/ironsheep/screenshot-mcp/internal/screenshot"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "take_screenshot").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// toolHandler decodes arguments and runs one screenshot operation.
type toolHandler func(ctx context.Context, svc *screenshot.Service, args json.RawMessage) (screenshot.Outcome, error)

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// Successful image results are wrapped as MCP image content:
//
//	{"content": [{"type": "image", "data": "<base64>", "mimeType": "image/jpeg"}]}
//
// Everything else, including "failed: ..." strings, is returned as text
// content. Unknown tools and failures of tools marked raises return a JSON-RPC
// error with code -32000; undecodable arguments return -32602.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	entry, ok := lookupTool(params.Name)
	if !ok {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", fmt.Sprintf("unknown tool: %s", params.Name))
	}

	log := s.log.With("call_id", uuid.NewString(), "tool", params.Name)
	log.Info("tool call started")
	start := time.Now()

	out, err := entry.handle(ctx, s.svc.WithLogger(log), params.Arguments)
	if err != nil {
		log.Warn("invalid tool arguments", "error", err)
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log.Info("tool call finished", "failed", out.Failed(), "duration", time.Since(start))

	if out.Failed() && entry.raises {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", out.Err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{contentFor(out)},
		},
	}
}

// contentFor renders an outcome as a single MCP content item.
func contentFor(out screenshot.Outcome) map[string]interface{} {
	if !out.Failed() && out.Kind == screenshot.KindImage {
		return map[string]interface{}{
			"type":     "image",
			"data":     base64.StdEncoding.EncodeToString(out.Image),
			"mimeType": imaging.MimeType,
		}
	}
	return map[string]interface{}{
		"type": "text",
		"text": out.Message(),
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// decodeArgs unmarshals tool arguments, treating absent arguments as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Capture-returning Handlers ===

func handleTakeScreenshot(_ context.Context, svc *screenshot.Service, args json.RawMessage) (screenshot.Outcome, error) {
	if err := decodeArgs(args, &struct{}{}); err != nil {
		return screenshot.Outcome{}, err
	}
	return svc.Image(), nil
}

func handleTakeScreenshotBase64(_ context.Context, svc *screenshot.Service, args json.RawMessage) (screenshot.Outcome, error) {
	if err := decodeArgs(args, &struct{}{}); err != nil {
		return screenshot.Outcome{}, err
	}
	return svc.Base64(), nil
}

// === Saving Handlers ===

type takeScreenshotPathArgs struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

func handleTakeScreenshotPath(_ context.Context, svc *screenshot.Service, args json.RawMessage) (screenshot.Outcome, error) {
	var a takeScreenshotPathArgs
	if err := decodeArgs(args, &a); err != nil {
		return screenshot.Outcome{}, err
	}
	if a.Path == "" {
		a.Path = "./"
	}
	return svc.SaveToPath(a.Path, a.Name), nil
}

type takeScreenshotAndReturnPathArgs struct {
	Name string `json:"name"`
}

func handleTakeScreenshotAndReturnPath(_ context.Context, svc *screenshot.Service, args json.RawMessage) (screenshot.Outcome, error) {
	var a takeScreenshotAndReturnPathArgs
	if err := decodeArgs(args, &a); err != nil {
		return screenshot.Outcome{}, err
	}
	return svc.SaveAndReturnPath(a.Name), nil
}

func handleTakeScreenshotToWSL(ctx context.Context, svc *screenshot.Service, args json.RawMessage) (screenshot.Outcome, error) {
	var a takeScreenshotPathArgs
	if err := decodeArgs(args, &a); err != nil {
		return screenshot.Outcome{}, err
	}
	return svc.SaveToWSL(ctx, a.Path, a.Name), nil
}

// === Text Extraction Handlers ===

type takeScreenshotTextArgs struct {
	Language string `json:"language"`
}

func handleTakeScreenshotText(_ context.Context, svc *screenshot.Service, args json.RawMessage) (screenshot.Outcome, error) {
	var a takeScreenshotTextArgs
	if err := decodeArgs(args, &a); err != nil {
		return screenshot.Outcome{}, err
	}
	if a.Language == "" {
		a.Language = "eng"
	}
	return svc.Text(a.Language), nil
}
