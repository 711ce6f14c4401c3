package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// toolEntry binds a tool definition to its handler.
type toolEntry struct {
	Tool
	handle toolHandler
	// raises marks tools whose failures become JSON-RPC errors instead of
	// "failed: ..." text.
	raises bool
}

// toolTable is the complete set of tools, in the order they are listed.
var toolTable = []toolEntry{
	{
		Tool: Tool{
			Name:        "take_screenshot",
			Description: "Take a screenshot of the user's screen and return it as an image. Use this tool anytime the user wants you to look at something they're doing.",
			InputSchema: emptySchema(),
		},
		handle: handleTakeScreenshot,
		raises: true,
	},
	{
		Tool: Tool{
			Name:        "take_screenshot_path",
			Description: "Take a screenshot of the user's screen and save it as a JPEG under the given directory. The file must stay inside that directory. Returns \"success\" or a \"failed: ...\" reason.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Directory to save into (default: the server's working directory)",
						"default":     "./",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "File name (default screenshot.jpg)",
						"default":     "screenshot.jpg",
					},
				},
			},
		},
		handle: handleTakeScreenshotPath,
	},
	{
		Tool: Tool{
			Name:        "take_screenshot_and_return_path",
			Description: "Take a screenshot, save it in the server's screenshot directory and return the absolute file path, or a \"failed: ...\" reason.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "File name (default latest_screenshot.jpg)",
						"default":     "latest_screenshot.jpg",
					},
				},
			},
		},
		handle: handleTakeScreenshotAndReturnPath,
	},
	{
		Tool: Tool{
			Name:        "take_screenshot_to_wsl",
			Description: "Take a screenshot on the Windows host and save it into a WSL directory given as a Linux path (e.g. /home/me/shots). Only works when the server runs on Windows. Returns \"success\" or a \"failed: ...\" reason.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute Linux directory inside the WSL distribution",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "File name (default screenshot.jpg)",
						"default":     "screenshot.jpg",
					},
				},
				"required": []string{"path"},
			},
		},
		handle: handleTakeScreenshotToWSL,
	},
	{
		Tool: Tool{
			Name:        "take_screenshot_base64",
			Description: "Take a screenshot and return the JPEG as a base64 string, or a \"failed: ...\" reason.",
			InputSchema: emptySchema(),
		},
		handle: handleTakeScreenshotBase64,
	},
	{
		Tool: Tool{
			Name:        "take_screenshot_text",
			Description: "Take a screenshot and extract the visible text with OCR. Returns JSON with the full text and word bounding boxes, or a \"failed: ...\" reason.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"language": map[string]interface{}{
						"type":        "string",
						"description": "OCR language hint (default 'eng')",
						"default":     "eng",
					},
				},
			},
		},
		handle: handleTakeScreenshotText,
	},
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	tools := make([]Tool, len(toolTable))
	for i, e := range toolTable {
		tools[i] = e.Tool
	}
	return tools
}

func lookupTool(name string) (toolEntry, bool) {
	for _, e := range toolTable {
		if e.Name == name {
			return e, true
		}
	}
	return toolEntry{}, false
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
