package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func integerProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Scanning
		{
			Name:        "omr_template_validate",
			Description: "Load a bubble template (.json, .yaml or .toml) and report whether it is valid, its question and field ids, and any bubble/choice count mismatches.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template": stringProp("Absolute path to the template file"),
				},
				"required": []string{"template"},
			},
		},
		{
			Name:        "omr_scan_sheet",
			Description: "Score one scanned answer sheet against a template. Returns one answer label per question (empty when no bubble clears the fill threshold) and the identity fields. Optionally returns the per-question bubble scores and writes an annotated overlay PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template":     stringProp("Absolute path to the template file"),
					"path":         stringProp("Absolute path to the scanned sheet"),
					"overlay_path": stringProp("Optional path for an overlay PNG showing every scored bubble"),
					"include_debug": map[string]interface{}{
						"type":        "boolean",
						"description": "Include scaled coordinates and raw scores per question. Default false",
						"default":     false,
					},
				},
				"required": []string{"template", "path"},
			},
		},
		{
			Name:        "omr_scan_batch",
			Description: "Score every matching sheet in a folder and write the results CSV (file, identity fields, one column per question). A sheet that cannot be read gets a row with empty answers; the rest of the batch continues.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template":     stringProp("Absolute path to the template file"),
					"scans":        stringProp("Folder containing the scanned sheets"),
					"pattern":      map[string]interface{}{"type": "string", "description": "Glob matched against file names. Default *.png", "default": "*.png"},
					"output":       stringProp("Path of the results CSV"),
					"debug_output": stringProp("Optional path of the per-question scores CSV"),
					"overlay_dir":  stringProp("Optional folder for overlay PNGs"),
					"workers":      integerProp("Sheets scored in parallel. Default: number of CPUs"),
					"error_column": map[string]interface{}{
						"type":        "boolean",
						"description": "Append an error column to the results CSV. Default false",
						"default":     false,
					},
				},
				"required": []string{"template", "scans", "output"},
			},
		},

		// Template tuning
		{
			Name:        "omr_bubble_scores",
			Description: "Return the scaled bubble centres, darkness scores, selected index and answer for one question of one sheet, together with the fill threshold. Use this to tune fill_threshold or bubble positions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template": stringProp("Absolute path to the template file"),
					"path":     stringProp("Absolute path to the scanned sheet"),
					"question": stringProp("Question id, e.g. Q3"),
				},
				"required": []string{"template", "path", "question"},
			},
		},
		{
			Name:        "omr_crop_bubble",
			Description: "Crop the sampling window of one bubble as it lands on the scanned sheet and return it as a zoomed base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template": stringProp("Absolute path to the template file"),
					"path":     stringProp("Absolute path to the scanned sheet"),
					"question": stringProp("Question id, e.g. Q3"),
					"bubble":   integerProp("0-based bubble index within the question"),
					"pad":      integerProp("Extra pixels around the bubble window. Default 0"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Zoom factor. Default 4.0",
						"default":     4.0,
					},
				},
				"required": []string{"template", "path", "question", "bubble"},
			},
		},

		// Image inspection
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and colour depth.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the colour at a pixel as hex, RGB and HSL, plus the luminance the bubble scorer uses.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the image file"),
					"x":    integerProp("X coordinate (0-based, from left)"),
					"y":    integerProp("Y coordinate (0-based, from top)"),
				},
				"required": []string{"path", "x", "y"},
			},
		},
	}
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
