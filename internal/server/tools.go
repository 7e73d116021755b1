package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// segmentListSchema describes an array of {x1,y1,x2,y2} objects.
func segmentListSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Live overlay
		{
			Name:        "overlay_snapshot",
			Description: "Return the line segments the overlay is currently showing, in display pixels, with the frame rate, the show flag and the error kind of the last tick.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "overlay_stats",
			Description: "Return rolling tick statistics: tick time mean/stddev/min/max in milliseconds, mean frame rate, mean line count, skipped ticks and error counts by kind.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Line processing
		{
			Name:        "overlay_filter_lines",
			Description: "Remove near-duplicate segments. Longer segments win; two segments are duplicates when their directions differ by at most angle_threshold_deg (wrapping at 360) and their distances from the origin differ by less than distance_threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lines": segmentListSchema("Segments to filter"),
					"angle_threshold_deg": map[string]interface{}{
						"type":        "number",
						"description": "Maximum direction difference in degrees. Defaults to the configured value (5)",
					},
					"distance_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Distance difference in pixels below which parallel segments collapse. Defaults to the configured value (10)",
					},
				},
				"required": []string{"lines"},
			},
		},
		{
			Name:        "overlay_normalize",
			Description: "Map capture-resolution segments to a display resolution by dividing each coordinate by capture/display per axis and truncating to whole pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lines": segmentListSchema("Segments in capture pixels"),
					"capture_width": map[string]interface{}{
						"type":        "integer",
						"description": "Capture width in pixels",
					},
					"capture_height": map[string]interface{}{
						"type":        "integer",
						"description": "Capture height in pixels",
					},
					"display_width": map[string]interface{}{
						"type":        "integer",
						"description": "Display width in pixels",
					},
					"display_height": map[string]interface{}{
						"type":        "integer",
						"description": "Display height in pixels",
					},
				},
				"required": []string{"lines", "capture_width", "capture_height", "display_width", "display_height"},
			},
		},
		{
			Name:        "overlay_detect_file",
			Description: "Run one overlay tick on an image file: detect edges and line segments, scale them to the display size and remove duplicates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"display_width": map[string]interface{}{
						"type":        "integer",
						"description": "Optional display width. Omit to keep image resolution",
					},
					"display_height": map[string]interface{}{
						"type":        "integer",
						"description": "Optional display height. Omit to keep image resolution",
					},
					"min_votes": map[string]interface{}{
						"type":        "integer",
						"description": "Optional override of the minimum accumulator votes for a line",
					},
				},
				"required": []string{"path"},
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
