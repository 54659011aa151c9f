package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the camera frame (PNG, JPEG or GIF)",
	}
}

func frameProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Frame dimensions in pixels",
		"properties": map[string]interface{}{
			"height": map[string]interface{}{"type": "integer", "minimum": 1},
			"width":  map[string]interface{}{"type": "integer", "minimum": 1},
		},
		"required": []string{"height", "width"},
	}
}

func segmentsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Raw line segments from a detector, in frame pixel coordinates",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "number"},
				"y1": map[string]interface{}{"type": "number"},
				"x2": map[string]interface{}{"type": "number"},
				"y2": map[string]interface{}{"type": "number"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
	}
}

func laneOverridesProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional per-call overrides of the lane pipeline configuration (same keys as lane_config's lane section)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frame Information
		{
			Name:        "image_load",
			Description: "Load a camera frame and return its dimensions, format and file size. The decoded frame is cached for later lane tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		{
			Name:        "image_evict",
			Description: "Drop a frame from the decoded-frame cache, or every cached frame when path is omitted. The least recently used frames are also dropped automatically once the cache is full.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path of the frame to drop. Omit to clear the cache",
					},
				},
			},
		},

		// Segment Pipeline
		{
			Name:        "lane_analyze_segments",
			Description: "Run the lane pipeline on raw detector segments: deduplicate, split into left/right, fit one line per side, pair lanes and compute steering. Returns every intermediate stage and the navigation signal.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"frame":    frameProperty(),
					"segments": segmentsProperty(),
					"lane":     laneOverridesProperty(),
				},
				"required": []string{"frame", "segments"},
			},
		},
		{
			Name:        "lane_process_batch",
			Description: "Run the lane pipeline on an ordered sequence of frames concurrently. Results come back in input order; a malformed frame reports an error without failing the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"frames": map[string]interface{}{
						"type":        "array",
						"description": "Frames in capture order",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"id":       map[string]interface{}{"type": "string"},
								"frame":    frameProperty(),
								"segments": segmentsProperty(),
							},
							"required": []string{"frame", "segments"},
						},
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum frames processed at once. Defaults to the configured worker count",
						"minimum":     1,
					},
					"lane": laneOverridesProperty(),
				},
				"required": []string{"frames"},
			},
		},

		// Image Pipeline
		{
			Name:        "lane_detect",
			Description: "Detect lanes in a camera frame: preprocess (resize, region of interest, Canny), find segments with a Hough transform, then run the lane pipeline. Coordinates refer to the working frame; scale maps source pixels onto it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"lane": laneOverridesProperty(),
					"include_segments": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the raw detected segments in the response. Default false",
						"default":     false,
					},
					"classify_markings": map[string]interface{}{
						"type":        "boolean",
						"description": "Sample paint colour (white/yellow) along each fitted line. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_overlay",
			Description: "Detect lanes in a camera frame and return the working frame as base64 PNG with lanes, unpaired lines, the region of interest and the steering centre drawn on it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"lane": laneOverridesProperty(),
					"show_segments": map[string]interface{}{
						"type":        "boolean",
						"description": "Also draw the deduplicated raw segments",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_edge_detect",
			Description: "Return the Canny edge map of a frame's region of interest as base64 PNG, for tuning thresholds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"canny_low": map[string]interface{}{
						"type":        "integer",
						"description": "Low hysteresis threshold (0-255). Defaults to the configured value",
						"minimum":     0,
						"maximum":     255,
					},
					"canny_high": map[string]interface{}{
						"type":        "integer",
						"description": "High hysteresis threshold (0-255). Defaults to the configured value",
						"minimum":     0,
						"maximum":     255,
					},
					"roi_fraction": map[string]interface{}{
						"type":        "number",
						"description": "Share of the frame height, from the bottom, to search. Defaults to the configured value",
						"minimum":     0,
						"maximum":     1,
					},
				},
				"required": []string{"path"},
			},
		},

		// Configuration
		{
			Name:        "lane_config",
			Description: "Return the effective server configuration: lane pipeline, detection, preprocessing and overlay settings.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
