package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

// sourceSchema builds an input schema from the shared source and output
// properties plus the tool's own. required always includes "source".
func sourceSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	all := map[string]interface{}{
		"source":      prop("string", "Image path, http(s) URL or data URI"),
		"is_base64":   prop("boolean", "Treat source as a base64 payload (an optional data: header is stripped)"),
		"output_path": prop("string", "Optional path to save the result to"),
		"upload":      prop("boolean", "Upload the result to the configured storage"),
		"folder":      prop("string", "Storage folder used with upload"),
		"header":      prop("boolean", "Prefix returned base64 data with a data URI header"),
		"omit_data":   prop("boolean", "Do not return the image as base64"),
	}
	for k, v := range props {
		all[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": all,
		"required":   append([]string{"source"}, required...),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_info",
			Description: "Load an image and return its width, height, format, MIME type, frame count, JPEG quality and GIF frame delays.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source":    prop("string", "Image path, http(s) URL or data URI"),
					"is_base64": prop("boolean", "Treat source as a base64 payload"),
				},
				"required": []string{"source"},
			},
		},
		{
			Name:        "image_resize",
			Description: "Resize an image. lfit shrinks to fit inside width x height keeping the aspect ratio and never enlarges; fixed scales to exactly that size. A zero side is derived from the other. Animated GIFs keep every frame and its delay.",
			InputSchema: sourceSchema(map[string]interface{}{
				"width":  prop("integer", "Target width in pixels (0 = unconstrained)"),
				"height": prop("integer", "Target height in pixels (0 = unconstrained)"),
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Resize mode",
					"enum":        []string{"lfit", "fixed"},
					"default":     "lfit",
				},
			}),
		},
		{
			Name:        "image_thumb",
			Description: "Make a thumbnail: when the shorter side exceeds min_size, scale so the shorter side equals min_size, then lower JPEG quality to at most quality.",
			InputSchema: sourceSchema(map[string]interface{}{
				"min_size": map[string]interface{}{
					"type":        "integer",
					"description": "Target length of the shorter side (0 = keep the size)",
					"default":     1080,
				},
				"quality": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum JPEG quality (1-100, 0 = keep the quality)",
					"default":     80,
				},
			}),
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangle starting at (x, y). Width and height default to the rest of the image. Sets the output quality.",
			InputSchema: sourceSchema(map[string]interface{}{
				"x":      prop("integer", "Left edge (0-based)"),
				"y":      prop("integer", "Top edge (0-based)"),
				"width":  prop("integer", "Crop width (0 = to the right edge)"),
				"height": prop("integer", "Crop height (0 = to the bottom edge)"),
				"quality": map[string]interface{}{
					"type":        "integer",
					"description": "Output quality (1-100, 0 = 80)",
					"default":     80,
				},
			}),
		},
		{
			Name:        "image_circle",
			Description: "Mask the image to an ellipse with anti-aliased edges; the outside becomes transparent. JPEG input is returned as PNG. Animated GIFs with more than one frame are rejected.",
			InputSchema: sourceSchema(map[string]interface{}{
				"width":  prop("integer", "Horizontal radius (0 = half the width)"),
				"height": prop("integer", "Vertical radius (0 = half the height)"),
			}),
		},
		{
			Name:        "image_watermark",
			Description: "Draw another image (the mark) over this one at (x, y), optionally scaled and masked to a circle. Applied to every frame of an animated GIF.",
			InputSchema: sourceSchema(map[string]interface{}{
				"mark":   prop("string", "Mark image path, URL or data URI"),
				"x":      prop("integer", "Left edge of the mark"),
				"y":      prop("integer", "Top edge of the mark"),
				"width":  prop("integer", "Mark width (0 = natural width)"),
				"height": prop("integer", "Mark height (0 = natural height)"),
				"circle": prop("boolean", "Mask the mark to a circle first"),
			}, "mark"),
		},
		{
			Name:        "image_text",
			Description: "Draw text with its baseline origin at (x, y), optionally rotated clockwise by angle degrees. Applied to every frame of an animated GIF.",
			InputSchema: sourceSchema(map[string]interface{}{
				"text":  prop("string", "Text to draw"),
				"x":     prop("integer", "Baseline origin X"),
				"y":     prop("integer", "Baseline origin Y"),
				"angle": prop("number", "Clockwise rotation in degrees"),
				"font":  prop("string", "Path to a TrueType/OpenType font (default: configured or built-in font)"),
				"font_size": map[string]interface{}{
					"type":        "number",
					"description": "Font size in points",
					"default":     25,
				},
				"font_weight": map[string]interface{}{
					"type":        "integer",
					"description": "Font weight; 600 and above selects bold",
					"default":     100,
				},
				"fill_color": map[string]interface{}{
					"type":        "string",
					"description": "Text color (#rgb, #rrggbb, #rrggbbaa, white, black, transparent)",
					"default":     "#ffffff",
				},
				"under_color": prop("string", "Background color behind the text"),
			}, "text"),
		},
		{
			Name:        "image_quality",
			Description: "Lower JPEG compression quality to level. Without force, images already at or below level are unchanged. Other formats are unchanged.",
			InputSchema: sourceSchema(map[string]interface{}{
				"level": prop("integer", "Quality level (1-100)"),
				"force": prop("boolean", "Set the quality exactly, even when raising it"),
			}, "level"),
		},
		{
			Name:        "image_process",
			Description: "Run a recipe: a source, a list of steps (resize, crop, circle, watermark, text, quality, thumb) and an output. Returns base64 data when the recipe names no output.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": prop("string", "Image path, http(s) URL, data URI or base64 payload"),
					"base64": prop("boolean", "Treat source as a base64 payload"),
					"steps": map[string]interface{}{
						"type":        "array",
						"description": "Operations applied in order; each has an \"op\" field plus that operation's parameters",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"op": map[string]interface{}{
									"type": "string",
									"enum": []string{"resize", "crop", "circle", "watermark", "text", "quality", "thumb"},
								},
							},
							"required": []string{"op"},
						},
					},
					"output": map[string]interface{}{
						"type":        "object",
						"description": "Targets: path, base64 (with header), upload (with folder and filename)",
					},
				},
				"required": []string{"source"},
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
