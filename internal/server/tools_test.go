package server

import (
	"testing"
)

func toolMap() map[string]Tool {
	m := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		m[tool.Name] = tool
	}
	return m
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_info",
		"image_resize",
		"image_thumb",
		"image_crop",
		"image_circle",
		"image_watermark",
		"image_text",
		"image_quality",
		"image_process",
	}

	m := toolMap()
	for _, name := range expectedTools {
		if _, ok := m[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_EveryOpToolIsDispatched(t *testing.T) {
	m := toolMap()
	for name := range toolOps {
		if _, ok := m[name]; !ok {
			t.Errorf("toolOps has %s but no definition", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema properties missing")
			}

			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required parameter %s has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredSource(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			required := tool.InputSchema["required"].([]string)
			hasSource := false
			for _, r := range required {
				if r == "source" {
					hasSource = true
				}
			}
			if !hasSource {
				t.Error("tool should require 'source'")
			}
		})
	}
}

func TestToolDefinitions_DefaultValues(t *testing.T) {
	tests := []struct {
		tool, param string
		want        interface{}
	}{
		{"image_resize", "mode", "lfit"},
		{"image_thumb", "min_size", 1080},
		{"image_thumb", "quality", 80},
		{"image_crop", "quality", 80},
		{"image_text", "font_size", 25},
		{"image_text", "font_weight", 100},
		{"image_text", "fill_color", "#ffffff"},
	}

	m := toolMap()
	for _, tt := range tests {
		props := m[tt.tool].InputSchema["properties"].(map[string]interface{})
		param, ok := props[tt.param].(map[string]interface{})
		if !ok {
			t.Errorf("%s.%s: missing", tt.tool, tt.param)
			continue
		}
		if param["default"] != tt.want {
			t.Errorf("%s.%s: default got %v, want %v", tt.tool, tt.param, param["default"], tt.want)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
