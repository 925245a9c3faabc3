package server

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/iluckin/image/internal/imaging"
	"github.com/iluckin/image/internal/recipe"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_info", "image_resize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments jsoniter.RawMessage `json:"arguments"`
}

// toolOps maps the single-operation tools to recipe operations.
var toolOps = map[string]string{
	"image_resize":    recipe.OpResize,
	"image_thumb":     recipe.OpThumb,
	"image_crop":      recipe.OpCrop,
	"image_circle":    recipe.OpCircle,
	"image_watermark": recipe.OpWatermark,
	"image_text":      recipe.OpText,
	"image_quality":   recipe.OpQuality,
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed",
			zap.String("tool", params.Name),
			zap.String("kind", string(imaging.KindOf(err))),
			zap.Error(err),
		)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args jsoniter.RawMessage) (interface{}, error) {
	switch name {
	case "image_info":
		return s.handleImageInfo(ctx, args)
	case "image_process":
		return s.handleImageProcess(ctx, args)
	}

	op, ok := toolOps[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return s.handleImageStep(ctx, op, args)
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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// sourceArgs are shared by every tool that reads an image.
type sourceArgs struct {
	Source     string `json:"source"`
	IsBase64   bool   `json:"is_base64"`
	OutputPath string `json:"output_path"`
	Upload     bool   `json:"upload"`
	Folder     string `json:"folder"`
	Header     bool   `json:"header"`
	OmitData   bool   `json:"omit_data"`
}

func (a sourceArgs) output() recipe.Output {
	return recipe.Output{
		Path:   a.OutputPath,
		Base64: !a.OmitData,
		Header: a.Header,
		Upload: a.Upload,
		Folder: a.Folder,
	}
}

func (s *Server) handleImageInfo(ctx context.Context, args jsoniter.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Source == "" {
		return nil, fmt.Errorf("source is required")
	}

	loader := s.runner.Loader()
	var (
		im  *imaging.Image
		err error
	)
	if a.IsBase64 {
		im, err = loader.LoadString(a.Source, true)
	} else {
		im, err = loader.Open(ctx, a.Source)
	}
	if err != nil {
		return nil, err
	}
	return im.Info(), nil
}

type imageStepArgs struct {
	sourceArgs
	recipe.Step
}

func (s *Server) handleImageStep(ctx context.Context, op string, args jsoniter.RawMessage) (interface{}, error) {
	var a imageStepArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	a.Op = op

	rc := &recipe.Recipe{
		Source: a.Source,
		Base64: a.IsBase64,
		Steps:  []recipe.Step{a.Step},
		Output: a.output(),
	}
	if err := rc.Normalize(); err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, rc)
}

// handleImageProcess runs a full recipe. A recipe without any output target
// returns the image as base64.
func (s *Server) handleImageProcess(ctx context.Context, args jsoniter.RawMessage) (interface{}, error) {
	rc, err := recipe.Parse(args)
	if err != nil {
		return nil, err
	}
	out := rc.Output
	if out.Path == "" && !out.Upload && !out.Base64 {
		rc.Output.Base64 = true
	}
	return s.runner.Run(ctx, rc)
}
