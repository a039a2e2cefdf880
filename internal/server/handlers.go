package server

import (
	"encoding/json"
	"fmt"

	"github.com/vulturest/keypoint-tools/internal/annotate"
	"github.com/vulturest/keypoint-tools/internal/corners"
	"github.com/vulturest/keypoint-tools/internal/imaging"
	"github.com/vulturest/keypoint-tools/internal/matching"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "detect_corners").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified
// tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images through the shared cache
//  4. Calls the appropriate corners/matching/annotate function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Corner Detection
	case "detect_corners":
		return s.handleDetectCorners(args)
	case "extract_corners":
		return s.handleExtractCorners(args)

	// Template Matching
	case "match_template":
		return s.handleMatchTemplate(args)

	// Visualization
	case "annotate_corners":
		return s.handleAnnotateCorners(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Corner Detection Handlers ===

type detectCornersArgs struct {
	Path         string   `json:"path"`
	MaxCorners   *int     `json:"max_corners"`
	QualityLevel float64  `json:"quality_level"`
	MinDistance  *float64 `json:"min_distance"`
	BlockSize    int      `json:"block_size"`
	UseHarris    bool     `json:"use_harris"`
	HarrisK      float64  `json:"harris_k"`
	SmoothSigma  float64  `json:"smooth_sigma"`
	MaskPath     string   `json:"mask_path"`
	Equalize     bool     `json:"equalize"`
}

// options converts tool arguments to detector options, filling the
// documented defaults for fields the client omitted. MaxCorners and
// MinDistance use pointers so an explicit zero (unbounded / no spacing)
// stays distinguishable from an omitted field.
func (a *detectCornersArgs) options() corners.Options {
	opts := corners.DefaultOptions()
	if a.MaxCorners != nil {
		opts.MaxCorners = *a.MaxCorners
	}
	if a.QualityLevel != 0 {
		opts.QualityLevel = a.QualityLevel
	}
	if a.MinDistance != nil {
		opts.MinDistance = *a.MinDistance
	}
	if a.BlockSize != 0 {
		opts.BlockSize = a.BlockSize
	}
	opts.UseHarris = a.UseHarris
	if a.HarrisK != 0 {
		opts.HarrisK = a.HarrisK
	}
	opts.SmoothSigma = a.SmoothSigma
	return opts
}

// detect runs corner detection for the given arguments, loading the image
// and the optional mask through the cache.
func (s *Server) detect(a *detectCornersArgs) (*corners.Result, error) {
	gray, err := imaging.LoadGray(s.cache, a.Path, a.Equalize)
	if err != nil {
		return nil, err
	}
	opts := a.options()
	if a.MaskPath != "" {
		mask, err := imaging.LoadGray(s.cache, a.MaskPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to load mask: %w", err)
		}
		opts.Mask = mask
	}
	return corners.Detect(gray, opts)
}

func (s *Server) handleDetectCorners(args json.RawMessage) (interface{}, error) {
	var a detectCornersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.detect(&a)
}

type extractCornersArgs struct {
	Path     string `json:"path"`
	Equalize bool   `json:"equalize"`
}

func (s *Server) handleExtractCorners(args json.RawMessage) (interface{}, error) {
	var a extractCornersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	gray, err := imaging.LoadGray(s.cache, a.Path, a.Equalize)
	if err != nil {
		return nil, err
	}
	return corners.ExtractCorners(gray)
}

// === Template Matching Handlers ===

type matchTemplateArgs struct {
	Path         string `json:"path"`
	TemplatePath string `json:"template_path"`
}

// matchTemplateResult reports only the best placement; the full score map
// is too large to be useful over the protocol.
type matchTemplateResult struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Score float64 `json:"score"`
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
}

func (s *Server) handleMatchTemplate(args json.RawMessage) (interface{}, error) {
	var a matchTemplateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	stripe, err := imaging.LoadGray(s.cache, a.Path, false)
	if err != nil {
		return nil, err
	}
	templ, err := imaging.LoadGray(s.cache, a.TemplatePath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	result, err := matching.MatchTemplate(stripe, templ)
	if err != nil {
		return nil, err
	}
	x, y, score := result.Best()
	return &matchTemplateResult{X: x, Y: y, Score: score, Rows: result.Rows, Cols: result.Cols}, nil
}

// === Visualization Handlers ===

type annotateCornersArgs struct {
	detectCornersArgs
	OutputPath string `json:"output_path"`
	Marker     string `json:"marker"`
	ShowScores bool   `json:"show_scores"`
}

type annotateCornersResult struct {
	OutputPath string `json:"output_path"`
	Count      int    `json:"count"`
}

func (s *Server) handleAnnotateCorners(args json.RawMessage) (interface{}, error) {
	var a annotateCornersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, fmt.Errorf("output_path is required")
	}

	result, err := s.detect(&a.detectCornersArgs)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	style := annotate.Style{ShowScores: a.ShowScores}
	switch a.Marker {
	case "", "circle":
		out := annotate.DrawCorners(img, result.Corners, result.Scores, style)
		if err := imaging.SaveImage(out, a.OutputPath); err != nil {
			return nil, err
		}
	case "cross":
		out := annotate.DrawCrosses(img, result.Corners, result.Scores, style)
		if err := imaging.SaveImage(out, a.OutputPath); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown marker: %s", a.Marker)
	}

	return &annotateCornersResult{OutputPath: a.OutputPath, Count: result.Count}, nil
}
