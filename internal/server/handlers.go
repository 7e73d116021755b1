package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/edge-overlay/internal/capture"
	"github.com/ironsheep/edge-overlay/internal/dedup"
	"github.com/ironsheep/edge-overlay/internal/geometry"
	"github.com/ironsheep/edge-overlay/internal/pipeline"
	"github.com/ironsheep/edge-overlay/internal/scale"
)

// detectFileBudget bounds a single overlay_detect_file call. Still images can
// be far larger than a live frame, so the tick budget does not apply.
const detectFileBudget = 30 * time.Second

// errNoPipeline is returned by live tools when the server runs without one.
var errNoPipeline = errors.New("no overlay pipeline is running; start with 'edge-overlay serve'")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "overlay_snapshot").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Live overlay
	case "overlay_snapshot":
		return s.handleSnapshot()
	case "overlay_stats":
		return s.handleStats()

	// Line processing
	case "overlay_filter_lines":
		return s.handleFilterLines(args)
	case "overlay_normalize":
		return s.handleNormalize(args)
	case "overlay_detect_file":
		return s.handleDetectFile(args)

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

// === Live Overlay Handlers ===

func (s *Server) handleSnapshot() (interface{}, error) {
	if s.snapshots == nil {
		return nil, errNoPipeline
	}
	snap := s.snapshots.Latest()
	return &snap, nil
}

func (s *Server) handleStats() (interface{}, error) {
	if s.stats == nil {
		return nil, errNoPipeline
	}
	sum := s.stats.Summary()
	return &sum, nil
}

// === Line Processing Handlers ===

type filterLinesArgs struct {
	Lines             []geometry.Segment `json:"lines"`
	AngleThresholdDeg *float64           `json:"angle_threshold_deg"`
	DistanceThreshold *float64           `json:"distance_threshold"`
}

// FilterResult is the outcome of overlay_filter_lines.
type FilterResult struct {
	Lines      []geometry.Segment `json:"lines"`
	Input      int                `json:"input"`
	Duplicates int                `json:"duplicates"`
	Degenerate int                `json:"degenerate"`
}

func (s *Server) handleFilterLines(args json.RawMessage) (interface{}, error) {
	var a filterLinesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	th := s.cfg.Thresholds()
	if a.AngleThresholdDeg != nil {
		th.AngleDeg = *a.AngleThresholdDeg
	}
	if a.DistanceThreshold != nil {
		th.Distance = *a.DistanceThreshold
	}
	if th.AngleDeg < 0 || th.Distance < 0 {
		return nil, fmt.Errorf("thresholds must not be negative: angle %v, distance %v", th.AngleDeg, th.Distance)
	}

	mode, err := s.cfg.Mode()
	if err != nil {
		return nil, err
	}
	res := dedup.Apply(a.Lines, th, mode)
	return &FilterResult{
		Lines:      res.Lines,
		Input:      len(a.Lines),
		Duplicates: res.Duplicates,
		Degenerate: res.Degenerate,
	}, nil
}

type normalizeArgs struct {
	Lines         []geometry.Segment `json:"lines"`
	CaptureWidth  int                `json:"capture_width"`
	CaptureHeight int                `json:"capture_height"`
	DisplayWidth  int                `json:"display_width"`
	DisplayHeight int                `json:"display_height"`
}

// NormalizeResult is the outcome of overlay_normalize.
type NormalizeResult struct {
	Lines  []geometry.Segment `json:"lines"`
	ScaleX float64            `json:"scale_x"`
	ScaleY float64            `json:"scale_y"`
}

func (s *Server) handleNormalize(args json.RawMessage) (interface{}, error) {
	var a normalizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	f, err := scale.NewFactors(a.CaptureWidth, a.CaptureHeight, a.DisplayWidth, a.DisplayHeight)
	if err != nil {
		return nil, err
	}
	lines, err := scale.Normalize(a.Lines, f)
	if err != nil {
		return nil, err
	}
	return &NormalizeResult{Lines: lines, ScaleX: f.SX, ScaleY: f.SY}, nil
}

type detectFileArgs struct {
	Path          string `json:"path"`
	DisplayWidth  int    `json:"display_width"`
	DisplayHeight int    `json:"display_height"`
	MinVotes      int    `json:"min_votes"`
}

func (s *Server) handleDetectFile(args json.RawMessage) (interface{}, error) {
	var a detectFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	src, err := capture.NewFiles([]string{a.Path}, capture.WithCache(s.cache))
	if err != nil {
		return nil, err
	}
	// the file may change between calls
	defer s.cache.Evict(a.Path)

	params := s.cfg.Params()
	if a.MinVotes > 0 {
		params.MinVotes = a.MinVotes
	}
	mode, err := s.cfg.Mode()
	if err != nil {
		return nil, err
	}

	cfg := pipeline.Config{
		Source:     src,
		Oracle:     s.oracle,
		Params:     params,
		Thresholds: s.cfg.Thresholds(),
		FilterMode: mode,
		Budget:     detectFileBudget,
	}
	if a.DisplayWidth != 0 || a.DisplayHeight != 0 {
		cfg.Display = pipeline.FixedDisplay{Width: a.DisplayWidth, Height: a.DisplayHeight}
	}

	snap, err := pipeline.Once(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	// a single tick has no frame rate
	snap.FPS = 0
	return &snap, nil
}
