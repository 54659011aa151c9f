package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "lane_detect").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool failed")
		return errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.log.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool completed")

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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Frame Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_evict":
		return s.handleImageEvict(args)

	// Segment Pipeline
	case "lane_analyze_segments":
		return s.handleAnalyzeSegments(args)
	case "lane_process_batch":
		return s.handleProcessBatch(ctx, args)

	// Image Pipeline
	case "lane_detect":
		return s.handleLaneDetect(args)
	case "lane_overlay":
		return s.handleLaneOverlay(args)
	case "lane_edge_detect":
		return s.handleEdgeDetect(args)

	// Configuration
	case "lane_config":
		return s.cfg, nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// pipelineFor returns the server pipeline, or a new one built from the
// configured lane settings with overrides applied on top.
func (s *Server) pipelineFor(overrides json.RawMessage) (*lane.Pipeline, error) {
	trimmed := bytes.TrimSpace(overrides)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return s.pipeline, nil
	}

	cfg := s.cfg.Lane
	if err := json.Unmarshal(trimmed, &cfg); err != nil {
		return nil, fmt.Errorf("invalid lane overrides: %w", err)
	}
	return lane.NewPipeline(cfg, s.base)
}

// detect loads path and runs segment detection on it.
func (s *Server) detect(path string) (*detection.FrameDetection, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return detection.DetectFrame(img, s.cfg.Preprocess, s.cfg.Detection)
}

// === Frame Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

type imageEvictArgs struct {
	Path string `json:"path"`
}

// EvictResult is the response of image_evict.
type EvictResult struct {
	Evicted int `json:"evicted"`
	Cached  int `json:"cached"`
}

func (s *Server) handleImageEvict(args json.RawMessage) (interface{}, error) {
	var a imageEvictArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	out := &EvictResult{}
	if a.Path == "" {
		out.Evicted = s.cache.Len()
		s.cache.Clear()
	} else if s.cache.Evict(a.Path) {
		out.Evicted = 1
	}
	out.Cached = s.cache.Len()
	return out, nil
}

// === Segment Pipeline Handlers ===

type analyzeSegmentsArgs struct {
	Frame    geometry.Frame     `json:"frame"`
	Segments []geometry.Segment `json:"segments"`
	Lane     json.RawMessage    `json:"lane"`
}

func (s *Server) handleAnalyzeSegments(args json.RawMessage) (interface{}, error) {
	var a analyzeSegmentsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.Lane)
	if err != nil {
		return nil, err
	}
	return p.Process(a.Frame, a.Segments)
}

type processBatchArgs struct {
	Frames  []lane.FrameInput `json:"frames"`
	Workers int               `json:"workers"`
	Lane    json.RawMessage   `json:"lane"`
}

// BatchFrame is one entry of a lane_process_batch response.
type BatchFrame struct {
	Index  int          `json:"index"`
	ID     string       `json:"id,omitempty"`
	Result *lane.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// BatchResult is the response of lane_process_batch.
type BatchResult struct {
	BatchID string       `json:"batch_id"`
	Frames  []BatchFrame `json:"frames"`
	Failed  int          `json:"failed"`
}

func (s *Server) handleProcessBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a processBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Workers == 0 {
		a.Workers = s.cfg.Workers
	}
	p, err := s.pipelineFor(a.Lane)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	log := s.log.With().Str("batch_id", batchID).Logger()
	log.Info().Int("frames", len(a.Frames)).Int("workers", a.Workers).Msg("processing batch")

	results, err := p.ProcessBatch(ctx, a.Frames, a.Workers)
	if err != nil {
		return nil, err
	}

	out := &BatchResult{BatchID: batchID, Frames: make([]BatchFrame, len(results))}
	for i, r := range results {
		out.Frames[i] = BatchFrame{Index: r.Index, ID: r.ID, Result: r.Result}
		if r.Err != nil {
			out.Frames[i].Error = r.Err.Error()
			out.Failed++
		}
	}
	if out.Failed > 0 {
		log.Warn().Int("failed", out.Failed).Msg("batch had failing frames")
	}
	return out, nil
}

// === Image Pipeline Handlers ===

type laneDetectArgs struct {
	Path             string          `json:"path"`
	Lane             json.RawMessage `json:"lane"`
	IncludeSegments  bool            `json:"include_segments"`
	ClassifyMarkings *bool           `json:"classify_markings"`
}

// DetectResult is the response of lane_detect.
type DetectResult struct {
	Frame    geometry.Frame     `json:"frame"`
	Scale    float64            `json:"scale"`
	ROITop   int                `json:"roi_top"`
	Detected int                `json:"detected_segments"`
	Segments []geometry.Segment `json:"segments,omitempty"`
	Markings []imaging.Marking  `json:"markings,omitempty"`
	*lane.Result
}

func (s *Server) handleLaneDetect(args json.RawMessage) (interface{}, error) {
	var a laneDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.Lane)
	if err != nil {
		return nil, err
	}

	det, err := s.detect(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := p.Process(det.Frame, det.Segments)
	if err != nil {
		return nil, err
	}

	out := &DetectResult{
		Frame:    det.Frame,
		Scale:    det.Prepared.Scale,
		ROITop:   det.Prepared.ROI.Min.Y,
		Detected: len(det.Segments),
		Result:   res,
	}
	if a.IncludeSegments {
		out.Segments = det.Segments
	}
	if a.ClassifyMarkings == nil || *a.ClassifyMarkings {
		roi := det.Prepared.ROI
		for _, lines := range [][]lane.LaneLine{res.LeftLines, res.RightLines} {
			for _, l := range lines {
				out.Markings = append(out.Markings, imaging.ClassifyMarking(det.Prepared.Working, l, roi.Min.Y, roi.Max.Y-1))
			}
		}
	}
	return out, nil
}

type laneOverlayArgs struct {
	Path         string          `json:"path"`
	Lane         json.RawMessage `json:"lane"`
	ShowSegments *bool           `json:"show_segments"`
}

func (s *Server) handleLaneOverlay(args json.RawMessage) (interface{}, error) {
	var a laneOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.Lane)
	if err != nil {
		return nil, err
	}

	det, err := s.detect(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := p.Process(det.Frame, det.Segments)
	if err != nil {
		return nil, err
	}

	style := s.cfg.Overlay
	if a.ShowSegments != nil {
		style.ShowSegments = *a.ShowSegments
	}
	return imaging.RenderOverlay(det.Prepared.Working, res, det.Prepared.ROI, style)
}

type edgeDetectArgs struct {
	Path        string   `json:"path"`
	CannyLow    *int     `json:"canny_low"`
	CannyHigh   *int     `json:"canny_high"`
	ROIFraction *float64 `json:"roi_fraction"`
}

func (s *Server) handleEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a edgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.cfg.Preprocess
	if a.CannyLow != nil {
		opts.CannyLow = *a.CannyLow
	}
	if a.CannyHigh != nil {
		opts.CannyHigh = *a.CannyHigh
	}
	if a.ROIFraction != nil {
		opts.ROIFraction = *a.ROIFraction
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, opts)
}
