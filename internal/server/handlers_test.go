package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/lane-tools-mcp/internal/config"
	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// createTestImageFile writes img as a PNG in a temp dir and returns its path.
func createTestImageFile(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))
	return path
}

// roadImage paints two bright boundaries on dark asphalt, converging toward
// the top of the frame.
func roadImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	asphalt := color.RGBA{40, 40, 45, 255}
	paint := color.RGBA{240, 240, 240, 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, asphalt)
		}
	}
	for y := height / 2; y < height; y++ {
		d := y - height/2
		for w := -2; w <= 2; w++ {
			img.Set(width/2-20-d+w, y, paint)
			img.Set(width/2+20+d+w, y, paint)
		}
	}
	return img
}

// callTool issues a tools/call request and returns the tool's JSON text, or
// the error if the call failed.
func callTool(t *testing.T, s *Server, name string, args interface{}) (string, *MCPError) {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	require.NoError(t, err)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	require.NotNil(t, resp)
	if resp.Error != nil {
		return "", resp.Error
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])
	return content[0]["text"].(string), nil
}

func mustCallTool(t *testing.T, s *Server, name string, args interface{}, out interface{}) {
	t.Helper()
	text, mcpErr := callTool(t, s, name, args)
	require.Nil(t, mcpErr, "tool %s failed: %+v", name, mcpErr)
	require.NoError(t, json.Unmarshal([]byte(text), out))
}

func twoLineSegments() []geometry.Segment {
	return []geometry.Segment{
		geometry.NewSegment(100, 480, 300, 300),
		geometry.NewSegment(700, 480, 500, 300),
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	_, mcpErr := callTool(t, s, "image_crop", map[string]interface{}{})
	require.NotNil(t, mcpErr)
	assert.Equal(t, codeToolFailed, mcpErr.Code)
	assert.Equal(t, "unknown tool: image_crop", mcpErr.Data)
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, roadImage(100, 80))

	var info imaging.FrameInfo
	mustCallTool(t, s, "image_load", map[string]interface{}{"path": path}, &info)
	assert.Equal(t, 100, info.Width)
	assert.Equal(t, 80, info.Height)
	assert.Equal(t, "png", info.Format)
	assert.Positive(t, info.FileSizeBytes)
	assert.Equal(t, 1, s.cache.Len())
}

func TestHandleToolsCall_ImageLoadMissing(t *testing.T) {
	s := newTestServer(t)
	_, mcpErr := callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/frame.png"})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "failed to open image")
}

func TestHandleToolsCall_ImageEvict(t *testing.T) {
	s := newTestServer(t)
	a := createTestImageFile(t, roadImage(40, 30))
	b := createTestImageFile(t, roadImage(50, 30))

	var info imaging.FrameInfo
	mustCallTool(t, s, "image_load", map[string]interface{}{"path": a}, &info)
	mustCallTool(t, s, "image_load", map[string]interface{}{"path": b}, &info)

	var got EvictResult
	mustCallTool(t, s, "image_evict", map[string]interface{}{"path": a}, &got)
	assert.Equal(t, EvictResult{Evicted: 1, Cached: 1}, got)

	mustCallTool(t, s, "image_evict", map[string]interface{}{"path": a}, &got)
	assert.Equal(t, EvictResult{Evicted: 0, Cached: 1}, got)

	mustCallTool(t, s, "image_evict", map[string]interface{}{}, &got)
	assert.Equal(t, EvictResult{Evicted: 1, Cached: 0}, got)
	assert.Zero(t, s.cache.Len())
}

func TestHandleToolsCall_AnalyzeSegments(t *testing.T) {
	s := newTestServer(t)
	frame := geometry.Frame{Height: 480, Width: 800}

	var got lane.Result
	mustCallTool(t, s, "lane_analyze_segments", map[string]interface{}{
		"frame":    frame,
		"segments": twoLineSegments(),
	}, &got)

	want, err := s.pipeline.Process(frame, twoLineSegments())
	require.NoError(t, err)

	if diff := cmp.Diff(*want, got, cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("lane_analyze_segments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, lane.StatusLane, got.Navigation.Status)
	assert.Equal(t, lane.DirectionForward, got.Navigation.Direction)
}

func TestHandleToolsCall_AnalyzeSegmentsEmpty(t *testing.T) {
	s := newTestServer(t)

	var got lane.Result
	mustCallTool(t, s, "lane_analyze_segments", map[string]interface{}{
		"frame":    map[string]int{"height": 480, "width": 800},
		"segments": []geometry.Segment{},
	}, &got)
	assert.Empty(t, got.Lanes)
	assert.Equal(t, lane.StatusNoLane, got.Navigation.Status)
	assert.Equal(t, "No lane detected, searching...", got.Navigation.Message)
}

func TestHandleToolsCall_AnalyzeSegmentsInvalidFrame(t *testing.T) {
	s := newTestServer(t)
	_, mcpErr := callTool(t, s, "lane_analyze_segments", map[string]interface{}{
		"frame":    map[string]int{"height": 0, "width": 800},
		"segments": twoLineSegments(),
	})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, geometry.ErrInvalidFrame.Error())
}

func TestHandleToolsCall_AnalyzeSegmentsOverrides(t *testing.T) {
	s := newTestServer(t)
	frame := geometry.Frame{Height: 480, Width: 800}

	// Both boundaries have |slope| 0.9; raising the side thresholds above it
	// rejects every segment.
	var got lane.Result
	mustCallTool(t, s, "lane_analyze_segments", map[string]interface{}{
		"frame":    frame,
		"segments": twoLineSegments(),
		"lane":     map[string]interface{}{"left_slope_threshold": 1.0, "right_slope_threshold": 1.0},
	}, &got)
	assert.Len(t, got.Deduplicated, 2)
	assert.Empty(t, got.Lanes)
	assert.Equal(t, lane.StatusNoLane, got.Navigation.Status)

	// The server pipeline is unchanged.
	assert.Equal(t, lane.DefaultConfig(), s.pipeline.Config())

	_, mcpErr := callTool(t, s, "lane_analyze_segments", map[string]interface{}{
		"frame":    frame,
		"segments": twoLineSegments(),
		"lane":     map[string]interface{}{"slope_tolerance": 0},
	})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "invalid lane config")
}

func TestHandleToolsCall_ProcessBatch(t *testing.T) {
	s := newTestServer(t)

	frames := []map[string]interface{}{
		{"id": "a", "frame": map[string]int{"height": 480, "width": 800}, "segments": twoLineSegments()},
		{"id": "b", "frame": map[string]int{"height": 0, "width": 800}, "segments": twoLineSegments()},
		{"id": "c", "frame": map[string]int{"height": 480, "width": 800}, "segments": []geometry.Segment{}},
	}

	var got BatchResult
	mustCallTool(t, s, "lane_process_batch", map[string]interface{}{"frames": frames, "workers": 2}, &got)

	_, err := uuid.Parse(got.BatchID)
	assert.NoError(t, err)
	require.Len(t, got.Frames, 3)
	assert.Equal(t, 1, got.Failed)

	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, i, got.Frames[i].Index)
		assert.Equal(t, id, got.Frames[i].ID)
	}
	require.NotNil(t, got.Frames[0].Result)
	assert.Equal(t, lane.StatusLane, got.Frames[0].Result.Navigation.Status)
	assert.Nil(t, got.Frames[1].Result)
	assert.Contains(t, got.Frames[1].Error, geometry.ErrInvalidFrame.Error())
	require.NotNil(t, got.Frames[2].Result)
	assert.Equal(t, lane.StatusNoLane, got.Frames[2].Result.Navigation.Status)
}

func TestHandleToolsCall_ProcessBatchOverrides(t *testing.T) {
	s := newTestServer(t)
	frame := map[string]int{"height": 480, "width": 800}
	overrides := map[string]interface{}{"max_slope": 0.5}

	// |slope| 0.9 exceeds max_slope, so both boundaries are filtered out.
	var single lane.Result
	mustCallTool(t, s, "lane_analyze_segments", map[string]interface{}{
		"frame":    frame,
		"segments": twoLineSegments(),
		"lane":     overrides,
	}, &single)
	assert.Empty(t, single.Lanes)

	var got BatchResult
	mustCallTool(t, s, "lane_process_batch", map[string]interface{}{
		"frames": []map[string]interface{}{{"frame": frame, "segments": twoLineSegments()}},
		"lane":   overrides,
	}, &got)
	require.Len(t, got.Frames, 1)
	require.NotNil(t, got.Frames[0].Result)
	assert.Empty(t, got.Frames[0].Result.Lanes)
	assert.Equal(t, lane.StatusNoLane, got.Frames[0].Result.Navigation.Status)

	_, mcpErr := callTool(t, s, "lane_process_batch", map[string]interface{}{
		"frames": []interface{}{},
		"lane":   map[string]interface{}{"max_steering_angle": 0},
	})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "invalid lane config")
}

func TestHandleToolsCall_ProcessBatchDefaultWorkers(t *testing.T) {
	s := newTestServer(t)

	var got BatchResult
	mustCallTool(t, s, "lane_process_batch", map[string]interface{}{"frames": []interface{}{}}, &got)
	assert.NotEmpty(t, got.BatchID)
	assert.Empty(t, got.Frames)
	assert.Zero(t, got.Failed)
}

// detectResponse mirrors the JSON shape of DetectResult.
type detectResponse struct {
	Frame      geometry.Frame     `json:"frame"`
	Scale      float64            `json:"scale"`
	ROITop     int                `json:"roi_top"`
	Detected   int                `json:"detected_segments"`
	Segments   []geometry.Segment `json:"segments"`
	Markings   []imaging.Marking  `json:"markings"`
	Navigation lane.Navigation    `json:"navigation"`
	LeftLines  []lane.LaneLine    `json:"left_lines"`
	RightLines []lane.LaneLine    `json:"right_lines"`
}

func TestHandleToolsCall_LaneDetect(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, roadImage(320, 240))

	var got detectResponse
	mustCallTool(t, s, "lane_detect", map[string]interface{}{
		"path":             path,
		"include_segments": true,
	}, &got)

	assert.Equal(t, geometry.Frame{Height: 240, Width: 320}, got.Frame)
	assert.Equal(t, 1.0, got.Scale)
	assert.Equal(t, 144, got.ROITop)
	assert.Positive(t, got.Detected)
	assert.Len(t, got.Segments, got.Detected)
	for _, seg := range got.Segments {
		assert.GreaterOrEqual(t, seg.Y1, 144.0)
		assert.GreaterOrEqual(t, seg.Y2, 144.0)
	}
	assert.Len(t, got.Markings, len(got.LeftLines)+len(got.RightLines))
	for _, m := range got.Markings {
		assert.NotEmpty(t, m.Side)
		assert.NotEqual(t, imaging.MarkingYellow, m.Color)
	}
	assert.NotEmpty(t, got.Navigation.Message)
}

func TestHandleToolsCall_LaneDetectOptions(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, roadImage(320, 240))

	var got detectResponse
	mustCallTool(t, s, "lane_detect", map[string]interface{}{
		"path":              path,
		"classify_markings": false,
	}, &got)
	assert.Empty(t, got.Segments)
	assert.Empty(t, got.Markings)
	assert.Positive(t, got.Detected)
}

func TestHandleToolsCall_LaneOverlay(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, roadImage(320, 240))

	var got imaging.OverlayResult
	mustCallTool(t, s, "lane_overlay", map[string]interface{}{
		"path":          path,
		"show_segments": true,
	}, &got)

	assert.Equal(t, 320, got.Width)
	assert.Equal(t, 240, got.Height)
	assert.Equal(t, "image/png", got.MimeType)

	data, err := base64.StdEncoding.DecodeString(got.ImageBase64)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
}

func TestHandleToolsCall_EdgeDetect(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, roadImage(320, 240))

	var def imaging.EdgeDetectResult
	mustCallTool(t, s, "lane_edge_detect", map[string]interface{}{"path": path}, &def)
	assert.Equal(t, 144, def.ROITop)
	assert.Equal(t, 96, def.Height)
	assert.Equal(t, 320, def.Width)
	assert.Positive(t, def.EdgePixels)

	var half imaging.EdgeDetectResult
	mustCallTool(t, s, "lane_edge_detect", map[string]interface{}{
		"path":         path,
		"roi_fraction": 0.5,
		"canny_low":    10,
		"canny_high":   40,
	}, &half)
	assert.Equal(t, 120, half.ROITop)
	assert.Equal(t, 120, half.Height)

	_, mcpErr := callTool(t, s, "lane_edge_detect", map[string]interface{}{
		"path":       path,
		"canny_low":  90,
		"canny_high": 40,
	})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "canny thresholds")
}

func TestHandleToolsCall_Config(t *testing.T) {
	s := newTestServer(t)

	var got config.Config
	mustCallTool(t, s, "lane_config", nil, &got)
	assert.Equal(t, config.Default(), got)
}

func TestExecuteTool_Cancelled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.executeTool(ctx, "lane_config", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
