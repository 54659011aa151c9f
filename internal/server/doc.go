// Package server implements the MCP (Model Context Protocol) server for lane
// detection tools.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - Input: JSON-RPC requests on stdin
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr (and optionally a log file), never stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frame Information:
//   - image_load: Load a camera frame and get its metadata
//   - image_evict: Drop one cached frame, or clear the frame cache
//
// Segment Pipeline (no image needed):
//   - lane_analyze_segments: Run the lane pipeline on one frame's segments
//   - lane_process_batch: Run the pipeline on many frames concurrently
//
// Image Pipeline:
//   - lane_detect: Detect segments in a frame and run the lane pipeline
//   - lane_overlay: Draw detected lanes and steering on the frame
//   - lane_edge_detect: Canny edge map of the region of interest
//
// Configuration:
//   - lane_config: Effective configuration
//
// # Frame Caching
//
// Decoded frames are cached by path for the lifetime of the process, so
// lane_detect and lane_overlay on the same path decode it once.
//
// # Error Handling
//
// Tool failures return a JSON-RPC error with code -32000 and the Go error
// string as data. Malformed tools/call params return -32602.
//
// # Usage
//
//	srv, err := server.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
