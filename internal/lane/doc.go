// Package lane turns the noisy line segments of one camera frame into lane
// boundaries and a steering recommendation.
//
// # Pipeline
//
// Data flows strictly through five stages, each a plain function that can be
// called on its own:
//
//  1. Deduplicate: drop noise, cluster near-identical segments, keep the longest
//  2. Classify: split into left and right groups relative to the frame center
//  3. MergeSide: least-squares fit of one LaneLine per side
//  4. Assemble: extend lines to full frame height and pair them into Lanes
//  5. Navigate: center offset, steering angle, direction and curvature
//
// Pipeline wires the stages together with a Config and a zerolog.Logger that
// receives one debug event per deduplication, per side merge and per frame.
//
// # Degenerate Input
//
// No stage fails on geometry. Empty input, vertical or horizontal lines, and a
// missing side all resolve to empty results or sentinels. The only error is an
// invalid frame (non-positive dimensions), which means the caller is
// misconfigured.
//
// When exactly one side is detected no Lane is produced; Navigation reports
// StatusSingleSide and estimates the center by offsetting the detected line by
// half of Config.SingleSideLaneWidth times the frame width.
//
// # Concurrency
//
// Nothing is shared between frames. ProcessBatch and Stream fan frames out over
// a bounded errgroup and hand results back in input order.
package lane
