// Package detection turns an edge map into raw line segments.
//
// It is the upstream collaborator of the lane pipeline: DetectSegments runs a
// Hough transform over the edge pixels, then walks each accumulator peak to
// split the supporting pixels into segments wherever the gap between them
// exceeds the allowed maximum. The output is deliberately noisy (duplicates,
// fragments, off-angle clutter); the lane package cleans it up.
//
// Coordinates follow the image convention: origin at the top-left, X to the
// right, Y downward.
package detection
