package lane

import (
	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

// Classify splits segments into left and right groups relative to the frame.
//
// A segment is left when its midpoint is left of center and its slope is below
// -LeftSlopeThreshold, and right when its midpoint is right of center and its
// slope is above RightSlopeThreshold. Segments whose midpoint falls outside the
// frame are off-frame detections and are dropped, as is anything matching
// neither rule (cross traffic, shadows). Both groups may be empty.
func Classify(segments []geometry.Segment, frame geometry.Frame, cfg Config) (left, right SideGroup) {
	left = SideGroup{Side: SideLeft, Segments: []geometry.Segment{}}
	right = SideGroup{Side: SideRight, Segments: []geometry.Segment{}}

	center := frame.CenterX()
	for _, s := range segments {
		side, ok := classifyOne(s, frame, center, cfg)
		if !ok {
			continue
		}
		if side == SideLeft {
			left.Segments = append(left.Segments, s)
		} else {
			right.Segments = append(right.Segments, s)
		}
	}
	return left, right
}

// ClassifySegment returns the side of a single segment, or false when it is
// rejected.
func ClassifySegment(s geometry.Segment, frame geometry.Frame, cfg Config) (Side, bool) {
	return classifyOne(s, frame, frame.CenterX(), cfg)
}

func classifyOne(s geometry.Segment, frame geometry.Frame, center float64, cfg Config) (Side, bool) {
	mid := s.Midpoint()
	if !frame.Contains(mid) {
		return "", false
	}
	m := geometry.Slope(s)
	if geometry.IsInfinite(m) {
		return "", false
	}
	switch {
	case mid.X < center && m < -cfg.LeftSlopeThreshold:
		return SideLeft, true
	case mid.X > center && m > cfg.RightSlopeThreshold:
		return SideRight, true
	}
	return "", false
}
