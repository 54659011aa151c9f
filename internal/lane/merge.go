package lane

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

// MergeSide fits one LaneLine through every segment of a side group.
//
// An empty group yields false. A single segment is used unchanged. Several
// segments are reduced to a least-squares line through the union of their
// endpoints; each segment contributes exactly two points, so the fit is
// weighted per endpoint rather than by segment length.
//
// When every endpoint shares the same x, or the fit comes out flat or with the
// wrong sign for the side, the longest original segment is used instead.
func MergeSide(group SideGroup, frame geometry.Frame) (LaneLine, bool) {
	if len(group.Segments) == 0 {
		return LaneLine{}, false
	}

	longest := longestSegment(group.Segments)
	support := supportSpan(group.Segments)

	if len(group.Segments) == 1 {
		m, b := geometry.SlopeIntercept(longest)
		line := Extend(group.Side, m, b, support, frame)
		line.Segments = 1
		line.RSquared = 1
		return line, true
	}

	xs := make([]float64, 0, 2*len(group.Segments))
	ys := make([]float64, 0, 2*len(group.Segments))
	for _, s := range group.Segments {
		xs = append(xs, s.X1, s.X2)
		ys = append(ys, s.Y1, s.Y2)
	}

	if sameX(xs) {
		return fallbackLine(group, longest, support, frame), true
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if !slopeMatchesSide(group.Side, slope) || math.IsNaN(slope) {
		return fallbackLine(group, longest, support, frame), true
	}

	line := Extend(group.Side, slope, intercept, support, frame)
	line.Segments = len(group.Segments)
	line.RSquared = stat.RSquared(xs, ys, nil, intercept, slope)
	line.Fitted = true
	return line, true
}

// LinesFromGroup turns every segment of a group into its own candidate
// LaneLine without merging. Used for multi-lane scenes.
func LinesFromGroup(group SideGroup, frame geometry.Frame) []LaneLine {
	lines := make([]LaneLine, 0, len(group.Segments))
	for _, s := range group.Segments {
		single := SideGroup{Side: group.Side, Segments: []geometry.Segment{s}}
		if line, ok := MergeSide(single, frame); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func fallbackLine(group SideGroup, longest geometry.Segment, support Span, frame geometry.Frame) LaneLine {
	m, b := geometry.SlopeIntercept(longest)
	line := Extend(group.Side, m, b, support, frame)
	line.Segments = len(group.Segments)
	return line
}

func slopeMatchesSide(side Side, slope float64) bool {
	if math.Abs(slope) < geometry.Epsilon {
		return false
	}
	if side == SideLeft {
		return slope < 0
	}
	return slope > 0
}

func sameX(xs []float64) bool {
	for _, x := range xs[1:] {
		if math.Abs(x-xs[0]) >= geometry.Epsilon {
			return false
		}
	}
	return true
}

// longestSegment returns the longest segment; ties keep the first.
func longestSegment(segments []geometry.Segment) geometry.Segment {
	best := segments[0]
	bestLen := geometry.Length(best)
	for _, s := range segments[1:] {
		if l := geometry.Length(s); l > bestLen {
			best, bestLen = s, l
		}
	}
	return best
}

func supportSpan(segments []geometry.Segment) Span {
	span := Span{MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for _, s := range segments {
		span.MinY = math.Min(span.MinY, math.Min(s.Y1, s.Y2))
		span.MaxY = math.Max(span.MaxY, math.Max(s.Y1, s.Y2))
	}
	return span
}
