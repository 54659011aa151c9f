package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the tolerance below which a coordinate difference or slope is
// treated as zero.
const Epsilon = 1e-6

// Infinite is the sentinel returned for vertical slopes and for rows where a
// horizontal line has no unique x.
var Infinite = math.Inf(1)

// ErrInvalidFrame is returned by NewFrame for non-positive dimensions.
var ErrInvalidFrame = errors.New("invalid frame dimensions")

// IsInfinite reports whether v is the Infinite sentinel (or any infinity).
func IsInfinite(v float64) bool {
	return math.IsInf(v, 0)
}

// Point is a 2D point in pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a detected line segment between (X1,Y1) and (X2,Y2).
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// NewSegment builds a Segment from its four coordinates.
func NewSegment(x1, y1, x2, y2 float64) Segment {
	return Segment{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// IsVertical reports whether the segment's x extent is below Epsilon.
func (s Segment) IsVertical() bool {
	return math.Abs(s.X2-s.X1) < Epsilon
}

// DX returns the absolute horizontal extent of the segment.
func (s Segment) DX() float64 {
	return math.Abs(s.X2 - s.X1)
}

// Start returns the first endpoint.
func (s Segment) Start() Point { return Point{X: s.X1, Y: s.Y1} }

// End returns the second endpoint.
func (s Segment) End() Point { return Point{X: s.X2, Y: s.Y2} }

// Midpoint returns the point halfway between the endpoints.
func (s Segment) Midpoint() Point {
	return Point{X: (s.X1 + s.X2) / 2, Y: (s.Y1 + s.Y2) / 2}
}

// MidX returns the x coordinate of the midpoint.
func (s Segment) MidX() float64 {
	return (s.X1 + s.X2) / 2
}

// String implements fmt.Stringer.
func (s Segment) String() string {
	return fmt.Sprintf("(%.1f,%.1f)-(%.1f,%.1f)", s.X1, s.Y1, s.X2, s.Y2)
}

// SlopeIntercept returns the slope and y-intercept of the line through s.
//
// For a vertical segment it returns (Infinite, s.X1): the intercept slot
// carries the constant x of the line so XAtY can still evaluate it.
func SlopeIntercept(s Segment) (slope, intercept float64) {
	if s.IsVertical() {
		return Infinite, s.X1
	}
	slope = (s.Y2 - s.Y1) / (s.X2 - s.X1)
	intercept = s.Y1 - slope*s.X1
	return slope, intercept
}

// Slope returns the slope of s, or Infinite for a vertical segment.
func Slope(s Segment) float64 {
	m, _ := SlopeIntercept(s)
	return m
}

// Length returns the Euclidean distance between the endpoints.
func Length(s Segment) float64 {
	return math.Hypot(s.X2-s.X1, s.Y2-s.Y1)
}

// XAtY solves x = (y-b)/m for the line y = m*x + b.
//
// A horizontal line (|m| < Epsilon) has no unique x and yields Infinite. A
// vertical line (m Infinite) is x = b, so b is returned for every y.
func XAtY(slope, intercept, y float64) float64 {
	if IsInfinite(slope) {
		return intercept
	}
	if math.Abs(slope) < Epsilon {
		return Infinite
	}
	return (y - intercept) / slope
}

// YAtX evaluates y = m*x + b. Vertical lines yield Infinite.
func YAtX(slope, intercept, x float64) float64 {
	if IsInfinite(slope) {
		return Infinite
	}
	return slope*x + intercept
}

// Clamp constrains v to [lo, hi]. Infinities clamp to the nearest bound.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
