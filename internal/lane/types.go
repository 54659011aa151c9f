package lane

import (
	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

// Side identifies which half of the lane a line belongs to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// SideGroup is the set of segments assigned to one side. Order is irrelevant.
type SideGroup struct {
	Side     Side               `json:"side"`
	Segments []geometry.Segment `json:"segments"`
}

// Len returns the number of segments in the group.
func (g SideGroup) Len() int { return len(g.Segments) }

// Span is the vertical extent of the evidence a LaneLine was fitted from.
type Span struct {
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// CenterY returns the middle of the span.
func (s Span) CenterY() float64 { return (s.MinY + s.MaxY) / 2 }

// LaneLine is one fitted boundary line, extended to the full frame height.
//
// Top is evaluated at y=0 and Bottom at y=height-1; both x values are clamped
// to [0, width-1]. For a vertical line Slope is geometry.Infinite and
// Intercept holds the constant x.
type LaneLine struct {
	Side      Side           `json:"side"`
	Slope     float64        `json:"slope"`
	Intercept float64        `json:"intercept"`
	Top       geometry.Point `json:"top"`
	Bottom    geometry.Point `json:"bottom"`
	Support   Span           `json:"support"`
	Segments  int            `json:"segments"`
	RSquared  float64        `json:"r_squared"`
	Fitted    bool           `json:"fitted"`
}

// IsVertical reports whether the line is modeled as x = const.
func (l LaneLine) IsVertical() bool {
	return geometry.IsInfinite(l.Slope)
}

// XAt evaluates the unclamped line at row y.
func (l LaneLine) XAt(y float64) float64 {
	return geometry.XAtY(l.Slope, l.Intercept, y)
}

// Segment returns the extended line as a segment from Top to Bottom.
func (l LaneLine) Segment() geometry.Segment {
	return geometry.NewSegment(l.Top.X, l.Top.Y, l.Bottom.X, l.Bottom.Y)
}

// Lane is a paired left and right LaneLine describing one drivable corridor.
type Lane struct {
	Left  LaneLine `json:"left"`
	Right LaneLine `json:"right"`
}

// AverageY is the mean support-centre row of both lines; larger values are
// closer to the camera.
func (l Lane) AverageY() float64 {
	return (l.Left.Support.CenterY() + l.Right.Support.CenterY()) / 2
}

// Direction is the qualitative steering recommendation.
type Direction string

const (
	DirectionLeft    Direction = "left"
	DirectionRight   Direction = "right"
	DirectionForward Direction = "forward"
	DirectionNoLane  Direction = "no_lane"
)

// Message returns the operator-facing text for a direction.
func (d Direction) Message() string {
	switch d {
	case DirectionLeft:
		return "Steer Left"
	case DirectionRight:
		return "Steer Right"
	case DirectionForward:
		return "Go Forward"
	default:
		return "No lane detected, searching..."
	}
}

// CurvatureClass buckets curvature strength.
type CurvatureClass string

const (
	CurvatureStraight    CurvatureClass = "straight"
	CurvatureSlightCurve CurvatureClass = "slight_curve"
	CurvatureCurved      CurvatureClass = "curved"
	CurvatureUnknown     CurvatureClass = "unknown"
)

// Curvature describes how and where the lane bends.
type Curvature struct {
	Class       CurvatureClass `json:"class"`
	Direction   string         `json:"direction"` // left, right or none
	Strength    float64        `json:"strength"`  // [0,1]
	Asymmetry   float64        `json:"asymmetry"`
	CenterDrift float64        `json:"center_drift"`
	TopWidth    float64        `json:"top_width"`
	BottomWidth float64        `json:"bottom_width"`
}

// Status tells consumers how much evidence backed a Navigation.
type Status string

const (
	StatusLane       Status = "lane"
	StatusSingleSide Status = "single_side"
	StatusNoLane     Status = "no_lane"
)

// Navigation is the steering signal derived from the closest lane.
type Navigation struct {
	Status        Status    `json:"status"`
	CenterX       float64   `json:"center_x"`
	Offset        float64   `json:"offset"`
	SteeringAngle float64   `json:"steering_angle"`
	Direction     Direction `json:"direction"`
	Message       string    `json:"message"`
	Curvature     Curvature `json:"curvature"`
}

// Detected reports whether any lane evidence was available.
func (n Navigation) Detected() bool {
	return n.Status != StatusNoLane
}
