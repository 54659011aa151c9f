package lane

import (
	"math"

	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

// Weights for the two curvature terms. They sum to 1 so strength stays in [0,1].
const (
	asymmetryWeight = 0.6
	driftWeight     = 0.4
)

// Navigate derives the steering signal from the closest lane, the one whose
// lines have the greatest average support row. An empty lane list yields the
// explicit no-lane result.
func Navigate(lanes []Lane, frame geometry.Frame, cfg Config) Navigation {
	if len(lanes) == 0 {
		return NoLane(frame)
	}

	closest := lanes[0]
	for _, l := range lanes[1:] {
		if l.AverageY() > closest.AverageY() {
			closest = l
		}
	}

	var sum float64
	var n int
	for _, line := range []LaneLine{closest.Left, closest.Right} {
		if x, ok := bottomX(line, frame); ok {
			sum += x
			n++
		}
	}
	centerX := frame.CenterX()
	if n > 0 {
		centerX = sum / float64(n)
	}

	nav := steer(centerX, frame, cfg)
	nav.Status = StatusLane
	nav.Curvature = AnalyzeCurvature(closest, frame, cfg)
	return nav
}

// NavigateSingle estimates the lane center from one boundary line when the
// other side was not detected. The center is placed half of
// SingleSideLaneWidth*width away from the line, toward the missing side.
func NavigateSingle(line LaneLine, frame geometry.Frame, cfg Config) Navigation {
	x, ok := bottomX(line, frame)
	if !ok {
		return NoLane(frame)
	}
	shift := cfg.SingleSideLaneWidth * float64(frame.Width) / 2
	if line.Side == SideLeft {
		x += shift
	} else {
		x -= shift
	}
	nav := steer(x, frame, cfg)
	nav.Status = StatusSingleSide
	nav.Curvature = Curvature{Class: CurvatureUnknown, Direction: "none"}
	return nav
}

// NoLane returns the explicit result used when nothing was detected.
func NoLane(frame geometry.Frame) Navigation {
	return Navigation{
		Status:    StatusNoLane,
		CenterX:   frame.CenterX(),
		Direction: DirectionNoLane,
		Message:   DirectionNoLane.Message(),
		Curvature: Curvature{Class: CurvatureUnknown, Direction: "none"},
	}
}

func steer(centerX float64, frame geometry.Frame, cfg Config) Navigation {
	centerX = geometry.Clamp(centerX, 0, frame.MaxX())
	half := frame.CenterX()
	offset := centerX - half
	angle := geometry.Clamp(offset/half*cfg.MaxSteeringAngle, -cfg.MaxSteeringAngle, cfg.MaxSteeringAngle)

	tolerance := float64(frame.Width) * cfg.ToleranceFactor
	dir := DirectionForward
	switch {
	case offset < -tolerance:
		dir = DirectionLeft
	case offset > tolerance:
		dir = DirectionRight
	}

	return Navigation{
		CenterX:       centerX,
		Offset:        offset,
		SteeringAngle: angle,
		Direction:     dir,
		Message:       dir.Message(),
	}
}

// bottomX returns the line's x on the bottom row. Horizontal lines have no
// usable x there.
func bottomX(line LaneLine, frame geometry.Frame) (float64, bool) {
	if line.IsVertical() {
		return line.Intercept, true
	}
	if math.Abs(line.Slope) < geometry.Epsilon {
		return 0, false
	}
	return line.XAt(frame.MaxY()), true
}

// AnalyzeCurvature classifies how a lane bends.
//
// Asymmetry compares the boundary angles: atan(ml)+atan(mr) is zero for a
// straight lane seen head-on and is normalized to [-1,1]. Center drift is the
// horizontal movement of the lane center between the bottom and top rows,
// relative to half the frame width. Positive values bend right.
func AnalyzeCurvature(l Lane, frame geometry.Frame, cfg Config) Curvature {
	al, ar := math.Atan(l.Left.Slope), math.Atan(l.Right.Slope)
	var asym float64
	if denom := math.Abs(al) + math.Abs(ar); denom > geometry.Epsilon {
		asym = (al + ar) / denom
	}

	top, bottom := 0.0, frame.MaxY()
	topL, topR := l.Left.XAt(top), l.Right.XAt(top)
	botL, botR := l.Left.XAt(bottom), l.Right.XAt(bottom)

	var drift float64
	if finite(topL, topR, botL, botR) {
		drift = ((topL+topR)/2 - (botL+botR)/2) / frame.CenterX()
		drift = geometry.Clamp(drift, -1, 1)
	}

	c := Curvature{
		Asymmetry:   asym,
		CenterDrift: drift,
		TopWidth:    topR - topL,
		BottomWidth: botR - botL,
	}
	if !finite(c.TopWidth) {
		c.TopWidth = 0
	}
	if !finite(c.BottomWidth) {
		c.BottomWidth = 0
	}

	c.Strength = geometry.Clamp(asymmetryWeight*math.Abs(asym)+driftWeight*math.Abs(drift), 0, 1)
	switch {
	case c.Strength < cfg.StraightThreshold:
		c.Class = CurvatureStraight
	case c.Strength < cfg.CurvedThreshold:
		c.Class = CurvatureSlightCurve
	default:
		c.Class = CurvatureCurved
	}

	c.Direction = "none"
	if c.Class != CurvatureStraight {
		if asymmetryWeight*asym+driftWeight*drift > 0 {
			c.Direction = "right"
		} else {
			c.Direction = "left"
		}
	}
	return c
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
