package lane

import (
	"math"
	"sort"

	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

// Extend builds a LaneLine for y = slope*x + intercept spanning the full
// frame height. Top is evaluated at y=0 and Bottom at y=height-1, with x
// clamped to [0, width-1]. A horizontal line has no x at a given row; the
// Infinite sentinel clamps to the right edge.
func Extend(side Side, slope, intercept float64, support Span, frame geometry.Frame) LaneLine {
	top := geometry.Point{X: geometry.XAtY(slope, intercept, 0), Y: 0}
	bottom := geometry.Point{X: geometry.XAtY(slope, intercept, frame.MaxY()), Y: frame.MaxY()}
	return LaneLine{
		Side:      side,
		Slope:     slope,
		Intercept: intercept,
		Top:       frame.ClampPoint(top),
		Bottom:    frame.ClampPoint(bottom),
		Support:   support,
	}
}

// Assemble pairs left and right LaneLines into Lanes.
//
// With exactly one line per side the two are paired directly. Otherwise every
// left line, in discovery order, takes the best-scoring right line that is
// still unmatched and passes pairCompatible. The result is ordered by
// increasing average support row.
func Assemble(left, right []LaneLine, frame geometry.Frame, cfg Config) []Lane {
	lanes := []Lane{}
	if len(left) == 0 || len(right) == 0 {
		return lanes
	}

	if len(left) == 1 && len(right) == 1 {
		if oppositeSigns(left[0], right[0]) {
			lanes = append(lanes, Lane{Left: left[0], Right: right[0]})
		}
		return lanes
	}

	used := make([]bool, len(right))
	for _, l := range left {
		best := -1
		bestScore := math.Inf(1)
		for j, r := range right {
			if used[j] {
				continue
			}
			score, ok := pairScore(l, r, cfg)
			if !ok {
				continue
			}
			if score < bestScore {
				best, bestScore = j, score
			}
		}
		if best >= 0 {
			used[best] = true
			lanes = append(lanes, Lane{Left: l, Right: right[best]})
		}
	}

	sort.SliceStable(lanes, func(i, j int) bool {
		return lanes[i].AverageY() < lanes[j].AverageY()
	})
	return lanes
}

func oppositeSigns(l, r LaneLine) bool {
	return l.Slope < 0 && r.Slope > 0
}

// pairScore scores a candidate pairing; lower is better. The boolean is false
// when the pair violates a hard constraint.
func pairScore(l, r LaneLine, cfg Config) (float64, bool) {
	if !oppositeSigns(l, r) || l.IsVertical() || r.IsVertical() {
		return 0, false
	}
	ml, mr := math.Abs(l.Slope), math.Abs(r.Slope)
	if ml < cfg.MinSlope || ml > cfg.MaxSlope || mr < cfg.MinSlope || mr > cfg.MaxSlope {
		return 0, false
	}
	slopeDiff := math.Abs(ml - mr)
	if slopeDiff >= cfg.PairSlopeDiffTolerance {
		return 0, false
	}

	y := (l.Support.CenterY() + r.Support.CenterY()) / 2
	spacing := r.XAt(y) - l.XAt(y)
	if math.IsNaN(spacing) || geometry.IsInfinite(spacing) {
		return 0, false
	}
	if spacing < cfg.MinLaneSpacing || spacing > cfg.MaxLaneSpacing {
		return 0, false
	}

	return slopeDiff + math.Abs(spacing-cfg.TargetLaneSpacing)/cfg.TargetLaneSpacing, true
}
