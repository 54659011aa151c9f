package detection

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

const numAngles = 180

// Params tunes segment detection.
type Params struct {
	// Threshold is the minimum number of accumulator votes for a line.
	Threshold int `json:"threshold" mapstructure:"threshold"`

	// MinLineLength discards shorter segments, in pixels.
	MinLineLength float64 `json:"min_line_length" mapstructure:"min_line_length"`

	// MaxLineGap is the largest gap between collinear pixels that still
	// joins them into one segment.
	MaxLineGap float64 `json:"max_line_gap" mapstructure:"max_line_gap"`

	// MaxLines caps the number of segments returned.
	MaxLines int `json:"max_lines" mapstructure:"max_lines"`

	// DistanceTolerance is how far a pixel may sit from a peak line and
	// still count as support.
	DistanceTolerance float64 `json:"distance_tolerance" mapstructure:"distance_tolerance"`
}

// DefaultParams accepts lines with few votes and bridges dashed markings.
func DefaultParams() Params {
	return Params{
		Threshold:         20,
		MinLineLength:     40,
		MaxLineGap:        25,
		MaxLines:          50,
		DistanceTolerance: 1.5,
	}
}

// Validate reports the first out-of-range parameter.
func (p Params) Validate() error {
	switch {
	case p.Threshold < 1:
		return fmt.Errorf("threshold must be at least 1, got %d", p.Threshold)
	case p.MinLineLength < 0:
		return fmt.Errorf("min_line_length must not be negative, got %v", p.MinLineLength)
	case p.MaxLineGap < 0:
		return fmt.Errorf("max_line_gap must not be negative, got %v", p.MaxLineGap)
	case p.MaxLines < 1:
		return fmt.Errorf("max_lines must be at least 1, got %d", p.MaxLines)
	case p.DistanceTolerance <= 0:
		return fmt.Errorf("distance_tolerance must be positive, got %v", p.DistanceTolerance)
	}
	return nil
}

type pixel struct{ x, y int }

type peak struct {
	rho   int
	theta int
	votes int
}

// DetectSegments finds line segments in edges, an edge map indexed [y][x].
// origin is added to every endpoint so callers can detect inside a cropped
// band and get coordinates in the full frame.
//
// Peaks are visited in descending vote order; pixels claimed by a segment are
// not reused by later peaks. The result is never nil and holds at most
// params.MaxLines segments.
func DetectSegments(edges [][]bool, origin image.Point, params Params) []geometry.Segment {
	segments := make([]geometry.Segment, 0)

	height := len(edges)
	if height == 0 || len(edges[0]) == 0 {
		return segments
	}
	width := len(edges[0])

	points := make([]pixel, 0)
	for y, row := range edges {
		for x, v := range row {
			if v {
				points = append(points, pixel{x, y})
			}
		}
	}
	if len(points) == 0 {
		return segments
	}

	cosT := make([]float64, numAngles)
	sinT := make([]float64, numAngles)
	for t := 0; t < numAngles; t++ {
		angle := float64(t) * math.Pi / 180.0
		cosT[t], sinT[t] = math.Cos(angle), math.Sin(angle)
	}

	// Vote in Hough space
	maxDist := int(math.Ceil(math.Hypot(float64(width), float64(height))))
	accumulator := make([][]int, maxDist*2+1)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}
	for _, p := range points {
		for t := 0; t < numAngles; t++ {
			rho := float64(p.x)*cosT[t] + float64(p.y)*sinT[t]
			accumulator[int(math.Round(rho))+maxDist][t]++
		}
	}

	peaks := findPeaks(accumulator, maxDist, params.Threshold)
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})

	consumed := make([][]bool, height)
	for y := range consumed {
		consumed[y] = make([]bool, width)
	}

	for _, pk := range peaks {
		if len(segments) >= params.MaxLines {
			break
		}
		cosA, sinA := cosT[pk.theta], sinT[pk.theta]
		rho := float64(pk.rho)

		// Supporting pixels, ordered along the line direction (-sin, cos).
		type support struct {
			p pixel
			t float64
		}
		line := make([]support, 0)
		for _, p := range points {
			if consumed[p.y][p.x] {
				continue
			}
			if math.Abs(float64(p.x)*cosA+float64(p.y)*sinA-rho) <= params.DistanceTolerance {
				line = append(line, support{p, -float64(p.x)*sinA + float64(p.y)*cosA})
			}
		}
		if len(line) < 2 {
			continue
		}
		sort.SliceStable(line, func(i, j int) bool { return line[i].t < line[j].t })

		start := 0
		for i := 1; i <= len(line); i++ {
			if i < len(line) && line[i].t-line[i-1].t <= params.MaxLineGap {
				continue
			}
			run := line[start:i]
			start = i

			first, last := run[0].p, run[len(run)-1].p
			length := math.Hypot(float64(last.x-first.x), float64(last.y-first.y))
			if length < params.MinLineLength || length == 0 {
				continue
			}
			for _, s := range run {
				consumed[s.p.y][s.p.x] = true
			}
			segments = append(segments, geometry.NewSegment(
				float64(first.x+origin.X), float64(first.y+origin.Y),
				float64(last.x+origin.X), float64(last.y+origin.Y),
			))
			if len(segments) >= params.MaxLines {
				break
			}
		}
	}

	return segments
}

// findPeaks returns accumulator cells with at least threshold votes that are
// not exceeded by any neighbour in a 5x5 window. Theta wraps around.
func findPeaks(accumulator [][]int, maxDist, threshold int) []peak {
	peaks := make([]peak, 0)
	for r := range accumulator {
		for t := 0; t < numAngles; t++ {
			votes := accumulator[r][t]
			if votes < threshold {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := r + dr
					nt := (t + dt + numAngles) % numAngles
					if nr >= 0 && nr < len(accumulator) && accumulator[nr][nt] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: r - maxDist, theta: t, votes: votes})
			}
		}
	}
	return peaks
}
