package lane

import (
	"math"
	"sort"

	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

// DedupStats summarizes one Deduplicate pass.
type DedupStats struct {
	Input    int `json:"input"`
	Filtered int `json:"filtered"` // dropped before clustering
	Clusters int `json:"clusters"`
}

// Deduplicate collapses near-identical segments into one representative each.
//
// Segments with |x2-x1| < MinSegmentDX or |slope| outside [MinSlope, MaxSlope]
// are discarded first as shadow and noise artifacts. The survivors are visited
// longest first (ties keep input order); each unassigned seed claims every
// unassigned segment within SlopeTolerance and PositionTolerance of it and is
// kept as the cluster's representative.
//
// Because a later seed was still unassigned when every earlier seed formed its
// cluster, representatives are pairwise outside tolerance and running
// Deduplicate on its own output is a no-op.
func Deduplicate(segments []geometry.Segment, cfg Config) []geometry.Segment {
	out, _ := deduplicate(segments, cfg)
	return out
}

type candidate struct {
	seg    geometry.Segment
	slope  float64
	midX   float64
	length float64
}

func deduplicate(segments []geometry.Segment, cfg Config) ([]geometry.Segment, DedupStats) {
	stats := DedupStats{Input: len(segments)}
	if len(segments) == 0 {
		return []geometry.Segment{}, stats
	}

	candidates := make([]candidate, 0, len(segments))
	for _, s := range segments {
		if s.DX() < cfg.MinSegmentDX || s.IsVertical() {
			stats.Filtered++
			continue
		}
		m := geometry.Slope(s)
		if abs := math.Abs(m); abs < cfg.MinSlope || abs > cfg.MaxSlope {
			stats.Filtered++
			continue
		}
		candidates = append(candidates, candidate{
			seg:    s,
			slope:  m,
			midX:   s.MidX(),
			length: geometry.Length(s),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].length > candidates[j].length
	})

	assigned := make([]bool, len(candidates))
	reps := make([]geometry.Segment, 0, len(candidates))
	for i, seed := range candidates {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		for j := i + 1; j < len(candidates); j++ {
			if assigned[j] {
				continue
			}
			c := candidates[j]
			if math.Abs(c.slope-seed.slope) < cfg.SlopeTolerance &&
				math.Abs(c.midX-seed.midX) < cfg.PositionTolerance {
				assigned[j] = true
			}
		}
		reps = append(reps, seed.seg)
	}

	stats.Clusters = len(reps)
	return reps, stats
}
