package lane

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

// Result is everything the pipeline derived from one frame.
type Result struct {
	Frame        geometry.Frame     `json:"frame"`
	Input        int                `json:"input_segments"`
	Dedup        DedupStats         `json:"dedup"`
	Deduplicated []geometry.Segment `json:"deduplicated"`
	Left         SideGroup          `json:"left_group"`
	Right        SideGroup          `json:"right_group"`
	LeftLines    []LaneLine         `json:"left_lines"`
	RightLines   []LaneLine         `json:"right_lines"`
	Lanes        []Lane             `json:"lanes"`
	Navigation   Navigation         `json:"navigation"`
}

// Pipeline runs deduplicate -> classify -> merge -> pair -> navigate on one
// frame at a time. It holds no per-frame state and is safe for concurrent use.
type Pipeline struct {
	cfg Config
	log zerolog.Logger
}

// NewPipeline validates cfg and returns a ready Pipeline.
func NewPipeline(cfg Config, logger zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lane config: %w", err)
	}
	return &Pipeline{
		cfg: cfg,
		log: logger.With().Str("component", "lane").Logger(),
	}, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process runs the full pipeline on the raw segments of one frame.
//
// A nil or empty segment list is a normal "no detections" frame. The only
// error is an invalid frame, which indicates a misconfigured caller.
func (p *Pipeline) Process(frame geometry.Frame, segments []geometry.Segment) (*Result, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	reps, stats := deduplicate(segments, p.cfg)
	p.log.Debug().
		Int("input", stats.Input).
		Int("filtered", stats.Filtered).
		Int("clusters", stats.Clusters).
		Msg("segments deduplicated")

	left, right := Classify(reps, frame, p.cfg)

	res := &Result{
		Frame:        frame,
		Input:        len(segments),
		Dedup:        stats,
		Deduplicated: reps,
		Left:         left,
		Right:        right,
		LeftLines:    p.sideLines(left, frame),
		RightLines:   p.sideLines(right, frame),
	}
	res.Lanes = Assemble(res.LeftLines, res.RightLines, frame, p.cfg)
	res.Navigation = p.navigate(res, frame)

	p.log.Debug().
		Int("left", left.Len()).
		Int("right", right.Len()).
		Int("lanes", len(res.Lanes)).
		Str("direction", string(res.Navigation.Direction)).
		Float64("steering_angle", res.Navigation.SteeringAngle).
		Msg("frame processed")

	return res, nil
}

func (p *Pipeline) sideLines(group SideGroup, frame geometry.Frame) []LaneLine {
	if p.cfg.MultiLane {
		return LinesFromGroup(group, frame)
	}
	line, ok := MergeSide(group, frame)
	if !ok {
		return []LaneLine{}
	}
	p.log.Debug().
		Str("side", string(group.Side)).
		Int("segments", line.Segments).
		Bool("fitted", line.Fitted).
		Float64("slope", line.Slope).
		Float64("intercept", line.Intercept).
		Float64("r_squared", line.RSquared).
		Msg("side merged")
	return []LaneLine{line}
}

// navigate falls back to a single boundary when no lane could be paired.
func (p *Pipeline) navigate(res *Result, frame geometry.Frame) Navigation {
	if len(res.Lanes) > 0 {
		return Navigate(res.Lanes, frame, p.cfg)
	}
	candidates := append(append([]LaneLine{}, res.LeftLines...), res.RightLines...)
	if len(candidates) == 0 {
		return NoLane(frame)
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Support.MaxY > best.Support.MaxY {
			best = c
		}
	}
	return NavigateSingle(best, frame, p.cfg)
}
