package lane

import "fmt"

// Config holds the tuning parameters for every stage of the pipeline.
//
// The zero value is not useful; start from DefaultConfig and override
// individual fields. Field tags match the keys read by internal/config.
type Config struct {
	// Deduplicator
	SlopeTolerance    float64 `json:"slope_tolerance" mapstructure:"slope_tolerance"`
	PositionTolerance float64 `json:"position_tolerance" mapstructure:"position_tolerance"`
	MinSegmentDX      float64 `json:"min_segment_dx" mapstructure:"min_segment_dx"`
	MinSlope          float64 `json:"min_slope" mapstructure:"min_slope"`
	MaxSlope          float64 `json:"max_slope" mapstructure:"max_slope"`

	// Side Classifier
	LeftSlopeThreshold  float64 `json:"left_slope_threshold" mapstructure:"left_slope_threshold"`
	RightSlopeThreshold float64 `json:"right_slope_threshold" mapstructure:"right_slope_threshold"`

	// Lane Assembler
	MultiLane              bool    `json:"multi_lane" mapstructure:"multi_lane"`
	PairSlopeDiffTolerance float64 `json:"pair_slope_diff_tolerance" mapstructure:"pair_slope_diff_tolerance"`
	MinLaneSpacing         float64 `json:"min_lane_spacing" mapstructure:"min_lane_spacing"`
	MaxLaneSpacing         float64 `json:"max_lane_spacing" mapstructure:"max_lane_spacing"`
	TargetLaneSpacing      float64 `json:"target_lane_spacing" mapstructure:"target_lane_spacing"`

	// Navigation Analyzer
	ToleranceFactor     float64 `json:"tolerance_factor" mapstructure:"tolerance_factor"`
	MaxSteeringAngle    float64 `json:"max_steering_angle" mapstructure:"max_steering_angle"`
	SingleSideLaneWidth float64 `json:"single_side_lane_width" mapstructure:"single_side_lane_width"`
	StraightThreshold   float64 `json:"straight_threshold" mapstructure:"straight_threshold"`
	CurvedThreshold     float64 `json:"curved_threshold" mapstructure:"curved_threshold"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SlopeTolerance:    0.08,
		PositionTolerance: 50,
		MinSegmentDX:      5,
		MinSlope:          0.1,
		MaxSlope:          5.0,

		LeftSlopeThreshold:  0.2,
		RightSlopeThreshold: 0.2,

		PairSlopeDiffTolerance: 2.5,
		MinLaneSpacing:         30,
		MaxLaneSpacing:         200,
		TargetLaneSpacing:      100,

		ToleranceFactor:     0.10,
		MaxSteeringAngle:    30,
		SingleSideLaneWidth: 0.75,
		StraightThreshold:   0.1,
		CurvedThreshold:     0.35,
	}
}

// Validate rejects configurations whose bounds contradict each other.
func (c Config) Validate() error {
	switch {
	case c.SlopeTolerance <= 0:
		return fmt.Errorf("slope_tolerance must be positive, got %v", c.SlopeTolerance)
	case c.PositionTolerance <= 0:
		return fmt.Errorf("position_tolerance must be positive, got %v", c.PositionTolerance)
	case c.MinSegmentDX < 0:
		return fmt.Errorf("min_segment_dx must not be negative, got %v", c.MinSegmentDX)
	case c.MinSlope < 0 || c.MaxSlope <= c.MinSlope:
		return fmt.Errorf("slope bounds must satisfy 0 <= min_slope < max_slope, got [%v, %v]", c.MinSlope, c.MaxSlope)
	case c.LeftSlopeThreshold < 0 || c.RightSlopeThreshold < 0:
		return fmt.Errorf("side slope thresholds must not be negative")
	case c.PairSlopeDiffTolerance <= 0:
		return fmt.Errorf("pair_slope_diff_tolerance must be positive, got %v", c.PairSlopeDiffTolerance)
	case c.MinLaneSpacing < 0 || c.MaxLaneSpacing < c.MinLaneSpacing:
		return fmt.Errorf("lane spacing bounds must satisfy 0 <= min <= max, got [%v, %v]", c.MinLaneSpacing, c.MaxLaneSpacing)
	case c.TargetLaneSpacing <= 0:
		return fmt.Errorf("target_lane_spacing must be positive, got %v", c.TargetLaneSpacing)
	case c.ToleranceFactor < 0 || c.ToleranceFactor >= 0.5:
		return fmt.Errorf("tolerance_factor must be in [0, 0.5), got %v", c.ToleranceFactor)
	case c.MaxSteeringAngle <= 0:
		return fmt.Errorf("max_steering_angle must be positive, got %v", c.MaxSteeringAngle)
	case c.SingleSideLaneWidth <= 0:
		return fmt.Errorf("single_side_lane_width must be positive, got %v", c.SingleSideLaneWidth)
	case c.StraightThreshold < 0 || c.CurvedThreshold < c.StraightThreshold || c.CurvedThreshold > 1:
		return fmt.Errorf("curvature thresholds must satisfy 0 <= straight <= curved <= 1, got [%v, %v]", c.StraightThreshold, c.CurvedThreshold)
	}
	return nil
}
