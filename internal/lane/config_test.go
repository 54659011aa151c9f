package lane

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero slope tolerance", func(c *Config) { c.SlopeTolerance = 0 }},
		{"zero position tolerance", func(c *Config) { c.PositionTolerance = 0 }},
		{"negative min dx", func(c *Config) { c.MinSegmentDX = -1 }},
		{"inverted slope bounds", func(c *Config) { c.MinSlope, c.MaxSlope = 5, 0.1 }},
		{"negative side threshold", func(c *Config) { c.LeftSlopeThreshold = -0.2 }},
		{"zero pair slope tolerance", func(c *Config) { c.PairSlopeDiffTolerance = 0 }},
		{"inverted spacing", func(c *Config) { c.MinLaneSpacing, c.MaxLaneSpacing = 200, 30 }},
		{"zero target spacing", func(c *Config) { c.TargetLaneSpacing = 0 }},
		{"tolerance factor too large", func(c *Config) { c.ToleranceFactor = 0.5 }},
		{"zero steering angle", func(c *Config) { c.MaxSteeringAngle = 0 }},
		{"zero single side width", func(c *Config) { c.SingleSideLaneWidth = 0 }},
		{"inverted curvature thresholds", func(c *Config) { c.StraightThreshold, c.CurvedThreshold = 0.5, 0.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDirectionMessage(t *testing.T) {
	assert.Equal(t, "Steer Left", DirectionLeft.Message())
	assert.Equal(t, "Steer Right", DirectionRight.Message())
	assert.Equal(t, "Go Forward", DirectionForward.Message())
	assert.Equal(t, "No lane detected, searching...", DirectionNoLane.Message())
}
