// Package config loads server configuration from defaults, an optional
// JSON/YAML/TOML file and LANE_MCP_* environment variables, in increasing
// order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// EnvPrefix is prepended to every environment override, e.g.
// LANE_MCP_LOG_LEVEL or LANE_MCP_LANE_SLOPE_TOLERANCE.
const EnvPrefix = "LANE_MCP"

// Config is the complete server configuration.
type Config struct {
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	LogFile  string `json:"log_file" mapstructure:"log_file"`

	// LogFormat is "console" (human readable) or "json".
	LogFormat string `json:"log_format" mapstructure:"log_format"`

	// Workers bounds the goroutines used by batch processing.
	Workers int `json:"workers" mapstructure:"workers"`

	// CacheSize is how many decoded frames stay in memory.
	CacheSize int `json:"cache_size" mapstructure:"cache_size"`

	Lane       lane.Config               `json:"lane" mapstructure:"lane"`
	Detection  detection.Params          `json:"detection" mapstructure:"detection"`
	Preprocess imaging.PreprocessOptions `json:"preprocess" mapstructure:"preprocess"`
	Overlay    imaging.OverlayStyle      `json:"overlay" mapstructure:"overlay"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		LogLevel:   "info",
		LogFormat:  "console",
		Workers:    4,
		CacheSize:  imaging.DefaultCacheSize,
		Lane:       lane.DefaultConfig(),
		Detection:  detection.DefaultParams(),
		Preprocess: imaging.DefaultPreprocessOptions(),
		Overlay:    imaging.DefaultOverlayStyle(),
	}
}

// Load builds a Config. path names an optional config file; an empty path
// skips file loading. Environment variables always apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be at least 1, got %d", c.CacheSize)
	}
	if err := c.Lane.Validate(); err != nil {
		return fmt.Errorf("lane: %w", err)
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	if err := c.Preprocess.Validate(); err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}
	return nil
}

// setDefaults registers every key so that AutomaticEnv can override it and
// Unmarshal sees a complete tree.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("cache_size", d.CacheSize)

	v.SetDefault("lane.slope_tolerance", d.Lane.SlopeTolerance)
	v.SetDefault("lane.position_tolerance", d.Lane.PositionTolerance)
	v.SetDefault("lane.min_segment_dx", d.Lane.MinSegmentDX)
	v.SetDefault("lane.min_slope", d.Lane.MinSlope)
	v.SetDefault("lane.max_slope", d.Lane.MaxSlope)
	v.SetDefault("lane.left_slope_threshold", d.Lane.LeftSlopeThreshold)
	v.SetDefault("lane.right_slope_threshold", d.Lane.RightSlopeThreshold)
	v.SetDefault("lane.multi_lane", d.Lane.MultiLane)
	v.SetDefault("lane.pair_slope_diff_tolerance", d.Lane.PairSlopeDiffTolerance)
	v.SetDefault("lane.min_lane_spacing", d.Lane.MinLaneSpacing)
	v.SetDefault("lane.max_lane_spacing", d.Lane.MaxLaneSpacing)
	v.SetDefault("lane.target_lane_spacing", d.Lane.TargetLaneSpacing)
	v.SetDefault("lane.tolerance_factor", d.Lane.ToleranceFactor)
	v.SetDefault("lane.max_steering_angle", d.Lane.MaxSteeringAngle)
	v.SetDefault("lane.single_side_lane_width", d.Lane.SingleSideLaneWidth)
	v.SetDefault("lane.straight_threshold", d.Lane.StraightThreshold)
	v.SetDefault("lane.curved_threshold", d.Lane.CurvedThreshold)

	v.SetDefault("detection.threshold", d.Detection.Threshold)
	v.SetDefault("detection.min_line_length", d.Detection.MinLineLength)
	v.SetDefault("detection.max_line_gap", d.Detection.MaxLineGap)
	v.SetDefault("detection.max_lines", d.Detection.MaxLines)
	v.SetDefault("detection.distance_tolerance", d.Detection.DistanceTolerance)

	v.SetDefault("preprocess.roi_fraction", d.Preprocess.ROIFraction)
	v.SetDefault("preprocess.working_width", d.Preprocess.WorkingWidth)
	v.SetDefault("preprocess.blur_radius", d.Preprocess.BlurRadius)
	v.SetDefault("preprocess.canny_low", d.Preprocess.CannyLow)
	v.SetDefault("preprocess.canny_high", d.Preprocess.CannyHigh)

	v.SetDefault("overlay.line_width", d.Overlay.LineWidth)
	v.SetDefault("overlay.center_color", d.Overlay.CenterColor)
	v.SetDefault("overlay.unpaired_color", d.Overlay.UnpairedColor)
	v.SetDefault("overlay.roi_color", d.Overlay.ROIColor)
	v.SetDefault("overlay.show_segments", d.Overlay.ShowSegments)
}
