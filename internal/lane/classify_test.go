package lane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

func testFrame(t *testing.T) geometry.Frame {
	t.Helper()
	f, err := geometry.NewFrame(480, 800)
	require.NoError(t, err)
	return f
}

func TestClassify(t *testing.T) {
	frame := testFrame(t)
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		seg      geometry.Segment
		wantSide Side
		wantOK   bool
	}{
		{"left lane", geometry.NewSegment(100, 480, 300, 300), SideLeft, true},
		{"right lane", geometry.NewSegment(700, 480, 500, 300), SideRight, true},
		{"left of center with positive slope", segmentAround(200, 300, 0.9, 50), "", false},
		{"right of center with negative slope", segmentAround(600, 300, -0.9, 50), "", false},
		{"left but too shallow", segmentAround(200, 300, -0.15, 50), "", false},
		{"right but too shallow", segmentAround(600, 300, 0.15, 50), "", false},
		{"midpoint off frame", geometry.NewSegment(900, 480, 700, 300), "", false},
		{"midpoint exactly at center", segmentAround(400, 300, -0.9, 50), "", false},
		{"vertical", geometry.NewSegment(200, 0, 200, 100), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			side, ok := ClassifySegment(tt.seg, frame, cfg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSide, side)
		})
	}
}

func TestClassify_Groups(t *testing.T) {
	frame := testFrame(t)
	cfg := DefaultConfig()

	segs := []geometry.Segment{
		geometry.NewSegment(100, 480, 300, 300),
		segmentAround(150, 420, -0.7, 30),
		geometry.NewSegment(700, 480, 500, 300),
		segmentAround(600, 300, -0.9, 50), // dropped
	}

	left, right := Classify(segs, frame, cfg)
	assert.Equal(t, SideLeft, left.Side)
	assert.Equal(t, SideRight, right.Side)
	assert.Equal(t, 2, left.Len())
	assert.Equal(t, 1, right.Len())

	// No segment may land in both groups.
	for _, l := range left.Segments {
		assert.NotContains(t, right.Segments, l)
	}
}

func TestClassify_Empty(t *testing.T) {
	left, right := Classify(nil, testFrame(t), DefaultConfig())
	assert.NotNil(t, left.Segments)
	assert.NotNil(t, right.Segments)
	assert.Zero(t, left.Len())
	assert.Zero(t, right.Len())
}
