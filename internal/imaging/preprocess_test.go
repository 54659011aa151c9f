package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepImage is black left of column split and white from it onward.
func stepImage(width, height, split int) *image.RGBA {
	img := solidImage(width, height, color.Black)
	for y := 0; y < height; y++ {
		for x := split; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestDefaultPreprocessOptions_Valid(t *testing.T) {
	assert.NoError(t, DefaultPreprocessOptions().Validate())
}

func TestPreprocessOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PreprocessOptions)
	}{
		{"zero roi", func(o *PreprocessOptions) { o.ROIFraction = 0 }},
		{"roi above one", func(o *PreprocessOptions) { o.ROIFraction = 1.2 }},
		{"negative width", func(o *PreprocessOptions) { o.WorkingWidth = -1 }},
		{"negative blur", func(o *PreprocessOptions) { o.BlurRadius = -0.5 }},
		{"inverted thresholds", func(o *PreprocessOptions) { o.CannyLow, o.CannyHigh = 80, 40 }},
		{"high above 255", func(o *PreprocessOptions) { o.CannyHigh = 300 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultPreprocessOptions()
			tt.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
}

func TestCanny_UniformImage(t *testing.T) {
	edges := Canny(solidImage(50, 50, color.RGBA{128, 128, 128, 255}), 2, 20, 60)
	assert.Equal(t, 50, edges.Width())
	assert.Equal(t, 50, edges.Height())
	assert.Zero(t, edges.Count())
}

func TestCanny_StepEdge(t *testing.T) {
	edges := Canny(stepImage(40, 40, 20), 0, 20, 60)

	assert.True(t, edges[10][19] || edges[10][20], "expected an edge at the step")
	for y := 0; y < 40; y++ {
		assert.False(t, edges[y][5], "row %d", y)
		assert.False(t, edges[y][30], "row %d", y)
	}
	// borders are always suppressed
	assert.False(t, edges[0][20])
	assert.False(t, edges[39][20])
}

func TestCanny_ThresholdsFilterWeakEdges(t *testing.T) {
	img := solidImage(40, 40, color.RGBA{100, 100, 100, 255})
	for y := 0; y < 40; y++ {
		for x := 20; x < 40; x++ {
			img.Set(x, y, color.RGBA{102, 102, 102, 255})
		}
	}

	assert.Zero(t, Canny(img, 0, 20, 60).Count())
	assert.Positive(t, Canny(img, 0, 1, 2).Count())
}

func TestCanny_TinyImage(t *testing.T) {
	edges := Canny(solidImage(2, 2, color.White), 0, 20, 60)
	assert.Equal(t, 2, edges.Width())
	assert.Zero(t, edges.Count())
}

func TestEdgeMap(t *testing.T) {
	var empty EdgeMap
	assert.Zero(t, empty.Width())
	assert.Zero(t, empty.Height())

	m := NewEdgeMap(4, 3)
	m[1][2] = true
	assert.Equal(t, 1, m.Count())

	img := m.Image()
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.Equal(t, uint8(255), img.GrayAt(2, 1).Y)
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
}

func TestPrepare(t *testing.T) {
	prep, err := Prepare(stepImage(1280, 720, 640), DefaultPreprocessOptions())
	require.NoError(t, err)

	assert.Equal(t, 640, prep.Width())
	assert.Equal(t, 360, prep.Height())
	assert.InDelta(t, 0.5, prep.Scale, 1e-9)
	assert.Equal(t, image.Rect(0, 216, 640, 360), prep.ROI)
	assert.Equal(t, 640, prep.Edges.Width())
	assert.Equal(t, 144, prep.Edges.Height())
	assert.Positive(t, prep.Edges.Count())
}

func TestPrepare_Errors(t *testing.T) {
	_, err := Prepare(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultPreprocessOptions())
	assert.Error(t, err)

	opts := DefaultPreprocessOptions()
	opts.CannyLow = -1
	_, err = Prepare(solidImage(10, 10, color.White), opts)
	assert.Error(t, err)
}

func TestEdgeDetect(t *testing.T) {
	opts := DefaultPreprocessOptions()
	opts.WorkingWidth = 0
	opts.ROIFraction = 0.5

	res, err := EdgeDetect(stepImage(100, 80, 50), opts)
	require.NoError(t, err)

	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 40, res.Height)
	assert.Equal(t, 40, res.ROITop)
	assert.Positive(t, res.EdgePixels)
	assert.Equal(t, "image/png", res.MimeType)

	raw, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 40), decoded.Bounds())
}
