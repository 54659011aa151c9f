package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizeToWidth(t *testing.T) {
	img := solidImage(1280, 720, color.White)

	resized, scale := ResizeToWidth(img, 640)
	assert.Equal(t, 640, resized.Bounds().Dx())
	assert.Equal(t, 360, resized.Bounds().Dy())
	assert.InDelta(t, 0.5, scale, 1e-9)
}

func TestResizeToWidth_NoUpscale(t *testing.T) {
	img := solidImage(320, 240, color.White)

	for _, w := range []int{0, -1, 320, 1000} {
		out, scale := ResizeToWidth(img, w)
		assert.Same(t, img, out, "width %d", w)
		assert.Equal(t, 1.0, scale)
	}
}

func TestRegionOfInterest(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		want     image.Rectangle
	}{
		{"lower forty percent", 0.4, image.Rect(0, 288, 640, 480)},
		{"whole frame", 1, image.Rect(0, 0, 640, 480)},
		{"zero falls back to whole frame", 0, image.Rect(0, 0, 640, 480)},
		{"over one falls back to whole frame", 1.5, image.Rect(0, 0, 640, 480)},
		{"tiny keeps one row", 0.0001, image.Rect(0, 479, 640, 480)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RegionOfInterest(640, 480, tt.fraction))
		})
	}
}

func TestCropRegion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if y >= 60 {
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			}
		}
	}

	band := CropRegion(img, RegionOfInterest(100, 100, 0.4))
	assert.Equal(t, image.Rect(0, 0, 100, 40), band.Bounds())
	r, _, b, _ := band.At(50, 0).RGBA()
	assert.Zero(t, r)
	assert.Equal(t, uint32(0xffff), b)
}

func TestCropRegion_OffsetBounds(t *testing.T) {
	full := solidImage(100, 100, color.White)
	sub := full.SubImage(image.Rect(10, 20, 60, 70))

	band := CropRegion(sub, image.Rect(0, 25, 50, 50))
	assert.Equal(t, image.Rect(0, 0, 50, 25), band.Bounds())
}
