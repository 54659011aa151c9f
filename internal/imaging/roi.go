package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ResizeToWidth scales img down so that it is at most width pixels wide,
// keeping the aspect ratio. It returns the working image and the factor that
// maps source coordinates onto it (working = source * scale).
//
// A non-positive width, or one at least as wide as the source, returns the
// source unchanged with scale 1. Frames are never upscaled.
func ResizeToWidth(img image.Image, width int) (image.Image, float64) {
	srcWidth := img.Bounds().Dx()
	if width <= 0 || width >= srcWidth {
		return img, 1
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)
	return resized, float64(resized.Bounds().Dx()) / float64(srcWidth)
}

// RegionOfInterest returns the band at the bottom of a width x height frame
// that covers fraction of its height. Lane markings ahead of the vehicle sit
// below the horizon, so everything above the band is ignored.
//
// The fraction is clamped to (0, 1]; the band is always at least one row tall.
func RegionOfInterest(width, height int, fraction float64) image.Rectangle {
	if fraction <= 0 || fraction > 1 || math.IsNaN(fraction) {
		fraction = 1
	}
	rows := int(math.Round(float64(height) * fraction))
	if rows < 1 {
		rows = 1
	}
	if rows > height {
		rows = height
	}
	return image.Rect(0, height-rows, width, height)
}

// CropRegion extracts roi from img. roi is expressed relative to the image's
// top-left corner, whatever the image's bounds origin; the result always
// starts at (0,0).
func CropRegion(img image.Image, roi image.Rectangle) *image.NRGBA {
	return imaging.Crop(img, roi.Add(img.Bounds().Min))
}
