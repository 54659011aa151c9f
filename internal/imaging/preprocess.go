package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// PreprocessOptions controls how a camera frame is turned into an edge map.
type PreprocessOptions struct {
	// ROIFraction is the share of the frame height, measured from the bottom,
	// that is searched for lane markings.
	ROIFraction float64 `json:"roi_fraction" mapstructure:"roi_fraction"`

	// WorkingWidth downsizes wide frames before processing. Zero keeps the
	// native resolution.
	WorkingWidth int `json:"working_width" mapstructure:"working_width"`

	// BlurRadius is the Gaussian blur radius applied before gradients are
	// taken. Zero disables blurring.
	BlurRadius float64 `json:"blur_radius" mapstructure:"blur_radius"`

	// CannyLow and CannyHigh are the hysteresis thresholds on the 0-255
	// gradient scale.
	CannyLow  int `json:"canny_low" mapstructure:"canny_low"`
	CannyHigh int `json:"canny_high" mapstructure:"canny_high"`
}

// DefaultPreprocessOptions searches the lower 40% of a 640 px wide frame with
// the low Canny thresholds that suit faded road paint.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		ROIFraction:  0.4,
		WorkingWidth: 640,
		BlurRadius:   2,
		CannyLow:     20,
		CannyHigh:    60,
	}
}

// Validate reports the first inconsistent option.
func (o PreprocessOptions) Validate() error {
	switch {
	case o.ROIFraction <= 0 || o.ROIFraction > 1:
		return fmt.Errorf("roi_fraction must be in (0, 1], got %v", o.ROIFraction)
	case o.WorkingWidth < 0:
		return fmt.Errorf("working_width must not be negative, got %d", o.WorkingWidth)
	case o.BlurRadius < 0:
		return fmt.Errorf("blur_radius must not be negative, got %v", o.BlurRadius)
	case o.CannyLow < 0 || o.CannyHigh > 255 || o.CannyLow > o.CannyHigh:
		return fmt.Errorf("canny thresholds must satisfy 0 <= low <= high <= 255, got %d/%d", o.CannyLow, o.CannyHigh)
	}
	return nil
}

// EdgeMap is a binary edge image indexed [y][x].
type EdgeMap [][]bool

// NewEdgeMap allocates an empty width x height map.
func NewEdgeMap(width, height int) EdgeMap {
	m := make(EdgeMap, height)
	for y := range m {
		m[y] = make([]bool, width)
	}
	return m
}

// Width returns the map width in pixels.
func (m EdgeMap) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Height returns the map height in pixels.
func (m EdgeMap) Height() int { return len(m) }

// Count returns the number of edge pixels.
func (m EdgeMap) Count() int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

// Image renders the map as a grayscale image, edges in white.
func (m EdgeMap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	for y, row := range m {
		for x, v := range row {
			if v {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// Prepared is a frame ready for segment detection.
type Prepared struct {
	// Working is the (possibly downsized) frame. Segment coordinates and the
	// lane pipeline frame refer to it.
	Working image.Image

	// Scale maps source pixels onto Working.
	Scale float64

	// ROI is the searched band in Working coordinates.
	ROI image.Rectangle

	// Edges covers only the ROI; edge (x, y) is Working pixel
	// (x+ROI.Min.X, y+ROI.Min.Y).
	Edges EdgeMap
}

// Width returns the working frame width.
func (p *Prepared) Width() int { return p.Working.Bounds().Dx() }

// Height returns the working frame height.
func (p *Prepared) Height() int { return p.Working.Bounds().Dy() }

// Prepare downsizes img, crops the region of interest and runs Canny edge
// detection over it.
func Prepare(img image.Image, opts PreprocessOptions) (*Prepared, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, errors.New("image has no pixels")
	}

	working, scale := ResizeToWidth(img, opts.WorkingWidth)
	b := working.Bounds()
	roi := RegionOfInterest(b.Dx(), b.Dy(), opts.ROIFraction)
	band := CropRegion(working, roi)

	return &Prepared{
		Working: working,
		Scale:   scale,
		ROI:     roi,
		Edges:   Canny(band, opts.BlurRadius, opts.CannyLow, opts.CannyHigh),
	}, nil
}

// Canny runs Canny edge detection on img.
//
// The frame is blurred and converted to luminance first, then gradients are
// taken with 3x3 Sobel kernels, thinned by non-maximum suppression along the
// gradient direction, and finally split by hysteresis: pixels at or above
// high are edges, pixels between low and high are edges only when touching
// a strong pixel. Thresholds are on the 0-255 scale.
func Canny(img image.Image, blurRadius float64, low, high int) EdgeMap {
	src := img
	if blurRadius > 0 {
		src = blur.Gaussian(img, blurRadius)
	}
	gray := effect.Grayscale(src)

	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	edges := NewEdgeMap(width, height)
	if width < 3 || height < 3 {
		return edges
	}

	lum := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		// bild writes the luminance to R, G and B alike
		return float64(gray.RGBAAt(x+bounds.Min.X, y+bounds.Min.Y).R) / 255.0
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			gx := -lum(x-1, y-1) + lum(x+1, y-1) -
				2*lum(x-1, y) + 2*lum(x+1, y) -
				lum(x-1, y+1) + lum(x+1, y+1)
			gy := -lum(x-1, y-1) - 2*lum(x, y-1) - lum(x+1, y-1) +
				lum(x-1, y+1) + 2*lum(x, y+1) + lum(x+1, y+1)
			magnitude[y][x] = math.Hypot(gx, gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	suppressed := suppressNonMaxima(magnitude, direction, width, height)

	lowThresh := float64(low) / 255.0
	highThresh := float64(high) / 255.0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			switch {
			case val <= 0:
			case val >= highThresh:
				edges[y][x] = true
			case val >= lowThresh:
				edges[y][x] = hasStrongNeighbor(suppressed, x, y, width, height, highThresh)
			}
		}
	}
	return edges
}

// suppressNonMaxima keeps only pixels that are local maxima along their
// gradient direction, quantised to four orientations. Border pixels are
// always suppressed.
func suppressNonMaxima(magnitude, direction [][]float64, width, height int) [][]float64 {
	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[y][x-1], magnitude[y][x+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[y-1][x+1], magnitude[y+1][x-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[y-1][x], magnitude[y+1][x]
			default:
				n1, n2 = magnitude[y-1][x-1], magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				out[y][x] = mag
			}
		}
	}
	return out
}

func hasStrongNeighbor(suppressed [][]float64, x, y, width, height int, high float64) bool {
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			py := clamp(y+ky, 0, height-1)
			px := clamp(x+kx, 0, width-1)
			if suppressed[py][px] >= high {
				return true
			}
		}
	}
	return false
}

// EdgeDetectResult is a rendered edge map for visual threshold tuning.
type EdgeDetectResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ROITop      int    `json:"roi_top"`
	EdgePixels  int    `json:"edge_pixels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EdgeDetect prepares img with opts and returns the ROI edge map as a base64
// PNG, with ROITop giving the working-frame row the image starts at.
func EdgeDetect(img image.Image, opts PreprocessOptions) (*EdgeDetectResult, error) {
	prep, err := Prepare(img, opts)
	if err != nil {
		return nil, err
	}

	encoded, err := EncodePNG(prep.Edges.Image())
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	return &EdgeDetectResult{
		Width:       prep.Edges.Width(),
		Height:      prep.Edges.Height(),
		ROITop:      prep.ROI.Min.Y,
		EdgePixels:  prep.Edges.Count(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNG encodes img as PNG and returns it base64 encoded.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
