package imaging

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// MarkingColor is the paint colour of a lane boundary.
type MarkingColor string

const (
	MarkingWhite   MarkingColor = "white"
	MarkingYellow  MarkingColor = "yellow"
	MarkingUnknown MarkingColor = "unknown"
)

const (
	markingSamples  = 40
	markingSearch   = 2    // px either side of the fitted line
	markingMinShare = 0.3  // share of samples that must agree
	whiteMaxSat     = 0.25 // HSV saturation ceiling for white paint
	whiteMinValue   = 0.65
	yellowMinHue    = 35.0
	yellowMaxHue    = 70.0
	yellowMinSat    = 0.35
	yellowMinValue  = 0.45
)

// Marking summarises the paint sampled along one lane line.
type Marking struct {
	Side        lane.Side    `json:"side"`
	Color       MarkingColor `json:"color"`
	Hex         string       `json:"hex"` // mean sampled colour
	WhiteShare  float64      `json:"white_share"`
	YellowShare float64      `json:"yellow_share"`
	Samples     int          `json:"samples"`
}

// ClassifyMarking samples img along line between rows top and bottom and
// labels the paint white, yellow or unknown. At each sample row the brightest
// pixel within a couple of pixels of the line is used, which absorbs small
// fitting errors on thin markings.
func ClassifyMarking(img image.Image, line lane.LaneLine, top, bottom int) Marking {
	m := Marking{Side: line.Side, Color: MarkingUnknown, Hex: "#000000"}

	b := img.Bounds()
	top = clamp(top, 0, b.Dy()-1)
	bottom = clamp(bottom, 0, b.Dy()-1)
	if bottom < top {
		return m
	}

	step := float64(bottom-top) / markingSamples
	if step < 1 {
		step = 1
	}

	var sumR, sumG, sumB float64
	var white, yellow int
	for fy := float64(top); fy <= float64(bottom); fy += step {
		y := int(fy)
		x := line.XAt(float64(y))
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}

		c, ok := brightestNear(img, int(math.Round(x)), y, b.Dx())
		if !ok {
			continue
		}
		m.Samples++
		sumR += c.R
		sumG += c.G
		sumB += c.B

		switch classifyPaint(c) {
		case MarkingWhite:
			white++
		case MarkingYellow:
			yellow++
		}
	}

	if m.Samples == 0 {
		return m
	}

	n := float64(m.Samples)
	m.Hex = colorful.Color{R: sumR / n, G: sumG / n, B: sumB / n}.Clamped().Hex()
	m.WhiteShare = float64(white) / n
	m.YellowShare = float64(yellow) / n

	switch {
	case m.YellowShare >= markingMinShare && m.YellowShare >= m.WhiteShare:
		m.Color = MarkingYellow
	case m.WhiteShare >= markingMinShare:
		m.Color = MarkingWhite
	}
	return m
}

// brightestNear returns the pixel with the highest HSV value within
// markingSearch columns of (x, y). ok is false when the whole window is
// outside the image.
func brightestNear(img image.Image, x, y, width int) (colorful.Color, bool) {
	b := img.Bounds()
	var best colorful.Color
	bestV := -1.0
	for dx := -markingSearch; dx <= markingSearch; dx++ {
		px := x + dx
		if px < 0 || px >= width {
			continue
		}
		c, ok := colorful.MakeColor(img.At(px+b.Min.X, y+b.Min.Y))
		if !ok {
			continue
		}
		if _, _, v := c.Hsv(); v > bestV {
			best, bestV = c, v
		}
	}
	return best, bestV >= 0
}

func classifyPaint(c colorful.Color) MarkingColor {
	h, s, v := c.Hsv()
	switch {
	case s <= whiteMaxSat && v >= whiteMinValue:
		return MarkingWhite
	case h >= yellowMinHue && h <= yellowMaxHue && s >= yellowMinSat && v >= yellowMinValue:
		return MarkingYellow
	default:
		return MarkingUnknown
	}
}
