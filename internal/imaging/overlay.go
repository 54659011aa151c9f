package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// OverlayStyle controls how detections are drawn on a frame.
type OverlayStyle struct {
	LineWidth     float64 `json:"line_width" mapstructure:"line_width"`
	CenterColor   string  `json:"center_color" mapstructure:"center_color"`     // navigation centre marker
	UnpairedColor string  `json:"unpaired_color" mapstructure:"unpaired_color"` // lines that did not join a lane
	ROIColor      string  `json:"roi_color" mapstructure:"roi_color"`           // empty disables the ROI outline
	ShowSegments  bool    `json:"show_segments" mapstructure:"show_segments"`   // draw deduplicated raw segments
}

// DefaultOverlayStyle draws thick lanes, a red centre marker, amber unpaired
// lines and a blue outline around the searched band.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		LineWidth:     4,
		CenterColor:   "#ff3030",
		UnpairedColor: "#ffa000",
		ROIColor:      "#30a0ff",
	}
}

// OverlayResult is a rendered overlay ready to return over MCP.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Lanes       int    `json:"lanes"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// LanePalette returns n well separated lane colours. The first is green and
// the rest step around the hue wheel by the golden angle, so lane colours stay
// stable as more lanes appear.
func LanePalette(n int) []colorful.Color {
	palette := make([]colorful.Color, n)
	for i := range palette {
		hue := math.Mod(120+float64(i)*137.508, 360)
		palette[i] = colorful.Hsv(hue, 0.85, 0.95)
	}
	return palette
}

// DrawOverlay draws res on a copy of img. img must be the frame res was
// computed on; roi, when non-empty, is outlined.
func DrawOverlay(img image.Image, res *lane.Result, roi image.Rectangle, style OverlayStyle) (image.Image, error) {
	b := img.Bounds()
	if b.Dx() != res.Frame.Width || b.Dy() != res.Frame.Height {
		return nil, fmt.Errorf("image is %dx%d but result frame is %dx%d",
			b.Dx(), b.Dy(), res.Frame.Width, res.Frame.Height)
	}

	center, err := colorful.Hex(style.CenterColor)
	if err != nil {
		return nil, fmt.Errorf("invalid center color %q: %w", style.CenterColor, err)
	}
	unpaired, err := colorful.Hex(style.UnpairedColor)
	if err != nil {
		return nil, fmt.Errorf("invalid unpaired color %q: %w", style.UnpairedColor, err)
	}

	width := style.LineWidth
	if width <= 0 {
		width = 1
	}

	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(width)

	if style.ROIColor != "" && !roi.Empty() {
		roiColor, err := colorful.Hex(style.ROIColor)
		if err != nil {
			return nil, fmt.Errorf("invalid roi color %q: %w", style.ROIColor, err)
		}
		dc.SetColor(roiColor)
		dc.SetLineWidth(1)
		dc.DrawRectangle(float64(roi.Min.X)+0.5, float64(roi.Min.Y)+0.5,
			float64(roi.Dx())-1, float64(roi.Dy())-1)
		dc.Stroke()
		dc.SetLineWidth(width)
	}

	if style.ShowSegments {
		dc.SetRGB(0.8, 0.8, 0.8)
		dc.SetLineWidth(1)
		for _, s := range res.Deduplicated {
			dc.DrawLine(s.X1, s.Y1, s.X2, s.Y2)
			dc.Stroke()
		}
		dc.SetLineWidth(width)
	}

	paired := make(map[lane.LaneLine]bool, 2*len(res.Lanes))
	for i, l := range res.Lanes {
		paired[l.Left] = true
		paired[l.Right] = true
		dc.SetColor(LanePalette(len(res.Lanes))[i])
		strokeLine(dc, l.Left)
		strokeLine(dc, l.Right)
	}

	dc.SetColor(unpaired)
	for _, lines := range [][]lane.LaneLine{res.LeftLines, res.RightLines} {
		for _, l := range lines {
			if !paired[l] {
				strokeLine(dc, l)
			}
		}
	}

	if res.Navigation.Detected() {
		h := float64(res.Frame.Height)
		x := res.Navigation.CenterX
		dc.SetColor(center)
		dc.DrawLine(x, h-1, x, h*0.85)
		dc.Stroke()
		dc.DrawCircle(x, h-1-width, width)
		dc.Fill()

		// frame centre reference
		dc.SetRGBA(1, 1, 1, 0.6)
		dc.SetLineWidth(1)
		mid := float64(res.Frame.Width) / 2
		dc.DrawLine(mid, h-1, mid, h*0.9)
		dc.Stroke()
	}

	return dc.Image(), nil
}

// RenderOverlay draws res on img and returns it as a base64 PNG.
func RenderOverlay(img image.Image, res *lane.Result, roi image.Rectangle, style OverlayStyle) (*OverlayResult, error) {
	drawn, err := DrawOverlay(img, res, roi, style)
	if err != nil {
		return nil, err
	}

	encoded, err := EncodePNG(drawn)
	if err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	b := drawn.Bounds()
	return &OverlayResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		Lanes:       len(res.Lanes),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

func strokeLine(dc *gg.Context, l lane.LaneLine) {
	dc.DrawLine(l.Top.X, l.Top.Y, l.Bottom.X, l.Bottom.Y)
	dc.Stroke()
}
