package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
)

// FrameDetection is the raw segment output for one camera frame.
type FrameDetection struct {
	// Prepared holds the working image and edge map the segments came from.
	Prepared *imaging.Prepared

	// Frame is the working frame the segments are expressed in.
	Frame geometry.Frame

	// Segments are in working-frame coordinates.
	Segments []geometry.Segment
}

// DetectFrame preprocesses img and detects segments inside its region of
// interest.
func DetectFrame(img image.Image, opts imaging.PreprocessOptions, params Params) (*FrameDetection, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection params: %w", err)
	}

	prep, err := imaging.Prepare(img, opts)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	frame, err := geometry.NewFrame(prep.Height(), prep.Width())
	if err != nil {
		return nil, err
	}

	return &FrameDetection{
		Prepared: prep,
		Frame:    frame,
		Segments: DetectSegments(prep.Edges, prep.ROI.Min, params),
	}, nil
}
