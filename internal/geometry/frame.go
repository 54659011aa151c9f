package geometry

import "fmt"

// Frame holds the immutable dimensions of the camera frame being analyzed.
type Frame struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// NewFrame validates and returns a Frame. Zero or negative dimensions are a
// contract violation by the caller and return ErrInvalidFrame.
func NewFrame(height, width int) (Frame, error) {
	f := Frame{Height: height, Width: width}
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Validate reports ErrInvalidFrame when either dimension is not positive.
func (f Frame) Validate() error {
	if f.Height <= 0 || f.Width <= 0 {
		return fmt.Errorf("%w: height=%d width=%d", ErrInvalidFrame, f.Height, f.Width)
	}
	return nil
}

// CenterX returns the horizontal center of the frame.
func (f Frame) CenterX() float64 {
	return float64(f.Width) / 2
}

// MaxX returns the largest valid x coordinate.
func (f Frame) MaxX() float64 {
	return float64(f.Width - 1)
}

// MaxY returns the largest valid y coordinate (the bottom row).
func (f Frame) MaxY() float64 {
	return float64(f.Height - 1)
}

// Contains reports whether p lies within [0,width-1] x [0,height-1].
func (f Frame) Contains(p Point) bool {
	return p.X >= 0 && p.X <= f.MaxX() && p.Y >= 0 && p.Y <= f.MaxY()
}

// ClampPoint moves p onto the nearest in-frame coordinate.
func (f Frame) ClampPoint(p Point) Point {
	return Point{
		X: Clamp(p.X, 0, f.MaxX()),
		Y: Clamp(p.Y, 0, f.MaxY()),
	}
}
