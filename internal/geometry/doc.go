// Package geometry provides the line-segment math shared by the lane pipeline.
//
// All functions are pure and never fail on degenerate input. Vertical and
// horizontal cases are reported through the Infinite sentinel instead of an
// error, so callers branch on IsInfinite rather than on a returned error.
//
// # Coordinate System
//
// Coordinates follow the image convention used throughout this module:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward
//   - Y increases downward
//
// In this system a left lane boundary, running from the bottom-left of the
// frame toward the horizon, has a negative slope and a right boundary has a
// positive slope.
//
// # Vertical Lines
//
// A segment with |x2-x1| < Epsilon has no finite slope. SlopeIntercept returns
// (Infinite, x1) for it: the intercept slot carries the constant x of the line,
// and XAtY understands that encoding, so a vertical line can still be evaluated
// at any row.
//
// # Frames
//
// Frame is the only type in this package that validates its input. Non-positive
// dimensions indicate a misconfigured upstream component and are rejected with
// ErrInvalidFrame.
package geometry
