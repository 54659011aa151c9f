// Package imaging turns camera frames into the inputs and outputs of lane
// detection.
//
// It covers the pixel side of the pipeline:
//
//   - FrameCache loads and caches decoded frames, applying EXIF orientation.
//   - ResizeToWidth, RegionOfInterest and CropRegion reduce a frame to the
//     band below the horizon at a working resolution.
//   - Canny and Prepare produce the binary edge map fed to segment detection.
//   - ClassifyMarking labels a fitted lane line as white or yellow paint.
//   - DrawOverlay and RenderOverlay draw lanes, unpaired lines and the
//     steering centre back onto the frame.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner;
// X increases to the right and Y downward. Results that refer to the working
// frame (after resizing) say so; Prepared.Scale maps source pixels onto it.
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. Every other function is stateless
// and never mutates its input image.
package imaging
