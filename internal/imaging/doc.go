// Package imaging decodes scanned answer sheets and exposes them to the
// scorer.
//
// It covers the image boundary of the scanner: decoding every supported
// backend, caching decoded images for the MCP server, presenting a decoded
// image as an omr.PixelSampler, sampling colours, cropping bubbles for
// inspection, and rendering diagnostic overlays.
//
// # Supported Formats
//
// Decoding is chosen per file, with no process-wide decoder state:
//   - PNG, JPEG, GIF: standard library decoders
//   - BMP, TIFF, WebP: golang.org/x/image decoders
//   - PBM, PGM, PPM, PNM, PAM: github.com/spakin/netpbm
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Pixel Sampling
//
// NewSampler copies any decoded image into a single *image.NRGBA buffer
// anchored at (0,0), so the scorer reads every backend the same way:
// three 8-bit channels, alpha ignored.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. A Sampler is read-only
// after construction and may be shared between goroutines.
package imaging
