// Package omr scores scanned multiple-choice answer sheets against a
// bubble template.
//
// The scoring pipeline for one sheet is:
//
//  1. Scale: map template-space bubble centres onto the decoded image
//     (independent sx/sy per axis, radius scaled by their average).
//  2. Sample: enumerate the circular bubble footprint, clipped to the image.
//  3. Score: compute the darkness fraction of each bubble against the
//     median luminance of its own bounding window.
//  4. Select: pick the highest-scoring bubble (lowest index on ties) and
//     accept it only if it is strictly above the template fill threshold.
//
// # Coordinate System
//
// Template coordinates are authored against Template.SheetWidth x
// Template.SheetHeight. Image coordinates are 0-based pixels with the
// origin at the top-left corner. All rounding from template space to
// image space is round-half-to-even.
//
// # Thread Safety
//
// A Template is read-only once validated and may be shared by any number
// of goroutines. Every other value in this package is created per sheet
// and never shared, so ScanSheet can run concurrently on different images.
//
// # Error Handling
//
// Degenerate geometry never produces an error: empty masks score 0,
// questions without bubbles and out-of-range choice indices yield the
// empty label. Errors are reserved for invalid templates (*ConfigError)
// and for failures attributed to a single image (*DecodeError,
// *ScoringError).
package omr
