// Package ocr reads the identity fields of an answer sheet: printed or
// handwritten text through Tesseract and one-dimensional barcodes through
// ZXing.
//
// # Prerequisites
//
// Text fields need Tesseract and its language data installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Barcode fields are pure Go and need nothing beyond the module.
//
// # Regions
//
// Every reader takes the decoded sheet and a rectangle in image pixels.
// The rectangle is cropped before recognition so the rest of the sheet,
// bubbles included, never reaches the recognizer.
//
// # Concurrency
//
// Readers hold only configuration. Each call creates its own Tesseract
// client or ZXing reader, so one reader may serve every worker of a batch.
package ocr
