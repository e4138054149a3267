package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used when none is set.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is one recognised word with its location and confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is Tesseract's confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Bounds is the word box in the coordinates of the full sheet.
	Bounds Bounds `json:"bounds"`
}

// TextResult holds the text read from one region.
type TextResult struct {
	Text  string `json:"text"`
	Words []Word `json:"words"`
}

// TextReader recognises text inside sheet regions with Tesseract.
type TextReader struct {
	// Language is a Tesseract language code such as "eng". Empty means
	// DefaultLanguage.
	Language string

	// TessdataPrefix overrides the tessdata directory when non-empty.
	TessdataPrefix string

	// Whitelist restricts recognition to these characters when non-empty,
	// e.g. "0123456789" for student numbers.
	Whitelist string
}

// ReadRegion crops region out of img and recognises it as a single line
// of text. Word bounds are shifted back into sheet coordinates.
//
// The crop is passed to Tesseract as an in-memory PNG; no temporary
// files are written.
func (r *TextReader) ReadRegion(img image.Image, region image.Rectangle) (*TextResult, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("text region %v lies outside the image", region)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.Crop(img, region)); err != nil {
		return nil, fmt.Errorf("failed to encode text region: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if r.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	lang := r.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if r.Whitelist != "" {
		if err := client.SetWhitelist(r.Whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	result := &TextResult{Text: strings.TrimSpace(text), Words: []Word{}}

	// Word boxes are best effort; the text alone is enough for a field.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		result.Words = append(result.Words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X + region.Min.X,
				Y1: box.Box.Min.Y + region.Min.Y,
				X2: box.Box.Max.X + region.Min.X,
				Y2: box.Box.Max.Y + region.Min.Y,
			},
		})
	}
	return result, nil
}

// TesseractVersion returns the version of the linked Tesseract library.
func TesseractVersion() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
