package ocr

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// ErrNoBarcode is returned when no supported symbology decodes.
var ErrNoBarcode = errors.New("no barcode found")

// BarcodeResult is a decoded barcode.
type BarcodeResult struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

// BarcodeReader decodes one-dimensional barcodes. Code 128, Code 39,
// EAN-13 and ITF are tried in that order.
type BarcodeReader struct{}

func barcodeReaders() []gozxing.Reader {
	return []gozxing.Reader{
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
		oned.NewEAN13Reader(),
		oned.NewITFReader(),
	}
}

// ReadRegion crops region out of img and decodes the first barcode found.
func (BarcodeReader) ReadRegion(img image.Image, region image.Rectangle) (*BarcodeResult, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("barcode region %v lies outside the image", region)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(imaging.Crop(img, region))
	if err != nil {
		return nil, fmt.Errorf("failed to create bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	for _, reader := range barcodeReaders() {
		result, err := reader.Decode(bmp, hints)
		if err == nil {
			return &BarcodeResult{
				Text:   result.GetText(),
				Format: result.GetBarcodeFormat().String(),
			}, nil
		}
	}
	return nil, ErrNoBarcode
}
