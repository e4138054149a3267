package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/omr-scanner/internal/omr"
)

// FieldReader reads template identity fields by kind. It satisfies
// batch.FieldReader.
type FieldReader struct {
	Text    TextReader
	Barcode BarcodeReader
}

// ReadField reads one field from its scaled region.
func (r *FieldReader) ReadField(ctx context.Context, img image.Image, field omr.Field, region image.Rectangle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch field.Kind {
	case omr.FieldBarcode:
		res, err := r.Barcode.ReadRegion(img, region)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", field.ID, err)
		}
		return res.Text, nil
	case omr.FieldText:
		res, err := r.Text.ReadRegion(img, region)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", field.ID, err)
		}
		return res.Text, nil
	}
	return "", fmt.Errorf("field %s: unknown kind %q", field.ID, field.Kind)
}
