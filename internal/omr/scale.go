package omr

import (
	"fmt"
	"image"
	"math"
)

// Point is a pixel coordinate in image space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ScaledQuestion is a Question with its bubbles mapped into image space.
type ScaledQuestion struct {
	ID      string  `json:"id"`
	Bubbles []Point `json:"bubbles"`
}

// Scaling is the template geometry remapped onto one image. It is only
// valid for the image dimensions it was computed from.
type Scaling struct {
	SX        float64          `json:"sx"`
	SY        float64          `json:"sy"`
	Radius    int              `json:"radius"`
	Questions []ScaledQuestion `json:"questions"`
}

// Scale maps every bubble of t onto an image of the given size.
//
// Each axis scales independently (sx = width/SheetWidth,
// sy = height/SheetHeight), so scans with a different aspect ratio are
// stretched rather than letterboxed. The radius uses the mean of sx and
// sy; elliptical distortion when sx != sy is not corrected.
//
// Coordinates and radius are rounded half-to-even.
func Scale(width, height int, t *Template) (*Scaling, error) {
	if t.SheetWidth <= 0 || t.SheetHeight <= 0 {
		return nil, configErrorf("sheet_size", "reference dimensions must be positive, got %dx%d", t.SheetWidth, t.SheetHeight)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image has no pixels (%dx%d)", width, height)
	}

	sx := float64(width) / float64(t.SheetWidth)
	sy := float64(height) / float64(t.SheetHeight)

	questions := make([]ScaledQuestion, len(t.Questions))
	for i, q := range t.Questions {
		bubbles := make([]Point, len(q.Bubbles))
		for j, b := range q.Bubbles {
			bubbles[j] = Point{X: roundInt(b.X * sx), Y: roundInt(b.Y * sy)}
		}
		questions[i] = ScaledQuestion{ID: q.ID, Bubbles: bubbles}
	}

	return &Scaling{
		SX:        sx,
		SY:        sy,
		Radius:    roundInt(t.BubbleRadius * (sx + sy) / 2),
		Questions: questions,
	}, nil
}

// Rect maps a template-space rectangle into image space with the same
// per-axis factors used for bubbles.
func (s *Scaling) Rect(r TemplateRect) image.Rectangle {
	return image.Rect(roundInt(r.X1*s.SX), roundInt(r.Y1*s.SY), roundInt(r.X2*s.SX), roundInt(r.Y2*s.SY))
}

func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}
