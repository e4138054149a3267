package omr

import (
	"image"
	"image/color"
)

// rgbaSampler adapts an in-memory RGBA image to PixelSampler.
type rgbaSampler struct {
	img *image.RGBA
}

func (s rgbaSampler) Width() int  { return s.img.Bounds().Dx() }
func (s rgbaSampler) Height() int { return s.img.Bounds().Dy() }
func (s rgbaSampler) RGB(x, y int) (uint8, uint8, uint8) {
	c := s.img.RGBAAt(x, y)
	return c.R, c.G, c.B
}

// newCanvas creates a width x height image filled with c.
func newCanvas(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// fillDisk paints the same circular mask the scorer samples.
func fillDisk(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	b := img.Bounds()
	for _, s := range CircleRegion(cx, cy, r, b.Dx(), b.Dy()).Spans {
		for x := s.X0; x <= s.X1; x++ {
			img.SetRGBA(x, s.Y, c)
		}
	}
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

// sampleTemplate is a 100x50 reference sheet with two five-choice
// questions and an eleven-choice Q1.
func sampleTemplate() *Template {
	q1 := make([]TemplatePoint, 11)
	for i := range q1 {
		q1[i] = TemplatePoint{X: float64(5 + i*8), Y: 10}
	}
	row := func(y float64) []TemplatePoint {
		pts := make([]TemplatePoint, 5)
		for i := range pts {
			pts[i] = TemplatePoint{X: float64(10 + i*15), Y: y}
		}
		return pts
	}
	return &Template{
		SheetWidth:    100,
		SheetHeight:   50,
		BubbleRadius:  3,
		FillThreshold: DefaultFillThreshold,
		Questions: []Question{
			{ID: "Q1", Bubbles: q1},
			{ID: "Q2", Bubbles: row(25)},
			{ID: "Q3", Bubbles: row(40)},
		},
		Choices:   []string{"A", "B", "C", "D", "E"},
		ChoicesQ1: []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
	}
}
