package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Sampler presents a decoded image as an omr.PixelSampler.
type Sampler struct {
	img *image.NRGBA
}

// NewSampler normalises img to an *image.NRGBA anchored at (0,0). Images
// that already have that layout are used without copying.
func NewSampler(img image.Image) *Sampler {
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = imaging.Clone(img)
	}
	return &Sampler{img: nrgba}
}

// Width returns the image width in pixels.
func (s *Sampler) Width() int { return s.img.Rect.Dx() }

// Height returns the image height in pixels.
func (s *Sampler) Height() int { return s.img.Rect.Dy() }

// RGB returns the 8-bit colour channels at (x, y). Coordinates outside the
// image read as white paper.
func (s *Sampler) RGB(x, y int) (r, g, b uint8) {
	if x < 0 || y < 0 || x >= s.img.Rect.Dx() || y >= s.img.Rect.Dy() {
		return 255, 255, 255
	}
	i := s.img.PixOffset(x, y)
	p := s.img.Pix[i : i+3 : i+3]
	return p[0], p[1], p[2]
}

// Image returns the normalised buffer.
func (s *Sampler) Image() *image.NRGBA {
	return s.img
}
