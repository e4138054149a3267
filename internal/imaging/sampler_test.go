package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/omr-scanner/internal/omr"
)

// Compile-time check that Sampler satisfies the scorer's interface.
var _ omr.PixelSampler = (*Sampler)(nil)

func TestSampler_Backends(t *testing.T) {
	want := color.RGBA{200, 100, 50, 255}

	gray := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range gray.Pix {
		gray.Pix[i] = 90
	}
	paletted := image.NewPaletted(image.Rect(0, 0, 4, 3), color.Palette{color.White, want})
	for i := range paletted.Pix {
		paletted.Pix[i] = 1
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			nrgba.SetNRGBA(x, y, color.NRGBA{200, 100, 50, 255})
		}
	}

	tests := []struct {
		name    string
		img     image.Image
		r, g, b uint8
	}{
		{"rgba", solidImage(4, 3, want), 200, 100, 50},
		{"nrgba", nrgba, 200, 100, 50},
		{"gray", gray, 90, 90, 90},
		{"paletted", paletted, 200, 100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSampler(tt.img)
			if s.Width() != 4 || s.Height() != 3 {
				t.Fatalf("dimensions: got %dx%d, want 4x3", s.Width(), s.Height())
			}
			r, g, b := s.RGB(3, 2)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("RGB: got (%d,%d,%d), want (%d,%d,%d)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestSampler_OffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 14, 23))
	src.SetRGBA(10, 20, color.RGBA{1, 2, 3, 255})

	s := NewSampler(src)
	if s.Width() != 4 || s.Height() != 3 {
		t.Fatalf("dimensions: got %dx%d, want 4x3", s.Width(), s.Height())
	}
	if r, g, b := s.RGB(0, 0); r != 1 || g != 2 || b != 3 {
		t.Errorf("origin pixel: got (%d,%d,%d), want (1,2,3)", r, g, b)
	}
}

func TestSampler_NoCopyForNRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if s := NewSampler(src); s.Image() != src {
		t.Error("NewSampler copied an image that was already NRGBA at the origin")
	}
}

func TestSampler_OutOfBoundsIsWhite(t *testing.T) {
	s := NewSampler(solidImage(2, 2, color.Black))
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if r, g, b := s.RGB(p.X, p.Y); r != 255 || g != 255 || b != 255 {
			t.Errorf("RGB%v: got (%d,%d,%d), want white", p, r, g, b)
		}
	}
}
