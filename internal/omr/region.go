package omr

import (
	"image"
	"math"
)

// PixelSampler is the read-only view of a decoded image that the scorer
// consumes. RGB is only called for 0 <= x < Width() and 0 <= y < Height().
type PixelSampler interface {
	Width() int
	Height() int
	RGB(x, y int) (r, g, b uint8)
}

// Luminance converts 8-bit RGB to relative luminance in [0,1] using the
// Rec. 709 weights.
func Luminance(r, g, b uint8) float64 {
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255.0
}

// Span is one row of a circular mask, X0 and X1 inclusive.
type Span struct {
	Y  int
	X0 int
	X1 int
}

// Region is the sampling footprint of one bubble: its clipped bounding
// window and the circular mask inside it.
type Region struct {
	// Window is the bounding box [x-r, x+r] x [y-r, y+r] clipped to the
	// image. Max is exclusive.
	Window image.Rectangle

	// Spans lists the mask rows in increasing Y. Rows that the clip
	// leaves empty are omitted.
	Spans []Span
}

// CircleRegion builds the footprint of a bubble centred at (cx, cy) with
// radius r on a width x height image. A window that falls entirely
// outside the image produces an empty Region.
func CircleRegion(cx, cy, r, width, height int) Region {
	x0, x1 := max(0, cx-r), min(width-1, cx+r)
	y0, y1 := max(0, cy-r), min(height-1, cy+r)
	if x0 > x1 || y0 > y1 {
		return Region{}
	}

	region := Region{Window: image.Rect(x0, y0, x1+1, y1+1)}
	r2 := r * r
	for y := y0; y <= y1; y++ {
		dy := y - cy
		rem := r2 - dy*dy
		if rem < 0 {
			continue
		}
		dx := int(math.Sqrt(float64(rem)))
		xs, xe := max(x0, cx-dx), min(x1, cx+dx)
		if xs > xe {
			continue
		}
		region.Spans = append(region.Spans, Span{Y: y, X0: xs, X1: xe})
	}
	return region
}

// Empty reports whether the mask contains no pixels.
func (r Region) Empty() bool {
	return len(r.Spans) == 0
}

// MaskSize returns the number of pixels inside the circular mask.
func (r Region) MaskSize() int {
	n := 0
	for _, s := range r.Spans {
		n += s.X1 - s.X0 + 1
	}
	return n
}
