package omr

import "sort"

// FillFraction returns the darkness fraction of the bubble centred at c.
//
// The threshold is local: the median luminance of every pixel in the
// bubble's bounding window (corners included) splits dark from light, and
// the result is the share of circular-mask pixels strictly darker than
// that median. Each bubble is judged against its own surroundings, which
// absorbs uneven illumination across the sheet at the cost of noise when
// the window is only a few pixels wide.
//
// A mask that is empty after clipping scores 0.
func FillFraction(s PixelSampler, c Point, radius int) float64 {
	region := CircleRegion(c.X, c.Y, radius, s.Width(), s.Height())
	return region.DarkFraction(s)
}

// DarkFraction scores an already built region against s.
func (r Region) DarkFraction(s PixelSampler) float64 {
	if r.Empty() {
		return 0
	}

	w := r.Window.Dx()
	lum := make([]float64, 0, w*r.Window.Dy())
	for y := r.Window.Min.Y; y < r.Window.Max.Y; y++ {
		for x := r.Window.Min.X; x < r.Window.Max.X; x++ {
			lum = append(lum, Luminance(s.RGB(x, y)))
		}
	}
	threshold := median(lum)

	dark, total := 0, 0
	for _, span := range r.Spans {
		row := (span.Y - r.Window.Min.Y) * w
		for x := span.X0; x <= span.X1; x++ {
			if lum[row+x-r.Window.Min.X] < threshold {
				dark++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(dark) / float64(total)
}

// ScoreQuestion scores every bubble of q, index-aligned with q.Bubbles.
func ScoreQuestion(s PixelSampler, q ScaledQuestion, radius int) []float64 {
	scores := make([]float64, len(q.Bubbles))
	for i, b := range q.Bubbles {
		scores[i] = FillFraction(s, b, radius)
	}
	return scores
}

// median returns the upper median, values[len/2] of the sorted input.
// values must not be empty.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
