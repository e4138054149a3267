package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/omr-scanner/internal/omr"
)

var (
	coldColor  = colorful.Color{R: 0, G: 0.4, B: 1}
	hotColor   = colorful.Color{R: 1, G: 0, B: 0}
	labelColor = color.NRGBA{R: 0, G: 128, B: 0, A: 255}
)

// ScoreColor maps a darkness fraction to an outline colour, blending from
// blue at 0 to red at 1 in HCL space.
func ScoreColor(score float64) color.NRGBA {
	t := math.Max(0, math.Min(1, score))
	r, g, b := coldColor.BlendHcl(hotColor, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// RenderOverlay draws every scored bubble of sheet on a copy of img: each
// circle is outlined in ScoreColor, the selected bubble is drawn with a
// thicker outline, and the question id is printed left of its first
// bubble. The source image is not modified.
func RenderOverlay(img image.Image, sheet *omr.Sheet) *image.NRGBA {
	dst := imaging.Clone(img)

	for _, q := range sheet.Questions {
		for i, b := range q.Bubbles {
			var score float64
			if i < len(q.Scores) {
				score = q.Scores[i]
			}
			thickness := 1.0
			if i == q.Selected {
				thickness = 3.0
			}
			drawRing(dst, b, sheet.Radius, thickness, ScoreColor(score))
		}
		if len(q.Bubbles) > 0 {
			first := q.Bubbles[0]
			x := first.X - sheet.Radius - 4 - 7*len(q.ID)
			drawLabel(dst, x, first.Y+4, q.ID)
		}
	}
	return dst
}

// drawRing outlines a circle of the given radius centred on c.
func drawRing(dst *image.NRGBA, c omr.Point, radius int, thickness float64, col color.NRGBA) {
	bounds := dst.Bounds()
	reach := radius + int(math.Ceil(thickness))
	half := thickness / 2
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			px, py := c.X+dx, c.Y+dy
			if !(image.Point{X: px, Y: py}).In(bounds) {
				continue
			}
			d := math.Hypot(float64(dx), float64(dy))
			if math.Abs(d-float64(radius)) <= half {
				dst.SetNRGBA(px, py, col)
			}
		}
	}
}

// drawLabel writes text with its baseline at (x, y).
func drawLabel(dst *image.NRGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// OverlayPath returns the overlay file name for a scan inside dir:
// "<dir>/<scan name without extension>_overlay.png".
func OverlayPath(dir, file string) string {
	base := filepath.Base(file)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"_overlay.png")
}

// SaveOverlay renders the overlay for sheet and writes it as PNG.
func SaveOverlay(path string, img image.Image, sheet *omr.Sheet) error {
	if err := imgio.Save(path, RenderOverlay(img, sheet), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}
