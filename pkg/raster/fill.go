package raster

import (
	"math"
	"slices"

	"github.com/chazu/twirl/pkg/shape"
)

// Fill rasterizes the polygon ring as a filled region using the even-odd
// rule. Each pixel row is sampled along its center line (y + 0.5); since
// normalized vertices are integers, no vertex ever lies on a sample line and
// horizontal edges never cross one. A pixel is set when its center lies
// between an odd-numbered crossing and the next one.
func Fill(points []shape.Point, g Grid) *Image {
	img := NewImage(g.Resolution)
	ring := g.Normalize(points)
	if len(ring) < 4 {
		// Fewer than three distinct vertices enclose nothing.
		return img
	}

	minY, maxY := ring[0].Y, ring[0].Y
	for _, p := range ring[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	minY = max(minY, 0)
	maxY = min(maxY, g.Resolution)

	var xs []float64
	for py := minY; py < maxY; py++ {
		yc := float64(py) + 0.5
		xs = xs[:0]
		for i := 0; i < len(ring)-1; i++ {
			a, b := ring[i], ring[i+1]
			if a.Y == b.Y {
				continue
			}
			ay, by := float64(a.Y), float64(b.Y)
			if (ay < yc) == (by < yc) {
				continue
			}
			t := (yc - ay) / (by - ay)
			xs = append(xs, float64(a.X)+t*float64(b.X-a.X))
		}
		slices.Sort(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			c0 := int(math.Ceil(xs[i] - 0.5))
			c1 := int(math.Ceil(xs[i+1] - 0.5))
			fillSpan(img, py, c0, c1)
		}
	}
	return img
}

// fillSpan toggles pixel-space row py from column c0 up to but excluding c1.
// Spans from one polygon never overlap, so toggling equals setting here.
func fillSpan(img *Image, py, c0, c1 int) {
	c0 = max(c0, 0)
	c1 = min(c1, img.res)
	row := img.res - 1 - py
	for c := c0; c < c1; c++ {
		img.Toggle(c, row)
	}
}
