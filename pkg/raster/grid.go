package raster

import (
	"math"

	"github.com/chazu/twirl/pkg/shape"
)

// Pixel is an integer pixel-space coordinate (y up).
type Pixel struct {
	X, Y int
}

// Grid maps the square [-Bound, Bound]² onto Resolution x Resolution pixels.
type Grid struct {
	Bound      float64
	Resolution int
}

// Step returns the world-space size of one pixel.
func (g Grid) Step() float64 {
	return 2 * g.Bound / float64(g.Resolution)
}

// Valid reports whether the grid can be rasterized onto.
func (g Grid) Valid() bool {
	return g.Bound > 0 && g.Resolution > 0
}

// Normalize closes the ring by repeating its first point, then shifts by
// Bound, divides by Step and floors every coordinate. Flooring up front
// keeps the edge walks free of accumulated drift.
func (g Grid) Normalize(points []shape.Point) []Pixel {
	if len(points) == 0 {
		return nil
	}
	step := g.Step()
	out := make([]Pixel, 0, len(points)+1)
	for _, p := range points {
		out = append(out, Pixel{
			X: int(math.Floor((p.X + g.Bound) / step)),
			Y: int(math.Floor((p.Y + g.Bound) / step)),
		})
	}
	return append(out, out[0])
}
