package raster

import (
	"math"

	"github.com/chazu/twirl/pkg/shape"
)

// Wires draws the outline of the polygon ring. If dst is non-nil the
// outline is drawn onto it and dst is returned; otherwise a fresh image is
// allocated. Wires only ever sets pixels, so several rings may share one
// destination in any order.
//
// Each edge is walked along its longer axis. Steep edges set one pixel per
// row; shallow edges set a two-pixel run (x-1, x) per column so flooring
// cannot open gaps.
func Wires(points []shape.Point, g Grid, dst *Image) *Image {
	if dst == nil {
		dst = NewImage(g.Resolution)
	}
	ring := g.Normalize(points)
	for i := 0; i+1 < len(ring); i++ {
		walkEdge(dst, ring[i], ring[i+1])
	}
	return dst
}

// walkEdge plots every step from a towards b, excluding b itself, which is
// the first step of the following edge.
func walkEdge(dst *Image, a, b Pixel) {
	dx, dy := b.X-a.X, b.Y-a.Y
	adx, ady := abs(dx), abs(dy)

	if ady > adx {
		sy := sign(dy)
		for s := 0; s < ady; s++ {
			x := a.X + floorDiv(s*dx, ady)
			dst.plot(x, a.Y+s*sy)
		}
		return
	}

	sx := sign(dx)
	for s := 0; s < adx; s++ {
		x := a.X + s*sx
		// dy == 0 holds y constant.
		y := a.Y + floorDiv(s*dy, adx)
		dst.plot(x-1, y)
		dst.plot(x, y)
	}
}

func floorDiv(n, d int) int {
	return int(math.Floor(float64(n) / float64(d)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
