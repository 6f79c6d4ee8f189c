package shape

import "math"

// CircleSegments is the vertex count used to approximate a circle.
const CircleSegments = 50

// SquareAngle is the default starting angle for Square. It places the
// vertices on the diagonals so the edges are axis-aligned.
const SquareAngle = math.Pi / 4

// RegularPolygon places n vertices at distance radius from center, vertex k
// at angle 2πk/n + angle (radians).
func RegularPolygon(n int, radius float64, center Point, angle float64) Shape {
	if n < 1 {
		n = 1
	}
	points := make([]Point, n)
	for k := 0; k < n; k++ {
		theta := 2*math.Pi*float64(k)/float64(n) + angle
		points[k] = Point{
			X: radius*math.Cos(theta) + center.X,
			Y: radius*math.Sin(theta) + center.Y,
		}
	}
	return MustNew(points...)
}

// Square returns a square with the given side length. Use SquareAngle for
// axis-aligned edges.
func Square(side float64, center Point, angle float64) Shape {
	return RegularPolygon(4, math.Sqrt2*side/2, center, angle)
}

// Circle approximates a circle with a CircleSegments-gon.
func Circle(radius float64, center Point) Shape {
	return RegularPolygon(CircleSegments, radius, center, 0)
}
