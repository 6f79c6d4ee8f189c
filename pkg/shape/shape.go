// Package shape defines the 2D polygons that twirl animates. A Shape is an
// ordered ring of points (winding order is preserved) plus its centroid.
// Shapes are values: Translate and Scale return new shapes.
package shape

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrEmptyShape is returned when a shape is built from zero points.
var ErrEmptyShape = errors.New("shape: no points")

// Point is a 2D coordinate. X increases to the right, Y increases up.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Shape is an ordered point ring with a derived center.
type Shape struct {
	points []Point
	center Point
}

// New builds a shape from an explicit ordered point list.
func New(points ...Point) (Shape, error) {
	if len(points) == 0 {
		return Shape{}, ErrEmptyShape
	}
	s := Shape{points: append([]Point(nil), points...)}
	s.findCenter()
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(points ...Point) Shape {
	s, err := New(points...)
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns the degenerate single-point shape at the origin.
func Default() Shape {
	return MustNew(Point{})
}

// findCenter recomputes the centroid. Must run whenever points change.
func (s *Shape) findCenter() {
	var sum Point
	for _, p := range s.points {
		sum = sum.Add(p)
	}
	s.center = sum.Mul(1 / float64(len(s.points)))
}

// Center returns the arithmetic mean of the shape's points.
func (s Shape) Center() Point {
	return s.center
}

// Len returns the number of points.
func (s Shape) Len() int {
	return len(s.points)
}

// IsZero reports whether the shape was never constructed.
func (s Shape) IsZero() bool {
	return len(s.points) == 0
}

// Points returns a copy of the point ring.
func (s Shape) Points() []Point {
	return append([]Point(nil), s.points...)
}

// At returns the i-th point.
func (s Shape) At(i int) Point {
	return s.points[i]
}

// Translate returns a new shape with every point offset by v.
func (s Shape) Translate(v Point) Shape {
	out := make([]Point, len(s.points))
	for i, p := range s.points {
		out[i] = p.Add(v)
	}
	return MustNew(out...)
}

// Scale returns a new shape with every point multiplied by k.
// Scaling is about the origin, not the center.
func (s Shape) Scale(k float64) Shape {
	out := make([]Point, len(s.points))
	for i, p := range s.points {
		out[i] = p.Mul(k)
	}
	return MustNew(out...)
}

// Equal reports whether both shapes have the same points in the same order.
func (s Shape) Equal(o Shape) bool {
	if len(s.points) != len(o.points) {
		return false
	}
	for i := range s.points {
		if s.points[i] != o.points[i] {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of the points.
func (s Shape) Bounds() (min, max Point) {
	if len(s.points) == 0 {
		return Point{}, Point{}
	}
	min, max = s.points[0], s.points[0]
	for _, p := range s.points[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

func (s Shape) String() string {
	parts := make([]string, len(s.points))
	for i, p := range s.points {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
