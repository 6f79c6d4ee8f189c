package transform

import (
	"math"

	"github.com/chazu/twirl/pkg/shape"
)

// Mat2 is a 2x2 linear map:
//
//	| A  B |
//	| C  D |
type Mat2 struct {
	A, B, C, D float64
}

// Identity returns the identity matrix.
func Identity() Mat2 {
	return Mat2{A: 1, D: 1}
}

// Rotate returns a counter-clockwise rotation matrix (angle in radians).
func Rotate(radians float64) Mat2 {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Mat2{A: cos, B: -sin, C: sin, D: cos}
}

// Scale returns a uniform scaling matrix.
func Scale(k float64) Mat2 {
	return Mat2{A: k, D: k}
}

// Apply multiplies the matrix by the column vector p.
func (m Mat2) Apply(p shape.Point) shape.Point {
	return shape.Point{
		X: m.A*p.X + m.B*p.Y,
		Y: m.C*p.X + m.D*p.Y,
	}
}

// Mul returns m * o, which applies o first, then m.
func (m Mat2) Mul(o Mat2) Mat2 {
	return Mat2{
		A: m.A*o.A + m.B*o.C,
		B: m.A*o.B + m.B*o.D,
		C: m.C*o.A + m.D*o.C,
		D: m.C*o.B + m.D*o.D,
	}
}

// Near reports whether every entry differs from o by less than tol.
func (m Mat2) Near(o Mat2, tol float64) bool {
	return math.Abs(m.A-o.A) < tol && math.Abs(m.B-o.B) < tol &&
		math.Abs(m.C-o.C) < tol && math.Abs(m.D-o.D) < tol
}
