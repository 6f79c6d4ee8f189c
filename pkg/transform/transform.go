// Package transform holds precomputed, depth-indexed 2D linear maps.
//
// A Transform is a discretized path from the identity (index 0) to a final
// map (index Depth). Every entry is computed up front so that animating a
// shape is one matrix-vector product per point per depth level.
package transform

import (
	"fmt"
	"math"

	"github.com/chazu/twirl/pkg/shape"
)

// DefaultDepth is the number of steps used when a depth is not given.
const DefaultDepth = 500

// Kind enumerates transform types.
type Kind int

const (
	KindRotation Kind = iota // rotation by an angle
	KindDilation             // uniform scale
)

func (k Kind) String() string {
	switch k {
	case KindRotation:
		return "rotation"
	case KindDilation:
		return "dilation"
	default:
		return "unknown"
	}
}

// Pivot selects the point a transform is applied about. The zero value is
// center-relative: the subject shape's own center.
type Pivot struct {
	fixed bool
	at    shape.Point
}

// CenterRelative returns a pivot that follows the subject shape's center.
func CenterRelative() Pivot {
	return Pivot{}
}

// FixedAt returns a pivot at a fixed world-space point.
func FixedAt(p shape.Point) Pivot {
	return Pivot{fixed: true, at: p}
}

// IsFixed reports whether the pivot is a fixed world-space point.
func (p Pivot) IsFixed() bool {
	return p.fixed
}

// Point returns the fixed pivot point. It is the zero point for
// center-relative pivots.
func (p Pivot) Point() shape.Point {
	return p.at
}

// Resolve returns the point to transform about for a shape with the given
// center.
func (p Pivot) Resolve(center shape.Point) shape.Point {
	if p.fixed {
		return p.at
	}
	return center
}

func (p Pivot) String() string {
	if p.fixed {
		return "pivot " + p.at.String()
	}
	return "center"
}

// Transform is a depth-indexed stack of Depth+1 matrices plus a pivot.
type Transform struct {
	Kind  Kind
	Pivot Pivot
	// Amount is the final angle in degrees for rotations and the final
	// factor for dilations.
	Amount float64
	mats   []Mat2
}

// NewRotation precomputes depth+1 rotations, entry i rotating by
// degrees·i/depth. depth < 1 is treated as 1.
func NewRotation(degrees float64, pivot Pivot, depth int) Transform {
	depth = clampDepth(depth)
	rad := degrees * math.Pi / 180.0
	mats := make([]Mat2, depth+1)
	for i := range mats {
		mats[i] = Rotate(rad * float64(i) / float64(depth))
	}
	return Transform{Kind: KindRotation, Pivot: pivot, Amount: degrees, mats: mats}
}

// NewDilation precomputes depth+1 uniform scales moving linearly from 1 to
// factor. Dilations are always center-relative.
func NewDilation(factor float64, depth int) Transform {
	depth = clampDepth(depth)
	mats := make([]Mat2, depth+1)
	for i := range mats {
		t := float64(i) / float64(depth)
		var k float64
		if factor > 1 {
			k = 1 + t*(factor-1)
		} else {
			k = 1 - t*(1-factor)
		}
		mats[i] = Scale(k)
	}
	mats[depth] = Scale(factor)
	return Transform{Kind: KindDilation, Amount: factor, mats: mats}
}

func clampDepth(depth int) int {
	if depth < 1 {
		return 1
	}
	return depth
}

// Depth returns the final depth index. The stack has Depth()+1 entries.
func (t Transform) Depth() int {
	return len(t.mats) - 1
}

// At returns the matrix at depth index i.
func (t Transform) At(i int) Mat2 {
	return t.mats[i]
}

// Matrices returns a copy of the matrix stack.
func (t Transform) Matrices() []Mat2 {
	return append([]Mat2(nil), t.mats...)
}

// IsZero reports whether the transform was never constructed.
func (t Transform) IsZero() bool {
	return len(t.mats) == 0
}

func (t Transform) String() string {
	switch t.Kind {
	case KindRotation:
		return fmt.Sprintf("rotation %g° about %s over %d", t.Amount, t.Pivot, t.Depth())
	case KindDilation:
		return fmt.Sprintf("dilation x%g over %d", t.Amount, t.Depth())
	}
	return "unknown transform"
}
