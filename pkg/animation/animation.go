// Package animation pairs shapes with the transforms that animate them and
// composes those transforms into depth-indexed point sets.
package animation

import (
	"errors"
	"fmt"

	"github.com/chazu/twirl/pkg/shape"
	"github.com/chazu/twirl/pkg/transform"
)

var (
	// ErrNoShapes is returned when rendering an animation with no entries.
	ErrNoShapes = errors.New("animation: no shapes")
	// ErrNoTransforms is returned for a shape registered without transforms.
	ErrNoTransforms = errors.New("animation: shape has no transforms")
	// ErrDepthMismatch is returned when a shape's transforms disagree on depth.
	ErrDepthMismatch = errors.New("animation: transforms have different depths")
	// ErrZeroTransform is returned for a transform that was never constructed.
	ErrZeroTransform = errors.New("animation: uninitialized transform")
)

// Entry is one shape and the ordered transforms applied to it.
type Entry struct {
	Shape      shape.Shape
	Transforms []transform.Transform
}

// Depth returns the depth shared by the entry's transforms, or -1 if it has
// none.
func (e Entry) Depth() int {
	if len(e.Transforms) == 0 {
		return -1
	}
	return e.Transforms[0].Depth()
}

// Frames is a depth-indexed sequence of point sets: Frames[i] is the
// shape's ring at depth index i.
type Frames [][]shape.Point

// Depth returns the final depth index.
func (f Frames) Depth() int {
	return len(f) - 1
}

// Animation is an ordered list of shape entries. Entries are kept in
// insertion order so rendering is deterministic.
type Animation struct {
	entries []Entry
}

// New returns an empty animation.
func New() *Animation {
	return &Animation{}
}

// AddShape registers transforms for s. If an equal shape is already
// registered its transform list is replaced.
func (a *Animation) AddShape(s shape.Shape, transforms ...transform.Transform) {
	ts := append([]transform.Transform(nil), transforms...)
	for i := range a.entries {
		if a.entries[i].Shape.Equal(s) {
			a.entries[i].Transforms = ts
			return
		}
	}
	a.entries = append(a.entries, Entry{Shape: s, Transforms: ts})
}

// Entries returns a copy of the entry list.
func (a *Animation) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// Len returns the number of entries.
func (a *Animation) Len() int {
	return len(a.entries)
}

// Order returns ts with every center-relative transform moved ahead of the
// fixed-pivot ones. Relative order inside each group is preserved. Running
// center-relative transforms first means the original center stays valid
// for all of them.
func Order(ts []transform.Transform) []transform.Transform {
	out := make([]transform.Transform, 0, len(ts))
	for _, t := range ts {
		if !t.Pivot.IsFixed() {
			out = append(out, t)
		}
	}
	for _, t := range ts {
		if t.Pivot.IsFixed() {
			out = append(out, t)
		}
	}
	return out
}

// Render composes every entry's transforms and returns one Frames per
// entry, in entry order.
func (a *Animation) Render() ([]Frames, error) {
	if len(a.entries) == 0 {
		return nil, ErrNoShapes
	}
	out := make([]Frames, 0, len(a.entries))
	for i, e := range a.entries {
		f, err := Compose(e.Shape, e.Transforms)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Compose applies ts to s at every depth level.
func Compose(s shape.Shape, ts []transform.Transform) (Frames, error) {
	if s.IsZero() {
		return nil, shape.ErrEmptyShape
	}
	if len(ts) == 0 {
		return nil, ErrNoTransforms
	}
	for k, t := range ts {
		if t.IsZero() {
			return nil, fmt.Errorf("%w: transform %d", ErrZeroTransform, k)
		}
	}
	ordered := Order(ts)
	depth := ordered[0].Depth()
	for _, t := range ordered[1:] {
		if t.Depth() != depth {
			return nil, fmt.Errorf("%w: %d and %d", ErrDepthMismatch, depth, t.Depth())
		}
	}

	center := s.Center()
	src := s.Points()

	// The first transform fans the single ring out to depth+1 copies.
	first := ordered[0]
	pivot := first.Pivot.Resolve(center)
	frames := make(Frames, depth+1)
	for i := range frames {
		m := first.At(i)
		ring := make([]shape.Point, len(src))
		for k, p := range src {
			ring[k] = m.Apply(p.Sub(pivot)).Add(pivot)
		}
		frames[i] = ring
	}

	// Later transforms act per depth level on the already fanned-out rings.
	for _, t := range ordered[1:] {
		pivot := t.Pivot.Resolve(center)
		for i, ring := range frames {
			m := t.At(i)
			for k, p := range ring {
				ring[k] = m.Apply(p.Sub(pivot)).Add(pivot)
			}
		}
	}
	return frames, nil
}
