package engine

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/twirl/pkg/animation"
	"github.com/chazu/twirl/pkg/shape"
	"github.com/chazu/twirl/pkg/transform"
)

// evalState is the mutable state shared by the builtins of one evaluation.
type evalState struct {
	anim  *animation.Animation
	depth int
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec2 struct {
	p shape.Point
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.p.X, v.p.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

type sexpShape struct {
	s shape.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	c := s.s.Center()
	return fmt.Sprintf("(shape :points %d :center (vec2 %g %g))", s.s.Len(), c.X, c.Y)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

type sexpTransform struct {
	t transform.Transform
}

func (t *sexpTransform) SexpString(ps *zygo.PrintState) string {
	return "(" + t.t.String() + ")"
}
func (t *sexpTransform) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string and returns its
// name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			res.positional = append(res.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
		} else {
			res.kw[name] = zygo.SexpNull
		}
	}
	return res
}

// value returns the keyword argument name, falling back to positional
// argument pos when the keyword is absent.
func (a kwArgs) value(name string, pos int) (zygo.Sexp, bool) {
	if v, ok := a.kw[name]; ok {
		return v, true
	}
	if pos >= 0 && pos < len(a.positional) {
		return a.positional[pos], true
	}
	return nil, false
}

// float returns a numeric argument or def when absent.
func (a kwArgs) float(name string, pos int, def float64) (float64, error) {
	v, ok := a.value(name, pos)
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// point returns a vec2 argument or def when absent.
func (a kwArgs) point(name string, pos int, def shape.Point) (shape.Point, error) {
	v, ok := a.value(name, pos)
	if !ok {
		return def, nil
	}
	p, err := toVec2(v)
	if err != nil {
		return shape.Point{}, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// depth returns the :depth argument or the evaluation's default depth.
func (a kwArgs) depth(st *evalState) (int, error) {
	v, ok := a.kw["depth"]
	if !ok {
		return st.depth, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("depth: %w", err)
	}
	if n < 1 {
		return 0, fmt.Errorf("depth: must be at least 1, got %d", n)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt accepts integers and integral floats.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toVec2(s zygo.Sexp) (shape.Point, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.p, nil
	}
	return shape.Point{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

func toShape(s zygo.Sexp) (shape.Shape, error) {
	if v, ok := s.(*sexpShape); ok {
		return v.s, nil
	}
	return shape.Shape{}, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

func toTransform(s zygo.Sexp) (transform.Transform, error) {
	if v, ok := s.(*sexpTransform); ok {
		return v.t, nil
	}
	return transform.Transform{}, fmt.Errorf("expected transform, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten splices list and array arguments into the argument list, so
// (polygon pts) and (polygon a b c) read the same.
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the animation DSL into a zygomys environment.
// animate appends to st.anim as the script runs.
//
// Source must go through preprocessSource first so that :keyword tokens
// arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *evalState) {

	// (vec2 1 2)
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}
		return &sexpVec2{p: shape.Point{X: x, Y: y}}, nil
	})

	// (polygon (vec2 0 0) (vec2 2 0) (vec2 0 2))
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items, err := flatten(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		pts := make([]shape.Point, 0, len(items))
		for i, it := range items {
			p, err := toVec2(it)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: point %d: %w", i, err)
			}
			pts = append(pts, p)
		}
		s, err := shape.New(pts...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		return &sexpShape{s: s}, nil
	})

	// (ngon :sides 6 :radius 2 :center (vec2 0 0) :angle 0)
	env.AddFunction("ngon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.value("sides", 0)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("ngon requires :sides")
		}
		sides, err := toInt(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ngon: sides: %w", err)
		}
		if sides < 3 {
			return zygo.SexpNull, fmt.Errorf("ngon: sides must be at least 3, got %d", sides)
		}
		radius, err := pa.float("radius", -1, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ngon: %w", err)
		}
		center, err := pa.point("center", -1, shape.Point{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ngon: %w", err)
		}
		angle, err := pa.float("angle", -1, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ngon: %w", err)
		}
		return &sexpShape{s: shape.RegularPolygon(sides, radius, center, radians(angle))}, nil
	})

	// (square :side 5 :center (vec2 5 0) :angle 45)
	env.AddFunction("square", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		side, err := pa.float("side", 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("square: %w", err)
		}
		center, err := pa.point("center", -1, shape.Point{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("square: %w", err)
		}
		angle, err := pa.float("angle", -1, 45)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("square: %w", err)
		}
		return &sexpShape{s: shape.Square(side, center, radians(angle))}, nil
	})

	// (circle :radius 1 :center (vec2 0 0))
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius, err := pa.float("radius", 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		center, err := pa.point("center", -1, shape.Point{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		return &sexpShape{s: shape.Circle(radius, center)}, nil
	})

	// (translate shape (vec2 1 1))
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a shape and a vec2")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		v, err := toVec2(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		return &sexpShape{s: s.Translate(v)}, nil
	})

	// (scale shape 2)
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale requires a shape and a factor")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		k, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: factor: %w", err)
		}
		return &sexpShape{s: s.Scale(k)}, nil
	})

	// (rotation :angle 360 :pivot (vec2 0 0) :depth 500)
	env.AddFunction("rotation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if _, ok := pa.value("angle", 0); !ok {
			return zygo.SexpNull, fmt.Errorf("rotation requires :angle")
		}
		angle, err := pa.float("angle", 0, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotation: %w", err)
		}
		pivot := transform.CenterRelative()
		if v, ok := pa.kw["pivot"]; ok {
			p, err := toVec2(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotation: pivot: %w", err)
			}
			pivot = transform.FixedAt(p)
		}
		depth, err := pa.depth(st)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotation: %w", err)
		}
		return &sexpTransform{t: transform.NewRotation(angle, pivot, depth)}, nil
	})

	// (dilation :factor 2 :depth 500)
	env.AddFunction("dilation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if _, ok := pa.value("factor", 0); !ok {
			return zygo.SexpNull, fmt.Errorf("dilation requires :factor")
		}
		factor, err := pa.float("factor", 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dilation: %w", err)
		}
		depth, err := pa.depth(st)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dilation: %w", err)
		}
		return &sexpTransform{t: transform.NewDilation(factor, depth)}, nil
	})

	// (animate shape transform...)
	env.AddFunction("animate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("animate requires a shape and at least one transform")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("animate: %w", err)
		}
		items, err := flatten(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("animate: %w", err)
		}
		if len(items) == 0 {
			return zygo.SexpNull, fmt.Errorf("animate: %w", animation.ErrNoTransforms)
		}
		ts := make([]transform.Transform, 0, len(items))
		for i, it := range items {
			t, err := toTransform(it)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("animate: transform %d: %w", i, err)
			}
			if len(ts) > 0 && t.Depth() != ts[0].Depth() {
				return zygo.SexpNull, fmt.Errorf("animate: %w: %d and %d",
					animation.ErrDepthMismatch, ts[0].Depth(), t.Depth())
			}
			ts = append(ts, t)
		}
		st.anim.AddShape(s, ts...)
		return args[0], nil
	})

	// (default-depth 250)
	env.AddFunction("default_depth", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("default-depth requires exactly 1 argument")
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("default-depth: %w", err)
		}
		if n < 1 {
			return zygo.SexpNull, fmt.Errorf("default-depth: must be at least 1, got %d", n)
		}
		st.depth = n
		return &zygo.SexpInt{Val: int64(n)}, nil
	})
}
