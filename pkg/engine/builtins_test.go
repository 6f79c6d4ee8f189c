package engine

import (
	"math"
	"testing"

	"github.com/chazu/twirl/pkg/animation"
	"github.com/chazu/twirl/pkg/shape"
	"github.com/chazu/twirl/pkg/transform"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(circle :radius 1)`,
			expect: `(circle "__kw_radius" 1)`,
		},
		{
			name:   "multiple keywords",
			input:  `(rotation :angle 90 :depth 10)`,
			expect: `(rotation "__kw_angle" 90 "__kw_depth" 10)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(default-depth 20)`,
			expect: `(default_depth 20)`,
		},
		{
			name:   "minus operator and negative numbers preserved",
			input:  `(- 10 5) (vec2 -1 2)`,
			expect: `(- 10 5) (vec2 -1 2)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "comment ends at newline",
			input:  "; note\n:angle",
			expect: "// note\n\"__kw_angle\"",
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:line-width`,
			expect: `"__kw_line-width"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func evalOK(t *testing.T, eng *Engine, source string) *animation.Animation {
	t.Helper()
	a, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if a == nil {
		t.Fatal("expected non-nil animation")
	}
	return a
}

func smallEngine() *Engine {
	eng := NewEngine()
	eng.Depth = 6
	return eng
}

// ---------------------------------------------------------------------------
// Shape forms
// ---------------------------------------------------------------------------

func TestSquareRotatingAboutOrigin(t *testing.T) {
	source := `
(def sq (square :side 2 :center (vec2 5 0) :angle 0))
(animate sq (rotation :angle 360 :pivot (vec2 0 0) :depth 4))
`
	a := evalOK(t, smallEngine(), source)
	if a.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", a.Len())
	}
	e := a.Entries()[0]
	if c := e.Shape.Center(); !near(c.X, 5) || !near(c.Y, 0) {
		t.Errorf("center = %v, want (5, 0)", c)
	}
	if len(e.Transforms) != 1 {
		t.Fatalf("expected 1 transform, got %d", len(e.Transforms))
	}
	tr := e.Transforms[0]
	if tr.Kind != transform.KindRotation || tr.Amount != 360 || tr.Depth() != 4 {
		t.Errorf("transform = %s depth %d", tr, tr.Depth())
	}
	if !tr.Pivot.IsFixed() || tr.Pivot.Point() != (shape.Point{}) {
		t.Errorf("pivot = %s, want fixed at origin", tr.Pivot)
	}

	frames, err := a.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// A quarter turn about the origin carries the center to (0, 5).
	var cx, cy float64
	for _, p := range frames[0][1] {
		cx += p.X / 4
		cy += p.Y / 4
	}
	if math.Abs(cx) > 1e-9 || math.Abs(cy-5) > 1e-9 {
		t.Errorf("center at depth 1 = (%f, %f), want (0, 5)", cx, cy)
	}
}

func TestSquareDefaultAngleIsAxisAligned(t *testing.T) {
	a := evalOK(t, smallEngine(), `(animate (square :side 2) (rotation :angle 10))`)
	lo, hi := a.Entries()[0].Shape.Bounds()
	if !near(lo.X, -1) || !near(lo.Y, -1) || !near(hi.X, 1) || !near(hi.Y, 1) {
		t.Errorf("bounds = %v..%v, want (-1,-1)..(1,1)", lo, hi)
	}
}

func TestNgonAndCircle(t *testing.T) {
	source := `
(animate (ngon :sides 6 :radius 2 :center (vec2 1 0)) (rotation :angle 60))
(animate (circle :radius 3) (dilation :factor 2))
`
	a := evalOK(t, smallEngine(), source)
	if a.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", a.Len())
	}
	hex := a.Entries()[0].Shape
	if hex.Len() != 6 {
		t.Errorf("hexagon has %d points", hex.Len())
	}
	if p := hex.At(0); !near(p.X, 3) || !near(p.Y, 0) {
		t.Errorf("first vertex = %v, want (3, 0)", p)
	}
	circle := a.Entries()[1].Shape
	if circle.Len() != shape.CircleSegments {
		t.Errorf("circle has %d points, want %d", circle.Len(), shape.CircleSegments)
	}
	if a.Entries()[1].Transforms[0].Kind != transform.KindDilation {
		t.Error("expected a dilation")
	}
}

func TestPolygonForms(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"positional", `(animate (polygon (vec2 0 0) (vec2 2 0) (vec2 0 2)) (rotation :angle 90))`},
		{"list", `(animate (polygon (list (vec2 0 0) (vec2 2 0) (vec2 0 2))) (rotation :angle 90))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := evalOK(t, smallEngine(), tt.source)
			s := a.Entries()[0].Shape
			if s.Len() != 3 {
				t.Fatalf("expected 3 points, got %d", s.Len())
			}
			if p := s.At(1); p != (shape.Point{X: 2}) {
				t.Errorf("point 1 = %v", p)
			}
		})
	}
}

func TestTranslateAndScale(t *testing.T) {
	source := `
(def tri (polygon (vec2 0 0) (vec2 3 0) (vec2 0 3)))
(animate (scale (translate tri (vec2 1 1)) 2) (rotation :angle -180))
`
	a := evalOK(t, smallEngine(), source)
	s := a.Entries()[0].Shape
	// Translated center is (2, 2); scaling is about the origin.
	if c := s.Center(); !near(c.X, 4) || !near(c.Y, 4) {
		t.Errorf("center = %v, want (4, 4)", c)
	}
	if p := s.At(1); !near(p.X, 8) || !near(p.Y, 2) {
		t.Errorf("point 1 = %v, want (8, 2)", p)
	}
	if a.Entries()[0].Transforms[0].Amount != -180 {
		t.Error("negative angle was not kept")
	}
}

// ---------------------------------------------------------------------------
// Transforms and animate
// ---------------------------------------------------------------------------

func TestDefaultDepth(t *testing.T) {
	eng := NewEngine()
	eng.Depth = 7

	a := evalOK(t, eng, `(animate (circle) (dilation 2))`)
	if d := a.Entries()[0].Depth(); d != 7 {
		t.Errorf("depth = %d, want engine depth 7", d)
	}

	a = evalOK(t, eng, `
(default-depth 3)
(animate (circle) (dilation 2) (rotation 45))
`)
	if d := a.Entries()[0].Depth(); d != 3 {
		t.Errorf("depth = %d, want script depth 3", d)
	}
}

func TestAnimateSameShapeReplaces(t *testing.T) {
	source := `
(def sq (square :side 1))
(animate sq (rotation :angle 90))
(animate sq (dilation :factor 3) (rotation :angle 45))
`
	a := evalOK(t, smallEngine(), source)
	if a.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", a.Len())
	}
	if n := len(a.Entries()[0].Transforms); n != 2 {
		t.Errorf("expected the later 2 transforms, got %d", n)
	}
}

func TestAnimateTransformList(t *testing.T) {
	source := `
(def spin (list (rotation :angle 90) (dilation :factor 0.5)))
(animate (circle :radius 2) spin)
`
	a := evalOK(t, smallEngine(), source)
	if n := len(a.Entries()[0].Transforms); n != 2 {
		t.Errorf("expected 2 transforms, got %d", n)
	}
}

func TestFourSquares(t *testing.T) {
	source := `
; four squares orbiting the origin
(def depth 20)
(animate (square :side 5 :center (vec2 5 0)) (rotation :angle 360 :pivot (vec2 0 0) :depth depth))
(animate (square :side 5 :center (vec2 -5 0)) (rotation :angle 360 :pivot (vec2 0 0) :depth depth))
(animate (square :side 5 :center (vec2 0 5)) (rotation :angle 360 :pivot (vec2 0 0) :depth depth))
(animate (square :side 5 :center (vec2 0 -5)) (rotation :angle 360 :pivot (vec2 0 0) :depth depth))
`
	a := evalOK(t, smallEngine(), source)
	if a.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", a.Len())
	}
	frames, err := a.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i, f := range frames {
		if f.Depth() != 20 {
			t.Errorf("shape %d depth = %d, want 20", i, f.Depth())
		}
	}
	if v := animation.Validate(a); !v.OK() {
		t.Errorf("validation failed: %v", v.Errors)
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"vec2 arity", `(vec2 1)`},
		{"vec2 type", `(vec2 1 "a")`},
		{"empty polygon", `(polygon)`},
		{"polygon non-point", `(polygon (vec2 0 0) 5)`},
		{"ngon without sides", `(ngon :radius 2)`},
		{"ngon too few sides", `(ngon :sides 2)`},
		{"rotation without angle", `(rotation :depth 4)`},
		{"rotation bad pivot", `(rotation :angle 4 :pivot 3)`},
		{"rotation zero depth", `(rotation :angle 4 :depth 0)`},
		{"dilation without factor", `(dilation)`},
		{"animate without transforms", `(animate (circle))`},
		{"animate non-shape", `(animate 3 (rotation :angle 4))`},
		{"animate non-transform", `(animate (circle) 5)`},
		{"animate depth mismatch", `(animate (circle) (rotation :angle 10 :depth 3) (dilation :factor 2 :depth 4))`},
		{"translate non-vec2", `(translate (circle) 1)`},
		{"default depth zero", `(default-depth 0)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, evalErrs, err := smallEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if a != nil {
				t.Error("expected nil animation")
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Errorf("expected an eval error with a message, got %v", evalErrs)
			}
		})
	}
}
