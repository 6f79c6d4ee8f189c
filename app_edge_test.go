package main

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Sources that evaluate but describe nothing
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp(testConfig(), nil)

	for _, src := range []string{
		`;; just a comment`,
		"\n  ; one\n\n;; two\n  ",
		`(def x 10) (+ x 1)`,
	} {
		r := app.Evaluate(src)
		if len(r.Errors) != 1 || r.Shapes != 0 {
			t.Errorf("%q: errors = %v, want only the no-shapes error", src, r.Errors)
		}
	}
}

// ---------------------------------------------------------------------------
// Arithmetic feeding the DSL
// ---------------------------------------------------------------------------

func TestE2EArithmeticArguments(t *testing.T) {
	app := NewApp(testConfig(), nil)

	src := `
(def r 2)
(def turns 3)
(animate (circle :radius (* r 1.5)) (rotation :angle (* turns 360) :depth (+ 10 2)))
`
	r := app.Evaluate(src)
	if !r.OK() {
		t.Fatalf("errors: %v", r.Errors)
	}
	if r.Depth != 12 {
		t.Errorf("depth = %d, want 12", r.Depth)
	}
}

// ---------------------------------------------------------------------------
// Validation surfaces through the report
// ---------------------------------------------------------------------------

func TestE2EOutOfBoundsWarning(t *testing.T) {
	app := NewApp(testConfig(), nil)

	r := app.Evaluate(`(animate (square :side 4 :center (vec2 11 0)) (rotation :angle 90))`)
	if !r.OK() {
		t.Fatalf("errors: %v", r.Errors)
	}
	if len(r.Warnings) == 0 {
		t.Fatal("expected a bounds warning")
	}
	w := r.Warnings[0]
	if w.Shape == nil || *w.Shape != 0 || !strings.Contains(w.Message, "leaves the bound") {
		t.Errorf("warning = %s", w)
	}
}

func TestE2ECollapsingDilationWarning(t *testing.T) {
	app := NewApp(testConfig(), nil)

	r := app.Evaluate(`(animate (circle :radius 2) (dilation :factor 0))`)
	if !r.OK() {
		t.Fatalf("errors: %v", r.Errors)
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a collapse warning")
	}
}

func TestE2EDegenerateShape(t *testing.T) {
	app := NewApp(testConfig(), nil)

	r := app.Evaluate(`(animate (polygon (vec2 0 0) (vec2 1 1)) (rotation :angle 10))`)
	if r.OK() {
		t.Fatal("a two-point polygon should fail the check")
	}
	if r.Errors[0].Shape == nil {
		t.Error("the error should name the shape")
	}
	if !strings.Contains(r.Errors[0].String(), "shape 0") {
		t.Errorf("String() = %q", r.Errors[0].String())
	}
}

func TestE2EUndefinedFunction(t *testing.T) {
	app := NewApp(testConfig(), nil)

	r := app.Evaluate("(animate (circle) (rotation :angle 1))\n(undefined-func 1 2 3)")
	if r.OK() {
		t.Fatal("expected an error for an undefined function")
	}
	if r.Shapes != 0 {
		t.Error("a failed script should not report shapes")
	}
}

// ---------------------------------------------------------------------------
// Rapid evaluation
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates valid and invalid sources on one App; the engine must
	// recover cleanly between error and success states.
	app := NewApp(testConfig(), nil)

	sources := []string{
		`(animate (circle) (rotation :angle 90))`,
		`(animate (circle)`,
		``,
		`(animate 5 (rotation :angle 90))`,
		`(animate (ngon :sides 5) (dilation :factor 2))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(animate (square :side 3) (rotation :angle 30) (dilation :factor 0.5))`,
		`(undefined-func 1 2 3)`,
		`(animate (circle :radius 4) (dilation :factor 1.5))`,
	}
	wantOK := []bool{true, false, false, false, true, false, false, true, false, true}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			r := app.Evaluate(source)
			if r.OK() != wantOK[i] {
				t.Errorf("iteration %d (%q): OK = %v, errors %v", i, source, r.OK(), r.Errors)
			}
		}()
	}
}

// ---------------------------------------------------------------------------
// Large values
// ---------------------------------------------------------------------------

func TestE2EHugeShapeIsClipped(t *testing.T) {
	cfg := testConfig()
	cfg.Depth = 3
	app := NewApp(cfg, nil)

	path := writeScript(t, `(animate (square :side 1000) (rotation :angle 10))`)
	v, err := app.Volume(path, false)
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	// The square covers the whole grid at every depth.
	want := v.Len() * cfg.Resolution * cfg.Resolution
	if v.Count() != want {
		t.Errorf("voxels = %d, want %d", v.Count(), want)
	}
}
