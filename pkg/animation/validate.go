package animation

import (
	"fmt"
	"math"

	"github.com/chazu/twirl/pkg/shape"
	"github.com/chazu/twirl/pkg/transform"
)

// ValidationSeverity indicates whether a validation finding blocks rendering
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks rendering
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding. Entry is -1 for
// animation-level findings.
type ValidationError struct {
	Entry    int
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Entry < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] shape %d: %s", e.Severity, e.Entry, e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks an animation before rendering. It never mutates a.
func Validate(a *Animation) ValidationResult {
	var findings []ValidationError
	if a.Len() == 0 {
		findings = append(findings, ValidationError{
			Entry:    -1,
			Message:  "animation has no shapes",
			Severity: SeverityError,
		})
	}
	for i, e := range a.entries {
		findings = append(findings, validateShape(i, e)...)
		findings = append(findings, validateTransforms(i, e)...)
	}

	var result ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, f)
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}

// validateShape flags rings that cannot be rasterized or extruded.
func validateShape(i int, e Entry) []ValidationError {
	var errs []ValidationError
	if n := e.Shape.Len(); n < 3 {
		errs = append(errs, ValidationError{
			Entry:    i,
			Message:  fmt.Sprintf("shape has %d points, a polygon needs at least 3", n),
			Severity: SeverityError,
		})
	}
	for k, p := range e.Shape.Points() {
		if !p.IsFinite() {
			errs = append(errs, ValidationError{
				Entry:    i,
				Message:  fmt.Sprintf("point %d is not finite: %s", k, p),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateTransforms checks the transform list is non-empty and consistent.
func validateTransforms(i int, e Entry) []ValidationError {
	var errs []ValidationError
	if len(e.Transforms) == 0 {
		return append(errs, ValidationError{
			Entry:    i,
			Message:  "shape has no transforms",
			Severity: SeverityError,
		})
	}
	depth := e.Transforms[0].Depth()
	for k, t := range e.Transforms {
		if t.IsZero() {
			errs = append(errs, ValidationError{
				Entry:    i,
				Message:  fmt.Sprintf("transform %d is uninitialized", k),
				Severity: SeverityError,
			})
			continue
		}
		if t.Depth() != depth {
			errs = append(errs, ValidationError{
				Entry:    i,
				Message:  fmt.Sprintf("transform %d has depth %d, expected %d", k, t.Depth(), depth),
				Severity: SeverityError,
			})
		}
		if t.Kind == transform.KindDilation && t.Amount == 0 {
			errs = append(errs, ValidationError{
				Entry:    i,
				Message:  fmt.Sprintf("transform %d dilates to zero; the final frame collapses to a point", k),
				Severity: SeverityWarning,
			})
		}
		if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			errs = append(errs, ValidationError{
				Entry:    i,
				Message:  fmt.Sprintf("transform %d amount is not finite", k),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// CheckBounds returns a warning for every rendered shape that leaves the
// square [-bound, bound]. Pixels outside the grid are dropped when
// rasterizing.
func CheckBounds(frames []Frames, bound float64) []ValidationError {
	var warnings []ValidationError
	for i, f := range frames {
		for d, ring := range f {
			if out := ringOutside(ring, bound); out >= 0 {
				warnings = append(warnings, ValidationError{
					Entry:    i,
					Message:  fmt.Sprintf("depth %d: point %d leaves the bound %g", d, out, bound),
					Severity: SeverityWarning,
				})
				break
			}
		}
	}
	return warnings
}

func ringOutside(ring []shape.Point, bound float64) int {
	for k, p := range ring {
		if p.X < -bound || p.X >= bound || p.Y < -bound || p.Y >= bound {
			return k
		}
	}
	return -1
}
