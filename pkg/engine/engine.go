// Package engine evaluates twirl animation scripts. It wraps zygomys in a
// sandboxed environment and produces an *animation.Animation from user
// source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/twirl/pkg/animation"
	"github.com/chazu/twirl/pkg/transform"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalResult bundles an evaluation with the structural checks run on its
// animation.
type EvalResult struct {
	Animation  *animation.Animation
	Errors     []EvalError
	Validation animation.ValidationResult
}

// OK reports whether the script evaluated and validated without errors.
func (r EvalResult) OK() bool {
	return r.Animation != nil && len(r.Errors) == 0 && r.Validation.OK()
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	// Depth is the depth used by rotation and dilation forms that omit
	// :depth. Scripts can change it with (default-depth n).
	Depth int
	// Timeout bounds a single evaluation.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine with the default depth and timeout.
func NewEngine() *Engine {
	return &Engine{Depth: transform.DefaultDepth, Timeout: EvalTimeout}
}

// Evaluate takes script source and produces a new Animation.
// Each call creates a fresh zygomys sandbox.
//
// Return semantics:
//   - On success: returns animation + nil errors + nil error
//   - On parse/eval failure: returns nil animation + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*animation.Animation, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		a, evalErrs, err := e.evaluate(source)
		ch <- evalResult{anim: a, errors: evalErrs, err: err}
	}()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	return waitWithTimeout(ch, gen, timeout, &e.mu, &e.generation)
}

// Check evaluates source and validates the resulting animation.
func (e *Engine) Check(source string) (EvalResult, error) {
	a, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{}, err
	}
	res := EvalResult{Animation: a, Errors: evalErrs}
	if a != nil {
		res.Validation = animation.Validate(a)
	}
	return res, nil
}

func (e *Engine) evaluate(source string) (*animation.Animation, []EvalError, error) {
	// Blank source is a valid program with no shapes.
	if strings.TrimSpace(source) == "" {
		return animation.New(), nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	st := &evalState{anim: animation.New(), depth: e.Depth}
	if st.depth < 1 {
		st.depth = transform.DefaultDepth
	}
	registerBuiltins(env, st)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return st.anim, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
