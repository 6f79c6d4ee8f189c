//go:build !manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library. Without the "manifold" build tag this stub is compiled
// instead and New reports that the kernel is unavailable.
//
// Build with: go build -tags=manifold
package manifold

import (
	"errors"

	"github.com/chazu/twirl/pkg/kernel"
)

// ErrUnavailable is returned by New in builds without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// New returns ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
