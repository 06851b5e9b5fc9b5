//go:build !manifold

// Package boolean combines mesh fragments with boolean operations backed
// by the Manifold library. When the "manifold" build tag is not set this
// stub is compiled instead and Union always reports ErrUnavailable, so
// callers take their documented concatenation fallback.
//
// Build with: go build -tags=manifold
package boolean

import (
	"errors"

	"github.com/chazu/loft/pkg/mesh"
)

// ErrUnavailable indicates the Manifold backend was not compiled in.
var ErrUnavailable = errors.New("boolean union not available: build with -tags=manifold")

// Union reports ErrUnavailable.
func Union(frags []*mesh.Fragment) (*mesh.Fragment, error) {
	return nil, ErrUnavailable
}
