//go:build !manifold

package boolean

import (
	"errors"
	"testing"

	"github.com/chazu/loft/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestUnionReturnsErrUnavailable(t *testing.T) {
	frag := &mesh.Fragment{
		Vertices: []v3.Vec{{X: 0}, {X: 1}, {Y: 1}},
		Faces:    [][3]int{{0, 1, 2}},
	}
	out, err := Union([]*mesh.Fragment{frag, frag})
	if err == nil {
		t.Fatal("Union() error = nil, want non-nil error when manifold tag is not set")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Union() error = %v, want ErrUnavailable", err)
	}
	if out != nil {
		t.Errorf("Union() fragment = %v, want nil", out)
	}
}
