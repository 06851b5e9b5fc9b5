package loft

import (
	"github.com/chazu/loft/pkg/mesh"
	"github.com/chazu/loft/pkg/profile"
	"github.com/chazu/loft/pkg/turtle"
)

// section is one stamped cross-section sample.
type section = mesh.RingWithHoles

// stamper is the hole strategy: the drivers pick one implementation per
// loft call instead of re-dispatching on "has holes?" at every ring.
type stamper interface {
	stamp(p profile.Profile, pose turtle.Pose) section
	build(secs []section, caps bool, pose turtle.Pose) (*mesh.Fragment, error)
	outer(sec section) mesh.Ring
}

func chooseStamper(p profile.Profile) stamper {
	if len(p.Holes) > 0 {
		return holeStamper{}
	}
	return solidStamper{}
}

// solidStamper handles hole-free profiles with the plain sweep builder.
type solidStamper struct{}

func (solidStamper) stamp(p profile.Profile, pose turtle.Pose) section {
	return section{Outer: p.Project(pose)}
}

func (solidStamper) build(secs []section, caps bool, pose turtle.Pose) (*mesh.Fragment, error) {
	rings := make([]mesh.Ring, len(secs))
	for i, s := range secs {
		rings[i] = s.Outer
	}
	return mesh.BuildSweep(rings, caps, pose)
}

func (solidStamper) outer(sec section) mesh.Ring { return sec.Outer }

// holeStamper handles profiles with holes via the hole-aware builder.
type holeStamper struct{}

func (holeStamper) stamp(p profile.Profile, pose turtle.Pose) section {
	return p.ProjectAll(pose)
}

func (holeStamper) build(secs []section, caps bool, pose turtle.Pose) (*mesh.Fragment, error) {
	return mesh.BuildSweepWithHoles(secs, caps, pose)
}

func (holeStamper) outer(sec section) mesh.Ring { return sec.Outer }
