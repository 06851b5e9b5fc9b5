package profile

import (
	"github.com/chazu/loft/pkg/mesh"
	"github.com/chazu/loft/pkg/turtle"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Project places the profile's outer loop into 3D at the given pose,
// producing one ring. The profile plane is perpendicular to the pose
// heading: profile x maps to the frame right axis and profile y to the
// frame up axis. With AlignPlane false the profile is laid into the
// world XY plane at the pose position instead.
func (p Profile) Project(pose turtle.Pose) mesh.Ring {
	xAxis, yAxis := p.basis(pose)
	offset := p.centerOffset()
	return projectLoop(p.Outer, offset, pose.Position, xAxis, yAxis)
}

// ProjectAll places the outer loop and every hole loop, producing a
// ring-with-holes section.
func (p Profile) ProjectAll(pose turtle.Pose) mesh.RingWithHoles {
	xAxis, yAxis := p.basis(pose)
	offset := p.centerOffset()
	out := mesh.RingWithHoles{
		Outer: projectLoop(p.Outer, offset, pose.Position, xAxis, yAxis),
	}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, projectLoop(h, offset, pose.Position, xAxis, yAxis))
	}
	return out
}

func (p Profile) basis(pose turtle.Pose) (xAxis, yAxis v3.Vec) {
	if p.AlignPlane {
		return pose.Right(), pose.Up
	}
	return v3.Vec{X: 1}, v3.Vec{Y: 1}
}

func (p Profile) centerOffset() v2.Vec {
	if !p.Centered {
		return v2.Vec{}
	}
	return p.Centroid()
}

func projectLoop(loop []v2.Vec, offset v2.Vec, origin, xAxis, yAxis v3.Vec) mesh.Ring {
	ring := make(mesh.Ring, len(loop))
	for i, pt := range loop {
		q := pt.Sub(offset)
		ring[i] = origin.
			Add(xAxis.MulScalar(q.X)).
			Add(yAxis.MulScalar(q.Y))
	}
	return ring
}
