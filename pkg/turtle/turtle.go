// Package turtle provides the moving frame used to trace sweep paths.
// A Pose is a position plus an orthonormal heading/up pair; rotation
// commands steer the frame and Transport carries the up vector between
// headings without introducing twist.
package turtle

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// parallelTol is the axis-length threshold below which two headings are
// considered parallel and no rotation is applied.
const parallelTol = 1e-4

// Pose is the turtle frame: a position and an orthonormal heading/up pair.
// Heading and Up are unit length and mutually perpendicular within floating
// tolerance; accumulation may violate this transiently and is corrected by
// renormalization.
type Pose struct {
	Position v3.Vec
	Heading  v3.Vec
	Up       v3.Vec
}

// NewPose returns the canonical start pose: origin, heading +X, up +Z.
func NewPose() Pose {
	return Pose{
		Heading: v3.Vec{X: 1},
		Up:      v3.Vec{Z: 1},
	}
}

// Right returns the third frame axis, heading x up.
func (p Pose) Right() v3.Vec {
	return p.Heading.Cross(p.Up)
}

// Forward returns the pose advanced by dist along the heading.
func (p Pose) Forward(dist float64) Pose {
	p.Position = p.Position.Add(p.Heading.MulScalar(dist))
	return p
}

// rotate applies an axis-angle rotation (degrees) to the frame vectors.
func rotateVec(v, axis v3.Vec, degrees float64) v3.Vec {
	m := sdf.Rotate3d(axis, degrees*math.Pi/180.0)
	return m.MulPosition(v)
}

// ApplyRotation returns the pose with a single rotation command applied.
// Horizontal yaws around the up axis, vertical pitches around the right
// axis, roll spins around the heading, and set-heading points the frame
// at an absolute yaw angle in the XY plane (up transported along).
func (p Pose) ApplyRotation(r Rotate) Pose {
	switch r.Kind {
	case RotateHorizontal:
		p.Heading = rotateVec(p.Heading, p.Up, r.Angle).Normalize()
	case RotateVertical:
		axis := p.Right()
		p.Heading = rotateVec(p.Heading, axis, r.Angle).Normalize()
		p.Up = rotateVec(p.Up, axis, r.Angle).Normalize()
	case RotateRoll:
		p.Up = rotateVec(p.Up, p.Heading, r.Angle).Normalize()
	case RotateSetHeading:
		rad := r.Angle * math.Pi / 180.0
		newHeading := v3.Vec{X: math.Cos(rad), Y: math.Sin(rad)}
		p.Up = Transport(p.Up, p.Heading, newHeading)
		p.Heading = newHeading
	}
	return p
}

// Apply returns the pose with one path command applied.
func (p Pose) Apply(c Command) Pose {
	switch cmd := c.(type) {
	case Forward:
		return p.Forward(cmd.Dist)
	case Rotate:
		return p.ApplyRotation(cmd)
	}
	return p
}

// Transport rotates up from the oldHeading frame into the newHeading frame
// using the minimal arc between the two headings, so no twist accumulates
// from forward motion. If the headings are parallel the up vector is
// returned unchanged.
func Transport(up, oldHeading, newHeading v3.Vec) v3.Vec {
	axis := oldHeading.Cross(newHeading)
	if axis.Length() < parallelTol {
		return up
	}
	axis = axis.Normalize()
	angle := math.Acos(clamp(oldHeading.Dot(newHeading), -1, 1))
	m := sdf.Rotate3d(axis, angle)
	return m.MulPosition(up)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
