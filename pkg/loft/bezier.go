// Package loft generates swept meshes: a 2D profile (optionally varying
// over the sweep parameter) is carried along a path of forward moves and
// rotations, its frame kept twist-free, and the resulting rings are
// stitched into mesh fragments with a selectable corner joint policy.
package loft

import (
	"math"

	"github.com/chazu/loft/pkg/turtle"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// minChord is the chord length below which a bezier step is dropped,
// carrying frame and position forward unchanged. Shorter chords have no
// usable direction.
const minChord = 1e-3

// CubicPoint evaluates a cubic bezier at t.
func CubicPoint(p0, c1, c2, p3 v3.Vec, t float64) v3.Vec {
	s := 1 - t
	return p0.MulScalar(s * s * s).
		Add(c1.MulScalar(3 * s * s * t)).
		Add(c2.MulScalar(3 * s * t * t)).
		Add(p3.MulScalar(t * t * t))
}

// CubicTangent returns the normalized derivative of a cubic bezier at t.
func CubicTangent(p0, c1, c2, p3 v3.Vec, t float64) v3.Vec {
	s := 1 - t
	d := c1.Sub(p0).MulScalar(3 * s * s).
		Add(c2.Sub(c1).MulScalar(6 * s * t)).
		Add(p3.Sub(c2).MulScalar(3 * t * t))
	return d.Normalize()
}

// QuadPoint evaluates a quadratic bezier at t.
func QuadPoint(p0, c, p1 v3.Vec, t float64) v3.Vec {
	s := 1 - t
	return p0.MulScalar(s * s).
		Add(c.MulScalar(2 * s * t)).
		Add(p1.MulScalar(t * t))
}

// QuadTangent returns the normalized derivative of a quadratic bezier at t.
func QuadTangent(p0, c, p1 v3.Vec, t float64) v3.Vec {
	s := 1 - t
	d := c.Sub(p0).MulScalar(2 * s).
		Add(p1.Sub(c).MulScalar(2 * t))
	return d.Normalize()
}

// BezierStep is one discretized piece of a curve: a chord plus the frame
// at its end.
type BezierStep struct {
	From         v3.Vec
	To           v3.Vec
	Dist         float64
	ChordHeading v3.Vec
	FinalHeading v3.Vec
	FinalUp      v3.Vec
}

// SampleCubic walks a cubic bezier in `steps` uniform parameter
// increments, producing step records with twist-free frames. The final
// heading of the first step is exactly the start heading and of the last
// step exactly the analytic end tangent; interior steps use the chord
// direction, biasing the frame toward the drawn direction rather than
// local curvature. Steps whose chord falls below the minimum length are
// dropped.
func SampleCubic(p0, c1, c2, p3 v3.Vec, steps int, startHeading, startUp v3.Vec) []BezierStep {
	if steps < 1 {
		steps = 1
	}
	eval := func(t float64) v3.Vec { return CubicPoint(p0, c1, c2, p3, t) }
	endTangent := CubicTangent(p0, c1, c2, p3, 1)
	return sampleCurve(eval, endTangent, p0, steps, startHeading, startUp)
}

// SampleQuad is SampleCubic for a quadratic bezier.
func SampleQuad(p0, c, p1 v3.Vec, steps int, startHeading, startUp v3.Vec) []BezierStep {
	if steps < 1 {
		steps = 1
	}
	eval := func(t float64) v3.Vec { return QuadPoint(p0, c, p1, t) }
	endTangent := QuadTangent(p0, c, p1, 1)
	return sampleCurve(eval, endTangent, p0, steps, startHeading, startUp)
}

func sampleCurve(eval func(float64) v3.Vec, endTangent, start v3.Vec, steps int, heading, up v3.Vec) []BezierStep {
	out := make([]BezierStep, 0, steps)
	prev := start
	first := true
	for i := 1; i <= steps; i++ {
		to := eval(float64(i) / float64(steps))
		chord := to.Sub(prev)
		dist := chord.Length()
		if dist < minChord {
			continue
		}
		chordHeading := chord.DivScalar(dist)

		finalHeading := chordHeading
		if first {
			finalHeading = heading
		}
		if i == steps {
			finalHeading = endTangent
		}
		finalUp := turtle.Transport(up, heading, finalHeading)

		out = append(out, BezierStep{
			From:         prev,
			To:           to,
			Dist:         dist,
			ChordHeading: chordHeading,
			FinalHeading: finalHeading,
			FinalUp:      finalUp,
		})
		prev = to
		heading = finalHeading
		up = finalUp
		first = false
	}
	return out
}

// StepsToPath converts bezier steps into a plain command path: each step
// becomes a yaw/pitch rotation pair aligning the heading to the step's
// final heading, followed by a forward move of the chord length. The
// start pose must be the pose the path will be run from. Frame twist may
// differ from the sampler's transported frames by a second-order amount;
// for the micro-segments this produces that is below mesh resolution.
func StepsToPath(steps []BezierStep, start turtle.Pose) turtle.Path {
	var path turtle.Path
	pose := start
	for _, s := range steps {
		yaw, pitch := frameTurns(pose, s.FinalHeading)
		if yaw != 0 {
			path = append(path, turtle.Rotate{Kind: turtle.RotateHorizontal, Angle: yaw})
			pose = pose.ApplyRotation(turtle.Rotate{Kind: turtle.RotateHorizontal, Angle: yaw})
		}
		if pitch != 0 {
			path = append(path, turtle.Rotate{Kind: turtle.RotateVertical, Angle: pitch})
			pose = pose.ApplyRotation(turtle.Rotate{Kind: turtle.RotateVertical, Angle: pitch})
		}
		path = append(path, turtle.Forward{Dist: s.Dist})
		pose = pose.Forward(s.Dist)
	}
	return path
}

// BezierPath samples a cubic bezier from the given pose and returns it
// as a command path ready for LoftPath or Bloft.
func BezierPath(start turtle.Pose, c1, c2, p3 v3.Vec, steps int) turtle.Path {
	bs := SampleCubic(start.Position, c1, c2, p3, steps, start.Heading, start.Up)
	return StepsToPath(bs, start)
}

// frameTurns decomposes the rotation from the pose heading onto target
// into a yaw around up followed by a pitch around the post-yaw right
// axis, both in degrees.
func frameTurns(pose turtle.Pose, target v3.Vec) (yaw, pitch float64) {
	a := target.Dot(pose.Heading)
	b := target.Dot(pose.Right())
	c := target.Dot(pose.Up)
	yaw = -math.Atan2(b, a) * 180 / math.Pi
	pitch = math.Atan2(c, math.Sqrt(a*a+b*b)) * 180 / math.Pi
	return yaw, pitch
}
