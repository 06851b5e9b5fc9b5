package loft

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/loft/pkg/profile"
	"github.com/chazu/loft/pkg/turtle"
)

func TestCubicPointEndpoints(t *testing.T) {
	p0 := v3.Vec{}
	c1 := v3.Vec{X: 10}
	c2 := v3.Vec{X: 20, Y: 10}
	p3 := v3.Vec{X: 30, Y: 10}

	if got := CubicPoint(p0, c1, c2, p3, 0); got.Sub(p0).Length() > 1e-12 {
		t.Errorf("t=0: got %v, want %v", got, p0)
	}
	if got := CubicPoint(p0, c1, c2, p3, 1); got.Sub(p3).Length() > 1e-12 {
		t.Errorf("t=1: got %v, want %v", got, p3)
	}

	mid := CubicPoint(p0, c1, c2, p3, 0.5)
	// De Casteljau by hand: (p0+3c1+3c2+p3)/8.
	want := v3.Vec{X: 15, Y: 5}
	if mid.Sub(want).Length() > 1e-12 {
		t.Errorf("t=0.5: got %v, want %v", mid, want)
	}
}

func TestCubicTangentEndpoints(t *testing.T) {
	p0 := v3.Vec{}
	c1 := v3.Vec{X: 10}
	c2 := v3.Vec{X: 20, Y: 10}
	p3 := v3.Vec{X: 30, Y: 10}

	if got := CubicTangent(p0, c1, c2, p3, 0); got.Sub(v3.Vec{X: 1}).Length() > 1e-12 {
		t.Errorf("start tangent = %v, want +X", got)
	}
	// End tangent follows c2 -> p3, which is pure +X here.
	if got := CubicTangent(p0, c1, c2, p3, 1); got.Sub(v3.Vec{X: 1}).Length() > 1e-12 {
		t.Errorf("end tangent = %v, want +X", got)
	}
}

func TestQuadPointAndTangent(t *testing.T) {
	p0 := v3.Vec{}
	c := v3.Vec{X: 5, Y: 5}
	p1 := v3.Vec{X: 10}

	if got := QuadPoint(p0, c, p1, 0.5); got.Sub(v3.Vec{X: 5, Y: 2.5}).Length() > 1e-12 {
		t.Errorf("midpoint = %v, want (5,2.5,0)", got)
	}
	want := v3.Vec{X: 1, Y: 1}.Normalize()
	if got := QuadTangent(p0, c, p1, 0); got.Sub(want).Length() > 1e-12 {
		t.Errorf("start tangent = %v, want %v", got, want)
	}
}

func TestSampleCubicFrames(t *testing.T) {
	start := turtle.NewPose()
	c1 := v3.Vec{X: 10}
	c2 := v3.Vec{X: 20, Y: 10}
	p3 := v3.Vec{X: 30, Y: 10}

	steps := SampleCubic(start.Position, c1, c2, p3, 8, start.Heading, start.Up)
	if len(steps) != 8 {
		t.Fatalf("steps = %d, want 8", len(steps))
	}

	// First step keeps the caller's heading, last uses the analytic end
	// tangent, and the chain of From/To is contiguous.
	if steps[0].FinalHeading.Sub(start.Heading).Length() > 1e-12 {
		t.Errorf("first heading = %v, want start heading", steps[0].FinalHeading)
	}
	endTan := CubicTangent(start.Position, c1, c2, p3, 1)
	if steps[7].FinalHeading.Sub(endTan).Length() > 1e-12 {
		t.Errorf("last heading = %v, want %v", steps[7].FinalHeading, endTan)
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].From.Sub(steps[i-1].To).Length() > 1e-12 {
			t.Fatalf("step %d is not contiguous with its predecessor", i)
		}
	}
	if steps[7].To.Sub(p3).Length() > 1e-12 {
		t.Errorf("curve end = %v, want %v", steps[7].To, p3)
	}

	// Transported frames stay orthonormal.
	for i, s := range steps {
		if math.Abs(s.FinalUp.Length()-1) > 1e-9 {
			t.Errorf("step %d: up length %g", i, s.FinalUp.Length())
		}
		if math.Abs(s.FinalUp.Dot(s.FinalHeading)) > 1e-9 {
			t.Errorf("step %d: up not perpendicular to heading", i)
		}
	}
}

func TestSampleCubicDropsDegenerateChords(t *testing.T) {
	// All four control points coincide: every chord is below the minimum
	// length and nothing survives.
	p := v3.Vec{X: 2, Y: 3, Z: 4}
	steps := SampleCubic(p, p, p, p, 6, v3.Vec{X: 1}, v3.Vec{Z: 1})
	if len(steps) != 0 {
		t.Errorf("steps = %d, want 0", len(steps))
	}
}

func TestFrameTurns(t *testing.T) {
	pose := turtle.NewPose()
	tests := []struct {
		name   string
		target v3.Vec
		yaw    float64
		pitch  float64
	}{
		{"straight ahead", v3.Vec{X: 1}, 0, 0},
		{"left turn", v3.Vec{Y: 1}, 90, 0},
		{"right turn", v3.Vec{Y: -1}, -90, 0},
		{"pitch up", v3.Vec{Z: 1}, 0, 90},
		{"diagonal", v3.Vec{X: 1, Y: 1}.Normalize(), 45, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaw, pitch := frameTurns(pose, tt.target)
			if math.Abs(yaw-tt.yaw) > 1e-9 || math.Abs(pitch-tt.pitch) > 1e-9 {
				t.Errorf("frameTurns = (%g, %g), want (%g, %g)", yaw, pitch, tt.yaw, tt.pitch)
			}
		})
	}
}

func TestStepsToPathReachesCurveEnd(t *testing.T) {
	// The first and last steps trade chord direction for tangent
	// continuity, so the path end misses the curve end by an amount that
	// shrinks quadratically with the step count.
	start := turtle.NewPose()
	c1 := v3.Vec{X: 10, Z: 2}
	c2 := v3.Vec{X: 20, Y: 10, Z: 4}
	p3 := v3.Vec{X: 30, Y: 10, Z: 4}

	coarse := BezierPath(start, c1, c2, p3, 16).Run(start)
	fine := BezierPath(start, c1, c2, p3, 64).Run(start)

	coarseErr := coarse.Position.Sub(p3).Length()
	fineErr := fine.Position.Sub(p3).Length()
	if coarseErr > 0.5 {
		t.Errorf("16-step end error = %g, want under 0.5", coarseErr)
	}
	if fineErr > 0.05 {
		t.Errorf("64-step end error = %g, want under 0.05", fineErr)
	}
	if fineErr >= coarseErr {
		t.Errorf("refinement did not converge: %g -> %g", coarseErr, fineErr)
	}

	endTan := CubicTangent(start.Position, c1, c2, p3, 1)
	if coarse.Heading.Sub(endTan).Length() > 1e-9 {
		t.Errorf("end heading = %v, want %v", coarse.Heading, endTan)
	}
}

func TestBezierPathFromOffsetPose(t *testing.T) {
	start := turtle.NewPose().
		Forward(5).
		ApplyRotation(turtle.Rotate{Kind: turtle.RotateHorizontal, Angle: 90})

	p3 := v3.Vec{X: 5, Y: 20}
	c1 := start.Position.Add(start.Heading.MulScalar(5))
	c2 := p3.Sub(v3.Vec{Y: 5})

	path := BezierPath(start, c1, c2, p3, 12)
	end := path.Run(start)
	if end.Position.Sub(p3).Length() > 1e-6 {
		t.Errorf("path end = %v, want %v", end.Position, p3)
	}
}

func TestBezierPathLoftsCleanly(t *testing.T) {
	start := turtle.NewPose()
	path := BezierPath(start, v3.Vec{X: 10}, v3.Vec{X: 20, Y: 10}, v3.Vec{X: 30, Y: 10}, 16)

	st := NewState().Bloft(profile.Circle(0.5, 8), nil, path, 24, 0)
	if len(st.Fragments) != 1 {
		t.Fatalf("fragments = %d, want 1", len(st.Fragments))
	}
	if st.Fragments[0].Degraded {
		t.Error("gentle bezier sweep should not be degraded")
	}
	if st.Pose.Position.Sub(v3.Vec{X: 30, Y: 10}).Length() > 0.5 {
		t.Errorf("pose = %v, want near curve end", st.Pose.Position)
	}
}
