package turtle

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const eps = 1e-9

func vecNear(a, b v3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestNewPose(t *testing.T) {
	p := NewPose()
	if !vecNear(p.Position, v3.Vec{}, eps) {
		t.Errorf("position = %v, want origin", p.Position)
	}
	if !vecNear(p.Heading, v3.Vec{X: 1}, eps) {
		t.Errorf("heading = %v, want +X", p.Heading)
	}
	if !vecNear(p.Up, v3.Vec{Z: 1}, eps) {
		t.Errorf("up = %v, want +Z", p.Up)
	}
}

func TestForward(t *testing.T) {
	p := NewPose().Forward(10)
	if !vecNear(p.Position, v3.Vec{X: 10}, eps) {
		t.Errorf("position = %v, want (10, 0, 0)", p.Position)
	}
	// heading and up untouched
	if !vecNear(p.Heading, v3.Vec{X: 1}, eps) || !vecNear(p.Up, v3.Vec{Z: 1}, eps) {
		t.Error("forward should not change the frame vectors")
	}
}

func TestRotationsKeepFrameOrthonormal(t *testing.T) {
	tests := []struct {
		name string
		cmds []Rotate
	}{
		{"yaw", []Rotate{{Kind: RotateHorizontal, Angle: 37}}},
		{"pitch", []Rotate{{Kind: RotateVertical, Angle: -62}}},
		{"roll", []Rotate{{Kind: RotateRoll, Angle: 118}}},
		{"set heading", []Rotate{{Kind: RotateSetHeading, Angle: 200}}},
		{"mixed", []Rotate{
			{Kind: RotateHorizontal, Angle: 45},
			{Kind: RotateVertical, Angle: 30},
			{Kind: RotateRoll, Angle: 90},
			{Kind: RotateHorizontal, Angle: -120},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPose()
			for _, r := range tt.cmds {
				p = p.ApplyRotation(r)
			}
			if d := math.Abs(p.Heading.Length() - 1); d > 1e-9 {
				t.Errorf("heading length off by %g", d)
			}
			if d := math.Abs(p.Up.Length() - 1); d > 1e-9 {
				t.Errorf("up length off by %g", d)
			}
			if d := math.Abs(p.Heading.Dot(p.Up)); d > 1e-9 {
				t.Errorf("heading.up = %g, want 0", d)
			}
		})
	}
}

func TestHorizontalRotationStaysInPlane(t *testing.T) {
	p := NewPose().ApplyRotation(Rotate{Kind: RotateHorizontal, Angle: 90})
	if math.Abs(p.Heading.Z) > eps {
		t.Errorf("heading Z = %g, want 0 after yaw", p.Heading.Z)
	}
	if math.Abs(math.Abs(p.Heading.Y)-1) > eps {
		t.Errorf("heading = %v, want along Y after 90 degree yaw", p.Heading)
	}
	if !vecNear(p.Up, v3.Vec{Z: 1}, eps) {
		t.Errorf("up = %v, yaw should not move up", p.Up)
	}
}

func TestRollLeavesHeading(t *testing.T) {
	p := NewPose().ApplyRotation(Rotate{Kind: RotateRoll, Angle: 90})
	if !vecNear(p.Heading, v3.Vec{X: 1}, eps) {
		t.Errorf("heading = %v, roll should not move heading", p.Heading)
	}
	if math.Abs(p.Up.Z) > eps {
		t.Errorf("up = %v, want rotated out of Z after 90 degree roll", p.Up)
	}
}

func TestSetHeadingAbsolute(t *testing.T) {
	// Whatever the current yaw, set-heading lands on the absolute angle.
	p := NewPose().
		ApplyRotation(Rotate{Kind: RotateHorizontal, Angle: 123}).
		ApplyRotation(Rotate{Kind: RotateSetHeading, Angle: 90})
	if !vecNear(p.Heading, v3.Vec{Y: 1}, eps) {
		t.Errorf("heading = %v, want +Y", p.Heading)
	}
}

func TestTransportIdentityForParallel(t *testing.T) {
	up := v3.Vec{Z: 1}
	h := v3.Vec{X: 1}
	got := Transport(up, h, h)
	if !vecNear(got, up, eps) {
		t.Errorf("transport along parallel headings = %v, want unchanged", got)
	}
}

func TestTransportPreservesLengthAndAngle(t *testing.T) {
	tests := []struct {
		name     string
		old, new v3.Vec
	}{
		{"quarter turn", v3.Vec{X: 1}, v3.Vec{Y: 1}},
		{"out of plane", v3.Vec{X: 1}, v3.Vec{Z: 1}},
		{"oblique", v3.Vec{X: 1}, v3.Vec{X: 1, Y: 1, Z: 1}.Normalize()},
	}
	up := v3.Vec{Z: 1}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transport(up, tt.old, tt.new)
			if d := math.Abs(got.Length() - 1); d > 1e-9 {
				t.Errorf("transported up length off by %g", d)
			}
			// The angle between up and heading is preserved.
			before := up.Dot(tt.old)
			after := got.Dot(tt.new)
			if math.Abs(before-after) > 1e-9 {
				t.Errorf("up/heading angle changed: cos %g -> %g", before, after)
			}
		})
	}
}

func TestTransportRoundTrip(t *testing.T) {
	up := v3.Vec{Z: 1}
	a := v3.Vec{X: 1}
	b := v3.Vec{X: 1, Y: 2, Z: 0.5}.Normalize()

	there := Transport(up, a, b)
	back := Transport(there, b, a)
	if !vecNear(back, up, 1e-9) {
		t.Errorf("round trip = %v, want %v", back, up)
	}
}

func TestPathRun(t *testing.T) {
	p := Path{
		Forward{Dist: 10},
		Rotate{Kind: RotateHorizontal, Angle: 90},
		Forward{Dist: 5},
	}
	end := p.Run(NewPose())
	if math.Abs(end.Position.X-10) > eps {
		t.Errorf("X = %g, want 10", end.Position.X)
	}
	if math.Abs(math.Abs(end.Position.Y)-5) > eps {
		t.Errorf("|Y| = %g, want 5", math.Abs(end.Position.Y))
	}
	if math.Abs(end.Position.Z) > eps {
		t.Errorf("Z = %g, want 0", end.Position.Z)
	}
}

func TestPathTotalDist(t *testing.T) {
	p := Path{
		Forward{Dist: 10},
		Rotate{Kind: RotateRoll, Angle: 45},
		Forward{Dist: 2.5},
	}
	if d := p.TotalDist(); d != 12.5 {
		t.Errorf("TotalDist = %g, want 12.5", d)
	}
	if d := (Path{}).TotalDist(); d != 0 {
		t.Errorf("empty TotalDist = %g, want 0", d)
	}
}

func TestChangesHeading(t *testing.T) {
	if (Rotate{Kind: RotateRoll, Angle: 90}).ChangesHeading() {
		t.Error("roll should not change heading")
	}
	for _, k := range []RotateKind{RotateHorizontal, RotateVertical, RotateSetHeading} {
		if !(Rotate{Kind: k, Angle: 90}).ChangesHeading() {
			t.Errorf("%s should change heading", k)
		}
	}
}
