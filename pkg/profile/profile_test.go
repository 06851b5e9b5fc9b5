package profile

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/loft/pkg/turtle"
)

func TestCircle(t *testing.T) {
	p := Circle(5, 12)
	if len(p.Outer) != 12 {
		t.Fatalf("expected 12 points, got %d", len(p.Outer))
	}
	for i, pt := range p.Outer {
		if d := math.Abs(pt.Length() - 5); d > 1e-9 {
			t.Errorf("point %d: radius off by %g", i, d)
		}
	}
	if !p.AlignPlane {
		t.Error("circle should align to the path frame")
	}
}

func TestCircleMinFacets(t *testing.T) {
	p := Circle(1, 0)
	if len(p.Outer) != 3 {
		t.Errorf("expected facet floor of 3, got %d", len(p.Outer))
	}
}

func TestRect(t *testing.T) {
	p := Rect(4, 2)
	if len(p.Outer) != 4 {
		t.Fatalf("expected 4 points, got %d", len(p.Outer))
	}
	var maxX, maxY float64
	for _, pt := range p.Outer {
		maxX = math.Max(maxX, math.Abs(pt.X))
		maxY = math.Max(maxY, math.Abs(pt.Y))
	}
	if maxX != 2 || maxY != 1 {
		t.Errorf("half extents = (%g, %g), want (2, 1)", maxX, maxY)
	}
}

func TestFromPolygon(t *testing.T) {
	poly := sdf.NewPolygon()
	poly.Add(0, 0)
	poly.Add(10, 0)
	poly.Add(5, 8)
	p := FromPolygon(poly)
	if len(p.Outer) != 3 {
		t.Fatalf("expected 3 points, got %d", len(p.Outer))
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		p    Profile
		want bool
	}{
		{"empty", Profile{}, false},
		{"two points", FromPoints([]v2.Vec{{X: 0}, {X: 1}}), false},
		{"triangle", FromPoints([]v2.Vec{{X: 0}, {X: 1}, {Y: 1}}), true},
		{"degenerate hole", Circle(5, 8).WithHole([]v2.Vec{{X: 0}, {X: 1}}), false},
		{"good hole", Circle(5, 8).WithHole([]v2.Vec{{X: 0}, {X: 1}, {Y: 1}}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsValid(); got != tt.want {
				t.Errorf("IsValid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRadius(t *testing.T) {
	p := Rect(6, 2)
	want := math.Hypot(3, 1)
	if d := math.Abs(p.Radius() - want); d > 1e-9 {
		t.Errorf("radius off by %g", d)
	}
}

func TestTransformsAreImmutable(t *testing.T) {
	p := Rect(4, 2)
	orig := p.Outer[0]

	_ = p.Scale(2, 2)
	_ = p.Translate(10, 10)
	_ = p.Rotate(90)
	_ = p.WithHole([]v2.Vec{{X: 0}, {X: 1}, {Y: 1}})

	if p.Outer[0] != orig {
		t.Error("transforms mutated the source profile")
	}
	if len(p.Holes) != 0 {
		t.Error("WithHole mutated the source profile")
	}
}

func TestScale(t *testing.T) {
	p := Rect(4, 2).Scale(2, 3)
	var maxX, maxY float64
	for _, pt := range p.Outer {
		maxX = math.Max(maxX, math.Abs(pt.X))
		maxY = math.Max(maxY, math.Abs(pt.Y))
	}
	if maxX != 4 || maxY != 3 {
		t.Errorf("scaled half extents = (%g, %g), want (4, 3)", maxX, maxY)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	p := FromPoints([]v2.Vec{{X: 1}, {X: 2}, {X: 1, Y: 1}}).Rotate(90)
	got := p.Outer[0]
	if math.Abs(got.X) > 1e-9 || math.Abs(got.Y-1) > 1e-9 {
		t.Errorf("rotated point = %v, want (0, 1)", got)
	}
}

func TestTaperTo(t *testing.T) {
	fn := TaperTo(0.5)
	p := Circle(10, 8)

	at0 := fn(p, 0)
	if d := math.Abs(at0.Radius() - 10); d > 1e-9 {
		t.Errorf("taper at t=0 changed radius by %g", d)
	}
	at1 := fn(p, 1)
	if d := math.Abs(at1.Radius() - 5); d > 1e-9 {
		t.Errorf("taper at t=1: radius off by %g", d)
	}
	atHalf := fn(p, 0.5)
	if d := math.Abs(atHalf.Radius() - 7.5); d > 1e-9 {
		t.Errorf("taper at t=0.5: radius off by %g", d)
	}
}

func TestProjectAligned(t *testing.T) {
	// At the canonical pose the profile plane is the world YZ plane:
	// profile x maps to the right axis (-Y), profile y to up (+Z).
	p := FromPoints([]v2.Vec{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}})
	ring := p.Project(turtle.NewPose())
	if len(ring) != 3 {
		t.Fatalf("expected 3 ring points, got %d", len(ring))
	}
	for i, pt := range ring {
		if math.Abs(pt.X) > 1e-9 {
			t.Errorf("point %d: X = %g, want 0 (plane perpendicular to heading)", i, pt.X)
		}
	}
	// Profile y=1 lands on up.
	if math.Abs(ring[1].Z-1) > 1e-9 {
		t.Errorf("up-mapped point Z = %g, want 1", ring[1].Z)
	}
}

func TestProjectWorldPlane(t *testing.T) {
	p := FromPoints([]v2.Vec{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}})
	p.AlignPlane = false
	pose := turtle.NewPose().Forward(7)
	ring := p.Project(pose)
	for i, pt := range ring {
		if math.Abs(pt.X-(p.Outer[i].X+7)) > 1e-9 {
			t.Errorf("point %d: X = %g, want %g", i, pt.X, p.Outer[i].X+7)
		}
		if math.Abs(pt.Y-p.Outer[i].Y) > 1e-9 || math.Abs(pt.Z) > 1e-9 {
			t.Errorf("point %d: %v not laid in world XY", i, pt)
		}
	}
}

func TestProjectCentered(t *testing.T) {
	p := FromPoints([]v2.Vec{{X: 10, Y: 10}, {X: 12, Y: 10}, {X: 11, Y: 12}})
	p.Centered = true
	ring := p.Project(turtle.NewPose())

	c := ring.Centroid()
	if c.Length() > 1e-9 {
		t.Errorf("centered ring centroid = %v, want origin", c)
	}
}

func TestProjectAllCarriesHoles(t *testing.T) {
	p := Circle(5, 8).WithHole([]v2.Vec{{X: -1, Y: -1}, {X: 1, Y: -1}, {Y: 1}})
	sec := p.ProjectAll(turtle.NewPose())
	if len(sec.Outer) != 8 {
		t.Errorf("outer = %d points, want 8", len(sec.Outer))
	}
	if len(sec.Holes) != 1 || len(sec.Holes[0]) != 3 {
		t.Fatalf("holes = %v, want one 3-point hole", sec.Holes)
	}
}
