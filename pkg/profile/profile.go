// Package profile represents the 2D cross-sections swept along a path.
// A profile is an ordered outer point loop, optional hole loops, and
// placement flags. Profiles are immutable values: every transform returns
// a new profile.
package profile

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Profile is a 2D cross-section.
type Profile struct {
	Outer []v2.Vec
	Holes [][]v2.Vec

	// Centered shifts the outline so its centroid sits on the sweep axis
	// before projection.
	Centered bool

	// AlignPlane orients the profile into the path frame (x to the frame
	// right axis, y to the frame up axis). When false the profile is laid
	// into the world XY plane at the sample position.
	AlignPlane bool
}

// Transform maps a profile to its shape at parameter t in [0, 1] along
// the sweep. The callback is opaque to the loft drivers; they only
// evaluate it.
type Transform func(p Profile, t float64) Profile

// Identity is the Transform that returns the profile unchanged.
func Identity(p Profile, t float64) Profile { return p }

// TaperTo returns a Transform that scales the profile linearly from its
// full size at t=0 down to scale at t=1.
func TaperTo(scale float64) Transform {
	return func(p Profile, t float64) Profile {
		s := 1 + (scale-1)*t
		return p.Scale(s, s)
	}
}

// Circle returns a circular profile of the given radius with facets
// points.
func Circle(radius float64, facets int) Profile {
	if facets < 3 {
		facets = 3
	}
	pts := make([]v2.Vec, facets)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(facets)
		pts[i] = v2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return Profile{Outer: pts, AlignPlane: true}
}

// Rect returns a w-by-h rectangular profile centered on the origin.
func Rect(w, h float64) Profile {
	hw, hh := w/2, h/2
	return Profile{
		Outer: []v2.Vec{
			{X: -hw, Y: -hh},
			{X: hw, Y: -hh},
			{X: hw, Y: hh},
			{X: -hw, Y: hh},
		},
		AlignPlane: true,
	}
}

// FromPoints builds a profile from an explicit outer loop.
func FromPoints(pts []v2.Vec) Profile {
	outer := make([]v2.Vec, len(pts))
	copy(outer, pts)
	return Profile{Outer: outer, AlignPlane: true}
}

// FromPolygon builds a profile from an sdf polygon builder, picking up
// any smoothed corners the builder generated.
func FromPolygon(p *sdf.Polygon) Profile {
	return FromPoints(p.Vertices())
}

// WithHole returns a copy of the profile with an extra hole loop.
func (p Profile) WithHole(pts []v2.Vec) Profile {
	q := p.clone()
	hole := make([]v2.Vec, len(pts))
	copy(hole, pts)
	q.Holes = append(q.Holes, hole)
	return q
}

// IsValid reports whether the profile can be swept: at least 3 outer
// points and 3 points per hole.
func (p Profile) IsValid() bool {
	if len(p.Outer) < 3 {
		return false
	}
	for _, h := range p.Holes {
		if len(h) < 3 {
			return false
		}
	}
	return true
}

// Radius returns the maximum distance from the sweep axis to any outer
// point.
func (p Profile) Radius() float64 {
	var max float64
	for _, pt := range p.Outer {
		if d := pt.Length(); d > max {
			max = d
		}
	}
	return max
}

// Centroid returns the average of the outer points.
func (p Profile) Centroid() v2.Vec {
	var sum v2.Vec
	if len(p.Outer) == 0 {
		return sum
	}
	for _, pt := range p.Outer {
		sum = sum.Add(pt)
	}
	return sum.DivScalar(float64(len(p.Outer)))
}

// Scale returns the profile scaled by (sx, sy) about the origin.
func (p Profile) Scale(sx, sy float64) Profile {
	return p.mapPoints(func(pt v2.Vec) v2.Vec {
		return v2.Vec{X: pt.X * sx, Y: pt.Y * sy}
	})
}

// Translate returns the profile shifted by (dx, dy).
func (p Profile) Translate(dx, dy float64) Profile {
	return p.mapPoints(func(pt v2.Vec) v2.Vec {
		return v2.Vec{X: pt.X + dx, Y: pt.Y + dy}
	})
}

// Rotate returns the profile rotated by degrees about the origin.
func (p Profile) Rotate(degrees float64) Profile {
	rad := degrees * math.Pi / 180.0
	s, c := math.Sin(rad), math.Cos(rad)
	return p.mapPoints(func(pt v2.Vec) v2.Vec {
		return v2.Vec{X: pt.X*c - pt.Y*s, Y: pt.X*s + pt.Y*c}
	})
}

func (p Profile) clone() Profile {
	q := p
	q.Outer = make([]v2.Vec, len(p.Outer))
	copy(q.Outer, p.Outer)
	q.Holes = make([][]v2.Vec, len(p.Holes))
	for i, h := range p.Holes {
		q.Holes[i] = make([]v2.Vec, len(h))
		copy(q.Holes[i], h)
	}
	return q
}

func (p Profile) mapPoints(fn func(v2.Vec) v2.Vec) Profile {
	q := p.clone()
	for i, pt := range q.Outer {
		q.Outer[i] = fn(pt)
	}
	for _, h := range q.Holes {
		for i, pt := range h {
			h[i] = fn(pt)
		}
	}
	return q
}
