// Package mesh builds triangle meshes from ordered cross-section rings.
// A Fragment is the unit of output: a vertex/face soup tagged with the
// pose it was created at. Fragments are value-owned by the caller; this
// package never retains them.
package mesh

import (
	"github.com/chazu/loft/pkg/turtle"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Ring is one projected instance of a 2D profile at a path position:
// an ordered loop of 3D points. All rings passed to one build call must
// share point count and winding.
type Ring []v3.Vec

// RingWithHoles carries an outer ring plus hole rings, used when the
// profile itself has holes.
type RingWithHoles struct {
	Outer Ring
	Holes []Ring
}

// Fragment is a triangle mesh piece produced by the builders.
type Fragment struct {
	Vertices     []v3.Vec
	Faces        [][3]int
	CreationPose turtle.Pose
	Material     string

	// Degraded is set when the fragment was produced by a concatenation
	// fallback after a failed boolean combine. The mesh may be
	// non-manifold.
	Degraded bool
}

// VertexCount returns the number of vertices.
func (f *Fragment) VertexCount() int {
	return len(f.Vertices)
}

// FaceCount returns the number of triangles.
func (f *Fragment) FaceCount() int {
	return len(f.Faces)
}

// IsEmpty returns true if the fragment has no geometry.
func (f *Fragment) IsEmpty() bool {
	return len(f.Vertices) == 0
}

// Triangles converts the fragment to sdfx render triangles, suitable for
// render.SaveSTL and the other render outputs.
func (f *Fragment) Triangles() []*sdf.Triangle3 {
	tris := make([]*sdf.Triangle3, 0, len(f.Faces))
	for _, face := range f.Faces {
		t := &sdf.Triangle3{
			f.Vertices[face[0]],
			f.Vertices[face[1]],
			f.Vertices[face[2]],
		}
		tris = append(tris, t)
	}
	return tris
}

// Concat merges fragments by plain vertex/face concatenation. No attempt
// is made to weld shared vertices or resolve overlaps; the result of
// concatenating overlapping fragments is typically non-manifold, which is
// why the result is flagged Degraded.
func Concat(frags []*Fragment) *Fragment {
	out := &Fragment{Degraded: true}
	if len(frags) > 0 {
		out.CreationPose = frags[0].CreationPose
		out.Material = frags[0].Material
	}
	for _, f := range frags {
		base := len(out.Vertices)
		out.Vertices = append(out.Vertices, f.Vertices...)
		for _, face := range f.Faces {
			out.Faces = append(out.Faces, [3]int{face[0] + base, face[1] + base, face[2] + base})
		}
	}
	return out
}

// Centroid returns the average of the ring's points.
func (r Ring) Centroid() v3.Vec {
	var sum v3.Vec
	if len(r) == 0 {
		return sum
	}
	for _, p := range r {
		sum = sum.Add(p)
	}
	return sum.DivScalar(float64(len(r)))
}

// Radius returns the maximum distance from the ring centroid to any of
// its points. This is the local profile radius used by corner bridging
// and intersection tests.
func (r Ring) Radius() float64 {
	c := r.Centroid()
	var max float64
	for _, p := range r {
		if d := p.Sub(c).Length(); d > max {
			max = d
		}
	}
	return max
}

// normal returns the ring's Newell plane normal (unnormalized).
func (r Ring) normal() v3.Vec {
	var n v3.Vec
	for i, p := range r {
		q := r[(i+1)%len(r)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}
