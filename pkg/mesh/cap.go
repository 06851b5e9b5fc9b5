package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	libtess2 "github.com/hajimehoshi/go-libtess2"
)

// TriangulateCap triangulates the planar region bounded by the outer ring,
// minus any hole rings, using libtess2. The rings are projected into the
// outer ring's best-fit plane, tessellated in 2D, and the resulting
// vertices (which may include points introduced by the tessellator) are
// lifted back into 3D. Returns the cap's own vertex list and faces indexed
// into it.
func TriangulateCap(outer Ring, holes []Ring) ([]v3.Vec, [][3]int, error) {
	if len(outer) < 3 {
		return nil, nil, fmt.Errorf("cap: ring has %d points, need at least 3", len(outer))
	}
	n := outer.normal()
	if n.Length() < 1e-12 {
		return nil, nil, fmt.Errorf("cap: degenerate ring plane")
	}
	n = n.Normalize()
	origin := outer.Centroid()
	u, v := planeBasis(n)

	project := func(r Ring) []libtess2.Vertex {
		contour := make([]libtess2.Vertex, len(r))
		for i, p := range r {
			d := p.Sub(origin)
			contour[i] = libtess2.Vertex{
				X: float32(d.Dot(u)),
				Y: float32(d.Dot(v)),
			}
		}
		return contour
	}

	contours := []libtess2.Contour{libtess2.Contour(project(outer))}
	for _, h := range holes {
		if len(h) < 3 {
			return nil, nil, fmt.Errorf("cap: hole has %d points, need at least 3", len(h))
		}
		contours = append(contours, libtess2.Contour(project(h)))
	}

	elements, verts2, err := libtess2.Tesselate(contours, libtess2.WindingRuleOdd)
	if err != nil {
		return nil, nil, fmt.Errorf("cap: %w", err)
	}

	verts := make([]v3.Vec, len(verts2))
	for i, p := range verts2 {
		verts[i] = origin.
			Add(u.MulScalar(float64(p.X))).
			Add(v.MulScalar(float64(p.Y)))
	}
	faces := make([][3]int, 0, len(elements)/3)
	for i := 0; i+2 < len(elements); i += 3 {
		faces = append(faces, [3]int{elements[i], elements[i+1], elements[i+2]})
	}
	return verts, faces, nil
}

// planeBasis returns two orthonormal vectors spanning the plane with
// normal n.
func planeBasis(n v3.Vec) (u, v v3.Vec) {
	// Pick the world axis least aligned with n to seed the basis.
	seed := v3.Vec{X: 1}
	ax, ay, az := abs(n.X), abs(n.Y), abs(n.Z)
	if ay <= ax && ay <= az {
		seed = v3.Vec{Y: 1}
	} else if az <= ax && az <= ay {
		seed = v3.Vec{Z: 1}
	}
	u = n.Cross(seed).Normalize()
	v = n.Cross(u)
	return u, v
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
