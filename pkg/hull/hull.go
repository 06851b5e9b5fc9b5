// Package hull computes 3D convex hulls over point clouds. The safe loft
// driver bridges self-intersecting ring pairs with hull patches built
// from the union of their vertices.
package hull

import (
	"fmt"

	"github.com/chazu/loft/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// epsilon is the planarity tolerance: points closer than this to a face
// plane are treated as on it.
const epsilon = 1e-9

type face struct {
	a, b, c int
	normal  v3.Vec
	d       float64
}

func newFace(pts []v3.Vec, a, b, c int) face {
	n := pts[b].Sub(pts[a]).Cross(pts[c].Sub(pts[a]))
	return face{a: a, b: b, c: c, normal: n, d: n.Dot(pts[a])}
}

func (f face) visibleFrom(p v3.Vec) bool {
	return f.normal.Dot(p)-f.d > epsilon*f.normal.Length()
}

// ConvexHull computes the convex hull of the points as a triangle mesh
// fragment using an incremental algorithm. It fails on fewer than four
// points or on degenerate (collinear/coplanar) input; callers treat a
// failed hull as an unbuildable bridge, not a fault.
func ConvexHull(points []v3.Vec) (*mesh.Fragment, error) {
	if len(points) < 4 {
		return nil, fmt.Errorf("hull: need at least 4 points, got %d", len(points))
	}

	i0, i1, i2, i3, err := initialTetrahedron(points)
	if err != nil {
		return nil, err
	}

	// Orient the seed faces outward with respect to the tetra centroid.
	centroid := points[i0].Add(points[i1]).Add(points[i2]).Add(points[i3]).DivScalar(4)
	faces := make([]face, 0, 4)
	for _, tri := range [][3]int{{i0, i1, i2}, {i0, i1, i3}, {i0, i2, i3}, {i1, i2, i3}} {
		f := newFace(points, tri[0], tri[1], tri[2])
		if f.visibleFrom(centroid) {
			f = newFace(points, tri[0], tri[2], tri[1])
		}
		faces = append(faces, f)
	}

	seed := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	for i, p := range points {
		if seed[i] {
			continue
		}
		faces = addPoint(points, faces, i, p)
	}

	return toFragment(points, faces), nil
}

// addPoint grows the hull with one point: remove the faces it can see,
// then fan new faces from the horizon edges to the point.
func addPoint(pts []v3.Vec, faces []face, idx int, p v3.Vec) []face {
	var visible, kept []face
	for _, f := range faces {
		if f.visibleFrom(p) {
			visible = append(visible, f)
		} else {
			kept = append(kept, f)
		}
	}
	if len(visible) == 0 {
		return faces
	}

	// A horizon edge is a directed edge of a visible face whose reverse
	// is not an edge of any visible face.
	edges := make(map[[2]int]bool)
	for _, f := range visible {
		edges[[2]int{f.a, f.b}] = true
		edges[[2]int{f.b, f.c}] = true
		edges[[2]int{f.c, f.a}] = true
	}
	for e := range edges {
		if edges[[2]int{e[1], e[0]}] {
			continue
		}
		kept = append(kept, newFace(pts, e[0], e[1], idx))
	}
	return kept
}

// initialTetrahedron picks four affinely independent points.
func initialTetrahedron(pts []v3.Vec) (int, int, int, int, error) {
	i0 := 0

	i1, best := -1, 0.0
	for i, p := range pts {
		if d := p.Sub(pts[i0]).Length(); d > best {
			i1, best = i, d
		}
	}
	if best < 1e-9 {
		return 0, 0, 0, 0, fmt.Errorf("hull: all points coincident")
	}

	dir := pts[i1].Sub(pts[i0]).Normalize()
	i2, best := -1, 0.0
	for i, p := range pts {
		v := p.Sub(pts[i0])
		if d := v.Sub(dir.MulScalar(v.Dot(dir))).Length(); d > best {
			i2, best = i, d
		}
	}
	if best < 1e-9 {
		return 0, 0, 0, 0, fmt.Errorf("hull: points are collinear")
	}

	n := pts[i1].Sub(pts[i0]).Cross(pts[i2].Sub(pts[i0])).Normalize()
	i3, best := -1, 0.0
	for i, p := range pts {
		if d := abs(n.Dot(p.Sub(pts[i0]))); d > best {
			i3, best = i, d
		}
	}
	if best < 1e-9 {
		return 0, 0, 0, 0, fmt.Errorf("hull: points are coplanar")
	}
	return i0, i1, i2, i3, nil
}

// toFragment packs the hull faces into a fragment, keeping only the
// vertices the faces reference.
func toFragment(pts []v3.Vec, faces []face) *mesh.Fragment {
	remap := make(map[int]int)
	frag := &mesh.Fragment{}
	index := func(i int) int {
		if j, ok := remap[i]; ok {
			return j
		}
		j := len(frag.Vertices)
		frag.Vertices = append(frag.Vertices, pts[i])
		remap[i] = j
		return j
	}
	for _, f := range faces {
		frag.Faces = append(frag.Faces, [3]int{index(f.a), index(f.b), index(f.c)})
	}
	return frag
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
