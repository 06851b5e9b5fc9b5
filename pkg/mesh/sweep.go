package mesh

import (
	"fmt"

	"github.com/chazu/loft/pkg/turtle"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BuildSweep stitches an ordered list of rings into a closed tube mesh.
// Consecutive rings are connected with quad strips (two triangles per
// profile edge). When caps is true the first and last rings are closed
// with triangulated end caps. Caps are only valid at the absolute start
// and end of a sweep; corner-split fragments must be built uncapped or
// internal surfaces result.
func BuildSweep(rings []Ring, caps bool, pose turtle.Pose) (*Fragment, error) {
	if err := checkRings(rings); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	n := len(rings[0])

	frag := &Fragment{CreationPose: pose}
	for _, r := range rings {
		frag.Vertices = append(frag.Vertices, r...)
	}
	for i := 0; i < len(rings)-1; i++ {
		stitchLoop(frag, i*n, (i+1)*n, n)
	}

	if caps {
		if err := addCap(frag, rings[0], true); err != nil {
			return nil, fmt.Errorf("sweep: start cap: %w", err)
		}
		if err := addCap(frag, rings[len(rings)-1], false); err != nil {
			return nil, fmt.Errorf("sweep: end cap: %w", err)
		}
	}
	return frag, nil
}

// BuildSweepWithHoles stitches ring-with-holes sections: walls are built
// for the outer loop and every hole loop (holes wound opposite so their
// walls face inward), and caps are triangulated around the holes.
func BuildSweepWithHoles(sections []RingWithHoles, caps bool, pose turtle.Pose) (*Fragment, error) {
	if len(sections) < 2 {
		return nil, fmt.Errorf("sweep: need at least 2 sections, got %d", len(sections))
	}
	outers := make([]Ring, len(sections))
	for i, s := range sections {
		outers[i] = s.Outer
	}
	if err := checkRings(outers); err != nil {
		return nil, fmt.Errorf("sweep: outer: %w", err)
	}
	nHoles := len(sections[0].Holes)
	for i, s := range sections {
		if len(s.Holes) != nHoles {
			return nil, fmt.Errorf("sweep: section %d has %d holes, want %d", i, len(s.Holes), nHoles)
		}
	}

	frag, err := BuildSweep(outers, false, pose)
	if err != nil {
		return nil, err
	}

	for h := 0; h < nHoles; h++ {
		walls := make([]Ring, len(sections))
		for i, s := range sections {
			walls[i] = s.Holes[h]
		}
		if err := checkRings(walls); err != nil {
			return nil, fmt.Errorf("sweep: hole %d: %w", h, err)
		}
		n := len(walls[0])
		base := len(frag.Vertices)
		for _, r := range walls {
			frag.Vertices = append(frag.Vertices, r...)
		}
		// Reversed strips so hole walls face into the tube.
		for i := 0; i < len(walls)-1; i++ {
			stitchLoopReversed(frag, base+i*n, base+(i+1)*n, n)
		}
	}

	if caps {
		first := sections[0]
		last := sections[len(sections)-1]
		if err := addCapWithHoles(frag, first, true); err != nil {
			return nil, fmt.Errorf("sweep: start cap: %w", err)
		}
		if err := addCapWithHoles(frag, last, false); err != nil {
			return nil, fmt.Errorf("sweep: end cap: %w", err)
		}
	}
	return frag, nil
}

// checkRings validates point counts for one build call.
func checkRings(rings []Ring) error {
	if len(rings) < 2 {
		return fmt.Errorf("need at least 2 rings, got %d", len(rings))
	}
	n := len(rings[0])
	if n < 3 {
		return fmt.Errorf("rings need at least 3 points, got %d", n)
	}
	for i, r := range rings {
		if len(r) != n {
			return fmt.Errorf("ring %d has %d points, want %d", i, len(r), n)
		}
	}
	return nil
}

// stitchLoop connects two vertex loops of size n starting at offsets
// o1 and o2 with a quad strip.
func stitchLoop(f *Fragment, o1, o2, n int) {
	for j := 0; j < n; j++ {
		j1 := (j + 1) % n
		f.Faces = append(f.Faces,
			[3]int{o1 + j, o2 + j, o2 + j1},
			[3]int{o1 + j, o2 + j1, o1 + j1},
		)
	}
}

// stitchLoopReversed is stitchLoop with opposite winding.
func stitchLoopReversed(f *Fragment, o1, o2, n int) {
	for j := 0; j < n; j++ {
		j1 := (j + 1) % n
		f.Faces = append(f.Faces,
			[3]int{o1 + j, o2 + j1, o2 + j},
			[3]int{o1 + j, o1 + j1, o2 + j1},
		)
	}
}

// addCap triangulates one ring and appends the cap geometry. The start
// cap is wound opposite to the end cap so both face outward.
func addCap(f *Fragment, r Ring, start bool) error {
	verts, faces, err := TriangulateCap(r, nil)
	if err != nil {
		return err
	}
	appendCap(f, verts, faces, start)
	return nil
}

func addCapWithHoles(f *Fragment, s RingWithHoles, start bool) error {
	verts, faces, err := TriangulateCap(s.Outer, s.Holes)
	if err != nil {
		return err
	}
	appendCap(f, verts, faces, start)
	return nil
}

func appendCap(f *Fragment, verts []v3.Vec, faces [][3]int, start bool) {
	base := len(f.Vertices)
	f.Vertices = append(f.Vertices, verts...)
	for _, face := range faces {
		if start {
			f.Faces = append(f.Faces, [3]int{face[0] + base, face[2] + base, face[1] + base})
		} else {
			f.Faces = append(f.Faces, [3]int{face[0] + base, face[1] + base, face[2] + base})
		}
	}
}
