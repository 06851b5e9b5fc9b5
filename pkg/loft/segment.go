package loft

import (
	"github.com/chazu/loft/pkg/turtle"
)

// headingChangeTol: a trailing rotation set whose geometric heading
// delta stays below this dot-product gap is not a hard corner.
const headingChangeTol = 1e-9

// Segment is one forward move of a path together with the rotation
// commands trailing it, up to (not including) the next forward move.
type Segment struct {
	Dist     float64
	Trailing []turtle.Rotate

	// HardCorner is set when the trailing rotations change the heading.
	// Pure roll never does.
	HardCorner bool
}

// AnalyzePath partitions a command sequence into per-forward-move
// segments. Rotations appearing before the first forward move are
// returned separately as the lead-in; they orient the start frame but
// belong to no segment.
func AnalyzePath(path turtle.Path) (lead []turtle.Rotate, segments []Segment) {
	cur := -1
	for _, c := range path {
		switch cmd := c.(type) {
		case turtle.Forward:
			segments = append(segments, Segment{Dist: cmd.Dist})
			cur = len(segments) - 1
		case turtle.Rotate:
			if cur < 0 {
				lead = append(lead, cmd)
			} else {
				segments[cur].Trailing = append(segments[cur].Trailing, cmd)
			}
		}
	}

	// A segment ends in a hard corner when its trailing rotations turn
	// the heading geometrically, judged by applying them to a probe
	// frame. This catches full-circle turns and angle-zero rotations
	// that a static check would misclassify.
	probe := turtle.NewPose()
	for _, r := range lead {
		probe = probe.ApplyRotation(r)
	}
	for i := range segments {
		before := probe
		for _, r := range segments[i].Trailing {
			probe = probe.ApplyRotation(r)
		}
		segments[i].HardCorner = before.Heading.Dot(probe.Heading) < 1-headingChangeTol
	}
	return lead, segments
}
