package loft

import (
	"testing"

	"github.com/chazu/loft/pkg/turtle"
)

func TestAnalyzePathLeadRotations(t *testing.T) {
	path := turtle.Path{
		turtle.Rotate{Kind: turtle.RotateHorizontal, Angle: 45},
		turtle.Rotate{Kind: turtle.RotateRoll, Angle: 10},
		turtle.Forward{Dist: 10},
	}
	lead, segs := AnalyzePath(path)
	if len(lead) != 2 {
		t.Errorf("lead = %d rotations, want 2", len(lead))
	}
	if len(segs) != 1 {
		t.Fatalf("segments = %d, want 1", len(segs))
	}
	if segs[0].Dist != 10 || len(segs[0].Trailing) != 0 || segs[0].HardCorner {
		t.Errorf("segment = %+v, want plain 10-unit move", segs[0])
	}
}

func TestAnalyzePathHardCorners(t *testing.T) {
	path := turtle.Path{
		turtle.Forward{Dist: 20},
		turtle.Rotate{Kind: turtle.RotateHorizontal, Angle: 90},
		turtle.Forward{Dist: 20},
	}
	_, segs := AnalyzePath(path)
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	if !segs[0].HardCorner {
		t.Error("first segment should end in a hard corner")
	}
	if segs[1].HardCorner {
		t.Error("last segment has no trailing turn")
	}
}

func TestAnalyzePathRollIsNotACorner(t *testing.T) {
	path := turtle.Path{
		turtle.Forward{Dist: 10},
		turtle.Rotate{Kind: turtle.RotateRoll, Angle: 90},
		turtle.Forward{Dist: 10},
	}
	_, segs := AnalyzePath(path)
	if segs[0].HardCorner {
		t.Error("pure roll should not mark a hard corner")
	}
}

func TestAnalyzePathFullCircleIsNotACorner(t *testing.T) {
	// 360 degrees of yaw lands back on the same heading.
	path := turtle.Path{
		turtle.Forward{Dist: 10},
		turtle.Rotate{Kind: turtle.RotateHorizontal, Angle: 180},
		turtle.Rotate{Kind: turtle.RotateHorizontal, Angle: 180},
		turtle.Forward{Dist: 10},
	}
	_, segs := AnalyzePath(path)
	if segs[0].HardCorner {
		t.Error("a full-circle rotation run should not mark a hard corner")
	}
}

func TestAnalyzePathCancellingTurns(t *testing.T) {
	path := turtle.Path{
		turtle.Forward{Dist: 10},
		turtle.Rotate{Kind: turtle.RotateHorizontal, Angle: 45},
		turtle.Rotate{Kind: turtle.RotateHorizontal, Angle: -45},
		turtle.Forward{Dist: 10},
	}
	_, segs := AnalyzePath(path)
	if segs[0].HardCorner {
		t.Error("cancelling turns should not mark a hard corner")
	}
}
