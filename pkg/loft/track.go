package loft

import (
	"math"
	"sort"

	"github.com/chazu/loft/pkg/turtle"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// distEps is the tolerance for matching waypoint distances.
const distEps = 1e-9

// Waypoint is one sample of the orientation track: a frame at a
// cumulative distance along the (possibly corrected) path. Waypoints are
// produced in non-decreasing Dist order; every lookup depends on that
// ordering.
type Waypoint struct {
	Position v3.Vec
	Heading  v3.Vec
	Up       v3.Vec
	Dist     float64
}

// Corner records one hard corner: the headings on either side and the
// distance at which it occurs. Corners are unordered at creation and
// sorted by distance before processing.
type Corner struct {
	OldHeading v3.Vec
	NewHeading v3.Vec
	Dist       float64
}

// Angle returns the corner's turn angle in radians.
func (c Corner) Angle() float64 {
	return math.Acos(clamp(c.OldHeading.Dot(c.NewHeading), -1, 1))
}

// ProcessCorners folds miter corrections into an orientation track. For
// each corner, in ascending distance order, the waypoint at the corner
// is pulled back along the old heading, the next waypoint is pushed
// forward along the new heading, and all later waypoints gain the
// corner's hidden distance. The input slices are not mutated; corrected
// copies are returned together with the new total distance.
//
// initialRadius and totalDist describe the conical taper the corrections
// assume: radius initialRadius at distance 0 falling to 0 at the path
// end.
func ProcessCorners(waypoints []Waypoint, corners []Corner, initialRadius, totalDist float64) ([]Waypoint, float64) {
	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	if len(corners) == 0 {
		return wps, totalDist
	}

	sorted := make([]Corner, len(corners))
	copy(sorted, corners)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Dist < sorted[j].Dist })

	var hiddenAcc float64
	for _, c := range sorted {
		dist := c.Dist + hiddenAcc
		sol := SolveCorner(initialRadius, totalDist+hiddenAcc, dist, c.Angle())
		if sol.Hidden == 0 && sol.Pullback == 0 && sol.Offset == 0 {
			continue
		}

		// Index of the waypoint sitting exactly at the corner.
		at := -1
		for i := range wps {
			if math.Abs(wps[i].Dist-dist) < distEps {
				at = i
				break
			}
		}
		if at >= 0 {
			wps[at].Position = wps[at].Position.Sub(c.OldHeading.MulScalar(sol.Pullback))
			if at+1 < len(wps) {
				wps[at+1].Position = wps[at+1].Position.Add(c.NewHeading.MulScalar(sol.Offset))
			}
		}
		for i := range wps {
			if wps[i].Dist > dist+distEps {
				wps[i].Dist += sol.Hidden
			}
		}
		hiddenAcc += sol.Hidden
	}
	return wps, totalDist + hiddenAcc
}

// FindAtDist returns the interpolated waypoint at the target distance.
// Position is interpolated linearly; heading and up are interpolated
// linearly and renormalized, an approximation of the spherical blend
// that is accurate for the small angular gaps between adjacent
// waypoints. Queries at or past the end return the last waypoint
// unchanged.
func FindAtDist(waypoints []Waypoint, targetDist, totalDist float64) Waypoint {
	if len(waypoints) == 0 {
		return Waypoint{Heading: v3.Vec{X: 1}, Up: v3.Vec{Z: 1}}
	}
	if totalDist == 0 {
		return waypoints[0]
	}

	// The scan is bounded explicitly so a malformed (non-monotonic)
	// waypoint list cannot produce an unbounded search.
	maxIter := len(waypoints) - 1
	for i := 0; i < maxIter; i++ {
		if waypoints[i].Dist <= targetDist && targetDist < waypoints[i+1].Dist {
			return lerpWaypoint(waypoints[i], waypoints[i+1], targetDist)
		}
	}
	return waypoints[len(waypoints)-1]
}

func lerpWaypoint(a, b Waypoint, dist float64) Waypoint {
	span := b.Dist - a.Dist
	if span <= 0 {
		return b
	}
	f := (dist - a.Dist) / span
	return Waypoint{
		Position: a.Position.MulScalar(1 - f).Add(b.Position.MulScalar(f)),
		Heading:  lerpUnit(a.Heading, b.Heading, f),
		Up:       lerpUnit(a.Up, b.Up, f),
		Dist:     dist,
	}
}

// lerpUnit blends two unit vectors linearly and renormalizes.
func lerpUnit(a, b v3.Vec, f float64) v3.Vec {
	v := a.MulScalar(1 - f).Add(b.MulScalar(f))
	if v.Length() < 1e-12 {
		return a
	}
	return v.Normalize()
}

// Pose converts a waypoint to a turtle pose.
func (w Waypoint) Pose() turtle.Pose {
	return turtle.Pose{Position: w.Position, Heading: w.Heading, Up: w.Up}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
