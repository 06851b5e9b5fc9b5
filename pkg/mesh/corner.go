package mesh

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RoundCornerRings generates the intermediate rings of a round corner
// joint: copies of the incoming end ring swept along a circular arc
// around the corner pivot, from the old heading to the new one. The
// returned rings are strictly interior (the end ring itself and the
// outgoing start ring are not included). segments is the arc resolution;
// segments <= 1 yields no interior rings.
func RoundCornerRings(end Ring, pivot, oldHeading, newHeading v3.Vec, segments int) []Ring {
	axis := oldHeading.Cross(newHeading)
	if axis.Length() < 1e-4 || segments <= 1 {
		return nil
	}
	axis = axis.Normalize()
	angle := math.Acos(clamp(oldHeading.Dot(newHeading), -1, 1))

	rings := make([]Ring, 0, segments-1)
	for k := 1; k < segments; k++ {
		a := angle * float64(k) / float64(segments)
		m := sdf.Rotate3d(axis, a)
		r := make(Ring, len(end))
		for i, p := range end {
			r[i] = pivot.Add(m.MulPosition(p.Sub(pivot)))
		}
		rings = append(rings, r)
	}
	return rings
}

// TaperedCornerRings generates the intermediate rings of a tapered corner
// joint: linear blends between the incoming end ring and the outgoing
// start ring, pinched toward the miter plane by scaling each blend about
// its centroid. The pinch reaches cos(angle/2) at the midpoint so the
// joint narrows the way two mitered cones do. angle is the turn angle in
// radians.
func TaperedCornerRings(end, start Ring, angle float64, segments int) []Ring {
	if len(end) != len(start) || segments <= 1 {
		return nil
	}
	pinch := math.Cos(angle / 2)

	rings := make([]Ring, 0, segments-1)
	for k := 1; k < segments; k++ {
		t := float64(k) / float64(segments)
		r := make(Ring, len(end))
		for i := range end {
			r[i] = end[i].MulScalar(1 - t).Add(start[i].MulScalar(t))
		}
		// 4t(1-t) peaks at 1 for t=0.5, fading the pinch at both ends.
		scale := 1 - 4*t*(1-t)*(1-pinch)
		c := r.Centroid()
		for i := range r {
			r[i] = c.Add(r[i].Sub(c).MulScalar(scale))
		}
		rings = append(rings, r)
	}
	return rings
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
