package loft

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// minTurnAngle is the turn (radians) below which corner shortening is
// skipped entirely.
const minTurnAngle = 0.01

// minDeterminant is the 2x2 determinant magnitude below which the
// silhouette lines are treated as parallel and no shortening applies.
const minDeterminant = 1e-4

// CornerShortening is the closed-form miter correction for two tapered
// sweep segments meeting at an angle. Pullback shortens the incoming
// segment along its heading, Offset pushes the outgoing segment forward
// along its heading, and Hidden is the path length consumed by the two
// cuts (always their sum).
type CornerShortening struct {
	Pullback float64 // r_p
	Offset   float64 // r_n
	Hidden   float64
}

// SolveCorner computes the shortening for two linearly tapered cones
// (radius r at distance 0, radius 0 at distance d) meeting at distance
// lA with turn angle theta (radians). Without this correction adjacent
// tapered sweep surfaces interpenetrate at sharp turns; the closed form
// removes the overlap exactly for linear tapers.
//
// The construction happens in a 2D frame local to the corner, x along
// the incoming heading: each cone contributes its inner silhouette edge
// as a line, and the lines' intersection determines the cuts. Negligible
// turn angles and near-parallel silhouettes return the zero shortening.
func SolveCorner(r, d, lA, theta float64) CornerShortening {
	if math.Abs(theta) < minTurnAngle {
		return CornerShortening{}
	}

	var slope float64
	if d > 0 {
		slope = r / d
	}
	// Taper radius where the segments meet.
	rc := r - slope*lA

	sin, cos := math.Sin(theta), math.Cos(theta)
	u2 := v2.Vec{X: cos, Y: sin}         // outgoing heading
	n2 := v2.Vec{X: -sin, Y: cos}        // inner side of the turn, outgoing
	a1 := v2.Vec{Y: rc}                  // incoming silhouette at the corner
	d1 := v2.Vec{X: 1, Y: -slope}        // incoming silhouette direction
	a2 := n2.MulScalar(rc)               // outgoing silhouette at the corner
	d2 := u2.Sub(n2.MulScalar(slope))    // outgoing silhouette direction

	// Solve a1 + t*d1 = a2 + s*d2 for t by Cramer's rule.
	det := d2.X*d1.Y - d1.X*d2.Y
	if math.Abs(det) < minDeterminant {
		return CornerShortening{}
	}
	rhs := a2.Sub(a1)
	t := (d2.X*rhs.Y - d2.Y*rhs.X) / det
	p := a1.Add(d1.MulScalar(t))

	rp := math.Max(0, -p.X)
	rn := math.Max(0, p.X*cos+p.Y*sin)
	return CornerShortening{
		Pullback: rp,
		Offset:   rn,
		Hidden:   rp + rn,
	}
}
