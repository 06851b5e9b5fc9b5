package loft

import (
	"math"

	"github.com/chazu/loft/pkg/mesh"
	"github.com/chazu/loft/pkg/turtle"
)

// Sampling budget split between curved and straight sections of a path.
// Curved sections (heading changes) receive the lion's share so tight
// bends stay smooth while long straights stay cheap.
const (
	curvedShare   = 0.9
	straightShare = 0.1
)

// CurvatureScan summarizes one pass over a path: total forward distance
// and total absolute heading change in degrees, measured strictly
// between consecutive forward moves. Rotation runs between two forwards
// collapse into a single geometric delta, which keeps paths made of many
// curve micro-segments from over-counting their turn.
type CurvatureScan struct {
	TotalDist  float64
	TotalAngle float64
}

// ScanCurvature performs the single-pass scan.
func ScanCurvature(path turtle.Path) CurvatureScan {
	var scan CurvatureScan
	pose := turtle.NewPose()

	prev := pose
	seenForward := false
	for _, c := range path {
		pose = pose.Apply(c)
		f, ok := c.(turtle.Forward)
		if !ok {
			continue
		}
		if seenForward {
			dot := clamp(prev.Heading.Dot(pose.Heading), -1, 1)
			scan.TotalAngle += math.Acos(dot) * 180 / math.Pi
		}
		scan.TotalDist += f.Dist
		prev = pose
		seenForward = true
	}
	return scan
}

// StepsFromResolution converts a scan and a resolution policy into a
// step count.
func StepsFromResolution(scan CurvatureScan, res mesh.Resolution) int {
	return res.Steps(scan.TotalAngle, scan.TotalDist)
}

// WalkAdaptive walks the path from the start pose emitting nSamples+1
// poses whose density follows local curvature: each forward move carries
// a share of a curvature-weighted distance metric proportional to its
// length, each turn a share proportional to shapeRadius times its angle,
// normalized so turns receive 90% of the budget. With zero total
// curvature the walk degrades to uniform arclength sampling. Paths
// yielding fewer geometric samples than requested are padded with the
// final pose.
func WalkAdaptive(start turtle.Pose, path turtle.Path, nSamples int, shapeRadius float64, scan CurvatureScan) []turtle.Pose {
	if nSamples < 1 {
		nSamples = 1
	}
	pose := start
	poses := make([]turtle.Pose, 0, nSamples+1)
	poses = append(poses, pose)

	if scan.TotalDist <= 0 && scan.TotalAngle <= 0 {
		for len(poses) < nSamples+1 {
			poses = append(poses, pose)
		}
		return poses
	}

	// Per-unit metric weights. shapeRadius scales each turn's raw metric
	// but cancels against the angle normalizer; it is kept in the raw
	// terms so a zero radius mutes turns entirely.
	distWeight := 0.0
	if scan.TotalDist > 0 {
		distWeight = straightShare / scan.TotalDist
	}
	angleWeight := 0.0
	rawTurnTotal := shapeRadius * scan.TotalAngle
	if scan.TotalAngle > 0 && rawTurnTotal > 0 {
		angleWeight = curvedShare / rawTurnTotal
	}
	if angleWeight == 0 && scan.TotalDist > 0 {
		// No turning (or a degenerate shape): pure arclength sampling
		// over the full budget.
		distWeight = 1.0 / scan.TotalDist
	}

	total := 0.0
	if distWeight > 0 {
		total += straightShare
	}
	if angleWeight > 0 {
		total += curvedShare
	}
	if distWeight > 0 && angleWeight == 0 {
		total = 1.0
	}
	step := total / float64(nSamples)

	acc := 0.0
	emitted := 1
	threshold := step

	prevForward := pose
	seenForward := false
	for _, c := range path {
		switch cmd := c.(type) {
		case turtle.Rotate:
			pose = pose.ApplyRotation(cmd)
		case turtle.Forward:
			if seenForward && angleWeight > 0 {
				dot := clamp(prevForward.Heading.Dot(pose.Heading), -1, 1)
				delta := math.Acos(dot) * 180 / math.Pi
				m := angleWeight * shapeRadius * delta
				for emitted < nSamples+1 && threshold <= acc+m {
					poses = append(poses, pose)
					emitted++
					threshold += step
				}
				acc += m
			}

			m := distWeight * cmd.Dist
			segStart := pose
			for emitted < nSamples+1 && m > 0 && threshold <= acc+m {
				f := (threshold - acc) / m
				poses = append(poses, segStart.Forward(cmd.Dist*f))
				emitted++
				threshold += step
			}
			pose = pose.Forward(cmd.Dist)
			acc += m
			prevForward = pose
			seenForward = true
		}
	}

	for len(poses) < nSamples+1 {
		poses = append(poses, pose)
	}
	return poses[:nSamples+1]
}
