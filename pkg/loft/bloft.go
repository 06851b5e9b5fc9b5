package loft

import (
	"github.com/chazu/loft/pkg/hull"
	"github.com/chazu/loft/pkg/mesh"
	"github.com/chazu/loft/pkg/mesh/boolean"
	"github.com/chazu/loft/pkg/profile"
	"github.com/chazu/loft/pkg/turtle"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// minRingRadius: rings whose profile collapses below this radius are
// skipped as degenerate taper-to-zero samples.
const minRingRadius = 1e-3

// DefaultIntersectThreshold is the backward-displacement fraction used
// by Bloft when the caller passes a non-positive threshold.
const DefaultIntersectThreshold = 0.1

// sameRing reports whether two rings are vertex-for-vertex identical.
func sameRing(a, b mesh.Ring) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Sub(b[i]).Length() > 1e-9 {
			return false
		}
	}
	return true
}

// RingsIntersect reports whether the travel from prev to cur folds the
// ring surface back on itself: any vertex displacement with a backward
// component beyond threshold*radius against the centroid travel
// direction, or coincident centroids, counts as an intersection.
func RingsIntersect(prev, cur mesh.Ring, threshold, radius float64) bool {
	travel := cur.Centroid().Sub(prev.Centroid())
	if travel.Length() < 1e-9 {
		return true
	}
	dir := travel.Normalize()
	n := len(prev)
	if len(cur) < n {
		n = len(cur)
	}
	for i := 0; i < n; i++ {
		disp := cur[i].Sub(prev[i])
		if disp.Dot(dir) < -threshold*radius {
			return true
		}
	}
	return false
}

// Bloft is the self-intersection-safe loft for tightly curved paths. It
// samples the path adaptively (dense where it bends), drops degenerate
// rings, splits the sweep wherever consecutive rings fold into each
// other, and bridges the splits with convex-hull patches over the two
// offending rings. The pieces are combined with a boolean union; when
// the union backend is unavailable or fails they are concatenated
// instead and the resulting fragment is flagged Degraded, since the
// concatenated mesh may be non-manifold.
//
// Invalid profiles and paths without forward motion are no-ops.
func (s *State) Bloft(p profile.Profile, fn profile.Transform, path turtle.Path, steps int, threshold float64, opts ...Option) *State {
	if !p.IsValid() || path.TotalDist() <= 0 {
		return s
	}
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if fn == nil {
		fn = profile.Identity
	}
	if threshold <= 0 {
		threshold = DefaultIntersectThreshold
	}

	scan := ScanCurvature(path)
	n := steps
	if n < 1 {
		n = StepsFromResolution(scan, cfg.resolution)
	}
	poses := WalkAdaptive(s.Pose, path, n, p.Radius(), scan)

	st := chooseStamper(p)

	var pieces []*mesh.Fragment
	var run []section
	var prevOuter mesh.Ring
	skipped := 0
	bridges := 0

	flush := func(at turtle.Pose) {
		if len(run) < 2 {
			run = nil
			return
		}
		frag, err := st.build(run, true, at)
		if err != nil {
			cfg.logger.Warn("bloft: dropping unbuildable run", zap.Error(err))
		} else {
			pieces = append(pieces, frag)
		}
		run = nil
	}

	for i, pose := range poses {
		t := float64(i) / float64(len(poses)-1)
		q := fn(p, t)
		if q.Radius() < minRingRadius {
			skipped++
			continue
		}
		sec := st.stamp(q, pose)
		outer := st.outer(sec)

		if len(run) > 0 && sameRing(prevOuter, outer) {
			// The adaptive walker repeats a pose when a rotation event
			// spans several sample thresholds; identical rings carry no
			// geometry and must not read as folds.
			continue
		}
		if len(run) > 0 && RingsIntersect(prevOuter, outer, threshold, outer.Radius()) {
			last := run[len(run)-1]
			flush(pose)

			pts := make([]v3.Vec, 0, len(last.Outer)+len(outer))
			pts = append(pts, last.Outer...)
			pts = append(pts, outer...)
			patch, err := hull.ConvexHull(pts)
			if err != nil {
				cfg.logger.Warn("bloft: hull bridge failed", zap.Error(err))
			} else {
				patch.CreationPose = pose
				pieces = append(pieces, patch)
				bridges++
			}
			run = []section{sec}
			prevOuter = outer
			continue
		}
		run = append(run, sec)
		prevOuter = outer
	}
	flush(poses[len(poses)-1])

	if skipped > 0 {
		cfg.logger.Debug("bloft: skipped degenerate rings", zap.Int("count", skipped))
	}
	if bridges > 0 {
		cfg.logger.Debug("bloft: inserted hull bridges", zap.Int("count", bridges))
	}
	if len(pieces) == 0 {
		return s
	}

	combined := pieces[0]
	if len(pieces) > 1 {
		var err error
		combined, err = boolean.Union(pieces)
		if err != nil {
			cfg.logger.Warn("bloft: boolean union failed, concatenating fragments",
				zap.Error(err), zap.Int("fragments", len(pieces)))
			combined = mesh.Concat(pieces)
		}
	}
	combined.Material = cfg.material
	combined.CreationPose = s.Pose

	ns := s.clone()
	ns.Pose = path.Run(s.Pose)
	ns.Fragments = append(ns.Fragments, combined)
	return ns
}
