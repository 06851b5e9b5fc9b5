package loft

import (
	"math"

	"github.com/chazu/loft/pkg/mesh"
	"github.com/chazu/loft/pkg/profile"
	"github.com/chazu/loft/pkg/turtle"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// JointStyle selects how runs are bridged across hard corners.
type JointStyle int

const (
	// JointFlat connects the two bounding rings directly. Cheapest, and
	// may self-intersect on sharp turns.
	JointFlat JointStyle = iota
	// JointRound inserts rings along a circular arc around the corner.
	JointRound
	// JointTapered inserts miter-pinched blend rings.
	JointTapered
)

func (j JointStyle) String() string {
	switch j {
	case JointFlat:
		return "flat"
	case JointRound:
		return "round"
	case JointTapered:
		return "tapered"
	default:
		return "unknown"
	}
}

// config carries the per-call options.
type config struct {
	joint      JointStyle
	material   string
	resolution mesh.Resolution
	logger     *zap.Logger
}

func defaultConfig() config {
	return config{
		joint:      JointFlat,
		resolution: mesh.Default,
		logger:     zap.NewNop(),
	}
}

// Option customizes one loft call.
type Option func(*config)

// WithJoint selects the corner joint style.
func WithJoint(j JointStyle) Option {
	return func(c *config) { c.joint = j }
}

// WithMaterial tags the produced fragments with a material name.
func WithMaterial(m string) Option {
	return func(c *config) { c.material = m }
}

// WithResolution overrides the global sampling policy.
func WithResolution(r mesh.Resolution) Option {
	return func(c *config) { c.resolution = r }
}

// WithLogger attaches a diagnostics logger. The default discards
// everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// session is an open incremental recording bracket.
type session struct {
	prof      profile.Profile
	fn        profile.Transform
	cfg       config
	startPose turtle.Pose
	cmds      turtle.Path
}

// State is the caller-owned loft state: a turtle pose plus the mesh
// fragments accumulated so far. Operations never mutate their receiver;
// they return a new state (or the receiver itself for rejected input,
// which is the canonical no-op signal).
type State struct {
	Pose      turtle.Pose
	Fragments []*mesh.Fragment

	rec *session
}

// NewState returns a state at the canonical start pose with no
// fragments.
func NewState() *State {
	return &State{Pose: turtle.NewPose()}
}

func (s *State) clone() *State {
	ns := &State{Pose: s.Pose, rec: s.rec}
	ns.Fragments = make([]*mesh.Fragment, len(s.Fragments))
	copy(ns.Fragments, s.Fragments)
	if s.rec != nil {
		rec := *s.rec
		rec.cmds = make(turtle.Path, len(s.rec.cmds))
		copy(rec.cmds, s.rec.cmds)
		ns.rec = &rec
	}
	return ns
}

// StampLoft opens an incremental recording session: the profile and
// transform are attached to the evolving pose, and subsequent Move
// commands accumulate until FinalizeLoft. An invalid profile is a no-op.
func (s *State) StampLoft(p profile.Profile, fn profile.Transform, opts ...Option) *State {
	if !p.IsValid() {
		return s
	}
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	ns := s.clone()
	ns.rec = &session{prof: p, fn: fn, cfg: cfg, startPose: s.Pose}
	return ns
}

// Move applies movement commands to the pose. Inside a recording session
// the commands are also captured for the final loft.
func (s *State) Move(cmds ...turtle.Command) *State {
	if len(cmds) == 0 {
		return s
	}
	ns := s.clone()
	for _, c := range cmds {
		ns.Pose = ns.Pose.Apply(c)
	}
	if ns.rec != nil {
		ns.rec.cmds = append(ns.rec.cmds, cmds...)
	}
	return ns
}

// FinalizeLoft closes the recording session and appends the resulting
// fragments. Without an open session it is a no-op.
func (s *State) FinalizeLoft(steps int) *State {
	if s.rec == nil {
		return s
	}
	rec := s.rec
	frags := runLoft(rec.startPose, rec.prof, rec.fn, rec.cmds, steps, rec.cfg)
	ns := s.clone()
	ns.rec = nil
	ns.Fragments = append(ns.Fragments, frags...)
	return ns
}

// LoftPath sweeps the profile along an explicit path from the current
// pose, appending the resulting fragments and advancing the pose to the
// path end. Invalid profiles and paths without forward motion are
// no-ops.
func (s *State) LoftPath(p profile.Profile, fn profile.Transform, path turtle.Path, steps int, opts ...Option) *State {
	if !p.IsValid() || path.TotalDist() <= 0 {
		return s
	}
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	frags := runLoft(s.Pose, p, fn, path, steps, cfg)
	ns := s.clone()
	ns.Pose = path.Run(s.Pose)
	ns.Fragments = append(ns.Fragments, frags...)
	return ns
}

// minCornerSteps is the minimum sample count for a segment ending in a
// hard corner; plain segments get at least one sample.
const minCornerSteps = 4

// runLoft is the segment-by-segment driver shared by the incremental and
// declarative entry points.
func runLoft(start turtle.Pose, prof profile.Profile, fn profile.Transform, path turtle.Path, steps int, cfg config) []*mesh.Fragment {
	if fn == nil {
		fn = profile.Identity
	}
	lead, segs := AnalyzePath(path)

	pose := start
	for _, r := range lead {
		pose = pose.ApplyRotation(r)
	}

	// Build the raw orientation track: one waypoint at the start, one at
	// each segment end, and a second frame-only waypoint after each hard
	// corner's rotations.
	wps := []Waypoint{poseWaypoint(pose, 0)}
	var corners []Corner
	var cornerPos []v3.Vec
	type bounds struct{ start, end int }
	segBounds := make([]bounds, len(segs))

	var dist float64
	for i, seg := range segs {
		startIdx := len(wps) - 1
		pose = pose.Forward(seg.Dist)
		dist += seg.Dist
		wps = append(wps, poseWaypoint(pose, dist))
		segBounds[i] = bounds{start: startIdx, end: len(wps) - 1}

		old := pose.Heading
		for _, r := range seg.Trailing {
			pose = pose.ApplyRotation(r)
		}
		if seg.HardCorner {
			corners = append(corners, Corner{OldHeading: old, NewHeading: pose.Heading, Dist: dist})
			cornerPos = append(cornerPos, pose.Position)
			wps = append(wps, poseWaypoint(pose, dist))
		}
	}
	totalDist := dist
	if totalDist <= 0 {
		return nil
	}

	if steps < 1 {
		var turn float64
		for _, c := range corners {
			turn += c.Angle() * 180 / math.Pi
		}
		steps = cfg.resolution.Steps(turn, totalDist)
	}

	r0 := fn(prof, 0).Radius()
	wps, totalCorrected := ProcessCorners(wps, corners, r0, totalDist)

	st := chooseStamper(prof)
	stampAt := func(d float64, wp Waypoint) section {
		t := 0.0
		if totalCorrected > 0 {
			t = clamp(d/totalCorrected, 0, 1)
		}
		return st.stamp(fn(prof, t), wp.Pose())
	}

	var frags []*mesh.Fragment
	flush := func(run []section, caps bool, at turtle.Pose) {
		if len(run) < 2 {
			return
		}
		frag, err := st.build(run, caps, at)
		if err != nil {
			cfg.logger.Warn("loft: dropping unbuildable run", zap.Error(err))
			return
		}
		frag.Material = cfg.material
		frags = append(frags, frag)
	}

	capsOK := len(corners) == 0
	run := []section{stampAt(0, wps[0])}
	cornerIdx := 0

	for i, seg := range segs {
		n := int(math.Round(float64(steps) * seg.Dist / totalDist))
		floor := 1
		if seg.HardCorner {
			floor = minCornerSteps
		}
		if n < floor {
			n = floor
		}

		startD := wps[segBounds[i].start].Dist
		endWp := wps[segBounds[i].end]
		for j := 1; j <= n; j++ {
			d := startD + (endWp.Dist-startD)*float64(j)/float64(n)
			if j == n {
				// The exact segment end uses the corrected end waypoint
				// directly, keeping the pre-corner frame.
				run = append(run, stampAt(d, endWp))
				continue
			}
			run = append(run, stampAt(d, FindAtDist(wps, d, totalCorrected)))
		}

		if !seg.HardCorner {
			continue
		}

		// Flush the incoming run (no caps: corner cuts are internal),
		// bridge across the corner, and open the outgoing run.
		endSec := run[len(run)-1]
		flush(run, false, endWp.Pose())

		postWp := wps[segBounds[i].end+1]
		startSec := stampAt(postWp.Dist, postWp)

		c := corners[cornerIdx]
		pivot := cornerPos[cornerIdx]
		cornerIdx++

		bridge := []section{endSec}
		bridge = append(bridge, bridgeSections(st, endSec, startSec, c, pivot, cfg)...)
		bridge = append(bridge, startSec)
		flush(bridge, false, postWp.Pose())

		run = []section{startSec}
	}

	flush(run, capsOK, wps[len(wps)-1].Pose())
	return frags
}

// bridgeSections yields the interior rings of a corner bridge for the
// configured joint style.
func bridgeSections(st stamper, end, start section, c Corner, pivot v3.Vec, cfg config) []section {
	angle := c.Angle()
	switch cfg.joint {
	case JointRound:
		radius := st.outer(end).Radius()
		n := cfg.resolution.Steps(angle*180/math.Pi, angle*radius)
		outs := mesh.RoundCornerRings(st.outer(end), pivot, c.OldHeading, c.NewHeading, n)
		return zipBridge(end, outs, func(hole mesh.Ring) []mesh.Ring {
			return mesh.RoundCornerRings(hole, pivot, c.OldHeading, c.NewHeading, n)
		})
	case JointTapered:
		if len(end.Holes) != len(start.Holes) {
			return nil
		}
		radius := st.outer(end).Radius()
		n := cfg.resolution.Steps(angle*180/math.Pi, angle*radius)
		outs := mesh.TaperedCornerRings(end.Outer, start.Outer, angle, n)
		holeIdx := -1
		return zipBridge(end, outs, func(hole mesh.Ring) []mesh.Ring {
			holeIdx++
			return mesh.TaperedCornerRings(hole, start.Holes[holeIdx], angle, n)
		})
	default:
		return nil
	}
}

// zipBridge pairs the generated outer rings with per-hole generated
// rings into sections.
func zipBridge(end section, outs []mesh.Ring, holeGen func(mesh.Ring) []mesh.Ring) []section {
	if len(outs) == 0 {
		return nil
	}
	holeMids := make([][]mesh.Ring, len(end.Holes))
	for h, hole := range end.Holes {
		holeMids[h] = holeGen(hole)
		if len(holeMids[h]) != len(outs) {
			// Hole generation disagreed with the outer ring count; a
			// flat bridge is better than a torn one.
			return nil
		}
	}
	secs := make([]section, len(outs))
	for i, out := range outs {
		sec := section{Outer: out}
		for h := range holeMids {
			sec.Holes = append(sec.Holes, holeMids[h][i])
		}
		secs[i] = sec
	}
	return secs
}

func poseWaypoint(p turtle.Pose, dist float64) Waypoint {
	return Waypoint{Position: p.Position, Heading: p.Heading, Up: p.Up, Dist: dist}
}
