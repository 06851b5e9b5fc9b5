package engine

import (
	"fmt"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/loft/pkg/loft"
	"github.com/chazu/loft/pkg/mesh"
	"github.com/chazu/loft/pkg/profile"
	"github.com/chazu/loft/pkg/turtle"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms loft Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: set-heading -> set_heading
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpProfile wraps a cross-section profile.
type sexpProfile struct {
	p profile.Profile
}

func (p *sexpProfile) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(profile %d-pts %d-holes)", len(p.p.Outer), len(p.p.Holes))
}
func (p *sexpProfile) Type() *zygo.RegisteredType { return nil }

// sexpCmd wraps a single path command.
type sexpCmd struct {
	cmd turtle.Command
}

func (c *sexpCmd) SexpString(ps *zygo.PrintState) string {
	switch v := c.cmd.(type) {
	case turtle.Forward:
		return fmt.Sprintf("(forward %.3f)", v.Dist)
	case turtle.Rotate:
		return fmt.Sprintf("(%s %.3f)", v.Kind, v.Angle)
	}
	return "(command)"
}
func (c *sexpCmd) Type() *zygo.RegisteredType { return nil }

// sexpPath wraps an ordered command sequence.
type sexpPath struct {
	path turtle.Path
}

func (p *sexpPath) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(path %d-commands)", len(p.path))
}
func (p *sexpPath) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a 3D point for bezier control arguments.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_round) and plain strings ("round").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toProfile extracts a Profile from a sexpProfile.
func toProfile(s zygo.Sexp) (profile.Profile, error) {
	if p, ok := s.(*sexpProfile); ok {
		return p.p, nil
	}
	return profile.Profile{}, fmt.Errorf("expected profile, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a point from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toJoint converts a keyword or string to a JointStyle.
func toJoint(s zygo.Sexp) (loft.JointStyle, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected joint keyword (:flat, :round, :tapered): %w", err)
	}
	switch name {
	case "flat":
		return loft.JointFlat, nil
	case "round":
		return loft.JointRound, nil
	case "tapered":
		return loft.JointTapered, nil
	}
	return 0, fmt.Errorf("invalid joint %q, expected flat, round, or tapered", name)
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPointList converts a Lisp list of (x y) pairs to 2D points.
func toPointList(s zygo.Sexp) ([][2]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	pts := make([][2]float64, 0, len(items))
	for i, item := range items {
		pair, err := sexpListToSlice(item)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("point %d: expected (x y), got %d values", i, len(pair))
		}
		x, err := toFloat64(pair[0])
		if err != nil {
			return nil, fmt.Errorf("point %d: x: %w", i, err)
		}
		y, err := toFloat64(pair[1])
		if err != nil {
			return nil, fmt.Errorf("point %d: y: %w", i, err)
		}
		pts = append(pts, [2]float64{x, y})
	}
	return pts, nil
}

// flattenPath collects path commands from any mix of sexpCmd, sexpPath,
// and nested lists of either.
func flattenPath(args []zygo.Sexp) (turtle.Path, error) {
	var path turtle.Path
	for i, a := range args {
		switch v := a.(type) {
		case *sexpCmd:
			path = append(path, v.cmd)
		case *sexpPath:
			path = append(path, v.path...)
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, fmt.Errorf("path element %d: %w", i, err)
			}
			sub, err := flattenPath(items)
			if err != nil {
				return nil, err
			}
			path = append(path, sub...)
		default:
			return nil, fmt.Errorf("path element %d: expected path command, got %T (%s)",
				i, a, a.SexpString(nil))
		}
	}
	return path, nil
}

// ---------------------------------------------------------------------------
// Builder state
// ---------------------------------------------------------------------------

// builderState carries the implicit loft state a script mutates. Scripts
// are imperative: loft calls advance one shared turtle and accumulate
// fragments on it.
type builderState struct {
	state  *loft.State
	logger *zap.Logger
	res    *mesh.Resolution
}

func newBuilderState(l *zap.Logger) *builderState {
	return &builderState{state: loft.NewState(), logger: l}
}

// loftOptions assembles the per-call options from keyword arguments,
// layering script-level resolution and the engine logger underneath.
func (bs *builderState) loftOptions(pa kwArgs, op string) ([]loft.Option, profile.Transform, error) {
	opts := []loft.Option{loft.WithLogger(bs.logger)}
	if bs.res != nil {
		opts = append(opts, loft.WithResolution(*bs.res))
	}
	fn := profile.Identity

	if v, ok := pa.kw["joint"]; ok {
		j, err := toJoint(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: joint: %w", op, err)
		}
		opts = append(opts, loft.WithJoint(j))
	}
	if v, ok := pa.kw["material"]; ok {
		m, err := toString(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: material: %w", op, err)
		}
		opts = append(opts, loft.WithMaterial(m))
	}
	if v, ok := pa.kw["taper-to"]; ok {
		scale, err := toFloat64(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: taper-to: %w", op, err)
		}
		fn = profile.TaperTo(scale)
	}
	return opts, fn, nil
}

func (pa kwArgs) intOr(name string, def int) (int, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	return toInt(v)
}

func (pa kwArgs) floatOr(name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	return toFloat64(v)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the loft DSL builtins into a zygomys
// environment. The builtins operate on the shared builderState,
// accumulating mesh fragments as the script evaluates.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, bs *builderState) {

	// -----------------------------------------------------------------------
	// (circle 5) or (circle 5 :facets 32)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("circle requires a radius")
		}
		r, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: radius: %w", err)
		}
		facets, err := pa.intOr("facets", 16)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: facets: %w", err)
		}
		return &sexpProfile{p: profile.Circle(r, facets)}, nil
	})

	// -----------------------------------------------------------------------
	// (rect 4 2)
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rect requires width and height, got %d arguments", len(args))
		}
		w, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: width: %w", err)
		}
		h, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: height: %w", err)
		}
		return &sexpProfile{p: profile.Rect(w, h)}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon (list (list 0 0) (list 10 0) (list 5 8)) :smooth 1 :facets 4)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("polygon requires a point list")
		}
		pts, err := toPointList(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		if len(pts) < 3 {
			return zygo.SexpNull, fmt.Errorf("polygon requires at least 3 points, got %d", len(pts))
		}

		smooth, err := pa.floatOr("smooth", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: smooth: %w", err)
		}
		facets, err := pa.intOr("facets", 4)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: facets: %w", err)
		}

		poly := sdf.NewPolygon()
		for _, pt := range pts {
			v := poly.Add(pt[0], pt[1])
			if smooth > 0 {
				v.Smooth(smooth, facets)
			}
		}
		return &sexpProfile{p: profile.FromPolygon(poly)}, nil
	})

	// -----------------------------------------------------------------------
	// (hole prof (list (list x y) ...))
	// -----------------------------------------------------------------------
	env.AddFunction("hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("hole requires a profile and a point list")
		}
		p, err := toProfile(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hole: %w", err)
		}
		pts, err := toPointList(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hole: %w", err)
		}
		if len(pts) < 3 {
			return zygo.SexpNull, fmt.Errorf("hole requires at least 3 points, got %d", len(pts))
		}
		loop := make([]v2.Vec, 0, len(pts))
		for _, pt := range pts {
			loop = append(loop, v2.Vec{X: pt[0], Y: pt[1]})
		}
		return &sexpProfile{p: p.WithHole(loop)}, nil
	})

	// -----------------------------------------------------------------------
	// (centered prof)
	// -----------------------------------------------------------------------
	env.AddFunction("centered", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("centered requires a profile")
		}
		p, err := toProfile(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("centered: %w", err)
		}
		p.Centered = true
		return &sexpProfile{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// Path commands: (forward 10) (turn 90) (pitch -30) (roll 45)
	// (set-heading 180)
	// -----------------------------------------------------------------------
	env.AddFunction("forward", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("forward requires a distance")
		}
		d, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("forward: %w", err)
		}
		return &sexpCmd{cmd: turtle.Forward{Dist: d}}, nil
	})

	rotateCmd := func(op string, kind turtle.RotateKind) {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires an angle in degrees", op)
			}
			a, err := toFloat64(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpCmd{cmd: turtle.Rotate{Kind: kind, Angle: a}}, nil
		})
	}
	rotateCmd("turn", turtle.RotateHorizontal)
	rotateCmd("pitch", turtle.RotateVertical)
	rotateCmd("roll", turtle.RotateRoll)
	rotateCmd("set_heading", turtle.RotateSetHeading)

	// -----------------------------------------------------------------------
	// (path (forward 10) (turn 90) (forward 10))
	// -----------------------------------------------------------------------
	env.AddFunction("path", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := flattenPath(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path: %w", err)
		}
		return &sexpPath{path: p}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (bezier (vec3 ...) (vec3 ...) (vec3 ...) :steps 16)
	//
	// Samples a cubic bezier from the current turtle position and
	// returns it as a regular path. Control points are absolute.
	// -----------------------------------------------------------------------
	env.AddFunction("bezier", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("bezier requires 3 control points, got %d", len(pa.positional))
		}
		c1, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bezier: c1: %w", err)
		}
		c2, err := toVec3(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bezier: c2: %w", err)
		}
		p3, err := toVec3(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bezier: end: %w", err)
		}
		steps, err := pa.intOr("steps", 16)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bezier: steps: %w", err)
		}
		return &sexpPath{path: loft.BezierPath(bs.state.Pose, c1, c2, p3, steps)}, nil
	})

	// -----------------------------------------------------------------------
	// (resolution :mode :angle :value 15)
	//
	// Sets the default sampling resolution for subsequent loft calls.
	// -----------------------------------------------------------------------
	env.AddFunction("resolution", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		res := mesh.Default
		if v, ok := pa.kw["mode"]; ok {
			m, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("resolution: mode: %w", err)
			}
			switch m {
			case "count":
				res.Mode = mesh.ModeCount
			case "angle":
				res.Mode = mesh.ModeAngle
			case "length":
				res.Mode = mesh.ModeLength
			default:
				return zygo.SexpNull, fmt.Errorf("resolution: invalid mode %q, expected count, angle, or length", m)
			}
		}
		if v, ok := pa.kw["value"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("resolution: value: %w", err)
			}
			res.Value = f
		}
		bs.res = &res
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (loft prof (path ...) :steps 16 :joint :round :taper-to 0.5
	//       :material "steel")
	// -----------------------------------------------------------------------
	env.AddFunction("loft", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("loft requires a profile and a path")
		}
		p, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loft: %w", err)
		}
		path, err := flattenPath(pa.positional[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loft: %w", err)
		}
		steps, err := pa.intOr("steps", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loft: steps: %w", err)
		}
		opts, fn, err := bs.loftOptions(pa, "loft")
		if err != nil {
			return zygo.SexpNull, err
		}
		bs.state = bs.state.LoftPath(p, fn, path, steps, opts...)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (bloft prof (path ...) :steps 64 :threshold 0.1 :taper-to 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("bloft", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("bloft requires a profile and a path")
		}
		p, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bloft: %w", err)
		}
		path, err := flattenPath(pa.positional[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bloft: %w", err)
		}
		steps, err := pa.intOr("steps", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bloft: steps: %w", err)
		}
		threshold, err := pa.floatOr("threshold", loft.DefaultIntersectThreshold)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bloft: threshold: %w", err)
		}
		opts, fn, err := bs.loftOptions(pa, "bloft")
		if err != nil {
			return zygo.SexpNull, err
		}
		bs.state = bs.state.Bloft(p, fn, path, steps, threshold, opts...)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (stamp-loft prof :taper-to 0.5 :joint :round :material "steel")
	// (move (forward 10) (turn 90) ...)
	// (finalize-loft :steps 16)
	//
	// Incremental form: stamp-loft arms a loft at the current pose, move
	// records path commands, finalize-loft builds the mesh.
	// -----------------------------------------------------------------------
	env.AddFunction("stamp_loft", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("stamp-loft requires a profile")
		}
		p, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("stamp-loft: %w", err)
		}
		opts, fn, err := bs.loftOptions(pa, "stamp-loft")
		if err != nil {
			return zygo.SexpNull, err
		}
		bs.state = bs.state.StampLoft(p, fn, opts...)
		return zygo.SexpNull, nil
	})

	env.AddFunction("move", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		path, err := flattenPath(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: %w", err)
		}
		bs.state = bs.state.Move(path...)
		return zygo.SexpNull, nil
	})

	env.AddFunction("finalize_loft", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		steps := 0
		if len(pa.positional) > 0 {
			var err error
			steps, err = toInt(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("finalize-loft: steps: %w", err)
			}
		} else {
			var err error
			steps, err = pa.intOr("steps", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("finalize-loft: steps: %w", err)
			}
		}
		bs.state = bs.state.FinalizeLoft(steps)
		return zygo.SexpNull, nil
	})
}
