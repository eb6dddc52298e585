package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/fractured/pkg/fracture"
	"github.com/chazu/fractured/pkg/geom"
	"github.com/chazu/fractured/pkg/network"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords need not be registered as globals.
//
//  2. Kebab-case to underscore: full-incline -> full_incline. zygomys reads a
//     hyphen inside an identifier as the subtraction operator.
//
//  3. Line comments: ; and ;; become //.
//
// String literals are left untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipString(b, i)
			result = append(result, b[i:j]...)
			i = j
			continue

		case b[i] == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			result = append(result, b[i:j]...)
			i = j
			continue

		case b[i] == ';':
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

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, ':', '=')
			i += 2
			continue

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

// skipString returns the index just past the double-quoted literal at b[i].
func skipString(b []byte, i int) int {
	j := i + 1
	for j < len(b) && b[j] != '"' {
		if b[j] == '\\' && j+1 < len(b) {
			j += 2
			continue
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
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

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a point or direction.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPolygon is a vertex loop returned by polygon, rect and disc and
// consumed by fracture.
type sexpPolygon struct {
	pts []v3.Vec
}

func (p *sexpPolygon) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(polygon %d vertices)", len(p.pts))
}
func (p *sexpPolygon) Type() *zygo.RegisteredType { return nil }

// sexpFractureRef is the value of a fracture form: its position in the scene.
type sexpFractureRef struct {
	index int
	name  string
}

func (f *sexpFractureRef) SexpString(ps *zygo.PrintState) string {
	if f.name != "" {
		return fmt.Sprintf("(fracture %q)", f.name)
	}
	return fmt.Sprintf("(fracture %d)", f.index)
}
func (f *sexpFractureRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
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
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword is a flag.
			result.kw[name] = zygo.SexpNull
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

// toPositive extracts a number that must be greater than zero.
func toPositive(s zygo.Sexp) (float64, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if !(f > 0) {
		return 0, fmt.Errorf("expected a positive number, got %g", f)
	}
	return f, nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_ignore) and plain strings ("ignore").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toPoints flattens vectors, polygons and lists of them into one vertex list.
func toPoints(args []zygo.Sexp) ([]v3.Vec, error) {
	var pts []v3.Vec
	for _, a := range args {
		switch v := a.(type) {
		case *sexpVec3:
			pts = append(pts, v.vec)
		case *sexpPolygon:
			pts = append(pts, v.pts...)
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(v)
			if err != nil {
				return nil, err
			}
			inner, err := toPoints(items)
			if err != nil {
				return nil, err
			}
			pts = append(pts, inner...)
		default:
			return nil, fmt.Errorf("expected vec3 or polygon, got %T (%s)", a, a.SexpString(nil))
		}
	}
	return pts, nil
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

// planeFrame returns the plane through center with the given normal from
// the :center and :normal keywords.
func planeFrame(form string, pa kwArgs) (geom.Plane, error) {
	var center v3.Vec
	if v, ok := pa.kw["center"]; ok {
		c, err := toVec3(v)
		if err != nil {
			return geom.Plane{}, fmt.Errorf("%s: center: %w", form, err)
		}
		center = c
	}
	v, ok := pa.kw["normal"]
	if !ok {
		return geom.Plane{}, fmt.Errorf("%s requires :normal", form)
	}
	n, err := toVec3(v)
	if err != nil {
		return geom.Plane{}, fmt.Errorf("%s: normal: %w", form, err)
	}
	if n.Length() == 0 {
		return geom.Plane{}, fmt.Errorf("%s: normal is the zero vector", form)
	}
	return geom.NewPlane(n, center), nil
}

// rotation reads the optional :angle keyword, in degrees.
func rotation(form string, pa kwArgs) (sin, cos float64, err error) {
	v, ok := pa.kw["angle"]
	if !ok {
		return 0, 1, nil
	}
	deg, err := toFloat64(v)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: angle: %w", form, err)
	}
	sin, cos = math.Sincos(deg * math.Pi / 180)
	return sin, cos, nil
}

func rotate(q v2.Vec, sin, cos float64) v2.Vec {
	return v2.Vec{X: q.X*cos - q.Y*sin, Y: q.X*sin + q.Y*cos}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the network description builtins into a zygomys
// environment. The builtins record what they describe in s.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *Scene) {

	setDomain := func(d fracture.Domain) {
		if s.Domain != nil {
			s.Warnings = append(s.Warnings, EvalWarning{Message: "domain redefined; the last definition is used"})
		}
		s.Domain = &d
	}

	// -----------------------------------------------------------------------
	// (domain :xmin -2 :xmax 2 :ymin -2 :ymax 2 :zmin -2 :zmax 2)
	// (domain (vec3 -2 -2 -2) (vec3 2 2 2))
	// -----------------------------------------------------------------------
	env.AddFunction("domain", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var d fracture.Domain

		switch len(pa.positional) {
		case 2:
			c0, err := toVec3(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("domain: min corner: %w", err)
			}
			c1, err := toVec3(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("domain: max corner: %w", err)
			}
			d = fracture.Domain{XMin: c0.X, XMax: c1.X, YMin: c0.Y, YMax: c1.Y, ZMin: c0.Z, ZMax: c1.Z}
		case 0:
			bounds := []struct {
				key string
				dst *float64
			}{
				{"xmin", &d.XMin}, {"xmax", &d.XMax},
				{"ymin", &d.YMin}, {"ymax", &d.YMax},
				{"zmin", &d.ZMin}, {"zmax", &d.ZMax},
			}
			for _, b := range bounds {
				v, ok := pa.kw[b.key]
				if !ok {
					return zygo.SexpNull, fmt.Errorf("domain: missing :%s", b.key)
				}
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("domain: %s: %w", b.key, err)
				}
				*b.dst = f
			}
		default:
			return zygo.SexpNull, fmt.Errorf("domain: expected two corners or :xmin .. :zmax, got %d positional arguments", len(pa.positional))
		}

		if err := d.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("domain: %w", err)
		}
		setDomain(d)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (tolerance 0.0001)
	// -----------------------------------------------------------------------
	env.AddFunction("tolerance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("tolerance requires exactly 1 argument, got %d", len(args))
		}
		tol, err := toPositive(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tolerance: %w", err)
		}
		if s.Tolerance > 0 {
			s.Warnings = append(s.Warnings, EvalWarning{Message: "tolerance redefined; the last value is used"})
		}
		s.Tolerance = tol
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (coplanar :ignore)
	// -----------------------------------------------------------------------
	env.AddFunction("coplanar", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("coplanar requires exactly 1 argument, got %d", len(args))
		}
		kw, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("coplanar: %w", err)
		}
		p, err := network.ParseCoplanarPolicy(kw)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("coplanar: %w", err)
		}
		s.Coplanar = p.String()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon (vec3 ...) (vec3 ...) (vec3 ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		if len(pts) < 3 {
			return zygo.SexpNull, fmt.Errorf("polygon: need at least 3 vertices, got %d", len(pts))
		}
		return &sexpPolygon{pts: pts}, nil
	})

	// -----------------------------------------------------------------------
	// (rect :center (vec3 0 0 0) :normal (vec3 0 1 0) :width 2 :height 2 :angle 30)
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pl, err := planeFrame("rect", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		var size [2]float64
		for i, key := range []string{"width", "height"} {
			v, ok := pa.kw[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("rect requires :%s", key)
			}
			f, err := toPositive(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rect: %s: %w", key, err)
			}
			size[i] = f / 2
		}
		sin, cos, err := rotation("rect", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		hw, hh := size[0], size[1]
		corners := []v2.Vec{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
		pts := make([]v3.Vec, len(corners))
		for i, c := range corners {
			pts[i] = pl.Lift(rotate(c, sin, cos))
		}
		return &sexpPolygon{pts: pts}, nil
	})

	// -----------------------------------------------------------------------
	// (disc :center (vec3 0 0 0) :normal (vec3 0 0 1) :radius 1 :sides 16)
	// -----------------------------------------------------------------------
	env.AddFunction("disc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pl, err := planeFrame("disc", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		v, ok := pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("disc requires :radius")
		}
		r, err := toPositive(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("disc: radius: %w", err)
		}
		sides := 16
		if v, ok := pa.kw["sides"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("disc: sides: %w", err)
			}
			if f < 3 || f != math.Trunc(f) {
				return zygo.SexpNull, fmt.Errorf("disc: sides must be an integer of at least 3, got %g", f)
			}
			sides = int(f)
		}
		sin, cos, err := rotation("disc", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		pts := make([]v3.Vec, sides)
		for i := range pts {
			a := 2 * math.Pi * float64(i) / float64(sides)
			q := v2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
			pts[i] = pl.Lift(rotate(q, sin, cos))
		}
		return &sexpPolygon{pts: pts}, nil
	})

	// -----------------------------------------------------------------------
	// (fracture "name" (vec3 ...) (vec3 ...) (vec3 ...) ...)
	// (fracture "name" (rect ...))
	// (fracture (polygon ...))
	// -----------------------------------------------------------------------
	env.AddFunction("fracture", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("fracture requires vertices")
		}

		var fname string
		rest := args
		if str, ok := args[0].(*zygo.SexpStr); ok {
			if _, kw := isKW(str); !kw {
				fname = str.S
				rest = args[1:]
			}
		}
		label := fmt.Sprintf("fracture %d", len(s.Fractures))
		if fname != "" {
			label = fmt.Sprintf("fracture %q", fname)
		}

		pts, err := toPoints(rest)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		if len(pts) < 3 {
			return zygo.SexpNull, fmt.Errorf("%s: need at least 3 vertices, got %d", label, len(pts))
		}
		if s.Lookup(fname) >= 0 {
			return zygo.SexpNull, fmt.Errorf("%s: name already used", label)
		}

		s.Fractures = append(s.Fractures, FractureSpec{Name: fname, Vertices: pts})
		return &sexpFractureRef{index: len(s.Fractures) - 1, name: fname}, nil
	})

	// -----------------------------------------------------------------------
	// (scenario "three-intersecting")
	// -----------------------------------------------------------------------
	env.AddFunction("scenario", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("scenario requires a name argument")
		}
		sname, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scenario: name: %w", err)
		}
		sc, ok := network.LookupScenario(sname)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("scenario: unknown scenario %q", sname)
		}

		setDomain(sc.Domain)
		for i, pts := range sc.Fractures {
			fname := fmt.Sprintf("%s/%d", sc.Name, i)
			if s.Lookup(fname) >= 0 {
				return zygo.SexpNull, fmt.Errorf("scenario: fracture %q already defined", fname)
			}
			s.Fractures = append(s.Fractures, FractureSpec{
				Name:     fname,
				Vertices: append([]v3.Vec(nil), pts...),
			})
		}
		return zygo.SexpNull, nil
	})
}
