package engine

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/chazu/fractured/pkg/fracture"
	"github.com/chazu/fractured/pkg/network"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(rect :width 2)`,
			expect: `(rect "__kw_width" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(domain :xmin -2 :xmax 2)`,
			expect: `(domain "__kw_xmin" -2 "__kw_xmax" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"say \":x\"" :y`,
			expect: `"say \":x\"" "__kw_y"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(scenario :full-incline)`,
			expect: `(scenario "__kw_full-incline")`,
		},
		{
			name:   "kebab-case symbol",
			input:  `(def west-face 1)`,
			expect: `(def west_face 1)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 -1 0 -0.7)`,
			expect: `(vec3 -1 0 -0.7)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :x`",
			expect: "`raw :x`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustEvaluate(t *testing.T, source string) *Scene {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil scene")
	}
	return s
}

func expectEvalError(t *testing.T, source, substr string) {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if s != nil {
		t.Error("expected nil scene on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatalf("expected an eval error containing %q", substr)
	}
	if !strings.Contains(evalErrs[0].Message, substr) {
		t.Errorf("eval error = %q, want containing %q", evalErrs[0].Message, substr)
	}
}

func near(a, b v3.Vec) bool {
	return a.Sub(b).Length() < 0.000001
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func TestDomainKeywords(t *testing.T) {
	s := mustEvaluate(t, `(domain :xmin -2 :xmax 2 :ymin -1 :ymax 1 :zmin 0 :zmax 3)`)
	want := fracture.Domain{XMin: -2, XMax: 2, YMin: -1, YMax: 1, ZMin: 0, ZMax: 3}
	if s.Domain == nil || *s.Domain != want {
		t.Errorf("domain = %+v, want %+v", s.Domain, want)
	}
	if len(s.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", s.Warnings)
	}
}

func TestDomainCorners(t *testing.T) {
	s := mustEvaluate(t, `
(domain (vec3 0 0 0) (vec3 1 1 1))
(domain (vec3 -2 -2 -2) (vec3 2 2 2))
`)
	want := fracture.Domain{XMin: -2, XMax: 2, YMin: -2, YMax: 2, ZMin: -2, ZMax: 2}
	if s.Domain == nil || *s.Domain != want {
		t.Errorf("domain = %+v, want %+v", s.Domain, want)
	}
	if len(s.Warnings) != 1 || !strings.Contains(s.Warnings[0].Message, "redefined") {
		t.Errorf("expected a redefinition warning, got %v", s.Warnings)
	}
}

func TestDomainErrors(t *testing.T) {
	expectEvalError(t, `(domain :xmin 0 :xmax 1 :ymin 0 :ymax 1 :zmin 0)`, "missing :zmax")
	expectEvalError(t, `(domain (vec3 0 0 0) (vec3 1 0 1))`, "y range")
	expectEvalError(t, `(domain (vec3 0 0 0))`, "two corners")
}

func TestToleranceAndCoplanar(t *testing.T) {
	s := mustEvaluate(t, `
(tolerance 0.0001)
(coplanar :ignore)
`)
	if s.Tolerance != 0.0001 {
		t.Errorf("tolerance = %g, want 0.0001", s.Tolerance)
	}
	if s.Coplanar != "ignore" {
		t.Errorf("coplanar = %q, want ignore", s.Coplanar)
	}

	opts, err := s.Options(network.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if opts.Tolerance != 0.0001 || opts.Coplanar != network.CoplanarIgnore {
		t.Errorf("options = %+v", opts)
	}

	expectEvalError(t, `(tolerance 0)`, "positive")
	expectEvalError(t, `(coplanar :merge)`, "unknown coplanar policy")
}

// ---------------------------------------------------------------------------
// Shapes
// ---------------------------------------------------------------------------

func TestFractureVertices(t *testing.T) {
	s := mustEvaluate(t, `(fracture "f2" (vec3 0 -1 -0.7) (vec3 0 1 -0.7) (vec3 0 1 0.8) (vec3 0 -1 0.8))`)
	if len(s.Fractures) != 1 {
		t.Fatalf("expected 1 fracture, got %d", len(s.Fractures))
	}
	f := s.Fractures[0]
	if f.Name != "f2" {
		t.Errorf("name = %q, want f2", f.Name)
	}
	if len(f.Vertices) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(f.Vertices))
	}
	if f.Vertices[2] != (v3.Vec{X: 0, Y: 1, Z: 0.8}) {
		t.Errorf("vertex 2 = %v", f.Vertices[2])
	}
}

func TestFractureFromList(t *testing.T) {
	s := mustEvaluate(t, `
(def pts (list (vec3 0 0 0) (vec3 1 0 0) (vec3 1 1 0)))
(fracture pts)
(fracture (polygon (vec3 0 0 1) (vec3 1 0 1) (vec3 1 1 1)))
`)
	if len(s.Fractures) != 2 {
		t.Fatalf("expected 2 fractures, got %d", len(s.Fractures))
	}
	for i, f := range s.Fractures {
		if f.Name != "" {
			t.Errorf("fracture %d: expected no name, got %q", i, f.Name)
		}
		if len(f.Vertices) != 3 {
			t.Errorf("fracture %d: expected 3 vertices, got %d", i, len(f.Vertices))
		}
	}
}

func TestFractureErrors(t *testing.T) {
	expectEvalError(t, `(fracture "a" (vec3 0 0 0) (vec3 1 0 0))`, "at least 3 vertices")
	expectEvalError(t, `(fracture "a" 1 2 3)`, "expected vec3 or polygon")
	expectEvalError(t, `
(fracture "a" (rect :normal (vec3 0 0 1) :width 1 :height 1))
(fracture "a" (rect :normal (vec3 0 1 0) :width 1 :height 1))
`, "name already used")
}

func TestRect(t *testing.T) {
	s := mustEvaluate(t, `(fracture "f1" (rect :normal (vec3 0 1 0) :width 2 :height 2))`)
	got := s.Fractures[0].Vertices
	want := []v3.Vec{{X: -1, Z: 1}, {X: 1, Z: 1}, {X: 1, Z: -1}, {X: -1, Z: -1}}
	if len(got) != len(want) {
		t.Fatalf("expected %d vertices, got %d", len(want), len(got))
	}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Errorf("vertex %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRectRotatedAndOffset(t *testing.T) {
	s := mustEvaluate(t, `(fracture (rect :center (vec3 1 2 3) :normal (vec3 0 0 2) :width 2 :height 2 :angle 45))`)
	got := s.Fractures[0].Vertices
	r := math.Sqrt2
	for i, p := range got {
		if math.Abs(p.Z-3) > 0.000001 {
			t.Errorf("vertex %d left the plane z=3: %v", i, p)
		}
		if d := p.Sub(v3.Vec{X: 1, Y: 2, Z: 3}).Length(); math.Abs(d-r) > 0.000001 {
			t.Errorf("vertex %d at distance %g from the center, want %g", i, d, r)
		}
	}
	// A square turned by 45 degrees has its corners on the axes.
	if !near(got[0], v3.Vec{X: 1, Y: 2 - r, Z: 3}) {
		t.Errorf("vertex 0 = %v", got[0])
	}
}

func TestRectErrors(t *testing.T) {
	expectEvalError(t, `(rect :width 1 :height 1)`, "requires :normal")
	expectEvalError(t, `(rect :normal (vec3 0 0 0) :width 1 :height 1)`, "zero vector")
	expectEvalError(t, `(rect :normal (vec3 0 0 1) :width 1)`, "requires :height")
	expectEvalError(t, `(rect :normal (vec3 0 0 1) :width -1 :height 1)`, "positive")
}

func TestDisc(t *testing.T) {
	s := mustEvaluate(t, `(fracture "d" (disc :normal (vec3 1 0 0) :radius 2 :sides 6))`)
	got := s.Fractures[0].Vertices
	if len(got) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(got))
	}
	for i, p := range got {
		if math.Abs(p.X) > 0.000001 {
			t.Errorf("vertex %d left the plane x=0: %v", i, p)
		}
		if math.Abs(p.Length()-2) > 0.000001 {
			t.Errorf("vertex %d at radius %g, want 2", i, p.Length())
		}
	}

	s = mustEvaluate(t, `(fracture (disc :normal (vec3 0 0 1) :radius 1))`)
	if n := len(s.Fractures[0].Vertices); n != 16 {
		t.Errorf("default sides = %d, want 16", n)
	}

	expectEvalError(t, `(disc :normal (vec3 0 0 1) :radius 1 :sides 2)`, "at least 3")
	expectEvalError(t, `(disc :normal (vec3 0 0 1))`, "requires :radius")
}

// ---------------------------------------------------------------------------
// Scenes to networks
// ---------------------------------------------------------------------------

func TestSceneTwoIntersecting(t *testing.T) {
	s := mustEvaluate(t, `
;; two fractures crossing along the z axis
(domain :xmin -2 :xmax 2 :ymin -2 :ymax 2 :zmin -2 :zmax 2)
(fracture "f1" (rect :normal (vec3 0 1 0) :width 2 :height 2))
(fracture "f2" (vec3 0 -1 -0.7) (vec3 0 1 -0.7) (vec3 0 1 0.8) (vec3 0 -1 0.8))
`)
	n, err := s.Network(network.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	topo, err := n.Process()
	if err != nil {
		t.Fatal(err)
	}
	want := network.Counts{Domains: 1, Fractures: 2, Lines: 1}
	if got := topo.Counts(); got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}
	if topo.Fractures[0].Name != "f1" || topo.Fractures[1].Name != "f2" {
		t.Errorf("names = %q, %q", topo.Fractures[0].Name, topo.Fractures[1].Name)
	}
}

func TestSceneScenario(t *testing.T) {
	s := mustEvaluate(t, `(scenario :three-intersecting)`)
	if len(s.Fractures) != 3 {
		t.Fatalf("expected 3 fractures, got %d", len(s.Fractures))
	}
	if s.Fractures[1].Name != "three-intersecting/1" {
		t.Errorf("name = %q", s.Fractures[1].Name)
	}
	n, err := s.Network(network.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	topo, err := n.Process()
	if err != nil {
		t.Fatal(err)
	}
	want := network.Counts{Domains: 1, Fractures: 3, Lines: 6, Points: 1}
	if got := topo.Counts(); got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}

	expectEvalError(t, `(scenario "nope")`, "unknown scenario")
	expectEvalError(t, `(scenario "single-isolated") (scenario "single-isolated")`, "already defined")
}

func TestSceneNoDomain(t *testing.T) {
	s := mustEvaluate(t, `(fracture (rect :normal (vec3 0 0 1) :width 1 :height 1))`)
	if _, err := s.Network(network.DefaultOptions()); !errors.Is(err, ErrNoDomain) {
		t.Errorf("expected ErrNoDomain, got %v", err)
	}
}

func TestSceneInvalidFracture(t *testing.T) {
	s := mustEvaluate(t, `
(domain (vec3 -2 -2 -2) (vec3 2 2 2))
(fracture "ok" (rect :normal (vec3 0 0 1) :width 1 :height 1))
(fracture "line" (vec3 0 0 0) (vec3 1 0 0) (vec3 2 0 0))
`)
	_, err := s.Network(network.DefaultOptions())
	if !errors.Is(err, fracture.ErrInvalidFracture) {
		t.Fatalf("expected ErrInvalidFracture, got %v", err)
	}
	var ife *fracture.InvalidFractureError
	if !errors.As(err, &ife) {
		t.Fatalf("expected *InvalidFractureError, got %T", err)
	}
	if ife.Index != 1 || ife.Name != "line" {
		t.Errorf("error names fracture %d %q, want 1 \"line\"", ife.Index, ife.Name)
	}
}

// ---------------------------------------------------------------------------
// YAML scenes
// ---------------------------------------------------------------------------

func TestParseYAML(t *testing.T) {
	s, err := ParseYAML([]byte(`
domain: {xmin: -2, xmax: 2, ymin: -2, ymax: 2, zmin: -2, zmax: 2}
tolerance: 0.0001
coplanar: ignore
fractures:
  - name: f1
    vertices: [[-1, 0, -1], [1, 0, -1], [1, 0, 1], [-1, 0, 1]]
  - vertices:
      - [0, -1, -0.7]
      - [0, 1, -0.7]
      - [0, 1, 0.8]
      - [0, -1, 0.8]
`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Domain == nil || s.Domain.XMin != -2 || s.Domain.ZMax != 2 {
		t.Errorf("domain = %+v", s.Domain)
	}
	if s.Tolerance != 0.0001 || s.Coplanar != "ignore" {
		t.Errorf("settings = %g %q", s.Tolerance, s.Coplanar)
	}
	if len(s.Fractures) != 2 || s.Fractures[0].Name != "f1" || s.Fractures[1].Name != "" {
		t.Fatalf("fractures = %+v", s.Fractures)
	}
	if s.Fractures[1].Vertices[3] != (v3.Vec{X: 0, Y: -1, Z: 0.8}) {
		t.Errorf("vertex = %v", s.Fractures[1].Vertices[3])
	}

	n, err := s.Network(network.Options{})
	if err != nil {
		t.Fatal(err)
	}
	topo, err := n.Process()
	if err != nil {
		t.Fatal(err)
	}
	if topo.Counts().Lines != 1 {
		t.Errorf("lines = %d, want 1", topo.Counts().Lines)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"unknown key", "domian: {}", "domian"},
		{"bad domain", "domain: {xmin: 1, xmax: 0, ymin: 0, ymax: 1, zmin: 0, zmax: 1}", "x range"},
		{"bad policy", "coplanar: merge", "unknown coplanar policy"},
		{"short vertex", "fractures: [{vertices: [[0, 0], [1, 0, 0], [1, 1, 0]]}]", "2 coordinates"},
		{"duplicate", "fractures: [{name: a, vertices: []}, {name: a, vertices: []}]", "duplicate name"},
		{"negative tolerance", "tolerance: -1", "negative tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}
