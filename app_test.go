package main

import (
	"encoding/json"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/chazu/fractured/pkg/engine"
	"github.com/chazu/fractured/pkg/fracture"
	"github.com/chazu/fractured/pkg/network"
)

func requireOK(t *testing.T, result EvalResult) {
	t.Helper()
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if !result.OK() {
		t.Fatal("result has no topology")
	}
}

// TestE2EThreeIntersecting exercises the full pipeline: script, engine,
// network, mesh graph and result.
func TestE2EThreeIntersecting(t *testing.T) {
	app := NewApp(network.DefaultOptions())

	source, err := os.ReadFile("examples/three_intersecting.frac")
	if err != nil {
		t.Fatalf("failed to read three_intersecting.frac: %v", err)
	}

	result := app.Evaluate(string(source))
	requireOK(t, result)

	want := network.Counts{Domains: 1, Fractures: 3, Lines: 6, Points: 1}
	if *result.Counts != want {
		t.Fatalf("counts = %+v, want %+v", *result.Counts, want)
	}
	for i, name := range []string{"f1", "f2", "f3"} {
		if result.Fractures[i].Name != name {
			t.Errorf("fracture %d: name %q, want %q", i, result.Fractures[i].Name, name)
		}
		if len(result.Fractures[i].Lines) != 4 {
			t.Errorf("fracture %q carries %d lines, want 4", name, len(result.Fractures[i].Lines))
		}
	}
	for _, ln := range result.Lines {
		if len(ln.Points) != 1 || ln.Points[0] != 0 {
			t.Errorf("line %d: points %v, want [0]", ln.Index, ln.Points)
		}
	}
	p := result.Points[0]
	if math.Abs(p.Coord[0])+math.Abs(p.Coord[1])+math.Abs(p.Coord[2]) > 1e-9 {
		t.Errorf("junction at %v, want the origin", p.Coord)
	}
	if len(p.Lines) != 6 || len(p.Fractures) != 3 {
		t.Errorf("junction joins %d lines of %d fractures, want 6 of 3", len(p.Lines), len(p.Fractures))
	}
	if result.Graph != nil || result.Meshes != nil {
		t.Error("graph and meshes should be omitted unless requested")
	}
}

func TestE2EMeshes(t *testing.T) {
	app := NewApp(network.DefaultOptions())
	app.IncludeMeshes = true

	source, err := os.ReadFile("examples/boundary.frac")
	if err != nil {
		t.Fatal(err)
	}
	result := app.Evaluate(string(source))
	requireOK(t, result)

	if len(result.Meshes) != len(result.Fractures) {
		t.Fatalf("meshes = %d, fractures = %d", len(result.Meshes), len(result.Fractures))
	}
	for _, m := range result.Meshes {
		if m.Name != result.Fractures[m.Fracture].Name {
			t.Errorf("mesh %q belongs to fracture %q", m.Name, result.Fractures[m.Fracture].Name)
		}
		if m.TriangleCount() < 1 {
			t.Errorf("mesh %q has no triangles", m.Name)
		}
	}
}

func TestE2EBoundary(t *testing.T) {
	app := NewApp(network.DefaultOptions())

	source, err := os.ReadFile("examples/boundary.frac")
	if err != nil {
		t.Fatalf("failed to read boundary.frac: %v", err)
	}

	result := app.Evaluate(string(source))
	requireOK(t, result)

	want := network.Counts{Domains: 1, Fractures: 2, Lines: 1}
	if *result.Counts != want {
		t.Fatalf("counts = %+v, want %+v", *result.Counts, want)
	}
	west := result.Fractures[0]
	if west.Name != "west" || west.Input != 0 {
		t.Errorf("first survivor = %q (input %d), want west (0)", west.Name, west.Input)
	}
	for _, v := range west.Vertices {
		if v[0] < -network.DefaultOptions().Tolerance {
			t.Errorf("vertex %v left the domain", v)
		}
	}
	ln := result.Lines[0]
	if math.Abs(ln.P0[0]-0.25) > 1e-9 || math.Abs(ln.P1[0]-0.25) > 1e-9 {
		t.Errorf("line %v-%v, want x = 0.25", ln.P0, ln.P1)
	}
}

func TestE2EYAML(t *testing.T) {
	data, err := os.ReadFile("examples/two_intersecting.yaml")
	if err != nil {
		t.Fatal(err)
	}
	s, err := engine.ParseYAML(data)
	if err != nil {
		t.Fatal(err)
	}

	app := NewApp(network.DefaultOptions())
	result := app.EvaluateScene(s)
	requireOK(t, result)

	if result.Counts.Lines != 1 || result.Counts.Points != 0 {
		t.Errorf("counts = %+v", *result.Counts)
	}
	if got := result.Lines[0].Fractures; len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("line fractures = %v, want [0 1]", got)
	}
}

func TestE2EScenarios(t *testing.T) {
	app := NewApp(network.DefaultOptions())
	for _, sc := range network.Scenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			result := app.EvaluateScene(sceneOf(sc))
			requireOK(t, result)
			if *result.Counts != sc.Want {
				t.Errorf("counts = %+v, want %+v", *result.Counts, sc.Want)
			}
		})
	}
}

// TestE2EEmptySource reports the missing domain as an ordinary error.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp(network.DefaultOptions())
	result := app.Evaluate("")

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "no domain") {
		t.Errorf("errors = %v, want one missing domain error", result.Errors)
	}
	if result.OK() {
		t.Error("empty source should not produce a topology")
	}
}

func TestE2EDomainOnly(t *testing.T) {
	app := NewApp(network.DefaultOptions())
	result := app.Evaluate(`(domain (vec3 0 0 0) (vec3 1 1 1))`)
	requireOK(t, result)

	if *result.Counts != (network.Counts{Domains: 1}) {
		t.Errorf("counts = %+v", *result.Counts)
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp(network.DefaultOptions())
	result := app.Evaluate(`(fracture "test"`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if result.Counts != nil || len(result.Fractures) != 0 {
		t.Error("expected no topology on error")
	}
}

const coplanarSource = `
(domain (vec3 -2 -2 -2) (vec3 2 2 2))
(fracture "a" (rect :normal (vec3 0 0 1) :width 2 :height 2))
(fracture "b" (rect :center (vec3 0.5 0 0) :normal (vec3 0 0 1) :width 2 :height 2))
`

func TestE2ECoplanarOverlap(t *testing.T) {
	app := NewApp(network.DefaultOptions())
	result := app.Evaluate(coplanarSource)

	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one", result.Errors)
	}
	msg := result.Errors[0].Message
	if !strings.Contains(msg, "coplanar") || !strings.Contains(msg, "(a)") {
		t.Errorf("error %q should name the coplanar pair", msg)
	}
}

func TestE2ECoplanarIgnored(t *testing.T) {
	for name, app := range map[string]*App{
		"override": func() *App {
			a := NewApp(network.DefaultOptions())
			a.Coplanar = "ignore"
			return a
		}(),
		"options": NewApp(network.Options{Coplanar: network.CoplanarIgnore}),
	} {
		t.Run(name, func(t *testing.T) {
			result := app.Evaluate(coplanarSource)
			requireOK(t, result)
			if result.Counts.Lines != 0 {
				t.Errorf("lines = %d, want 0", result.Counts.Lines)
			}
		})
	}

	// The script's own setting also works.
	app := NewApp(network.DefaultOptions())
	requireOK(t, app.Evaluate(coplanarSource+"(coplanar :ignore)"))
}

func TestE2EToleranceOverride(t *testing.T) {
	source := `
(domain (vec3 -2 -2 -2) (vec3 2 2 2))
(tolerance 0.001)
(fracture (rect :normal (vec3 0 0 1) :width 1 :height 1))
`
	app := NewApp(network.DefaultOptions())
	result := app.Evaluate(source)
	requireOK(t, result)
	if result.Tolerance != 0.001 {
		t.Errorf("tolerance = %g, want the script's 0.001", result.Tolerance)
	}

	app.Tolerance = 0.01
	result = app.Evaluate(source)
	requireOK(t, result)
	if result.Tolerance != 0.01 {
		t.Errorf("tolerance = %g, want the override 0.01", result.Tolerance)
	}
}

func TestE2EWarnings(t *testing.T) {
	app := NewApp(network.DefaultOptions())
	result := app.Evaluate(`
(domain (vec3 0 0 0) (vec3 1 1 1))
(domain (vec3 -1 -1 -1) (vec3 1 1 1))
`)
	requireOK(t, result)
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "redefined") {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestE2EInvalidFracture(t *testing.T) {
	app := NewApp(network.DefaultOptions())
	result := app.Evaluate(`
(domain (vec3 -2 -2 -2) (vec3 2 2 2))
(fracture "bent" (vec3 0 0 0) (vec3 1 0 0) (vec3 1 1 0) (vec3 0 1 1))
`)
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, `"bent"`) {
		t.Errorf("errors = %v, want one naming the fracture", result.Errors)
	}
}

func TestE2EJSON(t *testing.T) {
	app := NewApp(network.DefaultOptions())
	app.IncludeGraph = true
	sc, _ := network.LookupScenario("single-isolated")
	result := app.EvaluateScene(sceneOf(sc))
	requireOK(t, result)

	b, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"counts", "domain", "fractures", "graph"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	// Empty collections are arrays, not null.
	for _, key := range []string{"lines", "points", "errors", "warnings"} {
		if string(decoded[key]) != "[]" {
			t.Errorf("%s = %s, want []", key, decoded[key])
		}
	}
	if !strings.Contains(string(decoded["domain"]), `"xmin":-2`) {
		t.Errorf("domain = %s", decoded["domain"])
	}
}

func TestE2EPlane(t *testing.T) {
	data, err := os.ReadFile("examples/plane_cross.yaml")
	if err != nil {
		t.Fatal(err)
	}
	s, err := engine.ParsePlaneYAML(data)
	if err != nil {
		t.Fatal(err)
	}

	result := NewApp(network.DefaultOptions()).EvaluatePlane(s)
	if len(result.Errors) > 0 {
		t.Fatalf("errors = %+v", result.Errors)
	}
	if len(result.Points) != 11 {
		t.Errorf("points = %v, want 11", result.Points)
	}
	kinds := map[string]int{}
	for _, e := range result.Edges {
		kinds[e.Kind]++
	}
	// The clipped fracture splits the left and right sides.
	if kinds["boundary"] != 6 || kinds["fracture"] != 5 {
		t.Errorf("edge kinds = %v, want 6 boundary and 5 fracture", kinds)
	}
	if len(result.Intersections) != 1 {
		t.Fatalf("intersections = %v, want one", result.Intersections)
	}
	if p := result.Points[result.Intersections[0]]; math.Abs(p[0]) > 1e-9 || math.Abs(p[1]) > 1e-9 {
		t.Errorf("intersection at %v, want the origin", p)
	}

	b, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"kind":"fracture"`) {
		t.Errorf("json = %s", b)
	}
}

func TestE2EPlaneBadEdge(t *testing.T) {
	s := &engine.PlaneScene{
		Domain: fracture.Rect{XMin: 0, XMax: 1, YMin: 0, YMax: 1},
		Points: nil,
		Edges:  [][2]int{{0, 1}},
	}
	result := NewApp(network.DefaultOptions()).EvaluatePlane(s)
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "missing point") {
		t.Errorf("errors = %+v", result.Errors)
	}
	if len(result.Edges) != 0 {
		t.Errorf("edges = %v, want none", result.Edges)
	}
}
