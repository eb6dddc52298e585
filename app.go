package main

import (
	"log"

	"github.com/chazu/fractured/pkg/engine"
	"github.com/chazu/fractured/pkg/fracture"
	"github.com/chazu/fractured/pkg/graph"
	"github.com/chazu/fractured/pkg/network"
	"github.com/chazu/fractured/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// App evaluates network descriptions and turns them into the mesh-ready
// result written by the command line tool.
type App struct {
	engine *engine.Engine
	opts   network.Options

	// IncludeGraph adds the content-addressed mesh graph to every result.
	IncludeGraph bool
	// IncludeMeshes adds a triangulated preview of every fracture.
	IncludeMeshes bool
	// Tolerance and Coplanar, when set, take precedence over the settings
	// of the evaluated scene.
	Tolerance float64
	Coplanar  string
}

// FractureData is a surviving fracture after clipping.
type FractureData struct {
	Index    int          `json:"index"`
	Input    int          `json:"input"`
	Name     string       `json:"name,omitempty"`
	Vertices [][3]float64 `json:"vertices"`
	Normal   [3]float64   `json:"normal"`
	Lines    []int        `json:"lines"`
}

// LineData is an intersection line after splitting at junctions.
type LineData struct {
	Index     int        `json:"index"`
	P0        [3]float64 `json:"p0"`
	P1        [3]float64 `json:"p1"`
	Fractures []int      `json:"fractures"`
	Points    []int      `json:"points"`
}

// PointData is a junction point.
type PointData struct {
	Index     int        `json:"index"`
	Coord     [3]float64 `json:"coord"`
	Lines     []int      `json:"lines"`
	Fractures []int      `json:"fractures"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation. On failure only Errors
// (and possibly Warnings) are filled.
type EvalResult struct {
	Counts    *network.Counts    `json:"counts,omitempty"`
	Tolerance float64            `json:"tolerance,omitempty"`
	Domain    *fracture.Domain   `json:"domain,omitempty"`
	Fractures []FractureData     `json:"fractures"`
	Lines     []LineData         `json:"lines"`
	Points    []PointData        `json:"points"`
	Graph     *graph.MeshGraph   `json:"graph,omitempty"`
	Meshes    []*tessellate.Mesh `json:"meshes,omitempty"`
	Errors    []EvalErrorData    `json:"errors"`
	Warnings  []EvalErrorData    `json:"warnings"`
}

// OK reports whether the evaluation produced a topology without errors.
func (r EvalResult) OK() bool { return len(r.Errors) == 0 && r.Counts != nil }

func newEvalResult() EvalResult {
	return EvalResult{
		Fractures: []FractureData{},
		Lines:     []LineData{},
		Points:    []PointData{},
		Errors:    []EvalErrorData{},
		Warnings:  []EvalErrorData{},
	}
}

func (r *EvalResult) fail(msg string) {
	r.Errors = append(r.Errors, EvalErrorData{Message: msg})
}

// NewApp creates an App whose networks use opts unless a scene overrides
// them.
func NewApp(opts network.Options) *App {
	return &App{
		engine: engine.NewEngine(),
		opts:   opts,
	}
}

// Evaluate takes script source and returns the processed network or the
// errors that prevented it.
func (a *App) Evaluate(source string) EvalResult {
	// Step 1: Evaluate the script into a scene.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result := newEvalResult()
		result.fail(err.Error())
		return result
	}

	// Step 2: Convert eval errors to the output format.
	if len(evalErrs) > 0 {
		result := newEvalResult()
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	return a.EvaluateScene(s)
}

// EvaluateScene processes a scene: clip, intersect, split, then build and
// validate the mesh graph, and triangulate the fractures if asked to.
func (a *App) EvaluateScene(s *engine.Scene) EvalResult {
	result := newEvalResult()
	for _, w := range s.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}

	sc := *s
	if a.Tolerance > 0 {
		sc.Tolerance = a.Tolerance
	}
	if a.Coplanar != "" {
		sc.Coplanar = a.Coplanar
	}
	n, err := sc.Network(a.opts)
	if err != nil {
		result.fail(err.Error())
		return result
	}
	topo, err := n.Process()
	if err != nil {
		log.Printf("Process error: %v", err)
		result.fail("processing failed: " + err.Error())
		return result
	}
	tol := n.Options().Tolerance

	g := graph.FromTopology(topo, tol)
	vr := graph.ValidateAll(g)
	for _, e := range vr.Errors {
		log.Printf("Validation error: %v", e)
		result.fail("validation: " + e.Error())
	}
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}
	if !vr.OK() {
		return result
	}

	if a.IncludeMeshes {
		meshes, err := tessellate.Tessellate(g)
		if err != nil {
			log.Printf("Tessellate error: %v", err)
			result.fail("tessellation failed: " + err.Error())
			return result
		}
		result.Meshes = meshes
	}

	counts := topo.Counts()
	result.Counts = &counts
	result.Tolerance = tol
	d := topo.Domain
	result.Domain = &d
	if a.IncludeGraph {
		result.Graph = g
	}

	for i, f := range topo.Fractures {
		result.Fractures = append(result.Fractures, FractureData{
			Index:    i,
			Input:    f.ID,
			Name:     f.Name,
			Vertices: lo.Map(f.Points(), func(p v3.Vec, _ int) [3]float64 { return triple(p) }),
			Normal:   triple(f.Normal()),
			Lines:    nonNil(topo.FractureLines[i]),
		})
	}
	for i, ln := range topo.Lines {
		result.Lines = append(result.Lines, LineData{
			Index:     i,
			P0:        triple(ln.P0),
			P1:        triple(ln.P1),
			Fractures: nonNil(ln.Fractures),
			Points:    nonNil(ln.Points),
		})
	}
	for i, p := range topo.Points {
		result.Points = append(result.Points, PointData{
			Index:     i,
			Coord:     triple(p.Coord),
			Lines:     nonNil(p.Lines),
			Fractures: nonNil(p.Fractures),
		})
	}

	return result
}

func triple(v v3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// nonNil keeps empty index lists as [] rather than null in JSON.
func nonNil(idx []int) []int {
	if idx == nil {
		return []int{}
	}
	return idx
}

// EdgeData is one edge of a processed 2D network.
type EdgeData struct {
	Index  int    `json:"index"`
	P0     int    `json:"p0"`
	P1     int    `json:"p1"`
	Kind   string `json:"kind"`
	Source int    `json:"source"`
}

// PlaneResult is the result of preprocessing a 2D network.
type PlaneResult struct {
	Domain        *fracture.Rect  `json:"domain,omitempty"`
	Tolerance     float64         `json:"tolerance,omitempty"`
	Points        [][2]float64    `json:"points"`
	Edges         []EdgeData      `json:"edges"`
	Intersections []int           `json:"intersections"`
	Errors        []EvalErrorData `json:"errors"`
}

// EvaluatePlane preprocesses a 2D network of line fractures.
func (a *App) EvaluatePlane(s *engine.PlaneScene) PlaneResult {
	result := PlaneResult{
		Points:        [][2]float64{},
		Edges:         []EdgeData{},
		Intersections: []int{},
		Errors:        []EvalErrorData{},
	}

	sc := *s
	if a.Tolerance > 0 {
		sc.Tolerance = a.Tolerance
	}
	topo, err := sc.Process(a.opts)
	if err != nil {
		log.Printf("Plane error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	d := topo.Domain
	result.Domain = &d
	result.Tolerance = a.opts.Tolerance
	if sc.Tolerance > 0 {
		result.Tolerance = sc.Tolerance
	}
	for _, p := range topo.Points {
		result.Points = append(result.Points, [2]float64{p.X, p.Y})
	}
	for i, e := range topo.Edges {
		result.Edges = append(result.Edges, EdgeData{
			Index:  i,
			P0:     e.P0,
			P1:     e.P1,
			Kind:   e.Kind.String(),
			Source: e.Source,
		})
	}
	result.Intersections = nonNil(topo.Intersections)
	return result
}
