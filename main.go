package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/fractured/pkg/engine"
	"github.com/chazu/fractured/pkg/network"
	"github.com/tdewolff/argp"
)

// Process reads a network description and writes the mesh-ready result as
// JSON.
type Process struct {
	Tol      float64 `short:"t" desc:"Geometric tolerance, overrides the input"`
	Coplanar string  `short:"c" desc:"Overlapping coplanar fractures: error or ignore"`
	Scenario string  `short:"s" desc:"Process a built-in reference network instead of a file"`
	Graph    bool    `short:"g" desc:"Include the mesh graph in the output"`
	Mesh     bool    `short:"m" desc:"Include a triangulated preview of each fracture"`
	Verbose  bool    `short:"v" desc:"Report progress on stderr"`
	Output   string  `short:"o" desc:"Output file, stdout if empty"`
	Input    string  `index:"0" desc:"Network description (.frac script or .yaml)"`
}

// Scenarios runs every built-in reference network and reports its counts.
type Scenarios struct {
	Verbose bool `short:"v" desc:"Report progress on stderr"`
}

// Plane preprocesses a 2D network of line fractures read from YAML.
type Plane struct {
	Tol     float64 `short:"t" desc:"Geometric tolerance, overrides the input"`
	Verbose bool    `short:"v" desc:"Report progress on stderr"`
	Output  string  `short:"o" desc:"Output file, stdout if empty"`
	Input   string  `index:"0" desc:"2D network description (.yaml)"`
}

func main() {
	root := argp.NewCmd(&Process{}, "Fracture network preprocessing for conforming meshes")
	root.AddCmd(&Scenarios{}, "scenarios", "Run the built-in reference networks")
	root.AddCmd(&Plane{}, "plane", "Preprocess a 2D network of line fractures")
	root.Parse()
	root.PrintHelp()
}

func newLogger(verbose bool) *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, "fractured: ", 0)
}

func (cmd *Process) Run() error {
	if cmd.Input == "" && cmd.Scenario == "" {
		return argp.ShowUsage
	}
	if cmd.Tol < 0 {
		return fmt.Errorf("tolerance must be positive")
	}
	if _, err := network.ParseCoplanarPolicy(cmd.Coplanar); err != nil {
		return err
	}

	opts := network.DefaultOptions()
	opts.Logger = newLogger(cmd.Verbose)
	app := NewApp(opts)
	app.IncludeGraph = cmd.Graph
	app.IncludeMeshes = cmd.Mesh
	app.Tolerance = cmd.Tol
	app.Coplanar = cmd.Coplanar

	result, err := cmd.evaluate(app)
	if err != nil {
		return err
	}

	if err := writeJSON(cmd.Output, result); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d errors, first: %s", len(result.Errors), result.Errors[0].Message)
	}
	return nil
}

// writeJSON writes v as indented JSON to the named file, or stdout for "" and
// "-".
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// evaluate picks the input by its source: a named scenario, a YAML file or a
// script.
func (cmd *Process) evaluate(app *App) (EvalResult, error) {
	if cmd.Scenario != "" {
		sc, ok := network.LookupScenario(cmd.Scenario)
		if !ok {
			return EvalResult{}, fmt.Errorf("unknown scenario %q", cmd.Scenario)
		}
		return app.EvaluateScene(sceneOf(sc)), nil
	}

	data, err := os.ReadFile(cmd.Input)
	if err != nil {
		return EvalResult{}, err
	}
	switch strings.ToLower(filepath.Ext(cmd.Input)) {
	case ".yaml", ".yml":
		s, err := engine.ParseYAML(data)
		if err != nil {
			return EvalResult{}, fmt.Errorf("%s: %w", cmd.Input, err)
		}
		return app.EvaluateScene(s), nil
	default:
		return app.Evaluate(string(data)), nil
	}
}

// sceneOf converts a reference network to a scene.
func sceneOf(sc network.Scenario) *engine.Scene {
	d := sc.Domain
	s := &engine.Scene{Domain: &d}
	for i, pts := range sc.Fractures {
		s.Fractures = append(s.Fractures, engine.FractureSpec{
			Name:     fmt.Sprintf("%s/%d", sc.Name, i),
			Vertices: pts,
		})
	}
	return s
}

func (cmd *Scenarios) Run() error {
	opts := network.DefaultOptions()
	opts.Logger = newLogger(cmd.Verbose)

	failed := 0
	for _, sc := range network.Scenarios() {
		t, err := sc.Run(opts)
		switch {
		case err != nil:
			failed++
			fmt.Printf("FAIL %-22s %v\n", sc.Name, err)
		default:
			c := t.Counts()
			fmt.Printf("ok   %-22s fractures=%d lines=%d points=%d\n", sc.Name, c.Fractures, c.Lines, c.Points)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(network.Scenarios()))
	}
	return nil
}

func (cmd *Plane) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}
	if cmd.Tol < 0 {
		return fmt.Errorf("tolerance must be positive")
	}
	data, err := os.ReadFile(cmd.Input)
	if err != nil {
		return err
	}
	s, err := engine.ParsePlaneYAML(data)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Input, err)
	}

	opts := network.DefaultOptions()
	opts.Logger = newLogger(cmd.Verbose)
	app := NewApp(opts)
	app.Tolerance = cmd.Tol

	result := app.EvaluatePlane(s)
	if err := writeJSON(cmd.Output, result); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%s", result.Errors[0].Message)
	}
	return nil
}
