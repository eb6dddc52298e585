package network

import (
	"fmt"

	"github.com/chazu/fractured/pkg/fracture"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Scenario is a reference network with known entity counts.
type Scenario struct {
	Name      string
	Domain    fracture.Domain
	Fractures [][]v3.Vec
	Want      Counts
}

// Build returns an unprocessed network for the scenario.
func (s Scenario) Build(opts Options) (*Network, error) {
	return FromVertices(s.Fractures, s.Domain, opts)
}

// Run processes the scenario and compares the counts with Want.
func (s Scenario) Run(opts Options) (*Topology, error) {
	n, err := s.Build(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	t, err := n.Process()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	if got := t.Counts(); got != s.Want {
		return t, fmt.Errorf("%s: got %+v, want %+v", s.Name, got, s.Want)
	}
	return t, nil
}

// xyz builds the vertices (x[i], y[i], z[i]).
func xyz(x, y, z []float64) []v3.Vec {
	pts := make([]v3.Vec, len(x))
	for i := range pts {
		pts[i] = v3.Vec{X: x[i], Y: y[i], Z: z[i]}
	}
	return pts
}

var (
	cube2 = fracture.Domain{XMin: -2, XMax: 2, YMin: -2, YMax: 2, ZMin: -2, ZMax: 2}
	unit  = fracture.Domain{XMin: 0, XMax: 1, YMin: 0, YMax: 1, ZMin: 0, ZMax: 1}

	horizontalXZ = xyz([]float64{-1, 1, 1, -1}, []float64{0, 0, 0, 0}, []float64{-1, -1, 1, 1})
	verticalYZ   = xyz([]float64{0, 0, 0, 0}, []float64{-1, 1, 1, -1}, []float64{-0.7, -0.7, 0.8, 0.8})
	flatXY       = xyz([]float64{-1, 1, 1, -1}, []float64{-1, -1, 1, 1}, []float64{0, 0, 0, 0})
)

// Scenarios returns the reference networks: isolated, crossing and triple
// junction fractures in a box of half-extent 2, and a square at y=0.5 moved
// across the faces of the unit box.
func Scenarios() []Scenario {
	half := []float64{0.5, 0.5, 0.5, 0.5}
	band := []float64{0.2, 0.2, 0.8, 0.8}
	return []Scenario{
		{
			Name:      "single-isolated",
			Domain:    cube2,
			Fractures: [][]v3.Vec{horizontalXZ},
			Want:      Counts{Domains: 1, Fractures: 1},
		},
		{
			Name:      "two-intersecting",
			Domain:    cube2,
			Fractures: [][]v3.Vec{horizontalXZ, verticalYZ},
			Want:      Counts{Domains: 1, Fractures: 2, Lines: 1},
		},
		{
			Name:      "three-intersecting",
			Domain:    cube2,
			Fractures: [][]v3.Vec{horizontalXZ, verticalYZ, flatXY},
			Want:      Counts{Domains: 1, Fractures: 3, Lines: 6, Points: 1},
		},
		{
			Name:      "outside-lower",
			Domain:    unit,
			Fractures: [][]v3.Vec{xyz([]float64{-2.5, -1.5, -1.5, -2.5}, half, band)},
			Want:      Counts{Domains: 1},
		},
		{
			Name:      "outside-west-bottom",
			Domain:    unit,
			Fractures: [][]v3.Vec{xyz([]float64{-1, 0, 0, -1}, half, []float64{-1.3, -1.3, -0.7, -0.7})},
			Want:      Counts{Domains: 1},
		},
		{
			Name:      "intersect-one-face",
			Domain:    unit,
			Fractures: [][]v3.Vec{xyz([]float64{-0.5, 0.5, 0.5, -0.5}, half, band)},
			Want:      Counts{Domains: 1, Fractures: 1},
		},
		{
			Name:      "intersect-two-faces",
			Domain:    unit,
			Fractures: [][]v3.Vec{xyz([]float64{-0.5, 1.5, 1.5, -0.5}, half, band)},
			Want:      Counts{Domains: 1, Fractures: 1},
		},
		{
			Name:      "incline-in-plane",
			Domain:    unit,
			Fractures: [][]v3.Vec{xyz([]float64{-0.5, 0.5, 0.5, -0.5}, half, []float64{0, -0.5, 0.5, 1})},
			Want:      Counts{Domains: 1, Fractures: 1},
		},
		{
			Name:   "full-incline",
			Domain: unit,
			Fractures: [][]v3.Vec{xyz([]float64{-0.5, 0.5, 0.5, -0.5},
				[]float64{0.5, 0.5, 1.5, 1.5}, []float64{-0.5, -0.5, 1, 1})},
			Want: Counts{Domains: 1, Fractures: 1},
		},
	}
}

// LookupScenario returns the scenario with the given name.
func LookupScenario(name string) (Scenario, bool) {
	for _, s := range Scenarios() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
