package engine

import (
	"bytes"
	"fmt"

	"github.com/chazu/fractured/pkg/fracture"
	"github.com/chazu/fractured/pkg/network"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"gopkg.in/yaml.v3"
)

// PlaneScene is a 2D network: line fractures given as edges between points
// in a rectangle.
type PlaneScene struct {
	Domain    fracture.Rect
	Tolerance float64
	Points    []v2.Vec
	Edges     [][2]int
}

// Process runs the 2D preprocessing with the scene's tolerance overlaid on
// base.
func (s *PlaneScene) Process(base network.Options) (*network.PlaneTopology, error) {
	if s.Tolerance > 0 {
		base.Tolerance = s.Tolerance
	}
	return network.ProcessPlane(s.Points, s.Edges, s.Domain, base)
}

type yamlPlane struct {
	Domain    *fracture.Rect `yaml:"domain"`
	Tolerance float64        `yaml:"tolerance"`
	Points    [][]float64    `yaml:"points"`
	Edges     [][]int        `yaml:"edges"`
}

// ParsePlaneYAML reads a 2D network:
//
//	domain: {xmin: -2, xmax: 2, ymin: -2, ymax: 2}
//	points: [[-1, 0], [1, 0], [0, -1], [0, 1]]
//	edges: [[0, 1], [2, 3]]
//
// Unknown keys are rejected.
func ParsePlaneYAML(data []byte) (*PlaneScene, error) {
	var yp yamlPlane
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&yp); err != nil {
		return nil, fmt.Errorf("parse plane: %w", err)
	}
	if yp.Domain == nil {
		return nil, fmt.Errorf("parse plane: %w", ErrNoDomain)
	}
	if err := yp.Domain.Validate(); err != nil {
		return nil, fmt.Errorf("parse plane: %w", err)
	}
	if yp.Tolerance < 0 {
		return nil, fmt.Errorf("parse plane: negative tolerance %g", yp.Tolerance)
	}

	s := &PlaneScene{Domain: *yp.Domain, Tolerance: yp.Tolerance}
	for i, p := range yp.Points {
		if len(p) != 2 {
			return nil, fmt.Errorf("parse plane: point %d has %d coordinates, want 2", i, len(p))
		}
		s.Points = append(s.Points, v2.Vec{X: p[0], Y: p[1]})
	}
	for i, e := range yp.Edges {
		if len(e) != 2 {
			return nil, fmt.Errorf("parse plane: edge %d has %d endpoints, want 2", i, len(e))
		}
		s.Edges = append(s.Edges, [2]int{e[0], e[1]})
	}
	return s, nil
}
