package engine

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/chazu/fractured/pkg/fracture"
	"github.com/chazu/fractured/pkg/network"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gopkg.in/yaml.v3"
)

// ErrNoDomain is returned when a scene is turned into a network before a
// domain was declared.
var ErrNoDomain = errors.New("scene has no domain")

// FractureSpec is one fracture as written in a scene: an optional name and
// its vertices in order around the polygon.
type FractureSpec struct {
	Name     string
	Vertices []v3.Vec
}

// Scene is the description of a fracture network produced by evaluating a
// script or reading a YAML file. Zero Tolerance and empty Coplanar mean the
// caller's options apply.
type Scene struct {
	Domain    *fracture.Domain
	Tolerance float64
	Coplanar  string
	Fractures []FractureSpec
	Warnings  []EvalWarning
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Lookup returns the index of the fracture with the given name, or -1.
func (s *Scene) Lookup(name string) int {
	if name == "" {
		return -1
	}
	for i, f := range s.Fractures {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Options overlays the scene's settings on base.
func (s *Scene) Options(base network.Options) (network.Options, error) {
	if s.Tolerance > 0 {
		base.Tolerance = s.Tolerance
	}
	if s.Coplanar != "" {
		p, err := network.ParseCoplanarPolicy(s.Coplanar)
		if err != nil {
			return base, err
		}
		base.Coplanar = p
	}
	return base, nil
}

// Network builds the fractures of the scene and an unprocessed network over
// them.
func (s *Scene) Network(opts network.Options) (*network.Network, error) {
	if s.Domain == nil {
		return nil, ErrNoDomain
	}
	opts, err := s.Options(opts)
	if err != nil {
		return nil, err
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = network.DefaultOptions().Tolerance
	}

	frs := make([]*fracture.Fracture, len(s.Fractures))
	for i, fs := range s.Fractures {
		f, err := fracture.New(fs.Vertices, tol)
		if err != nil {
			var ife *fracture.InvalidFractureError
			if errors.As(err, &ife) {
				ife.Index = i
				ife.Name = fs.Name
			}
			return nil, err
		}
		f.Name = fs.Name
		frs[i] = f
	}
	return network.New(frs, *s.Domain, opts)
}

// ---------------------------------------------------------------------------
// YAML scene files
// ---------------------------------------------------------------------------

type yamlScene struct {
	Domain    *fracture.Domain `yaml:"domain"`
	Tolerance float64          `yaml:"tolerance"`
	Coplanar  string           `yaml:"coplanar"`
	Fractures []yamlFracture   `yaml:"fractures"`
}

type yamlFracture struct {
	Name     string      `yaml:"name"`
	Vertices [][]float64 `yaml:"vertices"`
}

// ParseYAML reads a scene from YAML:
//
//	domain: {xmin: -2, xmax: 2, ymin: -2, ymax: 2, zmin: -2, zmax: 2}
//	tolerance: 0.00001
//	fractures:
//	  - name: f1
//	    vertices: [[-1, 0, -1], [1, 0, -1], [1, 0, 1], [-1, 0, 1]]
//
// Unknown keys are rejected.
func ParseYAML(data []byte) (*Scene, error) {
	var ys yamlScene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ys); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	s := &Scene{Domain: ys.Domain, Tolerance: ys.Tolerance, Coplanar: ys.Coplanar}
	if ys.Tolerance < 0 {
		return nil, fmt.Errorf("parse scene: negative tolerance %g", ys.Tolerance)
	}
	if s.Domain != nil {
		if err := s.Domain.Validate(); err != nil {
			return nil, fmt.Errorf("parse scene: %w", err)
		}
	}
	if _, err := network.ParseCoplanarPolicy(ys.Coplanar); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	for i, yf := range ys.Fractures {
		if yf.Name != "" && s.Lookup(yf.Name) >= 0 {
			return nil, fmt.Errorf("parse scene: fracture %d: duplicate name %q", i, yf.Name)
		}
		fs := FractureSpec{Name: yf.Name}
		for j, v := range yf.Vertices {
			if len(v) != 3 {
				return nil, fmt.Errorf("parse scene: fracture %d: vertex %d has %d coordinates, want 3", i, j, len(v))
			}
			fs.Vertices = append(fs.Vertices, v3.Vec{X: v[0], Y: v[1], Z: v[2]})
		}
		s.Fractures = append(s.Fractures, fs)
	}
	return s, nil
}
