package fracture

import (
	"fmt"

	"github.com/chazu/fractured/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Domain is the axis-aligned box bounding the simulated region.
type Domain struct {
	XMin float64 `json:"xmin" yaml:"xmin"`
	XMax float64 `json:"xmax" yaml:"xmax"`
	YMin float64 `json:"ymin" yaml:"ymin"`
	YMax float64 `json:"ymax" yaml:"ymax"`
	ZMin float64 `json:"zmin" yaml:"zmin"`
	ZMax float64 `json:"zmax" yaml:"zmax"`
}

// NewDomain returns the domain with the given bounds. Every minimum must be
// strictly below its maximum.
func NewDomain(xmin, xmax, ymin, ymax, zmin, zmax float64) (Domain, error) {
	d := Domain{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax, ZMin: zmin, ZMax: zmax}
	return d, d.Validate()
}

// Validate checks that the box has positive extent along every axis.
func (d Domain) Validate() error {
	for _, ax := range []struct {
		name     string
		min, max float64
	}{{"x", d.XMin, d.XMax}, {"y", d.YMin, d.YMax}, {"z", d.ZMin, d.ZMax}} {
		if !(ax.min < ax.max) {
			return fmt.Errorf("%w: %s range [%g, %g] is empty", ErrInvalidDomain, ax.name, ax.min, ax.max)
		}
	}
	return nil
}

// Box returns the domain as an sdfx bounding box.
func (d Domain) Box() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: d.XMin, Y: d.YMin, Z: d.ZMin},
		Max: v3.Vec{X: d.XMax, Y: d.YMax, Z: d.ZMax},
	}
}

// Contains reports whether p lies inside the box or within tol of it.
func (d Domain) Contains(p v3.Vec, tol float64) bool {
	b := d.Box()
	for axis := 0; axis < 3; axis++ {
		x := geom.Component(p, axis)
		if x < geom.Component(b.Min, axis)-tol || x > geom.Component(b.Max, axis)+tol {
			return false
		}
	}
	return true
}

// face is one side of the domain box. Points with Distance >= -tol are inside.
type face struct {
	name  string
	axis  int
	bound float64
	plane geom.Plane // normal points into the domain
}

// faces returns the six sides in clipping order: xmin, xmax, ymin, ymax, zmin, zmax.
func (d Domain) faces() [6]face {
	b := d.Box()
	var fs [6]face
	names := [3]string{"x", "y", "z"}
	for axis := 0; axis < 3; axis++ {
		in := geom.WithComponent(v3.Vec{}, axis, 1)
		lo, hi := geom.Component(b.Min, axis), geom.Component(b.Max, axis)
		fs[2*axis] = face{
			name:  names[axis] + "min",
			axis:  axis,
			bound: lo,
			plane: geom.NewPlane(in, geom.WithComponent(v3.Vec{}, axis, lo)),
		}
		fs[2*axis+1] = face{
			name:  names[axis] + "max",
			axis:  axis,
			bound: hi,
			plane: geom.NewPlane(in.Neg(), geom.WithComponent(v3.Vec{}, axis, hi)),
		}
	}
	return fs
}
