// Package fracture holds the planar polygon entity of a fracture network and
// the axis-aligned domain it is clipped to.
package fracture

import (
	"math"

	"github.com/chazu/fractured/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Fracture is a planar polygon in 3D. Its vertex sequence is replaced, never
// edited, when the fracture is clipped; the plane and its basis stay fixed
// for the lifetime of the fracture.
type Fracture struct {
	ID   int    // position in the owning network
	Name string // optional label carried into the output

	pts   []v3.Vec
	plane geom.Plane
	poly  []v2.Vec
}

// New validates the vertices and builds a fracture. The vertex list needs no
// closing repeat of the first vertex. Vertices may deviate from the fitted
// plane by up to tol (scaled by the polygon size when it exceeds 1).
func New(pts []v3.Vec, tol float64) (*Fracture, error) {
	ring := geom.DedupRing(pts, tol)
	if len(ring) < 3 {
		return nil, &InvalidFractureError{Index: -1, Reason: "fewer than 3 distinct vertices"}
	}
	pl, err := geom.FitPlane(ring, tol)
	if err != nil {
		return nil, &InvalidFractureError{Index: -1, Reason: "cannot fit a plane", Err: err}
	}

	limit := tol * math.Max(1, geom.Diameter(ring))
	for _, p := range ring {
		if math.Abs(pl.Distance(p)) > limit {
			return nil, &InvalidFractureError{Index: -1, Reason: "vertices are not coplanar"}
		}
	}

	f := &Fracture{ID: -1, plane: pl}
	f.SetPoints(ring)
	return f, nil
}

// MustNew is New for literal fixtures; it panics on invalid input.
func MustNew(pts []v3.Vec, tol float64) *Fracture {
	f, err := New(pts, tol)
	if err != nil {
		panic(err)
	}
	return f
}

// Clone returns an independent copy of f.
func (f *Fracture) Clone() *Fracture {
	c := *f
	c.pts = append([]v3.Vec(nil), f.pts...)
	c.poly = append([]v2.Vec(nil), f.poly...)
	return &c
}

// Points returns a copy of the current vertex sequence.
func (f *Fracture) Points() []v3.Vec {
	return append([]v3.Vec(nil), f.pts...)
}

func (f *Fracture) NumPoints() int { return len(f.pts) }

// Empty reports whether clipping removed the whole fracture.
func (f *Fracture) Empty() bool { return len(f.pts) == 0 }

func (f *Fracture) Plane() geom.Plane { return f.plane }

func (f *Fracture) Normal() v3.Vec { return f.plane.Normal }

// Center returns the vertex centroid of the current polygon.
func (f *Fracture) Center() v3.Vec { return geom.Centroid(f.pts) }

// Polygon2D returns the vertices in the plane basis.
func (f *Fracture) Polygon2D() []v2.Vec {
	return append([]v2.Vec(nil), f.poly...)
}

func (f *Fracture) Bounds() sdf.Box3 { return geom.Bounds(f.pts) }

func (f *Fracture) Area() float64 { return geom.Area(f.pts) }

// Contains reports whether p lies on the fracture surface, boundary included,
// within tol.
func (f *Fracture) Contains(p v3.Vec, tol float64) bool {
	if f.Empty() || math.Abs(f.plane.Distance(p)) > tol {
		return false
	}
	return geom.PointInPolygon2D(f.plane.Project(p), f.poly, tol)
}

// SetPoints replaces the vertex sequence. The new vertices must lie in the
// fracture's plane; an empty slice destroys the fracture.
func (f *Fracture) SetPoints(pts []v3.Vec) {
	f.pts = append([]v3.Vec(nil), pts...)
	f.poly = f.plane.ProjectAll(f.pts)
}

// Clip reduces the fracture to its part inside d and reports whether anything
// remains.
func (f *Fracture) Clip(d Domain, tol float64) bool {
	f.SetPoints(Clip(f.pts, d, tol))
	return !f.Empty()
}
