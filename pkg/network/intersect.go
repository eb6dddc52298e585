package network

import (
	"math"

	"github.com/chazu/fractured/pkg/fracture"
	"github.com/chazu/fractured/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Segment is the intersection of two fractures. A and B are fracture IDs with
// A < B, and P0 precedes P1 in lexicographic order.
type Segment struct {
	A, B   int
	P0, P1 v3.Vec
}

// Length returns the distance between the endpoints.
func (s Segment) Length() float64 {
	return s.P1.Sub(s.P0).Length()
}

// FindIntersection computes where the polygons of a and b meet. ok is false
// when they do not meet, or meet only in a point or a piece shorter than tol.
// The result does not depend on argument order.
//
// Two fractures in the same plane that overlap with positive area return a
// *DegenerateIntersectionError.
func FindIntersection(a, b *fracture.Fracture, tol float64) (seg Segment, ok bool, err error) {
	if b.ID < a.ID || (b.ID == a.ID && geom.Less(b.Center(), a.Center(), tol)) {
		a, b = b, a
	}
	if a.Empty() || b.Empty() {
		return Segment{}, false, nil
	}

	pa, pb := a.Plane(), b.Plane()
	d := pa.Normal.Cross(pb.Normal)
	if d.Length() < tol {
		if math.Abs(pa.Distance(pb.Origin)) > tol {
			return Segment{}, false, nil
		}
		if coplanarOverlap(a, b, tol) {
			return Segment{}, false, &DegenerateIntersectionError{A: a.ID, B: b.ID, NameA: a.Name, NameB: b.Name}
		}
		return Segment{}, false, nil
	}

	// Point on both planes: n_a.x = h_a and n_b.x = h_b.
	ha := pa.Normal.Dot(pa.Origin)
	hb := pb.Normal.Dot(pb.Origin)
	dd := d.Dot(d)
	x0 := pb.Normal.MulScalar(ha).Sub(pa.Normal.MulScalar(hb)).Cross(d).MulScalar(1 / dd)
	u := d.Normalize()

	// Re-anchor near the fractures to keep line parameters small.
	mid := geom.Lerp(a.Center(), b.Center(), 0.5)
	x0 = x0.Add(u.MulScalar(mid.Sub(x0).Dot(u)))

	ta0, ta1, hitA := clipLine(a, x0, u, tol)
	if !hitA {
		return Segment{}, false, nil
	}
	tb0, tb1, hitB := clipLine(b, x0, u, tol)
	if !hitB {
		return Segment{}, false, nil
	}
	lo := math.Max(ta0, tb0)
	hi := math.Min(ta1, tb1)
	if hi-lo < tol {
		return Segment{}, false, nil
	}

	p0 := x0.Add(u.MulScalar(lo))
	p1 := x0.Add(u.MulScalar(hi))
	if geom.Less(p1, p0, tol) {
		p0, p1 = p1, p0
	}
	return Segment{A: a.ID, B: b.ID, P0: p0, P1: p1}, true, nil
}

// clipLine clips the line x0 + t*u, u a unit vector in f's plane, against the
// fracture polygon.
func clipLine(f *fracture.Fracture, x0, u v3.Vec, tol float64) (t0, t1 float64, ok bool) {
	pl := f.Plane()
	dir := pl.ProjectDir(u)
	l := dir.Length()
	if l < tol {
		return 0, 0, false
	}
	// Parameters are measured along dir/l, which equals u up to rounding.
	return geom.ClipLine2D(pl.Project(x0), dir.MulScalar(1/l), f.Polygon2D(), tol)
}

// coplanarOverlap reports whether two fractures in a common plane share a
// region of positive area. Polygons that touch only along edges or at
// vertices do not overlap.
func coplanarOverlap(a, b *fracture.Fracture, tol float64) bool {
	pl := a.Plane()
	pa := a.Polygon2D()
	pb := pl.ProjectAll(b.Points())

	if geom.PointStrictlyInPolygon2D(pl.Project(b.Center()), pa, tol) ||
		geom.PointStrictlyInPolygon2D(pl.Project(a.Center()), pb, tol) {
		return true
	}
	for _, p := range pb {
		if geom.PointStrictlyInPolygon2D(p, pa, tol) {
			return true
		}
	}
	for _, p := range pa {
		if geom.PointStrictlyInPolygon2D(p, pb, tol) {
			return true
		}
	}
	for i, p0 := range pa {
		p1 := pa[(i+1)%len(pa)]
		for j, q0 := range pb {
			q1 := pb[(j+1)%len(pb)]
			if properCross2D(p0, p1, q0, q1, tol) {
				return true
			}
		}
	}
	return false
}

// properCross2D reports whether two 2D segments cross at a single point
// interior to both.
func properCross2D(p0, p1, q0, q1 v2.Vec, tol float64) bool {
	side := func(a, b, c v2.Vec) float64 {
		ab := b.Sub(a)
		l := ab.Length()
		if l == 0 {
			return 0
		}
		ac := c.Sub(a)
		return (ab.X*ac.Y - ab.Y*ac.X) / l
	}
	d1 := side(p0, p1, q0)
	d2 := side(p0, p1, q1)
	d3 := side(q0, q1, p0)
	d4 := side(q0, q1, p1)
	return ((d1 > tol && d2 < -tol) || (d1 < -tol && d2 > tol)) &&
		((d3 > tol && d4 < -tol) || (d3 < -tol && d4 > tol))
}
