package geom

import (
	"errors"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrTooFewPoints is returned when fewer than three points are given to a plane fit.
	ErrTooFewPoints = errors.New("at least 3 points are needed to fit a plane")
	// ErrCollinear is returned when the points do not span a plane.
	ErrCollinear = errors.New("points are collinear or coincident")
)

// Plane is an oriented plane with an orthonormal in-plane basis.
// U x V = Normal.
type Plane struct {
	Normal v3.Vec // unit normal
	Origin v3.Vec // reference point on the plane
	U, V   v3.Vec // in-plane basis
}

// NewPlane returns the plane through origin with the given normal. The in-plane
// basis depends only on the normal, never on vertex order.
func NewPlane(normal, origin v3.Vec) Plane {
	n := normal.Normalize()

	// Start from the coordinate axis least aligned with the normal.
	axis := v3.Vec{X: 1}
	best := math.Abs(n.X)
	if a := math.Abs(n.Y); a < best {
		axis, best = v3.Vec{Y: 1}, a
	}
	if a := math.Abs(n.Z); a < best {
		axis = v3.Vec{Z: 1}
	}
	u := axis.Sub(n.MulScalar(n.Dot(axis))).Normalize()
	v := n.Cross(u)
	return Plane{Normal: n, Origin: origin, U: u, V: v}
}

// Distance returns the signed distance from p to the plane, positive on the
// side the normal points to.
func (pl Plane) Distance(p v3.Vec) float64 {
	return pl.Normal.Dot(p.Sub(pl.Origin))
}

// Project returns the in-plane coordinates of p.
func (pl Plane) Project(p v3.Vec) v2.Vec {
	d := p.Sub(pl.Origin)
	return v2.Vec{X: d.Dot(pl.U), Y: d.Dot(pl.V)}
}

// ProjectAll projects every point.
func (pl Plane) ProjectAll(pts []v3.Vec) []v2.Vec {
	out := make([]v2.Vec, len(pts))
	for i, p := range pts {
		out[i] = pl.Project(p)
	}
	return out
}

// ProjectDir returns the in-plane components of a direction vector.
func (pl Plane) ProjectDir(d v3.Vec) v2.Vec {
	return v2.Vec{X: d.Dot(pl.U), Y: d.Dot(pl.V)}
}

// Lift maps in-plane coordinates back to 3D.
func (pl Plane) Lift(q v2.Vec) v3.Vec {
	return pl.Origin.Add(pl.U.MulScalar(q.X)).Add(pl.V.MulScalar(q.Y))
}

// Parallel reports whether the two planes have normals within angular
// tolerance tol (radians, small angle) of each other, in either direction.
func (pl Plane) Parallel(o Plane, tol float64) bool {
	return pl.Normal.Cross(o.Normal).Length() < tol
}

// FitPlane fits a plane through pts by principal component analysis: the normal
// is the eigenvector of the covariance matrix belonging to the smallest
// eigenvalue, and the origin is the centroid. The normal is oriented so that
// the vertices wind counter-clockwise around it.
func FitPlane(pts []v3.Vec, tol float64) (Plane, error) {
	if len(pts) < 3 {
		return Plane{}, ErrTooFewPoints
	}
	c := Centroid(pts)

	cov := mat.NewSymDense(3, nil)
	for _, p := range pts {
		d := p.Sub(c)
		x := [3]float64{d.X, d.Y, d.Z}
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				cov.SetSym(i, j, cov.At(i, j)+x[i]*x[j])
			}
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(cov, true); !ok {
		return Plane{}, ErrCollinear
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	order := []int{0, 1, 2}
	for i := 1; i < 3; i++ {
		for j := i; j > 0 && vals[order[j]] < vals[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	// RMS spread along the second principal axis; below tol the points lie
	// on a line.
	if math.Sqrt(math.Max(vals[order[1]], 0)/float64(len(pts))) < tol {
		return Plane{}, ErrCollinear
	}

	k := order[0]
	n := v3.Vec{X: vecs.At(0, k), Y: vecs.At(1, k), Z: vecs.At(2, k)}.Normalize()
	if w := newellNormal(pts); w.Length() > 0 {
		if w.Dot(n) < 0 {
			n = n.Neg()
		}
	} else if n.X+n.Y+n.Z < 0 {
		n = n.Neg()
	}
	return NewPlane(n, c), nil
}

// ProjectToPlane fits a plane through the polygon and returns the 2D
// coordinates of its vertices in the plane basis.
func ProjectToPlane(pts []v3.Vec, tol float64) ([]v2.Vec, Plane, error) {
	pl, err := FitPlane(pts, tol)
	if err != nil {
		return nil, Plane{}, err
	}
	return pl.ProjectAll(pts), pl, nil
}

// newellNormal returns the unnormalized Newell normal of the polygon, whose
// length is twice the polygon area.
func newellNormal(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}
