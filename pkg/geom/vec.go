// Package geom provides the tolerance-aware geometry primitives used by the
// fracture network engine: plane fitting and 2D projection of planar 3D
// polygons, segment/segment and segment/plane intersection, and 2D point and
// line tests against polygons.
//
// Every operation takes its tolerance as an explicit argument. Nothing in this
// package compares floating point coordinates for exact equality.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultTolerance is the distance below which two points are considered equal.
const DefaultTolerance = 1e-5

// Equal reports whether a and b are closer than tol.
func Equal(a, b v3.Vec, tol float64) bool {
	return a.Sub(b).Length() < tol
}

// Equal2 is Equal for 2D points.
func Equal2(a, b v2.Vec, tol float64) bool {
	return a.Sub(b).Length() < tol
}

// Lerp returns the point a + t*(b-a).
func Lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Centroid returns the arithmetic mean of the points.
func Centroid(pts []v3.Vec) v3.Vec {
	var c v3.Vec
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.MulScalar(1 / float64(len(pts)))
}

// Bounds returns the axis-aligned bounding box of the points.
func Bounds(pts []v3.Vec) sdf.Box3 {
	if len(pts) == 0 {
		return sdf.Box3{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Component returns coordinate axis (0=x, 1=y, 2=z) of v.
func Component(v v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent returns v with the coordinate on axis replaced by x.
func WithComponent(v v3.Vec, axis int, x float64) v3.Vec {
	switch axis {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	default:
		v.Z = x
	}
	return v
}

// Less orders points lexicographically by x, then y, then z. Coordinates
// closer than tol compare equal and defer to the next axis.
func Less(a, b v3.Vec, tol float64) bool {
	if math.Abs(a.X-b.X) >= tol {
		return a.X < b.X
	}
	if math.Abs(a.Y-b.Y) >= tol {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

func cross2(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

func dot2(a, b v2.Vec) float64 {
	return a.X*b.X + a.Y*b.Y
}
