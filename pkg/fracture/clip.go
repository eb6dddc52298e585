package fracture

import (
	"github.com/chazu/fractured/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Clip returns the part of the planar polygon pts that lies inside the domain.
//
// The polygon is clipped against the six faces in the order xmin, xmax, ymin,
// ymax, zmin, zmax. Vertices within tol outside a face count as inside, so a
// polygon lying on a face keeps that face's extent. An empty result means the
// polygon lies outside the domain, or overlaps it only in a sliver thinner
// than tol. The input slice is never modified.
func Clip(pts []v3.Vec, d Domain, tol float64) []v3.Vec {
	cur := geom.DedupRing(pts, tol)
	if len(cur) < 3 {
		return nil
	}
	for _, f := range d.faces() {
		cur = clipFace(cur, f, tol)
		if len(cur) < 3 {
			return nil
		}
	}
	if isSliver(cur, tol) {
		return nil
	}
	return cur
}

// clipFace is one Sutherland-Hodgman pass against the half-space inside f.
func clipFace(pts []v3.Vec, f face, tol float64) []v3.Vec {
	out := make([]v3.Vec, 0, len(pts)+2)
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		pIn := f.plane.Distance(p) >= -tol
		qIn := f.plane.Distance(q) >= -tol
		if pIn {
			out = append(out, p)
		}
		if pIn == qIn {
			continue
		}
		x, _, ok := geom.IntersectSegmentPlane(p, q, f.plane, tol)
		if !ok {
			continue
		}
		// Land exactly on the face so repeated clipping is stable.
		out = append(out, geom.WithComponent(x, f.axis, f.bound))
	}
	return geom.DedupRing(out, tol)
}

// isSliver reports whether the polygon is thinner than tol: its area divided
// by its diameter bounds the mean width.
func isSliver(pts []v3.Vec, tol float64) bool {
	diam := geom.Diameter(pts)
	if diam < tol {
		return true
	}
	return 2*geom.Area(pts)/diam < tol
}
