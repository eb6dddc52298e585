package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PointInPolygon2D reports whether pt lies inside the polygon or within tol of
// its boundary. The polygon is given without a closing repeat of its first
// vertex.
func PointInPolygon2D(pt v2.Vec, poly []v2.Vec, tol float64) bool {
	if len(poly) < 3 {
		return false
	}
	if DistanceToBoundary2D(pt, poly) <= tol {
		return true
	}
	return planar.RingContains(ring(poly), orb.Point{pt.X, pt.Y})
}

// PointStrictlyInPolygon2D reports whether pt lies inside the polygon and
// farther than tol from its boundary.
func PointStrictlyInPolygon2D(pt v2.Vec, poly []v2.Vec, tol float64) bool {
	if len(poly) < 3 || DistanceToBoundary2D(pt, poly) <= tol {
		return false
	}
	return planar.RingContains(ring(poly), orb.Point{pt.X, pt.Y})
}

// DistanceToBoundary2D returns the distance from pt to the nearest polygon edge.
func DistanceToBoundary2D(pt v2.Vec, poly []v2.Vec) float64 {
	best := math.Inf(1)
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		best = math.Min(best, distancePointSegment2D(pt, a, b))
	}
	return best
}

// ClipLine2D clips the line o + t*dir, dir a unit vector, against the polygon
// and returns the parameter interval between the outermost boundary crossings.
// ok is false when the line misses the polygon. Edges running along the line
// within tol contribute both of their endpoints.
func ClipLine2D(o, dir v2.Vec, poly []v2.Vec, tol float64) (t0, t1 float64, ok bool) {
	t0, t1 = math.Inf(1), math.Inf(-1)
	add := func(t float64) {
		t0 = math.Min(t0, t)
		t1 = math.Max(t1, t)
		ok = true
	}

	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		e := q.Sub(p)
		el := e.Length()
		if el < tol {
			continue
		}
		w := p.Sub(o)
		denom := cross2(dir, e)
		if math.Abs(denom) < tol {
			// Parallel edge; keep it only if it lies on the line.
			if math.Abs(cross2(w, dir)) < tol {
				add(dot2(w, dir))
				add(dot2(q.Sub(o), dir))
			}
			continue
		}
		s := cross2(w, dir) / denom
		if s < -tol/el || s > 1+tol/el {
			continue
		}
		add(cross2(w, e) / denom)
	}
	return t0, t1, ok
}

// Area returns the area of a planar polygon in 3D.
func Area(pts []v3.Vec) float64 {
	if len(pts) < 3 {
		return 0
	}
	return newellNormal(pts).Length() / 2
}

// Diameter returns the largest distance between any two vertices.
func Diameter(pts []v3.Vec) float64 {
	var d float64
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			d = math.Max(d, pts[i].Sub(pts[j]).Length())
		}
	}
	return d
}

// DedupRing removes consecutive vertices closer than tol, including the pair
// formed by the last and first vertex. The input is not modified.
func DedupRing(pts []v3.Vec, tol float64) []v3.Vec {
	out := make([]v3.Vec, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && Equal(out[len(out)-1], p, tol) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && Equal(out[0], out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}
	return out
}

func distancePointSegment2D(p, a, b v2.Vec) float64 {
	d := b.Sub(a)
	l2 := dot2(d, d)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := clamp01(dot2(p.Sub(a), d) / l2)
	return p.Sub(a.Add(d.MulScalar(t))).Length()
}

// ring converts a polygon to a closed orb ring.
func ring(poly []v2.Vec) orb.Ring {
	r := make(orb.Ring, 0, len(poly)+1)
	for _, p := range poly {
		r = append(r, orb.Point{p.X, p.Y})
	}
	return append(r, r[0])
}
