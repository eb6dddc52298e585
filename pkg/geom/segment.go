package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SegmentKind classifies the intersection of two segments.
type SegmentKind int

const (
	SegmentNone    SegmentKind = iota // no common point
	SegmentPoint                      // a single common point
	SegmentOverlap                    // collinear segments sharing a sub-segment
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentNone:
		return "none"
	case SegmentPoint:
		return "point"
	case SegmentOverlap:
		return "overlap"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// SegmentIntersection is the result of IntersectSegments. For SegmentPoint only
// P0 is meaningful; for SegmentOverlap the shared sub-segment is P0-P1.
type SegmentIntersection struct {
	Kind   SegmentKind
	P0, P1 v3.Vec
}

// IntersectSegments intersects the segments p0-p1 and q0-q1. Segments closer
// than tol count as touching, so skew segments passing within tol of each
// other report the midpoint of their closest approach. Collinear segments
// that share more than tol of length report the shared sub-segment.
func IntersectSegments(p0, p1, q0, q1 v3.Vec, tol float64) SegmentIntersection {
	d1 := p1.Sub(p0)
	d2 := q1.Sub(q0)
	l1 := d1.Length()
	l2 := d2.Length()

	switch {
	case l1 < tol && l2 < tol:
		if Equal(p0, q0, tol) {
			return SegmentIntersection{Kind: SegmentPoint, P0: p0}
		}
		return SegmentIntersection{}
	case l1 < tol:
		if DistancePointSegment(p0, q0, q1) < tol {
			return SegmentIntersection{Kind: SegmentPoint, P0: p0}
		}
		return SegmentIntersection{}
	case l2 < tol:
		if DistancePointSegment(q0, p0, p1) < tol {
			return SegmentIntersection{Kind: SegmentPoint, P0: q0}
		}
		return SegmentIntersection{}
	}

	// Lateral drift of one direction over the other's length.
	if d1.Cross(d2).Length()/math.Max(l1, l2) < tol {
		return intersectParallel(p0, p1, q0, q1, tol)
	}

	r := p0.Sub(q0)
	a := d1.Dot(d1)
	b := d1.Dot(d2)
	c := d1.Dot(r)
	e := d2.Dot(d2)
	f := d2.Dot(r)
	denom := a*e - b*b

	s := clamp01((b*f - c*e) / denom)
	t := (b*s + f) / e
	if t < 0 {
		t = 0
		s = clamp01(-c / a)
	} else if t > 1 {
		t = 1
		s = clamp01((b - c) / a)
	}

	cp := p0.Add(d1.MulScalar(s))
	cq := q0.Add(d2.MulScalar(t))
	if !Equal(cp, cq, tol) {
		return SegmentIntersection{}
	}
	return SegmentIntersection{Kind: SegmentPoint, P0: Lerp(cp, cq, 0.5)}
}

func intersectParallel(p0, p1, q0, q1 v3.Vec, tol float64) SegmentIntersection {
	d := p1.Sub(p0)
	l := d.Length()
	u := d.MulScalar(1 / l)

	if q0.Sub(p0).Cross(u).Length() >= tol {
		return SegmentIntersection{}
	}

	// Positions along p in length units.
	s0 := q0.Sub(p0).Dot(u)
	s1 := q1.Sub(p0).Dot(u)
	lo := math.Max(0, math.Min(s0, s1))
	hi := math.Min(l, math.Max(s0, s1))

	switch {
	case hi-lo < -tol:
		return SegmentIntersection{}
	case hi-lo < tol:
		m := p0.Add(u.MulScalar((lo + hi) / 2))
		return SegmentIntersection{Kind: SegmentPoint, P0: m}
	}
	return SegmentIntersection{
		Kind: SegmentOverlap,
		P0:   p0.Add(u.MulScalar(lo)),
		P1:   p0.Add(u.MulScalar(hi)),
	}
}

// IntersectSegmentPlane returns the point where p0-p1 crosses the plane, and
// its parameter along the segment. ok is false when both endpoints lie
// strictly on the same side, or when the segment lies in the plane.
func IntersectSegmentPlane(p0, p1 v3.Vec, pl Plane, tol float64) (p v3.Vec, t float64, ok bool) {
	d0 := pl.Distance(p0)
	d1 := pl.Distance(p1)
	if math.Abs(d0) < tol && math.Abs(d1) < tol {
		return v3.Vec{}, 0, false
	}
	if (d0 > tol && d1 > tol) || (d0 < -tol && d1 < -tol) {
		return v3.Vec{}, 0, false
	}
	t = clamp01(d0 / (d0 - d1))
	return Lerp(p0, p1, t), t, true
}

// DistancePointSegment returns the distance from p to the segment a-b.
func DistancePointSegment(p, a, b v3.Vec) float64 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := clamp01(p.Sub(a).Dot(d) / l2)
	return p.Sub(a.Add(d.MulScalar(t))).Length()
}

// SegmentParam returns the position of p projected onto a-b, in length units
// measured from a.
func SegmentParam(p, a, b v3.Vec) float64 {
	d := b.Sub(a)
	l := d.Length()
	if l == 0 {
		return 0
	}
	return p.Sub(a).Dot(d) / l
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
