package tessellate

import (
	"errors"
	"fmt"

	"github.com/ByteArena/poly2tri-go"
	"github.com/chazu/fractured/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ErrNotSimple is returned when the sweep cannot triangulate the polygon,
// which happens for self-intersecting or repeated vertices.
var ErrNotSimple = errors.New("polygon is not simple")

// triangulate splits a simple polygon into triangles with a constrained
// Delaunay sweep. Triangles index into poly and are counter-clockwise.
// Zero-area triangles are dropped.
func triangulate(poly []v2.Vec, tol float64) (tris [][3]int, err error) {
	for i := range poly {
		if geom.Equal2(poly[i], poly[(i+1)%len(poly)], tol) {
			return nil, fmt.Errorf("%w: vertex %d repeats its neighbour", ErrNotSimple, i)
		}
	}

	contour := make([]*poly2tri.Point, len(poly))
	index := make(map[*poly2tri.Point]int, len(poly))
	for i, p := range poly {
		contour[i] = poly2tri.NewPoint(p.X, p.Y)
		index[contour[i]] = i
	}

	// The sweep panics on input it cannot handle.
	defer func() {
		if r := recover(); r != nil {
			tris, err = nil, fmt.Errorf("%w: %v", ErrNotSimple, r)
		}
	}()
	swctx := poly2tri.NewSweepContext(contour, false)
	swctx.Triangulate()

	eps := tol * tol
	for _, tr := range swctx.GetTriangles() {
		var t [3]int
		for j := range t {
			k, ok := index[tr.Points[j]]
			if !ok {
				return nil, fmt.Errorf("%w: sweep added a vertex", ErrNotSimple)
			}
			t[j] = k
		}
		turn := orient(poly[t[0]], poly[t[1]], poly[t[2]])
		switch {
		case turn > eps:
		case turn < -eps:
			t[1], t[2] = t[2], t[1]
		default:
			continue
		}
		tris = append(tris, t)
	}
	return tris, nil
}

// orient is twice the signed area of triangle abc, positive when
// counter-clockwise.
func orient(a, b, c v2.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
