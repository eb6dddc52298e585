package network

import (
	"fmt"
	"sort"

	"github.com/chazu/fractured/pkg/fracture"
	"github.com/chazu/fractured/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
)

// EdgeKind tells domain boundary edges from fracture edges in a 2D network.
type EdgeKind int

const (
	EdgeBoundary EdgeKind = iota
	EdgeFracture
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeBoundary:
		return "boundary"
	case EdgeFracture:
		return "fracture"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// Edge is a piece of a boundary side or fracture after splitting. Source is
// the input edge index for fractures and the side (bottom, right, top, left)
// for the boundary.
type Edge struct {
	P0, P1 int
	Kind   EdgeKind
	Source int
}

// PlaneTopology is the mesh-ready description of a 2D network: the rectangle
// sides and the fractures merged into one set of edges that meet only at
// their endpoints.
type PlaneTopology struct {
	Domain fracture.Rect
	Points []v2.Vec
	Edges  []Edge
	// Intersections are the points where two or more fracture edges end.
	Intersections []int
}

// Dim returns the entity count of dimension dim: the domain (2), the
// fracture edges (1) and the intersection points (0).
func (t *PlaneTopology) Dim(dim int) int {
	switch dim {
	case 2:
		return 1
	case 1:
		n := 0
		for _, e := range t.Edges {
			if e.Kind == EdgeFracture {
				n++
			}
		}
		return n
	case 0:
		return len(t.Intersections)
	}
	return 0
}

type planeSeg struct {
	a, b   v3.Vec
	kind   EdgeKind
	source int
}

func lift2(p v2.Vec) v3.Vec { return v3.Vec{X: p.X, Y: p.Y} }

// ProcessPlane preprocesses a 2D network of line fractures. edges index into
// points. Fractures are clipped to the rectangle and dropped when nothing is
// left, then merged with the four sides, split at every crossing, and the
// points shared by fracture edges are collected. The inputs are not
// modified.
func ProcessPlane(points []v2.Vec, edges [][2]int, r fracture.Rect, opts Options) (*PlaneTopology, error) {
	opts = opts.withDefaults()
	tol := opts.Tolerance
	if err := r.Validate(); err != nil {
		return nil, err
	}

	corners := r.Corners()
	segs := make([]planeSeg, 0, 4+len(edges))
	for i := range corners {
		segs = append(segs, planeSeg{lift2(corners[i]), lift2(corners[(i+1)%4]), EdgeBoundary, i})
	}

	bound := r.Bound()
	removed := 0
	for i, e := range edges {
		if e[0] < 0 || e[0] >= len(points) || e[1] < 0 || e[1] >= len(points) {
			return nil, &fracture.InvalidFractureError{Index: i, Reason: fmt.Sprintf("edge %v references a missing point", e)}
		}
		a, b := points[e[0]], points[e[1]]
		if geom.Equal2(a, b, tol) {
			return nil, &fracture.InvalidFractureError{Index: i, Reason: "edge is shorter than the tolerance"}
		}

		kept := clip.LineString(bound, orb.LineString{{a.X, a.Y}, {b.X, b.Y}})
		if len(kept) == 0 || len(kept[0]) < 2 {
			removed++
			continue
		}
		ls := kept[0]
		p := v3.Vec{X: ls[0][0], Y: ls[0][1]}
		q := v3.Vec{X: ls[len(ls)-1][0], Y: ls[len(ls)-1][1]}
		if geom.Equal(p, q, tol) {
			removed++
			continue
		}
		segs = append(segs, planeSeg{p, q, EdgeFracture, i})
	}
	opts.logf("impose boundary: removed %d of %d fracture edges", removed, len(edges))

	pts := &pointSet{tol: tol}
	on := make([]map[int]bool, len(segs))
	for i, s := range segs {
		on[i] = map[int]bool{pts.add(s.a): true, pts.add(s.b): true}
	}
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			x := geom.IntersectSegments(segs[i].a, segs[i].b, segs[j].a, segs[j].b, tol)
			switch x.Kind {
			case geom.SegmentPoint:
				k := pts.add(x.P0)
				on[i][k], on[j][k] = true, true
			case geom.SegmentOverlap:
				k0, k1 := pts.add(x.P0), pts.add(x.P1)
				on[i][k0], on[i][k1] = true, true
				on[j][k0], on[j][k1] = true, true
			}
		}
	}

	t := &PlaneTopology{Domain: r}
	for _, c := range pts.coords {
		t.Points = append(t.Points, v2.Vec{X: c.X, Y: c.Y})
	}

	byEnds := make(map[[2]int]int)
	for i, s := range segs {
		ks := make([]int, 0, len(on[i]))
		for k := range on[i] {
			ks = append(ks, k)
		}
		sort.Slice(ks, func(x, y int) bool {
			return geom.SegmentParam(pts.coords[ks[x]], s.a, s.b) < geom.SegmentParam(pts.coords[ks[y]], s.a, s.b)
		})
		for n := 1; n < len(ks); n++ {
			e := Edge{P0: ks[n-1], P1: ks[n], Kind: s.kind, Source: s.source}
			key := [2]int{min(e.P0, e.P1), max(e.P0, e.P1)}
			if at, ok := byEnds[key]; ok {
				// A fracture lying along a side takes that piece over.
				if t.Edges[at].Kind == EdgeBoundary && e.Kind == EdgeFracture {
					t.Edges[at] = e
				}
				continue
			}
			byEnds[key] = len(t.Edges)
			t.Edges = append(t.Edges, e)
		}
	}

	ends := make([]int, len(t.Points))
	for _, e := range t.Edges {
		if e.Kind == EdgeFracture {
			ends[e.P0]++
			ends[e.P1]++
		}
	}
	for k, n := range ends {
		if n > 1 {
			t.Intersections = append(t.Intersections, k)
		}
	}
	opts.logf("split: %d fracture edges, %d intersection points", t.Dim(1), t.Dim(0))
	return t, nil
}
