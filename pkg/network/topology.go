package network

import (
	"sort"

	"github.com/chazu/fractured/pkg/fracture"
	"github.com/chazu/fractured/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Topology is the dimension-indexed description of a processed network: one
// domain (3D), the surviving fractures (2D), intersection lines split at
// junctions (1D) and the junction points (0D). Indices in back-references
// point into the slices of the same Topology.
type Topology struct {
	Domain    fracture.Domain
	Fractures []*fracture.Fracture
	Lines     []Line
	Points    []Point

	// FractureLines[i] lists the lines lying on Fractures[i].
	FractureLines [][]int
	// Segments are the pairwise intersections before splitting.
	Segments []Segment
}

// Line is an intersection line after junction splitting.
type Line struct {
	P0, P1    v3.Vec
	Fractures []int // every fracture containing the line, at least two
	Points    []int // junctions at the endpoints, zero to two
	Segments  []int // raw segments this line is a piece of
}

// Point is a junction where intersection lines from three or more fractures
// meet.
type Point struct {
	Coord     v3.Vec
	Lines     []int
	Fractures []int
}

// Counts holds the number of entities per dimension.
type Counts struct {
	Domains   int `json:"domains"`
	Fractures int `json:"fractures"`
	Lines     int `json:"lines"`
	Points    int `json:"points"`
}

// Counts returns the entity count of every dimension.
func (t *Topology) Counts() Counts {
	return Counts{
		Domains:   1,
		Fractures: len(t.Fractures),
		Lines:     len(t.Lines),
		Points:    len(t.Points),
	}
}

// Dim returns the entity count of dimension dim, 0 through 3.
func (t *Topology) Dim(dim int) int {
	c := t.Counts()
	switch dim {
	case 0:
		return c.Points
	case 1:
		return c.Lines
	case 2:
		return c.Fractures
	case 3:
		return c.Domains
	}
	return 0
}

// pointSet deduplicates coordinates within tol. The first coordinate seen
// represents every later one within tol of it.
type pointSet struct {
	tol    float64
	coords []v3.Vec
}

func (s *pointSet) add(p v3.Vec) int {
	for i, q := range s.coords {
		if geom.Equal(p, q, s.tol) {
			return i
		}
	}
	s.coords = append(s.coords, p)
	return len(s.coords) - 1
}

// buildTopology merges segment endpoints, finds junctions, and splits every
// segment at the junctions lying on it. Segment fracture IDs are resolved
// through pos, which maps an ID to its index in frs.
func buildTopology(d fracture.Domain, frs []*fracture.Fracture, segs []Segment, tol float64) *Topology {
	pos := make(map[int]int, len(frs))
	for i, f := range frs {
		pos[f.ID] = i
	}

	pts := &pointSet{tol: tol}
	on := make([]map[int]bool, len(segs))
	for i, s := range segs {
		on[i] = map[int]bool{pts.add(s.P0): true, pts.add(s.P1): true}
	}
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			r := geom.IntersectSegments(segs[i].P0, segs[i].P1, segs[j].P0, segs[j].P1, tol)
			switch r.Kind {
			case geom.SegmentPoint:
				k := pts.add(r.P0)
				on[i][k], on[j][k] = true, true
			case geom.SegmentOverlap:
				k0, k1 := pts.add(r.P0), pts.add(r.P1)
				on[i][k0], on[i][k1] = true, true
				on[j][k0], on[j][k1] = true, true
			}
		}
	}

	// Segments through every registered point.
	through := make([][]int, len(pts.coords))
	for i := range segs {
		for k := range on[i] {
			through[k] = append(through[k], i)
		}
	}

	junction := make([]bool, len(pts.coords))
	for k, ss := range through {
		fracs := lo.Uniq(lo.FlatMap(ss, func(i int, _ int) []int {
			return []int{segs[i].A, segs[i].B}
		}))
		junction[k] = len(fracs) >= 3 && !collinearEnds(pts.coords[k], segs, ss, tol)
	}

	t := &Topology{
		Domain:        d,
		Fractures:     frs,
		FractureLines: make([][]int, len(frs)),
		Segments:      segs,
	}

	pointIndex := make(map[int]int)
	for k, isJ := range junction {
		if isJ {
			pointIndex[k] = len(t.Points)
			t.Points = append(t.Points, Point{Coord: pts.coords[k]})
		}
	}

	lineIndex := make(map[[2]int]int)
	for i, s := range segs {
		// Endpoints and interior junctions, ordered along the segment.
		stops := lo.Filter(lo.Keys(on[i]), func(k int, _ int) bool {
			return junction[k] || geom.Equal(pts.coords[k], s.P0, tol) || geom.Equal(pts.coords[k], s.P1, tol)
		})
		sort.Slice(stops, func(a, b int) bool {
			return geom.SegmentParam(pts.coords[stops[a]], s.P0, s.P1) < geom.SegmentParam(pts.coords[stops[b]], s.P0, s.P1)
		})

		for n := 0; n+1 < len(stops); n++ {
			k0, k1 := stops[n], stops[n+1]
			if k0 == k1 || geom.Equal(pts.coords[k0], pts.coords[k1], tol) {
				continue
			}
			key := [2]int{min(k0, k1), max(k0, k1)}
			li, seen := lineIndex[key]
			if !seen {
				li = len(t.Lines)
				lineIndex[key] = li
				p0, p1 := pts.coords[k0], pts.coords[k1]
				if geom.Less(p1, p0, tol) {
					p0, p1 = p1, p0
				}
				ln := Line{P0: p0, P1: p1}
				for _, k := range key {
					if pi, ok := pointIndex[k]; ok {
						ln.Points = append(ln.Points, pi)
					}
				}
				t.Lines = append(t.Lines, ln)
			}
			ln := &t.Lines[li]
			ln.Fractures = append(ln.Fractures, pos[s.A], pos[s.B])
			ln.Segments = append(ln.Segments, i)
		}
	}

	for li := range t.Lines {
		ln := &t.Lines[li]
		ln.Fractures = lo.Uniq(ln.Fractures)
		sort.Ints(ln.Fractures)
		for _, fi := range ln.Fractures {
			t.FractureLines[fi] = append(t.FractureLines[fi], li)
		}
		for _, pi := range ln.Points {
			p := &t.Points[pi]
			p.Lines = append(p.Lines, li)
			p.Fractures = append(p.Fractures, ln.Fractures...)
		}
	}
	for pi := range t.Points {
		p := &t.Points[pi]
		p.Fractures = lo.Uniq(p.Fractures)
		sort.Ints(p.Fractures)
	}
	return t
}

// collinearEnds reports whether p is an endpoint of every segment in ss and
// all of them run along one line. Such a point only ends a line shared by
// several fractures and is not a junction.
func collinearEnds(p v3.Vec, segs []Segment, ss []int, tol float64) bool {
	var dir v3.Vec
	for n, i := range ss {
		s := segs[i]
		if !geom.Equal(p, s.P0, tol) && !geom.Equal(p, s.P1, tol) {
			return false
		}
		u := s.P1.Sub(s.P0).Normalize()
		if n == 0 {
			dir = u
			continue
		}
		if dir.Cross(u).Length() >= tol {
			return false
		}
	}
	return true
}
