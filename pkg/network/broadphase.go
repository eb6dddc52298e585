package network

import (
	"sort"

	"github.com/chazu/fractured/pkg/fracture"
	"github.com/dhconnelly/rtreego"
)

// boxEntry wraps a fracture's bounding box for R-tree storage.
type boxEntry struct {
	index int
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *boxEntry) Bounds() rtreego.Rect {
	return e.rect
}

// fractureRect returns the bounding box of f grown by tol on every side, so
// flat fractures still get a box with positive extent.
func fractureRect(f *fracture.Fracture, tol float64) (rtreego.Rect, error) {
	b := f.Bounds()
	return rtreego.NewRect(
		rtreego.Point{b.Min.X - tol, b.Min.Y - tol, b.Min.Z - tol},
		[]float64{
			b.Max.X - b.Min.X + 2*tol,
			b.Max.Y - b.Min.Y + 2*tol,
			b.Max.Z - b.Min.Z + 2*tol,
		},
	)
}

// candidatePairs returns every index pair (i, j), i < j, whose padded
// bounding boxes overlap, sorted by i then j.
func candidatePairs(frs []*fracture.Fracture, tol float64) ([][2]int, error) {
	tree := rtreego.NewTree(3, 25, 50)
	entries := make([]*boxEntry, len(frs))
	for i, f := range frs {
		r, err := fractureRect(f, tol)
		if err != nil {
			return nil, err
		}
		entries[i] = &boxEntry{index: i, rect: r}
		tree.Insert(entries[i])
	}

	var pairs [][2]int
	for i, e := range entries {
		for _, hit := range tree.SearchIntersect(e.rect) {
			j := hit.(*boxEntry).index
			if j > i {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a][0] != pairs[b][0] {
			return pairs[a][0] < pairs[b][0]
		}
		return pairs[a][1] < pairs[b][1]
	})
	return pairs, nil
}
