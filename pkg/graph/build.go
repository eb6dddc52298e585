package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/fractured/pkg/network"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// FromTopology builds the mesh graph of a processed network. The domain is
// the only root. Fractures named by the user are entered in the name index;
// unnamed ones can be found by position through Fractures.
func FromTopology(t *network.Topology, tol float64) *MeshGraph {
	g := New()
	g.Tolerance = tol

	key := func(v v3.Vec) string { return quantize(v, tol) }

	pointIDs := make([]NodeID, len(t.Points))
	for i, p := range t.Points {
		pointIDs[i] = NewNodeID("point/" + key(p.Coord))
	}
	lineIDs := make([]NodeID, len(t.Lines))
	for i, ln := range t.Lines {
		lineIDs[i] = NewNodeID("line/" + key(ln.P0) + "/" + key(ln.P1))
	}
	fracIDs := make([]NodeID, len(t.Fractures))
	for i, f := range t.Fractures {
		verts := lo.Map(f.Points(), func(p v3.Vec, _ int) string { return key(p) })
		fracIDs[i] = NewNodeID(fmt.Sprintf("fracture/%d/%s", f.ID, strings.Join(verts, "/")))
	}

	for i, p := range t.Points {
		g.AddNode(&Node{
			ID:   pointIDs[i],
			Kind: NodePoint,
			Data: PointData{
				Index: i,
				Coord: vec3(p.Coord),
				Lines: pick(lineIDs, p.Lines),
			},
		})
	}

	for i, ln := range t.Lines {
		g.AddNode(&Node{
			ID:       lineIDs[i],
			Kind:     NodeLine,
			Children: pick(pointIDs, ln.Points),
			Data: LineData{
				Index:     i,
				P0:        vec3(ln.P0),
				P1:        vec3(ln.P1),
				Fractures: pick(fracIDs, ln.Fractures),
			},
		})
	}

	for i, f := range t.Fractures {
		g.AddNode(&Node{
			ID:       fracIDs[i],
			Kind:     NodeFracture,
			Name:     f.Name,
			Children: pick(lineIDs, t.FractureLines[i]),
			Data: FractureData{
				Index:    i,
				Input:    f.ID,
				Vertices: lo.Map(f.Points(), func(p v3.Vec, _ int) Vec3 { return vec3(p) }),
				Normal:   vec3(f.Normal()),
			},
		})
	}

	box := t.Domain.Box()
	domainID := NewNodeID("domain/" + key(box.Min) + "/" + key(box.Max))
	g.AddNode(&Node{
		ID:       domainID,
		Kind:     NodeDomain,
		Children: fracIDs,
		Data:     DomainData{Min: vec3(box.Min), Max: vec3(box.Max)},
	})
	g.AddRoot(domainID)
	return g
}

func pick(ids []NodeID, idx []int) []NodeID {
	return lo.Map(idx, func(i int, _ int) NodeID { return ids[i] })
}

// quantize formats v on a grid of spacing tol, so coordinates that differ by
// rounding noise hash alike.
func quantize(v v3.Vec, tol float64) string {
	q := func(x float64) float64 {
		r := math.Round(x/tol) * tol
		if r == 0 {
			return 0 // no negative zero
		}
		return r
	}
	return fmt.Sprintf("%.9g,%.9g,%.9g", q(v.X), q(v.Y), q(v.Z))
}
