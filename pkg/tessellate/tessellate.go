// Package tessellate walks a mesh graph and triangulates every fracture
// polygon, one mesh per fracture, for previewing a network before it is
// handed to the mesher. Lines and junctions are not embedded in the
// triangulation.
package tessellate

import (
	"fmt"

	"github.com/chazu/fractured/pkg/geom"
	"github.com/chazu/fractured/pkg/graph"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/samber/lo"
)

// Tessellate walks the mesh graph from its roots and produces one triangle
// mesh per fracture. The tessellator is read-only and never mutates the graph.
func Tessellate(g *graph.MeshGraph) ([]*Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*Mesh
	seen := make(map[graph.NodeID]bool)
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, root, seen)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// walkNode collects the meshes of n and, for the domain, its fractures.
func walkNode(g *graph.MeshGraph, n *graph.Node, seen map[graph.NodeID]bool) ([]*Mesh, error) {
	if seen[n.ID] {
		return nil, nil
	}
	seen[n.ID] = true

	switch n.Kind {
	case graph.NodeDomain:
		var meshes []*Mesh
		for _, child := range g.Children(n) {
			collected, err := walkNode(g, child, seen)
			if err != nil {
				return nil, err
			}
			meshes = append(meshes, collected...)
		}
		return meshes, nil

	case graph.NodeFracture:
		m, err := fractureMesh(n, g.Tolerance)
		if err != nil {
			return nil, err
		}
		return []*Mesh{m}, nil

	case graph.NodeLine, graph.NodePoint:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// fractureMesh triangulates one fracture polygon in its own plane. The
// triangles wind counter-clockwise about the fracture normal.
func fractureMesh(n *graph.Node, tol float64) (*Mesh, error) {
	fd, ok := n.Data.(graph.FractureData)
	if !ok {
		return nil, fmt.Errorf("fracture node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	if len(fd.Vertices) < 3 {
		return nil, fmt.Errorf("fracture node %s has %d vertices", n.ID.Short(), len(fd.Vertices))
	}

	normal := fd.Normal.Vec()
	pl := geom.NewPlane(normal, fd.Vertices[0].Vec())
	poly := lo.Map(fd.Vertices, func(v graph.Vec3, _ int) v2.Vec { return pl.Project(v.Vec()) })

	tris, err := triangulate(poly, tol)
	if err != nil {
		return nil, fmt.Errorf("fracture node %s: %w", n.ID.Short(), err)
	}

	m := &Mesh{
		Vertices: make([]float32, 0, 3*len(fd.Vertices)),
		Normals:  make([]float32, 0, 3*len(fd.Vertices)),
		Indices:  make([]uint32, 0, 3*len(tris)),
		Name:     n.Name,
		Fracture: fd.Index,
	}
	if m.Name == "" {
		m.Name = n.ID.Short()
	}
	for _, v := range fd.Vertices {
		m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		m.Normals = append(m.Normals, float32(normal.X), float32(normal.Y), float32(normal.Z))
	}
	for _, t := range tris {
		m.Indices = append(m.Indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	return m, nil
}
