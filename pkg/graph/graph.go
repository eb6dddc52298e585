package graph

import (
	"fmt"
	"sort"

	"github.com/chazu/fractured/pkg/geom"
)

// MeshGraph is the top-level immutable data structure handed to the mesher.
// It is never mutated in place; each processed network produces a new graph.
type MeshGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Tolerance float64           `json:"tolerance"`
}

// New creates an empty MeshGraph with the default tolerance.
func New() *MeshGraph {
	return &MeshGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Tolerance: geom.DefaultTolerance,
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *MeshGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *MeshGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *MeshGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *MeshGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *MeshGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// OfKind returns the nodes of one kind ordered by their entity index.
func (g *MeshGraph) OfKind(kind NodeKind) []*Node {
	var nodes []*Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		return entityIndex(nodes[i]) < entityIndex(nodes[j])
	})
	return nodes
}

func (g *MeshGraph) Fractures() []*Node { return g.OfKind(NodeFracture) }

func (g *MeshGraph) Lines() []*Node { return g.OfKind(NodeLine) }

func (g *MeshGraph) Points() []*Node { return g.OfKind(NodePoint) }

// Children returns the child nodes of the given node.
func (g *MeshGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *MeshGraph) NodeCount() int {
	return len(g.Nodes)
}

func entityIndex(n *Node) int {
	switch d := n.Data.(type) {
	case FractureData:
		return d.Index
	case LineData:
		return d.Index
	case PointData:
		return d.Index
	}
	return 0
}
