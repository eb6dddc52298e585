package graph

// NodeKind enumerates the types of nodes in the mesh graph.
type NodeKind int

const (
	NodeDomain   NodeKind = iota // bounding box, dimension 3
	NodeFracture                 // clipped fracture polygon, dimension 2
	NodeLine                     // intersection line after splitting, dimension 1
	NodePoint                    // junction point, dimension 0
)

func (k NodeKind) String() string {
	switch k {
	case NodeDomain:
		return "domain"
	case NodeFracture:
		return "fracture"
	case NodeLine:
		return "line"
	case NodePoint:
		return "point"
	default:
		return "unknown"
	}
}

// Dim returns the geometric dimension of entities of this kind, or -1.
func (k NodeKind) Dim() int {
	switch k {
	case NodeDomain:
		return 3
	case NodeFracture:
		return 2
	case NodeLine:
		return 1
	case NodePoint:
		return 0
	default:
		return -1
	}
}

// Node is the fundamental element of the mesh graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
