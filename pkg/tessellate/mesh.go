package tessellate

// Mesh is the triangulated surface of one fracture. Arrays are flat, three
// entries per vertex in Vertices and Normals and three indices per triangle.
// Every normal is the fracture normal.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`     // fracture name, or the short node ID
	Fracture int       `json:"fracture"` // index among the surviving fractures
}

func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the polygon produced no triangles, as happens when
// every vertex lies on one line.
func (m *Mesh) IsEmpty() bool { return len(m.Indices) == 0 }
