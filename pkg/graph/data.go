package graph

import v3 "github.com/deadsy/sdfx/vec/v3"

// Vec3 is a serializable point.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vec3(v v3.Vec) Vec3 { return Vec3{v.X, v.Y, v.Z} }

// Vec returns v as an sdfx vector.
func (v Vec3) Vec() v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// ---------------------------------------------------------------------------
// Domain
// ---------------------------------------------------------------------------

// DomainData is the axis-aligned box every other entity lies in.
type DomainData struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

func (DomainData) nodeData() {}

// ---------------------------------------------------------------------------
// Fracture
// ---------------------------------------------------------------------------

// FractureData is a fracture polygon after clipping. Index is its position
// among the surviving fractures, Input its position in the network input.
type FractureData struct {
	Index    int    `json:"index"`
	Input    int    `json:"input"`
	Vertices []Vec3 `json:"vertices"`
	Normal   Vec3   `json:"normal"`
}

func (FractureData) nodeData() {}

// ---------------------------------------------------------------------------
// Line
// ---------------------------------------------------------------------------

// LineData is an intersection line. Fractures lists every fracture the line
// lies on.
type LineData struct {
	Index     int      `json:"index"`
	P0        Vec3     `json:"p0"`
	P1        Vec3     `json:"p1"`
	Fractures []NodeID `json:"fractures"`
}

func (LineData) nodeData() {}

// ---------------------------------------------------------------------------
// Point
// ---------------------------------------------------------------------------

// PointData is a junction point and the lines meeting there.
type PointData struct {
	Index int      `json:"index"`
	Coord Vec3     `json:"coord"`
	Lines []NodeID `json:"lines"`
}

func (PointData) nodeData() {}
