package graph

import "testing"

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation tests
// ---------------------------------------------------------------------------

func TestValidateAll_VertexOutsideDomain(t *testing.T) {
	g, domain, _, _, _ := buildCross()
	dd := g.Nodes[domain].Data.(DomainData)
	dd.Max.X = 0.5
	g.Nodes[domain].Data = dd

	r := ValidateAll(g)
	if !resultHasError(r, "outside the domain") {
		t.Errorf("expected outside-domain error, got %v", r.Errors)
	}
}

func TestValidateAll_LineOffFracture(t *testing.T) {
	g, _, _, _, line := buildCross()
	ld := g.Nodes[line].Data.(LineData)
	ld.P1 = Vec3{0, 0, 1.5} // beyond both squares
	g.Nodes[line].Data = ld

	r := ValidateAll(g)
	if !resultHasError(r, "does not lie on fracture") {
		t.Errorf("expected off-fracture error, got %v", r.Errors)
	}
}

func TestValidateAll_DegenerateLine(t *testing.T) {
	g, _, _, _, line := buildCross()
	ld := g.Nodes[line].Data.(LineData)
	ld.P1 = ld.P0
	g.Nodes[line].Data = ld

	r := ValidateAll(g)
	if !resultHasError(r, "below tolerance") {
		t.Errorf("expected short line error, got %v", r.Errors)
	}
}

// overlapping adds a second line on the same fractures covering part of the
// first one.
func TestValidateAll_OverlappingLines(t *testing.T) {
	g, _, fa, fb, _ := buildCross()
	extra := NewNodeID("line/extra")
	g.AddNode(&Node{
		ID: extra, Kind: NodeLine,
		Data: LineData{Index: 1, P0: Vec3{0, 0, 0}, P1: Vec3{0, 0, 0.5}, Fractures: []NodeID{fa, fb}},
	})
	g.Nodes[fa].Children = append(g.Nodes[fa].Children, extra)
	g.Nodes[fb].Children = append(g.Nodes[fb].Children, extra)

	r := ValidateAll(g)
	if !resultHasError(r, "overlaps line") {
		t.Errorf("expected overlap error, got %v", r.Errors)
	}
}

func TestValidateAll_CrossingAwayFromEndpoints(t *testing.T) {
	g, _, fa, _, _ := buildCross()
	fc := NewNodeID("fracture/c")
	cross := NewNodeID("line/ac")
	g.AddNode(&Node{
		ID: fc, Kind: NodeFracture, Name: "c",
		Children: []NodeID{cross},
		Data: FractureData{
			Index:    2,
			Input:    2,
			Vertices: []Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
			Normal:   Vec3{0, 0, 1},
		},
	})
	g.AddNode(&Node{
		ID: cross, Kind: NodeLine,
		Data: LineData{Index: 1, P0: Vec3{-1, 0, 0}, P1: Vec3{1, 0, 0}, Fractures: []NodeID{fa, fc}},
	})
	g.Nodes[fa].Children = append(g.Nodes[fa].Children, cross)
	g.Get(g.Roots[0]).Children = append(g.Get(g.Roots[0]).Children, fc)

	r := ValidateAll(g)
	if !resultHasError(r, "away from a shared endpoint") {
		t.Errorf("expected crossing error, got %v", r.Errors)
	}
}

func TestValidateAll_JunctionOffLine(t *testing.T) {
	g, _, _, _, line := buildCross()
	pt := NewNodeID("point/stray")
	other := NewNodeID("line/other")
	g.AddNode(&Node{
		ID: pt, Kind: NodePoint,
		Data: PointData{Coord: Vec3{0, 0, 0.25}, Lines: []NodeID{line, other}},
	})
	g.Nodes[line].Children = []NodeID{pt}

	r := ValidateAll(g)
	if !resultHasError(r, "not an endpoint of line") {
		t.Errorf("expected junction error, got %v", r.Errors)
	}
}

// ---------------------------------------------------------------------------
// Tier 3: Mesh quality warnings
// ---------------------------------------------------------------------------

func TestValidateAll_ShortLineWarning(t *testing.T) {
	g, _, _, _, line := buildCross()
	ld := g.Nodes[line].Data.(LineData)
	ld.P0 = Vec3{0, 0, 0}
	ld.P1 = Vec3{0, 0, 10 * g.Tolerance}
	g.Nodes[line].Data = ld

	r := ValidateAll(g)
	if !r.OK() {
		t.Errorf("short line should not be blocking, got %v", r.Errors)
	}
	if !resultHasWarning(r, "very fine mesh") {
		t.Error("expected short line warning")
	}
}

func TestValidateAll_ThinFractureWarning(t *testing.T) {
	g, _, fa, _, _ := buildCross()
	fd := g.Nodes[fa].Data.(FractureData)
	w := 10 * g.Tolerance
	fd.Vertices = []Vec3{{-w, 0, -1}, {w, 0, -1}, {w, 0, 1}, {-w, 0, 1}}
	g.Nodes[fa].Data = fd

	r := ValidateAll(g)
	if !resultHasWarning(r, "wide") {
		t.Errorf("expected thin fracture warning, got %v", r.Warnings)
	}
}

func TestValidateAll_CloseJunctionsWarning(t *testing.T) {
	g := New()
	a := NewNodeID("point/a")
	b := NewNodeID("point/b")
	g.AddNode(&Node{ID: a, Kind: NodePoint, Data: PointData{Index: 0, Coord: Vec3{0, 0, 0}}})
	g.AddNode(&Node{ID: b, Kind: NodePoint, Data: PointData{Index: 1, Coord: Vec3{0, 0, g.Tolerance * 2}}})

	if ws := validateCloseJunctions(g); len(ws) != 1 {
		t.Errorf("expected one close junction warning, got %v", ws)
	}
}
