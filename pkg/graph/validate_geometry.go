package graph

import (
	"fmt"
	"math"

	"github.com/chazu/fractured/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation (errors)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
func validateGeometry(g *MeshGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateInsideDomain(g)...)
	errs = append(errs, validateLineLength(g)...)
	errs = append(errs, validateLinesOnFractures(g)...)
	errs = append(errs, validateJunctionsOnLines(g)...)
	errs = append(errs, validateLineCrossings(g)...)
	return errs
}

// validateInsideDomain checks that every fracture vertex lies in the domain.
func validateInsideDomain(g *MeshGraph) []ValidationError {
	var errs []ValidationError
	tol := g.Tolerance

	for _, dn := range g.OfKind(NodeDomain) {
		dd, ok := dn.Data.(DomainData)
		if !ok {
			continue
		}
		for _, fid := range dn.Children {
			fn := g.Nodes[fid]
			if fn == nil {
				continue
			}
			fd, ok := fn.Data.(FractureData)
			if !ok {
				continue
			}
			for _, v := range fd.Vertices {
				if v.X < dd.Min.X-tol || v.Y < dd.Min.Y-tol || v.Z < dd.Min.Z-tol ||
					v.X > dd.Max.X+tol || v.Y > dd.Max.Y+tol || v.Z > dd.Max.Z+tol {
					errs = append(errs, ValidationError{
						NodeID:   fn.ID,
						Message:  fmt.Sprintf("vertex (%g, %g, %g) lies outside the domain", v.X, v.Y, v.Z),
						Severity: SeverityError,
					})
					break
				}
			}
		}
	}

	return errs
}

// validateLineLength checks that no line is shorter than the tolerance.
func validateLineLength(g *MeshGraph) []ValidationError {
	var errs []ValidationError

	for _, ln := range g.Lines() {
		ld, ok := ln.Data.(LineData)
		if !ok {
			continue
		}
		if l := ld.P1.Vec().Sub(ld.P0.Vec()).Length(); l < g.Tolerance {
			errs = append(errs, ValidationError{
				NodeID:   ln.ID,
				Message:  fmt.Sprintf("line length %.3g is below tolerance %.3g", l, g.Tolerance),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// fracturePolygon is a fracture node's plane and vertices in plane coordinates.
type fracturePolygon struct {
	plane geom.Plane
	poly  []v2.Vec
}

func polygonOf(fd FractureData) fracturePolygon {
	verts := lo.Map(fd.Vertices, func(v Vec3, _ int) v3.Vec { return v.Vec() })
	pl := geom.NewPlane(fd.Normal.Vec(), geom.Centroid(verts))
	return fracturePolygon{plane: pl, poly: pl.ProjectAll(verts)}
}

func (fp fracturePolygon) contains(p v3.Vec, tol float64) bool {
	return math.Abs(fp.plane.Distance(p)) <= tol && geom.PointInPolygon2D(fp.plane.Project(p), fp.poly, tol)
}

// validateLinesOnFractures checks that both endpoints of every line lie on
// every fracture the line references.
func validateLinesOnFractures(g *MeshGraph) []ValidationError {
	var errs []ValidationError
	polys := make(map[NodeID]fracturePolygon)
	for _, fn := range g.Fractures() {
		if fd, ok := fn.Data.(FractureData); ok {
			polys[fn.ID] = polygonOf(fd)
		}
	}

	for _, ln := range g.Lines() {
		ld, ok := ln.Data.(LineData)
		if !ok {
			continue
		}
		for _, fid := range ld.Fractures {
			fp, ok := polys[fid]
			if !ok {
				continue // dangling or wrong kind, reported by Tier 1
			}
			if !fp.contains(ld.P0.Vec(), g.Tolerance) || !fp.contains(ld.P1.Vec(), g.Tolerance) {
				errs = append(errs, ValidationError{
					NodeID:   ln.ID,
					Message:  fmt.Sprintf("line does not lie on fracture %s", fid.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateJunctionsOnLines checks that every junction is an endpoint of each
// line it lists.
func validateJunctionsOnLines(g *MeshGraph) []ValidationError {
	var errs []ValidationError

	for _, pn := range g.Points() {
		pd, ok := pn.Data.(PointData)
		if !ok {
			continue
		}
		c := pd.Coord.Vec()
		for _, lid := range pd.Lines {
			ln := g.Nodes[lid]
			if ln == nil {
				continue
			}
			ld, ok := ln.Data.(LineData)
			if !ok {
				continue
			}
			if !geom.Equal(c, ld.P0.Vec(), g.Tolerance) && !geom.Equal(c, ld.P1.Vec(), g.Tolerance) {
				errs = append(errs, ValidationError{
					NodeID:   pn.ID,
					Message:  fmt.Sprintf("junction is not an endpoint of line %s", lid.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateLineCrossings checks that lines meet only at shared endpoints:
// no overlaps, and no crossing in the interior of either line.
func validateLineCrossings(g *MeshGraph) []ValidationError {
	var errs []ValidationError
	tol := g.Tolerance
	lines := g.Lines()

	for i, a := range lines {
		la, ok := a.Data.(LineData)
		if !ok {
			continue
		}
		for _, b := range lines[i+1:] {
			lb, ok := b.Data.(LineData)
			if !ok {
				continue
			}
			r := geom.IntersectSegments(la.P0.Vec(), la.P1.Vec(), lb.P0.Vec(), lb.P1.Vec(), tol)
			switch r.Kind {
			case geom.SegmentOverlap:
				errs = append(errs, ValidationError{
					NodeID:   a.ID,
					Message:  fmt.Sprintf("line overlaps line %s", b.ID.Short()),
					Severity: SeverityError,
				})
			case geom.SegmentPoint:
				if !isEndpoint(r.P0, la, tol) || !isEndpoint(r.P0, lb, tol) {
					errs = append(errs, ValidationError{
						NodeID:   a.ID,
						Message:  fmt.Sprintf("line crosses line %s away from a shared endpoint", b.ID.Short()),
						Severity: SeverityError,
					})
				}
			}
		}
	}

	return errs
}

func isEndpoint(p v3.Vec, ld LineData, tol float64) bool {
	return geom.Equal(p, ld.P0.Vec(), tol) || geom.Equal(p, ld.P1.Vec(), tol)
}

// ---------------------------------------------------------------------------
// Tier 3: Mesh quality warnings
// ---------------------------------------------------------------------------

// QualityFactor scales the tolerance into the feature size below which the
// mesher is warned about forced refinement.
const QualityFactor = 100

// validateQuality runs all Tier 3 advisory checks.
func validateQuality(g *MeshGraph) []ValidationWarning {
	var warnings []ValidationWarning
	warnings = append(warnings, validateShortLines(g)...)
	warnings = append(warnings, validateThinFractures(g)...)
	warnings = append(warnings, validateCloseJunctions(g)...)
	return warnings
}

// validateShortLines warns about lines only slightly longer than the
// tolerance; the mesher must refine down to their length.
func validateShortLines(g *MeshGraph) []ValidationWarning {
	var warnings []ValidationWarning
	limit := QualityFactor * g.Tolerance

	for _, ln := range g.Lines() {
		ld, ok := ln.Data.(LineData)
		if !ok {
			continue
		}
		l := ld.P1.Vec().Sub(ld.P0.Vec()).Length()
		if l >= g.Tolerance && l < limit {
			warnings = append(warnings, ValidationWarning{
				NodeID:  ln.ID,
				Message: fmt.Sprintf("line length %.3g will force a very fine mesh", l),
			})
		}
	}

	return warnings
}

// validateThinFractures warns about fractures whose mean width (twice the
// area over the diameter) is close to the tolerance.
func validateThinFractures(g *MeshGraph) []ValidationWarning {
	var warnings []ValidationWarning
	limit := QualityFactor * g.Tolerance

	for _, fn := range g.Fractures() {
		fd, ok := fn.Data.(FractureData)
		if !ok {
			continue
		}
		verts := lo.Map(fd.Vertices, func(v Vec3, _ int) v3.Vec { return v.Vec() })
		diam := geom.Diameter(verts)
		if diam == 0 {
			continue
		}
		if w := 2 * geom.Area(verts) / diam; w < limit {
			warnings = append(warnings, ValidationWarning{
				NodeID:  fn.ID,
				Message: fmt.Sprintf("fracture is only %.3g wide", w),
			})
		}
	}

	return warnings
}

// validateCloseJunctions warns about distinct junctions that nearly coincide.
func validateCloseJunctions(g *MeshGraph) []ValidationWarning {
	var warnings []ValidationWarning
	limit := QualityFactor * g.Tolerance
	points := g.Points()

	for i, a := range points {
		pa, ok := a.Data.(PointData)
		if !ok {
			continue
		}
		for _, b := range points[i+1:] {
			pb, ok := b.Data.(PointData)
			if !ok {
				continue
			}
			ca, cb := pa.Coord.Vec(), pb.Coord.Vec()
			if d := ca.Sub(cb).Length(); d < limit {
				warnings = append(warnings, ValidationWarning{
					NodeID:  a.ID,
					Message: fmt.Sprintf("junction is %.3g from junction %s", d, b.ID.Short()),
				})
			}
		}
	}

	return warnings
}
