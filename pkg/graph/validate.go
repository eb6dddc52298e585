package graph

import (
	"fmt"

	"github.com/samber/lo"
)

// ValidationSeverity indicates whether a validation finding blocks meshing
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks meshing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no blocking error was found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs all Tier 1 structural validation checks on the mesh graph
// and returns a slice of validation errors. An empty slice means the graph is
// valid. This function is read-only and never mutates the graph.
func Validate(g *MeshGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateDimensions(g)...)
	errs = append(errs, validateBackReferences(g)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric, mesh quality)
// and returns a ValidationResult with separated errors and warnings.
func ValidateAll(g *MeshGraph) ValidationResult {
	tier1 := Validate(g)
	tier2Errs := validateGeometry(g)
	tier3Warnings := validateQuality(g)

	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier3Warnings...)

	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(g *MeshGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				break
			}
		}
	}

	return errs
}

// dataRefs returns the node references held in a node's payload.
func dataRefs(n *Node) (field string, ids []NodeID) {
	switch d := n.Data.(type) {
	case LineData:
		return "fracture", d.Fractures
	case PointData:
		return "line", d.Lines
	}
	return "", nil
}

// validateReferences checks that every NodeID referenced anywhere in the graph
// points to a node that actually exists in g.Nodes.
func validateReferences(g *MeshGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}

		field, refs := dataRefs(node)
		for _, id := range refs {
			if _, ok := g.Nodes[id]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("%s reference %s does not exist", field, id.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *MeshGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that the graph has exactly one root, the domain, and
// warns about orphan nodes (nodes unreachable from the root).
func validateRoots(g *MeshGraph) []ValidationError {
	var errs []ValidationError

	if len(g.Nodes) == 0 {
		return errs
	}
	if len(g.Roots) != 1 {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("graph has %d roots, want exactly one domain", len(g.Roots)),
			Severity: SeverityError,
		})
	}
	for _, rid := range g.Roots {
		root, ok := g.Nodes[rid]
		if !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if root.Kind != NodeDomain {
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  fmt.Sprintf("root is a %s, not a domain", root.Kind),
				Severity: SeverityError,
			})
		}
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("%s %q is not reachable from the domain (orphan)", node.Kind, name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateDimensions checks that children are of strictly lower dimension
// than their parent and that payload references point at the right kinds:
// lines lie on at least two fractures, junctions join at least two lines.
func validateDimensions(g *MeshGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			child, ok := g.Nodes[childID]
			if !ok {
				continue // dangling references handled above
			}
			if child.Kind.Dim() >= node.Kind.Dim() {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child %s is a %s, not lower-dimensional than a %s", childID.Short(), child.Kind, node.Kind),
					Severity: SeverityError,
				})
			}
		}

		switch d := node.Data.(type) {
		case LineData:
			errs = append(errs, checkRefKinds(g, node, d.Fractures, NodeFracture)...)
			if len(d.Fractures) < 2 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("line lies on %d fractures, need at least 2", len(d.Fractures)),
					Severity: SeverityError,
				})
			}
		case PointData:
			errs = append(errs, checkRefKinds(g, node, d.Lines, NodeLine)...)
			if len(d.Lines) < 2 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("junction joins %d lines, need at least 2", len(d.Lines)),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

func checkRefKinds(g *MeshGraph, node *Node, refs []NodeID, want NodeKind) []ValidationError {
	var errs []ValidationError
	for _, id := range refs {
		if ref, ok := g.Nodes[id]; ok && ref.Kind != want {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("reference %s is a %s, not a %s", id.Short(), ref.Kind, want),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateBackReferences checks that a fracture's child lines list that
// fracture, and a line's child points list that line, in both directions.
func validateBackReferences(g *MeshGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case LineData:
			for _, fid := range d.Fractures {
				if f, ok := g.Nodes[fid]; ok && !lo.Contains(f.Children, node.ID) {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("fracture %s does not list this line", fid.Short()),
						Severity: SeverityError,
					})
				}
			}
			for _, pid := range node.Children {
				p, ok := g.Nodes[pid]
				if !ok {
					continue
				}
				if pd, ok := p.Data.(PointData); ok && !lo.Contains(pd.Lines, node.ID) {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("junction %s does not list this line", pid.Short()),
						Severity: SeverityError,
					})
				}
			}
		case FractureData:
			for _, lid := range node.Children {
				l, ok := g.Nodes[lid]
				if !ok {
					continue
				}
				if ld, ok := l.Data.(LineData); ok && !lo.Contains(ld.Fractures, node.ID) {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("line %s does not list this fracture", lid.Short()),
						Severity: SeverityError,
					})
				}
			}
		}
	}

	return errs
}
