// Package network turns a set of planar fractures and a bounding box into the
// mesh-ready description of the fracture network: fractures clipped to the
// box, their pairwise intersection lines, and the junction points where lines
// from three or more fractures meet.
//
// Processing runs in stages, each computed once and reused:
//
//	n, err := network.New(fractures, domain, network.DefaultOptions())
//	n.ImposeExternalBoundary()      // clip to the domain, drop what is outside
//	segs, err := n.FindIntersections() // pairwise intersection segments
//	topo, err := n.SplitIntersections() // junctions and split lines
//
// Process runs all three. A Network is not safe for concurrent use; separate
// networks share no state.
package network

import (
	"errors"

	"github.com/chazu/fractured/pkg/fracture"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Network owns a set of fractures and the topology derived from them.
type Network struct {
	domain fracture.Domain
	opts   Options

	fractures []*fracture.Fracture
	clipped   bool
	segments  []Segment
	checked   bool
	topo      *Topology
}

// New builds a network over copies of the given fractures; frs itself is not
// modified. Each copy's ID is its position in frs. Invalid fractures or an
// invalid domain abort construction.
func New(frs []*fracture.Fracture, d fracture.Domain, opts Options) (*Network, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	own := make([]*fracture.Fracture, len(frs))
	for i, f := range frs {
		if f == nil || f.NumPoints() < 3 {
			name := ""
			if f != nil {
				name = f.Name
			}
			return nil, &fracture.InvalidFractureError{Index: i, Name: name, Reason: "fewer than 3 vertices"}
		}
		own[i] = f.Clone()
		own[i].ID = i
	}
	return &Network{
		domain:    d,
		opts:      opts.withDefaults(),
		fractures: own,
	}, nil
}

// FromVertices builds fractures from raw vertex lists and a network over them.
func FromVertices(polys [][]v3.Vec, d fracture.Domain, opts Options) (*Network, error) {
	opts = opts.withDefaults()
	frs := make([]*fracture.Fracture, len(polys))
	for i, pts := range polys {
		f, err := fracture.New(pts, opts.Tolerance)
		if err != nil {
			var ife *fracture.InvalidFractureError
			if errors.As(err, &ife) {
				ife.Index = i
			}
			return nil, err
		}
		frs[i] = f
	}
	return New(frs, d, opts)
}

func (n *Network) Domain() fracture.Domain { return n.domain }

func (n *Network) Options() Options { return n.opts }

// Fractures returns copies of the fractures currently in the network, in
// input order.
func (n *Network) Fractures() []*fracture.Fracture {
	out := make([]*fracture.Fracture, len(n.fractures))
	for i, f := range n.fractures {
		out[i] = f.Clone()
	}
	return out
}

func (n *Network) NumFractures() int { return len(n.fractures) }

// ImposeExternalBoundary clips every fracture to the domain and removes the
// ones left empty. It returns the number of fractures removed; calls after
// the first do nothing.
func (n *Network) ImposeExternalBoundary() int {
	if n.clipped {
		return 0
	}
	tol := n.opts.Tolerance
	kept := n.fractures[:0]
	removed := 0
	for _, f := range n.fractures {
		if f.Clip(n.domain, tol) {
			kept = append(kept, f)
			continue
		}
		removed++
		n.opts.logf("fracture %s is outside the domain", label(f.ID, f.Name))
	}
	n.fractures = kept
	n.clipped = true
	n.checked = false
	n.segments = nil
	n.topo = nil
	n.opts.logf("impose boundary: removed %d of %d fractures", removed, removed+len(kept))
	return removed
}

// HasCheckedIntersections reports whether FindIntersections has run on the
// current fracture set.
func (n *Network) HasCheckedIntersections() bool { return n.checked }

// FindIntersections computes the intersection segment of every fracture pair.
// Pairs whose bounding boxes are apart are skipped without testing. The
// result is cached until the fracture set changes.
func (n *Network) FindIntersections() ([]Segment, error) {
	if n.checked {
		return n.segments, nil
	}
	tol := n.opts.Tolerance
	pairs, err := candidatePairs(n.fractures, tol)
	if err != nil {
		return nil, err
	}

	var segs []Segment
	for _, p := range pairs {
		a, b := n.fractures[p[0]], n.fractures[p[1]]
		s, ok, err := FindIntersection(a, b, tol)
		if err != nil {
			if n.opts.Coplanar == CoplanarIgnore && errors.Is(err, ErrDegenerateIntersection) {
				n.opts.logf("skipping %v", err)
				continue
			}
			return nil, err
		}
		if ok {
			segs = append(segs, s)
		}
	}
	n.segments = segs
	n.checked = true
	n.opts.logf("found %d intersections among %d fractures (%d candidate pairs)", len(segs), len(n.fractures), len(pairs))
	return segs, nil
}

// SplitIntersections builds the topology, finding intersections first if
// that has not happened yet.
func (n *Network) SplitIntersections() (*Topology, error) {
	if n.topo != nil && n.checked {
		return n.topo, nil
	}
	segs, err := n.FindIntersections()
	if err != nil {
		return nil, err
	}
	n.topo = buildTopology(n.domain, n.Fractures(), segs, n.opts.Tolerance)
	c := n.topo.Counts()
	n.opts.logf("split intersections: %d lines, %d junctions", c.Lines, c.Points)
	return n.topo, nil
}

// Process clips the network to its domain and builds the topology.
func (n *Network) Process() (*Topology, error) {
	n.ImposeExternalBoundary()
	return n.SplitIntersections()
}

// Topology returns the result of the last SplitIntersections or Process call.
func (n *Network) Topology() (*Topology, error) {
	if n.topo == nil {
		return nil, ErrNotProcessed
	}
	return n.topo, nil
}
