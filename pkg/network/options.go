package network

import (
	"fmt"
	"log"

	"github.com/chazu/fractured/pkg/geom"
)

// CoplanarPolicy selects what happens when two fractures lie in the same
// plane and overlap with positive area.
type CoplanarPolicy int

const (
	// CoplanarError fails the intersection stage with a DegenerateIntersectionError.
	CoplanarError CoplanarPolicy = iota
	// CoplanarIgnore treats the pair as not intersecting.
	CoplanarIgnore
)

func (p CoplanarPolicy) String() string {
	switch p {
	case CoplanarError:
		return "error"
	case CoplanarIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("CoplanarPolicy(%d)", int(p))
	}
}

// ParseCoplanarPolicy accepts the names printed by CoplanarPolicy.String.
func ParseCoplanarPolicy(s string) (CoplanarPolicy, error) {
	switch s {
	case "", "error":
		return CoplanarError, nil
	case "ignore":
		return CoplanarIgnore, nil
	}
	return CoplanarError, fmt.Errorf("unknown coplanar policy %q (want error or ignore)", s)
}

// Options configures a Network. The zero value is usable: a non-positive
// Tolerance means geom.DefaultTolerance and a nil Logger discards progress
// messages.
type Options struct {
	Tolerance float64
	Coplanar  CoplanarPolicy
	Logger    *log.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Tolerance: geom.DefaultTolerance}
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = geom.DefaultTolerance
	}
	return o
}

func (o Options) logf(format string, args ...interface{}) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}
