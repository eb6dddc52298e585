package fracture

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/paulmach/orb"
)

// Rect is the domain of a two-dimensional network, where fractures are line
// segments instead of polygons.
type Rect struct {
	XMin float64 `json:"xmin" yaml:"xmin"`
	XMax float64 `json:"xmax" yaml:"xmax"`
	YMin float64 `json:"ymin" yaml:"ymin"`
	YMax float64 `json:"ymax" yaml:"ymax"`
}

// Validate checks that the rectangle has positive extent along both axes.
func (r Rect) Validate() error {
	if !(r.XMin < r.XMax) {
		return fmt.Errorf("%w: x range [%g, %g] is empty", ErrInvalidDomain, r.XMin, r.XMax)
	}
	if !(r.YMin < r.YMax) {
		return fmt.Errorf("%w: y range [%g, %g] is empty", ErrInvalidDomain, r.YMin, r.YMax)
	}
	return nil
}

// Corners returns the corners counter-clockwise from (XMin, YMin). Side i of
// the rectangle runs from corner i to corner i+1: bottom, right, top, left.
func (r Rect) Corners() [4]v2.Vec {
	return [4]v2.Vec{
		{X: r.XMin, Y: r.YMin},
		{X: r.XMax, Y: r.YMin},
		{X: r.XMax, Y: r.YMax},
		{X: r.XMin, Y: r.YMax},
	}
}

// Bound returns the rectangle as an orb bound.
func (r Rect) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{r.XMin, r.YMin}, Max: orb.Point{r.XMax, r.YMax}}
}
