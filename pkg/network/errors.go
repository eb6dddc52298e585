package network

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateIntersection marks fracture pairs whose intersection is an
	// area rather than a line.
	ErrDegenerateIntersection = errors.New("degenerate intersection")
	// ErrNotProcessed is returned by accessors whose stage has not run yet.
	ErrNotProcessed = errors.New("network not processed")
)

// DegenerateIntersectionError reports two coplanar fractures that overlap.
// A and B are fracture IDs with A < B.
type DegenerateIntersectionError struct {
	A, B         int
	NameA, NameB string
}

func (e *DegenerateIntersectionError) Error() string {
	return fmt.Sprintf("fractures %s and %s are coplanar and overlap",
		label(e.A, e.NameA), label(e.B, e.NameB))
}

func (e *DegenerateIntersectionError) Is(target error) bool {
	return target == ErrDegenerateIntersection
}

func label(id int, name string) string {
	if name != "" {
		return fmt.Sprintf("%d (%s)", id, name)
	}
	return fmt.Sprint(id)
}
