package fracture

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFracture marks fractures rejected before any processing.
	ErrInvalidFracture = errors.New("invalid fracture")
	// ErrInvalidDomain marks boundary domains with empty or inverted extent.
	ErrInvalidDomain = errors.New("invalid domain")
)

// InvalidFractureError describes why a fracture was rejected.
// It matches ErrInvalidFracture under errors.Is.
type InvalidFractureError struct {
	Index  int    // position in the input, -1 if unknown
	Name   string // optional fracture name
	Reason string
	Err    error // underlying geometry error, if any
}

func (e *InvalidFractureError) Error() string {
	who := "fracture"
	switch {
	case e.Name != "":
		who = fmt.Sprintf("fracture %q", e.Name)
	case e.Index >= 0:
		who = fmt.Sprintf("fracture %d", e.Index)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", who, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", who, e.Reason)
}

func (e *InvalidFractureError) Is(target error) bool {
	return target == ErrInvalidFracture
}

func (e *InvalidFractureError) Unwrap() error {
	return e.Err
}
