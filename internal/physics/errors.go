package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFloor is returned when a boundary is built without any floor surface.
	ErrNoFloor = errors.New("physics: boundary needs at least one floor surface")
	// ErrStepInProgress is returned when Step is called while another Step is running.
	ErrStepInProgress = errors.New("physics: step already in progress")
)

// InvalidShapeError reports a zero, negative or non-finite geometric parameter.
// It is fatal to the construction call only.
type InvalidShapeError struct {
	Shape string
	Param string
	Value float64
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("physics: invalid %s: %s must be positive and finite, got %g", e.Shape, e.Param, e.Value)
}

// DegenerateStepError is returned by Step for dt <= 0 (or NaN/Inf). The step is a no-op.
type DegenerateStepError struct {
	Dt float64
}

func (e *DegenerateStepError) Error() string {
	return fmt.Sprintf("physics: degenerate step dt=%g ignored", e.Dt)
}

// UnresolvedPenetrationWarning is reported when boundary resolution hits its iteration cap
// with a body still overlapping a surface. The body keeps the residual overlap.
type UnresolvedPenetrationWarning struct {
	Body       BodyID
	Surface    string
	Depth      float64
	Iterations int
}

func (w *UnresolvedPenetrationWarning) Error() string {
	return fmt.Sprintf("physics: body %d still %.5f into %q after %d iterations", w.Body, w.Depth, w.Surface, w.Iterations)
}
