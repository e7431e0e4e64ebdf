package assembly

import (
	"fmt"
	"strings"
	"time"
)

// The pipeline surfaces exactly four error kinds. Every stage either
// returns a typed result or one of these; the run driver converts them
// into a failed Result with a stage-specific message. Callers never see
// anything else.

// GeometryError reports degenerate or incompatible input geometry, such
// as a zero-volume bounding box or a non-positive computed span.
type GeometryError struct {
	Stage  string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: geometry error: %s", e.Stage, e.Reason)
}

// ConstraintConflictError reports two or more constraints that impose
// incompatible requirements on the same degree of freedom. Indices
// refer to positions in the run's constraint slice.
type ConstraintConflictError struct {
	Indices []int
	Reason  string
}

func (e *ConstraintConflictError) Error() string {
	return fmt.Sprintf("solver: conflicting constraints %v: %s", e.Indices, e.Reason)
}

// CollisionError reports a placement that still interpenetrates after
// the single resolution pass. Pairs names the colliding entity pairs,
// e.g. "part1/connector".
type CollisionError struct {
	Pairs []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("collision: unresolved interpenetration between %s", strings.Join(e.Pairs, ", "))
}

// TimeoutError reports a run that exceeded its processing budget.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pipeline: run exceeded processing budget of %s", e.Budget)
}
