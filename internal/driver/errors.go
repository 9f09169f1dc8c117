package driver

import (
	"errors"
	"fmt"
)

// Domain errors for the simulation lifecycle. Every one of these is a
// caller bug or a construction failure; the driver never retries.
var (
	// ErrInvalidState indicates an API call in the wrong lifecycle
	// phase (mutating a finalized run, finalizing twice, ...).
	ErrInvalidState = errors.New("driver: invalid state for operation")

	// ErrNotInitialized indicates a batch or mutation call before
	// Init. A subset of ErrInvalidState, surfaced separately for
	// diagnostics.
	ErrNotInitialized = fmt.Errorf("%w: not initialized", ErrInvalidState)

	// ErrBatchInProgress indicates a mutation or lifecycle call while
	// a batch is executing.
	ErrBatchInProgress = fmt.Errorf("%w: batch in progress", ErrInvalidState)

	// ErrBatchPlanExhausted indicates RunNextBatch beyond the
	// configured batch plan.
	ErrBatchPlanExhausted = errors.New("driver: batch plan exhausted")

	// ErrBadPlan indicates a batch plan that cannot run.
	ErrBadPlan = errors.New("driver: invalid batch plan")

	// ErrTallyNotFound indicates a read-back of an unknown tally id.
	ErrTallyNotFound = errors.New("driver: tally not found")
)
