package engine

import (
	"errors"
	"fmt"
)

// FetchError reports a failure to load the project snapshot. Fatal:
// classification needs the complete task and section lists, so no partial
// snapshot is ever used.
type FetchError struct {
	Resource string // "tasks" or "sections"
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ClassificationError reports an unusable classifier response. Fatal: without
// proposals there is nothing to apply, and there is no fallback heuristic.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// ErrInvalidReference marks a proposal whose task or section ID does not
// exist in the snapshot. Recovered per proposal, never fatal.
var ErrInvalidReference = errors.New("invalid reference")

// ErrNoApplies is returned when at least one proposal reached the apply phase
// and none succeeded. Operators script around the exit code, so a fully
// failed run is surfaced as a process failure while partial success is not.
var ErrNoApplies = errors.New("no proposals were applied")
