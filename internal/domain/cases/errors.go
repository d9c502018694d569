package cases

import (
	"errors"
	"fmt"
)

// ErrInvalidMetadata indicates a required incident field is missing or out of range.
var ErrInvalidMetadata = errors.New("invalid case metadata")

// ErrCaseState indicates an operation illegal in the case's current state,
// including a second investigation started while one is running.
var ErrCaseState = errors.New("operation not allowed in current case state")

// ErrNotFound indicates the case id is unknown for the tenant.
var ErrNotFound = errors.New("case not found")

func invalidMetadata(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidMetadata, msg)
}

// StateError wraps ErrCaseState with the offending transition for operator logs.
func StateError(id CaseID, from State, op string) error {
	return fmt.Errorf("%w: case %s in state %q cannot %s", ErrCaseState, id, from, op)
}
