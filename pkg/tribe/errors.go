package tribe

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotBusy is returned when a mutation is already in flight for the action.
	ErrSlotBusy = errors.New("another transaction for this action is in progress")
	// ErrNotConnected is returned for writes attempted without a signer.
	ErrNotConnected = errors.New("wallet not connected")
)

// ValidationError is a user input error caught before submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Stage is where a mutation failed.
type Stage string

const (
	StageSubmit  Stage = "submit"
	StageConfirm Stage = "confirm"
)

// MutationError reports a failed mutation. Dependent reads are not
// refreshed after a failure.
type MutationError struct {
	Action Action
	Target string
	Stage  Stage
	Err    error
}

func (e *MutationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s failed at %s: %v", e.Action, e.Target, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed at %s: %v", e.Action, e.Stage, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
