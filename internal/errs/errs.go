package errs

import "errors"

var (
	// ErrDeviceNotFound is returned when an index does not resolve to a
	// record in the current day sequence.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrIndexOutOfRange is returned for index-addressed operations whose
	// index does not reference an existing element. Indices are only valid
	// against the current sequence state; callers must not cache them
	// across mutations.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidSnapshot is returned by import when the document is missing
	// the top-level devices field. No state is mutated.
	ErrInvalidSnapshot = errors.New("invalid snapshot: missing devices")

	// ErrEmptySelection is returned by bulk operations when nothing is
	// selected. Surfaced to the user as a warning, not a failure.
	ErrEmptySelection = errors.New("no devices selected")

	// ErrNotSelecting is returned when a selection operation runs while
	// bulk-select mode is off.
	ErrNotSelecting = errors.New("bulk select mode is not active")

	// ErrConfirmationRequired gates destructive operations (import apply,
	// full wipe) behind an explicit confirmation step.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrInvalidStatus is returned when a status value is outside the
	// closed enumeration.
	ErrInvalidStatus = errors.New("invalid status")
)
