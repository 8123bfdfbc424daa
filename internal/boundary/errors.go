// internal/boundary/errors.go
package boundary

import "errors"

var (
	// ErrAssignmentNotFound is returned when an assignment ID resolves to
	// nothing. Callers surface it; nothing in this module retries.
	ErrAssignmentNotFound = errors.New("boundary: assignment not found")

	// ErrLogNotFound is returned when an adjustment log entry does not exist.
	ErrLogNotFound = errors.New("boundary: adjustment log entry not found")

	// ErrImpactRecorded is returned when impact metrics are submitted for a
	// log entry that already carries them. The impact annotation is the only
	// late write the log permits, and it is one-shot.
	ErrImpactRecorded = errors.New("boundary: impact already recorded")

	// ErrInvalidConfig is returned when a boundary configuration document
	// fails schema validation before persistence.
	ErrInvalidConfig = errors.New("boundary: invalid configuration document")
)
