// internal/adjust/errors.go
package adjust

import "errors"

var (
	// ErrProposalNotFound is returned when a proposal ID resolves to nothing.
	ErrProposalNotFound = errors.New("adjust: proposal not found")

	// ErrNotPending is returned when a decision targets a proposal that has
	// already been decided.
	ErrNotPending = errors.New("adjust: proposal is not pending")

	// ErrReasonRequired is returned when a rejection arrives without a reason.
	ErrReasonRequired = errors.New("adjust: rejection reason required")
)
