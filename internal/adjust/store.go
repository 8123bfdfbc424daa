// internal/adjust/store.go
package adjust

import (
	"context"
	"time"
)

// ProposalStore persists adjustment proposals. Implementations must return
// ErrProposalNotFound when an ID resolves to nothing.
type ProposalStore interface {
	// Create persists a new proposal.
	Create(ctx context.Context, p *Proposal) error

	// Get returns the proposal with the given ID.
	Get(ctx context.Context, id string) (*Proposal, error)

	// Update rewrites the decision fields of an existing proposal.
	Update(ctx context.Context, p *Proposal) error

	// ListByAssignment returns all proposals for an assignment, newest first.
	ListByAssignment(ctx context.Context, assignmentID string) ([]*Proposal, error)

	// ListPending returns the undecided proposals for an assignment, newest
	// first.
	ListPending(ctx context.Context, assignmentID string) ([]*Proposal, error)

	// ExistsSince reports whether any proposal of the given type, in any
	// status, was created for the assignment at or after the cutoff.
	ExistsSince(ctx context.Context, assignmentID string, t AdjustmentType, since time.Time) (bool, error)
}
