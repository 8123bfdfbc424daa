// internal/adjust/memory.go
package adjust

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryProposalStore is an in-memory ProposalStore used by tests and local
// development.
type MemoryProposalStore struct {
	mu        sync.RWMutex
	proposals map[string]*Proposal
}

// NewMemoryProposalStore creates an empty in-memory proposal store.
func NewMemoryProposalStore() *MemoryProposalStore {
	return &MemoryProposalStore{proposals: make(map[string]*Proposal)}
}

// Create persists a copy of the proposal.
func (m *MemoryProposalStore) Create(_ context.Context, p *Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.proposals[p.ID] = cloneProposal(p)
	return nil
}

// Get resolves a proposal or fails with ErrProposalNotFound.
func (m *MemoryProposalStore) Get(_ context.Context, id string) (*Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	return cloneProposal(p), nil
}

// Update rewrites a stored proposal.
func (m *MemoryProposalStore) Update(_ context.Context, p *Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.proposals[p.ID]; !ok {
		return ErrProposalNotFound
	}
	m.proposals[p.ID] = cloneProposal(p)
	return nil
}

// ListByAssignment returns all proposals for an assignment, newest first.
func (m *MemoryProposalStore) ListByAssignment(_ context.Context, assignmentID string) ([]*Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Proposal
	for _, p := range m.proposals {
		if p.AssignmentID == assignmentID {
			out = append(out, cloneProposal(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListPending returns undecided proposals for an assignment, newest first.
func (m *MemoryProposalStore) ListPending(ctx context.Context, assignmentID string) ([]*Proposal, error) {
	all, err := m.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	var pending []*Proposal
	for _, p := range all {
		if p.Status == StatusPending {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

// ExistsSince reports whether a same-type proposal, in any status, was
// created at or after the cutoff.
func (m *MemoryProposalStore) ExistsSince(_ context.Context, assignmentID string, t AdjustmentType, since time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.proposals {
		if p.AssignmentID == assignmentID && p.Type == t && !p.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func cloneProposal(p *Proposal) *Proposal {
	out := *p
	if p.AffectedStudents != nil {
		out.AffectedStudents = append([]string(nil), p.AffectedStudents...)
	}
	if p.Evidence != nil {
		out.Evidence = append([]Evidence(nil), p.Evidence...)
	}
	if p.DecidedAt != nil {
		at := *p.DecidedAt
		out.DecidedAt = &at
	}
	return &out
}
