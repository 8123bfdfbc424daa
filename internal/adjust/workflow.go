// internal/adjust/workflow.go
package adjust

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inkforge/quillgate/internal/boundary"
	"github.com/inkforge/quillgate/internal/notify"
)

// Workflow owns proposal decisions. Approvals mutate the assignment's
// boundary configuration through the store's atomic swap; rejections only
// record the decision. Both transitions are one-shot.
type Workflow struct {
	proposals  ProposalStore
	boundaries boundary.Store
	notifier   *notify.Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWorkflow creates the decision workflow.
func NewWorkflow(proposals ProposalStore, boundaries boundary.Store, notifier *notify.Dispatcher, logger *zap.Logger) *Workflow {
	return &Workflow{
		proposals:  proposals,
		boundaries: boundaries,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}
}

// assignmentLock returns the mutex serializing decisions for one assignment.
func (w *Workflow) assignmentLock(assignmentID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, ok := w.locks[assignmentID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[assignmentID] = l
	}
	return l
}

// Approve applies a pending proposal: it computes the new boundary
// configuration from the proposal type, swaps it in atomically with its log
// entry, marks the proposal approved, and notifies every affected student.
// Notification failures are logged and swallowed; the approval stands.
func (w *Workflow) Approve(ctx context.Context, proposalID, actorID, notes string) (*Proposal, error) {
	p, err := w.proposals.Get(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("loading proposal: %w", err)
	}
	if p.Status != StatusPending {
		return nil, ErrNotPending
	}

	lock := w.assignmentLock(p.AssignmentID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: a concurrent decision may have landed between
	// the first read and lock acquisition.
	p, err = w.proposals.Get(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("loading proposal: %w", err)
	}
	if p.Status != StatusPending {
		return nil, ErrNotPending
	}

	asg, err := w.boundaries.GetAssignment(ctx, p.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("loading assignment %s: %w", p.AssignmentID, err)
	}

	next := nextConfig(asg.Boundaries, p.Type)
	entry := &boundary.AdjustmentLog{
		AssignmentID: asg.ID,
		ProposalID:   p.ID,
		Reason:       p.Reason,
		Actor:        actorID,
		Notes:        notes,
	}
	if err := w.boundaries.UpdateBoundaries(ctx, asg.ID, next, entry); err != nil {
		return nil, fmt.Errorf("applying boundary change: %w", err)
	}

	if err := p.Approve(actorID, notes, w.now()); err != nil {
		return nil, err
	}
	if err := w.proposals.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("marking proposal approved: %w", err)
	}

	w.logger.Info("proposal approved",
		zap.String("proposal_id", p.ID),
		zap.String("assignment_id", asg.ID),
		zap.String("type", string(p.Type)),
		zap.String("actor", actorID))

	w.notifyStudents(ctx, asg, p)
	return p, nil
}

// Reject records a rejection. The reason is validated before anything is
// read so a blank reason never has side effects.
func (w *Workflow) Reject(ctx context.Context, proposalID, actorID, reason string) (*Proposal, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	p, err := w.proposals.Get(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("loading proposal: %w", err)
	}
	if p.Status != StatusPending {
		return nil, ErrNotPending
	}

	lock := w.assignmentLock(p.AssignmentID)
	lock.Lock()
	defer lock.Unlock()

	p, err = w.proposals.Get(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("loading proposal: %w", err)
	}
	if err := p.Reject(actorID, reason, w.now()); err != nil {
		return nil, err
	}
	if err := w.proposals.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("marking proposal rejected: %w", err)
	}

	w.logger.Info("proposal rejected",
		zap.String("proposal_id", p.ID),
		zap.String("assignment_id", p.AssignmentID),
		zap.String("actor", actorID))
	return p, nil
}

// notifyStudents tells each affected student their boundaries changed.
func (w *Workflow) notifyStudents(ctx context.Context, asg *boundary.Assignment, p *Proposal) {
	for _, studentID := range p.AffectedStudents {
		n := notify.Notification{
			RecipientID: studentID,
			Type:        notify.TypeBoundaryAdjusted,
			Title:       "Assistant settings updated",
			Message:     fmt.Sprintf("The AI assistance settings for %q changed: %s", asg.Title, p.SpecificChange),
			Priority:    notify.PriorityLow,
			Metadata: map[string]string{
				"assignment_id": asg.ID,
				"proposal_id":   p.ID,
			},
		}
		if err := w.notifier.Dispatch(ctx, n); err != nil {
			w.logger.Warn("student notification failed",
				zap.String("student_id", studentID),
				zap.String("proposal_id", p.ID),
				zap.Error(err))
		}
	}
}

// nextConfig derives the post-approval configuration from the current one.
// The mapping per adjustment type is fixed.
func nextConfig(cur boundary.Config, t AdjustmentType) boundary.Config {
	next := cur
	switch t {
	case AdjustReduceAccess:
		next.QuestionsPerHour = 3
		next.ReflectionRequirement = boundary.ReflectionAnalytical
	case AdjustIncreaseSupport:
		next.ProactivePrompts = true
		next.QuestionComplexity = boundary.ComplexitySimplified
		next.StruggleDetection = true
	case AdjustModifyComplexity:
		next.QuestionComplexity = boundary.ComplexitySimplified
		next.ShowExamples = true
	case AdjustTemporalShift:
		next.Schedule = []boundary.PhaseLimit{
			{Phase: boundary.PhaseEarly, QuestionsPerHour: 6, Complexity: boundary.ComplexityStandard},
			{Phase: boundary.PhaseMiddle, QuestionsPerHour: 4, Complexity: boundary.ComplexityStandard},
			{Phase: boundary.PhaseLate, QuestionsPerHour: 2, Complexity: boundary.ComplexitySimplified},
		}
	}
	return next
}
