// internal/adjust/workflow_test.go
package adjust

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkforge/quillgate/internal/boundary"
	"github.com/inkforge/quillgate/internal/notify"
)

type workflowFixture struct {
	workflow   *Workflow
	proposals  *MemoryProposalStore
	boundaries *boundary.MemoryStore
	sender     *notify.MemorySender
	now        time.Time
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	now := time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC)
	proposals := NewMemoryProposalStore()
	boundaries := boundary.NewMemoryStore()
	sender := notify.NewMemorySender()

	w := NewWorkflow(proposals, boundaries, notify.NewDispatcher(sender, zap.NewNop()), zap.NewNop())
	w.now = func() time.Time { return now }

	require.NoError(t, boundaries.CreateAssignment(context.Background(), &boundary.Assignment{
		ID: "a1", CourseID: "c1", EducatorID: "e1", Title: "Essay",
		CreatedAt: now.Add(-5 * 24 * time.Hour),
		DueAt:     now.Add(9 * 24 * time.Hour),
	}))

	return &workflowFixture{workflow: w, proposals: proposals, boundaries: boundaries, sender: sender, now: now}
}

func (f *workflowFixture) addProposal(t *testing.T, id string, typ AdjustmentType) *Proposal {
	t.Helper()

	p := pendingProposal(id, f.now.Add(-time.Hour))
	p.Type = typ
	require.NoError(t, f.proposals.Create(context.Background(), p))
	return p
}

func TestWorkflow_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the boundary change and records it", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustReduceAccess)

		decided, err := f.workflow.Approve(ctx, "p1", "e1", "worth a try")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, decided.Status)
		assert.Equal(t, "e1", decided.DecidedBy)
		require.NotNil(t, decided.DecidedAt)
		assert.Equal(t, f.now, *decided.DecidedAt)

		asg, err := f.boundaries.GetAssignment(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, 3, asg.Boundaries.QuestionsPerHour)
		assert.Equal(t, boundary.ReflectionAnalytical, asg.Boundaries.ReflectionRequirement)

		history, err := f.boundaries.AdjustmentHistory(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "p1", history[0].ProposalID)
		assert.Equal(t, "e1", history[0].Actor)
		assert.Equal(t, boundary.DefaultConfig(), history[0].Previous)
		assert.Equal(t, asg.Boundaries, history[0].Updated)

		stored, err := f.proposals.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, stored.Status)
	})

	t.Run("notifies every affected student once", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustReduceAccess)

		_, err := f.workflow.Approve(ctx, "p1", "e1", "")
		require.NoError(t, err)

		sent := f.sender.Sent()
		require.Len(t, sent, 3)
		for _, studentID := range []string{"st1", "st2", "st3"} {
			got := f.sender.SentTo(studentID)
			require.Len(t, got, 1, "student %s", studentID)
			n := got[0]
			assert.Equal(t, notify.TypeBoundaryAdjusted, n.Type)
			assert.Equal(t, notify.PriorityLow, n.Priority)
			assert.Contains(t, n.Message, "Essay")
			assert.Equal(t, "a1", n.Metadata["assignment_id"])
			assert.Equal(t, "p1", n.Metadata["proposal_id"])
			assert.NotEmpty(t, n.ID)
		}
	})

	t.Run("second approval fails without side effects", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustReduceAccess)

		_, err := f.workflow.Approve(ctx, "p1", "e1", "")
		require.NoError(t, err)

		_, err = f.workflow.Approve(ctx, "p1", "e2", "")
		assert.ErrorIs(t, err, ErrNotPending)

		history, err := f.boundaries.AdjustmentHistory(ctx, "a1")
		require.NoError(t, err)
		assert.Len(t, history, 1)
		assert.Len(t, f.sender.Sent(), 3)
	})

	t.Run("notification failure does not undo the approval", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustReduceAccess)
		f.sender.FailWith(notify.ErrDeliveryFailed)

		decided, err := f.workflow.Approve(ctx, "p1", "e1", "")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, decided.Status)
		assert.Empty(t, f.sender.Sent())

		asg, err := f.boundaries.GetAssignment(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, 3, asg.Boundaries.QuestionsPerHour)
	})

	t.Run("unknown proposal", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.workflow.Approve(ctx, "ghost", "e1", "")
		assert.ErrorIs(t, err, ErrProposalNotFound)
	})

	t.Run("missing assignment leaves the proposal pending", func(t *testing.T) {
		f := newWorkflowFixture(t)
		p := pendingProposal("p1", f.now.Add(-time.Hour))
		p.AssignmentID = "gone"
		require.NoError(t, f.proposals.Create(ctx, p))

		_, err := f.workflow.Approve(ctx, "p1", "e1", "")
		assert.ErrorIs(t, err, boundary.ErrAssignmentNotFound)

		stored, err := f.proposals.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status)
	})
}

func TestWorkflow_ApproveConfigMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("increase support", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustIncreaseSupport)

		_, err := f.workflow.Approve(ctx, "p1", "e1", "")
		require.NoError(t, err)

		asg, err := f.boundaries.GetAssignment(ctx, "a1")
		require.NoError(t, err)
		assert.True(t, asg.Boundaries.ProactivePrompts)
		assert.True(t, asg.Boundaries.StruggleDetection)
		assert.Equal(t, boundary.ComplexitySimplified, asg.Boundaries.QuestionComplexity)
		assert.Equal(t, 5, asg.Boundaries.QuestionsPerHour) // untouched
	})

	t.Run("modify complexity", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustModifyComplexity)

		_, err := f.workflow.Approve(ctx, "p1", "e1", "")
		require.NoError(t, err)

		asg, err := f.boundaries.GetAssignment(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, boundary.ComplexitySimplified, asg.Boundaries.QuestionComplexity)
		assert.True(t, asg.Boundaries.ShowExamples)
		assert.False(t, asg.Boundaries.ProactivePrompts)
	})

	t.Run("temporal shift installs a phased schedule", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustTemporalShift)

		_, err := f.workflow.Approve(ctx, "p1", "e1", "")
		require.NoError(t, err)

		asg, err := f.boundaries.GetAssignment(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, asg.Boundaries.Schedule, 3)
		assert.Equal(t, boundary.PhaseEarly, asg.Boundaries.Schedule[0].Phase)
		assert.Equal(t, 6, asg.Boundaries.Schedule[0].QuestionsPerHour)
		assert.Equal(t, 4, asg.Boundaries.Schedule[1].QuestionsPerHour)
		assert.Equal(t, 2, asg.Boundaries.Schedule[2].QuestionsPerHour)
		assert.Equal(t, boundary.ComplexitySimplified, asg.Boundaries.Schedule[2].Complexity)
	})
}

func TestWorkflow_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("records the decision without touching boundaries", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustReduceAccess)

		decided, err := f.workflow.Reject(ctx, "p1", "e1", "class settles next week")
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, decided.Status)
		assert.Equal(t, "class settles next week", decided.DecisionNotes)

		asg, err := f.boundaries.GetAssignment(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, boundary.DefaultConfig(), asg.Boundaries)

		history, err := f.boundaries.AdjustmentHistory(ctx, "a1")
		require.NoError(t, err)
		assert.Empty(t, history)
		assert.Empty(t, f.sender.Sent())
	})

	t.Run("blank reason fails before anything is read", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustReduceAccess)

		_, err := f.workflow.Reject(ctx, "p1", "e1", "   ")
		assert.ErrorIs(t, err, ErrReasonRequired)

		stored, err := f.proposals.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status)
	})

	t.Run("decided proposal cannot be rejected", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.addProposal(t, "p1", AdjustReduceAccess)

		_, err := f.workflow.Approve(ctx, "p1", "e1", "")
		require.NoError(t, err)

		_, err = f.workflow.Reject(ctx, "p1", "e2", "second thoughts")
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("unknown proposal", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.workflow.Reject(ctx, "ghost", "e1", "reason")
		assert.ErrorIs(t, err, ErrProposalNotFound)
	})
}
