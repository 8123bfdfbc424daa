// internal/adjust/memory_test.go
package adjust

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProposalStore_CreateGet(t *testing.T) {
	store := NewMemoryProposalStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	p := pendingProposal("p1", now)
	require.NoError(t, store.Create(ctx, p))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// The store hands out copies, not aliases.
	got.AffectedStudents[0] = "mutated"
	again, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "st1", again.AffectedStudents[0])

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestMemoryProposalStore_Update(t *testing.T) {
	store := NewMemoryProposalStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	p := pendingProposal("p1", now)
	require.NoError(t, store.Create(ctx, p))

	require.NoError(t, p.Approve("e1", "go ahead", now.Add(time.Hour)))
	require.NoError(t, store.Update(ctx, p))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, "e1", got.DecidedBy)

	err = store.Update(ctx, pendingProposal("ghost", now))
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestMemoryProposalStore_Listing(t *testing.T) {
	store := NewMemoryProposalStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	oldest := pendingProposal("p1", now.Add(-2*time.Hour))
	decided := pendingProposal("p2", now.Add(-time.Hour))
	require.NoError(t, decided.Reject("e1", "not yet", now))
	newest := pendingProposal("p3", now)
	other := pendingProposal("p4", now)
	other.AssignmentID = "a2"

	for _, p := range []*Proposal{oldest, decided, newest, other} {
		require.NoError(t, store.Create(ctx, p))
	}

	t.Run("by assignment newest first", func(t *testing.T) {
		got, err := store.ListByAssignment(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "p3", got[0].ID)
		assert.Equal(t, "p2", got[1].ID)
		assert.Equal(t, "p1", got[2].ID)
	})

	t.Run("pending filters decided proposals", func(t *testing.T) {
		got, err := store.ListPending(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "p3", got[0].ID)
		assert.Equal(t, "p1", got[1].ID)
	})

	t.Run("unknown assignment is empty", func(t *testing.T) {
		got, err := store.ListByAssignment(ctx, "a9")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMemoryProposalStore_ExistsSince(t *testing.T) {
	store := NewMemoryProposalStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	p := pendingProposal("p1", now.Add(-3*24*time.Hour))
	require.NoError(t, store.Create(ctx, p))

	t.Run("inside the window", func(t *testing.T) {
		exists, err := store.ExistsSince(ctx, "a1", AdjustReduceAccess, now.Add(-7*24*time.Hour))
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("cutoff is inclusive", func(t *testing.T) {
		exists, err := store.ExistsSince(ctx, "a1", AdjustReduceAccess, p.CreatedAt)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("before the cutoff", func(t *testing.T) {
		exists, err := store.ExistsSince(ctx, "a1", AdjustReduceAccess, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("type mismatch", func(t *testing.T) {
		exists, err := store.ExistsSince(ctx, "a1", AdjustTemporalShift, now.Add(-7*24*time.Hour))
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
