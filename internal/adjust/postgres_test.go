// internal/adjust/postgres_test.go
package adjust

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkforge/quillgate/internal/database"
)

func setupProposalDB(t *testing.T) *PostgresProposalStore {
	t.Helper()

	db, err := sql.Open("postgres", database.GetTestDSN())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, _ = db.Exec("DROP TABLE IF EXISTS boundary_proposals")

	store := NewPostgresProposalStore(db)
	require.NoError(t, store.InitSchema(context.Background()))
	return store
}

func storedProposal(createdAt time.Time) *Proposal {
	return &Proposal{
		ID:               uuid.New().String(),
		AssignmentID:     "a1",
		CourseID:         "c1",
		Pattern:          PatternOverDependence,
		Type:             AdjustReduceAccess,
		Reason:           "70% of the class leans on AI past the 60% dependency threshold",
		SpecificChange:   "lower questions-per-hour to 3 and require analytical reflections",
		AffectedStudents: []string{"st1", "st2", "st3"},
		ExpectedOutcome:  "students attempt more of the drafting themselves before asking",
		Evidence:         []Evidence{{Metric: "ai_dependency_rate", Value: 0.7, Threshold: 0.6, Trend: "rising"}},
		Confidence:       0.9,
		Status:           StatusPending,
		CreatedAt:        createdAt,
	}
}

func TestPostgresProposalStore_RoundTrip(t *testing.T) {
	store := setupProposalDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := storedProposal(now)
	require.NoError(t, store.Create(ctx, p))

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, PatternOverDependence, got.Pattern)
	assert.Equal(t, AdjustReduceAccess, got.Type)
	assert.Equal(t, []string{"st1", "st2", "st3"}, got.AffectedStudents)
	assert.Equal(t, p.Evidence, got.Evidence)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
	assert.Equal(t, StatusPending, got.Status)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.Nil(t, got.DecidedAt)
	assert.Empty(t, got.DecidedBy)

	_, err = store.Get(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestPostgresProposalStore_Update(t *testing.T) {
	store := setupProposalDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := storedProposal(now)
	require.NoError(t, store.Create(ctx, p))

	require.NoError(t, p.Approve("e1", "looks right", now.Add(time.Hour)))
	require.NoError(t, store.Update(ctx, p))

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, "e1", got.DecidedBy)
	assert.Equal(t, "looks right", got.DecisionNotes)
	require.NotNil(t, got.DecidedAt)
	assert.True(t, got.DecidedAt.Equal(now.Add(time.Hour)))

	ghost := storedProposal(now)
	err = store.Update(ctx, ghost)
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestPostgresProposalStore_Listing(t *testing.T) {
	store := setupProposalDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	oldest := storedProposal(now.Add(-2 * time.Hour))
	decided := storedProposal(now.Add(-time.Hour))
	require.NoError(t, decided.Reject("e1", "not yet", now))
	newest := storedProposal(now)
	other := storedProposal(now)
	other.AssignmentID = "a2"

	for _, p := range []*Proposal{oldest, decided, newest, other} {
		require.NoError(t, store.Create(ctx, p))
	}
	require.NoError(t, store.Update(ctx, decided))

	all, err := store.ListByAssignment(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newest.ID, all[0].ID)
	assert.Equal(t, decided.ID, all[1].ID)
	assert.Equal(t, oldest.ID, all[2].ID)

	pending, err := store.ListPending(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, newest.ID, pending[0].ID)
	assert.Equal(t, oldest.ID, pending[1].ID)

	empty, err := store.ListByAssignment(ctx, "a9")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostgresProposalStore_ExistsSince(t *testing.T) {
	store := setupProposalDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := storedProposal(now.Add(-3 * 24 * time.Hour))
	require.NoError(t, store.Create(ctx, p))

	exists, err := store.ExistsSince(ctx, "a1", AdjustReduceAccess, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsSince(ctx, "a1", AdjustReduceAccess, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.ExistsSince(ctx, "a1", AdjustTemporalShift, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.False(t, exists)
}
