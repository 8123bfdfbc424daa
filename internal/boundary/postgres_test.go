// internal/boundary/postgres_test.go
package boundary

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkforge/quillgate/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("postgres", database.GetTestDSN())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("test database unavailable: %v", err)
	}

	// Clean slate
	_, _ = db.Exec("DROP TABLE IF EXISTS boundary_adjustment_log")
	_, _ = db.Exec("DROP TABLE IF EXISTS assignments")

	return db
}

func TestPostgresStore_InitSchema(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()

	store := NewPostgresStore(db)
	require.NoError(t, store.InitSchema(context.Background()))

	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'assignments')").Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgresStore_AssignmentRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()

	store := NewPostgresStore(db)
	ctx := context.Background()
	require.NoError(t, store.InitSchema(ctx))

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	asg := &Assignment{
		ID:         "a1",
		CourseID:   "c1",
		EducatorID: "e1",
		Title:      "Persuasive Essay",
		CreatedAt:  created,
		DueAt:      created.Add(14 * 24 * time.Hour),
	}
	require.NoError(t, store.CreateAssignment(ctx, asg))

	got, err := store.GetAssignment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Persuasive Essay", got.Title)
	assert.Equal(t, DefaultConfig(), got.Boundaries)

	_, err = store.GetAssignment(ctx, "missing")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestPostgresStore_UpdateBoundaries(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()

	store := NewPostgresStore(db)
	ctx := context.Background()
	require.NoError(t, store.InitSchema(ctx))

	now := time.Now().UTC()
	require.NoError(t, store.CreateAssignment(ctx, &Assignment{
		ID: "a1", CourseID: "c1", CreatedAt: now, DueAt: now.Add(7 * 24 * time.Hour),
	}))

	next := DefaultConfig()
	next.QuestionsPerHour = 3
	next.ReflectionRequirement = ReflectionAnalytical

	entry := &AdjustmentLog{ProposalID: "p1", Reason: "over-dependence", Actor: "e1", Notes: "trial"}
	require.NoError(t, store.UpdateBoundaries(ctx, "a1", next, entry))
	assert.Equal(t, DefaultConfig(), entry.Previous)

	got, err := store.GetAssignment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Boundaries.QuestionsPerHour)

	history, err := store.AdjustmentHistory(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "p1", history[0].ProposalID)
	assert.Equal(t, ReflectionAnalytical, history[0].Updated.ReflectionRequirement)
	assert.Nil(t, history[0].Impact)
}

func TestPostgresStore_RecordImpact(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()

	store := NewPostgresStore(db)
	ctx := context.Background()
	require.NoError(t, store.InitSchema(ctx))

	require.NoError(t, store.CreateAssignment(ctx, &Assignment{ID: "a1", CourseID: "c1", CreatedAt: time.Now()}))

	entry := &AdjustmentLog{Reason: "r", Actor: "e1"}
	require.NoError(t, store.UpdateBoundaries(ctx, "a1", DefaultConfig(), entry))

	impact := ImpactMetrics{MeasuredAt: time.Now().UTC(), AvgAIUsageRate: 1.4, AvgReflectionQuality: 70, CompletionRate: 0.8}
	require.NoError(t, store.RecordImpact(ctx, entry.ID, impact))

	err := store.RecordImpact(ctx, entry.ID, impact)
	assert.ErrorIs(t, err, ErrImpactRecorded)

	history, err := store.AdjustmentHistory(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Impact)
	assert.InDelta(t, 1.4, history[0].Impact.AvgAIUsageRate, 1e-9)
}
