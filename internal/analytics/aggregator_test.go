// internal/analytics/aggregator_test.go
package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkforge/quillgate/internal/boundary"
	"github.com/inkforge/quillgate/internal/telemetry"
)

func testAggregator(t *testing.T, now time.Time) (*Aggregator, *telemetry.MemoryReader, *boundary.MemoryStore) {
	t.Helper()

	reader := telemetry.NewMemoryReader()
	store := boundary.NewMemoryStore()
	agg := NewAggregator(reader, store, NewSnapshotCache(5*time.Minute), DefaultThresholds(), zap.NewNop())
	agg.now = func() time.Time { return now }
	return agg, reader, store
}

// seedClass builds a four-student class against assignment a1 in course c1:
// st1 writes steadily with scored reflections, st2 leans hard on the
// assistant, st3 is strained and silent, st4 never shows up.
func seedClass(t *testing.T, reader *telemetry.MemoryReader, store *boundary.MemoryStore, now time.Time) {
	t.Helper()

	require.NoError(t, store.CreateAssignment(context.Background(), &boundary.Assignment{
		ID: "a1", CourseID: "c1", EducatorID: "e1", Title: "Essay",
		CreatedAt: now.Add(-5 * 24 * time.Hour),
		DueAt:     now.Add(5 * 24 * time.Hour),
	}))

	reader.Enroll("c1", "st1", "st2", "st3", "st4")

	recent := now.Add(-24 * time.Hour)
	reader.AddSession(telemetry.WritingSession{ID: "s1", StudentID: "st1", CourseID: "c1", AssignmentID: "a1", StartedAt: recent, Duration: 2 * time.Hour})
	reader.AddSession(telemetry.WritingSession{ID: "s2", StudentID: "st2", CourseID: "c1", AssignmentID: "a1", StartedAt: recent, Duration: time.Hour})

	// Outside the analysis window; must not count.
	reader.AddSession(telemetry.WritingSession{ID: "s-old", StudentID: "st1", CourseID: "c1", AssignmentID: "a1", StartedAt: now.Add(-8 * 24 * time.Hour), Duration: 10 * time.Hour})

	q1, q2 := 80.0, 60.0
	reader.AddInteraction(telemetry.AIInteraction{ID: "i1", StudentID: "st1", AssignmentID: "a1", Kind: "question", ReflectionQuality: &q1, CreatedAt: recent})
	reader.AddInteraction(telemetry.AIInteraction{ID: "i2", StudentID: "st1", AssignmentID: "a1", Kind: "question", ReflectionQuality: &q2, CreatedAt: recent})
	for i := 0; i < 5; i++ {
		reader.AddInteraction(telemetry.AIInteraction{ID: fmt.Sprintf("i1-%d", i), StudentID: "st1", AssignmentID: "a1", Kind: "question", CreatedAt: recent})
	}
	for i := 0; i < 6; i++ {
		reader.AddInteraction(telemetry.AIInteraction{ID: fmt.Sprintf("i2-%d", i), StudentID: "st2", AssignmentID: "a1", Kind: "question", CreatedAt: recent})
	}
	reader.AddInteraction(telemetry.AIInteraction{ID: "i-old", StudentID: "st1", AssignmentID: "a1", Kind: "question", CreatedAt: now.Add(-8 * 24 * time.Hour)})

	reader.AddSubmission(telemetry.Submission{StudentID: "st1", AssignmentID: "a1", SubmittedAt: recent})

	reader.SetProfile(telemetry.StudentProfile{StudentID: "st1", CourseID: "c1", CognitiveLoad: telemetry.LoadOptimal, IndependenceTrend: telemetry.TrendIncreasing, IndependenceScore: 75, ProgressRate: 0.8})
	reader.SetProfile(telemetry.StudentProfile{StudentID: "st2", CourseID: "c1", CognitiveLoad: telemetry.LoadOptimal, IndependenceTrend: telemetry.TrendStable, IndependenceScore: 50, ProgressRate: 0.6})
	reader.SetProfile(telemetry.StudentProfile{StudentID: "st3", CourseID: "c1", CognitiveLoad: telemetry.LoadHigh, IndependenceTrend: telemetry.TrendStable, IndependenceScore: 45, ProgressRate: 0.2})
}

func TestAggregator_Snapshot(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	agg, reader, store := testAggregator(t, now)
	seedClass(t, reader, store, now)
	ctx := context.Background()

	snap, err := agg.Snapshot(ctx, "c1", "a1")
	require.NoError(t, err)

	assert.Equal(t, "c1", snap.CourseID)
	assert.Equal(t, "a1", snap.AssignmentID)
	assert.Equal(t, now, snap.GeneratedAt)
	assert.Equal(t, 4, snap.StudentCount)

	// st1: 7 interactions over 2h of drafting; st2: 6 over 1h.
	assert.InDelta(t, (3.5+6.0)/4, snap.AvgAIUsageRate, 1e-9)
	// Weighted over scored reflections only: (80+60)/2.
	assert.InDelta(t, 70, snap.AvgReflectionQuality, 1e-9)
	assert.InDelta(t, 0.25, snap.OverDependentRatio, 1e-9)  // st2 at 6/hour
	assert.InDelta(t, 0.25, snap.UnderUtilizingRatio, 1e-9) // st3 strained, silent
	assert.InDelta(t, 0.25, snap.StrugglingRatio, 1e-9)     // st3
	assert.InDelta(t, 0.25, snap.CompletionRate, 1e-9)      // st1 submitted
	assert.Equal(t, 45*time.Minute, snap.AvgTimeToComplete)

	assert.Equal(t, 5, snap.Boundary.QuestionsPerHour)
	assert.InDelta(t, 0.5, snap.Boundary.UtilizationRate, 1e-9) // st1, st2 active
	// Binding threshold 0.8*5 = 4/hour; only st2 sits at or above it.
	assert.InDelta(t, 50, snap.Boundary.ImpactScore, 1e-9)
}

func TestAggregator_SnapshotCached(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	agg, reader, store := testAggregator(t, now)
	seedClass(t, reader, store, now)
	ctx := context.Background()

	first, err := agg.Snapshot(ctx, "c1", "a1")
	require.NoError(t, err)

	// New telemetry inside the TTL does not change the served snapshot.
	for i := 0; i < 12; i++ {
		reader.AddInteraction(telemetry.AIInteraction{ID: fmt.Sprintf("late-%d", i), StudentID: "st3", AssignmentID: "a1", Kind: "question", CreatedAt: now.Add(-time.Hour)})
	}

	second, err := agg.Snapshot(ctx, "c1", "a1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Invalidation forces a recompute that sees the new interactions.
	agg.cache.Invalidate("c1/a1")
	third, err := agg.Snapshot(ctx, "c1", "a1")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, third.Boundary.UtilizationRate, 1e-9)
}

func TestAggregator_SnapshotEdges(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	agg, _, store := testAggregator(t, now)
	ctx := context.Background()

	t.Run("unknown assignment", func(t *testing.T) {
		_, err := agg.Snapshot(ctx, "c1", "missing")
		assert.ErrorIs(t, err, boundary.ErrAssignmentNotFound)
	})

	t.Run("empty roster yields zeroed snapshot", func(t *testing.T) {
		require.NoError(t, store.CreateAssignment(ctx, &boundary.Assignment{
			ID: "a2", CourseID: "c9", CreatedAt: now.Add(-24 * time.Hour), DueAt: now.Add(24 * time.Hour),
		}))

		snap, err := agg.Snapshot(ctx, "c9", "a2")
		require.NoError(t, err)
		assert.Equal(t, 0, snap.StudentCount)
		assert.Zero(t, snap.AvgAIUsageRate)
		assert.Zero(t, snap.CompletionRate)
		assert.Equal(t, 5, snap.Boundary.QuestionsPerHour)
	})
}

func TestAggregator_StudentMetrics(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	agg, reader, store := testAggregator(t, now)
	seedClass(t, reader, store, now)
	ctx := context.Background()

	rows, err := agg.StudentMetrics(ctx, "c1", "a1")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byID := make(map[string]StudentMetrics)
	for _, m := range rows {
		byID[m.StudentID] = m
	}

	st1 := byID["st1"]
	assert.InDelta(t, 3.5, st1.UsageRate, 1e-9)
	assert.Equal(t, 7, st1.Interactions)
	assert.Equal(t, 2, st1.ScoredReflections)
	assert.InDelta(t, 70, st1.ReflectionQuality, 1e-9)
	assert.Equal(t, 2*time.Hour, st1.SessionTime)
	assert.True(t, st1.Submitted)
	assert.Equal(t, telemetry.TrendIncreasing, st1.IndependenceTrend)

	st3 := byID["st3"]
	assert.Zero(t, st3.UsageRate)
	assert.Equal(t, telemetry.LoadHigh, st3.CognitiveLoad)
	assert.False(t, st3.Submitted)

	// No profile and no activity at all: fully zeroed row.
	st4 := byID["st4"]
	assert.Zero(t, st4.UsageRate)
	assert.Zero(t, st4.ReflectionQuality)
	assert.Empty(t, st4.CognitiveLoad)
}
