// internal/analytics/aggregator.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inkforge/quillgate/internal/boundary"
	"github.com/inkforge/quillgate/internal/telemetry"
)

// Aggregator turns raw per-student telemetry into ClassAnalytics snapshots.
// Snapshot results are cached with a bounded TTL; per-student rows are always
// computed fresh. Aggregation is read-only and never mutates telemetry.
type Aggregator struct {
	reader     telemetry.Reader
	store      boundary.Store
	cache      *SnapshotCache
	thresholds Thresholds
	logger     *zap.Logger
	now        func() time.Time
}

// NewAggregator creates an aggregator. The cache is a required dependency so
// callers (and tests) control its TTL and clock.
func NewAggregator(reader telemetry.Reader, store boundary.Store, cache *SnapshotCache, thresholds Thresholds, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		reader:     reader,
		store:      store,
		cache:      cache,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

// Snapshot returns the ClassAnalytics for a (course, assignment) pair. A
// cache hit inside the TTL returns the prior snapshot verbatim. An unknown
// assignment fails with boundary.ErrAssignmentNotFound; an empty roster
// produces a zeroed snapshot, never an error.
func (a *Aggregator) Snapshot(ctx context.Context, courseID, assignmentID string) (ClassAnalytics, error) {
	key := courseID + "/" + assignmentID
	if snap, ok := a.cache.Get(key); ok {
		snapshotCacheHits.Inc()
		return snap, nil
	}
	snapshotCacheMisses.Inc()

	asg, err := a.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return ClassAnalytics{}, fmt.Errorf("aggregating class analytics: %w", err)
	}

	rows, err := a.collect(ctx, courseID, assignmentID)
	if err != nil {
		return ClassAnalytics{}, fmt.Errorf("aggregating class analytics: %w", err)
	}

	snap := a.rollup(courseID, assignmentID, asg.Boundaries, rows)
	a.cache.Set(key, snap)

	a.logger.Debug("class analytics computed",
		zap.String("course_id", courseID),
		zap.String("assignment_id", assignmentID),
		zap.Int("students", snap.StudentCount))

	return snap, nil
}

// StudentMetrics returns the per-student working rows for a (course,
// assignment) pair, computed fresh on every call.
func (a *Aggregator) StudentMetrics(ctx context.Context, courseID, assignmentID string) ([]StudentMetrics, error) {
	if _, err := a.store.GetAssignment(ctx, assignmentID); err != nil {
		return nil, fmt.Errorf("collecting student metrics: %w", err)
	}
	rows, err := a.collect(ctx, courseID, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("collecting student metrics: %w", err)
	}
	return rows, nil
}

// collect reads the telemetry window and folds it into one row per enrolled
// student. Students with no recorded activity still get a row with zeroed
// metrics so ratios stay over the full roster.
func (a *Aggregator) collect(ctx context.Context, courseID, assignmentID string) ([]StudentMetrics, error) {
	roster, err := a.reader.Roster(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, nil
	}

	since := a.now().Add(-a.thresholds.AnalysisWindow)

	sessions, err := a.reader.Sessions(ctx, courseID, assignmentID, since)
	if err != nil {
		return nil, fmt.Errorf("reading sessions: %w", err)
	}
	interactions, err := a.reader.Interactions(ctx, assignmentID, since)
	if err != nil {
		return nil, fmt.Errorf("reading interactions: %w", err)
	}
	submissions, err := a.reader.Submissions(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("reading submissions: %w", err)
	}
	profiles, err := a.reader.Profiles(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}

	byStudent := make(map[string]*StudentMetrics, len(roster))
	rows := make([]StudentMetrics, len(roster))
	for i, id := range roster {
		rows[i] = StudentMetrics{StudentID: id}
		byStudent[id] = &rows[i]
	}

	for _, s := range sessions {
		if m, ok := byStudent[s.StudentID]; ok {
			m.SessionTime += s.Duration
		}
	}

	qualitySums := make(map[string]float64)
	for _, in := range interactions {
		m, ok := byStudent[in.StudentID]
		if !ok {
			continue
		}
		m.Interactions++
		if in.ReflectionQuality != nil {
			m.ScoredReflections++
			qualitySums[in.StudentID] += *in.ReflectionQuality
		}
	}

	for _, sub := range submissions {
		if m, ok := byStudent[sub.StudentID]; ok {
			m.Submitted = true
		}
	}

	for _, p := range profiles {
		if m, ok := byStudent[p.StudentID]; ok {
			m.CognitiveLoad = p.CognitiveLoad
			m.IndependenceTrend = p.IndependenceTrend
			m.IndependenceScore = p.IndependenceScore
			m.ProgressRate = p.ProgressRate
		}
	}

	for i := range rows {
		m := &rows[i]
		if hours := m.SessionTime.Hours(); hours > 0 {
			m.UsageRate = float64(m.Interactions) / hours
		}
		if m.ScoredReflections > 0 {
			m.ReflectionQuality = qualitySums[m.StudentID] / float64(m.ScoredReflections)
		}
	}

	return rows, nil
}

// rollup folds per-student rows into the class snapshot. Every ratio is a
// fraction of the roster, so all of them land in [0,1] by construction.
func (a *Aggregator) rollup(courseID, assignmentID string, cfg boundary.Config, rows []StudentMetrics) ClassAnalytics {
	snap := ClassAnalytics{
		CourseID:     courseID,
		AssignmentID: assignmentID,
		GeneratedAt:  a.now(),
		StudentCount: len(rows),
		Boundary:     BoundarySnapshot{QuestionsPerHour: cfg.QuestionsPerHour},
	}
	if len(rows) == 0 {
		return snap
	}

	var (
		usageSum      float64
		qualitySum    float64
		scoredTotal   int
		sessionSum    time.Duration
		overDependent int
		underUtilized int
		struggling    int
		submitted     int
		active        int
		binding       int
	)

	bindingRate := a.thresholds.BindingUsageFraction * float64(cfg.QuestionsPerHour)

	for _, m := range rows {
		usageSum += m.UsageRate
		qualitySum += m.ReflectionQuality * float64(m.ScoredReflections)
		scoredTotal += m.ScoredReflections
		sessionSum += m.SessionTime

		if m.UsageRate > a.thresholds.OverDependentRate {
			overDependent++
		}
		if m.CognitiveLoad.Strained() && m.Interactions == 0 {
			underUtilized++
		}
		if m.CognitiveLoad.Strained() || m.IndependenceTrend == telemetry.TrendDecreasing {
			struggling++
		}
		if m.Submitted {
			submitted++
		}
		if m.Interactions > 0 {
			active++
			if bindingRate > 0 && m.UsageRate >= bindingRate {
				binding++
			}
		}
	}

	n := float64(len(rows))
	snap.AvgAIUsageRate = usageSum / n
	if scoredTotal > 0 {
		snap.AvgReflectionQuality = qualitySum / float64(scoredTotal)
	}
	snap.OverDependentRatio = float64(overDependent) / n
	snap.UnderUtilizingRatio = float64(underUtilized) / n
	snap.StrugglingRatio = float64(struggling) / n
	snap.CompletionRate = float64(submitted) / n
	snap.AvgTimeToComplete = time.Duration(int64(sessionSum) / int64(len(rows)))
	snap.Boundary.UtilizationRate = float64(active) / n
	if active > 0 {
		snap.Boundary.ImpactScore = 100 * float64(binding) / float64(active)
	}

	return snap
}
