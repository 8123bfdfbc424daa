// internal/analytics/types.go
package analytics

import (
	"time"

	"github.com/inkforge/quillgate/internal/boundary"
	"github.com/inkforge/quillgate/internal/telemetry"
)

// BoundarySnapshot echoes the boundary configuration a snapshot was computed
// under, plus how the class is interacting with it.
type BoundarySnapshot struct {
	QuestionsPerHour int `json:"questions_per_hour"`

	// UtilizationRate is the fraction of the roster with at least one AI
	// interaction inside the analysis window.
	UtilizationRate float64 `json:"utilization_rate"`

	// ImpactScore (0-100) is the share of active students whose usage rate
	// sits at or above BindingUsageFraction of the limit - how hard the
	// boundary currently bites.
	ImpactScore float64 `json:"impact_score"`
}

// ClassAnalytics is a point-in-time rollup for one (course, assignment)
// pair. All ratio fields are in [0,1]. Snapshots are value objects: they are
// replaced on recompute, never mutated in place.
type ClassAnalytics struct {
	CourseID             string           `json:"course_id"`
	AssignmentID         string           `json:"assignment_id"`
	GeneratedAt          time.Time        `json:"generated_at"`
	StudentCount         int              `json:"student_count"`
	AvgAIUsageRate       float64          `json:"avg_ai_usage_rate"`
	AvgReflectionQuality float64          `json:"avg_reflection_quality"`
	StrugglingRatio      float64          `json:"struggling_ratio"`
	OverDependentRatio   float64          `json:"over_dependent_ratio"`
	UnderUtilizingRatio  float64          `json:"under_utilizing_ratio"`
	CompletionRate       float64          `json:"completion_rate"`
	AvgTimeToComplete    time.Duration    `json:"avg_time_to_complete"`
	Boundary             BoundarySnapshot `json:"boundary"`
}

// StudentMetrics is the per-student working row the aggregator computes from
// raw telemetry. Rows are recomputed fresh on every call; they are a view,
// never a record of truth.
type StudentMetrics struct {
	StudentID         string                      `json:"student_id"`
	UsageRate         float64                     `json:"usage_rate"`
	Interactions      int                         `json:"interactions"`
	ScoredReflections int                         `json:"scored_reflections"`
	SessionTime       time.Duration               `json:"session_time"`
	ReflectionQuality float64                     `json:"reflection_quality"`
	IndependenceScore float64                     `json:"independence_score"`
	ProgressRate      float64                     `json:"progress_rate"`
	CognitiveLoad     telemetry.CognitiveLoad     `json:"cognitive_load"`
	IndependenceTrend telemetry.IndependenceTrend `json:"independence_trend"`
	Submitted         bool                        `json:"submitted"`
}

// Segment is a behavioral classification tag. Exactly one applies to each
// student at evaluation time.
type Segment string

const (
	SegmentOverDependent  Segment = "over_dependent"
	SegmentUnderUtilizing Segment = "under_utilizing"
	SegmentStruggling     Segment = "struggling"
	SegmentThriving       Segment = "thriving"
	SegmentProgressing    Segment = "progressing"
)

// StudentSegment is one student's classification with the metrics that
// produced it.
type StudentSegment struct {
	StudentID         string  `json:"student_id"`
	Segment           Segment `json:"segment"`
	UsageRate         float64 `json:"usage_rate"`
	ReflectionQuality float64 `json:"reflection_quality"`
	IndependenceScore float64 `json:"independence_score"`
	ProgressRate      float64 `json:"progress_rate"`
	PrimaryIssue      string  `json:"primary_issue"`
}

// SegmentGroup collects the students sharing a segment. Groups with no
// students are omitted from segmenter output.
type SegmentGroup struct {
	Segment  Segment          `json:"segment"`
	Students []StudentSegment `json:"students"`
}

// EffectivenessReport scores the current boundary configuration. Score
// starts at 100 and each triggered issue deducts a fixed penalty; it never
// goes below 0.
type EffectivenessReport struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues"`
}

// RecommendationKind tags the three recommendation shapes.
type RecommendationKind string

const (
	RecommendationClassWide  RecommendationKind = "class_wide"
	RecommendationIndividual RecommendationKind = "individual"
	RecommendationTemporal   RecommendationKind = "temporal"
)

// BoundaryChange is one concrete setting change inside a class-wide
// recommendation.
type BoundaryChange struct {
	Setting  string `json:"setting"`
	Current  string `json:"current"`
	Proposed string `json:"proposed"`
	Reason   string `json:"reason"`
}

// ClassWideRecommendation suggests configuration changes for the whole class.
type ClassWideRecommendation struct {
	EffectivenessScore int              `json:"effectiveness_score"`
	Issues             []string         `json:"issues"`
	Changes            []BoundaryChange `json:"changes"`
}

// IndividualRecommendation is a per-student boundary suggestion with a
// monitoring horizon.
type IndividualRecommendation struct {
	StudentID           string  `json:"student_id"`
	Segment             Segment `json:"segment"`
	RecommendedBoundary string  `json:"recommended_boundary"`
	Monitoring          string  `json:"monitoring"`
}

// IndividualBundle groups the per-student recommendations emitted together.
type IndividualBundle struct {
	Students []IndividualRecommendation `json:"students"`
}

// TemporalRecommendation maps assignment progress onto a support level.
type TemporalRecommendation struct {
	Phase        boundary.Phase `json:"phase"`
	Progress     float64        `json:"progress"`
	SupportLevel string         `json:"support_level"`
	Suggestion   string         `json:"suggestion"`
}

// BoundaryRecommendation is ephemeral analysis output: one kind tag plus the
// matching payload. Recommendations are advisory and are never actioned
// directly - changes flow through proposals and the approval workflow.
type BoundaryRecommendation struct {
	Kind         RecommendationKind       `json:"kind"`
	CourseID     string                   `json:"course_id"`
	AssignmentID string                   `json:"assignment_id"`
	GeneratedAt  time.Time                `json:"generated_at"`
	ClassWide    *ClassWideRecommendation `json:"class_wide,omitempty"`
	Individual   *IndividualBundle        `json:"individual,omitempty"`
	Temporal     *TemporalRecommendation  `json:"temporal,omitempty"`
}
