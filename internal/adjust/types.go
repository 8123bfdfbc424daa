// internal/adjust/types.go
package adjust

import (
	"strings"
	"time"

	"github.com/inkforge/quillgate/internal/analytics"
)

// Pattern names a recurring class-level behavior the detector looks for.
// Patterns are independent: one metrics window can fire several at once.
type Pattern string

const (
	PatternOverDependence       Pattern = "over_dependence"
	PatternUnderUtilization     Pattern = "under_utilization"
	PatternLowEngagement        Pattern = "low_engagement"
	PatternCompletionChallenges Pattern = "completion_challenges"
)

// AdjustmentType is the kind of boundary change a proposal asks for. Each
// pattern maps to exactly one type.
type AdjustmentType string

const (
	AdjustReduceAccess     AdjustmentType = "reduce_access"
	AdjustIncreaseSupport  AdjustmentType = "increase_support"
	AdjustModifyComplexity AdjustmentType = "modify_complexity"
	AdjustTemporalShift    AdjustmentType = "temporal_shift"
)

// Status is the proposal lifecycle state. Proposals start pending and end in
// exactly one terminal state; there is no auto-approval path.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// PerformanceMetrics is the class-level rolling window the detector runs
// against. Rates are fractions in [0,1]; quality is 0-100.
type PerformanceMetrics struct {
	AssignmentID         string        `json:"assignment_id"`
	WindowStart          time.Time     `json:"window_start"`
	WindowEnd            time.Time     `json:"window_end"`
	DependencyRate       float64       `json:"dependency_rate"`
	UsageRate            float64       `json:"usage_rate"`
	StrugglingRate       float64       `json:"struggling_rate"`
	AvgReflectionQuality float64       `json:"avg_reflection_quality"`
	CompletionRate       float64       `json:"completion_rate"`
	AvgTimeOnTask        time.Duration `json:"avg_time_on_task"`
}

// NewPerformanceMetrics projects a class snapshot onto the detector's input
// shape. The window is the snapshot's analysis window ending at generation
// time.
func NewPerformanceMetrics(snap analytics.ClassAnalytics, window time.Duration) PerformanceMetrics {
	return PerformanceMetrics{
		AssignmentID:         snap.AssignmentID,
		WindowStart:          snap.GeneratedAt.Add(-window),
		WindowEnd:            snap.GeneratedAt,
		DependencyRate:       snap.OverDependentRatio,
		UsageRate:            snap.Boundary.UtilizationRate,
		StrugglingRate:       snap.StrugglingRatio,
		AvgReflectionQuality: snap.AvgReflectionQuality,
		CompletionRate:       snap.CompletionRate,
		AvgTimeOnTask:        snap.AvgTimeToComplete,
	}
}

// Evidence is one metric observation backing a detected pattern.
type Evidence struct {
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Trend     string  `json:"trend"`
}

// DetectedPattern is a pattern match with its confidence and the metric
// observations that triggered it.
type DetectedPattern struct {
	Pattern    Pattern    `json:"pattern"`
	Confidence float64    `json:"confidence"`
	Evidence   []Evidence `json:"evidence"`
	DetectedAt time.Time  `json:"detected_at"`
}

// Proposal is a concrete boundary adjustment awaiting an educator decision.
// Each proposal belongs to exactly one assignment.
type Proposal struct {
	ID               string         `json:"id"`
	AssignmentID     string         `json:"assignment_id"`
	CourseID         string         `json:"course_id"`
	Pattern          Pattern        `json:"pattern"`
	Type             AdjustmentType `json:"type"`
	Reason           string         `json:"reason"`
	SpecificChange   string         `json:"specific_change"`
	AffectedStudents []string       `json:"affected_students"`
	ExpectedOutcome  string         `json:"expected_outcome"`
	Evidence         []Evidence     `json:"evidence"`
	Confidence       float64        `json:"confidence"`
	Status           Status         `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	DecidedAt        *time.Time     `json:"decided_at,omitempty"`
	DecidedBy        string         `json:"decided_by,omitempty"`
	DecisionNotes    string         `json:"decision_notes,omitempty"`
}

// Approve transitions a pending proposal to approved. Acting on a decided
// proposal fails with ErrNotPending and leaves the proposal untouched.
func (p *Proposal) Approve(actorID, notes string, at time.Time) error {
	if p.Status != StatusPending {
		return ErrNotPending
	}
	p.Status = StatusApproved
	p.DecidedAt = &at
	p.DecidedBy = actorID
	p.DecisionNotes = notes
	return nil
}

// Reject transitions a pending proposal to rejected. The reason is mandatory
// and is validated before the state check so a blank reason never consumes
// the transition.
func (p *Proposal) Reject(actorID, reason string, at time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	if p.Status != StatusPending {
		return ErrNotPending
	}
	p.Status = StatusRejected
	p.DecidedAt = &at
	p.DecidedBy = actorID
	p.DecisionNotes = reason
	return nil
}
