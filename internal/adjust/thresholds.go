// internal/adjust/thresholds.go
package adjust

import "time"

// Thresholds carries the detection and gating calibration. Every comparison
// in the detector and gate reads a named field from here; none of the cutoff
// values appear inline in pattern logic.
type Thresholds struct {
	// DependencyRate is the class over-dependence fraction above which the
	// over_dependence pattern fires; DependencyRateHigh escalates its
	// confidence.
	DependencyRate     float64
	DependencyRateHigh float64

	// LowUsageRate and StrugglingRate together define under_utilization:
	// the class is not using the assistant and is visibly struggling.
	LowUsageRate   float64
	StrugglingRate float64

	// LowReflectionQuality and EngagedUsageRate together define
	// low_engagement: heavy use with shallow reflections.
	LowReflectionQuality float64
	EngagedUsageRate     float64

	// LowCompletionRate and LongTimeOnTask together define
	// completion_challenges: long effort that is not converting into
	// submissions.
	LowCompletionRate float64
	LongTimeOnTask    time.Duration

	// Detector confidences per pattern.
	ConfidenceOverDependence       float64
	ConfidenceOverDependenceHigh   float64
	ConfidenceUnderUtilization     float64
	ConfidenceLowEngagement        float64
	ConfidenceCompletionChallenges float64

	// StudentOverUseRate is the per-student interactions-per-hour rate used
	// when the proposer lists the students behind an over_dependence pattern.
	StudentOverUseRate float64

	// Gate rules: a proposal is withheld when a same-type proposal exists
	// inside DedupeWindow, when it names fewer than MinAffectedStudents, or
	// when its mean relative evidence deviation is at or below
	// MinEvidenceDeviation.
	DedupeWindow         time.Duration
	MinAffectedStudents  int
	MinEvidenceDeviation float64
}

// DefaultThresholds returns the production calibration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DependencyRate:                 0.6,
		DependencyRateHigh:             0.7,
		LowUsageRate:                   0.3,
		StrugglingRate:                 0.4,
		LowReflectionQuality:           40,
		EngagedUsageRate:               0.5,
		LowCompletionRate:              0.5,
		LongTimeOnTask:                 120 * time.Minute,
		ConfidenceOverDependence:       0.7,
		ConfidenceOverDependenceHigh:   0.9,
		ConfidenceUnderUtilization:     0.8,
		ConfidenceLowEngagement:        0.75,
		ConfidenceCompletionChallenges: 0.85,
		StudentOverUseRate:             5.0,
		DedupeWindow:                   7 * 24 * time.Hour,
		MinAffectedStudents:            3,
		MinEvidenceDeviation:           0.2,
	}
}
