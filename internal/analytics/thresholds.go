// internal/analytics/thresholds.go
package analytics

import "time"

// Thresholds carries the calibration constants behind segmentation and
// effectiveness scoring. The values are hand-tuned against pilot cohorts
// and adjusted through configuration, never derived at runtime.
type Thresholds struct {
	// AnalysisWindow bounds how far back sessions and interactions are read.
	AnalysisWindow time.Duration

	// OverDependentRate is the per-student usage rate (interactions/hour)
	// above which the student counts as over-dependent.
	OverDependentRate float64

	// UnderUtilizingRate is the usage rate below which a strained student
	// counts as under-utilizing rather than struggling.
	UnderUtilizingRate float64

	// ThrivingReflection and ThrivingIndependence are the minimum scores
	// (0-100) a student needs on both axes to count as thriving.
	ThrivingReflection   float64
	ThrivingIndependence float64

	// Effectiveness deduction triggers.
	HighOverDependenceRatio   float64
	HighUnderUtilizationRatio float64
	LowReflectionQuality      float64
	LowCompletionRate         float64
	LowUtilizationRate        float64

	// LowEffectivenessScore is the score below which a class-wide
	// recommendation is emitted.
	LowEffectivenessScore int

	// EarlyStruggleRatio decides whether the early-phase temporal
	// recommendation asks for increased brainstorming support.
	EarlyStruggleRatio float64

	// BindingUsageFraction is the share of the questions-per-hour limit at
	// which a student's usage counts as constrained by the boundary; it
	// feeds the impact score.
	BindingUsageFraction float64
}

// DefaultThresholds returns the production calibration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AnalysisWindow:            7 * 24 * time.Hour,
		OverDependentRate:         5.0,
		UnderUtilizingRate:        1.0,
		ThrivingReflection:        70,
		ThrivingIndependence:      70,
		HighOverDependenceRatio:   0.3,
		HighUnderUtilizationRatio: 0.2,
		LowReflectionQuality:      60,
		LowCompletionRate:         0.7,
		LowUtilizationRate:        0.5,
		LowEffectivenessScore:     70,
		EarlyStruggleRatio:        0.3,
		BindingUsageFraction:      0.8,
	}
}
