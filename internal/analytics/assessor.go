// internal/analytics/assessor.go
package analytics

import "fmt"

// deduction is one row of the effectiveness penalty model.
type deduction struct {
	penalty   int
	triggered func(a ClassAnalytics, t Thresholds) bool
	issue     func(a ClassAnalytics, t Thresholds) string
}

// deductions is the fixed, ordered penalty table. Identical input must
// produce identical output.
var deductions = []deduction{
	{
		penalty: 20,
		triggered: func(a ClassAnalytics, t Thresholds) bool {
			return a.OverDependentRatio > t.HighOverDependenceRatio
		},
		issue: func(a ClassAnalytics, t Thresholds) string {
			return fmt.Sprintf("%.0f%% of students exceed the %.0f questions/hour dependency threshold", a.OverDependentRatio*100, t.OverDependentRate)
		},
	},
	{
		penalty: 15,
		triggered: func(a ClassAnalytics, t Thresholds) bool {
			return a.UnderUtilizingRatio > t.HighUnderUtilizationRatio
		},
		issue: func(a ClassAnalytics, t Thresholds) string {
			return fmt.Sprintf("%.0f%% of the class is under strain yet never uses the assistant", a.UnderUtilizingRatio*100)
		},
	},
	{
		penalty: 15,
		triggered: func(a ClassAnalytics, t Thresholds) bool {
			return a.AvgReflectionQuality < t.LowReflectionQuality
		},
		issue: func(a ClassAnalytics, t Thresholds) string {
			return fmt.Sprintf("average reflection quality %.0f is below the %.0f target", a.AvgReflectionQuality, t.LowReflectionQuality)
		},
	},
	{
		penalty: 10,
		triggered: func(a ClassAnalytics, t Thresholds) bool {
			return a.CompletionRate < t.LowCompletionRate
		},
		issue: func(a ClassAnalytics, t Thresholds) string {
			return fmt.Sprintf("completion rate %.0f%% is below %.0f%%", a.CompletionRate*100, t.LowCompletionRate*100)
		},
	},
	{
		penalty: 10,
		triggered: func(a ClassAnalytics, t Thresholds) bool {
			return a.Boundary.UtilizationRate < t.LowUtilizationRate
		},
		issue: func(a ClassAnalytics, t Thresholds) string {
			return fmt.Sprintf("only %.0f%% of students use the assistant at all", a.Boundary.UtilizationRate*100)
		},
	},
}

// Assessor scores how well the current boundary configuration is serving a
// class.
type Assessor struct {
	thresholds Thresholds
}

// NewAssessor creates an assessor with the given calibration.
func NewAssessor(thresholds Thresholds) *Assessor {
	return &Assessor{thresholds: thresholds}
}

// Assess walks the deduction table against a snapshot. The score starts at
// 100, loses each triggered penalty, and floors at 0.
func (as *Assessor) Assess(a ClassAnalytics) EffectivenessReport {
	report := EffectivenessReport{Score: 100}
	for _, d := range deductions {
		if d.triggered(a, as.thresholds) {
			report.Score -= d.penalty
			report.Issues = append(report.Issues, d.issue(a, as.thresholds))
		}
	}
	if report.Score < 0 {
		report.Score = 0
	}
	return report
}
