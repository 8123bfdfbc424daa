// internal/adjust/proposer.go
package adjust

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkforge/quillgate/internal/analytics"
	"github.com/inkforge/quillgate/internal/boundary"
)

// adjustmentFor fixes the proposal type per pattern.
var adjustmentFor = map[Pattern]AdjustmentType{
	PatternOverDependence:       AdjustReduceAccess,
	PatternUnderUtilization:     AdjustIncreaseSupport,
	PatternLowEngagement:        AdjustModifyComplexity,
	PatternCompletionChallenges: AdjustTemporalShift,
}

// Proposer turns detected patterns into concrete adjustment proposals. It
// never persists anything; the gate decides what survives.
type Proposer struct {
	thresholds Thresholds
	now        func() time.Time
}

// NewProposer creates a proposer with the given calibration.
func NewProposer(thresholds Thresholds) *Proposer {
	return &Proposer{thresholds: thresholds, now: time.Now}
}

// Propose builds one pending proposal per detected pattern. The affected
// student list comes from re-evaluating the pattern's per-student condition
// over the working rows, so the list names students, not ratios.
func (p *Proposer) Propose(asg *boundary.Assignment, m PerformanceMetrics, rows []analytics.StudentMetrics, patterns []DetectedPattern) []*Proposal {
	proposals := make([]*Proposal, 0, len(patterns))
	for _, det := range patterns {
		proposals = append(proposals, &Proposal{
			ID:               uuid.New().String(),
			AssignmentID:     asg.ID,
			CourseID:         asg.CourseID,
			Pattern:          det.Pattern,
			Type:             adjustmentFor[det.Pattern],
			Reason:           p.reason(det.Pattern, m),
			SpecificChange:   specificChange(adjustmentFor[det.Pattern]),
			AffectedStudents: p.affectedStudents(det.Pattern, rows),
			ExpectedOutcome:  expectedOutcome(adjustmentFor[det.Pattern]),
			Evidence:         det.Evidence,
			Confidence:       det.Confidence,
			Status:           StatusPending,
			CreatedAt:        p.now(),
		})
	}
	return proposals
}

// reason writes the human-readable justification, quoting the metric values
// that fired the pattern.
func (p *Proposer) reason(pattern Pattern, m PerformanceMetrics) string {
	t := p.thresholds
	switch pattern {
	case PatternOverDependence:
		return fmt.Sprintf("%.0f%% of the class leans on AI past the %.0f%% dependency threshold",
			m.DependencyRate*100, t.DependencyRate*100)
	case PatternUnderUtilization:
		return fmt.Sprintf("only %.0f%% of students engaged the assistant while %.0f%% show struggle signals",
			m.UsageRate*100, m.StrugglingRate*100)
	case PatternLowEngagement:
		return fmt.Sprintf("reflection quality averages %.0f against a floor of %.0f despite %.0f%% of the class actively asking",
			m.AvgReflectionQuality, t.LowReflectionQuality, m.UsageRate*100)
	case PatternCompletionChallenges:
		return fmt.Sprintf("completion sits at %.0f%% while average time on task runs %.0f minutes",
			m.CompletionRate*100, m.AvgTimeOnTask.Minutes())
	default:
		return string(pattern)
	}
}

// affectedStudents re-evaluates the pattern's per-student condition.
func (p *Proposer) affectedStudents(pattern Pattern, rows []analytics.StudentMetrics) []string {
	var ids []string
	for _, row := range rows {
		var hit bool
		switch pattern {
		case PatternOverDependence:
			hit = row.UsageRate > p.thresholds.StudentOverUseRate
		case PatternUnderUtilization:
			hit = row.CognitiveLoad.Strained() && row.Interactions == 0
		case PatternLowEngagement:
			hit = row.ReflectionQuality < p.thresholds.LowReflectionQuality && row.Interactions > 0
		case PatternCompletionChallenges:
			hit = !row.Submitted
		}
		if hit {
			ids = append(ids, row.StudentID)
		}
	}
	return ids
}

func specificChange(t AdjustmentType) string {
	switch t {
	case AdjustReduceAccess:
		return "lower questions-per-hour to 3 and require analytical reflections"
	case AdjustIncreaseSupport:
		return "enable proactive prompts and struggle detection, simplify question complexity"
	case AdjustModifyComplexity:
		return "simplify question complexity and show worked examples"
	case AdjustTemporalShift:
		return "phase the limits over the timeline: 6/h early, 4/h middle, 2/h simplified late"
	default:
		return string(t)
	}
}

func expectedOutcome(t AdjustmentType) string {
	switch t {
	case AdjustReduceAccess:
		return "students attempt more of the drafting themselves before asking"
	case AdjustIncreaseSupport:
		return "struggling students start engaging instead of stalling silently"
	case AdjustModifyComplexity:
		return "reflections become substantive instead of perfunctory"
	case AdjustTemporalShift:
		return "support tapers as drafts mature and finishing work shifts back to students"
	default:
		return string(t)
	}
}
