// internal/analytics/recommender.go
package analytics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/inkforge/quillgate/internal/boundary"
)

// Monitoring horizons for individual recommendations.
const (
	monitoringStruggling    = "1-2 weeks"
	monitoringOverDependent = "2-3 weeks"
)

// Recommender turns analytics, segments, and effectiveness into structured
// boundary recommendations. Output is advisory only; nothing here mutates
// configuration.
type Recommender struct {
	thresholds Thresholds
	now        func() time.Time
}

// NewRecommender creates a recommender with the given calibration.
func NewRecommender(thresholds Thresholds) *Recommender {
	return &Recommender{thresholds: thresholds, now: time.Now}
}

// Recommend produces zero or more recommendations: a class-wide one when
// effectiveness dips below the threshold, an individual bundle when the
// struggling or over-dependent segments are non-empty, and always exactly
// one temporal recommendation derived from the assignment timeline.
func (r *Recommender) Recommend(asg *boundary.Assignment, snap ClassAnalytics, groups []SegmentGroup, report EffectivenessReport) []BoundaryRecommendation {
	generated := r.now()
	base := BoundaryRecommendation{
		CourseID:     snap.CourseID,
		AssignmentID: snap.AssignmentID,
		GeneratedAt:  generated,
	}

	var recs []BoundaryRecommendation

	if report.Score < r.thresholds.LowEffectivenessScore {
		rec := base
		rec.Kind = RecommendationClassWide
		rec.ClassWide = &ClassWideRecommendation{
			EffectivenessScore: report.Score,
			Issues:             report.Issues,
			Changes:            r.classWideChanges(snap),
		}
		recs = append(recs, rec)
	}

	if bundle := r.individualBundle(groups); bundle != nil {
		rec := base
		rec.Kind = RecommendationIndividual
		rec.Individual = bundle
		recs = append(recs, rec)
	}

	rec := base
	rec.Kind = RecommendationTemporal
	rec.Temporal = r.temporal(asg, snap)
	recs = append(recs, rec)

	return recs
}

// classWideChanges maps each triggered issue onto concrete setting changes.
func (r *Recommender) classWideChanges(snap ClassAnalytics) []BoundaryChange {
	var changes []BoundaryChange
	cur := snap.Boundary.QuestionsPerHour

	if snap.OverDependentRatio > r.thresholds.HighOverDependenceRatio {
		lowered := cur - 2
		if lowered < 1 {
			lowered = 1
		}
		changes = append(changes,
			BoundaryChange{
				Setting:  "questions_per_hour",
				Current:  strconv.Itoa(cur),
				Proposed: strconv.Itoa(lowered),
				Reason:   fmt.Sprintf("%.0f%% of students lean on the assistant past the dependency threshold", snap.OverDependentRatio*100),
			},
			BoundaryChange{
				Setting:  "reflection_requirement",
				Current:  "current",
				Proposed: string(boundary.ReflectionAnalytical),
				Reason:   "deeper reflection between questions slows reflexive asking",
			},
		)
	}

	if snap.UnderUtilizingRatio > r.thresholds.HighUnderUtilizationRatio {
		changes = append(changes,
			BoundaryChange{
				Setting:  "proactive_prompts",
				Current:  "disabled",
				Proposed: "enabled",
				Reason:   "strained students are not reaching for help on their own",
			},
			BoundaryChange{
				Setting:  "struggle_detection",
				Current:  "current",
				Proposed: "heightened",
				Reason:   "raise sensitivity so silent struggle surfaces sooner",
			},
		)
	}

	if snap.AvgReflectionQuality < r.thresholds.LowReflectionQuality {
		changes = append(changes, BoundaryChange{
			Setting:  "question_complexity",
			Current:  "current",
			Proposed: string(boundary.ComplexitySimplified),
			Reason:   fmt.Sprintf("reflection quality averaging %.0f suggests prompts are pitched too high", snap.AvgReflectionQuality),
		})
	}

	return changes
}

// individualBundle builds per-student suggestions for the segments that need
// active monitoring; nil when neither segment has students.
func (r *Recommender) individualBundle(groups []SegmentGroup) *IndividualBundle {
	var students []IndividualRecommendation
	for _, g := range groups {
		switch g.Segment {
		case SegmentStruggling:
			for _, st := range g.Students {
				students = append(students, IndividualRecommendation{
					StudentID:           st.StudentID,
					Segment:             g.Segment,
					RecommendedBoundary: "add scaffolding prompts and enable struggle detection",
					Monitoring:          monitoringStruggling,
				})
			}
		case SegmentOverDependent:
			for _, st := range g.Students {
				students = append(students, IndividualRecommendation{
					StudentID:           st.StudentID,
					Segment:             g.Segment,
					RecommendedBoundary: "tighten questions-per-hour and require analytical reflections",
					Monitoring:          monitoringOverDependent,
				})
			}
		}
	}
	if len(students) == 0 {
		return nil
	}
	return &IndividualBundle{Students: students}
}

// temporal maps the assignment's elapsed-time fraction onto a phase and a
// fixed support suggestion for that phase.
func (r *Recommender) temporal(asg *boundary.Assignment, snap ClassAnalytics) *TemporalRecommendation {
	now := r.now()
	rec := &TemporalRecommendation{
		Phase:    asg.CurrentPhase(now),
		Progress: asg.Progress(now),
	}

	switch rec.Phase {
	case boundary.PhaseEarly:
		if snap.StrugglingRatio > r.thresholds.EarlyStruggleRatio {
			rec.SupportLevel = "increased"
			rec.Suggestion = "increase brainstorming support while ideas are still forming"
		} else {
			rec.SupportLevel = "standard"
			rec.Suggestion = "keep standard brainstorming support through the ideation phase"
		}
	case boundary.PhaseMiddle:
		rec.SupportLevel = "moderate"
		rec.Suggestion = "hold moderate, structure-focused support while drafts take shape"
	default:
		rec.SupportLevel = "minimal"
		rec.Suggestion = "reduce to 2-3 questions/hour for revision-only support"
	}

	return rec
}
