// internal/analytics/segmenter.go
package analytics

import "fmt"

// segmentRule pairs a predicate with the segment it assigns. Rules are
// evaluated in declaration order and the first match wins.
type segmentRule struct {
	segment Segment
	matches func(m StudentMetrics, t Thresholds) bool
	issue   func(m StudentMetrics, t Thresholds) string
}

// segmentRules is the fixed cascade. Dependency signals outrank
// cognitive-load signals: a student who is both dependent and struggling
// gets the over_dependent label.
var segmentRules = []segmentRule{
	{
		segment: SegmentOverDependent,
		matches: func(m StudentMetrics, t Thresholds) bool {
			return m.UsageRate > t.OverDependentRate
		},
		issue: func(m StudentMetrics, t Thresholds) string {
			return fmt.Sprintf("AI usage at %.1f questions/hour exceeds the %.0f/hour dependency threshold", m.UsageRate, t.OverDependentRate)
		},
	},
	{
		segment: SegmentUnderUtilizing,
		matches: func(m StudentMetrics, t Thresholds) bool {
			return m.CognitiveLoad.Strained() && m.UsageRate < t.UnderUtilizingRate
		},
		issue: func(m StudentMetrics, t Thresholds) string {
			return fmt.Sprintf("cognitive load %s with almost no assistant use", m.CognitiveLoad)
		},
	},
	{
		segment: SegmentStruggling,
		matches: func(m StudentMetrics, t Thresholds) bool {
			return m.CognitiveLoad.Strained()
		},
		issue: func(m StudentMetrics, t Thresholds) string {
			return fmt.Sprintf("cognitive load %s despite regular assistant use", m.CognitiveLoad)
		},
	},
	{
		segment: SegmentThriving,
		matches: func(m StudentMetrics, t Thresholds) bool {
			return m.ReflectionQuality >= t.ThrivingReflection && m.IndependenceScore >= t.ThrivingIndependence
		},
		issue: func(m StudentMetrics, t Thresholds) string {
			return "none"
		},
	},
	{
		segment: SegmentProgressing,
		matches: func(m StudentMetrics, t Thresholds) bool {
			return true
		},
		issue: func(m StudentMetrics, t Thresholds) string {
			return "steady progress, not yet fully independent"
		},
	},
}

// Segmenter classifies students into exactly one behavioral segment each.
// Classification is total: the final rule always matches.
type Segmenter struct {
	thresholds Thresholds
}

// NewSegmenter creates a segmenter with the given calibration.
func NewSegmenter(thresholds Thresholds) *Segmenter {
	return &Segmenter{thresholds: thresholds}
}

// Classify assigns the first matching segment to a student.
func (s *Segmenter) Classify(m StudentMetrics) StudentSegment {
	for _, rule := range segmentRules {
		if rule.matches(m, s.thresholds) {
			return StudentSegment{
				StudentID:         m.StudentID,
				Segment:           rule.segment,
				UsageRate:         m.UsageRate,
				ReflectionQuality: m.ReflectionQuality,
				IndependenceScore: m.IndependenceScore,
				ProgressRate:      m.ProgressRate,
				PrimaryIssue:      rule.issue(m, s.thresholds),
			}
		}
	}
	// Unreachable: the final rule matches everything.
	return StudentSegment{StudentID: m.StudentID, Segment: SegmentProgressing}
}

// Segment classifies every row and groups the results by segment in rule
// order, omitting empty groups. Segments are recomputed fresh each call and
// never persisted.
func (s *Segmenter) Segment(rows []StudentMetrics) []SegmentGroup {
	grouped := make(map[Segment][]StudentSegment)
	for _, m := range rows {
		seg := s.Classify(m)
		grouped[seg.Segment] = append(grouped[seg.Segment], seg)
	}

	var groups []SegmentGroup
	for _, rule := range segmentRules {
		if students := grouped[rule.segment]; len(students) > 0 {
			groups = append(groups, SegmentGroup{Segment: rule.segment, Students: students})
		}
	}
	return groups
}
