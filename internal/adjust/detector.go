// internal/adjust/detector.go
package adjust

import "time"

// Evidence metric names. The gate and the educator UI key off these, so they
// are stable identifiers, not display strings.
const (
	metricDependencyRate    = "ai_dependency_rate"
	metricUsageRate         = "ai_usage_rate"
	metricStrugglingRate    = "struggling_rate"
	metricReflectionQuality = "avg_reflection_quality"
	metricCompletionRate    = "completion_rate"
	metricTimeOnTask        = "avg_time_on_task_minutes"
)

const (
	trendRising  = "rising"
	trendFalling = "falling"
)

// Detector evaluates a metrics window against the four known class
// patterns. Patterns are checked independently: a window can match none,
// one, or several.
type Detector struct {
	thresholds Thresholds
	now        func() time.Time
}

// NewDetector creates a detector with the given calibration.
func NewDetector(thresholds Thresholds) *Detector {
	return &Detector{thresholds: thresholds, now: time.Now}
}

// Detect returns every pattern the window matches, each with its confidence
// and the metric observations behind it. All comparisons are strict.
func (d *Detector) Detect(m PerformanceMetrics) []DetectedPattern {
	t := d.thresholds
	at := d.now()

	var detected []DetectedPattern

	if m.DependencyRate > t.DependencyRate {
		confidence := t.ConfidenceOverDependence
		if m.DependencyRate > t.DependencyRateHigh {
			confidence = t.ConfidenceOverDependenceHigh
		}
		detected = append(detected, DetectedPattern{
			Pattern:    PatternOverDependence,
			Confidence: confidence,
			Evidence: []Evidence{
				observation(metricDependencyRate, m.DependencyRate, t.DependencyRate),
			},
			DetectedAt: at,
		})
	}

	if m.UsageRate < t.LowUsageRate && m.StrugglingRate > t.StrugglingRate {
		detected = append(detected, DetectedPattern{
			Pattern:    PatternUnderUtilization,
			Confidence: t.ConfidenceUnderUtilization,
			Evidence: []Evidence{
				observation(metricUsageRate, m.UsageRate, t.LowUsageRate),
				observation(metricStrugglingRate, m.StrugglingRate, t.StrugglingRate),
			},
			DetectedAt: at,
		})
	}

	if m.AvgReflectionQuality < t.LowReflectionQuality && m.UsageRate > t.EngagedUsageRate {
		detected = append(detected, DetectedPattern{
			Pattern:    PatternLowEngagement,
			Confidence: t.ConfidenceLowEngagement,
			Evidence: []Evidence{
				observation(metricReflectionQuality, m.AvgReflectionQuality, t.LowReflectionQuality),
				observation(metricUsageRate, m.UsageRate, t.EngagedUsageRate),
			},
			DetectedAt: at,
		})
	}

	if m.CompletionRate < t.LowCompletionRate && m.AvgTimeOnTask > t.LongTimeOnTask {
		detected = append(detected, DetectedPattern{
			Pattern:    PatternCompletionChallenges,
			Confidence: t.ConfidenceCompletionChallenges,
			Evidence: []Evidence{
				observation(metricCompletionRate, m.CompletionRate, t.LowCompletionRate),
				observation(metricTimeOnTask, m.AvgTimeOnTask.Minutes(), t.LongTimeOnTask.Minutes()),
			},
			DetectedAt: at,
		})
	}

	return detected
}

// observation builds one evidence row. Trend is relative to the threshold:
// above it the metric reads as rising, otherwise falling.
func observation(metric string, value, threshold float64) Evidence {
	trend := trendFalling
	if value > threshold {
		trend = trendRising
	}
	return Evidence{
		Metric:    metric,
		Value:     value,
		Threshold: threshold,
		Trend:     trend,
	}
}
