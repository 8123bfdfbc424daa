// internal/telemetry/types.go
package telemetry

import "time"

// CognitiveLoad is the platform's coarse estimate of how hard a student is
// working relative to their capacity. It is produced upstream; this module
// only reads it.
type CognitiveLoad string

const (
	LoadLow      CognitiveLoad = "low"
	LoadOptimal  CognitiveLoad = "optimal"
	LoadHigh     CognitiveLoad = "high"
	LoadOverload CognitiveLoad = "overload"
)

// Strained reports whether the load indicates the student is past
// comfortable working capacity.
func (l CognitiveLoad) Strained() bool {
	return l == LoadHigh || l == LoadOverload
}

// IndependenceTrend describes the direction a student's independence score
// has been moving over recent assignments.
type IndependenceTrend string

const (
	TrendIncreasing IndependenceTrend = "increasing"
	TrendStable     IndependenceTrend = "stable"
	TrendDecreasing IndependenceTrend = "decreasing"
)

// WritingSession is one continuous stretch of drafting by a student.
type WritingSession struct {
	ID           string        `json:"id"`
	StudentID    string        `json:"student_id"`
	CourseID     string        `json:"course_id"`
	AssignmentID string        `json:"assignment_id"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	WordCount    int           `json:"word_count"`
}

// AIInteraction is a single exchange between a student and the writing
// assistant. ReflectionQuality is only set when the platform scored the
// student's post-answer reflection (0-100); most interactions carry none.
type AIInteraction struct {
	ID                string    `json:"id"`
	StudentID         string    `json:"student_id"`
	AssignmentID      string    `json:"assignment_id"`
	Kind              string    `json:"kind"`
	ReflectionQuality *float64  `json:"reflection_quality,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Submission records that a student turned in an assignment.
type Submission struct {
	StudentID    string    `json:"student_id"`
	AssignmentID string    `json:"assignment_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// StudentProfile is the platform's rolling behavioral profile for a student
// within a course.
type StudentProfile struct {
	StudentID         string            `json:"student_id"`
	CourseID          string            `json:"course_id"`
	CognitiveLoad     CognitiveLoad     `json:"cognitive_load"`
	IndependenceTrend IndependenceTrend `json:"independence_trend"`
	IndependenceScore float64           `json:"independence_score"`
	ProgressRate      float64           `json:"progress_rate"`
}
