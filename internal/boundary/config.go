// internal/boundary/config.go
package boundary

import "time"

// ReflectionLevel is how much a student must write about an assistant answer
// before asking the next question.
type ReflectionLevel string

const (
	ReflectionBasic      ReflectionLevel = "basic"
	ReflectionDetailed   ReflectionLevel = "detailed"
	ReflectionAnalytical ReflectionLevel = "analytical"
)

// Complexity selects how the assistant phrases its questions and prompts.
type Complexity string

const (
	ComplexityStandard   Complexity = "standard"
	ComplexitySimplified Complexity = "simplified"
)

// Phase names a stretch of an assignment's timeline.
type Phase string

const (
	PhaseEarly  Phase = "early"
	PhaseMiddle Phase = "middle"
	PhaseLate   Phase = "late"
)

// PhaseLimit is one entry of a phased boundary schedule.
type PhaseLimit struct {
	Phase            Phase      `json:"phase"`
	QuestionsPerHour int        `json:"questions_per_hour"`
	Complexity       Complexity `json:"complexity"`
}

// Config is the live boundary configuration for one assignment: how much AI
// assistance students may draw on and in what form. It is mutated only
// through Store.UpdateBoundaries so every change lands in the adjustment log.
type Config struct {
	QuestionsPerHour      int             `json:"questions_per_hour"`
	ReflectionRequirement ReflectionLevel `json:"reflection_requirement"`
	QuestionComplexity    Complexity      `json:"question_complexity"`
	ProactivePrompts      bool            `json:"proactive_prompts"`
	StruggleDetection     bool            `json:"struggle_detection"`
	ShowExamples          bool            `json:"show_examples"`
	Schedule              []PhaseLimit    `json:"schedule,omitempty"`
}

// DefaultConfig returns the boundary configuration assignments start with.
func DefaultConfig() Config {
	return Config{
		QuestionsPerHour:      5,
		ReflectionRequirement: ReflectionBasic,
		QuestionComplexity:    ComplexityStandard,
	}
}

// clone returns a copy whose schedule does not share backing storage.
func (c Config) clone() Config {
	if c.Schedule != nil {
		s := make([]PhaseLimit, len(c.Schedule))
		copy(s, c.Schedule)
		c.Schedule = s
	}
	return c
}

// Assignment is the record the boundary store manages. Everything beyond the
// boundary configuration and the timeline pair is owned by the platform.
type Assignment struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	EducatorID string    `json:"educator_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	DueAt      time.Time `json:"due_at"`
	Boundaries Config    `json:"boundaries"`
}

// Progress returns the fraction of the assignment timeline elapsed at now,
// clamped to [0,1]. A timeline with no usable span counts as fully elapsed.
func (a Assignment) Progress(now time.Time) float64 {
	total := a.DueAt.Sub(a.CreatedAt)
	if total <= 0 {
		return 1
	}
	p := float64(now.Sub(a.CreatedAt)) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// CurrentPhase maps elapsed progress onto the assignment phase: early below
// one third, middle below two thirds, late after that.
func (a Assignment) CurrentPhase(now time.Time) Phase {
	p := a.Progress(now)
	switch {
	case p < 1.0/3.0:
		return PhaseEarly
	case p < 2.0/3.0:
		return PhaseMiddle
	default:
		return PhaseLate
	}
}
