// internal/telemetry/memory.go
package telemetry

import (
	"context"
	"sync"
	"time"
)

// MemoryReader is an in-memory Reader used by tests and local development.
// Records are added through the Add* methods and returned by the Reader
// methods with the same filtering the Postgres implementation applies.
type MemoryReader struct {
	mu           sync.RWMutex
	rosters      map[string][]string // courseID -> student IDs
	sessions     []WritingSession
	interactions []AIInteraction
	submissions  []Submission
	profiles     map[string]map[string]StudentProfile // courseID -> studentID -> profile
}

// NewMemoryReader creates an empty in-memory telemetry source.
func NewMemoryReader() *MemoryReader {
	return &MemoryReader{
		rosters:  make(map[string][]string),
		profiles: make(map[string]map[string]StudentProfile),
	}
}

// Enroll adds students to a course roster.
func (m *MemoryReader) Enroll(courseID string, studentIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosters[courseID] = append(m.rosters[courseID], studentIDs...)
}

// AddSession records a writing session.
func (m *MemoryReader) AddSession(s WritingSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, s)
}

// AddInteraction records an AI exchange.
func (m *MemoryReader) AddInteraction(in AIInteraction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, in)
}

// AddSubmission records a submission.
func (m *MemoryReader) AddSubmission(s Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, s)
}

// SetProfile stores a student profile, replacing any existing one.
func (m *MemoryReader) SetProfile(p StudentProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profiles[p.CourseID] == nil {
		m.profiles[p.CourseID] = make(map[string]StudentProfile)
	}
	m.profiles[p.CourseID][p.StudentID] = p
}

// Roster returns the enrolled student IDs for a course.
func (m *MemoryReader) Roster(_ context.Context, courseID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.rosters[courseID]...), nil
}

// Sessions returns matching sessions started at or after since.
func (m *MemoryReader) Sessions(_ context.Context, courseID, assignmentID string, since time.Time) ([]WritingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []WritingSession
	for _, s := range m.sessions {
		if s.CourseID == courseID && s.AssignmentID == assignmentID && !s.StartedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Interactions returns matching AI exchanges created at or after since.
func (m *MemoryReader) Interactions(_ context.Context, assignmentID string, since time.Time) ([]AIInteraction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []AIInteraction
	for _, in := range m.interactions {
		if in.AssignmentID == assignmentID && !in.CreatedAt.Before(since) {
			out = append(out, in)
		}
	}
	return out, nil
}

// Submissions returns submissions for an assignment.
func (m *MemoryReader) Submissions(_ context.Context, assignmentID string) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Submission
	for _, s := range m.submissions {
		if s.AssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

// Profiles returns all profiles tracked for a course.
func (m *MemoryReader) Profiles(_ context.Context, courseID string) ([]StudentProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []StudentProfile
	for _, p := range m.profiles[courseID] {
		out = append(out, p)
	}
	return out, nil
}
