// internal/boundary/memory.go
package boundary

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local development. A
// single mutex serializes configuration swaps, which gives UpdateBoundaries
// the same read-replaced-row guarantee the Postgres row lock provides.
type MemoryStore struct {
	mu          sync.RWMutex
	assignments map[string]*Assignment
	log         []*AdjustmentLog
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory boundary store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments: make(map[string]*Assignment),
		now:         time.Now,
	}
}

// CreateAssignment seeds an assignment. Zero boundary configuration is
// replaced with the default.
func (m *MemoryStore) CreateAssignment(_ context.Context, a *Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *a
	if stored.Boundaries.QuestionsPerHour == 0 && stored.Boundaries.ReflectionRequirement == "" {
		stored.Boundaries = DefaultConfig()
	}
	stored.Boundaries = stored.Boundaries.clone()
	m.assignments[a.ID] = &stored
	return nil
}

// GetAssignment resolves an assignment or fails with ErrAssignmentNotFound.
func (m *MemoryStore) GetAssignment(_ context.Context, assignmentID string) (*Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assignments[assignmentID]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	out := *a
	out.Boundaries = out.Boundaries.clone()
	return &out, nil
}

// ListOpen returns assignments whose due date has not passed, oldest first.
func (m *MemoryStore) ListOpen(_ context.Context) ([]*Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	var open []*Assignment
	for _, a := range m.assignments {
		if a.DueAt.IsZero() || a.DueAt.After(now) {
			out := *a
			out.Boundaries = out.Boundaries.clone()
			open = append(open, &out)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CreatedAt.Before(open[j].CreatedAt) })
	return open, nil
}

// UpdateBoundaries swaps the configuration and appends the log entry under
// one lock. The next configuration is schema-checked before the swap.
func (m *MemoryStore) UpdateBoundaries(_ context.Context, assignmentID string, next Config, entry *AdjustmentLog) error {
	nextJSON, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshaling next config: %w", err)
	}
	if _, err := ValidateDocument(nextJSON); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assignments[assignmentID]
	if !ok {
		return ErrAssignmentNotFound
	}

	entry.AssignmentID = assignmentID
	entry.Previous = a.Boundaries.clone()
	entry.Updated = next.clone()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now()
	}

	a.Boundaries = next.clone()

	stored := *entry
	m.log = append(m.log, &stored)
	return nil
}

// AdjustmentHistory returns log entries for an assignment, newest first.
func (m *MemoryStore) AdjustmentHistory(_ context.Context, assignmentID string) ([]*AdjustmentLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var history []*AdjustmentLog
	for _, e := range m.log {
		if e.AssignmentID == assignmentID {
			out := *e
			history = append(history, &out)
		}
	}
	sort.Slice(history, func(i, j int) bool { return history[i].CreatedAt.After(history[j].CreatedAt) })
	return history, nil
}

// RecordImpact fills impact metrics on an existing entry exactly once.
func (m *MemoryStore) RecordImpact(_ context.Context, logID uuid.UUID, impact ImpactMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.log {
		if e.ID == logID {
			if e.Impact != nil {
				return ErrImpactRecorded
			}
			stored := impact
			e.Impact = &stored
			return nil
		}
	}
	return ErrLogNotFound
}
