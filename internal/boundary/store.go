// internal/boundary/store.go
package boundary

import (
	"context"

	"github.com/google/uuid"
)

// Store is the narrow persistence interface the analytics and adjustment
// layers depend on. UpdateBoundaries is the only way a boundary configuration
// changes: it reads the configuration actually being replaced, writes the
// next one, and appends the log entry as a single atomic step, so a racing
// second writer logs the first writer's value as Previous rather than a
// stale earlier read.
type Store interface {
	// GetAssignment resolves an assignment or fails with ErrAssignmentNotFound.
	GetAssignment(ctx context.Context, assignmentID string) (*Assignment, error)

	// ListOpen returns assignments whose due date has not passed.
	ListOpen(ctx context.Context) ([]*Assignment, error)

	// UpdateBoundaries atomically replaces the assignment's boundary
	// configuration with next and appends entry to the adjustment log. The
	// store fills entry.Previous from the row it replaced and entry.Updated
	// from next; entry.ID and entry.CreatedAt are assigned when unset.
	UpdateBoundaries(ctx context.Context, assignmentID string, next Config, entry *AdjustmentLog) error

	// AdjustmentHistory returns the log entries for an assignment, newest first.
	AdjustmentHistory(ctx context.Context, assignmentID string) ([]*AdjustmentLog, error)

	// RecordImpact fills the impact metrics on an existing log entry. It
	// fails with ErrLogNotFound when the entry does not exist and
	// ErrImpactRecorded when the entry already carries metrics.
	RecordImpact(ctx context.Context, logID uuid.UUID, impact ImpactMetrics) error
}
