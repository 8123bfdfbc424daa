// internal/telemetry/reader.go
package telemetry

import (
	"context"
	"time"
)

// Reader provides read-only access to interaction telemetry. The analytics
// layer depends on this interface, never on a concrete store; implementations
// must tolerate empty result sets without error.
type Reader interface {
	// Roster returns the student IDs enrolled in a course.
	Roster(ctx context.Context, courseID string) ([]string, error)

	// Sessions returns writing sessions for an assignment started at or
	// after since.
	Sessions(ctx context.Context, courseID, assignmentID string, since time.Time) ([]WritingSession, error)

	// Interactions returns AI assistant exchanges for an assignment created
	// at or after since.
	Interactions(ctx context.Context, assignmentID string, since time.Time) ([]AIInteraction, error)

	// Submissions returns all submissions recorded for an assignment.
	Submissions(ctx context.Context, assignmentID string) ([]Submission, error)

	// Profiles returns the behavioral profiles for every student the
	// platform tracks in a course. Students without a profile simply do not
	// appear.
	Profiles(ctx context.Context, courseID string) ([]StudentProfile, error)
}
