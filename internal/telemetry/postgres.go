// internal/telemetry/postgres.go
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresReader reads telemetry from the platform's Postgres tables.
type PostgresReader struct {
	db *sql.DB
}

// NewPostgresReader creates a reader over an existing connection pool.
func NewPostgresReader(db *sql.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

// InitSchema creates the telemetry tables when they do not exist yet. The
// platform normally owns these; creating them here keeps local development
// and integration tests self-contained.
func (r *PostgresReader) InitSchema(ctx context.Context) error {
	schema := `
    CREATE TABLE IF NOT EXISTS course_enrollments (
        course_id TEXT NOT NULL,
        student_id TEXT NOT NULL,
        enrolled_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (course_id, student_id)
    );

    CREATE TABLE IF NOT EXISTS writing_sessions (
        id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL,
        course_id TEXT NOT NULL,
        assignment_id TEXT NOT NULL,
        started_at TIMESTAMPTZ NOT NULL,
        duration_seconds BIGINT NOT NULL DEFAULT 0,
        word_count INT NOT NULL DEFAULT 0
    );

    CREATE TABLE IF NOT EXISTS ai_interactions (
        id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL,
        assignment_id TEXT NOT NULL,
        kind VARCHAR(50) NOT NULL DEFAULT 'question',
        reflection_quality DOUBLE PRECISION,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );

    CREATE TABLE IF NOT EXISTS assignment_submissions (
        student_id TEXT NOT NULL,
        assignment_id TEXT NOT NULL,
        submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (student_id, assignment_id)
    );

    CREATE TABLE IF NOT EXISTS student_profiles (
        student_id TEXT NOT NULL,
        course_id TEXT NOT NULL,
        cognitive_load VARCHAR(20) NOT NULL DEFAULT 'optimal',
        independence_trend VARCHAR(20) NOT NULL DEFAULT 'stable',
        independence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
        progress_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
        PRIMARY KEY (course_id, student_id)
    );

    CREATE INDEX IF NOT EXISTS idx_writing_sessions_assignment
        ON writing_sessions(assignment_id, started_at);
    CREATE INDEX IF NOT EXISTS idx_ai_interactions_assignment
        ON ai_interactions(assignment_id, created_at);
    `

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initializing telemetry schema: %w", err)
	}
	return nil
}

// Roster returns the enrolled student IDs for a course.
func (r *PostgresReader) Roster(ctx context.Context, courseID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id FROM course_enrollments WHERE course_id = $1 ORDER BY student_id`,
		courseID)
	if err != nil {
		return nil, fmt.Errorf("querying roster for course %s: %w", courseID, err)
	}
	defer func() { _ = rows.Close() }()

	var roster []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning roster row: %w", err)
		}
		roster = append(roster, id)
	}
	return roster, rows.Err()
}

// Sessions returns writing sessions for an assignment started at or after since.
func (r *PostgresReader) Sessions(ctx context.Context, courseID, assignmentID string, since time.Time) ([]WritingSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, student_id, course_id, assignment_id, started_at, duration_seconds, word_count
         FROM writing_sessions
         WHERE course_id = $1 AND assignment_id = $2 AND started_at >= $3
         ORDER BY started_at`,
		courseID, assignmentID, since)
	if err != nil {
		return nil, fmt.Errorf("querying sessions for assignment %s: %w", assignmentID, err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []WritingSession
	for rows.Next() {
		var s WritingSession
		var seconds int64
		if err := rows.Scan(&s.ID, &s.StudentID, &s.CourseID, &s.AssignmentID, &s.StartedAt, &seconds, &s.WordCount); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		s.Duration = time.Duration(seconds) * time.Second
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Interactions returns AI exchanges for an assignment created at or after since.
func (r *PostgresReader) Interactions(ctx context.Context, assignmentID string, since time.Time) ([]AIInteraction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, student_id, assignment_id, kind, reflection_quality, created_at
         FROM ai_interactions
         WHERE assignment_id = $1 AND created_at >= $2
         ORDER BY created_at`,
		assignmentID, since)
	if err != nil {
		return nil, fmt.Errorf("querying interactions for assignment %s: %w", assignmentID, err)
	}
	defer func() { _ = rows.Close() }()

	var interactions []AIInteraction
	for rows.Next() {
		var in AIInteraction
		var quality sql.NullFloat64
		if err := rows.Scan(&in.ID, &in.StudentID, &in.AssignmentID, &in.Kind, &quality, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning interaction row: %w", err)
		}
		if quality.Valid {
			q := quality.Float64
			in.ReflectionQuality = &q
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}

// Submissions returns every submission recorded for an assignment.
func (r *PostgresReader) Submissions(ctx context.Context, assignmentID string) ([]Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id, assignment_id, submitted_at
         FROM assignment_submissions
         WHERE assignment_id = $1`,
		assignmentID)
	if err != nil {
		return nil, fmt.Errorf("querying submissions for assignment %s: %w", assignmentID, err)
	}
	defer func() { _ = rows.Close() }()

	var subs []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.StudentID, &s.AssignmentID, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scanning submission row: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// Profiles returns behavioral profiles for all tracked students in a course.
func (r *PostgresReader) Profiles(ctx context.Context, courseID string) ([]StudentProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id, course_id, cognitive_load, independence_trend, independence_score, progress_rate
         FROM student_profiles
         WHERE course_id = $1`,
		courseID)
	if err != nil {
		return nil, fmt.Errorf("querying profiles for course %s: %w", courseID, err)
	}
	defer func() { _ = rows.Close() }()

	var profiles []StudentProfile
	for rows.Next() {
		var p StudentProfile
		if err := rows.Scan(&p.StudentID, &p.CourseID, &p.CognitiveLoad, &p.IndependenceTrend, &p.IndependenceScore, &p.ProgressRate); err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
